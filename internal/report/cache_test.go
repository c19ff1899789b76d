package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cleared-dev/fincore/internal/model"
)

func snapFor(key string) model.ReportSnapshot {
	return model.ReportSnapshot{Statement: model.StatementProfitLoss, ScenarioID: key}
}

func TestCache_GetSet(t *testing.T) {
	c := NewCache(4, time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", snapFor("a"))
	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "a", got.ScenarioID)

	hits, misses := c.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2, time.Minute)
	c.Set("a", snapFor("a"))
	c.Set("b", snapFor("b"))

	// Touch "a" so "b" is the eviction candidate.
	_, ok := c.Get("a")
	assert.True(t, ok)

	c.Set("c", snapFor("c"))
	assert.Equal(t, 2, c.Size())

	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestCache_TTLExpiry(t *testing.T) {
	c := NewCache(4, time.Millisecond)
	c.Set("a", snapFor("a"))
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}

func TestCache_CleanExpired(t *testing.T) {
	c := NewCache(4, time.Millisecond)
	c.Set("a", snapFor("a"))
	c.Set("b", snapFor("b"))
	time.Sleep(5 * time.Millisecond)
	c.Set("c", snapFor("c"))

	removed := c.CleanExpired()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Size())
}

func TestCache_SetReplacesExisting(t *testing.T) {
	c := NewCache(2, time.Minute)
	c.Set("a", snapFor("old"))
	c.Set("a", snapFor("new"))
	assert.Equal(t, 1, c.Size())

	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "new", got.ScenarioID)
}
