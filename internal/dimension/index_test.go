package dimension

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/fincore/internal/model"
)

func TestCreateCategoryTag_UnknownParent(t *testing.T) {
	x := NewIndex(nil)
	_, err := x.CreateCategoryTag("Travel", "nope")
	assert.ErrorIs(t, err, ErrUnknownTag)
}

func TestDescendantsOf_RollsUpSubtree(t *testing.T) {
	x := NewIndex(nil)
	root, err := x.CreateCategoryTag("Operations", "")
	require.NoError(t, err)
	mid, err := x.CreateCategoryTag("Facilities", root.ID)
	require.NoError(t, err)
	leaf, err := x.CreateCategoryTag("Utilities", mid.ID)
	require.NoError(t, err)
	other, err := x.CreateCategoryTag("Marketing", "")
	require.NoError(t, err)

	got, err := x.DescendantsOf(root.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{root.ID, mid.ID, leaf.ID}, got)
	assert.NotContains(t, got, other.ID)
}

func TestAncestorsOf(t *testing.T) {
	x := NewIndex(nil)
	root, _ := x.CreateCategoryTag("Operations", "")
	mid, _ := x.CreateCategoryTag("Facilities", root.ID)
	leaf, _ := x.CreateCategoryTag("Utilities", mid.ID)

	got, err := x.AncestorsOf(leaf.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{mid.ID, root.ID}, got)
}

func TestReparentCategory_RejectsCycle(t *testing.T) {
	x := NewIndex(nil)
	root, _ := x.CreateCategoryTag("A", "")
	child, _ := x.CreateCategoryTag("B", root.ID)
	grandchild, _ := x.CreateCategoryTag("C", child.ID)

	assert.ErrorIs(t, x.ReparentCategory(root.ID, grandchild.ID), ErrCycle)
	assert.ErrorIs(t, x.ReparentCategory(root.ID, root.ID), ErrCycle)

	// The failed attempts must not have changed anything.
	got, err := x.AncestorsOf(grandchild.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{child.ID, root.ID}, got)
}

func TestReparentCategory_MovesSubtree(t *testing.T) {
	x := NewIndex(nil)
	a, _ := x.CreateCategoryTag("A", "")
	b, _ := x.CreateCategoryTag("B", "")
	c, _ := x.CreateCategoryTag("C", a.ID)

	v := x.Version()
	require.NoError(t, x.ReparentCategory(c.ID, b.ID))
	assert.Greater(t, x.Version(), v, "hierarchy mutation bumps the index version")

	got, err := x.AncestorsOf(c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, got)

	aSet, err := x.DescendantsOf(a.ID)
	require.NoError(t, err)
	assert.NotContains(t, aSet, c.ID)
}

func TestAssignTags_SingleAssignmentPerAxis(t *testing.T) {
	x := NewIndex(nil)
	retail, _ := x.CreateClassTag("Retail", "")
	online, _ := x.CreateClassTag("Online", "")
	travel, _ := x.CreateCategoryTag("Travel", "")

	line := model.Line{AccountID: 5020}
	require.NoError(t, x.AssignTags(&line, retail.ID, travel.ID))
	assert.Equal(t, retail.ID, line.ClassTagID)
	assert.Equal(t, travel.ID, line.CategoryTagID)

	// Re-assignment replaces the single slot on that axis.
	require.NoError(t, x.AssignTags(&line, online.ID, ""))
	assert.Equal(t, online.ID, line.ClassTagID)
	assert.Equal(t, travel.ID, line.CategoryTagID, "category axis untouched")
}

func TestAssignTags_ArchivedTagRejected(t *testing.T) {
	x := NewIndex(nil)
	retail, _ := x.CreateClassTag("Retail", "")
	require.NoError(t, x.SetClassArchived(retail.ID, true))

	line := model.Line{AccountID: 5020}
	assert.ErrorIs(t, x.AssignTags(&line, retail.ID, ""), ErrArchivedTag)
	assert.Empty(t, line.ClassTagID)
}

func TestArchivedTag_HiddenFromPickerButResolvable(t *testing.T) {
	x := NewIndex(nil)
	retail, _ := x.CreateClassTag("Retail", "")
	wholesale, _ := x.CreateClassTag("Wholesale", "")
	require.NoError(t, x.SetClassArchived(retail.ID, true))

	picker := x.ActiveClassTags()
	require.Len(t, picker, 1)
	assert.Equal(t, wholesale.ID, picker[0].ID)

	// Historical lines still resolve the archived tag.
	got, ok := x.ClassTag(retail.ID)
	require.True(t, ok)
	assert.True(t, got.Archived)
	assert.Equal(t, "Retail", got.Name)
}

func TestApplySuggestion(t *testing.T) {
	x := NewIndex(nil)
	retail, _ := x.CreateClassTag("Retail", "")
	travel, _ := x.CreateCategoryTag("Travel", "")

	line := model.Line{AccountID: 5020}
	sugg := model.Suggestion{ClassTagID: retail.ID, CategoryTagID: travel.ID, Confidence: 0.91}

	assert.ErrorIs(t, x.ApplySuggestion(&line, sugg, 0.95), ErrLowConfidence)
	assert.Empty(t, line.ClassTagID)

	require.NoError(t, x.ApplySuggestion(&line, sugg, 0.90))
	assert.Equal(t, retail.ID, line.ClassTagID)
	assert.Equal(t, travel.ID, line.CategoryTagID)
}
