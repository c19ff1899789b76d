package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_Balance(t *testing.T) {
	tx := Transaction{Lines: []Line{
		{AccountID: 1010, Amount: decimal.NewFromFloat(100)},
		{AccountID: 4010, Amount: decimal.NewFromFloat(-60)},
		{AccountID: 4020, Amount: decimal.NewFromFloat(-40)},
	}}
	assert.True(t, tx.Balance().IsZero())

	tx.Lines[2].Amount = decimal.NewFromFloat(-39)
	assert.True(t, tx.Balance().Equal(decimal.NewFromFloat(1)))
}

func TestTransaction_Reversed(t *testing.T) {
	tx := Transaction{
		ID:   "2025-01-007",
		Date: time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC),
		Lines: []Line{
			{AccountID: 1010, Amount: decimal.NewFromFloat(100), ClassTagID: "cls-1"},
			{AccountID: 4010, Amount: decimal.NewFromFloat(-100), CategoryTagID: "cat-1"},
		},
	}

	when := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	rev := tx.Reversed(when)

	assert.Empty(t, rev.ID)
	assert.Equal(t, when, rev.Date)
	assert.Equal(t, "Reversal of 2025-01-007", rev.Description)
	assert.Equal(t, "2025-01-007", rev.Reference)
	assert.True(t, rev.Balance().IsZero())
	assert.True(t, rev.Lines[0].Amount.Equal(decimal.NewFromFloat(-100)))
	assert.Equal(t, "cls-1", rev.Lines[0].ClassTagID)
	assert.Equal(t, "cat-1", rev.Lines[1].CategoryTagID)
}

func TestAccountType_NormalSign(t *testing.T) {
	assert.Equal(t, 1, AccountTypeAsset.NormalSign())
	assert.Equal(t, 1, AccountTypeExpense.NormalSign())
	assert.Equal(t, -1, AccountTypeLiability.NormalSign())
	assert.Equal(t, -1, AccountTypeEquity.NormalSign())
	assert.Equal(t, -1, AccountTypeRevenue.NormalSign())
}
