package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Line is one side of a posted transaction. Amount is debit-positive,
// credit-negative; the lines of a transaction always sum to zero.
type Line struct {
	AccountID     int             `json:"account_id"`
	Amount        decimal.Decimal `json:"amount"`
	ClassTagID    string          `json:"class_tag_id,omitempty"`
	CategoryTagID string          `json:"category_tag_id,omitempty"`
	Memo          string          `json:"memo,omitempty"`
}

// Transaction is an immutable posted entry. The store assigns the ID at
// append time ("2025-01-001"); corrections are new reversing transactions.
type Transaction struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
	Reference   string    `json:"reference,omitempty"`
	Lines       []Line    `json:"lines"`
}

// Balance returns the sum of signed line amounts. Zero for a valid entry.
func (t Transaction) Balance() decimal.Decimal {
	total := decimal.Zero
	for _, l := range t.Lines {
		total = total.Add(l.Amount)
	}
	return total
}

// Reversed returns an unposted copy with every line amount negated. Tags and
// account references are preserved so the reversal lands in the same
// dimensional buckets as the original.
func (t Transaction) Reversed(date time.Time) Transaction {
	rev := Transaction{
		Date:        date,
		Description: "Reversal of " + t.ID,
		Reference:   t.ID,
		Lines:       make([]Line, len(t.Lines)),
	}
	for i, l := range t.Lines {
		rev.Lines[i] = Line{
			AccountID:     l.AccountID,
			Amount:        l.Amount.Neg(),
			ClassTagID:    l.ClassTagID,
			CategoryTagID: l.CategoryTagID,
			Memo:          l.Memo,
		}
	}
	return rev
}
