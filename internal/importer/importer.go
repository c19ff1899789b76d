// Package importer stages bank CSV exports as balanced ledger transactions.
// Parsers normalize each bank's format into BankRows; Convert turns the rows
// into double-entry transactions against the configured accounts.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/model"
)

// ErrUnknownFormat is returned when no parser is registered for a format.
var ErrUnknownFormat = errors.New("unknown import format")

// BankRow is one normalized row of a bank export. Amount is signed from the
// bank account's point of view: positive for money in, negative for money out.
type BankRow struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Reference   string
}

// Parser converts one bank's CSV file into BankRows.
type Parser interface {
	Parse(r io.Reader) ([]BankRow, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format.
func (r *Registry) Get(format string) (Parser, error) {
	p, ok := r.parsers[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return p, nil
}

// Formats lists the registered format names.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.parsers))
	for key := range r.parsers {
		out = append(out, key)
	}
	return out
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&GenericParser{})
	return r
}

// Mapping tells Convert which ledger accounts a bank file posts against.
type Mapping struct {
	// BankAccountID is the asset account the file belongs to.
	BankAccountID int
	// InflowAccountID receives the credit side of deposits, typically a
	// revenue account.
	InflowAccountID int
	// OutflowAccountID receives the debit side of withdrawals, typically an
	// uncategorized-expense account.
	OutflowAccountID int
}

// Convert builds one balanced transaction per bank row. Rows with a zero
// amount are skipped. The returned transactions carry no IDs; the ledger
// store assigns them on append.
func Convert(rows []BankRow, m Mapping) []model.Transaction {
	txs := make([]model.Transaction, 0, len(rows))
	for _, row := range rows {
		if row.Amount.IsZero() {
			continue
		}
		counterpart := m.OutflowAccountID
		if row.Amount.GreaterThan(decimal.Zero) {
			counterpart = m.InflowAccountID
		}
		txs = append(txs, model.Transaction{
			Date:        row.Date,
			Description: row.Description,
			Reference:   row.Reference,
			Lines: []model.Line{
				{AccountID: m.BankAccountID, Amount: row.Amount},
				{AccountID: counterpart, Amount: row.Amount.Neg()},
			},
		})
	}
	return txs
}
