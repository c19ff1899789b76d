package ledger

import "github.com/cleared-dev/fincore/internal/model"

// Snapshot is an immutable view of the store at a fixed version. It satisfies
// the statement engine's ledger-view contract; readers never see later
// appends and never block the writer.
type Snapshot struct {
	version  uint64
	accounts map[int]model.Account
	order    []int
	txs      []model.Transaction
}

// Version returns the store version the snapshot was taken at.
func (s *Snapshot) Version() uint64 { return s.version }

// ScenarioID returns the empty string: a base snapshot carries no overlay.
func (s *Snapshot) ScenarioID() string { return "" }

// Account returns an account by ID.
func (s *Snapshot) Account(accountID int) (model.Account, bool) {
	a, ok := s.accounts[accountID]
	return a, ok
}

// Accounts returns all accounts in insertion order.
func (s *Snapshot) Accounts() []model.Account {
	out := make([]model.Account, 0, len(s.order))
	for _, accountID := range s.order {
		out = append(out, s.accounts[accountID])
	}
	return out
}

// Transactions returns the posted transactions visible at this version, in
// append order. Callers must not mutate the returned slice.
func (s *Snapshot) Transactions() []model.Transaction {
	return s.txs
}
