package ledger

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/id"
	"github.com/cleared-dev/fincore/internal/model"
)

// Persister receives every accepted mutation so the store can be rebuilt on
// restart. A nil persister keeps the store purely in memory.
type Persister interface {
	SaveAccount(a model.Account) error
	SaveTransaction(tx model.Transaction, version uint64) error
	SaveVersion(version uint64) error
}

// Store is the append-only, versioned system of record for accounts and
// transactions. It is single-writer: mutations serialize on a mutex, each
// accepted mutation bumps the monotonic version, and readers work on
// immutable snapshots that never block the writer.
type Store struct {
	mu        sync.RWMutex
	accounts  map[int]model.Account
	order     []int // account IDs in insertion order
	txs       []model.Transaction
	txVersion []uint64 // store version at which txs[i] was appended
	byID      map[string]int
	seq       map[string]int // next sequence per "YYYY-MM"
	refs      map[int]bool   // account IDs referenced by posted transactions
	version   uint64
	persister Persister
}

// NewStore creates an empty store. Accounts must be added before transactions
// reference them.
func NewStore(persister Persister) *Store {
	return &Store{
		accounts:  make(map[int]model.Account),
		byID:      make(map[string]int),
		seq:       make(map[string]int),
		refs:      make(map[int]bool),
		persister: persister,
	}
}

// NewStoreWithChart creates a store pre-populated with a chart of accounts.
func NewStoreWithChart(persister Persister, chart []model.Account) (*Store, error) {
	s := NewStore(persister)
	for _, a := range chart {
		if err := s.AddAccount(a); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Version returns the current monotonic store version.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// AddAccount registers a new chart-of-accounts entry and bumps the version.
func (s *Store) AddAccount(a model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID <= 0 {
		return fmt.Errorf("%w: account ID must be positive, got %d", ErrUnknownAccount, a.ID)
	}
	if _, ok := s.accounts[a.ID]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateAccount, a.ID)
	}

	s.accounts[a.ID] = a
	s.order = append(s.order, a.ID)
	s.version++

	if s.persister != nil {
		if err := s.persister.SaveAccount(a); err != nil {
			return fmt.Errorf("persisting account %d: %w", a.ID, err)
		}
		if err := s.persister.SaveVersion(s.version); err != nil {
			return fmt.Errorf("persisting version: %w", err)
		}
	}
	return nil
}

// SetArchived flips the archival flag of an account. This is the only
// mutation allowed on an account once transactions reference it.
func (s *Store) SetArchived(accountID int, archived bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownAccount, accountID)
	}
	if a.Archived == archived {
		return nil
	}
	a.Archived = archived
	s.accounts[accountID] = a
	s.version++

	if s.persister != nil {
		if err := s.persister.SaveAccount(a); err != nil {
			return fmt.Errorf("persisting account %d: %w", accountID, err)
		}
		if err := s.persister.SaveVersion(s.version); err != nil {
			return fmt.Errorf("persisting version: %w", err)
		}
	}
	return nil
}

// UpdateAccount replaces an account's descriptive fields. Rejected once any
// posted transaction references the account; use SetArchived instead.
func (s *Store) UpdateAccount(a model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[a.ID]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownAccount, a.ID)
	}
	if s.refs[a.ID] {
		return fmt.Errorf("%w: %d", ErrAccountReferenced, a.ID)
	}
	s.accounts[a.ID] = a
	s.version++

	if s.persister != nil {
		if err := s.persister.SaveAccount(a); err != nil {
			return fmt.Errorf("persisting account %d: %w", a.ID, err)
		}
		if err := s.persister.SaveVersion(s.version); err != nil {
			return fmt.Errorf("persisting version: %w", err)
		}
	}
	return nil
}

// Account returns an account by ID.
func (s *Store) Account(accountID int) (model.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountID]
	return a, ok
}

// AppendTransaction validates the transaction, assigns its ID, appends it
// atomically, and bumps the store version. The input's ID field is ignored.
func (s *Store) AppendTransaction(tx model.Transaction) (model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validate(tx); err != nil {
		return model.Transaction{}, err
	}

	monthKey := tx.Date.Format("2006-01")
	s.seq[monthKey]++
	tx.ID = id.FormatTransactionID(tx.Date.Year(), int(tx.Date.Month()), s.seq[monthKey])

	s.txs = append(s.txs, tx)
	s.version++
	s.txVersion = append(s.txVersion, s.version)
	s.byID[tx.ID] = len(s.txs) - 1
	for _, l := range tx.Lines {
		s.refs[l.AccountID] = true
	}

	if s.persister != nil {
		if err := s.persister.SaveTransaction(tx, s.version); err != nil {
			return model.Transaction{}, fmt.Errorf("persisting transaction %s: %w", tx.ID, err)
		}
		if err := s.persister.SaveVersion(s.version); err != nil {
			return model.Transaction{}, fmt.Errorf("persisting version: %w", err)
		}
	}
	return tx, nil
}

// RestoreAccount reloads a persisted account at startup. It neither bumps the
// version nor writes back to the persister.
func (s *Store) RestoreAccount(a model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID <= 0 {
		return fmt.Errorf("%w: account ID must be positive, got %d", ErrUnknownAccount, a.ID)
	}
	if _, ok := s.accounts[a.ID]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateAccount, a.ID)
	}
	s.accounts[a.ID] = a
	s.order = append(s.order, a.ID)
	return nil
}

// RestoreTransaction reloads a persisted transaction with its original ID and
// append version. Callers must restore in ascending version order so that
// historical snapshots keep working.
func (s *Store) RestoreTransaction(tx model.Transaction, version uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	year, month, seq, err := id.ParseTransactionID(tx.ID)
	if err != nil {
		return fmt.Errorf("restoring transaction: %w", err)
	}
	if n := len(s.txVersion); n > 0 && version <= s.txVersion[n-1] {
		return fmt.Errorf("restoring transaction %s: version %d out of order", tx.ID, version)
	}

	monthKey := fmt.Sprintf("%04d-%02d", year, month)
	if seq > s.seq[monthKey] {
		s.seq[monthKey] = seq
	}
	s.txs = append(s.txs, tx)
	s.txVersion = append(s.txVersion, version)
	s.byID[tx.ID] = len(s.txs) - 1
	for _, l := range tx.Lines {
		s.refs[l.AccountID] = true
	}
	return nil
}

// SetVersion fixes the store version after a restore.
func (s *Store) SetVersion(v uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version = v
}

// Reverse appends a reversing transaction for a posted transaction. Posted
// entries are never edited in place; this is the only correction mechanism.
func (s *Store) Reverse(txID string, date time.Time) (model.Transaction, error) {
	s.mu.RLock()
	idx, ok := s.byID[txID]
	var original model.Transaction
	if ok {
		original = s.txs[idx]
	}
	s.mu.RUnlock()

	if !ok {
		return model.Transaction{}, fmt.Errorf("%w: %s", ErrUnknownTransaction, txID)
	}
	return s.AppendTransaction(original.Reversed(date))
}

// Transaction returns a posted transaction by ID.
func (s *Store) Transaction(txID string) (model.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[txID]
	if !ok {
		return model.Transaction{}, false
	}
	return s.txs[idx], true
}

// validate enforces the append-time integrity invariants. Caller holds mu.
func (s *Store) validate(tx model.Transaction) error {
	if len(tx.Lines) == 0 {
		return ErrEmptyTransaction
	}

	hundred := decimal.NewFromInt(100)
	total := decimal.Zero
	for _, l := range tx.Lines {
		a, ok := s.accounts[l.AccountID]
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownAccount, l.AccountID)
		}
		if a.Archived {
			return fmt.Errorf("%w: %d (%s)", ErrArchivedAccount, a.ID, a.Name)
		}
		cents := l.Amount.Mul(hundred)
		if !cents.Equal(cents.Floor()) {
			return fmt.Errorf("%w: account %d amount %s", ErrAmountPrecision, l.AccountID, l.Amount)
		}
		total = total.Add(l.Amount)
	}
	if !total.IsZero() {
		return fmt.Errorf("%w: off by %s", ErrImbalancedTransaction, total.StringFixed(2))
	}
	return nil
}

// Snapshot returns an immutable view of the store at its current version.
// Snapshots are cheap: the transaction log is append-only, so the view shares
// the backing array and only copies the account map.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(s.version)
}

// SnapshotAt returns an immutable view containing only transactions appended
// at or before the given store version.
func (s *Store) SnapshotAt(asOfVersion uint64) *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if asOfVersion > s.version {
		asOfVersion = s.version
	}
	return s.snapshotLocked(asOfVersion)
}

func (s *Store) snapshotLocked(asOf uint64) *Snapshot {
	n := sort.Search(len(s.txVersion), func(i int) bool { return s.txVersion[i] > asOf })

	accounts := make(map[int]model.Account, len(s.accounts))
	for k, v := range s.accounts {
		accounts[k] = v
	}
	order := make([]int, len(s.order))
	copy(order, s.order)

	return &Snapshot{
		version:  asOf,
		accounts: accounts,
		order:    order,
		txs:      s.txs[:n:n],
	}
}
