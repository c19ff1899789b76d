package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/fincore/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStoreWithChart(nil, DefaultChart())
	require.NoError(t, err)
	return s
}

func balancedTx(day int, debitAcct, creditAcct int, amount string) model.Transaction {
	return model.Transaction{
		Date:        date(2025, time.January, day),
		Description: "test entry",
		Lines: []model.Line{
			{AccountID: debitAcct, Amount: dec(amount)},
			{AccountID: creditAcct, Amount: dec(amount).Neg()},
		},
	}
}

func TestAppendTransaction_AssignsSequentialIDs(t *testing.T) {
	s := newTestStore(t)

	tx1, err := s.AppendTransaction(balancedTx(5, 5020, 1010, "100.00"))
	require.NoError(t, err)
	tx2, err := s.AppendTransaction(balancedTx(6, 5030, 1010, "50.00"))
	require.NoError(t, err)

	assert.Equal(t, "2025-01-001", tx1.ID)
	assert.Equal(t, "2025-01-002", tx2.ID)
}

func TestAppendTransaction_Imbalanced(t *testing.T) {
	s := newTestStore(t)

	tx := model.Transaction{
		Date: date(2025, time.January, 5),
		Lines: []model.Line{
			{AccountID: 5020, Amount: dec("100.00")},
			{AccountID: 1010, Amount: dec("-99.00")},
		},
	}
	_, err := s.AppendTransaction(tx)
	assert.ErrorIs(t, err, ErrImbalancedTransaction)
	assert.Equal(t, uint64(len(DefaultChart())), s.Version(), "rejected append must not bump version")
}

func TestAppendTransaction_UnknownAccount(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AppendTransaction(balancedTx(5, 9999, 1010, "10.00"))
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestAppendTransaction_ArchivedAccount(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetArchived(5020, true))

	_, err := s.AppendTransaction(balancedTx(5, 5020, 1010, "10.00"))
	assert.ErrorIs(t, err, ErrArchivedAccount)
}

func TestAppendTransaction_Precision(t *testing.T) {
	s := newTestStore(t)

	tx := model.Transaction{
		Date: date(2025, time.January, 5),
		Lines: []model.Line{
			{AccountID: 5020, Amount: dec("10.001")},
			{AccountID: 1010, Amount: dec("-10.001")},
		},
	}
	_, err := s.AppendTransaction(tx)
	assert.ErrorIs(t, err, ErrAmountPrecision)
}

func TestAppendTransaction_Empty(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AppendTransaction(model.Transaction{Date: date(2025, time.January, 5)})
	assert.ErrorIs(t, err, ErrEmptyTransaction)
}

func TestSnapshot_IsolatedFromLaterAppends(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AppendTransaction(balancedTx(5, 5020, 1010, "100.00"))
	require.NoError(t, err)

	snap := s.Snapshot()
	require.Len(t, snap.Transactions(), 1)

	_, err = s.AppendTransaction(balancedTx(6, 5030, 1010, "25.00"))
	require.NoError(t, err)

	assert.Len(t, snap.Transactions(), 1, "snapshot must not see later appends")
	assert.Len(t, s.Snapshot().Transactions(), 2)
	assert.Greater(t, s.Snapshot().Version(), snap.Version())
}

func TestSnapshotAt_HistoricalVersion(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AppendTransaction(balancedTx(5, 5020, 1010, "100.00"))
	require.NoError(t, err)
	v1 := s.Version()
	_, err = s.AppendTransaction(balancedTx(6, 5030, 1010, "25.00"))
	require.NoError(t, err)

	snap := s.SnapshotAt(v1)
	assert.Equal(t, v1, snap.Version())
	assert.Len(t, snap.Transactions(), 1)
}

func TestReverse_AppendsMirrorEntry(t *testing.T) {
	s := newTestStore(t)

	tx, err := s.AppendTransaction(balancedTx(5, 5020, 1010, "100.00"))
	require.NoError(t, err)

	rev, err := s.Reverse(tx.ID, date(2025, time.January, 20))
	require.NoError(t, err)

	require.Len(t, rev.Lines, 2)
	assert.True(t, rev.Lines[0].Amount.Equal(dec("-100.00")))
	assert.True(t, rev.Lines[1].Amount.Equal(dec("100.00")))
	assert.Equal(t, tx.ID, rev.Reference)

	// Original is untouched; the store grew by one entry.
	orig, ok := s.Transaction(tx.ID)
	require.True(t, ok)
	assert.True(t, orig.Lines[0].Amount.Equal(dec("100.00")))
	assert.Len(t, s.Snapshot().Transactions(), 2)
}

func TestReverse_UnknownTransaction(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Reverse("2025-01-999", date(2025, time.January, 20))
	assert.ErrorIs(t, err, ErrUnknownTransaction)
}

func TestUpdateAccount_RejectedOnceReferenced(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AppendTransaction(balancedTx(5, 5020, 1010, "100.00"))
	require.NoError(t, err)

	a, _ := s.Account(5020)
	a.Name = "Renamed"
	assert.ErrorIs(t, s.UpdateAccount(a), ErrAccountReferenced)

	// Archival is still allowed.
	assert.NoError(t, s.SetArchived(5020, true))
}
