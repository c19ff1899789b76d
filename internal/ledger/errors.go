package ledger

import "errors"

// Integrity errors are rejected synchronously at the mutation boundary and
// never enter the store.
var (
	// ErrImbalancedTransaction is returned when the signed line amounts of a
	// transaction do not sum to zero.
	ErrImbalancedTransaction = errors.New("transaction lines do not sum to zero")

	// ErrUnknownAccount is returned when a line references an account that is
	// not in the chart of accounts.
	ErrUnknownAccount = errors.New("unknown account")

	// ErrArchivedAccount is returned when a line posts to an archived account.
	ErrArchivedAccount = errors.New("account is archived")

	// ErrDuplicateAccount is returned when adding an account whose ID is taken.
	ErrDuplicateAccount = errors.New("duplicate account ID")

	// ErrAccountReferenced is returned when modifying an account that posted
	// transactions already reference. Only the archival flag may change.
	ErrAccountReferenced = errors.New("account is referenced by transactions")

	// ErrUnknownTransaction is returned when reversing a transaction ID that
	// was never posted.
	ErrUnknownTransaction = errors.New("unknown transaction")

	// ErrEmptyTransaction is returned when a transaction carries no lines.
	ErrEmptyTransaction = errors.New("transaction has no lines")

	// ErrAmountPrecision is returned when a line amount carries more than two
	// decimal places.
	ErrAmountPrecision = errors.New("line amount exceeds two decimal places")
)
