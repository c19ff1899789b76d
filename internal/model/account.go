package model

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// NormalSign returns +1 for debit-normal types (asset, expense) and -1 for
// credit-normal types (liability, equity, revenue). Line amounts are stored
// debit-positive; multiplying a summed balance by the normal sign yields the
// figure as it appears on a statement.
func (t AccountType) NormalSign() int {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return 1
	case AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue:
		return -1
	}
	return 1
}

// IsBalanceSheet reports whether the type appears on the balance sheet.
func (t AccountType) IsBalanceSheet() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity:
		return true
	}
	return false
}

// IsIncomeStatement reports whether the type appears on the P&L.
func (t AccountType) IsIncomeStatement() bool {
	return t == AccountTypeRevenue || t == AccountTypeExpense
}

// Account is one row in the chart of accounts. Once a transaction references
// an account, only the Archived flag may change.
type Account struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Type        AccountType `json:"type"`
	ParentID    int         `json:"parent_id,omitempty"` // 0 = top-level
	Description string      `json:"description,omitempty"`
	Archived    bool        `json:"archived,omitempty"`
}
