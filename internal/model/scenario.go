package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustmentType distinguishes the expansion rule for a scenario adjustment.
type AdjustmentType string

const (
	// AdjustmentRecurring repeats monthly from the effective date through the
	// end of the evaluated period.
	AdjustmentRecurring AdjustmentType = "recurring"
	// AdjustmentOneTime posts once on the effective date.
	AdjustmentOneTime AdjustmentType = "one-time"
	// AdjustmentLoan posts principal proceeds on the effective date and a
	// monthly payment split into interest and principal thereafter.
	AdjustmentLoan AdjustmentType = "loan"
)

// Adjustment is one hypothetical change inside a scenario. Adjustments are
// pure deltas: they expand into virtual lines at read time and never touch
// posted transactions.
type Adjustment struct {
	// AccountID is the statement account the adjustment lands on; Amount is
	// the presentation-signed figure (an expense of 5000 and a revenue of
	// 5000 are both positive). OffsetAccountID is the balancing counterpart,
	// typically a cash account.
	AccountID       int             `json:"account_id"`
	OffsetAccountID int             `json:"offset_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Type            AdjustmentType  `json:"type"`
	EffectiveDate   time.Time       `json:"effective_date"`
	ClassTagID      string          `json:"class_tag_id,omitempty"`
	CategoryTagID   string          `json:"category_tag_id,omitempty"`
	Description     string          `json:"description,omitempty"`

	// Loan terms, used only when Type == AdjustmentLoan.
	TermMonths         int             `json:"term_months,omitempty"`
	AnnualRate         decimal.Decimal `json:"annual_rate,omitempty"`
	LiabilityAccountID int             `json:"liability_account_id,omitempty"`
	InterestAccountID  int             `json:"interest_account_id,omitempty"`
}

// Scenario is an ordered set of adjustments evaluated against a base ledger
// snapshot.
type Scenario struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	BasePeriod  Period       `json:"base_period"`
	Adjustments []Adjustment `json:"adjustments"`
}
