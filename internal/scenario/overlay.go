// Package scenario evaluates hypothetical adjustments against a base ledger
// snapshot. An overlay is a pure read-time view: adjustments expand into
// virtual transactions that are appended to the base view's transaction list,
// and the statement engine runs against the combined view unmodified. The
// ledger store is never written.
package scenario

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/statement"
)

var (
	// ErrMissingScenarioID is returned for a scenario without an ID; IDs key
	// the report cache, so an empty one would collide with the base ledger.
	ErrMissingScenarioID = errors.New("scenario has no ID")

	// ErrDuplicateScenario is returned when a comparison is asked to evaluate
	// two scenarios with the same ID.
	ErrDuplicateScenario = errors.New("duplicate scenario ID in comparison")

	// ErrBadAdjustment is returned when an adjustment references no account
	// or carries an unknown type.
	ErrBadAdjustment = errors.New("invalid adjustment")
)

// View is a synthetic ledger view: the base snapshot plus materialized
// adjustments. It satisfies the statement engine's LedgerView contract.
type View struct {
	base       statement.LedgerView
	scenarioID string
	txs        []model.Transaction
}

// NewView expands a scenario's adjustments through the given horizon and
// overlays them on base. The base is shared, not copied; concurrent overlays
// on one snapshot are safe because nothing here mutates shared state.
func NewView(base statement.LedgerView, sc model.Scenario, through time.Time) (*View, error) {
	if sc.ID == "" {
		return nil, ErrMissingScenarioID
	}

	virtual, err := expand(base, sc, through)
	if err != nil {
		return nil, err
	}

	baseTxs := base.Transactions()
	txs := make([]model.Transaction, 0, len(baseTxs)+len(virtual))
	txs = append(txs, baseTxs...)
	txs = append(txs, virtual...)

	return &View{base: base, scenarioID: sc.ID, txs: txs}, nil
}

// Version returns the base store version the overlay was bound to.
func (v *View) Version() uint64 { return v.base.Version() }

// ScenarioID returns the overlay's scenario ID.
func (v *View) ScenarioID() string { return v.scenarioID }

// Account resolves an account from the base chart.
func (v *View) Account(accountID int) (model.Account, bool) { return v.base.Account(accountID) }

// Accounts lists the base chart.
func (v *View) Accounts() []model.Account { return v.base.Accounts() }

// Transactions returns base plus virtual transactions.
func (v *View) Transactions() []model.Transaction { return v.txs }

// expand materializes adjustments into balanced virtual transactions, in
// adjustment order, months ascending. Expansion is deterministic for a given
// scenario and horizon.
func expand(base statement.LedgerView, sc model.Scenario, through time.Time) ([]model.Transaction, error) {
	var out []model.Transaction
	seq := 0

	for i, adj := range sc.Adjustments {
		if adj.AccountID == 0 || adj.OffsetAccountID == 0 {
			return nil, fmt.Errorf("%w: adjustment %d missing account", ErrBadAdjustment, i)
		}
		acct, ok := base.Account(adj.AccountID)
		if !ok {
			return nil, fmt.Errorf("%w: adjustment %d references unknown account %d", ErrBadAdjustment, i, adj.AccountID)
		}
		if _, ok := base.Account(adj.OffsetAccountID); !ok {
			return nil, fmt.Errorf("%w: adjustment %d references unknown offset account %d", ErrBadAdjustment, i, adj.OffsetAccountID)
		}

		switch adj.Type {
		case model.AdjustmentOneTime:
			if !adj.EffectiveDate.After(through) {
				out = append(out, simpleTx(sc.ID, &seq, adj, acct, adj.EffectiveDate))
			}
		case model.AdjustmentRecurring:
			for d := adj.EffectiveDate; !d.After(through); d = d.AddDate(0, 1, 0) {
				out = append(out, simpleTx(sc.ID, &seq, adj, acct, d))
			}
		case model.AdjustmentLoan:
			txs, err := expandLoan(sc.ID, &seq, adj, through)
			if err != nil {
				return nil, err
			}
			out = append(out, txs...)
		default:
			return nil, fmt.Errorf("%w: adjustment %d has unknown type %q", ErrBadAdjustment, i, adj.Type)
		}
	}
	return out, nil
}

// simpleTx builds one virtual transaction: the presentation-signed amount on
// the target account, balanced against the offset account. An expense of
// 5000 posts as a debit, a revenue of 5000 as a credit.
func simpleTx(scenarioID string, seq *int, adj model.Adjustment, acct model.Account, d time.Time) model.Transaction {
	*seq++
	signed := adj.Amount
	if acct.Type.NormalSign() < 0 {
		signed = signed.Neg()
	}
	return model.Transaction{
		ID:          fmt.Sprintf("scenario:%s:%03d", scenarioID, *seq),
		Date:        d,
		Description: adj.Description,
		Lines: []model.Line{
			{AccountID: adj.AccountID, Amount: signed, ClassTagID: adj.ClassTagID, CategoryTagID: adj.CategoryTagID},
			{AccountID: adj.OffsetAccountID, Amount: signed.Neg()},
		},
	}
}

// expandLoan posts principal proceeds on the effective date, then amortized
// monthly payments (interest to the interest account, principal against the
// liability) until the term ends or the horizon is reached.
func expandLoan(scenarioID string, seq *int, adj model.Adjustment, through time.Time) ([]model.Transaction, error) {
	if adj.TermMonths <= 0 || adj.LiabilityAccountID == 0 || adj.InterestAccountID == 0 {
		return nil, fmt.Errorf("%w: loan adjustment needs term, liability and interest accounts", ErrBadAdjustment)
	}

	var out []model.Transaction
	principal := adj.Amount

	if !adj.EffectiveDate.After(through) {
		*seq++
		out = append(out, model.Transaction{
			ID:          fmt.Sprintf("scenario:%s:%03d", scenarioID, *seq),
			Date:        adj.EffectiveDate,
			Description: adj.Description + " (proceeds)",
			Lines: []model.Line{
				{AccountID: adj.OffsetAccountID, Amount: principal},
				{AccountID: adj.LiabilityAccountID, Amount: principal.Neg()},
			},
		})
	}

	monthlyRate := adj.AnnualRate.Div(decimal.NewFromInt(12))
	payment := amortizedPayment(principal, monthlyRate, adj.TermMonths)

	balance := principal
	for m := 1; m <= adj.TermMonths; m++ {
		d := adj.EffectiveDate.AddDate(0, m, 0)
		if d.After(through) {
			break
		}
		interest := balance.Mul(monthlyRate).Round(2)
		principalPart := payment.Sub(interest)
		if m == adj.TermMonths || principalPart.GreaterThan(balance) {
			principalPart = balance
		}
		balance = balance.Sub(principalPart)

		*seq++
		out = append(out, model.Transaction{
			ID:          fmt.Sprintf("scenario:%s:%03d", scenarioID, *seq),
			Date:        d,
			Description: adj.Description + " (payment)",
			Lines: []model.Line{
				{AccountID: adj.InterestAccountID, Amount: interest},
				{AccountID: adj.LiabilityAccountID, Amount: principalPart},
				{AccountID: adj.OffsetAccountID, Amount: interest.Add(principalPart).Neg()},
			},
		})
	}
	return out, nil
}

// amortizedPayment is the fixed monthly payment for a loan of principal P at
// monthly rate r over n months, rounded to cents. Zero-rate loans divide
// evenly.
func amortizedPayment(principal, monthlyRate decimal.Decimal, termMonths int) decimal.Decimal {
	n := decimal.NewFromInt(int64(termMonths))
	if monthlyRate.IsZero() {
		return principal.Div(n).Round(2)
	}
	onePlus := decimal.NewFromInt(1).Add(monthlyRate)
	factor := onePlus.Pow(n)
	// P * r * (1+r)^n / ((1+r)^n - 1)
	return principal.Mul(monthlyRate).Mul(factor).
		Div(factor.Sub(decimal.NewFromInt(1))).Round(2)
}
