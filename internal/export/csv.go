// Package export renders report snapshots and the transaction journal as
// CSV for spreadsheets and downstream tooling.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/model"
)

// JournalHeader is the CSV header for a full journal export, one row per
// transaction line.
const JournalHeader = "tx_id,date,description,reference,account_id,debit,credit,class_tag,category_tag,memo"

const dateFormat = "2006-01-02"

// WriteSnapshot writes a report snapshot as CSV. The first row carries the
// column labels after the fixed section/label/account columns; every line and
// section total becomes one row.
func WriteSnapshot(w io.Writer, snap model.ReportSnapshot) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := append([]string{"section", "label", "account_id"}, snap.Columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, sec := range snap.Sections {
		for _, line := range sec.Lines {
			rec := make([]string, 0, len(header))
			acctID := ""
			if line.AccountID != 0 {
				acctID = strconv.Itoa(line.AccountID)
			}
			rec = append(rec, sec.Label, line.Label, acctID)
			for _, amt := range line.Amounts {
				rec = append(rec, amt.StringFixed(2))
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("writing %s/%s: %w", sec.Label, line.Label, err)
			}
		}
		rec := make([]string, 0, len(header))
		rec = append(rec, sec.Label, "Total "+sec.Label, "")
		for _, amt := range sec.Totals {
			rec = append(rec, amt.StringFixed(2))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing %s total: %w", sec.Label, err)
		}
	}
	return cw.Error()
}

// WriteJournal writes transactions as CSV, one row per line with separate
// debit and credit columns.
func WriteJournal(w io.Writer, txs []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(JournalHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, tx := range txs {
		for _, line := range tx.Lines {
			if err := cw.Write(marshalLine(tx, line)); err != nil {
				return fmt.Errorf("writing %s: %w", tx.ID, err)
			}
		}
	}
	return cw.Error()
}

func marshalLine(tx model.Transaction, line model.Line) []string {
	debit, credit := "", ""
	if line.Amount.IsNegative() {
		credit = line.Amount.Neg().StringFixed(2)
	} else if line.Amount.GreaterThan(decimal.Zero) {
		debit = line.Amount.StringFixed(2)
	}
	return []string{
		tx.ID,
		tx.Date.Format(dateFormat),
		tx.Description,
		tx.Reference,
		strconv.Itoa(line.AccountID),
		debit,
		credit,
		line.ClassTagID,
		line.CategoryTagID,
		line.Memo,
	}
}
