package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// GenericParser parses the neutral date,description,amount[,reference]
// format most banks can export to. Amounts are signed from the account's
// point of view.
type GenericParser struct{}

const (
	genericDateFormat = "2006-01-02"
	genericColDate    = 0
	genericColDesc    = 1
	genericColAmount  = 2
	genericColRef     = 3
)

// Format returns the parser name.
func (p *GenericParser) Format() string { return "generic" }

// Parse reads a generic CSV and returns BankRows.
func (p *GenericParser) Parse(r io.Reader) ([]BankRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading generic CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var rows []BankRow
	for i, rec := range records[1:] {
		row, err := parseGenericRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseGenericRow(rec []string) (BankRow, error) {
	if len(rec) < 3 {
		return BankRow{}, fmt.Errorf("expected at least 3 fields, got %d", len(rec))
	}
	date, err := time.Parse(genericDateFormat, rec[genericColDate])
	if err != nil {
		return BankRow{}, fmt.Errorf("parsing date %q: %w", rec[genericColDate], err)
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(rec[genericColAmount], ",", ""))
	if err != nil {
		return BankRow{}, fmt.Errorf("parsing amount %q: %w", rec[genericColAmount], err)
	}

	row := BankRow{
		Date:        date,
		Description: rec[genericColDesc],
		Amount:      amount,
	}
	if len(rec) > genericColRef {
		row.Reference = rec[genericColRef]
	}
	if row.Reference == "" {
		row.Reference = makeRef(date, row.Description)
	}
	return row, nil
}

// makeRef builds a stable reference like import_20250103_GITHUB from the row
// itself, for deduplication when the bank provides none.
func makeRef(date time.Time, desc string) string {
	prefix := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return -1
		}
	}, desc)
	if len(prefix) > 12 {
		prefix = prefix[:12]
	}
	return fmt.Sprintf("import_%s_%s", date.Format("20060102"), strings.ToUpper(prefix))
}
