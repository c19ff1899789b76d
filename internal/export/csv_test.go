package export

import (
	"encoding/csv"
	"strings"
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

func TestWriteSnapshot(t *testing.T) {
	snap := model.ReportSnapshot{
		Statement: model.StatementProfitLoss,
		Columns:   []string{"Total"},
		Sections: []model.ReportSection{
			{
				Label: "Revenue",
				Lines: []model.ReportLine{
					{AccountID: 4010, Label: "Service Revenue", Amounts: []decimal.Decimal{dec("1500.00")}},
				},
				Totals: []decimal.Decimal{dec("1500.00")},
			},
			{
				Label:  "Net Income",
				Totals: []decimal.Decimal{dec("1500.00")},
			},
		},
	}

	var buf strings.Builder
	require.NoError(t, WriteSnapshot(&buf, snap))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"section", "label", "account_id", "Total"}, records[0])
	assert.Equal(t, []string{"Revenue", "Service Revenue", "4010", "1500.00"}, records[1])
	assert.Equal(t, []string{"Revenue", "Total Revenue", "", "1500.00"}, records[2])
	assert.Equal(t, []string{"Net Income", "Total Net Income", "", "1500.00"}, records[3])
}

func TestWriteJournal(t *testing.T) {
	txs := []model.Transaction{
		{
			ID:          "2025-01-001",
			Date:        time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
			Description: "consulting revenue",
			Reference:   "inv-42",
			Lines: []model.Line{
				{AccountID: 1010, Amount: dec("1500.00")},
				{AccountID: 4010, Amount: dec("-1500.00"), CategoryTagID: "cat-1", Memo: "march retainer"},
			},
		},
	}

	var buf strings.Builder
	require.NoError(t, WriteJournal(&buf, txs))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, strings.Split(JournalHeader, ","), records[0])

	debitRow := records[1]
	assert.Equal(t, "2025-01-001", debitRow[0])
	assert.Equal(t, "2025-01-10", debitRow[1])
	assert.Equal(t, "1500.00", debitRow[5])
	assert.Equal(t, "", debitRow[6])

	creditRow := records[2]
	assert.Equal(t, "4010", creditRow[4])
	assert.Equal(t, "", creditRow[5])
	assert.Equal(t, "1500.00", creditRow[6])
	assert.Equal(t, "cat-1", creditRow[8])
	assert.Equal(t, "march retainer", creditRow[9])
}
