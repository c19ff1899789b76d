package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StatementType identifies one of the three statements.
type StatementType string

const (
	StatementBalanceSheet StatementType = "balance-sheet"
	StatementProfitLoss   StatementType = "profit-loss"
	StatementCashFlow     StatementType = "cash-flow"
)

// GroupAxis selects the tagging axis for filtering or grouping.
type GroupAxis string

const (
	AxisClass    GroupAxis = "class"
	AxisCategory GroupAxis = "category"
)

// DimensionFilter restricts a statement to lines carrying a tag. A category
// filter matches the named node or any descendant (roll-up); the report
// service resolves the descendant set before the engine runs.
type DimensionFilter struct {
	Axis  GroupAxis `json:"axis"`
	TagID string    `json:"tag_id"`
}

// ReportLine is one row of a statement section. Amounts holds one value per
// snapshot column; ungrouped reports have the single "Total" column.
type ReportLine struct {
	AccountID int               `json:"account_id,omitempty"`
	Label     string            `json:"label"`
	Amounts   []decimal.Decimal `json:"amounts"`
}

// ReportSection groups related lines (Assets, Operating Activities, ...) with
// a per-column total.
type ReportSection struct {
	Label  string            `json:"label"`
	Lines  []ReportLine      `json:"lines"`
	Totals []decimal.Decimal `json:"totals"`
}

// ReportSnapshot is the cached, reproducible output of one statement
// computation. It is keyed by everything that went into it; a snapshot built
// from an older store or index version is stale.
type ReportSnapshot struct {
	Statement    StatementType    `json:"statement"`
	Period       Period           `json:"period"`
	Filter       *DimensionFilter `json:"filter,omitempty"`
	GroupBy      GroupAxis        `json:"group_by,omitempty"`
	ScenarioID   string           `json:"scenario_id,omitempty"`
	StoreVersion uint64           `json:"store_version"`
	IndexVersion uint64           `json:"index_version"`
	Columns      []string         `json:"columns"`
	// ColumnTags parallels Columns on grouped snapshots: the tag ID behind
	// each column, empty for the untagged column and the trailing Total
	// column. Columns holds display names, and a tag may itself be named
	// "(none)" or "Total"; consumers disambiguate by tag ID.
	ColumnTags  []string        `json:"column_tags,omitempty"`
	Sections    []ReportSection `json:"sections"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Section returns the section with the given label, or nil.
func (s *ReportSnapshot) Section(label string) *ReportSection {
	for i := range s.Sections {
		if s.Sections[i].Label == label {
			return &s.Sections[i]
		}
	}
	return nil
}

// Total returns the first-column total of a section, or zero when absent.
// Grouped snapshots carry the grand total in the last ("Total") column.
func (s *ReportSnapshot) Total(sectionLabel string) decimal.Decimal {
	sec := s.Section(sectionLabel)
	if sec == nil || len(sec.Totals) == 0 {
		return decimal.Zero
	}
	return sec.Totals[len(sec.Totals)-1]
}

// CacheKey builds the report-cache key for the given request coordinates.
func CacheKey(st StatementType, p Period, f *DimensionFilter, groupBy GroupAxis, scenarioID string, storeVersion, indexVersion uint64) string {
	var b strings.Builder
	b.WriteString(string(st))
	b.WriteByte('|')
	b.WriteString(p.String())
	b.WriteByte('|')
	if f != nil {
		b.WriteString(string(f.Axis))
		b.WriteByte(':')
		b.WriteString(f.TagID)
	}
	b.WriteByte('|')
	b.WriteString(string(groupBy))
	b.WriteByte('|')
	b.WriteString(scenarioID)
	b.WriteByte('|')
	b.WriteString(strconv.FormatUint(storeVersion, 10))
	b.WriteByte('.')
	b.WriteString(strconv.FormatUint(indexVersion, 10))
	return b.String()
}
