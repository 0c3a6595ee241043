package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Severity ranks findings. The numeric value is the sort weight.
type Severity int

const (
	SeverityLow    Severity = 1
	SeverityMedium Severity = 2
	SeverityHigh   Severity = 3
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalJSON encodes the severity by name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity maps a name back to its Severity.
func ParseSeverity(name string) (Severity, error) {
	switch name {
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	}
	return 0, fmt.Errorf("unknown severity %q", name)
}

// Status is the overall classification of a reconciliation run.
type Status string

const (
	StatusBalanced    Status = "balanced"
	StatusDiscrepancy Status = "discrepancy"
	StatusWarning     Status = "warning"
	StatusCritical    Status = "critical"
)

// Confidence returns the fixed confidence score attached to the status.
func (s Status) Confidence() int {
	switch s {
	case StatusCritical:
		return 30
	case StatusDiscrepancy:
		return 60
	case StatusWarning:
		return 70
	default:
		return 100
	}
}

// IssueType names a per-entry rule violation.
type IssueType string

const (
	IssueCashDiscrepancy IssueType = "cash_discrepancy"
	IssueHighReturns     IssueType = "high_returns"
	IssueLowOpeningCash  IssueType = "low_opening_cash"
	IssueZeroSales       IssueType = "zero_sales"
	IssueNegativeValues  IssueType = "negative_values"
)

// Issue is a single rule violation on an entry.
type Issue struct {
	Type        IssueType        `json:"type"`
	Severity    Severity         `json:"severity"`
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Percentage  *decimal.Decimal `json:"percentage,omitempty"`
}

// Discrepancy groups the issues found on one entry.
type Discrepancy struct {
	EntryID         string          `json:"entryId"`
	Date            time.Time       `json:"date"`
	RegisterNumber  string          `json:"registerNumber"`
	CashDifference  decimal.Decimal `json:"cashDifference"`
	Issues          []Issue         `json:"issues"`
	OverallSeverity Severity        `json:"overallSeverity"`
}

// ValidationErrorType names a cross-entry finding.
type ValidationErrorType string

const (
	ValidationDuplicateEntry ValidationErrorType = "duplicate_entry"
	ValidationMissingDates   ValidationErrorType = "missing_dates"
	ValidationAbnormalSales  ValidationErrorType = "abnormal_sales"
)

// ValidationError is a finding spanning several entries.
type ValidationError struct {
	Type        ValidationErrorType `json:"type"`
	Severity    Severity            `json:"severity"`
	Description string              `json:"description"`

	// duplicate_entry
	EntryIDs []string `json:"entryIds,omitempty"`

	// missing_dates
	FromDate    string `json:"fromDate,omitempty"`
	ToDate      string `json:"toDate,omitempty"`
	DaysMissing int    `json:"daysMissing,omitempty"`

	// abnormal_sales
	EntryID   string `json:"entryId,omitempty"`
	Date      string `json:"date,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// Totals aggregates the monetary fields of a batch.
type Totals struct {
	TotalSales            decimal.Decimal `json:"totalSales"`
	CashSales             decimal.Decimal `json:"cashSales"`
	CardSales             decimal.Decimal `json:"cardSales"`
	ReturnsRefunds        decimal.Decimal `json:"returnsRefunds"`
	CashDrops             decimal.Decimal `json:"cashDrops"`
	OpeningCash           decimal.Decimal `json:"openingCash"`
	ClosingCash           decimal.Decimal `json:"closingCash"`
	TotalCashDifference   decimal.Decimal `json:"totalCashDifference"`
	ExpectedCash          decimal.Decimal `json:"expectedCash"`
	OverallCashDifference decimal.Decimal `json:"overallCashDifference"`
	// Consistent reports whether the aggregate position agrees with the summed per-entry differences.
	Consistent bool `json:"consistent"`
}

// Summary holds the aggregate counts and ratios of a run.
type Summary struct {
	TotalEntries           int             `json:"totalEntries"`
	DiscrepancyCount       int             `json:"discrepancyCount"`
	ValidationErrorCount   int             `json:"validationErrorCount"`
	ReconciliationAccuracy float64         `json:"reconciliationAccuracy"`
	AverageDiscrepancy     decimal.Decimal `json:"averageDiscrepancy"`
	CashRecoveryNeeded     decimal.Decimal `json:"cashRecoveryNeeded"`
	TotalCashVariance      decimal.Decimal `json:"totalCashVariance"`
}

// Overall is the classified outcome of a run.
type Overall struct {
	Status          Status          `json:"status"`
	Confidence      int             `json:"confidence"`
	TotalDifference decimal.Decimal `json:"totalDifference"`
	Recommendations []string        `json:"recommendations"`
}

// ReconciliationResult is the engine output for one run.
type ReconciliationResult struct {
	Timestamp        time.Time         `json:"timestamp"`
	Totals           Totals            `json:"totals"`
	Discrepancies    []Discrepancy     `json:"discrepancies"`
	ValidationErrors []ValidationError `json:"validationErrors"`
	Summary          Summary           `json:"summary"`
	Overall          Overall           `json:"overall"`
}

// HistoryRecord is the compact projection of a result kept in rolling history.
type HistoryRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	Summary      Summary   `json:"summary"`
	Overall      Overall   `json:"overall"`
	TotalEntries int       `json:"totalEntries"`
}

// Trends are parallel series keyed by the ISO date of each recorded run.
type Trends struct {
	Dates            []string          `json:"dates"`
	Accuracy         []float64         `json:"accuracy"`
	DiscrepancyCount []int             `json:"discrepancyCount"`
	CashVariance     []decimal.Decimal `json:"cashVariance"`
}
