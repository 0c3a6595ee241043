package reconciliation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/cashrecon/internal/domain/models"
)

func issueTypes(d models.Discrepancy) []models.IssueType {
	types := make([]models.IssueType, 0, len(d.Issues))
	for _, issue := range d.Issues {
		types = append(types, issue.Type)
	}
	return types
}

func TestDetectDiscrepancies_ThresholdBoundaries(t *testing.T) {
	cases := []struct {
		name     string
		closing  string
		flagged  bool
		severity models.Severity
	}{
		{"at cash threshold", "245", false, 0},
		{"just over cash threshold", "245.01", true, models.SeverityMedium},
		{"at large threshold", "190", true, models.SeverityMedium},
		{"over large threshold", "189.99", true, models.SeverityHigh},
		{"large overage", "300", true, models.SeverityHigh},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry := newEntry(t, "2024-01-01", "REG001", scenarioA(tc.closing))
			got := DetectDiscrepancies([]models.SalesEntry{entry}, models.DefaultRules())

			if !tc.flagged {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, []models.IssueType{models.IssueCashDiscrepancy}, issueTypes(got[0]))
			assert.Equal(t, tc.severity, got[0].OverallSeverity)
		})
	}
}

func TestDetectDiscrepancies_HighReturns(t *testing.T) {
	// 100 / 450 = 22.22%
	entry := newEntry(t, "2024-01-01", "REG001", amounts("200", "150", "300", "100", "100", "150"))

	got := DetectDiscrepancies([]models.SalesEntry{entry}, models.DefaultRules())

	require.Len(t, got, 1)
	require.Len(t, got[0].Issues, 1)
	issue := got[0].Issues[0]
	assert.Equal(t, models.IssueHighReturns, issue.Type)
	assert.Equal(t, models.SeverityMedium, issue.Severity)
	require.NotNil(t, issue.Percentage)
	assert.Equal(t, "22.22", issue.Percentage.StringFixed(2))
}

func TestDetectDiscrepancies_ZeroSalesDoesNotDivide(t *testing.T) {
	entry := newEntry(t, "2024-01-01", "REG001", amounts("200", "0", "0", "25", "0", "175"))

	got := DetectDiscrepancies([]models.SalesEntry{entry}, models.DefaultRules())

	require.Len(t, got, 1)
	assert.Equal(t, []models.IssueType{models.IssueZeroSales}, issueTypes(got[0]))
	assert.Equal(t, models.SeverityMedium, got[0].OverallSeverity)
}

func TestDetectDiscrepancies_LowOpeningCash(t *testing.T) {
	entry := newEntry(t, "2024-01-01", "REG001", amounts("50", "150", "300", "10", "100", "90"))

	got := DetectDiscrepancies([]models.SalesEntry{entry}, models.DefaultRules())

	require.Len(t, got, 1)
	assert.Equal(t, []models.IssueType{models.IssueLowOpeningCash}, issueTypes(got[0]))
	assert.Equal(t, models.SeverityLow, got[0].OverallSeverity)
}

func TestDetectDiscrepancies_NegativeValuesAreFlaggedNotRejected(t *testing.T) {
	entry := newEntry(t, "2024-01-01", "REG001", amounts("200", "-10", "300", "0", "0", "190"))

	got := DetectDiscrepancies([]models.SalesEntry{entry}, models.DefaultRules())

	require.Len(t, got, 1)
	assert.Contains(t, issueTypes(got[0]), models.IssueNegativeValues)
	assert.Equal(t, models.SeverityHigh, got[0].OverallSeverity)
}

func TestDetectDiscrepancies_IssuesKeepEvaluationOrder(t *testing.T) {
	// short by 70 with a 40 float and returns above the limit
	entry := newEntry(t, "2024-01-01", "REG001", amounts("40", "100", "100", "30", "0", "40"))

	got := DetectDiscrepancies([]models.SalesEntry{entry}, models.DefaultRules())

	require.Len(t, got, 1)
	assert.Equal(t, []models.IssueType{
		models.IssueCashDiscrepancy,
		models.IssueHighReturns,
		models.IssueLowOpeningCash,
	}, issueTypes(got[0]))
	assert.Equal(t, models.SeverityHigh, got[0].OverallSeverity)
}

func TestDetectDiscrepancies_StableSeverityOrder(t *testing.T) {
	low1 := newEntry(t, "2024-01-01", "REG001", amounts("50", "150", "300", "10", "100", "90"))
	med1 := newEntry(t, "2024-01-02", "REG001", scenarioA("230"))
	low2 := newEntry(t, "2024-01-03", "REG001", amounts("50", "150", "300", "10", "100", "90"))
	high := newEntry(t, "2024-01-04", "REG001", scenarioA("180"))
	med2 := newEntry(t, "2024-01-05", "REG001", scenarioA("250"))

	got := DetectDiscrepancies([]models.SalesEntry{low1, med1, low2, high, med2}, models.DefaultRules())

	ids := make([]string, 0, len(got))
	for _, d := range got {
		ids = append(ids, d.EntryID)
	}
	assert.Equal(t, []string{high.ID, med1.ID, med2.ID, low1.ID, low2.ID}, ids)
}
