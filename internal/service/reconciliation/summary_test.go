package reconciliation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/cashrecon/internal/domain/models"
)

func TestSummarize_RecoveryCountsShortfallsOnly(t *testing.T) {
	entries := []models.SalesEntry{
		newEntry(t, "2024-01-01", "REG001", scenarioA("180")), // -60
		newEntry(t, "2024-01-01", "REG002", scenarioA("260")), // +20
		newEntry(t, "2024-01-01", "REG003", scenarioA("230")), // -10
		newEntry(t, "2024-01-01", "REG004", scenarioA("240")), // 0
	}
	rules := models.DefaultRules()
	totals := CalculateTotals(entries)
	discrepancies := DetectDiscrepancies(entries, rules)

	summary := Summarize(len(entries), totals, discrepancies, nil)

	assert.Equal(t, 3, summary.DiscrepancyCount)
	assert.Equal(t, 25.0, summary.ReconciliationAccuracy)
	assert.True(t, summary.CashRecoveryNeeded.Equal(d("70")), summary.CashRecoveryNeeded.String())
	assert.True(t, summary.AverageDiscrepancy.Equal(d("30")), summary.AverageDiscrepancy.String())
	assert.True(t, summary.TotalCashVariance.Equal(d("50")), summary.TotalCashVariance.String())
}

func TestSummarize_SurplusOnlyNeedsNoRecovery(t *testing.T) {
	entries := []models.SalesEntry{
		newEntry(t, "2024-01-01", "REG001", scenarioA("300")),
		newEntry(t, "2024-01-01", "REG002", scenarioA("250")),
	}
	discrepancies := DetectDiscrepancies(entries, models.DefaultRules())

	summary := Summarize(len(entries), CalculateTotals(entries), discrepancies, nil)

	assert.True(t, summary.CashRecoveryNeeded.IsZero())
	assert.True(t, summary.AverageDiscrepancy.Equal(d("35")))
}

func TestClassify_HighValidationErrorIsCritical(t *testing.T) {
	verrs := []models.ValidationError{{Type: models.ValidationDuplicateEntry, Severity: models.SeverityHigh}}
	summary := Summarize(2, models.Totals{Consistent: true}, nil, verrs)

	overall := Classify(summary, models.Totals{Consistent: true}, nil, verrs, models.DefaultRules())

	assert.Equal(t, models.StatusCritical, overall.Status)
	assert.Equal(t, 30, overall.Confidence)
}

func TestCalculateTotals_SumsEveryField(t *testing.T) {
	entries := []models.SalesEntry{
		newEntry(t, "2024-01-01", "REG001", scenarioA("240")),
		newEntry(t, "2024-01-02", "REG001", amounts("100.10", "20.20", "30.30", "0.40", "5.50", "110.00")),
	}

	totals := CalculateTotals(entries)

	assert.True(t, totals.OpeningCash.Equal(d("300.10")))
	assert.True(t, totals.CashSales.Equal(d("170.20")))
	assert.True(t, totals.CardSales.Equal(d("330.30")))
	assert.True(t, totals.TotalSales.Equal(d("500.50")))
	assert.True(t, totals.ReturnsRefunds.Equal(d("10.40")))
	assert.True(t, totals.CashDrops.Equal(d("105.50")))
	assert.True(t, totals.ClosingCash.Equal(d("350.00")))
	assert.True(t, totals.ExpectedCash.Equal(d("354.40")))
	assert.True(t, totals.OverallCashDifference.Equal(d("-4.40")))
	assert.True(t, totals.TotalCashDifference.Equal(d("-4.40")))
	assert.True(t, totals.Consistent)
}
