package reconciliation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/cashrecon/internal/domain/models"
)

const (
	accuracyFloor          = 90.0
	allChecksPassedMessage = "All checks passed: reconciliation is complete."
)

// Summarize aggregates counts and ratios for a run. An empty batch is 100% accurate.
func Summarize(totalEntries int, totals models.Totals, discrepancies []models.Discrepancy, validationErrors []models.ValidationError) models.Summary {
	summary := models.Summary{
		TotalEntries:           totalEntries,
		DiscrepancyCount:       len(discrepancies),
		ValidationErrorCount:   len(validationErrors),
		ReconciliationAccuracy: 100,
		AverageDiscrepancy:     decimal.Zero,
		CashRecoveryNeeded:     decimal.Zero,
		TotalCashVariance:      totals.OverallCashDifference.Abs(),
	}

	if totalEntries > 0 {
		summary.ReconciliationAccuracy = float64(totalEntries-len(discrepancies)) / float64(totalEntries) * 100
	}

	if len(discrepancies) == 0 {
		return summary
	}

	absSum := decimal.Zero
	for _, d := range discrepancies {
		absSum = absSum.Add(d.CashDifference.Abs())
		if d.CashDifference.IsNegative() {
			summary.CashRecoveryNeeded = summary.CashRecoveryNeeded.Add(d.CashDifference.Abs())
		}
	}
	summary.AverageDiscrepancy = absSum.Div(decimal.NewFromInt(int64(len(discrepancies))))

	return summary
}

// Classify walks the status ladder (critical, warning, discrepancy, balanced)
// and assembles the recommendations.
func Classify(summary models.Summary, totals models.Totals, discrepancies []models.Discrepancy, validationErrors []models.ValidationError, rules models.ReconciliationRules) models.Overall {
	status := classifyStatus(summary, discrepancies, validationErrors, rules)

	return models.Overall{
		Status:          status,
		Confidence:      status.Confidence(),
		TotalDifference: totals.OverallCashDifference,
		Recommendations: recommendations(status, summary, totals),
	}
}

func classifyStatus(summary models.Summary, discrepancies []models.Discrepancy, validationErrors []models.ValidationError, rules models.ReconciliationRules) models.Status {
	for _, d := range discrepancies {
		if d.OverallSeverity == models.SeverityHigh {
			return models.StatusCritical
		}
	}
	for _, v := range validationErrors {
		if v.Severity == models.SeverityHigh {
			return models.StatusCritical
		}
	}

	if len(discrepancies) > 0 || len(validationErrors) > 0 {
		return models.StatusWarning
	}

	if summary.TotalCashVariance.GreaterThan(rules.CashDiscrepancyThreshold) {
		return models.StatusDiscrepancy
	}

	return models.StatusBalanced
}

func recommendations(status models.Status, summary models.Summary, totals models.Totals) []string {
	var recs []string

	switch status {
	case models.StatusCritical:
		recs = append(recs, "Immediate attention required: resolve high-severity discrepancies and duplicate entries before closing the day.")
	case models.StatusWarning:
		recs = append(recs, "Review the flagged entries and validation warnings.")
	case models.StatusDiscrepancy:
		recs = append(recs, fmt.Sprintf("Investigate the overall cash variance of %s across registers.", summary.TotalCashVariance.StringFixed(2)))
	}

	if summary.ReconciliationAccuracy < accuracyFloor {
		recs = append(recs, fmt.Sprintf("Improve data entry accuracy: only %.1f%% of entries reconciled cleanly.", summary.ReconciliationAccuracy))
	}

	if summary.CashRecoveryNeeded.IsPositive() {
		recs = append(recs, fmt.Sprintf("Recover %s in cash shortages.", summary.CashRecoveryNeeded.StringFixed(2)))
	}

	if !totals.Consistent {
		recs = append(recs, "Re-enter affected entries: per-entry cash differences do not match the aggregate cash position.")
	}

	if len(recs) == 0 {
		recs = append(recs, allChecksPassedMessage)
	}

	return recs
}
