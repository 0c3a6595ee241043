package reconciliation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/cashrecon/internal/domain/models"
)

// DetectDiscrepancies evaluates every entry against the rules and returns the
// offending ones ordered by overall severity, highest first. Entries with
// equal severity keep their input order.
func DetectDiscrepancies(entries []models.SalesEntry, rules models.ReconciliationRules) []models.Discrepancy {
	discrepancies := make([]models.Discrepancy, 0)

	for _, entry := range entries {
		issues := entryIssues(entry, rules)
		if len(issues) == 0 {
			continue
		}

		discrepancies = append(discrepancies, models.Discrepancy{
			EntryID:         entry.ID,
			Date:            entry.Date,
			RegisterNumber:  entry.RegisterNumber,
			CashDifference:  entry.CashDifference,
			Issues:          issues,
			OverallSeverity: maxSeverity(issues),
		})
	}

	sort.SliceStable(discrepancies, func(i, j int) bool {
		return discrepancies[i].OverallSeverity > discrepancies[j].OverallSeverity
	})

	return discrepancies
}

func entryIssues(entry models.SalesEntry, rules models.ReconciliationRules) []models.Issue {
	var issues []models.Issue

	absDiff := entry.CashDifference.Abs()
	if absDiff.GreaterThan(rules.CashDiscrepancyThreshold) {
		severity := models.SeverityMedium
		if absDiff.GreaterThan(rules.LargeDiscrepancyThreshold) {
			severity = models.SeverityHigh
		}
		kind := "overage"
		if entry.CashDifference.IsNegative() {
			kind = "shortage"
		}
		amount := entry.CashDifference
		issues = append(issues, models.Issue{
			Type:        models.IssueCashDiscrepancy,
			Severity:    severity,
			Description: fmt.Sprintf("Cash %s of %s exceeds threshold of %s", kind, absDiff.StringFixed(2), rules.CashDiscrepancyThreshold.StringFixed(2)),
			Amount:      &amount,
		})
	}

	returnsPct := returnsPercentage(entry)
	if returnsPct.GreaterThan(rules.MaxReturnsPercentage) {
		pct := returnsPct.Round(2)
		issues = append(issues, models.Issue{
			Type:        models.IssueHighReturns,
			Severity:    models.SeverityMedium,
			Description: fmt.Sprintf("Returns are %s%% of sales, above the %s%% limit", pct.StringFixed(2), rules.MaxReturnsPercentage.String()),
			Percentage:  &pct,
		})
	}

	if entry.OpeningCash.LessThan(rules.MinOpeningCash) {
		amount := entry.OpeningCash
		issues = append(issues, models.Issue{
			Type:        models.IssueLowOpeningCash,
			Severity:    models.SeverityLow,
			Description: fmt.Sprintf("Opening cash %s is below the %s minimum", amount.StringFixed(2), rules.MinOpeningCash.StringFixed(2)),
			Amount:      &amount,
		})
	}

	if entry.TotalSales.IsZero() && entry.CashSales.IsZero() && entry.CardSales.IsZero() {
		issues = append(issues, models.Issue{
			Type:        models.IssueZeroSales,
			Severity:    models.SeverityMedium,
			Description: "No sales recorded for this register",
		})
	}

	if negatives := negativeFields(entry); len(negatives) > 0 {
		issues = append(issues, models.Issue{
			Type:        models.IssueNegativeValues,
			Severity:    models.SeverityHigh,
			Description: "Negative values recorded for " + strings.Join(negatives, ", "),
		})
	}

	return issues
}

// returnsPercentage is zero when there are no sales.
func returnsPercentage(entry models.SalesEntry) decimal.Decimal {
	if !entry.TotalSales.IsPositive() {
		return decimal.Zero
	}
	return entry.ReturnsRefunds.Mul(hundred).Div(entry.TotalSales)
}

func negativeFields(entry models.SalesEntry) []string {
	var fields []string
	if entry.CashSales.IsNegative() {
		fields = append(fields, "cashSales")
	}
	if entry.CardSales.IsNegative() {
		fields = append(fields, "cardSales")
	}
	if entry.ClosingCash.IsNegative() {
		fields = append(fields, "closingCash")
	}
	return fields
}

func maxSeverity(issues []models.Issue) models.Severity {
	highest := models.SeverityLow
	for _, issue := range issues {
		if issue.Severity > highest {
			highest = issue.Severity
		}
	}
	return highest
}
