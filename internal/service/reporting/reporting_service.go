package reporting

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/cashrecon/internal/domain/models"
)

const (
	dateLayout        = models.DateLayout
	maxListedFindings = 5
)

// Service renders reconciliation results for people: chat summaries and spreadsheets.
type Service struct {
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// DailySummary formats a result as a short plain-text message.
func (s *Service) DailySummary(result models.ReconciliationResult, start, end time.Time) string {
	var b strings.Builder

	if result.Overall.Status == models.StatusCritical {
		b.WriteString("ALERT: critical reconciliation findings.\n")
	}

	fmt.Fprintf(&b, "Cash reconciliation (%s-%s): %s, confidence %d%%.\n",
		start.Format(dateLayout), end.Format(dateLayout), result.Overall.Status, result.Overall.Confidence)

	if result.Summary.TotalEntries == 0 {
		b.WriteString("No sales entries recorded for this period.\n")
	} else {
		fmt.Fprintf(&b, "Entries %d, discrepancies %d, accuracy %.1f%%.\n",
			result.Summary.TotalEntries, result.Summary.DiscrepancyCount, result.Summary.ReconciliationAccuracy)
		fmt.Fprintf(&b, "Sales %s (cash %s, card %s). Cash variance %s, shortfall to recover %s.\n",
			result.Totals.TotalSales.StringFixed(2),
			result.Totals.CashSales.StringFixed(2),
			result.Totals.CardSales.StringFixed(2),
			result.Summary.TotalCashVariance.StringFixed(2),
			result.Summary.CashRecoveryNeeded.StringFixed(2))
	}

	for i, d := range result.Discrepancies {
		if i == maxListedFindings {
			fmt.Fprintf(&b, "... and %d more discrepancies.\n", len(result.Discrepancies)-maxListedFindings)
			break
		}
		fmt.Fprintf(&b, "- [%s] %s %s: %s\n", d.OverallSeverity, d.Date.Format(dateLayout), d.RegisterNumber, d.Issues[0].Description)
	}

	for i, v := range result.ValidationErrors {
		if i == maxListedFindings {
			fmt.Fprintf(&b, "... and %d more validation errors.\n", len(result.ValidationErrors)-maxListedFindings)
			break
		}
		fmt.Fprintf(&b, "- [%s] %s\n", v.Severity, v.Description)
	}

	for _, rec := range result.Overall.Recommendations {
		fmt.Fprintf(&b, "> %s\n", rec)
	}

	return strings.TrimRight(b.String(), "\n")
}
