package reconciliation

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/cashrecon/internal/domain/models"
)

// Engine runs the reconciliation pipeline over an in-memory batch of entries.
// It holds no rules or history of its own; both are supplied per call.
type Engine struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewEngine builds an engine. A nil logger disables logging.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger, now: time.Now}
}

// Reconcile computes totals, discrepancies, cross-entry findings, summary and
// overall status for the entries. Entries should be in chronological order.
// It never fails on interpretable data.
func (e *Engine) Reconcile(entries []models.SalesEntry, rules models.ReconciliationRules) models.ReconciliationResult {
	prepared := prepareEntries(entries)

	totals := CalculateTotals(prepared)
	if !totals.Consistent {
		e.logger.Warn("aggregate cash position disagrees with per-entry differences",
			zap.String("overall_cash_difference", totals.OverallCashDifference.String()),
			zap.String("total_cash_difference", totals.TotalCashDifference.String()))
	}

	discrepancies := DetectDiscrepancies(prepared, rules)
	validationErrors := ValidateBatch(prepared)
	summary := Summarize(len(prepared), totals, discrepancies, validationErrors)
	overall := Classify(summary, totals, discrepancies, validationErrors, rules)

	e.logger.Debug("reconciliation completed",
		zap.Int("entries", summary.TotalEntries),
		zap.Int("discrepancies", summary.DiscrepancyCount),
		zap.Int("validation_errors", summary.ValidationErrorCount),
		zap.String("status", string(overall.Status)))

	return models.ReconciliationResult{
		Timestamp:        e.now().UTC(),
		Totals:           totals,
		Discrepancies:    discrepancies,
		ValidationErrors: validationErrors,
		Summary:          summary,
		Overall:          overall,
	}
}

// prepareEntries fills a missing totalSales from its components. Other
// derived fields are taken as supplied.
func prepareEntries(entries []models.SalesEntry) []models.SalesEntry {
	prepared := make([]models.SalesEntry, len(entries))
	for i, entry := range entries {
		if entry.TotalSales.IsZero() {
			entry.TotalSales = entry.CashSales.Add(entry.CardSales)
		}
		prepared[i] = entry
	}
	return prepared
}

var hundred = decimal.NewFromInt(100)
