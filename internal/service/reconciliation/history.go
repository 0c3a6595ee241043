package reconciliation

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/cashrecon/internal/domain/models"
)

// HistoryRetention bounds the rolling history by age.
const HistoryRetention = 90 * 24 * time.Hour

// HistoryStore persists the rolling history as a whole list.
type HistoryStore interface {
	Load(ctx context.Context) ([]models.HistoryRecord, error)
	Save(ctx context.Context, records []models.HistoryRecord) error
}

// Tracker appends run summaries to the history and answers trend queries.
// It assumes exclusive access to the store for the duration of a call;
// callers sharing a store must serialize Record.
type Tracker struct {
	store  HistoryStore
	logger *zap.Logger
	now    func() time.Time
}

// NewTracker wires a tracker around the store.
func NewTracker(store HistoryStore, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{store: store, logger: logger, now: time.Now}
}

// Compact projects a result into its history form.
func Compact(result models.ReconciliationResult) models.HistoryRecord {
	return models.HistoryRecord{
		Timestamp:    result.Timestamp,
		Summary:      result.Summary,
		Overall:      result.Overall,
		TotalEntries: result.Summary.TotalEntries,
	}
}

// Record appends the result, prunes records older than HistoryRetention and persists the list.
func (t *Tracker) Record(ctx context.Context, result models.ReconciliationResult) error {
	records, err := t.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	records = append(records, Compact(result))

	cutoff := t.now().Add(-HistoryRetention)
	kept := records[:0]
	for _, record := range records {
		if record.Timestamp.Before(cutoff) {
			continue
		}
		kept = append(kept, record)
	}

	if pruned := len(records) - len(kept); pruned > 0 {
		t.logger.Debug("pruned reconciliation history", zap.Int("pruned", pruned))
	}

	if err := t.store.Save(ctx, kept); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// Trends returns the accuracy, discrepancy count and cash variance series for
// runs recorded within the last windowDays days. Days without a run are absent.
func (t *Tracker) Trends(ctx context.Context, windowDays int) (models.Trends, error) {
	trends := models.Trends{
		Dates:            []string{},
		Accuracy:         []float64{},
		DiscrepancyCount: []int{},
		CashVariance:     []decimal.Decimal{},
	}

	records, err := t.store.Load(ctx)
	if err != nil {
		return trends, fmt.Errorf("load history: %w", err)
	}

	cutoff := t.now().AddDate(0, 0, -windowDays)
	for _, record := range records {
		if record.Timestamp.Before(cutoff) {
			continue
		}
		trends.Dates = append(trends.Dates, record.Timestamp.UTC().Format(models.DateLayout))
		trends.Accuracy = append(trends.Accuracy, record.Summary.ReconciliationAccuracy)
		trends.DiscrepancyCount = append(trends.DiscrepancyCount, record.Summary.DiscrepancyCount)
		trends.CashVariance = append(trends.CashVariance, record.Summary.TotalCashVariance)
	}

	return trends, nil
}
