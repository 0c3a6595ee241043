package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/cashrecon/internal/domain/models"
	repo "github.com/mamadbah2/cashrecon/internal/repository/sheets"
	"github.com/mamadbah2/cashrecon/internal/service/reconciliation"
)

// ErrEntryNotFound indicates no stored entry carries the requested id.
var ErrEntryNotFound = errors.New("sales entry not found")

// ErrInvalidEntry is matched by every *InvalidEntryError.
var ErrInvalidEntry = errors.New("invalid sales entry")

// ErrInvalidRules is returned when rule overrides produce an unusable rule set.
var ErrInvalidRules = errors.New("invalid reconciliation rules")

// ErrHistoryNotRecorded wraps a history store failure after a reconciliation
// has been computed. The result returned alongside it is complete.
var ErrHistoryNotRecorded = errors.New("reconciliation history not recorded")

// InvalidEntryError carries the validation outcome of a rejected submission.
type InvalidEntryError struct {
	Outcome models.ValidationOutcome
}

func (e *InvalidEntryError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidEntry, strings.Join(e.Outcome.Errors, "; "))
}

// Is reports whether target is ErrInvalidEntry.
func (e *InvalidEntryError) Is(target error) bool {
	return target == ErrInvalidEntry
}

// Period bounds a query by calendar day, inclusive. Zero values are open ends.
type Period struct {
	From time.Time
	To   time.Time
}

func (p Period) contains(day time.Time) bool {
	if !p.From.IsZero() && day.Before(models.TruncateDay(p.From)) {
		return false
	}
	if !p.To.IsZero() && day.After(models.TruncateDay(p.To)) {
		return false
	}
	return true
}

// ImportResult reports the outcome of one submission in a batch import.
type ImportResult struct {
	Index   int                      `json:"index"`
	EntryID string                   `json:"entryId,omitempty"`
	Outcome models.ValidationOutcome `json:"outcome"`
	Error   string                   `json:"error,omitempty"`
}

// Service stores sales entries in the spreadsheet and runs reconciliations over them.
type Service struct {
	repo       repo.Repository
	sheetRange string
	engine     *reconciliation.Engine
	validator  *reconciliation.EntryValidator
	tracker    *reconciliation.Tracker
	rules      models.ReconciliationRules
	logger     *zap.Logger
	now        func() time.Time

	// sheetMu serializes appends and read-modify-write rewrites of the sales range.
	sheetMu sync.Mutex
	// historyMu serializes history load/append/prune/save.
	historyMu sync.Mutex
}

// Options configures a Service.
type Options struct {
	SheetRange string
	Rules      models.ReconciliationRules
	Registers  []string
}

// NewService wires a sales service.
func NewService(repository repo.Repository, tracker *reconciliation.Tracker, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:       repository,
		sheetRange: opts.SheetRange,
		engine:     reconciliation.NewEngine(logger.Named("engine")),
		validator:  reconciliation.NewEntryValidator(opts.Registers),
		tracker:    tracker,
		rules:      opts.Rules,
		logger:     logger,
		now:        time.Now,
	}
}

// Rules returns the configured reconciliation rules.
func (s *Service) Rules() models.ReconciliationRules {
	return s.rules
}

// ValidateEntry runs the pre-save checks without storing anything.
func (s *Service) ValidateEntry(input models.EntryInput) models.ValidationOutcome {
	return s.validator.Validate(input)
}

// AddSalesData validates the submission, derives its fields and appends it to the sheet.
func (s *Service) AddSalesData(ctx context.Context, input models.EntryInput) (models.SalesEntry, error) {
	entry, err := s.buildEntry(input)
	if err != nil {
		return models.SalesEntry{}, err
	}

	s.sheetMu.Lock()
	err = s.repo.WriteRow(ctx, s.sheetRange, entryToRow(entry))
	s.sheetMu.Unlock()
	if err != nil {
		return models.SalesEntry{}, fmt.Errorf("save sales entry: %w", err)
	}

	s.logger.Info("sales entry saved",
		zap.String("entry_id", entry.ID),
		zap.String("date", entry.DateKey()),
		zap.String("register", entry.RegisterNumber),
		zap.String("status", string(entry.Status)))

	return entry, nil
}

// ImportEntries adds each submission independently; a rejected one does not stop the rest.
func (s *Service) ImportEntries(ctx context.Context, inputs []models.EntryInput) []ImportResult {
	results := make([]ImportResult, 0, len(inputs))
	for i, input := range inputs {
		result := ImportResult{Index: i, Outcome: models.ValidationOutcome{Errors: []string{}}}

		entry, err := s.AddSalesData(ctx, input)
		var invalid *InvalidEntryError
		switch {
		case errors.As(err, &invalid):
			result.Outcome = invalid.Outcome
		case err != nil:
			result.Error = err.Error()
		default:
			result.EntryID = entry.ID
		}
		results = append(results, result)
	}
	return results
}

// ListEntries returns the stored entries within the period in chronological order.
// Rows that cannot be parsed, including the header, are skipped.
func (s *Service) ListEntries(ctx context.Context, period Period) ([]models.SalesEntry, error) {
	return s.listEntries(ctx, period, s.rules)
}

func (s *Service) listEntries(ctx context.Context, period Period, rules models.ReconciliationRules) ([]models.SalesEntry, error) {
	rows, err := s.repo.ReadRange(ctx, s.sheetRange)
	if err != nil {
		return nil, fmt.Errorf("load sales range: %w", err)
	}

	entries := make([]models.SalesEntry, 0, len(rows))
	for i, row := range rows {
		entry, err := rowToEntry(row, rules)
		if err != nil {
			s.logger.Debug("skip sales row", zap.Int("row", i+1), zap.Error(err))
			continue
		}
		if !period.contains(entry.Date) {
			continue
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})

	return entries, nil
}

// UpdateEntry replaces an entry with a re-validated version that keeps its id.
func (s *Service) UpdateEntry(ctx context.Context, id string, input models.EntryInput) (models.SalesEntry, error) {
	replacement, err := s.buildEntry(input)
	if err != nil {
		return models.SalesEntry{}, err
	}
	replacement.ID = id

	err = s.rewrite(ctx, func(rows [][]interface{}) ([][]interface{}, bool) {
		for i, row := range rows {
			if rowID(row) == id {
				rows[i] = entryToRow(replacement)
				return rows, true
			}
		}
		return rows, false
	})
	if err != nil {
		return models.SalesEntry{}, err
	}

	s.logger.Info("sales entry replaced", zap.String("entry_id", id))
	return replacement, nil
}

// DeleteEntry removes an entry from the sheet.
func (s *Service) DeleteEntry(ctx context.Context, id string) error {
	err := s.rewrite(ctx, func(rows [][]interface{}) ([][]interface{}, bool) {
		for i, row := range rows {
			if rowID(row) == id {
				return append(rows[:i], rows[i+1:]...), true
			}
		}
		return rows, false
	})
	if err != nil {
		return err
	}

	s.logger.Info("sales entry deleted", zap.String("entry_id", id))
	return nil
}

// Reconcile runs the engine over the period without touching history.
func (s *Service) Reconcile(ctx context.Context, period Period, override models.RulesOverride) (models.ReconciliationResult, error) {
	_, result, err := s.Snapshot(ctx, period, override)
	return result, err
}

// Snapshot returns the period's entries together with their reconciliation.
func (s *Service) Snapshot(ctx context.Context, period Period, override models.RulesOverride) ([]models.SalesEntry, models.ReconciliationResult, error) {
	rules := s.rules.Apply(override)
	if err := rules.Validate(); err != nil {
		return nil, models.ReconciliationResult{}, fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}
	entries, err := s.listEntries(ctx, period, rules)
	if err != nil {
		return nil, models.ReconciliationResult{}, err
	}
	return entries, s.engine.Reconcile(entries, rules), nil
}

// RunReconciliation reconciles the period and appends the run to history.
// A history failure returns the result together with ErrHistoryNotRecorded.
func (s *Service) RunReconciliation(ctx context.Context, period Period, override models.RulesOverride) (models.ReconciliationResult, error) {
	result, err := s.Reconcile(ctx, period, override)
	if err != nil {
		return models.ReconciliationResult{}, err
	}

	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	if err := s.tracker.Record(ctx, result); err != nil {
		return result, fmt.Errorf("%w: %w", ErrHistoryNotRecorded, err)
	}

	s.logger.Info("reconciliation recorded",
		zap.String("status", string(result.Overall.Status)),
		zap.Int("entries", result.Summary.TotalEntries),
		zap.Int("discrepancies", result.Summary.DiscrepancyCount))

	return result, nil
}

// Trends returns the history series for the last windowDays days.
func (s *Service) Trends(ctx context.Context, windowDays int) (models.Trends, error) {
	return s.tracker.Trends(ctx, windowDays)
}

func (s *Service) buildEntry(input models.EntryInput) (models.SalesEntry, error) {
	outcome := s.validator.Validate(input)
	if outcome.HasErrors {
		return models.SalesEntry{}, &InvalidEntryError{Outcome: outcome}
	}

	date, err := time.Parse(models.DateLayout, input.Date)
	if err != nil {
		return models.SalesEntry{}, &InvalidEntryError{Outcome: models.ValidationOutcome{
			HasErrors: true,
			Errors:    []string{"date must be a calendar date (YYYY-MM-DD)"},
		}}
	}

	entry := models.NewSalesEntry(date, input.RegisterNumber, input.Amounts(), s.rules, s.now())
	entry.Notes = input.Notes
	return entry, nil
}

// rewrite loads the sheet, lets mutate change the rows and writes them back.
// mutate reports whether it found its target.
func (s *Service) rewrite(ctx context.Context, mutate func([][]interface{}) ([][]interface{}, bool)) error {
	s.sheetMu.Lock()
	defer s.sheetMu.Unlock()

	rows, err := s.repo.ReadRange(ctx, s.sheetRange)
	if err != nil {
		return fmt.Errorf("load sales range: %w", err)
	}

	rows, found := mutate(rows)
	if !found {
		return ErrEntryNotFound
	}

	if len(rows) == 0 || rowID(rows[0]) != fmt.Sprint(headerRow[colID]) {
		rows = append([][]interface{}{headerRow}, rows...)
	}

	if err := s.repo.ReplaceRange(ctx, s.sheetRange, rows); err != nil {
		return fmt.Errorf("rewrite sales range: %w", err)
	}
	return nil
}

func rowID(row []interface{}) string {
	if len(row) == 0 {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[colID]))
}
