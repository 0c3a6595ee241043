package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/cashrecon/internal/domain/models"
	"github.com/mamadbah2/cashrecon/internal/repository/memory"
	"github.com/mamadbah2/cashrecon/internal/server/handlers"
	"github.com/mamadbah2/cashrecon/internal/service/reconciliation"
	"github.com/mamadbah2/cashrecon/internal/service/reporting"
	"github.com/mamadbah2/cashrecon/internal/service/sales"
)

type memorySheet struct {
	mu   sync.Mutex
	rows [][]interface{}
}

func (m *memorySheet) WriteRow(_ context.Context, _ string, values []interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, values)
	return nil
}

func (m *memorySheet) ReadRange(_ context.Context, _ string) ([][]interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]interface{}(nil), m.rows...), nil
}

func (m *memorySheet) ReplaceRange(_ context.Context, _ string, rows [][]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = rows
	return nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return newTestRouterWithHistory(t, memory.NewHistoryStore())
}

func newTestRouterWithHistory(t *testing.T, store reconciliation.HistoryStore) http.Handler {
	t.Helper()
	svc := sales.NewService(&memorySheet{}, reconciliation.NewTracker(store, nil), sales.Options{
		SheetRange: "Sales!A:O",
		Rules:      models.DefaultRules(),
	}, nil)
	return New(handlers.NewSalesHandler(svc, reporting.NewService(nil), nil), nil)
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func entryBody(date, closing string) map[string]interface{} {
	return map[string]interface{}{
		"date":           date,
		"registerNumber": "REG001",
		"openingCash":    "200",
		"cashSales":      "150",
		"cardSales":      "300",
		"returnsRefunds": "10",
		"cashDrops":      "100",
		"closingCash":    closing,
	}
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateEntry_ValidationFailure(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodPost, "/api/entries", map[string]interface{}{"registerNumber": "REG001"})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var outcome models.ValidationOutcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	assert.True(t, outcome.HasErrors)
	assert.Equal(t, []string{"date is required"}, outcome.Errors)
}

func TestEntryLifecycleAndReconciliation(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/entries", entryBody("2024-01-01", "180"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID             string `json:"id"`
		CashDifference string `json:"cashDifference"`
		Status         string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "-60", created.CashDifference)
	assert.Equal(t, "discrepancy", created.Status)

	rec = do(t, h, http.MethodPost, "/api/reconciliations", map[string]interface{}{"from": "2024-01-01", "to": "2024-01-31"})
	require.Equal(t, http.StatusOK, rec.Code)
	var result struct {
		Overall struct {
			Status     string `json:"status"`
			Confidence int    `json:"confidence"`
		} `json:"overall"`
		Discrepancies []struct {
			OverallSeverity string `json:"overallSeverity"`
		} `json:"discrepancies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "critical", result.Overall.Status)
	assert.Equal(t, 30, result.Overall.Confidence)
	require.Len(t, result.Discrepancies, 1)
	assert.Equal(t, "high", result.Discrepancies[0].OverallSeverity)

	rec = do(t, h, http.MethodGet, "/api/trends?days=7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var trends models.Trends
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trends))
	assert.Len(t, trends.Dates, 1)
	assert.Equal(t, []int{1}, trends.DiscrepancyCount)

	rec = do(t, h, http.MethodPut, "/api/entries/"+created.ID, entryBody("2024-01-01", "240"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/reconciliations/export?from=2024-01-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, rec.Body.Len())

	rec = do(t, h, http.MethodDelete, "/api/entries/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/entries/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListEntries_RejectsBadPeriod(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/entries?from=2024-02-01&to=2024-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/trends?days=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunReconciliation_RejectsInvalidRuleOverrides(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/reconciliations", map[string]interface{}{
		"rules": map[string]interface{}{"cashDiscrepancyThreshold": "-5"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cashDiscrepancyThreshold must not be negative")

	rec = do(t, h, http.MethodPost, "/api/reconciliations", map[string]interface{}{
		"rules": map[string]interface{}{"largeDiscrepancyThreshold": "1"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type brokenHistory struct{}

func (brokenHistory) Load(context.Context) ([]models.HistoryRecord, error) { return nil, nil }

func (brokenHistory) Save(context.Context, []models.HistoryRecord) error {
	return errors.New("history offline")
}

func TestRunReconciliation_ReturnsResultWhenHistoryFails(t *testing.T) {
	h := newTestRouterWithHistory(t, brokenHistory{})
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/entries", entryBody("2024-01-01", "180")).Code)

	rec := do(t, h, http.MethodPost, "/api/reconciliations", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Overall struct {
			Status string `json:"status"`
		} `json:"overall"`
		Summary struct {
			TotalEntries int `json:"totalEntries"`
		} `json:"summary"`
		HistoryError string `json:"historyError"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "critical", resp.Overall.Status)
	assert.Equal(t, 1, resp.Summary.TotalEntries)
	assert.Contains(t, resp.HistoryError, "history offline")
}
