package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/cashrecon/internal/domain/models"
	"github.com/mamadbah2/cashrecon/internal/service/sales"
)

const defaultTrendDays = 30

// SalesService is the subset of the sales service used over HTTP.
type SalesService interface {
	AddSalesData(ctx context.Context, input models.EntryInput) (models.SalesEntry, error)
	ImportEntries(ctx context.Context, inputs []models.EntryInput) []sales.ImportResult
	ValidateEntry(input models.EntryInput) models.ValidationOutcome
	ListEntries(ctx context.Context, period sales.Period) ([]models.SalesEntry, error)
	UpdateEntry(ctx context.Context, id string, input models.EntryInput) (models.SalesEntry, error)
	DeleteEntry(ctx context.Context, id string) error
	RunReconciliation(ctx context.Context, period sales.Period, override models.RulesOverride) (models.ReconciliationResult, error)
	Snapshot(ctx context.Context, period sales.Period, override models.RulesOverride) ([]models.SalesEntry, models.ReconciliationResult, error)
	Trends(ctx context.Context, windowDays int) (models.Trends, error)
}

// WorkbookWriter streams a reconciliation as a spreadsheet.
type WorkbookWriter interface {
	WriteWorkbook(w io.Writer, entries []models.SalesEntry, result models.ReconciliationResult) error
}

// SalesHandler exposes sales entries and reconciliation runs over HTTP.
type SalesHandler struct {
	svc      SalesService
	workbook WorkbookWriter
	logger   *zap.Logger
}

// NewSalesHandler constructs the HTTP handler adapter.
func NewSalesHandler(svc SalesService, workbook WorkbookWriter, logger *zap.Logger) *SalesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesHandler{svc: svc, workbook: workbook, logger: logger}
}

// reconcileResponse is the run result plus any history store failure.
type reconcileResponse struct {
	models.ReconciliationResult
	HistoryError string `json:"historyError,omitempty"`
}

type reconcileRequest struct {
	From  string               `json:"from"`
	To    string               `json:"to"`
	Rules models.RulesOverride `json:"rules"`
}

// CreateEntry validates and stores one entry.
func (h *SalesHandler) CreateEntry(c *gin.Context) {
	var input models.EntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("invalid entry payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry, err := h.svc.AddSalesData(c.Request.Context(), input)
	if err != nil {
		h.writeEntryError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// ImportEntries stores a batch; each element is validated independently.
func (h *SalesHandler) ImportEntries(c *gin.Context) {
	var inputs []models.EntryInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
		h.logger.Warn("invalid import payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": h.svc.ImportEntries(c.Request.Context(), inputs)})
}

// ValidateEntry reports the pre-save validation outcome without storing.
func (h *SalesHandler) ValidateEntry(c *gin.Context) {
	var input models.EntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	c.JSON(http.StatusOK, h.svc.ValidateEntry(input))
}

// ListEntries returns entries in the optional from/to query window.
func (h *SalesHandler) ListEntries(c *gin.Context) {
	period, err := periodFrom(c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, err := h.svc.ListEntries(c.Request.Context(), period)
	if err != nil {
		h.logger.Error("failed listing entries", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to load entries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// UpdateEntry edit-replaces an entry.
func (h *SalesHandler) UpdateEntry(c *gin.Context) {
	var input models.EntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry, err := h.svc.UpdateEntry(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.writeEntryError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// DeleteEntry removes an entry.
func (h *SalesHandler) DeleteEntry(c *gin.Context) {
	if err := h.svc.DeleteEntry(c.Request.Context(), c.Param("id")); err != nil {
		h.writeEntryError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RunReconciliation reconciles the requested window and records it in history.
func (h *SalesHandler) RunReconciliation(c *gin.Context) {
	var req reconcileRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	period, err := periodFrom(req.From, req.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.RunReconciliation(c.Request.Context(), period, req.Rules)
	resp := reconcileResponse{ReconciliationResult: result}
	switch {
	case err == nil:
	case errors.Is(err, sales.ErrInvalidRules):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, sales.ErrHistoryNotRecorded):
		h.logger.Warn("reconciliation not recorded in history", zap.Error(err))
		resp.HistoryError = err.Error()
	default:
		h.logger.Error("reconciliation failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to run reconciliation"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ExportReconciliation streams an XLSX workbook for the from/to window.
func (h *SalesHandler) ExportReconciliation(c *gin.Context) {
	period, err := periodFrom(c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, result, err := h.svc.Snapshot(c.Request.Context(), period, models.RulesOverride{})
	if err != nil {
		h.logger.Error("export snapshot failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to load entries"})
		return
	}

	filename := fmt.Sprintf("reconciliation-%s.xlsx", result.Timestamp.Format("20060102-150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	if err := h.workbook.WriteWorkbook(c.Writer, entries, result); err != nil {
		h.logger.Error("failed writing workbook", zap.Error(err))
		c.Status(http.StatusInternalServerError)
	}
}

// Trends returns the history series for ?days= (default 30).
func (h *SalesHandler) Trends(c *gin.Context) {
	days := defaultTrendDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = n
	}

	trends, err := h.svc.Trends(c.Request.Context(), days)
	if err != nil {
		h.logger.Error("failed loading trends", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to load trends"})
		return
	}

	c.JSON(http.StatusOK, trends)
}

func (h *SalesHandler) writeEntryError(c *gin.Context, err error) {
	var invalid *sales.InvalidEntryError
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusUnprocessableEntity, invalid.Outcome)
	case errors.Is(err, sales.ErrEntryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error("entry operation failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to store entry"})
	}
}

func periodFrom(from, to string) (sales.Period, error) {
	var period sales.Period
	var err error

	if from != "" {
		if period.From, err = time.Parse(models.DateLayout, from); err != nil {
			return sales.Period{}, fmt.Errorf("from must be YYYY-MM-DD")
		}
	}
	if to != "" {
		if period.To, err = time.Parse(models.DateLayout, to); err != nil {
			return sales.Period{}, fmt.Errorf("to must be YYYY-MM-DD")
		}
	}
	if !period.From.IsZero() && !period.To.IsZero() && period.To.Before(period.From) {
		return sales.Period{}, fmt.Errorf("to must not be before from")
	}

	return period, nil
}
