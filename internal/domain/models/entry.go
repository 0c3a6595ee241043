package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format used for entry dates and trend keys.
const DateLayout = "2006-01-02"

// EntryStatus is the per-entry reconciliation outcome.
type EntryStatus string

const (
	EntryBalanced    EntryStatus = "balanced"
	EntryDiscrepancy EntryStatus = "discrepancy"
)

// SalesEntry is one register's activity for one date.
type SalesEntry struct {
	ID             string          `json:"id"`
	Date           time.Time       `json:"date"`
	RegisterNumber string          `json:"registerNumber"`
	OpeningCash    decimal.Decimal `json:"openingCash"`
	CashSales      decimal.Decimal `json:"cashSales"`
	CardSales      decimal.Decimal `json:"cardSales"`
	ReturnsRefunds decimal.Decimal `json:"returnsRefunds"`
	CashDrops      decimal.Decimal `json:"cashDrops"`
	ClosingCash    decimal.Decimal `json:"closingCash"`
	Notes          string          `json:"notes,omitempty"`

	TotalSales     decimal.Decimal `json:"totalSales"`
	ExpectedCash   decimal.Decimal `json:"expectedCash"`
	CashDifference decimal.Decimal `json:"cashDifference"`
	Status         EntryStatus     `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// EntryAmounts carries the raw monetary inputs of an entry.
type EntryAmounts struct {
	OpeningCash    decimal.Decimal
	CashSales      decimal.Decimal
	CardSales      decimal.Decimal
	ReturnsRefunds decimal.Decimal
	CashDrops      decimal.Decimal
	ClosingCash    decimal.Decimal
}

// NewSalesEntry assigns a fresh id and computes the derived fields.
func NewSalesEntry(date time.Time, register string, amounts EntryAmounts, rules ReconciliationRules, now time.Time) SalesEntry {
	entry := SalesEntry{
		ID:             uuid.NewString(),
		Date:           TruncateDay(date),
		RegisterNumber: register,
		CreatedAt:      now.UTC(),
	}
	entry.SetAmounts(amounts, rules)
	return entry
}

// SetAmounts replaces the raw inputs and recomputes every derived field.
func (e *SalesEntry) SetAmounts(amounts EntryAmounts, rules ReconciliationRules) {
	e.OpeningCash = amounts.OpeningCash
	e.CashSales = amounts.CashSales
	e.CardSales = amounts.CardSales
	e.ReturnsRefunds = amounts.ReturnsRefunds
	e.CashDrops = amounts.CashDrops
	e.ClosingCash = amounts.ClosingCash
	e.Recalculate(rules)
}

// Recalculate derives TotalSales, ExpectedCash, CashDifference and Status from the raw inputs.
func (e *SalesEntry) Recalculate(rules ReconciliationRules) {
	e.TotalSales = e.CashSales.Add(e.CardSales)
	e.ExpectedCash = e.OpeningCash.Add(e.CashSales).Sub(e.ReturnsRefunds).Sub(e.CashDrops)
	e.CashDifference = e.ClosingCash.Sub(e.ExpectedCash)
	if e.CashDifference.Abs().GreaterThan(rules.CashDiscrepancyThreshold) {
		e.Status = EntryDiscrepancy
	} else {
		e.Status = EntryBalanced
	}
}

// DateKey renders the entry date as an ISO calendar date.
func (e SalesEntry) DateKey() string {
	return e.Date.Format(DateLayout)
}

// TruncateDay drops the time component, keeping the calendar day in UTC.
func TruncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
