package reconciliation

import (
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/cashrecon/internal/domain/models"
)

// CalculateTotals sums the batch. The aggregate expected cash and overall
// difference are derived from the summed raw fields, not from the per-entry
// differences, so the two can be cross-checked.
func CalculateTotals(entries []models.SalesEntry) models.Totals {
	t := models.Totals{
		TotalSales:          decimal.Zero,
		CashSales:           decimal.Zero,
		CardSales:           decimal.Zero,
		ReturnsRefunds:      decimal.Zero,
		CashDrops:           decimal.Zero,
		OpeningCash:         decimal.Zero,
		ClosingCash:         decimal.Zero,
		TotalCashDifference: decimal.Zero,
	}

	for _, entry := range entries {
		t.TotalSales = t.TotalSales.Add(entry.TotalSales)
		t.CashSales = t.CashSales.Add(entry.CashSales)
		t.CardSales = t.CardSales.Add(entry.CardSales)
		t.ReturnsRefunds = t.ReturnsRefunds.Add(entry.ReturnsRefunds)
		t.CashDrops = t.CashDrops.Add(entry.CashDrops)
		t.OpeningCash = t.OpeningCash.Add(entry.OpeningCash)
		t.ClosingCash = t.ClosingCash.Add(entry.ClosingCash)
		t.TotalCashDifference = t.TotalCashDifference.Add(entry.CashDifference)
	}

	t.ExpectedCash = t.OpeningCash.Add(t.CashSales).Sub(t.ReturnsRefunds).Sub(t.CashDrops)
	t.OverallCashDifference = t.ClosingCash.Sub(t.ExpectedCash)
	t.Consistent = t.OverallCashDifference.Equal(t.TotalCashDifference)

	return t
}
