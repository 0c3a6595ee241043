package reconciliation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/cashrecon/internal/domain/models"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(models.DateLayout, value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return parsed
}

// amounts lists opening, cash sales, card sales, returns, drops and closing cash.
func amounts(values ...string) models.EntryAmounts {
	return models.EntryAmounts{
		OpeningCash:    d(values[0]),
		CashSales:      d(values[1]),
		CardSales:      d(values[2]),
		ReturnsRefunds: d(values[3]),
		CashDrops:      d(values[4]),
		ClosingCash:    d(values[5]),
	}
}

func newEntry(t *testing.T, date, register string, a models.EntryAmounts) models.SalesEntry {
	t.Helper()
	return models.NewSalesEntry(day(t, date), register, a, models.DefaultRules(), testNow)
}

// scenarioA balances exactly: 200 + 150 - 10 - 100 = 240.
func scenarioA(closing string) models.EntryAmounts {
	return amounts("200", "150", "300", "10", "100", closing)
}

func newTestEngine() *Engine {
	e := NewEngine(nil)
	e.now = func() time.Time { return testNow }
	return e
}
