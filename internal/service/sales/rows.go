package sales

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/cashrecon/internal/domain/models"
)

// Sheet columns, in order.
const (
	colID = iota
	colDate
	colRegister
	colOpeningCash
	colCashSales
	colCardSales
	colReturnsRefunds
	colCashDrops
	colClosingCash
	colTotalSales
	colExpectedCash
	colCashDifference
	colStatus
	colNotes
	colCreatedAt
	columnCount
)

var headerRow = []interface{}{
	"ID", "Date", "Register", "Opening Cash", "Cash Sales", "Card Sales", "Returns/Refunds",
	"Cash Drops", "Closing Cash", "Total Sales", "Expected Cash", "Cash Difference", "Status", "Notes", "Created At",
}

func entryToRow(entry models.SalesEntry) []interface{} {
	row := make([]interface{}, columnCount)
	row[colID] = entry.ID
	row[colDate] = entry.DateKey()
	row[colRegister] = entry.RegisterNumber
	row[colOpeningCash] = entry.OpeningCash.InexactFloat64()
	row[colCashSales] = entry.CashSales.InexactFloat64()
	row[colCardSales] = entry.CardSales.InexactFloat64()
	row[colReturnsRefunds] = entry.ReturnsRefunds.InexactFloat64()
	row[colCashDrops] = entry.CashDrops.InexactFloat64()
	row[colClosingCash] = entry.ClosingCash.InexactFloat64()
	row[colTotalSales] = entry.TotalSales.InexactFloat64()
	row[colExpectedCash] = entry.ExpectedCash.InexactFloat64()
	row[colCashDifference] = entry.CashDifference.InexactFloat64()
	row[colStatus] = string(entry.Status)
	row[colNotes] = entry.Notes
	row[colCreatedAt] = entry.CreatedAt.Format(time.RFC3339)
	return row
}

// rowToEntry rebuilds an entry from a sheet row. Derived columns are ignored
// and recomputed from the raw amounts.
func rowToEntry(row []interface{}, rules models.ReconciliationRules) (models.SalesEntry, error) {
	if len(row) <= colRegister {
		return models.SalesEntry{}, fmt.Errorf("row has %d columns", len(row))
	}

	id := strings.TrimSpace(fmt.Sprint(row[colID]))
	if id == "" {
		return models.SalesEntry{}, fmt.Errorf("empty id")
	}

	date, err := parseDate(row[colDate])
	if err != nil {
		return models.SalesEntry{}, err
	}

	register := strings.TrimSpace(fmt.Sprint(row[colRegister]))
	if register == "" {
		return models.SalesEntry{}, fmt.Errorf("empty register")
	}

	var amounts models.EntryAmounts
	targets := []struct {
		col int
		dst *decimal.Decimal
	}{
		{colOpeningCash, &amounts.OpeningCash},
		{colCashSales, &amounts.CashSales},
		{colCardSales, &amounts.CardSales},
		{colReturnsRefunds, &amounts.ReturnsRefunds},
		{colCashDrops, &amounts.CashDrops},
		{colClosingCash, &amounts.ClosingCash},
	}
	for _, t := range targets {
		value, err := parseAmount(cell(row, t.col))
		if err != nil {
			return models.SalesEntry{}, fmt.Errorf("column %d: %w", t.col, err)
		}
		*t.dst = value
	}

	entry := models.SalesEntry{
		ID:             id,
		Date:           date,
		RegisterNumber: register,
		Notes:          fmt.Sprint(cellOr(row, colNotes, "")),
	}
	if created, err := time.Parse(time.RFC3339, fmt.Sprint(cellOr(row, colCreatedAt, ""))); err == nil {
		entry.CreatedAt = created
	}
	entry.SetAmounts(amounts, rules)

	return entry, nil
}

func cell(row []interface{}, idx int) interface{} {
	return cellOr(row, idx, nil)
}

func cellOr(row []interface{}, idx int, fallback interface{}) interface{} {
	if idx >= len(row) || row[idx] == nil {
		return fallback
	}
	return row[idx]
}

// sheetEpoch is day zero of spreadsheet date serials.
var sheetEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// parseDate accepts YYYY-MM-DD text (optionally followed by a time) and the
// numeric serials returned for cells the sheet stores as dates.
func parseDate(value interface{}) (time.Time, error) {
	switch v := value.(type) {
	case float64:
		return serialDate(v)
	case int:
		return serialDate(float64(v))
	}

	str := strings.TrimSpace(fmt.Sprint(value))
	if str == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if serial, err := strconv.ParseFloat(str, 64); err == nil {
		return serialDate(serial)
	}
	if len(str) > 10 {
		str = str[:10]
	}
	return time.Parse(models.DateLayout, str)
}

func serialDate(serial float64) (time.Time, error) {
	if serial < 1 {
		return time.Time{}, fmt.Errorf("date serial %v out of range", serial)
	}
	return sheetEpoch.AddDate(0, 0, int(math.Floor(serial))), nil
}

// parseAmount reads an absent or blank cell as zero.
func parseAmount(value interface{}) (decimal.Decimal, error) {
	if value == nil {
		return decimal.Zero, nil
	}
	str := strings.TrimSpace(fmt.Sprint(value))
	if str == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.ReplaceAll(str, ",", ""))
}
