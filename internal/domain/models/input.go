package models

import "github.com/shopspring/decimal"

// EntryInput is the raw submission for a new or edited sales entry.
// Missing amounts are read as zero.
type EntryInput struct {
	Date           string          `json:"date" validate:"required,datetime=2006-01-02"`
	RegisterNumber string          `json:"registerNumber" validate:"required,register"`
	OpeningCash    decimal.Decimal `json:"openingCash" validate:"gte=0"`
	CashSales      decimal.Decimal `json:"cashSales" validate:"gte=0"`
	CardSales      decimal.Decimal `json:"cardSales" validate:"gte=0"`
	ReturnsRefunds decimal.Decimal `json:"returnsRefunds" validate:"gte=0"`
	CashDrops      decimal.Decimal `json:"cashDrops" validate:"gte=0"`
	ClosingCash    decimal.Decimal `json:"closingCash" validate:"gte=0"`
	Notes          string          `json:"notes" validate:"max=500"`
}

// Amounts extracts the monetary inputs.
func (in EntryInput) Amounts() EntryAmounts {
	return EntryAmounts{
		OpeningCash:    in.OpeningCash,
		CashSales:      in.CashSales,
		CardSales:      in.CardSales,
		ReturnsRefunds: in.ReturnsRefunds,
		CashDrops:      in.CashDrops,
		ClosingCash:    in.ClosingCash,
	}
}

// ValidationOutcome reports whether a single submission may be saved.
type ValidationOutcome struct {
	HasErrors bool     `json:"hasErrors"`
	Errors    []string `json:"errors"`
}

// DefaultRegisters is the register set used when none is configured.
var DefaultRegisters = []string{"REG001", "REG002", "REG003", "REG004"}
