package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ReconciliationRules holds the thresholds consumed by the reconciliation engine.
type ReconciliationRules struct {
	CashDiscrepancyThreshold  decimal.Decimal `json:"cashDiscrepancyThreshold"`
	LargeDiscrepancyThreshold decimal.Decimal `json:"largeDiscrepancyThreshold"`
	MaxReturnsPercentage      decimal.Decimal `json:"maxReturnsPercentage"`
	MinOpeningCash            decimal.Decimal `json:"minOpeningCash"`
}

// DefaultRules returns the stock thresholds.
func DefaultRules() ReconciliationRules {
	return ReconciliationRules{
		CashDiscrepancyThreshold:  decimal.RequireFromString("5.00"),
		LargeDiscrepancyThreshold: decimal.RequireFromString("50.00"),
		MaxReturnsPercentage:      decimal.RequireFromString("10.0"),
		MinOpeningCash:            decimal.RequireFromString("100.00"),
	}
}

// RulesOverride is a partial rule set; nil fields keep the base value.
type RulesOverride struct {
	CashDiscrepancyThreshold  *decimal.Decimal `json:"cashDiscrepancyThreshold,omitempty"`
	LargeDiscrepancyThreshold *decimal.Decimal `json:"largeDiscrepancyThreshold,omitempty"`
	MaxReturnsPercentage      *decimal.Decimal `json:"maxReturnsPercentage,omitempty"`
	MinOpeningCash            *decimal.Decimal `json:"minOpeningCash,omitempty"`
}

// Apply returns a copy of r with the override values set.
func (r ReconciliationRules) Apply(o RulesOverride) ReconciliationRules {
	if o.CashDiscrepancyThreshold != nil {
		r.CashDiscrepancyThreshold = *o.CashDiscrepancyThreshold
	}
	if o.LargeDiscrepancyThreshold != nil {
		r.LargeDiscrepancyThreshold = *o.LargeDiscrepancyThreshold
	}
	if o.MaxReturnsPercentage != nil {
		r.MaxReturnsPercentage = *o.MaxReturnsPercentage
	}
	if o.MinOpeningCash != nil {
		r.MinOpeningCash = *o.MinOpeningCash
	}
	return r
}

// Validate rejects negative thresholds and a large-discrepancy threshold
// below the cash-discrepancy threshold.
func (r ReconciliationRules) Validate() error {
	for _, field := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"cashDiscrepancyThreshold", r.CashDiscrepancyThreshold},
		{"largeDiscrepancyThreshold", r.LargeDiscrepancyThreshold},
		{"maxReturnsPercentage", r.MaxReturnsPercentage},
		{"minOpeningCash", r.MinOpeningCash},
	} {
		if field.value.IsNegative() {
			return fmt.Errorf("%s must not be negative", field.name)
		}
	}
	if r.LargeDiscrepancyThreshold.LessThan(r.CashDiscrepancyThreshold) {
		return errors.New("largeDiscrepancyThreshold must not be below cashDiscrepancyThreshold")
	}
	return nil
}
