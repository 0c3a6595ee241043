package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	for _, key := range []string{
		"WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID", "WHATSAPP_MANAGER_PHONE",
		"CASH_DISCREPANCY_THRESHOLD", "LARGE_DISCREPANCY_THRESHOLD", "MAX_RETURNS_PERCENTAGE", "MIN_OPENING_CASH",
		"REGISTERS", "REPORT_LOOKBACK_DAYS", "SALES_SHEET_RANGE", "APP_PORT",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "/tmp/creds.json")
	t.Setenv("GOOGLE_SHEET_DATABASE_ID", "sheet-id")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load("testdata/missing.env")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "Sales!A:O", cfg.Sheets.SalesRange)
	assert.Equal(t, 7, cfg.Reporting.LookbackDays)
	assert.Equal(t, []string{"REG001", "REG002", "REG003", "REG004"}, cfg.Registers)
	assert.True(t, cfg.Rules.CashDiscrepancyThreshold.Equal(decimal.NewFromInt(5)))
	assert.True(t, cfg.Rules.MinOpeningCash.Equal(decimal.NewFromInt(100)))
	assert.False(t, cfg.WhatsApp.Enabled())
}

func TestLoad_RuleOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("CASH_DISCREPANCY_THRESHOLD", "2.50")
	t.Setenv("MAX_RETURNS_PERCENTAGE", "15")
	t.Setenv("REGISTERS", " FRONT, BACK ,")

	cfg, err := Load("testdata/missing.env")
	require.NoError(t, err)

	assert.True(t, cfg.Rules.CashDiscrepancyThreshold.Equal(decimal.RequireFromString("2.5")))
	assert.True(t, cfg.Rules.MaxReturnsPercentage.Equal(decimal.NewFromInt(15)))
	assert.True(t, cfg.Rules.LargeDiscrepancyThreshold.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, []string{"FRONT", "BACK"}, cfg.Registers)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing sheet id":       {"GOOGLE_SHEET_DATABASE_ID": ""},
		"bad threshold":          {"CASH_DISCREPANCY_THRESHOLD": "five"},
		"negative threshold":     {"MIN_OPENING_CASH": "-1"},
		"inverted thresholds":    {"LARGE_DISCREPANCY_THRESHOLD": "1"},
		"bad lookback":           {"REPORT_LOOKBACK_DAYS": "0"},
		"whatsapp without phone": {"WHATSAPP_TOKEN": "token", "WHATSAPP_PHONE_NUMBER_ID": "123"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			for k, v := range env {
				t.Setenv(k, v)
			}

			_, err := Load("testdata/missing.env")
			assert.Error(t, err)
		})
	}
}
