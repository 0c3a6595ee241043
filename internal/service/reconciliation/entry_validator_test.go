package reconciliation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/cashrecon/internal/domain/models"
)

func validInput() models.EntryInput {
	return models.EntryInput{
		Date:           "2024-01-01",
		RegisterNumber: "REG001",
		OpeningCash:    d("200"),
		CashSales:      d("150"),
		CardSales:      d("300"),
		ReturnsRefunds: d("10"),
		CashDrops:      d("100"),
		ClosingCash:    d("240"),
	}
}

func TestEntryValidator_AcceptsValidInput(t *testing.T) {
	outcome := NewEntryValidator(nil).Validate(validInput())

	assert.False(t, outcome.HasErrors)
	assert.Empty(t, outcome.Errors)
}

func TestEntryValidator_AbsentAmountsAreZero(t *testing.T) {
	outcome := NewEntryValidator(nil).Validate(models.EntryInput{Date: "2024-01-01", RegisterNumber: "REG002"})

	assert.False(t, outcome.HasErrors)
}

func TestEntryValidator_RequiresIdentifyingFields(t *testing.T) {
	input := validInput()
	input.Date = ""
	input.RegisterNumber = ""

	outcome := NewEntryValidator(nil).Validate(input)

	assert.True(t, outcome.HasErrors)
	assert.ElementsMatch(t, []string{"date is required", "registerNumber is required"}, outcome.Errors)
}

func TestEntryValidator_RejectsMalformedValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.EntryInput)
		want   string
	}{
		{"bad date", func(in *models.EntryInput) { in.Date = "01/02/2024" }, "date must be a calendar date (YYYY-MM-DD)"},
		{"unknown register", func(in *models.EntryInput) { in.RegisterNumber = "REG999" }, "registerNumber must be one of REG001, REG002"},
		{"negative closing", func(in *models.EntryInput) { in.ClosingCash = d("-1") }, "closingCash cannot be negative"},
		{"negative returns", func(in *models.EntryInput) { in.ReturnsRefunds = d("-0.01") }, "returnsRefunds cannot be negative"},
	}

	validator := NewEntryValidator([]string{"REG001", "REG002"})
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)

			outcome := validator.Validate(input)

			assert.True(t, outcome.HasErrors)
			assert.Equal(t, []string{tc.want}, outcome.Errors)
		})
	}
}
