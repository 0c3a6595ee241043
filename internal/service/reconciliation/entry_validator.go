package reconciliation

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/cashrecon/internal/domain/models"
)

// EntryValidator performs the pre-save checks on a single submission.
type EntryValidator struct {
	validate  *validator.Validate
	registers []string
}

// NewEntryValidator builds a validator accepting the given register numbers.
func NewEntryValidator(registers []string) *EntryValidator {
	if len(registers) == 0 {
		registers = models.DefaultRegisters
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	allowed := slices.Clone(registers)
	_ = v.RegisterValidation("register", func(fl validator.FieldLevel) bool {
		return slices.Contains(allowed, fl.Field().String())
	})

	return &EntryValidator{validate: v, registers: allowed}
}

// Validate checks required identifying fields, the register set and the sign
// of every amount. It never returns an error; problems are listed in the outcome.
func (ev *EntryValidator) Validate(input models.EntryInput) models.ValidationOutcome {
	outcome := models.ValidationOutcome{Errors: []string{}}

	err := ev.validate.Struct(input)
	if err == nil {
		return outcome
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		outcome.HasErrors = true
		outcome.Errors = append(outcome.Errors, err.Error())
		return outcome
	}

	for _, fe := range fieldErrs {
		outcome.Errors = append(outcome.Errors, ev.message(fe))
	}
	outcome.HasErrors = len(outcome.Errors) > 0
	return outcome
}

func (ev *EntryValidator) message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "datetime":
		return fmt.Sprintf("%s must be a calendar date (YYYY-MM-DD)", fe.Field())
	case "register":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), strings.Join(ev.registers, ", "))
	case "gte":
		return fmt.Sprintf("%s cannot be negative", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
