package validator

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email  string           `json:"email" validate:"required,email"`
	DOB    string           `json:"dob" validate:"required,datetime=2006-01-02"`
	Status string           `json:"status" validate:"omitempty,oneof=Scheduled Completed"`
	Cost   *decimal.Decimal `json:"cost,omitempty" validate:"omitempty,gte=0"`
	Notes  string           `validate:"max=5"`
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	v := NewValidator()
	negative := decimal.NewFromInt(-5)

	err := v.Validate(&sampleRequest{
		Email:  "not-an-email",
		DOB:    "10/05/1990",
		Status: "Lost",
		Cost:   &negative,
		Notes:  "too long",
	})
	require.Error(t, err)

	fields := v.FormatValidationErrors(err)
	assert.Equal(t, map[string]string{
		"email":  "email must be a valid email address",
		"dob":    "dob must match the format 2006-01-02",
		"status": "status must be one of: Scheduled Completed",
		"cost":   "cost must be greater than or equal to 0",
		"Notes":  "Notes must be at most 5 characters",
	}, fields)
}

func TestValidateAcceptsValidRequest(t *testing.T) {
	v := NewValidator()
	cost := decimal.RequireFromString("120.50")

	err := v.ValidateCtx(context.Background(), &sampleRequest{
		Email: "john@entnt.in",
		DOB:   "1990-05-10",
		Cost:  &cost,
	})
	assert.NoError(t, err)
}

func TestFormatValidationErrorsIgnoresOtherErrors(t *testing.T) {
	v := NewValidator()
	assert.Empty(t, v.FormatValidationErrors(assert.AnError))
}
