package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank/corebank/internal/apperror"
)

type sample struct {
	Email  string `json:"email" validate:"required,email"`
	Status string `json:"status" validate:"omitempty,oneof=active closed"`
}

func TestStructReportsJSONFieldName(t *testing.T) {
	err := Struct(sample{Email: "nope"})
	require.Error(t, err)

	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	assert.Equal(t, "email", appErr.Field)
}

func TestStructOneOf(t *testing.T) {
	err := Struct(sample{Email: "a@b.io", Status: "open"})
	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "status", appErr.Field)
	assert.Equal(t, "must be one of active, closed", appErr.Message)

	assert.NoError(t, Struct(sample{Email: "a@b.io", Status: "closed"}))
}
