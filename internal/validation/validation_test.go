package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantix/quantix-console/internal/validation"
)

type sampleForm struct {
	Email    string `validate:"required,email" label:"email"`
	Password string `validate:"required,min=8" label:"contraseña"`
	Amount   string `validate:"required,positive" label:"valor total"`
	Stock    string `validate:"omitempty,count" label:"stock"`
}

func TestStructCollectsFieldMessages(t *testing.T) {
	err := validation.Struct(sampleForm{Email: "nope", Password: "short", Amount: "0", Stock: "-1"})
	require.Error(t, err)

	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "El campo email no es un email válido.", verr.Fields["Email"])
	assert.Equal(t, "El campo contraseña debe tener al menos 8 caracteres.", verr.Fields["Password"])
	assert.Equal(t, "El campo valor total debe ser mayor que 0.", verr.Fields["Amount"])
	assert.Equal(t, "El campo stock debe ser un entero mayor o igual a 0.", verr.Fields["Stock"])
	assert.Equal(t, verr.Fields["Email"], verr.Error())
	assert.True(t, validation.IsValidation(err))
}

func TestStructAcceptsValidInput(t *testing.T) {
	assert.NoError(t, validation.Struct(sampleForm{Email: "ana@quantix.co", Password: "12345678", Amount: "10,5"}))
}

func TestParseDecimal(t *testing.T) {
	n, err := validation.ParseDecimal(" 1500,25 ")
	require.NoError(t, err)
	assert.InDelta(t, 1500.25, n, 1e-9)

	_, err = validation.ParseDecimal("abc")
	assert.Error(t, err)
	_, err = validation.ParseDecimal("")
	assert.Error(t, err)
	_, err = validation.ParseDecimal("NaN")
	assert.Error(t, err)
}

func TestParseID(t *testing.T) {
	id, ok := validation.ParseID("42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	_, ok = validation.ParseID("0")
	assert.False(t, ok)
	_, ok = validation.ParseID("x")
	assert.False(t, ok)
}

func TestFailKeepsFirstMessage(t *testing.T) {
	e := validation.Fail("Phone", "first")
	e.Add("Phone", "second")
	assert.Equal(t, "first", e.Error())
}
