package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInsufficientStockError_Unwraps(t *testing.T) {
	err := fmt.Errorf("crear salida: %w", &InsufficientStockError{
		ProductID: "p1", Available: decimal.NewFromInt(3), Requested: decimal.NewFromInt(5),
	})

	assert.True(t, errors.Is(err, ErrInsufficientStock))
	var detail *InsufficientStockError
	assert.True(t, errors.As(err, &detail))
	assert.Contains(t, err.Error(), "disponible 3, solicitado 5")
}

func TestValidationError(t *testing.T) {
	var nilErr *ValidationError
	assert.False(t, nilErr.HasErrors())

	verr := &ValidationError{}
	assert.False(t, verr.HasErrors())
	verr.Add("lines[0].quantity", "debe ser mayor que 0")
	verr.Add("reason_code", "es requerido")

	assert.True(t, verr.HasErrors())
	assert.True(t, errors.Is(verr, ErrInvalidInput))
	assert.Equal(t, "entrada inválida: lines[0].quantity: debe ser mayor que 0; reason_code: es requerido", verr.Error())
}

func TestSequenceContentionIsTransient(t *testing.T) {
	assert.True(t, errors.Is(ErrSequenceContention, ErrTransient))
}
