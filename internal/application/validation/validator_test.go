package validation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-inventario/internal/application/dto"
	"github.com/jhoicas/taller-inventario/internal/domain"
)

func TestStruct_DocumentoValido(t *testing.T) {
	in := dto.DocumentRequest{
		LocationID: "loc-1",
		Lines: []dto.DocumentLineRequest{
			{ProductID: "p-1", UnitID: "u-1", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(5)},
		},
	}
	assert.Nil(t, Struct(in))
}

func TestStruct_ErroresPorCampo(t *testing.T) {
	in := dto.DocumentRequest{
		Lines: []dto.DocumentLineRequest{
			{Kind: "gift", Quantity: decimal.Zero, UnitPrice: decimal.NewFromInt(-1)},
		},
	}
	verr := Struct(in)
	require.NotNil(t, verr)

	fields := map[string]string{}
	for _, f := range verr.Fields {
		fields[f.Field] = f.Message
	}
	assert.Contains(t, fields, "location_id")
	assert.Contains(t, fields, "lines[0].kind")
	assert.Contains(t, fields, "lines[0].quantity")
	assert.Contains(t, fields, "lines[0].unit_price")
	assert.True(t, errors.Is(verr, domain.ErrInvalidInput))
}

func TestStruct_SinLineas(t *testing.T) {
	verr := Struct(dto.DocumentRequest{LocationID: "loc-1"})
	require.NotNil(t, verr)
	assert.Equal(t, "lines", verr.Fields[0].Field)
}
