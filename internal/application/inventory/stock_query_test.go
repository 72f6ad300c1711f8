package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-inventario/internal/application/dto"
	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
)

func TestStockQuery_ListStockWithIndicativeCost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mustCreate(t, entity.DocumentReceipt, f.receipt(f.productLine("4", "2")))
	f.mustCreate(t, entity.DocumentReceipt, f.receipt(f.productLine("6", "3")))

	items, err := f.query.ListStock(ctx, f.actor, f.location.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, f.product.ID, items[0].ProductID)
	assert.True(t, dec("10").Equal(items[0].Quantity))
	assert.True(t, dec("2.5").Equal(items[0].IndicativeCost))
	assert.True(t, dec("25").Equal(items[0].StockValue))
	assert.False(t, items[0].BelowMinimum)
}

func TestStockQuery_LowStockOrdersByRelativeDeficit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bujia := &entity.Product{
		ID:       "prod-2",
		TenantID: tenantA,
		SKU:      "BUJ-001",
		Name:     "Bujía",
		Units:    []entity.ProductUnit{{UnitID: unitUnd, ConversionFactor: decimal.NewFromInt(1), Primary: true}},
	}
	require.NoError(t, f.store.Products().Create(ctx, bujia))

	bujiaLine := dto.DocumentLineRequest{ProductID: bujia.ID, UnitID: unitUnd, Quantity: dec("4"), UnitPrice: dec("5")}
	f.mustCreate(t, entity.DocumentReceipt, f.receipt(f.productLine("2", "2"), bujiaLine))

	setMin := func(productID, min string) {
		require.NoError(t, f.query.SetMinQuantity(ctx, f.actor, dto.SetMinQuantityRequest{
			LocationID:  f.location.ID,
			ProductID:   productID,
			UnitID:      unitUnd,
			MinQuantity: dec(min),
		}))
	}
	setMin(bujia.ID, "5")       // déficit 1 de 5
	setMin(f.product.ID, "10") // déficit 8 de 10

	items, err := f.query.LowStock(ctx, f.actor, f.location.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, f.product.ID, first.ProductID)
	assert.Equal(t, 1, first.Priority)
	assert.True(t, dec("8").Equal(first.Deficit))
	assert.True(t, dec("15").Equal(first.IdealStock))
	assert.True(t, dec("13").Equal(first.SuggestedOrderQty))
	assert.True(t, dec("2").Equal(first.UnitCost))
	assert.True(t, dec("26").Equal(first.EstimatedOrderCost))

	assert.Equal(t, bujia.ID, items[1].ProductID)
	assert.Equal(t, 2, items[1].Priority)

	// El mínimo no altera la cantidad.
	assert.True(t, dec("2").Equal(f.stockOf(t)))
}

func TestStockQuery_LowStockEmpty(t *testing.T) {
	f := newFixture(t)
	items, err := f.query.LowStock(context.Background(), f.actor, f.location.ID)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestStockQuery_SetMinQuantityValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.query.SetMinQuantity(ctx, f.actor, dto.SetMinQuantityRequest{
		LocationID:  f.location.ID,
		ProductID:   f.product.ID,
		UnitID:      unitUnd,
		MinQuantity: dec("-1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = f.query.SetMinQuantity(ctx, f.actor, dto.SetMinQuantityRequest{
		LocationID:  f.location.ID,
		ProductID:   f.product.ID,
		UnitID:      unitUnd,
		MinQuantity: dec("0.00001"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "más decimales de los que guarda la columna")

	err = f.query.SetMinQuantity(ctx, entity.ActorContext{TenantID: tenantB, UserID: "u"}, dto.SetMinQuantityRequest{
		LocationID:  f.location.ID,
		ProductID:   f.product.ID,
		UnitID:      unitUnd,
		MinQuantity: dec("1"),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestStockQuery_UnknownLocation(t *testing.T) {
	f := newFixture(t)
	_, err := f.query.ListStock(context.Background(), f.actor, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.query.ListStock(context.Background(), f.actor, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStockQuery_ValuationWithoutReceipts(t *testing.T) {
	f := newFixture(t)
	v, err := f.query.Valuation(context.Background(), f.actor, f.location.ID, f.product.ID, unitUnd)
	require.NoError(t, err)
	assert.True(t, v.UnitCost.IsZero())

	_, err = f.query.Valuation(context.Background(), f.actor, f.location.ID, "", unitUnd)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStockQuery_SetMinQuantityRequiresExistingRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := dto.SetMinQuantityRequest{
		LocationID:  f.location.ID,
		ProductID:   f.product.ID,
		UnitID:      unitUnd,
		MinQuantity: dec("5"),
	}

	err := f.query.SetMinQuantity(ctx, f.actor, req)
	assert.ErrorIs(t, err, domain.ErrNotFound, "sin entradas no hay registro que actualizar")

	items, err := f.query.ListStock(ctx, f.actor, f.location.ID)
	require.NoError(t, err)
	assert.Empty(t, items, "no se crea el registro")

	f.mustCreate(t, entity.DocumentReceipt, f.receipt(f.productLine("3", "1")))
	require.NoError(t, f.query.SetMinQuantity(ctx, f.actor, req))

	rec, err := f.store.Stock().Get(ctx, f.key())
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, dec("5").Equal(rec.MinQuantity))
	assert.True(t, dec("3").Equal(rec.Quantity))
}

func TestStockQuery_SetMinQuantityChecksProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	foreign := &entity.Product{
		ID:       "prod-b",
		TenantID: tenantB,
		SKU:      "FIL-001",
		Name:     "Filtro de otro taller",
		Units:    []entity.ProductUnit{{UnitID: unitUnd, ConversionFactor: decimal.NewFromInt(1), Primary: true}},
	}
	require.NoError(t, f.store.Products().Create(ctx, foreign))
	f.mustCreate(t, entity.DocumentReceipt, f.receipt(f.productLine("3", "1")))

	cases := []struct {
		name      string
		productID string
		unitID    string
		want      error
	}{
		{"producto de otro tenant", foreign.ID, unitUnd, domain.ErrForbidden},
		{"producto inexistente", "no-existe", unitUnd, domain.ErrNotFound},
		{"unidad no asociada", f.product.ID, "caja", domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.query.SetMinQuantity(ctx, f.actor, dto.SetMinQuantityRequest{
				LocationID:  f.location.ID,
				ProductID:   tc.productID,
				UnitID:      tc.unitID,
				MinQuantity: dec("5"),
			})
			assert.ErrorIs(t, err, tc.want)
		})
	}

	items, err := f.query.ListStock(ctx, f.actor, f.location.ID)
	require.NoError(t, err)
	require.Len(t, items, 1, "solo existe el registro creado por la entrada")
	assert.Equal(t, f.product.ID, items[0].ProductID)
	assert.True(t, items[0].MinQuantity.IsZero())
}
