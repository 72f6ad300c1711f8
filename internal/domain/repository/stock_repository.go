package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-inventario/internal/domain/entity"
)

// StockRepository define el puerto de existencias por (tenant, sede, producto, unidad).
// Get y GetForUpdate devuelven nil, nil cuando el registro no existe (equivale a cantidad 0).
type StockRepository interface {
	Get(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error)
	// Increase suma delta (> 0) creando el registro si no existe; devuelve la nueva cantidad.
	Increase(ctx context.Context, key entity.StockKey, delta decimal.Decimal) (decimal.Decimal, error)
	// Decrease resta delta (> 0) solo si el resultado no queda negativo.
	// ok=false sin efecto cuando el registro no existe o no alcanza.
	Decrease(ctx context.Context, key entity.StockKey, delta decimal.Decimal) (newQty decimal.Decimal, ok bool, err error)
	// SetMinQuantity fija el umbral de un registro existente; ok=false si no existe.
	SetMinQuantity(ctx context.Context, key entity.StockKey, min decimal.Decimal) (ok bool, err error)
	ListByLocation(ctx context.Context, tenantID, locationID string) ([]*entity.StockRecord, error)
	ListBelowMinimum(ctx context.Context, tenantID, locationID string) ([]*entity.StockRecord, error)
}
