package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	domaininv "github.com/jhoicas/taller-inventario/internal/domain/inventory"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

// StockLedger es el único punto que modifica existencias. Todas sus operaciones reciben
// el StockRepository de la transacción en curso.
type StockLedger struct{}

// NewStockLedger construye el ledger.
func NewStockLedger() *StockLedger {
	return &StockLedger{}
}

// Adjust aplica delta sobre la clave y devuelve la nueva cantidad.
// Positivo: upsert atómico. Negativo: decremento condicional; si no alcanza devuelve
// *domain.InsufficientStockError sin efecto.
func (l *StockLedger) Adjust(ctx context.Context, stock repository.StockRepository, key entity.StockKey, delta decimal.Decimal) (decimal.Decimal, error) {
	switch {
	case delta.IsPositive():
		return stock.Increase(ctx, key, delta)
	case delta.IsNegative():
		qty, ok, err := stock.Decrease(ctx, key, delta.Neg())
		if err != nil {
			return decimal.Zero, err
		}
		if !ok {
			available := decimal.Zero
			rec, err := stock.Get(ctx, key)
			if err != nil {
				return decimal.Zero, err
			}
			if rec != nil {
				available = rec.Quantity
			}
			return decimal.Zero, &domain.InsufficientStockError{
				ProductID:  key.ProductID,
				UnitID:     key.UnitID,
				LocationID: key.LocationID,
				Available:  available,
				Requested:  delta.Neg(),
			}
		}
		return qty, nil
	}
	rec, err := stock.Get(ctx, key)
	if err != nil || rec == nil {
		return decimal.Zero, err
	}
	return rec.Quantity, nil
}

// SetMinimum fija el umbral de alerta de un registro existente sin tocar la cantidad.
// Los registros nacen con la primera entrada; sin registro devuelve domain.ErrNotFound.
func (l *StockLedger) SetMinimum(ctx context.Context, stock repository.StockRepository, key entity.StockKey, min decimal.Decimal) error {
	ok, err := stock.SetMinQuantity(ctx, key, min)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("existencias de %s/%s en sede %s: %w", key.ProductID, key.UnitID, key.LocationID, domain.ErrNotFound)
	}
	return nil
}

// Get devuelve el registro o nil si no existe.
func (l *StockLedger) Get(ctx context.Context, stock repository.StockRepository, key entity.StockKey) (*entity.StockRecord, error) {
	return stock.Get(ctx, key)
}

// Lock bloquea las claves en orden total y devuelve la cantidad actual de cada una
// (0 para las que aún no existen). Dos escritores sobre claves comunes se serializan
// sin riesgo de deadlock.
func (l *StockLedger) Lock(ctx context.Context, stock repository.StockRepository, keys []entity.StockKey) (map[entity.StockKey]decimal.Decimal, error) {
	out := make(map[entity.StockKey]decimal.Decimal, len(keys))
	for _, k := range domaininv.SortedKeys(keys) {
		rec, err := stock.GetForUpdate(ctx, k)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			out[k] = decimal.Zero
			continue
		}
		out[k] = rec.Quantity
	}
	return out, nil
}

// Apply neta los deltas por clave y los aplica en orden.
func (l *StockLedger) Apply(ctx context.Context, stock repository.StockRepository, deltas []domaininv.Delta) error {
	for _, d := range domaininv.Net(deltas) {
		if _, err := l.Adjust(ctx, stock, d.Key, d.Quantity); err != nil {
			return err
		}
	}
	return nil
}
