package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `tenant_id, location_id, product_id, unit_id, quantity, min_quantity, updated_at`

// Get obtiene el registro de existencias; nil si no existe.
func (r *StockRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_records
		WHERE tenant_id = $1 AND location_id = $2 AND product_id = $3 AND unit_id = $4`
	rec, err := scanStock(r.q.QueryRow(ctx, query, key.TenantID, key.LocationID, key.ProductID, key.UnitID))
	if err != nil {
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return rec, nil
}

// GetForUpdate obtiene el registro y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockRecord, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_records
		WHERE tenant_id = $1 AND location_id = $2 AND product_id = $3 AND unit_id = $4
		FOR UPDATE`
	rec, err := scanStock(r.q.QueryRow(ctx, query, key.TenantID, key.LocationID, key.ProductID, key.UnitID))
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return rec, nil
}

// Increase suma delta de forma atómica, creando el registro si no existe.
func (r *StockRepo) Increase(ctx context.Context, key entity.StockKey, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		INSERT INTO stock_records (tenant_id, location_id, product_id, unit_id, quantity, min_quantity, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, now())
		ON CONFLICT (tenant_id, location_id, product_id, unit_id)
		DO UPDATE SET quantity = stock_records.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING quantity`
	var qty decimal.Decimal
	err := r.q.QueryRow(ctx, query, key.TenantID, key.LocationID, key.ProductID, key.UnitID, delta).Scan(&qty)
	if err != nil {
		return decimal.Zero, fmt.Errorf("increase stock: %w", err)
	}
	return qty, nil
}

// Decrease resta delta solo si la cantidad no queda negativa (decremento condicional).
func (r *StockRepo) Decrease(ctx context.Context, key entity.StockKey, delta decimal.Decimal) (decimal.Decimal, bool, error) {
	query := `
		UPDATE stock_records SET quantity = quantity - $5, updated_at = now()
		WHERE tenant_id = $1 AND location_id = $2 AND product_id = $3 AND unit_id = $4
		  AND quantity - $5 >= 0
		RETURNING quantity`
	var qty decimal.Decimal
	err := r.q.QueryRow(ctx, query, key.TenantID, key.LocationID, key.ProductID, key.UnitID, delta).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("decrease stock: %w", err)
	}
	return qty, true, nil
}

// SetMinQuantity fija el umbral de alerta de un registro existente; no crea registros.
func (r *StockRepo) SetMinQuantity(ctx context.Context, key entity.StockKey, min decimal.Decimal) (bool, error) {
	query := `
		UPDATE stock_records SET min_quantity = $5, updated_at = now()
		WHERE tenant_id = $1 AND location_id = $2 AND product_id = $3 AND unit_id = $4`
	cmd, err := r.q.Exec(ctx, query, key.TenantID, key.LocationID, key.ProductID, key.UnitID, min)
	if err != nil {
		return false, fmt.Errorf("set min quantity: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// ListByLocation lista las existencias de una sede.
func (r *StockRepo) ListByLocation(ctx context.Context, tenantID, locationID string) ([]*entity.StockRecord, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_records WHERE tenant_id = $1 AND location_id = $2
		ORDER BY product_id, unit_id`
	return r.list(ctx, query, tenantID, locationID)
}

// ListBelowMinimum lista las claves con cantidad bajo su mínimo (mínimo > 0).
func (r *StockRepo) ListBelowMinimum(ctx context.Context, tenantID, locationID string) ([]*entity.StockRecord, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_records
		WHERE tenant_id = $1 AND location_id = $2 AND min_quantity > 0 AND quantity < min_quantity
		ORDER BY product_id, unit_id`
	return r.list(ctx, query, tenantID, locationID)
}

func (r *StockRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockRecord, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockRecord
	for rows.Next() {
		var s entity.StockRecord
		if err := rows.Scan(&s.TenantID, &s.LocationID, &s.ProductID, &s.UnitID, &s.Quantity, &s.MinQuantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

func scanStock(row pgx.Row) (*entity.StockRecord, error) {
	var s entity.StockRecord
	err := row.Scan(&s.TenantID, &s.LocationID, &s.ProductID, &s.UnitID, &s.Quantity, &s.MinQuantity, &s.UpdatedAt)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
