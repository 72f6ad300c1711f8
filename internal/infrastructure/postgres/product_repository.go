package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, tenant_id, sku, name, description, price, created_at, updated_at`

// Create persiste el producto y sus unidades en una misma transacción (o savepoint).
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin product: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = tx.Exec(ctx, query,
		product.ID, product.TenantID, product.SKU, product.Name, product.Description,
		product.Price, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}

	batch := &pgx.Batch{}
	for _, u := range product.Units {
		batch.Queue(`
			INSERT INTO product_units (product_id, unit_id, conversion_factor, is_primary)
			VALUES ($1, $2, $3, $4)`,
			product.ID, u.UnitID, u.ConversionFactor, u.Primary,
		)
	}
	if err := execBatch(ctx, tx, batch); err != nil {
		return fmt.Errorf("insert product units: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID con sus unidades.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetByTenantAndSKU obtiene un producto por tenant y SKU.
func (r *ProductRepo) GetByTenantAndSKU(ctx context.Context, tenantID, sku string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE tenant_id = $1 AND sku = $2`, tenantID, sku)
}

func (r *ProductRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.TenantID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	if p.Units, err = r.units(ctx, p.ID); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update actualiza nombre, descripción y precio.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET name = $2, description = $3, price = $4, updated_at = $5
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, product.ID, product.Name, product.Description, product.Price, product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByTenant lista productos por tenant con paginación.
func (r *ProductRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1 ORDER BY sku LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.TenantID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	for _, p := range list {
		if p.Units, err = r.units(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *ProductRepo) units(ctx context.Context, productID string) ([]entity.ProductUnit, error) {
	rows, err := r.q.Query(ctx, `
		SELECT unit_id, conversion_factor, is_primary
		FROM product_units WHERE product_id = $1 ORDER BY is_primary DESC, unit_id`, productID)
	if err != nil {
		return nil, fmt.Errorf("list product units: %w", err)
	}
	defer rows.Close()
	var units []entity.ProductUnit
	for rows.Next() {
		var u entity.ProductUnit
		if err := rows.Scan(&u.UnitID, &u.ConversionFactor, &u.Primary); err != nil {
			return nil, fmt.Errorf("scan product unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// execBatch envía el batch y verifica cada sentencia.
func execBatch(ctx context.Context, q Querier, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	br := q.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return err
		}
	}
	return br.Close()
}
