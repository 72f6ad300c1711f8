package repository

import (
	"context"

	"github.com/jhoicas/taller-inventario/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product y sus unidades (DIP).
// GetByID devuelve nil, nil si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByTenantAndSKU(ctx context.Context, tenantID, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Product, error)
}
