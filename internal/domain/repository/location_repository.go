package repository

import (
	"context"

	"github.com/jhoicas/taller-inventario/internal/domain/entity"
)

// LocationRepository define el puerto de persistencia para Location (DIP).
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	Update(ctx context.Context, location *entity.Location) error
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Location, error)
}
