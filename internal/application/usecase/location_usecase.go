package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/taller-inventario/internal/application/dto"
	"github.com/jhoicas/taller-inventario/internal/application/validation"
	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

// LocationUseCase casos de uso para sedes.
type LocationUseCase struct {
	repo repository.LocationRepository
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(repo repository.LocationRepository) *LocationUseCase {
	return &LocationUseCase{repo: repo}
}

// Create crea una nueva sede en el tenant del actor.
func (uc *LocationUseCase) Create(ctx context.Context, actor entity.ActorContext, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if verr := validation.Struct(in); verr != nil {
		return nil, verr
	}
	tenantID, err := resolveTenant(actor, in.TenantID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	location := &entity.Location{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Name:      in.Name,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, location); err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// GetByID obtiene una sede por ID.
func (uc *LocationUseCase) GetByID(ctx context.Context, actor entity.ActorContext, id string) (*dto.LocationResponse, error) {
	location, err := uc.get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// Update actualiza nombre y dirección.
func (uc *LocationUseCase) Update(ctx context.Context, actor entity.ActorContext, id string, in dto.UpdateLocationRequest) (*dto.LocationResponse, error) {
	if verr := validation.Struct(in); verr != nil {
		return nil, verr
	}
	location, err := uc.get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		location.Name = *in.Name
	}
	if in.Address != nil {
		location.Address = *in.Address
	}
	location.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, location); err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// List lista sedes del tenant con paginación.
func (uc *LocationUseCase) List(ctx context.Context, actor entity.ActorContext, tenantID string, page dto.PageRequest) (*dto.LocationListResponse, error) {
	tenantID, err := resolveTenant(actor, tenantID)
	if err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.repo.ListByTenant(ctx, tenantID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLocationResponse(l))
	}
	return &dto.LocationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func (uc *LocationUseCase) get(ctx context.Context, actor entity.ActorContext, id string) (*entity.Location, error) {
	location, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, domain.ErrNotFound
	}
	if !actor.SuperAdmin && location.TenantID != actor.TenantID {
		return nil, domain.ErrForbidden
	}
	return location, nil
}

// resolveTenant el tenant del actor, o el indicado si es superadmin (obligatorio en ese caso).
func resolveTenant(actor entity.ActorContext, explicit string) (string, error) {
	if actor.SuperAdmin {
		if explicit == "" {
			return "", domain.NewValidationError("tenant_id", "es requerido")
		}
		return explicit, nil
	}
	if actor.TenantID == "" {
		return "", domain.ErrUnauthorized
	}
	if explicit != "" && explicit != actor.TenantID {
		return "", domain.ErrForbidden
	}
	return actor.TenantID, nil
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	if l == nil {
		return nil
	}
	return &dto.LocationResponse{
		ID:        l.ID,
		TenantID:  l.TenantID,
		Name:      l.Name,
		Address:   l.Address,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}
