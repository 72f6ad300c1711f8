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

// ProductUseCase casos de uso del catálogo de productos y sus unidades.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un producto. El SKU es único por tenant y a lo sumo una unidad es primaria.
func (uc *ProductUseCase) Create(ctx context.Context, actor entity.ActorContext, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	verr := validation.Struct(in)
	if verr == nil {
		verr = &domain.ValidationError{}
	}
	primaries := 0
	seen := make(map[string]bool, len(in.Units))
	for _, u := range in.Units {
		if u.Primary {
			primaries++
		}
		if seen[u.UnitID] {
			verr.Add("units", "unidad repetida: "+u.UnitID)
		}
		seen[u.UnitID] = true
	}
	if primaries > 1 {
		verr.Add("units", "solo una unidad puede ser primaria")
	}
	if verr.HasErrors() {
		return nil, verr
	}
	tenantID, err := resolveTenant(actor, in.TenantID)
	if err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByTenantAndSKU(ctx, tenantID, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, u := range in.Units {
		product.Units = append(product.Units, entity.ProductUnit{
			UnitID:           u.UnitID,
			ConversionFactor: u.ConversionFactor,
			Primary:          u.Primary,
		})
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, actor entity.ActorContext, id string) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Update actualiza nombre, descripción o precio.
func (uc *ProductUseCase) Update(ctx context.Context, actor entity.ActorContext, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if verr := validation.Struct(in); verr != nil {
		return nil, verr
	}
	product, err := uc.get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.NewValidationError("price", "debe ser mayor o igual a 0")
		}
		product.Price = *in.Price
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos del tenant con paginación.
func (uc *ProductUseCase) List(ctx context.Context, actor entity.ActorContext, tenantID string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	tenantID, err := resolveTenant(actor, tenantID)
	if err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.repo.ListByTenant(ctx, tenantID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func (uc *ProductUseCase) get(ctx context.Context, actor entity.ActorContext, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if !actor.SuperAdmin && product.TenantID != actor.TenantID {
		return nil, domain.ErrForbidden
	}
	return product, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	units := make([]dto.ProductUnitResponse, 0, len(p.Units))
	for _, u := range p.Units {
		units = append(units, dto.ProductUnitResponse{
			UnitID:           u.UnitID,
			ConversionFactor: u.ConversionFactor,
			Primary:          u.Primary,
		})
	}
	return &dto.ProductResponse{
		ID:          p.ID,
		TenantID:    p.TenantID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Units:       units,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
