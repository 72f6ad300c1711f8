package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-inventario/internal/application/dto"
	"github.com/jhoicas/taller-inventario/internal/application/validation"
	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	domaininv "github.com/jhoicas/taller-inventario/internal/domain/inventory"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

// StockQueryUseCase consultas de existencias: listado con costo de referencia,
// alertas de mínimo con sugerencia de reposición y mantenimiento del mínimo por clave.
type StockQueryUseCase struct {
	stock     repository.StockRepository
	locations repository.LocationRepository
	products  repository.ProductRepository
	ledger    *StockLedger
	valuation *CostValuationService
}

// NewStockQueryUseCase construye el caso de uso.
func NewStockQueryUseCase(
	stock repository.StockRepository,
	locations repository.LocationRepository,
	products repository.ProductRepository,
	valuation *CostValuationService,
) *StockQueryUseCase {
	return &StockQueryUseCase{
		stock:     stock,
		locations: locations,
		products:  products,
		ledger:    NewStockLedger(),
		valuation: valuation,
	}
}

// ListStock devuelve las existencias de la sede con su costo de referencia.
func (uc *StockQueryUseCase) ListStock(ctx context.Context, actor entity.ActorContext, locationID string) ([]dto.StockItemResponse, error) {
	loc, err := uc.location(ctx, actor, locationID)
	if err != nil {
		return nil, err
	}
	records, err := uc.stock.ListByLocation(ctx, loc.TenantID, loc.ID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockItemResponse, 0, len(records))
	for _, r := range records {
		cost, err := uc.valuation.Indicative(ctx, r.StockKey)
		if err != nil {
			return nil, err
		}
		items = append(items, dto.StockItemResponse{
			LocationID:     r.LocationID,
			ProductID:      r.ProductID,
			UnitID:         r.UnitID,
			Quantity:       r.Quantity,
			MinQuantity:    r.MinQuantity,
			IndicativeCost: cost,
			StockValue:     r.Quantity.Mul(cost).Round(2),
			BelowMinimum:   r.BelowMinimum(),
			UpdatedAt:      r.UpdatedAt,
		})
	}
	return items, nil
}

// LowStock devuelve las claves bajo su cantidad mínima con la cantidad sugerida de pedido,
// ordenadas por mayor déficit relativo al mínimo.
func (uc *StockQueryUseCase) LowStock(ctx context.Context, actor entity.ActorContext, locationID string) ([]dto.LowStockItemResponse, error) {
	loc, err := uc.location(ctx, actor, locationID)
	if err != nil {
		return nil, err
	}
	records, err := uc.stock.ListBelowMinimum(ctx, loc.TenantID, loc.ID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []dto.LowStockItemResponse{}, nil
	}

	factor := decimal.NewFromFloat(1.5)
	items := make([]dto.LowStockItemResponse, 0, len(records))
	for _, r := range records {
		cost, err := uc.valuation.Indicative(ctx, r.StockKey)
		if err != nil {
			return nil, err
		}
		ideal := r.MinQuantity.Mul(factor)
		suggested := ideal.Sub(r.Quantity)
		if suggested.IsNegative() {
			suggested = decimal.Zero
		}
		items = append(items, dto.LowStockItemResponse{
			LocationID:         r.LocationID,
			ProductID:          r.ProductID,
			UnitID:             r.UnitID,
			Quantity:           r.Quantity,
			MinQuantity:        r.MinQuantity,
			Deficit:            r.MinQuantity.Sub(r.Quantity),
			IdealStock:         ideal,
			SuggestedOrderQty:  suggested,
			UnitCost:           cost,
			EstimatedOrderCost: suggested.Mul(cost).Round(2),
		})
	}

	// Primero el mayor déficit relativo; luego el mayor déficit absoluto.
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		ra := a.Deficit.Div(a.MinQuantity)
		rb := b.Deficit.Div(b.MinQuantity)
		if !ra.Equal(rb) {
			return ra.GreaterThan(rb)
		}
		return a.Deficit.GreaterThan(b.Deficit)
	})
	for i := range items {
		items[i].Priority = i + 1
	}
	return items, nil
}

// SetMinQuantity fija el umbral de alerta de una clave ya existente. No modifica la cantidad.
func (uc *StockQueryUseCase) SetMinQuantity(ctx context.Context, actor entity.ActorContext, in dto.SetMinQuantityRequest) error {
	if verr := validation.Struct(in); verr != nil {
		return verr
	}
	verr := &domain.ValidationError{}
	checkAmount(verr, "min_quantity", in.MinQuantity, domaininv.MaxAmount)
	if verr.HasErrors() {
		return verr
	}
	tenantID, err := tenantFor(actor, in.TenantID)
	if err != nil {
		return err
	}
	loc, err := uc.location(ctx, actor, in.LocationID)
	if err != nil {
		return err
	}
	if tenantID != "" && loc.TenantID != tenantID {
		return domain.ErrForbidden
	}
	product, err := uc.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("producto %s: %w", in.ProductID, domain.ErrNotFound)
	}
	if product.TenantID != loc.TenantID {
		return domain.ErrForbidden
	}
	if !product.HasUnit(in.UnitID) {
		return domain.NewValidationError("unit_id", "la unidad no está asociada al producto")
	}
	key := entity.StockKey{TenantID: loc.TenantID, LocationID: loc.ID, ProductID: product.ID, UnitID: in.UnitID}
	return uc.ledger.SetMinimum(ctx, uc.stock, key, in.MinQuantity)
}

// Valuation devuelve el costo de referencia de un producto/unidad en una sede.
func (uc *StockQueryUseCase) Valuation(ctx context.Context, actor entity.ActorContext, locationID, productID, unitID string) (*dto.ValuationResponse, error) {
	if productID == "" || unitID == "" {
		return nil, domain.NewValidationError("product_id", "product_id y unit_id son requeridos")
	}
	loc, err := uc.location(ctx, actor, locationID)
	if err != nil {
		return nil, err
	}
	key := entity.StockKey{TenantID: loc.TenantID, LocationID: loc.ID, ProductID: productID, UnitID: unitID}
	cost, err := uc.valuation.Indicative(ctx, key)
	if err != nil {
		return nil, err
	}
	return &dto.ValuationResponse{LocationID: loc.ID, ProductID: productID, UnitID: unitID, UnitCost: cost}, nil
}

func (uc *StockQueryUseCase) location(ctx context.Context, actor entity.ActorContext, locationID string) (*entity.Location, error) {
	if locationID == "" {
		return nil, domain.NewValidationError("location_id", "es requerido")
	}
	loc, err := uc.locations.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, fmt.Errorf("sede %s: %w", locationID, domain.ErrNotFound)
	}
	if err := authorize(actor, loc.TenantID); err != nil {
		return nil, err
	}
	return loc, nil
}
