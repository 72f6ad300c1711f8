package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	domaininv "github.com/jhoicas/taller-inventario/internal/domain/inventory"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

// CostValuationService calcula el costo de referencia de un producto/unidad en una sede:
// media simple de los precios de las líneas de entradas activas. Se recalcula en cada consulta.
type CostValuationService struct {
	documents repository.DocumentRepository
}

// NewCostValuationService construye el servicio con el repositorio de lectura (fuera de tx).
func NewCostValuationService(documents repository.DocumentRepository) *CostValuationService {
	return &CostValuationService{documents: documents}
}

// Valuate calcula el costo de referencia con los repositorios dados (p. ej. los de la tx en curso).
func (s *CostValuationService) Valuate(ctx context.Context, documents repository.DocumentRepository, key entity.StockKey) (decimal.Decimal, error) {
	prices, err := documents.ListActiveReceiptPrices(ctx, key.TenantID, key.LocationID, key.ProductID, key.UnitID)
	if err != nil {
		return decimal.Zero, err
	}
	return domaininv.AverageUnitCost(prices), nil
}

// Indicative calcula el costo de referencia fuera de transacción (listados de stock).
func (s *CostValuationService) Indicative(ctx context.Context, key entity.StockKey) (decimal.Decimal, error) {
	return s.Valuate(ctx, s.documents, key)
}
