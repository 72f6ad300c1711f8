package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-inventario/internal/application/dto"
	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	domaininv "github.com/jhoicas/taller-inventario/internal/domain/inventory"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

func validateSale(in dto.DocumentRequest, verr *domain.ValidationError) {
	if len(in.PriorServiceRef) > 100 {
		verr.Add("prior_service_ref", "admite como máximo 100")
	}
}

// saleDeltas -q por cada línea de producto de la venta. Las de servicio no tocan existencias.
func saleDeltas(sale *entity.Document) []domaininv.Delta {
	out := make([]domaininv.Delta, 0, len(sale.Lines))
	for _, l := range sale.Lines {
		if l.Kind != entity.LineProduct {
			continue
		}
		out = append(out, domaininv.Delta{
			Key:      l.StockKey(sale.TenantID, sale.LocationID),
			Quantity: l.Quantity.Neg(),
		})
	}
	return out
}

// valuateSaleLines fija el costo de referencia de cada línea de producto.
func (c *Coordinator) valuateSaleLines(ctx context.Context, documents repository.DocumentRepository, sale *entity.Document) error {
	costs := make(map[entity.StockKey]decimal.Decimal)
	for i := range sale.Lines {
		l := &sale.Lines[i]
		if l.Kind != entity.LineProduct {
			continue
		}
		k := l.StockKey(sale.TenantID, sale.LocationID)
		cost, ok := costs[k]
		if !ok {
			var err error
			cost, err = c.valuation.Valuate(ctx, documents, k)
			if err != nil {
				return err
			}
			costs[k] = cost
		}
		l.CostReference = cost
	}
	return nil
}

// companionLines refleja 1:1 las líneas de producto de la venta, costeadas con su costo de referencia.
func companionLines(sale *entity.Document, companionID string) []entity.DocumentLine {
	lines := make([]entity.DocumentLine, 0, len(sale.Lines))
	for _, l := range sale.ProductLines() {
		lines = append(lines, entity.DocumentLine{
			ID:            uuid.New().String(),
			DocumentID:    companionID,
			Position:      len(lines) + 1,
			Kind:          entity.LineProduct,
			ProductID:     l.ProductID,
			UnitID:        l.UnitID,
			Description:   l.Description,
			Quantity:      l.Quantity,
			UnitPrice:     l.CostReference,
			Subtotal:      l.Quantity.Mul(l.CostReference).Round(domaininv.CostScale),
			CostReference: l.CostReference,
		})
	}
	return lines
}

// newCompanion arma la salida acompañante de una venta.
func newCompanion(sale *entity.Document, code string, now time.Time) *entity.Document {
	id := uuid.New().String()
	lines := companionLines(sale, id)
	return &entity.Document{
		ID:            id,
		TenantID:      sale.TenantID,
		Kind:          entity.DocumentIssue,
		LocationID:    sale.LocationID,
		UserID:        sale.UserID,
		Code:          code,
		Date:          sale.Date,
		Total:         sumSubtotals(lines),
		Active:        true,
		ReasonCode:    entity.ReasonSale,
		ReferenceType: entity.ReferenceSale,
		ReferenceID:   sale.ID,
		Lines:         lines,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// syncCompanion deja la salida acompañante reflejando la venta editada.
// La crea si no existía; la desactiva si la venta ya no tiene líneas de producto.
func (c *Coordinator) syncCompanion(ctx context.Context, repos Repositories, sale, companion *entity.Document, now time.Time) (*entity.Document, error) {
	hasProducts := len(sale.ProductLines()) > 0
	if companion == nil {
		if !hasProducts {
			return nil, nil
		}
		code, err := c.sequences.Next(ctx, repos.Sequences(), sale.TenantID, entity.PrefixIssue)
		if err != nil {
			return nil, err
		}
		companion = newCompanion(sale, code, now)
		if err := repos.Documents().Create(ctx, companion); err != nil {
			return nil, err
		}
		return companion, nil
	}
	companion.Lines = companionLines(sale, companion.ID)
	companion.Total = sumSubtotals(companion.Lines)
	companion.LocationID = sale.LocationID
	companion.Date = sale.Date
	companion.Active = hasProducts
	companion.UpdatedAt = now
	if err := repos.Documents().ReplaceLines(ctx, companion.ID, companion.Lines); err != nil {
		return nil, err
	}
	if err := repos.Documents().Update(ctx, companion); err != nil {
		return nil, err
	}
	return companion, nil
}
