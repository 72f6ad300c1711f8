package inventory

import (
	"github.com/jhoicas/taller-inventario/internal/application/dto"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
)

func toDocumentResponse(d *entity.Document, companion *entity.Document) *dto.DocumentResponse {
	if d == nil {
		return nil
	}
	out := &dto.DocumentResponse{
		ID:              d.ID,
		TenantID:        d.TenantID,
		Kind:            string(d.Kind),
		Code:            d.Code,
		LocationID:      d.LocationID,
		UserID:          d.UserID,
		Date:            d.Date,
		Total:           d.Total,
		Active:          d.Active,
		Notes:           d.Notes,
		SupplierID:      d.SupplierID,
		ReasonCode:      d.ReasonCode,
		ReferenceType:   d.ReferenceType,
		ReferenceID:     d.ReferenceID,
		ClientID:        d.ClientID,
		PriorServiceRef: d.PriorServiceRef,
		Lines:           make([]dto.DocumentLineResponse, 0, len(d.Lines)),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	if companion != nil {
		out.CompanionID = companion.ID
		out.CompanionCode = companion.Code
	}
	costed := d.Kind == entity.DocumentSale || d.IsCompanion()
	for _, l := range d.Lines {
		line := dto.DocumentLineResponse{
			ID:          l.ID,
			Position:    l.Position,
			Kind:        string(l.Kind),
			ProductID:   l.ProductID,
			UnitID:      l.UnitID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.Subtotal,
		}
		if costed && l.Kind == entity.LineProduct {
			cost := l.CostReference
			line.CostReference = &cost
			if d.Kind == entity.DocumentSale {
				margin := l.Margin()
				line.Margin = &margin
			}
		}
		out.Lines = append(out.Lines, line)
	}
	return out
}
