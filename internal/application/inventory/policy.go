package inventory

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-inventario/internal/application/dto"
	"github.com/jhoicas/taller-inventario/internal/application/validation"
	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	domaininv "github.com/jhoicas/taller-inventario/internal/domain/inventory"
)

// lineKind normaliza el tipo de línea; vacío equivale a producto.
func lineKind(l dto.DocumentLineRequest) entity.LineKind {
	if l.Kind == string(entity.LineService) {
		return entity.LineService
	}
	return entity.LineProduct
}

// validateDocument valida la entrada antes de abrir la transacción: etiquetas del DTO,
// reglas por línea y reglas del tipo de documento.
func validateDocument(kind entity.DocumentKind, in dto.DocumentRequest) error {
	verr := validation.Struct(in)
	if verr == nil {
		verr = &domain.ValidationError{}
	}
	total := decimal.Zero
	for i, l := range in.Lines {
		field := fmt.Sprintf("lines[%d]", i)
		checkAmount(verr, field+".quantity", l.Quantity, domaininv.MaxAmount)
		checkAmount(verr, field+".unit_price", l.UnitPrice, domaininv.MaxPrice)
		checkAmount(verr, field+".subtotal", l.Subtotal, domaininv.MaxAmount)
		subtotal := lineSubtotal(l)
		if l.Subtotal.IsZero() && !subtotal.LessThan(domaininv.MaxAmount) {
			verr.Add(field+".subtotal", "excede el valor máximo permitido")
		}
		total = total.Add(subtotal)
		switch lineKind(l) {
		case entity.LineProduct:
			if l.ProductID == "" {
				verr.Add(field+".product_id", "es requerido")
			}
			if l.UnitID == "" {
				verr.Add(field+".unit_id", "es requerido")
			}
		case entity.LineService:
			if kind != entity.DocumentSale {
				verr.Add(field+".kind", "solo las ventas admiten líneas de servicio")
			}
			if strings.TrimSpace(l.Description) == "" {
				verr.Add(field+".description", "es requerido en líneas de servicio")
			}
		}
	}
	if !total.LessThan(domaininv.MaxAmount) {
		verr.Add("lines", "el total del documento excede el valor máximo permitido")
	}
	switch kind {
	case entity.DocumentReceipt:
		validateReceipt(in, verr)
	case entity.DocumentIssue:
		validateIssue(in, verr)
	case entity.DocumentSale:
		validateSale(in, verr)
	default:
		verr.Add("kind", "tipo de documento no soportado")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// lineSubtotal devuelve el subtotal informado o, si es cero, quantity * unit_price
// redondeado a la escala de almacenamiento.
func lineSubtotal(l dto.DocumentLineRequest) decimal.Decimal {
	if !l.Subtotal.IsZero() {
		return l.Subtotal
	}
	return l.Quantity.Mul(l.UnitPrice).Round(domaininv.CostScale)
}

// checkAmount rechaza valores con más decimales de los que guarda la columna o fuera de su rango.
func checkAmount(verr *domain.ValidationError, field string, v, limit decimal.Decimal) {
	if !domaininv.HasScale(v) {
		verr.Add(field, fmt.Sprintf("admite como máximo %d decimales", domaininv.CostScale))
		return
	}
	if !domaininv.Fits(v, limit) {
		verr.Add(field, "excede el valor máximo permitido")
	}
}

// applyHeader copia los campos de encabezado propios del tipo.
func applyHeader(doc *entity.Document, in dto.DocumentRequest) {
	doc.Notes = strings.TrimSpace(in.Notes)
	switch doc.Kind {
	case entity.DocumentReceipt:
		doc.SupplierID = in.SupplierID
	case entity.DocumentIssue:
		doc.ReasonCode = in.ReasonCode
	case entity.DocumentSale:
		doc.ClientID = in.ClientID
		doc.PriorServiceRef = strings.TrimSpace(in.PriorServiceRef)
	}
}

// effectOf devuelve los deltas de existencias del documento en su estado actual.
// Para una venta son los de su salida acompañante: -q por cada línea de producto.
func effectOf(doc *entity.Document) []domaininv.Delta {
	if doc.Kind != entity.DocumentSale {
		return domaininv.DocumentDeltas(doc)
	}
	return saleDeltas(doc)
}

func keysOf(deltas ...[]domaininv.Delta) []entity.StockKey {
	var keys []entity.StockKey
	for _, ds := range deltas {
		for _, d := range ds {
			keys = append(keys, d.Key)
		}
	}
	return keys
}

// checkAvailability valida las líneas salientes contra la vista bloqueada de existencias,
// acumulando por clave. Devuelve la primera línea que no alcanza.
func checkAvailability(doc *entity.Document, view map[entity.StockKey]decimal.Decimal) error {
	if doc.Kind == entity.DocumentReceipt {
		return nil
	}
	requested := make(map[entity.StockKey]decimal.Decimal)
	for _, l := range doc.Lines {
		if l.Kind != entity.LineProduct {
			continue
		}
		k := l.StockKey(doc.TenantID, doc.LocationID)
		requested[k] = requested[k].Add(l.Quantity)
		if requested[k].GreaterThan(view[k]) {
			return &domain.InsufficientStockError{
				ProductID:  l.ProductID,
				UnitID:     l.UnitID,
				LocationID: doc.LocationID,
				Available:  view[k],
				Requested:  requested[k],
			}
		}
	}
	return nil
}

func sumSubtotals(lines []entity.DocumentLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal)
	}
	return total
}
