package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind tipo de documento que afecta inventario.
type DocumentKind string

const (
	DocumentReceipt DocumentKind = "receipt" // entrada de mercancía
	DocumentIssue   DocumentKind = "issue"   // salida de mercancía
	DocumentSale    DocumentKind = "sale"    // venta (genera una salida acompañante)
)

// Prefijos de código por tipo de documento.
const (
	PrefixReceipt = "ENT"
	PrefixIssue   = "SAL"
	PrefixSale    = "VEN"
)

// LineKind tipo de línea. Las entradas y salidas solo llevan líneas de producto.
type LineKind string

const (
	LineProduct LineKind = "product"
	LineService LineKind = "service"
)

// Motivos de salida. ReasonSale está reservado para las salidas generadas por una venta.
const (
	ReasonAdjustment      = "adjustment"
	ReasonDefectiveReturn = "defective-return"
	ReasonOther           = "other"
	ReasonSale            = "sale"
)

// ReferenceSale marca la referencia de una salida acompañante.
const ReferenceSale = "sale"

// Valid indica si el tipo es uno de los soportados.
func (k DocumentKind) Valid() bool {
	switch k {
	case DocumentReceipt, DocumentIssue, DocumentSale:
		return true
	}
	return false
}

// CodePrefix devuelve el prefijo de secuencia del tipo.
func (k DocumentKind) CodePrefix() string {
	switch k {
	case DocumentReceipt:
		return PrefixReceipt
	case DocumentIssue:
		return PrefixIssue
	case DocumentSale:
		return PrefixSale
	}
	return ""
}

// Document encabezado de una entrada, salida o venta.
// Total siempre es la suma de los subtotales de Lines.
type Document struct {
	ID         string
	TenantID   string
	Kind       DocumentKind
	LocationID string
	UserID     string
	Code       string
	Date       time.Time
	Total      decimal.Decimal
	Active     bool
	Notes      string

	SupplierID string // entrada

	ReasonCode    string // salida
	ReferenceType string // salida: "sale" cuando acompaña a una venta
	ReferenceID   string

	ClientID        string // venta
	PriorServiceRef string

	Lines     []DocumentLine
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsCompanion indica si es la salida generada por una venta.
func (d *Document) IsCompanion() bool {
	return d.Kind == DocumentIssue && d.ReferenceType == ReferenceSale
}

// ProductLines devuelve solo las líneas que mueven inventario.
func (d *Document) ProductLines() []DocumentLine {
	out := make([]DocumentLine, 0, len(d.Lines))
	for _, l := range d.Lines {
		if l.Kind == LineProduct {
			out = append(out, l)
		}
	}
	return out
}

// DocumentLine línea de un documento.
type DocumentLine struct {
	ID            string
	DocumentID    string
	Position      int
	Kind          LineKind
	ProductID     string
	UnitID        string
	Description   string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	Subtotal      decimal.Decimal
	CostReference decimal.Decimal // costo promedio de referencia (líneas de venta y salidas acompañantes)
}

// StockKey devuelve la clave de existencias que afecta la línea en la sede dada.
func (l DocumentLine) StockKey(tenantID, locationID string) StockKey {
	return StockKey{TenantID: tenantID, LocationID: locationID, ProductID: l.ProductID, UnitID: l.UnitID}
}

// Margin devuelve Subtotal - Quantity*CostReference.
func (l DocumentLine) Margin() decimal.Decimal {
	return l.Subtotal.Sub(l.Quantity.Mul(l.CostReference))
}
