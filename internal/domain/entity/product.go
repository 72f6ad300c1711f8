package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un repuesto o insumo del catálogo del tenant.
// Las existencias se llevan por (sede, producto, unidad) en StockRecord.
type Product struct {
	ID          string
	TenantID    string
	SKU         string // código único por tenant
	Name        string
	Description string
	Price       decimal.Decimal // precio de venta sugerido
	Units       []ProductUnit
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductUnit asocia una unidad de medida (catálogo externo) al producto.
type ProductUnit struct {
	UnitID           string
	ConversionFactor decimal.Decimal // unidades primarias contenidas en una de esta unidad
	Primary          bool
}

// HasUnit indica si la unidad está asociada al producto.
func (p *Product) HasUnit(unitID string) bool {
	for _, u := range p.Units {
		if u.UnitID == unitID {
			return true
		}
	}
	return false
}

// PrimaryUnit devuelve la unidad primaria, o nil si no hay.
func (p *Product) PrimaryUnit() *ProductUnit {
	for i := range p.Units {
		if p.Units[i].Primary {
			return &p.Units[i]
		}
	}
	return nil
}
