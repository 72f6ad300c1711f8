package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockKey identifica un registro de existencias.
type StockKey struct {
	TenantID   string
	LocationID string
	ProductID  string
	UnitID     string
}

// Less define el orden total con el que se bloquean las filas de stock.
func (k StockKey) Less(o StockKey) bool {
	if k.TenantID != o.TenantID {
		return k.TenantID < o.TenantID
	}
	if k.LocationID != o.LocationID {
		return k.LocationID < o.LocationID
	}
	if k.ProductID != o.ProductID {
		return k.ProductID < o.ProductID
	}
	return k.UnitID < o.UnitID
}

// StockRecord cantidad actual de un producto en una unidad y sede.
// Se crea con la primera entrada y nunca se elimina. Quantity nunca es negativa.
type StockRecord struct {
	StockKey
	Quantity    decimal.Decimal
	MinQuantity decimal.Decimal // umbral de alerta, no se impone
	UpdatedAt   time.Time
}

// BelowMinimum indica si la cantidad está por debajo del umbral configurado.
func (s *StockRecord) BelowMinimum() bool {
	return s.MinQuantity.IsPositive() && s.Quantity.LessThan(s.MinQuantity)
}
