package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockItemResponse existencias de un producto/unidad en una sede, con costo de referencia.
type StockItemResponse struct {
	LocationID     string          `json:"location_id"`
	ProductID      string          `json:"product_id"`
	UnitID         string          `json:"unit_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	MinQuantity    decimal.Decimal `json:"min_quantity"`
	IndicativeCost decimal.Decimal `json:"indicative_cost"` // media de precios de entradas activas
	StockValue     decimal.Decimal `json:"stock_value"`     // Quantity * IndicativeCost
	BelowMinimum   bool            `json:"below_minimum"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// LowStockItemResponse sugerencia de reposición para una clave bajo su cantidad mínima.
type LowStockItemResponse struct {
	LocationID         string          `json:"location_id"`
	ProductID          string          `json:"product_id"`
	UnitID             string          `json:"unit_id"`
	Quantity           decimal.Decimal `json:"quantity"`
	MinQuantity        decimal.Decimal `json:"min_quantity"`
	Deficit            decimal.Decimal `json:"deficit"`             // MinQuantity - Quantity
	IdealStock         decimal.Decimal `json:"ideal_stock"`         // MinQuantity * 1.5
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"` // IdealStock - Quantity
	UnitCost           decimal.Decimal `json:"unit_cost"`
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"`
	Priority           int             `json:"priority"` // 1 = más urgente
}

// SetMinQuantityRequest body para PUT /api/stock/min-quantity.
type SetMinQuantityRequest struct {
	TenantID    string          `json:"tenant_id,omitempty"`
	LocationID  string          `json:"location_id" validate:"required"`
	ProductID   string          `json:"product_id" validate:"required"`
	UnitID      string          `json:"unit_id" validate:"required"`
	MinQuantity decimal.Decimal `json:"min_quantity" validate:"gte=0"`
}

// ValuationResponse costo de referencia de un producto/unidad en una sede.
type ValuationResponse struct {
	LocationID string          `json:"location_id"`
	ProductID  string          `json:"product_id"`
	UnitID     string          `json:"unit_id"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
}
