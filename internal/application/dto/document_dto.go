package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentLineRequest línea de una entrada, salida o venta.
// Kind vacío equivale a "product". Subtotal en cero se calcula como quantity * unit_price.
type DocumentLineRequest struct {
	Kind        string          `json:"kind" validate:"omitempty,oneof=product service"`
	ProductID   string          `json:"product_id"`
	UnitID      string          `json:"unit_id"`
	Description string          `json:"description" validate:"max=255"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"gte=0"`
	Subtotal    decimal.Decimal `json:"subtotal" validate:"gte=0"`
}

// DocumentRequest body de creación y edición de documentos.
// SupplierID aplica a entradas, ReasonCode a salidas, ClientID y PriorServiceRef a ventas.
type DocumentRequest struct {
	TenantID        string                `json:"tenant_id,omitempty"` // solo superadmin
	LocationID      string                `json:"location_id" validate:"required"`
	Date            *time.Time            `json:"date,omitempty"`
	Notes           string                `json:"notes" validate:"max=1000"`
	SupplierID      string                `json:"supplier_id,omitempty"`
	ReasonCode      string                `json:"reason_code,omitempty"`
	ClientID        string                `json:"client_id,omitempty"`
	PriorServiceRef string                `json:"prior_service_ref,omitempty"`
	Lines           []DocumentLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// DocumentLineResponse línea de salida.
type DocumentLineResponse struct {
	ID            string           `json:"id"`
	Position      int              `json:"position"`
	Kind          string           `json:"kind"`
	ProductID     string           `json:"product_id,omitempty"`
	UnitID        string           `json:"unit_id,omitempty"`
	Description   string           `json:"description,omitempty"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitPrice     decimal.Decimal  `json:"unit_price"`
	Subtotal      decimal.Decimal  `json:"subtotal"`
	CostReference *decimal.Decimal `json:"cost_reference,omitempty"`
	Margin        *decimal.Decimal `json:"margin,omitempty"` // solo líneas de producto de ventas
}

// DocumentResponse salida de un documento.
type DocumentResponse struct {
	ID              string                 `json:"id"`
	TenantID        string                 `json:"tenant_id"`
	Kind            string                 `json:"kind"`
	Code            string                 `json:"code"`
	LocationID      string                 `json:"location_id"`
	UserID          string                 `json:"user_id"`
	Date            time.Time              `json:"date"`
	Total           decimal.Decimal        `json:"total"`
	Active          bool                   `json:"active"`
	Notes           string                 `json:"notes,omitempty"`
	SupplierID      string                 `json:"supplier_id,omitempty"`
	ReasonCode      string                 `json:"reason_code,omitempty"`
	ReferenceType   string                 `json:"reference_type,omitempty"`
	ReferenceID     string                 `json:"reference_id,omitempty"`
	ClientID        string                 `json:"client_id,omitempty"`
	PriorServiceRef string                 `json:"prior_service_ref,omitempty"`
	CompanionID     string                 `json:"companion_id,omitempty"`   // salida generada por la venta
	CompanionCode   string                 `json:"companion_code,omitempty"`
	Lines           []DocumentLineResponse `json:"lines"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// DocumentListRequest filtros de listado (query string).
type DocumentListRequest struct {
	TenantID   string `query:"tenant_id"`
	LocationID string `query:"location_id"`
	Active     *bool  `query:"active"`
	PageRequest
}

// DocumentListResponse lista paginada de documentos (sin líneas).
type DocumentListResponse struct {
	Items []DocumentResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
