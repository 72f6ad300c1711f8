package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductUnitRequest unidad de medida asociada al producto.
type ProductUnitRequest struct {
	UnitID           string          `json:"unit_id" validate:"required"`
	ConversionFactor decimal.Decimal `json:"conversion_factor" validate:"gt=0"`
	Primary          bool            `json:"primary"`
}

// CreateProductRequest entrada para crear un producto con sus unidades.
type CreateProductRequest struct {
	TenantID    string               `json:"tenant_id,omitempty"` // solo superadmin
	SKU         string               `json:"sku" validate:"required,min=1,max=100"`
	Name        string               `json:"name" validate:"required,min=1,max=200"`
	Description string               `json:"description" validate:"max=1000"`
	Price       decimal.Decimal      `json:"price" validate:"gte=0"`
	Units       []ProductUnitRequest `json:"units" validate:"required,min=1,dive"`
}

// UpdateProductRequest entrada para actualizar un producto (las unidades no se editan).
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
}

// ProductUnitResponse unidad de un producto.
type ProductUnitResponse struct {
	UnitID           string          `json:"unit_id"`
	ConversionFactor decimal.Decimal `json:"conversion_factor"`
	Primary          bool            `json:"primary"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string                `json:"id"`
	TenantID    string                `json:"tenant_id"`
	SKU         string                `json:"sku"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Price       decimal.Decimal       `json:"price"`
	Units       []ProductUnitResponse `json:"units"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
