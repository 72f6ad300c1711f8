package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-inventario/internal/domain/entity"
)

// DocumentFilter filtros de listado de documentos.
type DocumentFilter struct {
	TenantID   string
	Kind       entity.DocumentKind
	LocationID string // opcional
	Active     *bool  // opcional
	Limit      int
	Offset     int
}

// DocumentRepository define el puerto de persistencia de documentos y sus líneas.
// Las lecturas devuelven nil, nil cuando el documento no existe.
type DocumentRepository interface {
	// Create persiste encabezado y líneas.
	Create(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, id string) (*entity.Document, error)
	// GetForUpdate carga el documento con sus líneas y bloquea el encabezado.
	GetForUpdate(ctx context.Context, id string) (*entity.Document, error)
	// Update actualiza los campos del encabezado (no las líneas).
	Update(ctx context.Context, doc *entity.Document) error
	// ReplaceLines borra todas las líneas del documento e inserta las nuevas.
	ReplaceLines(ctx context.Context, documentID string, lines []entity.DocumentLine) error
	SetActive(ctx context.Context, id string, active bool) error
	// FindCompanion devuelve la salida generada por la venta, o nil.
	FindCompanion(ctx context.Context, saleID string) (*entity.Document, error)
	List(ctx context.Context, filter DocumentFilter) ([]*entity.Document, int, error)
	// ListActiveReceiptPrices devuelve los precios unitarios de las líneas de entradas activas
	// del producto y unidad en la sede.
	ListActiveReceiptPrices(ctx context.Context, tenantID, locationID, productID, unitID string) ([]decimal.Decimal, error)
}
