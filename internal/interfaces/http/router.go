package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/taller-inventario/internal/application/inventory"
	"github.com/jhoicas/taller-inventario/internal/application/usecase"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/infrastructure/cache"
	"github.com/jhoicas/taller-inventario/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Coordinator    *inventory.Coordinator
	StockQuery     *inventory.StockQueryUseCase
	LocationUC     *usecase.LocationUseCase
	ProductUC      *usecase.ProductUseCase
	Idempotency    cache.IdempotencyStore
	IdempotencyTTL time.Duration
	JWTSecret      string
	Logger         zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", RequestLogger(deps.Logger))

	// Todas las rutas requieren Bearer Token
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	idempotent := IdempotencyMiddleware(deps.Idempotency, deps.IdempotencyTTL, deps.Logger)

	everyone := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleVendedor)
	adminOnly := RequireRole(jwt.RoleAdmin)

	// Documentos: entradas y salidas las registra bodega; ventas el vendedor.
	registerDocuments(protected.Group("/receipts"), NewDocumentHandler(deps.Coordinator, entity.DocumentReceipt),
		RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero), everyone, idempotent)
	registerDocuments(protected.Group("/issues"), NewDocumentHandler(deps.Coordinator, entity.DocumentIssue),
		RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero), everyone, idempotent)
	registerDocuments(protected.Group("/sales"), NewDocumentHandler(deps.Coordinator, entity.DocumentSale),
		RequireRole(jwt.RoleAdmin, jwt.RoleVendedor), everyone, idempotent)

	// Stock
	stock := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.StockQuery)
	stock.Get("/", everyone, stockHandler.List)
	stock.Get("/low", everyone, stockHandler.LowStock)
	stock.Get("/valuation", everyone, stockHandler.Valuation)
	stock.Put("/min-quantity", RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero), stockHandler.SetMinQuantity)

	// Sedes
	locations := protected.Group("/locations")
	locationHandler := NewLocationHandler(deps.LocationUC)
	locations.Post("/", adminOnly, locationHandler.Create)
	locations.Get("/", everyone, locationHandler.List)
	locations.Get("/:id", everyone, locationHandler.GetByID)
	locations.Put("/:id", adminOnly, locationHandler.Update)

	// Productos
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", adminOnly, productHandler.Create)
	products.Get("/", everyone, productHandler.List)
	products.Get("/:id", everyone, productHandler.GetByID)
	products.Put("/:id", adminOnly, productHandler.Update)
}

func registerDocuments(g fiber.Router, h *DocumentHandler, write, read, idempotent fiber.Handler) {
	g.Post("/", write, idempotent, h.Create)
	g.Get("/", read, h.List)
	g.Get("/:id", read, h.GetByID)
	g.Put("/:id", write, h.Update)
	g.Post("/:id/deactivate", write, h.Deactivate)
}
