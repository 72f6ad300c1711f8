package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/taller-inventario/internal/application/dto"
	"github.com/jhoicas/taller-inventario/internal/application/inventory"
)

// StockHandler consultas de existencias y mínimos (protegido).
type StockHandler struct {
	uc *inventory.StockQueryUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.StockQueryUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// List godoc
// @Summary      Existencias por sede
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  true  "ID de la sede"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	items, err := h.uc.ListStock(c.UserContext(), GetActor(c), c.Query("location_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(items), "items": items})
}

// LowStock godoc
// @Summary      Claves bajo su cantidad mínima con sugerencia de reposición
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  true  "ID de la sede"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/stock/low [get]
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	items, err := h.uc.LowStock(c.UserContext(), GetActor(c), c.Query("location_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(items), "replenishments": items})
}

// SetMinQuantity godoc
// @Summary      Fijar cantidad mínima de una clave de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Param        body  body  dto.SetMinQuantityRequest  true  "Clave y mínimo"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/min-quantity [put]
func (h *StockHandler) SetMinQuantity(c *fiber.Ctx) error {
	var in dto.SetMinQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.uc.SetMinQuantity(c.UserContext(), GetActor(c), in); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Valuation godoc
// @Summary      Costo de referencia (media de entradas activas)
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  true  "ID de la sede"
// @Param        product_id   query  string  true  "ID del producto"
// @Param        unit_id      query  string  true  "Unidad"
// @Success      200  {object}  dto.ValuationResponse
// @Router       /api/stock/valuation [get]
func (h *StockHandler) Valuation(c *fiber.Ctx) error {
	out, err := h.uc.Valuation(c.UserContext(), GetActor(c), c.Query("location_id"), c.Query("product_id"), c.Query("unit_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
