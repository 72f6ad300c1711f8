package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/taller-inventario/internal/application/dto"
	"github.com/jhoicas/taller-inventario/internal/application/inventory"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
)

// DocumentHandler expone entradas, salidas o ventas; una instancia por tipo de documento.
type DocumentHandler struct {
	coord *inventory.Coordinator
	kind  entity.DocumentKind
}

// NewDocumentHandler construye el handler para el tipo indicado.
func NewDocumentHandler(coord *inventory.Coordinator, kind entity.DocumentKind) *DocumentHandler {
	return &DocumentHandler{coord: coord, kind: kind}
}

// Create godoc
// @Summary      Registrar documento (entrada, salida o venta)
// @Description  Asigna el código consecutivo y aplica los movimientos de stock en una sola transacción.
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string               false  "Clave de idempotencia"
// @Param        body             body    dto.DocumentRequest  true   "Encabezado y líneas"
// @Success      201  {object}  dto.DocumentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/receipts [post]
// @Router       /api/issues [post]
// @Router       /api/sales [post]
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	var in dto.DocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.coord.Create(c.UserContext(), GetActor(c), h.kind, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Editar documento activo
// @Description  Revierte el efecto anterior y aplica el nuevo; el código no cambia.
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del documento"
// @Param        body  body  dto.DocumentRequest  true  "Encabezado y líneas"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/receipts/{id} [put]
// @Router       /api/issues/{id} [put]
// @Router       /api/sales/{id} [put]
func (h *DocumentHandler) Update(c *fiber.Ctx) error {
	var in dto.DocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.coord.Edit(c.UserContext(), GetActor(c), h.kind, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Desactivar documento
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/receipts/{id}/deactivate [post]
// @Router       /api/issues/{id}/deactivate [post]
// @Router       /api/sales/{id}/deactivate [post]
func (h *DocumentHandler) Deactivate(c *fiber.Ctx) error {
	out, err := h.coord.Deactivate(c.UserContext(), GetActor(c), h.kind, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener documento con sus líneas
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/receipts/{id} [get]
// @Router       /api/issues/{id} [get]
// @Router       /api/sales/{id} [get]
func (h *DocumentHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.coord.Get(c.UserContext(), GetActor(c), h.kind, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar documentos
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Filtrar por sede"
// @Param        active       query  bool    false  "Filtrar por estado"
// @Param        tenant_id    query  string  false  "Solo superadmin"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.DocumentListResponse
// @Router       /api/receipts [get]
// @Router       /api/issues [get]
// @Router       /api/sales [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	in := dto.DocumentListRequest{
		TenantID:    c.Query("tenant_id"),
		LocationID:  c.Query("location_id"),
		PageRequest: pageFromQuery(c),
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "active debe ser true o false"})
		}
		in.Active = &active
	}
	out, err := h.coord.List(c.UserContext(), GetActor(c), h.kind, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	p.DefaultPage()
	return p
}
