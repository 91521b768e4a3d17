package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/em-inventario/internal/application/catalog"
	"github.com/jhoicas/em-inventario/internal/application/dto"
	"github.com/jhoicas/em-inventario/internal/domain"
)

// CatalogHandler pantallas CRUD de las categorías del catálogo (protegido).
type CatalogHandler struct {
	uc       *catalog.UseCase
	registry *catalog.Registry
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *catalog.UseCase, registry *catalog.Registry) *CatalogHandler {
	return &CatalogHandler{uc: uc, registry: registry}
}

// Categories godoc
// @Summary      Categorías configuradas
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string][]string
// @Router       /api/catalog [get]
func (h *CatalogHandler) Categories(c *fiber.Ctx) error {
	cats := h.registry.Categories()
	names := make([]string, len(cats))
	for i, cat := range cats {
		names[i] = string(cat)
	}
	return c.JSON(fiber.Map{"categories": names})
}

// List godoc
// @Summary      Listar una categoría
// @Description  Devuelve la categoría completa, sin paginación. q busca en nombre, código, ubicación y asignado.
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        category  path   string  true   "spare_parts | tools | ppe | stationery | general_items | faulty_returns"
// @Param        q         query  string  false  "búsqueda"
// @Param        sort      query  string  false  "name | quantity | last_updated"
// @Param        order     query  string  false  "asc | desc"
// @Success      200  {object}  dto.CatalogListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/catalog/{category} [get]
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	category, err := catalog.ParseCategory(c.Params("category"))
	if err != nil {
		return respondError(c, err)
	}
	var q dto.CatalogQuery
	if err := c.QueryParser(&q); err != nil {
		return badBody(c)
	}
	out, err := h.uc.List(c.UserContext(), category, q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener ítem
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        category  path  string  true  "categoría"
// @Param        id        path  string  true  "ID del ítem"
// @Success      200  {object}  dto.CatalogItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/catalog/{category}/{id} [get]
func (h *CatalogHandler) Get(c *fiber.Ctx) error {
	category, err := catalog.ParseCategory(c.Params("category"))
	if err != nil {
		return respondError(c, err)
	}
	item, err := h.uc.Get(c.UserContext(), category, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if item == nil {
		return respondError(c, domain.ErrNotFound)
	}
	return c.JSON(item)
}

// Create godoc
// @Summary      Crear ítem
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        category  path  string                  true  "categoría"
// @Param        body      body  dto.CatalogItemRequest  true  "ítem"
// @Success      201  {object}  dto.CatalogItemResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/catalog/{category} [post]
func (h *CatalogHandler) Create(c *fiber.Ctx) error {
	return h.upsert(c, "", fiber.StatusCreated)
}

// Update godoc
// @Summary      Sobrescribir ítem
// @Description  Reemplaza el ítem completo; si el ID no existe lo crea con ese ID.
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        category  path  string                  true  "categoría"
// @Param        id        path  string                  true  "ID del ítem"
// @Param        body      body  dto.CatalogItemRequest  true  "ítem"
// @Success      200  {object}  dto.CatalogItemResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/catalog/{category}/{id} [put]
func (h *CatalogHandler) Update(c *fiber.Ctx) error {
	return h.upsert(c, c.Params("id"), fiber.StatusOK)
}

func (h *CatalogHandler) upsert(c *fiber.Ctx, id string, status int) error {
	category, err := catalog.ParseCategory(c.Params("category"))
	if err != nil {
		return respondError(c, err)
	}
	var in dto.CatalogItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Upsert(c.UserContext(), category, id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(status).JSON(out)
}

// Delete godoc
// @Summary      Eliminar ítem (admin, storekeeper)
// @Tags         catalog
// @Security     Bearer
// @Param        category  path  string  true  "categoría"
// @Param        id        path  string  true  "ID del ítem"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/catalog/{category}/{id} [delete]
func (h *CatalogHandler) Delete(c *fiber.Ctx) error {
	category, err := catalog.ParseCategory(c.Params("category"))
	if err != nil {
		return respondError(c, err)
	}
	if err := h.uc.Remove(c.UserContext(), category, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
