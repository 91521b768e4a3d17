package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/em-inventario/internal/application/dto"
	"github.com/jhoicas/em-inventario/internal/application/requisition"
	"github.com/jhoicas/em-inventario/internal/domain"
)

// RequisitionHandler libro de requisiciones (protegido).
type RequisitionHandler struct {
	uc *requisition.LedgerUseCase
}

// NewRequisitionHandler construye el handler.
func NewRequisitionHandler(uc *requisition.LedgerUseCase) *RequisitionHandler {
	return &RequisitionHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar requisición
// @Description  Guarda la requisición con número REQ-NNNNNN y concilia cada línea contra su catálogo.
// @Description  reconciliation indica por línea applied, miss o failed.
// @Tags         requisitions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRequisitionRequest  true  "requisición"
// @Success      201  {object}  dto.CreateRequisitionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/requisitions [post]
func (h *RequisitionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRequisitionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Department == "" {
		in.Department = GetDepartment(c)
	}
	out, err := h.uc.Create(c.UserContext(), in, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Buscar en el libro
// @Tags         requisitions
// @Security     Bearer
// @Produce      json
// @Param        type        query  string  false  "issue | return | consume"
// @Param        status      query  string  false  "pending | approved | rejected | completed | overdue"
// @Param        item_type   query  string  false  "categoría"
// @Param        department  query  string  false  "departamento"
// @Param        q           query  string  false  "referencia, persona, ítem"
// @Param        from        query  string  false  "YYYY-MM-DD o RFC3339"
// @Param        to          query  string  false  "YYYY-MM-DD o RFC3339"
// @Param        overdue     query  bool    false  "solo entregas vencidas"
// @Success      200  {object}  dto.RequisitionListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/requisitions [get]
func (h *RequisitionHandler) List(c *fiber.Ctx) error {
	var in dto.RequisitionFilterRequest
	if err := c.QueryParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener requisición
// @Tags         requisitions
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID"
// @Success      200  {object}  dto.RequisitionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requisitions/{id} [get]
func (h *RequisitionHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return respondError(c, domain.ErrNotFound)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar requisición
// @Description  Cambia estado y datos de cabecera. rejected y completed son terminales.
// @Tags         requisitions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID"
// @Param        body  body  dto.UpdateRequisitionRequest  true  "campos a cambiar"
// @Success      200  {object}  dto.RequisitionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/requisitions/{id} [patch]
func (h *RequisitionHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateRequisitionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar requisición (admin, storekeeper)
// @Description  No revierte las cantidades ya ajustadas en el catálogo.
// @Tags         requisitions
// @Security     Bearer
// @Param        id  path  string  true  "ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requisitions/{id} [delete]
func (h *RequisitionHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
