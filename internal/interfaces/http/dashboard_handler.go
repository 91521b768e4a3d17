package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/em-inventario/internal/application/dashboard"
)

// DashboardHandler maneja el resumen del tablero.
type DashboardHandler struct {
	uc *dashboard.UseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *dashboard.UseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary godoc
// @Summary      Resumen del tablero
// @Description  Existencias por categoría, ítems bajo mínimo, valor del inventario,
// @Description  requisiciones por estado y tipo, entregas vencidas y las 5 más recientes.
// @Description  Una categoría que no se pudo leer aparece con error y no tumba el resumen.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardSummaryDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/dashboard [get]
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.Summary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
