package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/em-inventario/internal/application/document"
	"github.com/jhoicas/em-inventario/internal/application/dto"
)

// DocumentHandler descarga de comprobantes de entrega y pases de salida.
type DocumentHandler struct {
	uc *document.UseCase
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(uc *document.UseCase) *DocumentHandler {
	return &DocumentHandler{uc: uc}
}

// FromRequisition godoc
// @Summary      Documento de una requisición guardada
// @Tags         documents
// @Security     Bearer
// @Produce      application/vnd.ms-excel,application/pdf
// @Param        id      path  string  true  "ID de la requisición"
// @Param        kind    path  string  true  "issuance | gate-pass"
// @Param        format  path  string  true  "xls | xlsx | pdf"
// @Success      200  {file}    file
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requisitions/{id}/documents/{kind}.{format} [get]
func (h *DocumentHandler) FromRequisition(c *fiber.Ctx) error {
	kind, format, err := parseDocumentPath(c)
	if err != nil {
		return respondError(c, err)
	}
	f, err := h.uc.FromRequisition(c.UserContext(), kind, format, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return sendFile(c, f)
}

// FromRequest godoc
// @Summary      Documento desde un formulario
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      application/vnd.ms-excel,application/pdf
// @Param        kind    path  string               true  "issuance | gate-pass"
// @Param        format  path  string               true  "xls | xlsx | pdf"
// @Param        body    body  dto.DocumentRequest  true  "formulario"
// @Success      200  {file}    file
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/documents/{kind}.{format} [post]
func (h *DocumentHandler) FromRequest(c *fiber.Ctx) error {
	kind, format, err := parseDocumentPath(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.DocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	f, err := h.uc.FromRequest(kind, format, in)
	if err != nil {
		return respondError(c, err)
	}
	return sendFile(c, f)
}

func parseDocumentPath(c *fiber.Ctx) (document.Kind, document.Format, error) {
	kind, err := document.ParseKind(c.Params("kind"))
	if err != nil {
		return "", "", err
	}
	format, err := document.ParseFormat(c.Params("format"))
	if err != nil {
		return "", "", err
	}
	return kind, format, nil
}

func sendFile(c *fiber.Ctx, f *document.File) error {
	c.Set(fiber.HeaderContentType, f.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, f.Name))
	return c.Send(f.Body)
}
