package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/em-inventario/internal/application/dto"
	"github.com/jhoicas/em-inventario/internal/domain"
)

// errorStatus traduce errores de dominio a estado HTTP y código estable.
var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnknownCategory, fiber.StatusBadRequest, "UNKNOWN_CATEGORY"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrReconciliationMiss, fiber.StatusConflict, "RECONCILIATION_MISS"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrUserNotFound, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
}

// LocalsLogger clave de Locals con el logger de la petición.
const LocalsLogger = "logger"

// WithLogger deja log en Locals para que respondError registre los errores internos.
func WithLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(LocalsLogger, log)
		return c.Next()
	}
}

func requestLogger(c *fiber.Ctx) zerolog.Logger {
	if l, ok := c.Locals(LocalsLogger).(zerolog.Logger); ok {
		return l
	}
	return zerolog.Nop()
}

// internalMessage único mensaje que ve el cliente en un 500; el detalle queda en el log.
const internalMessage = "error interno del servidor"

// respondError escribe dto.ErrorResponse. Los errores de dominio conservan su mensaje
// envuelto (indica qué campo o ítem falló); el resto responde 500 sin detalle.
func respondError(c *fiber.Ctx, err error) error {
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	log := requestLogger(c)
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: internalMessage})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
