package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/pkg/lock"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// statusFor traduce errores de dominio a (status, code). NotFound se evalúa primero.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusBadRequest, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrAlreadyDeleted):
		return fiber.StatusBadRequest, "ALREADY_DELETED"
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusBadRequest, "DUPLICATE"
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, lock.ErrBusy):
		return fiber.StatusServiceUnavailable, "LOCK_BUSY"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

// writeError responde el error como JSON; 4xx se loguea en warn y 5xx en error.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	status, code := statusFor(err)
	body := dto.ErrorResponse{Code: code, Message: err.Error()}

	var stock *domain.InsufficientStockError
	if errors.As(err, &stock) {
		body.Available = &stock.Available
		body.Required = &stock.Required
	}

	ev := log.Warn()
	if status >= fiber.StatusInternalServerError {
		ev = log.Error()
		body.Message = "error interno del servidor"
	}
	ev.Err(err).
		Str("request_id", RequestIDFrom(c)).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Msg("petición rechazada")

	return c.Status(status).JSON(body)
}

// ErrorHandler handler de errores de fiber (rutas inexistentes, body demasiado grande, pánicos recuperados).
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
		}
		return writeError(c, log, err)
	}
}
