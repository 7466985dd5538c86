package http

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/correction-backoffice/internal/application/dto"
	"github.com/jhoicas/correction-backoffice/internal/domain"
)

const msgInvoiceNotFound = "Invoice not found"

func writeError(c *fiber.Ctx, status int, msg, details string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: msg, Details: details})
}

// respondError traduce errores de dominio a HTTP. fallback es el mensaje genérico de 500;
// el texto del error original va en details para diagnóstico.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, msgInvoiceNotFound, "")
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidInput):
		return writeError(c, fiber.StatusBadRequest, "Invalid request", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return writeError(c, fiber.StatusUnauthorized, "Unauthorized", "")
	case errors.Is(err, domain.ErrForbidden):
		return writeError(c, fiber.StatusForbidden, "Forbidden", "")
	default:
		return writeError(c, fiber.StatusInternalServerError, fallback, err.Error())
	}
}
