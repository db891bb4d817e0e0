package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-categorias/internal/application/dto"
	"github.com/jhoicas/erp-categorias/internal/domain"
)

// writeError traduce un error de dominio a status HTTP + dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrCategoryCycle):
		status, code = fiber.StatusConflict, "CYCLE"
	case errors.Is(err, domain.ErrCategoryHasChildren):
		status, code = fiber.StatusConflict, "HAS_CHILDREN"
	case errors.Is(err, domain.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrUpstream):
		status, code = fiber.StatusBadGateway, "UPSTREAM"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: publicMessage(err)})
}

// publicMessage recorta el prefijo del sentinel para no repetirlo en cada respuesta.
func publicMessage(err error) string {
	msg := err.Error()
	if inner := errors.Unwrap(err); inner != nil {
		if rest, ok := strings.CutPrefix(msg, inner.Error()+": "); ok {
			return rest
		}
	}
	return msg
}
