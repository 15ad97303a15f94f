package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Pedidos-api/internal/application/dto"
	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/pkg/logger"
)

// logFailure elige el nivel según la clase del error: los de negocio (4xx)
// van como warning, las fallas internas como error.
func logFailure(log *logger.Logger, err error) *zerolog.Event {
	if domain.IsBusiness(err) {
		return log.Warn()
	}
	return log.Error()
}

// respondError mapea errores de dominio a respuestas HTTP. Los errores de
// negocio van como 4xx con su código; el resto se responde genérico (5xx)
// y el detalle queda solo en el log.
func respondError(c *fiber.Ctx, err error) error {
	var stockErr *domain.StockError
	if errors.As(err, &stockErr) {
		status := fiber.StatusConflict
		if stockErr.Code == domain.CodeStockNotFound {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(dto.ErrorResponse{Code: stockErr.Code, Message: stockErr.Error()})
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}
