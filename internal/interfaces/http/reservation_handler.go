package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Pedidos-api/internal/application/dto"
	"github.com/jhoicas/Pedidos-api/internal/application/reservation"
	"github.com/jhoicas/Pedidos-api/pkg/logger"
)

// ReservationHandler peticiones HTTP de reservas.
type ReservationHandler struct {
	ledger    *reservation.Ledger
	activator *reservation.Activator
	log       *logger.Logger
}

// NewReservationHandler construye el handler.
func NewReservationHandler(ledger *reservation.Ledger, activator *reservation.Activator, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{ledger: ledger, activator: activator, log: log}
}

// Create acepta un payload único o un arreglo de reservas. Cada elemento del
// lote es una transacción independiente; la respuesta reporta el resultado
// por elemento.
func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	var batch dto.CreateReservationBatch
	if err := batch.UnmarshalJSON(c.Body()); err != nil || len(batch.Reservations) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	if !batch.WasArray {
		res, err := h.ledger.Create(c.Context(), batch.Reservations[0])
		if err != nil {
			logFailure(h.log, err).Err(err).Msg("crear reserva")
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}

	results := h.ledger.CreateBatch(c.Context(), batch)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"total":   len(results),
		"results": results,
	})
}

// Update activa una reserva (is_active: false → true) o aplica una
// actualización plana de escalares. La desactivación se rechaza.
func (h *ReservationHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.UpdateReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.activator.Update(c.Context(), id, in)
	if err != nil {
		logFailure(h.log, err).Err(err).Str("reservation_id", id).Msg("actualizar reserva")
		return respondError(c, err)
	}
	body := fiber.Map{"reservation": result.Reservation}
	if result.Order != nil {
		body["order"] = result.Order
	}
	return c.JSON(body)
}
