package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Pedidos-api/internal/application/dto"
	"github.com/jhoicas/Pedidos-api/internal/application/order"
	"github.com/jhoicas/Pedidos-api/pkg/logger"
)

// OrderHandler peticiones HTTP de pedidos y líneas de pedido.
type OrderHandler struct {
	creator  *order.Creator
	adjuster *order.Adjuster
	query    *order.Query
	log      *logger.Logger
}

// NewOrderHandler construye el handler.
func NewOrderHandler(creator *order.Creator, adjuster *order.Adjuster, query *order.Query, log *logger.Logger) *OrderHandler {
	return &OrderHandler{creator: creator, adjuster: adjuster, query: query, log: log}
}

// Get devuelve el pedido con sus líneas y agregados de fulfillment.
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	o, err := h.query.Get(c.Context(), id)
	if err != nil {
		logFailure(h.log, err).Err(err).Str("order_id", id).Msg("consultar pedido")
		return respondError(c, err)
	}
	return c.JSON(o)
}

// CreateFromReservation crea un pedido directo desde una reserva,
// re-validando y descontando existencia física.
func (h *OrderHandler) CreateFromReservation(c *fiber.Ctx) error {
	id := c.Params("id")
	created, err := h.creator.CreateFromReservation(c.Context(), id)
	if err != nil {
		logFailure(h.log, err).Err(err).Str("reservation_id", id).Msg("crear pedido desde reserva")
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// AdjustItem mutación parcial de una línea de pedido.
func (h *OrderHandler) AdjustItem(c *fiber.Ctx) error {
	var in dto.AdjustOrderItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	in.OrderItemID = c.Params("id")
	breakdown, err := h.adjuster.Adjust(c.Context(), in)
	if err != nil {
		logFailure(h.log, err).Err(err).Str("order_item_id", in.OrderItemID).Msg("ajustar línea de pedido")
		return respondError(c, err)
	}
	return c.JSON(breakdown)
}

// AdjustItems lote de mutaciones en UNA transacción: si cualquier línea
// falla, el lote completo se revierte.
func (h *OrderHandler) AdjustItems(c *fiber.Ctx) error {
	var batch dto.AdjustOrderItemsBatch
	if err := batch.UnmarshalJSON(c.Body()); err != nil || len(batch.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	results, err := h.adjuster.AdjustBulk(c.Context(), batch.Items)
	if err != nil {
		logFailure(h.log, err).Err(err).Int("lines", len(batch.Items)).Msg("ajustar lote de líneas")
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":   len(results),
		"results": results,
	})
}
