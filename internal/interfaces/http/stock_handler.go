package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Pedidos-api/internal/application/dto"
	"github.com/jhoicas/Pedidos-api/internal/application/stock"
	"github.com/jhoicas/Pedidos-api/pkg/logger"
)

// StockHandler lectura de existencias.
type StockHandler struct {
	query *stock.Query
	log   *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(query *stock.Query, log *logger.Logger) *StockHandler {
	return &StockHandler{query: query, log: log}
}

// Get devuelve la existencia física del par (sku_partner_id, source_id).
// Lee primero la caché de snapshots y cae a la BD en un miss.
func (h *StockHandler) Get(c *fiber.Ctx) error {
	skuPartnerID := c.Query("sku_partner_id")
	sourceID := c.Query("source_id")
	if skuPartnerID == "" || sourceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: "sku_partner_id y source_id son obligatorios",
		})
	}
	st, err := h.query.Get(c.Context(), skuPartnerID, sourceID)
	if err != nil {
		logFailure(h.log, err).Err(err).Str("sku_partner_id", skuPartnerID).Msg("consultar stock")
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"sku_partner_id": st.SkuPartnerID,
		"source_id":      st.SourceID,
		"stock_quantity": st.StockQuantity,
	})
}
