package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// AdjustOrderItemRequest mutación parcial de una línea de pedido.
// Los campos ausentes se dejan como están.
type AdjustOrderItemRequest struct {
	OrderItemID     string           `json:"order_item_id"`
	QteShipped      *int64           `json:"qte_shipped,omitempty"`
	QteRefunded     *int64           `json:"qte_refunded,omitempty"`
	QteCanceled     *int64           `json:"qte_canceled,omitempty"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price,omitempty"`
}

// AdjustOrderItemsBatch acepta una mutación única o un arreglo.
// El lote completo corre en una sola transacción (todo o nada).
type AdjustOrderItemsBatch struct {
	Items    []AdjustOrderItemRequest
	WasArray bool
}

// UnmarshalJSON intenta primero el arreglo y luego el objeto único.
func (b *AdjustOrderItemsBatch) UnmarshalJSON(data []byte) error {
	var many []AdjustOrderItemRequest
	if err := json.Unmarshal(data, &many); err == nil {
		b.Items = many
		b.WasArray = true
		return nil
	}
	var one AdjustOrderItemRequest
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	b.Items = []AdjustOrderItemRequest{one}
	b.WasArray = false
	return nil
}

// AdjustmentBreakdown desglose de un ajuste de fulfillment aplicado:
// montos resultantes, delta de stock con signo, precio usado y valores
// viejo/nuevo de cada contador.
type AdjustmentBreakdown struct {
	OrderItemID    string          `json:"order_item_id"`
	OrderID        string          `json:"order_id"`
	StockDelta     int64           `json:"stock_delta"`
	PriceUsed      decimal.Decimal `json:"price_used"`
	AmountShipped  decimal.Decimal `json:"amount_shipped"`
	AmountRefunded decimal.Decimal `json:"amount_refunded"`
	AmountCanceled decimal.Decimal `json:"amount_canceled"`
	OldShipped     int64           `json:"old_shipped"`
	NewShipped     int64           `json:"new_shipped"`
	OldRefunded    int64           `json:"old_refunded"`
	NewRefunded    int64           `json:"new_refunded"`
	OldCanceled    int64           `json:"old_canceled"`
	NewCanceled    int64           `json:"new_canceled"`
}
