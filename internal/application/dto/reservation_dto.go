package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ReservationLineRequest línea solicitada al crear una reserva.
type ReservationLineRequest struct {
	ProductID       string           `json:"product_id"`
	PartnerID       string           `json:"partner_id"`
	SourceID        string           `json:"source_id"`
	Sku             string           `json:"sku"`
	QteReserved     int64            `json:"qte_reserved"`
	Price           decimal.Decimal  `json:"price"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price,omitempty"`
	Weight          decimal.Decimal  `json:"weight"`
	DeliveryDate    *time.Time       `json:"delivery_date,omitempty"`
	TaxID           *string          `json:"tax_id,omitempty"`
}

// CreateReservationRequest payload de creación de una reserva.
type CreateReservationRequest struct {
	CustomerID      string                   `json:"customer_id"`
	PaymentMethodID string                   `json:"payment_method_id"`
	ShippingAmount  decimal.Decimal          `json:"shipping_amount"`
	Comment         string                   `json:"comment,omitempty"`
	Items           []ReservationLineRequest `json:"items"`
}

// CreateReservationBatch acepta un payload único o un arreglo de reservas.
type CreateReservationBatch struct {
	Reservations []CreateReservationRequest
	WasArray     bool
}

// UnmarshalJSON intenta primero el arreglo y luego el objeto único.
func (b *CreateReservationBatch) UnmarshalJSON(data []byte) error {
	var many []CreateReservationRequest
	if err := json.Unmarshal(data, &many); err == nil {
		b.Reservations = many
		b.WasArray = true
		return nil
	}
	var one CreateReservationRequest
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	b.Reservations = []CreateReservationRequest{one}
	b.WasArray = false
	return nil
}

// UpdateReservationRequest activación o actualización plana de una reserva.
// DeliveryDates mapea partner_id → fecha de entrega a aplicar en la activación.
type UpdateReservationRequest struct {
	IsActive      *bool                `json:"is_active,omitempty"`
	Comment       *string              `json:"comment,omitempty"`
	DeliveryDates map[string]time.Time `json:"delivery_dates,omitempty"`
}

// BatchItemResult resultado por elemento de un lote de reservas.
// Cada reserva es una transacción independiente: una falla no revierte
// las reservas anteriores del lote.
type BatchItemResult struct {
	ReservationID string `json:"reservation_id,omitempty"`
	Error         string `json:"error,omitempty"`
	ErrorCode     string `json:"error_code,omitempty"`
}
