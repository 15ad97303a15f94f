package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order pedido confirmado. Se crea una sola vez (activación de reserva o
// creación directa) y después solo mutan sus agregados y asociaciones.
type Order struct {
	ID             string
	ReservationID  *string // referencia a la reserva de origen, si existe
	StateID        string
	StatusID       string
	AmountTTC      decimal.Decimal
	AmountOrdered  decimal.Decimal
	AmountShipped  decimal.Decimal
	AmountRefunded decimal.Decimal
	AmountCanceled decimal.Decimal
	ShippingAmount decimal.Decimal
	Weight         decimal.Decimal
	Items          []*OrderItem
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
