package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reservation pre-pedido tentativo de un cliente. Retiene stock vendible
// (sealable) desde su creación y puede activarse una sola vez en un pedido.
type Reservation struct {
	ID              string
	CustomerID      string
	PaymentMethodID string
	AmountTTC       decimal.Decimal // total con impuestos incluidos
	AmountOrdered   decimal.Decimal
	ShippingAmount  decimal.Decimal
	Weight          decimal.Decimal
	IsActive        bool
	Comment         string
	Items           []*ReservationItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
