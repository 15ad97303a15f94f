package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReservationItem línea de una reserva. Inmutable tras su creación, salvo
// la fecha de entrega que puede resolverse por partner al activar.
type ReservationItem struct {
	ID              string
	ReservationID   string
	ProductID       string
	PartnerID       string
	SourceID        string
	Sku             string
	QteReserved     int64
	Price           decimal.Decimal
	DiscountedPrice decimal.Decimal
	Weight          decimal.Decimal
	DeliveryDate    *time.Time
	TaxID           *string
}
