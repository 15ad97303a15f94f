package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem línea de pedido con sus contadores de fulfillment.
// Invariante tras cada mutación: QteShipped + QteRefunded + QteCanceled <= QteOrdered,
// y los cuatro contadores no negativos.
type OrderItem struct {
	ID              string
	OrderID         string
	ProductID       string
	SourceID        string
	PartnerID       string
	Sku             string
	DiscountedPrice decimal.Decimal
	Weight          decimal.Decimal
	QteOrdered      int64 // fijo desde la creación
	QteShipped      int64
	QteRefunded     int64
	QteCanceled     int64
	DeliveryDate    *time.Time
}

// Fulfilled suma de los contadores de envío, devolución y cancelación.
func (i *OrderItem) Fulfilled() int64 {
	return i.QteShipped + i.QteRefunded + i.QteCanceled
}
