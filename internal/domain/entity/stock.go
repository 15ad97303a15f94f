package entity

import "time"

// Stock existencia de una combinación sku-partner + origen.
// Una sola fila por (SkuPartnerID, SourceID).
type Stock struct {
	SkuPartnerID  string
	SourceID      string
	StockQuantity int64 // existencia física; se descuenta al crear pedidos y se reajusta en el fulfillment
	Sealable      int64 // disponible para prometer a nuevas reservas
	UpdatedAt     time.Time
}
