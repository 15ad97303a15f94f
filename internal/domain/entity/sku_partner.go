package entity

// SkuPartner asocia un producto y un partner con su SKU.
// Es la llave de cruce para ubicar filas de stock.
type SkuPartner struct {
	ID         string
	ProductID  string
	PartnerID  string
	SkuProduct string
}
