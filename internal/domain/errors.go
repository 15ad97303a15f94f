package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidTransition = errors.New("transición de estado inválida")
)

// Códigos de error de negocio sobre stock (creación directa de pedidos).
const (
	CodeStockNotFound     = "STOCK_NOT_FOUND"
	CodeStockInsufficient = "STOCK_INSUFFICIENT"
)

// StockError error de negocio sobre una fila de stock: fila inexistente o
// cantidad disponible menor a la requerida. Lleva las cantidades para que el
// caller pueda mostrarlas al usuario.
type StockError struct {
	Code         string
	SkuPartnerID string
	SourceID     string
	Available    int64
	Required     int64
}

func (e *StockError) Error() string {
	if e.Code == CodeStockInsufficient {
		return fmt.Sprintf("%s: sku_partner=%s source=%s disponible=%d requerido=%d",
			e.Code, e.SkuPartnerID, e.SourceID, e.Available, e.Required)
	}
	return fmt.Sprintf("%s: sku_partner=%s source=%s", e.Code, e.SkuPartnerID, e.SourceID)
}

// Is permite errors.Is contra los sentinelas según el código.
func (e *StockError) Is(target error) bool {
	switch e.Code {
	case CodeStockNotFound:
		return target == ErrNotFound
	case CodeStockInsufficient:
		return target == ErrInsufficientStock
	}
	return false
}

// IsBusiness distingue errores de negocio (mapeados a 4xx) de fallas internas (5xx).
func IsBusiness(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrInvalidTransition)
}
