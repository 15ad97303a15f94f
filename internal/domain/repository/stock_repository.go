package repository

import (
	"context"

	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
)

// StockRepository puerto para consultar/ajustar stock por sku-partner + origen.
// Las mutaciones se usan dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// Get devuelve domain.ErrNotFound si no existe la fila.
	Get(ctx context.Context, skuPartnerID, sourceID string) (*entity.Stock, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) dentro de la tx del caller.
	GetForUpdate(ctx context.Context, skuPartnerID, sourceID string) (*entity.Stock, error)
	// AdjustQuantity aplica stock_quantity += delta de forma atómica y devuelve la fila resultante.
	AdjustQuantity(ctx context.Context, skuPartnerID, sourceID string, delta int64) (*entity.Stock, error)
	// DecrementSealable descuenta sealable si alcanza; domain.ErrInsufficientStock si no.
	DecrementSealable(ctx context.Context, skuPartnerID, sourceID string, qty int64) error
}

// SkuPartnerRepository puerto para resolver la asociación producto+partner → SKU.
type SkuPartnerRepository interface {
	GetByProductAndPartner(ctx context.Context, productID, partnerID string) (*entity.SkuPartner, error)
	GetBySkuAndProduct(ctx context.Context, sku, productID string) (*entity.SkuPartner, error)
}
