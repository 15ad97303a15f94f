package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/jhoicas/Pedidos-api/internal/domain/repository"
)

var _ repository.SkuPartnerRepository = (*SkuPartnerRepo)(nil)

// SkuPartnerRepo implementación de SkuPartnerRepository (usable con pool o tx).
type SkuPartnerRepo struct {
	q Querier
}

// NewSkuPartnerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSkuPartnerRepository(q Querier) *SkuPartnerRepo {
	return &SkuPartnerRepo{q: q}
}

// GetByProductAndPartner resuelve la asociación por producto y partner.
func (r *SkuPartnerRepo) GetByProductAndPartner(ctx context.Context, productID, partnerID string) (*entity.SkuPartner, error) {
	query := `
		SELECT id, product_id, partner_id, sku_product
		FROM sku_partners WHERE product_id = $1 AND partner_id = $2`
	return r.scanOne(ctx, query, productID, partnerID)
}

// GetBySkuAndProduct resuelve la asociación por SKU y producto
// (llave usada por la creación directa de pedidos).
func (r *SkuPartnerRepo) GetBySkuAndProduct(ctx context.Context, sku, productID string) (*entity.SkuPartner, error) {
	query := `
		SELECT id, product_id, partner_id, sku_product
		FROM sku_partners WHERE sku_product = $1 AND product_id = $2`
	return r.scanOne(ctx, query, sku, productID)
}

func (r *SkuPartnerRepo) scanOne(ctx context.Context, query string, args ...any) (*entity.SkuPartner, error) {
	var sp entity.SkuPartner
	err := r.q.QueryRow(ctx, query, args...).Scan(&sp.ID, &sp.ProductID, &sp.PartnerID, &sp.SkuProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get sku_partner: %w", err)
	}
	return &sp, nil
}
