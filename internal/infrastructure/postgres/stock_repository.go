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

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
// La tabla stock tiene exactamente una fila por (sku_partner_id, source_id).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene la fila de stock del par; domain.ErrNotFound si no existe.
func (r *StockRepo) Get(ctx context.Context, skuPartnerID, sourceID string) (*entity.Stock, error) {
	query := `
		SELECT sku_partner_id, source_id, stock_quantity, sealable, updated_at
		FROM stock WHERE sku_partner_id = $1 AND source_id = $2`
	return r.scanOne(ctx, query, skuPartnerID, sourceID)
}

// GetForUpdate obtiene el stock y bloquea la fila (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, skuPartnerID, sourceID string) (*entity.Stock, error) {
	query := `
		SELECT sku_partner_id, source_id, stock_quantity, sealable, updated_at
		FROM stock WHERE sku_partner_id = $1 AND source_id = $2
		FOR UPDATE`
	return r.scanOne(ctx, query, skuPartnerID, sourceID)
}

// AdjustQuantity incremento/decremento atómico de stock_quantity; devuelve la fila resultante.
func (r *StockRepo) AdjustQuantity(ctx context.Context, skuPartnerID, sourceID string, delta int64) (*entity.Stock, error) {
	query := `
		UPDATE stock
		SET stock_quantity = stock_quantity + $3, updated_at = now()
		WHERE sku_partner_id = $1 AND source_id = $2
		RETURNING sku_partner_id, source_id, stock_quantity, sealable, updated_at`
	var s entity.Stock
	err := r.q.QueryRow(ctx, query, skuPartnerID, sourceID, delta).Scan(
		&s.SkuPartnerID, &s.SourceID, &s.StockQuantity, &s.Sealable, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("adjust stock: %w", err)
	}
	return &s, nil
}

// DecrementSealable descuenta sealable solo si alcanza (update condicional).
// Si no afecta filas, distingue entre fila inexistente y sealable insuficiente.
func (r *StockRepo) DecrementSealable(ctx context.Context, skuPartnerID, sourceID string, qty int64) error {
	query := `
		UPDATE stock
		SET sealable = sealable - $3, updated_at = now()
		WHERE sku_partner_id = $1 AND source_id = $2 AND sealable >= $3`
	tag, err := r.q.Exec(ctx, query, skuPartnerID, sourceID, qty)
	if err != nil {
		return fmt.Errorf("decrement sealable: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	st, err := r.Get(ctx, skuPartnerID, sourceID)
	if err != nil {
		return err
	}
	return &domain.StockError{
		Code:         domain.CodeStockInsufficient,
		SkuPartnerID: skuPartnerID,
		SourceID:     sourceID,
		Available:    st.Sealable,
		Required:     qty,
	}
}

func (r *StockRepo) scanOne(ctx context.Context, query, skuPartnerID, sourceID string) (*entity.Stock, error) {
	var s entity.Stock
	err := r.q.QueryRow(ctx, query, skuPartnerID, sourceID).Scan(
		&s.SkuPartnerID, &s.SourceID, &s.StockQuantity, &s.Sealable, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}
