package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/jhoicas/Pedidos-api/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo implementación de ReservationRepository (usable con pool o tx).
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

// Create persiste la cabecera de la reserva.
func (r *ReservationRepo) Create(ctx context.Context, res *entity.Reservation) error {
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	query := `
		INSERT INTO reservations (id, customer_id, payment_method_id, amount_ttc, amount_ordered,
			shipping_amount, weight, is_active, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		res.ID, res.CustomerID, res.PaymentMethodID, res.AmountTTC, res.AmountOrdered,
		res.ShippingAmount, res.Weight, res.IsActive, res.Comment, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de la reserva.
func (r *ReservationRepo) CreateItem(ctx context.Context, item *entity.ReservationItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO reservation_items (id, reservation_id, product_id, partner_id, source_id, sku,
			qte_reserved, price, discounted_price, weight, delivery_date, tax_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.ReservationID, item.ProductID, item.PartnerID, item.SourceID, item.Sku,
		item.QteReserved, item.Price, item.DiscountedPrice, item.Weight, item.DeliveryDate, item.TaxID,
	)
	if err != nil {
		return fmt.Errorf("insert reservation item: %w", err)
	}
	return nil
}

// GetByID carga la reserva y sus líneas; domain.ErrNotFound si no existe.
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*entity.Reservation, error) {
	query := `
		SELECT id, customer_id, payment_method_id, amount_ttc, amount_ordered,
			shipping_amount, weight, is_active, comment, created_at, updated_at
		FROM reservations WHERE id = $1`
	var res entity.Reservation
	err := r.q.QueryRow(ctx, query, id).Scan(
		&res.ID, &res.CustomerID, &res.PaymentMethodID, &res.AmountTTC, &res.AmountOrdered,
		&res.ShippingAmount, &res.Weight, &res.IsActive, &res.Comment, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}

	itemsQuery := `
		SELECT id, reservation_id, product_id, partner_id, source_id, sku,
			qte_reserved, price, discounted_price, weight, delivery_date, tax_id
		FROM reservation_items WHERE reservation_id = $1
		ORDER BY id`
	rows, err := r.q.Query(ctx, itemsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("list reservation items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var item entity.ReservationItem
		if err := rows.Scan(
			&item.ID, &item.ReservationID, &item.ProductID, &item.PartnerID, &item.SourceID, &item.Sku,
			&item.QteReserved, &item.Price, &item.DiscountedPrice, &item.Weight, &item.DeliveryDate, &item.TaxID,
		); err != nil {
			return nil, fmt.Errorf("scan reservation item: %w", err)
		}
		res.Items = append(res.Items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservation items: %w", err)
	}
	return &res, nil
}

// Update persiste is_active, comment y updated_at.
func (r *ReservationRepo) Update(ctx context.Context, res *entity.Reservation) error {
	query := `
		UPDATE reservations
		SET is_active = $2, comment = $3, updated_at = $4
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, res.ID, res.IsActive, res.Comment, res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
