package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/jhoicas/Pedidos-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository (usable con pool o tx).
// Las líneas pertenecen en exclusiva a su pedido: solo se borran con él
// (ON DELETE CASCADE en el esquema).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste la cabecera del pedido.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	query := `
		INSERT INTO orders (id, reservation_id, state_id, status_id, amount_ttc, amount_ordered,
			amount_shipped, amount_refunded, amount_canceled, shipping_amount, weight, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.ReservationID, o.StateID, o.StatusID, o.AmountTTC, o.AmountOrdered,
		o.AmountShipped, o.AmountRefunded, o.AmountCanceled, o.ShippingAmount, o.Weight,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// CreateItem persiste una línea del pedido.
func (r *OrderRepo) CreateItem(ctx context.Context, item *entity.OrderItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO order_items (id, order_id, product_id, source_id, partner_id, sku,
			discounted_price, weight, qte_ordered, qte_shipped, qte_refunded, qte_canceled, delivery_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.OrderID, item.ProductID, item.SourceID, item.PartnerID, item.Sku,
		item.DiscountedPrice, item.Weight, item.QteOrdered, item.QteShipped, item.QteRefunded,
		item.QteCanceled, item.DeliveryDate,
	)
	if err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

// GetByID carga la cabecera del pedido; domain.ErrNotFound si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	query := `
		SELECT id, reservation_id, state_id, status_id, amount_ttc, amount_ordered,
			amount_shipped, amount_refunded, amount_canceled, shipping_amount, weight, created_at, updated_at
		FROM orders WHERE id = $1`
	var o entity.Order
	err := r.q.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.ReservationID, &o.StateID, &o.StatusID, &o.AmountTTC, &o.AmountOrdered,
		&o.AmountShipped, &o.AmountRefunded, &o.AmountCanceled, &o.ShippingAmount, &o.Weight,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

// GetItem carga una línea por ID; domain.ErrNotFound si no existe.
func (r *OrderRepo) GetItem(ctx context.Context, id string) (*entity.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, source_id, partner_id, sku,
			discounted_price, weight, qte_ordered, qte_shipped, qte_refunded, qte_canceled, delivery_date
		FROM order_items WHERE id = $1`
	var item entity.OrderItem
	err := r.q.QueryRow(ctx, query, id).Scan(
		&item.ID, &item.OrderID, &item.ProductID, &item.SourceID, &item.PartnerID, &item.Sku,
		&item.DiscountedPrice, &item.Weight, &item.QteOrdered, &item.QteShipped, &item.QteRefunded,
		&item.QteCanceled, &item.DeliveryDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get order item: %w", err)
	}
	return &item, nil
}

// ListItems lista todas las líneas del pedido.
func (r *OrderRepo) ListItems(ctx context.Context, orderID string) ([]*entity.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, source_id, partner_id, sku,
			discounted_price, weight, qte_ordered, qte_shipped, qte_refunded, qte_canceled, delivery_date
		FROM order_items WHERE order_id = $1
		ORDER BY id`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []*entity.OrderItem
	for rows.Next() {
		var item entity.OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.SourceID, &item.PartnerID, &item.Sku,
			&item.DiscountedPrice, &item.Weight, &item.QteOrdered, &item.QteShipped, &item.QteRefunded,
			&item.QteCanceled, &item.DeliveryDate,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}

// UpdateItem persiste contadores, precio con descuento y fecha de entrega.
func (r *OrderRepo) UpdateItem(ctx context.Context, item *entity.OrderItem) error {
	query := `
		UPDATE order_items
		SET qte_shipped = $2, qte_refunded = $3, qte_canceled = $4,
			discounted_price = $5, delivery_date = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		item.ID, item.QteShipped, item.QteRefunded, item.QteCanceled,
		item.DiscountedPrice, item.DeliveryDate,
	)
	if err != nil {
		return fmt.Errorf("update order item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateAggregates sobrescribe los tres agregados de fulfillment del pedido.
func (r *OrderRepo) UpdateAggregates(ctx context.Context, orderID string, shipped, refunded, canceled decimal.Decimal) error {
	query := `
		UPDATE orders
		SET amount_shipped = $2, amount_refunded = $3, amount_canceled = $4, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, orderID, shipped, refunded, canceled)
	if err != nil {
		return fmt.Errorf("update order aggregates: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
