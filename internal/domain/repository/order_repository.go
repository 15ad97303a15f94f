package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
)

// OrderRepository puerto de persistencia de pedidos y sus líneas.
type OrderRepository interface {
	Create(ctx context.Context, o *entity.Order) error
	CreateItem(ctx context.Context, item *entity.OrderItem) error
	// GetByID carga el pedido sin líneas; domain.ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// GetItem carga una línea por ID; domain.ErrNotFound si no existe.
	GetItem(ctx context.Context, id string) (*entity.OrderItem, error)
	ListItems(ctx context.Context, orderID string) ([]*entity.OrderItem, error)
	// UpdateItem persiste contadores, precio con descuento y fecha de entrega.
	UpdateItem(ctx context.Context, item *entity.OrderItem) error
	// UpdateAggregates sobrescribe los tres agregados de fulfillment del pedido.
	UpdateAggregates(ctx context.Context, orderID string, shipped, refunded, canceled decimal.Decimal) error
}

// StateRepository tabla de referencia de estados; creación perezosa.
type StateRepository interface {
	GetOrCreate(ctx context.Context, name string) (*entity.State, error)
}

// StatusRepository tabla de referencia de sub-estados, únicos por (name, state_id).
type StatusRepository interface {
	GetOrCreate(ctx context.Context, name, stateID string) (*entity.Status, error)
}
