package order

import (
	"context"

	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/jhoicas/Pedidos-api/internal/domain/repository"
)

// Query lectura de pedidos.
type Query struct {
	repo repository.OrderRepository
}

// NewQuery construye la lectura sobre un OrderRepository (atado a pool).
func NewQuery(repo repository.OrderRepository) *Query {
	return &Query{repo: repo}
}

// Get carga el pedido con sus líneas; domain.ErrNotFound si no existe.
func (q *Query) Get(ctx context.Context, id string) (*entity.Order, error) {
	o, err := q.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := q.repo.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}
