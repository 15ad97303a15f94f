package repository

import (
	"context"

	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
)

// CustomerRepository solo lectura: los clientes los gestiona otro módulo.
type CustomerRepository interface {
	// GetByID devuelve domain.ErrNotFound si el cliente no existe.
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
}

// PaymentMethodRepository solo lectura.
type PaymentMethodRepository interface {
	GetByID(ctx context.Context, id string) (*entity.PaymentMethod, error)
}
