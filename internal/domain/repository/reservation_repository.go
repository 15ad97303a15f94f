package repository

import (
	"context"

	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
)

// ReservationRepository puerto de persistencia de reservas y sus líneas.
type ReservationRepository interface {
	Create(ctx context.Context, r *entity.Reservation) error
	CreateItem(ctx context.Context, item *entity.ReservationItem) error
	// GetByID carga la reserva con sus líneas; domain.ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*entity.Reservation, error)
	// Update persiste is_active, comment y updated_at.
	Update(ctx context.Context, r *entity.Reservation) error
}
