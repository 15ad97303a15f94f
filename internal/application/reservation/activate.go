package reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Pedidos-api/internal/application/dto"
	"github.com/jhoicas/Pedidos-api/internal/application/ports"
	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/jhoicas/Pedidos-api/pkg/logger"
)

// Precisión de los agregados monetarios del pedido (3 decimales).
const orderScale = 3

// UpdateResult resultado de la activación o actualización de una reserva.
// Order es nil cuando no hubo transición de activación.
type UpdateResult struct {
	Reservation *entity.Reservation
	Order       *entity.Order
}

// Activator convierte una reserva activada en un pedido: resuelve el par
// (State, Status) inicial, fotografía cada línea en una línea de pedido y
// marca la reserva como activa, todo en una sola transacción.
type Activator struct {
	txRunner ports.TxRunner
	events   ports.EventPublisher
	log      *logger.Logger
}

// NewActivator construye el caso de uso. events puede ser nil.
func NewActivator(txRunner ports.TxRunner, events ports.EventPublisher, log *logger.Logger) *Activator {
	return &Activator{txRunner: txRunner, events: events, log: log}
}

// Update aplica una de tres ramas sobre la reserva:
//   - activa → desactivar: rechazado con domain.ErrInvalidTransition
//     (la desactivación no es una operación soportada);
//   - inactiva → activar: transición de activación, crea el pedido;
//   - cualquier otra combinación: actualización plana de escalares (comment).
//
// Las tres ramas corren en una transacción; cualquier falla deja la reserva
// y el pedido parcialmente creado sin modificar.
func (uc *Activator) Update(ctx context.Context, reservationID string, in dto.UpdateReservationRequest) (*UpdateResult, error) {
	if reservationID == "" {
		return nil, fmt.Errorf("reservation_id obligatorio: %w", domain.ErrInvalidInput)
	}

	var out UpdateResult
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		res, err := r.Reservations.GetByID(ctx, reservationID)
		if err != nil {
			return fmt.Errorf("resolver reserva %s: %w", reservationID, err)
		}

		if in.IsActive != nil && !*in.IsActive && res.IsActive {
			return fmt.Errorf("no se puede desactivar una reserva activa: %w", domain.ErrInvalidTransition)
		}

		now := time.Now()
		if in.IsActive != nil && *in.IsActive && !res.IsActive {
			order, err := uc.activate(ctx, r, res, in, now)
			if err != nil {
				return err
			}
			out.Order = order
		} else if in.Comment != nil {
			res.Comment = *in.Comment
			res.UpdatedAt = now
			if err := r.Reservations.Update(ctx, res); err != nil {
				return err
			}
		}
		out.Reservation = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Order != nil {
		if uc.events != nil {
			uc.events.Publish(ctx, ports.EventReservationActivated, map[string]any{
				"reservation_id": out.Reservation.ID,
				"order_id":       out.Order.ID,
			})
		}
		uc.log.Info().
			Str("reservation_id", out.Reservation.ID).
			Str("order_id", out.Order.ID).
			Msg("reserva activada")
	}
	return &out, nil
}

// activate ejecuta la transición de activación dentro de la tx del caller:
// par (State "new", Status "open") perezoso, snapshot de líneas, pedido con
// los totales de la reserva redondeados a 3 decimales y flip de is_active.
func (uc *Activator) activate(ctx context.Context, r ports.Repos, res *entity.Reservation, in dto.UpdateReservationRequest, now time.Time) (*entity.Order, error) {
	state, err := r.States.GetOrCreate(ctx, entity.StateNew)
	if err != nil {
		return nil, err
	}
	status, err := r.Statuses.GetOrCreate(ctx, entity.StatusOpen, state.ID)
	if err != nil {
		return nil, err
	}

	reservationID := res.ID
	order := &entity.Order{
		ID:             uuid.New().String(),
		ReservationID:  &reservationID,
		StateID:        state.ID,
		StatusID:       status.ID,
		AmountTTC:      res.AmountTTC.Round(orderScale),
		AmountOrdered:  res.AmountOrdered.Round(orderScale),
		ShippingAmount: res.ShippingAmount.Round(orderScale),
		Weight:         res.Weight.Round(orderScale),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := r.Orders.Create(ctx, order); err != nil {
		return nil, err
	}

	for _, item := range res.Items {
		orderItem := &entity.OrderItem{
			ID:              uuid.New().String(),
			OrderID:         order.ID,
			ProductID:       item.ProductID,
			SourceID:        item.SourceID,
			PartnerID:       item.PartnerID,
			Sku:             item.Sku,
			DiscountedPrice: item.DiscountedPrice,
			Weight:          item.Weight,
			QteOrdered:      item.QteReserved,
			DeliveryDate:    resolveDeliveryDate(item, in.DeliveryDates),
		}
		if err := r.Orders.CreateItem(ctx, orderItem); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, orderItem)
	}

	res.IsActive = true
	if in.Comment != nil {
		res.Comment = *in.Comment
	}
	res.UpdatedAt = now
	if err := r.Reservations.Update(ctx, res); err != nil {
		return nil, err
	}
	return order, nil
}

// resolveDeliveryDate prioridad: override explícito del partner, luego la
// fecha propia de la línea, si no null.
func resolveDeliveryDate(item *entity.ReservationItem, overrides map[string]time.Time) *time.Time {
	if overrides != nil {
		if d, ok := overrides[item.PartnerID]; ok {
			return &d
		}
	}
	return item.DeliveryDate
}
