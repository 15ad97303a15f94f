package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Pedidos-api/internal/application/ports"
	"github.com/jhoicas/Pedidos-api/internal/application/stock"
	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/jhoicas/Pedidos-api/pkg/logger"
)

// Creator camino alterno de creación de pedidos, directo desde el ID de la
// reserva sin pasar por la activación. Re-valida la existencia física
// (stock_quantity, distinto del sealable) y la descuenta antes de crear el
// pedido y sus líneas, todo en una transacción.
type Creator struct {
	txRunner  ports.TxRunner
	metrics   ports.Recorder
	events    ports.EventPublisher
	snapshots ports.StockSnapshots
	log       *logger.Logger
}

// NewCreator construye el caso de uso. events y snapshots pueden ser nil.
func NewCreator(txRunner ports.TxRunner, metrics ports.Recorder, events ports.EventPublisher, snapshots ports.StockSnapshots, log *logger.Logger) *Creator {
	return &Creator{txRunner: txRunner, metrics: metrics, events: events, snapshots: snapshots, log: log}
}

// CreateFromReservation valida y descuenta stock físico por cada línea con
// origen y crea el pedido con sus líneas. Errores de negocio:
// STOCK_NOT_FOUND si no hay fila de stock, STOCK_INSUFFICIENT (con disponible
// vs requerido) si la existencia no alcanza.
func (uc *Creator) CreateFromReservation(ctx context.Context, reservationID string) (*entity.Order, error) {
	if reservationID == "" {
		return nil, fmt.Errorf("reservation_id obligatorio: %w", domain.ErrInvalidInput)
	}

	var order *entity.Order
	var touched []*entity.Stock
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		res, err := r.Reservations.GetByID(ctx, reservationID)
		if err != nil {
			return fmt.Errorf("resolver reserva %s: %w", reservationID, err)
		}

		ledger := stock.NewLedger(r.Stock, uc.metrics, nil)
		for _, item := range res.Items {
			if item.SourceID == "" {
				continue
			}
			// La llave de cruce aquí es (sku_product = sku de la línea, product_id).
			sp, err := r.SkuPartners.GetBySkuAndProduct(ctx, item.Sku, item.ProductID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return &domain.StockError{Code: domain.CodeStockNotFound, SourceID: item.SourceID}
				}
				return err
			}
			st, err := r.Stock.GetForUpdate(ctx, sp.ID, item.SourceID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return &domain.StockError{Code: domain.CodeStockNotFound, SkuPartnerID: sp.ID, SourceID: item.SourceID}
				}
				return err
			}
			if st.StockQuantity < item.QteReserved {
				return &domain.StockError{
					Code:         domain.CodeStockInsufficient,
					SkuPartnerID: sp.ID,
					SourceID:     item.SourceID,
					Available:    st.StockQuantity,
					Required:     item.QteReserved,
				}
			}
			adjusted, err := ledger.Adjust(ctx, sp.ID, item.SourceID, -item.QteReserved)
			if err != nil {
				return err
			}
			touched = append(touched, adjusted)
		}

		state, err := r.States.GetOrCreate(ctx, entity.StateNew)
		if err != nil {
			return err
		}
		status, err := r.Statuses.GetOrCreate(ctx, entity.StatusOpen, state.ID)
		if err != nil {
			return err
		}

		now := time.Now()
		order = &entity.Order{
			ID:             uuid.New().String(),
			ReservationID:  &res.ID,
			StateID:        state.ID,
			StatusID:       status.ID,
			AmountTTC:      res.AmountTTC,
			AmountOrdered:  res.AmountOrdered,
			ShippingAmount: res.ShippingAmount,
			Weight:         res.Weight,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := r.Orders.Create(ctx, order); err != nil {
			return err
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
				DeliveryDate:    item.DeliveryDate,
			}
			if err := r.Orders.CreateItem(ctx, orderItem); err != nil {
				return err
			}
			order.Items = append(order.Items, orderItem)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// El refresco de la caché va tras el commit: un rollback nunca llega a ella.
	if uc.snapshots != nil {
		for _, st := range touched {
			uc.snapshots.Set(ctx, st.SkuPartnerID, st.SourceID, st.StockQuantity)
		}
	}

	if uc.events != nil {
		uc.events.Publish(ctx, ports.EventOrderCreated, map[string]any{
			"order_id":       order.ID,
			"reservation_id": reservationID,
			"lines":          len(order.Items),
		})
	}
	uc.log.Info().Str("order_id", order.ID).Str("reservation_id", reservationID).Msg("pedido creado desde reserva")
	return order, nil
}
