package ports

import (
	"context"
	"time"

	"github.com/jhoicas/Pedidos-api/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción de BD.
type Repos struct {
	Customers      repository.CustomerRepository
	PaymentMethods repository.PaymentMethodRepository
	SkuPartners    repository.SkuPartnerRepository
	Stock          repository.StockRepository
	Reservations   repository.ReservationRepository
	Orders         repository.OrderRepository
	States         repository.StateRepository
	Statuses       repository.StatusRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Cualquier error de fn hace rollback de todo lo escrito.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// Recorder sumidero de telemetría del ledger de stock.
type Recorder interface {
	// IncOperation incrementa el contador etiquetado {operation, result}.
	IncOperation(operation, result string)
	// SetStockQuantity fija el gauge con la existencia física resultante.
	SetStockQuantity(skuPartnerID, sourceID string, qty int64)
	// ObserveStockUpdate registra la duración de la sección crítica de ajuste.
	ObserveStockUpdate(d time.Duration)
}

// EventPublisher publica eventos de dominio tras el commit (best-effort:
// un fallo de publicación nunca falla la operación).
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any)
}

// StockSnapshots caché best-effort de existencias para lecturas baratas.
type StockSnapshots interface {
	Set(ctx context.Context, skuPartnerID, sourceID string, qty int64)
	// Get devuelve (qty, true) si hay snapshot vigente.
	Get(ctx context.Context, skuPartnerID, sourceID string) (int64, bool)
}

// Tipos de evento publicados por los casos de uso.
const (
	EventReservationCreated   = "reservation.created"
	EventReservationActivated = "reservation.activated"
	EventOrderCreated         = "order.created"
	EventOrderItemAdjusted    = "order_item.adjusted"
)
