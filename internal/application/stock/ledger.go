package stock

import (
	"context"
	"time"

	"github.com/jhoicas/Pedidos-api/internal/application/ports"
	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/jhoicas/Pedidos-api/internal/domain/repository"
)

// Ledger contador autoritativo de stock por (sku_partner, origen).
// Opera sobre el repositorio atado a la transacción del caller, de modo que
// cada ajuste es atómico con las escrituras de pedido que lo acompañan.
// Emite telemetría y snapshots best-effort en cada mutación exitosa.
type Ledger struct {
	repo      repository.StockRepository
	metrics   ports.Recorder
	snapshots ports.StockSnapshots
}

// NewLedger construye el ledger sobre un StockRepository (atado a tx o a pool).
// metrics y snapshots pueden ser nil.
func NewLedger(repo repository.StockRepository, metrics ports.Recorder, snapshots ports.StockSnapshots) *Ledger {
	return &Ledger{repo: repo, metrics: metrics, snapshots: snapshots}
}

// Get lee la fila de stock; domain.ErrNotFound si no existe.
func (l *Ledger) Get(ctx context.Context, skuPartnerID, sourceID string) (*entity.Stock, error) {
	return l.repo.Get(ctx, skuPartnerID, sourceID)
}

// Adjust aplica stock_quantity += delta (delta puede ser negativo).
// domain.ErrNotFound si no hay fila para el par.
func (l *Ledger) Adjust(ctx context.Context, skuPartnerID, sourceID string, delta int64) (*entity.Stock, error) {
	start := time.Now()
	st, err := l.repo.AdjustQuantity(ctx, skuPartnerID, sourceID, delta)
	l.observe(time.Since(start))
	if err != nil {
		l.record("adjust", "error")
		return nil, err
	}
	l.record("adjust", "ok")
	if l.metrics != nil {
		l.metrics.SetStockQuantity(skuPartnerID, sourceID, st.StockQuantity)
	}
	if l.snapshots != nil {
		l.snapshots.Set(ctx, skuPartnerID, sourceID, st.StockQuantity)
	}
	return st, nil
}

// DecrementSealable descuenta la cantidad vendible al reservar.
// domain.ErrInsufficientStock si sealable < qty.
func (l *Ledger) DecrementSealable(ctx context.Context, skuPartnerID, sourceID string, qty int64) error {
	if err := l.repo.DecrementSealable(ctx, skuPartnerID, sourceID, qty); err != nil {
		l.record("decrement_sealable", "error")
		return err
	}
	l.record("decrement_sealable", "ok")
	return nil
}

func (l *Ledger) record(operation, result string) {
	if l.metrics != nil {
		l.metrics.IncOperation(operation, result)
	}
}

func (l *Ledger) observe(d time.Duration) {
	if l.metrics != nil {
		l.metrics.ObserveStockUpdate(d)
	}
}
