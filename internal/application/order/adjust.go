package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pedidos-api/internal/application/dto"
	"github.com/jhoicas/Pedidos-api/internal/application/ports"
	"github.com/jhoicas/Pedidos-api/internal/application/stock"
	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/jhoicas/Pedidos-api/pkg/logger"
)

// Precisión monetaria de los ajustes (2 decimales).
const moneyScale = 2

// Adjuster aplica mutaciones de fulfillment sobre líneas de pedido: calcula
// el delta de stock que implica cada cambio, lo aplica al ledger, actualiza
// la línea y recalcula los agregados monetarios del pedido. Variante única y
// por lote con semántica idéntica; el lote corre entero en una transacción.
type Adjuster struct {
	txRunner  ports.TxRunner
	metrics   ports.Recorder
	events    ports.EventPublisher
	snapshots ports.StockSnapshots
	log       *logger.Logger
}

// NewAdjuster construye el caso de uso. events y snapshots pueden ser nil.
func NewAdjuster(txRunner ports.TxRunner, metrics ports.Recorder, events ports.EventPublisher, snapshots ports.StockSnapshots, log *logger.Logger) *Adjuster {
	return &Adjuster{txRunner: txRunner, metrics: metrics, events: events, snapshots: snapshots, log: log}
}

// Adjust aplica una mutación a una sola línea.
func (uc *Adjuster) Adjust(ctx context.Context, in dto.AdjustOrderItemRequest) (*dto.AdjustmentBreakdown, error) {
	results, err := uc.AdjustBulk(ctx, []dto.AdjustOrderItemRequest{in})
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// AdjustBulk aplica las mutaciones del lote secuencialmente dentro de UNA
// transacción: si cualquier línea falla (no existe, viola el invariante de
// contadores), se revierte el lote completo incluidos los ajustes de stock
// ya calculados.
func (uc *Adjuster) AdjustBulk(ctx context.Context, items []dto.AdjustOrderItemRequest) ([]dto.AdjustmentBreakdown, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("lote vacío: %w", domain.ErrInvalidInput)
	}
	for i := range items {
		if items[i].OrderItemID == "" {
			return nil, fmt.Errorf("elemento %d sin order_item_id: %w", i, domain.ErrInvalidInput)
		}
	}

	var out []dto.AdjustmentBreakdown
	var touched []*entity.Stock
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		ledger := stock.NewLedger(r.Stock, uc.metrics, nil)
		acc := make([]dto.AdjustmentBreakdown, 0, len(items))
		touched = touched[:0]
		for _, in := range items {
			breakdown, st, err := uc.applyLine(ctx, r, ledger, in)
			if err != nil {
				return err
			}
			if st != nil {
				touched = append(touched, st)
			}
			acc = append(acc, *breakdown)
		}
		out = acc
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

	for _, b := range out {
		if uc.events != nil {
			uc.events.Publish(ctx, ports.EventOrderItemAdjusted, b)
		}
		uc.log.Info().
			Str("order_item_id", b.OrderItemID).
			Int64("stock_delta", b.StockDelta).
			Msg("línea de pedido ajustada")
	}
	return out, nil
}

// applyLine paso puro por línea: carga la línea, resuelve los valores nuevos,
// valida el invariante de contadores, aplica el delta de stock, persiste la
// línea y recalcula los agregados del pedido. Devuelve el desglose acumulable
// y la fila de stock resultante (nil si el ajuste de stock no aplicó).
func (uc *Adjuster) applyLine(ctx context.Context, r ports.Repos, ledger *stock.Ledger, in dto.AdjustOrderItemRequest) (*dto.AdjustmentBreakdown, *entity.Stock, error) {
	item, err := r.Orders.GetItem(ctx, in.OrderItemID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolver línea %s: %w", in.OrderItemID, err)
	}

	oldShipped, oldRefunded, oldCanceled := item.QteShipped, item.QteRefunded, item.QteCanceled
	newShipped := coalesce(in.QteShipped, oldShipped)
	newRefunded := coalesce(in.QteRefunded, oldRefunded)
	newCanceled := coalesce(in.QteCanceled, oldCanceled)
	price := item.DiscountedPrice
	if in.DiscountedPrice != nil {
		price = in.DiscountedPrice.Round(moneyScale)
	}

	// Invariante servidor: contadores no negativos y su suma acotada por lo
	// ordenado. Se rechaza antes de cualquier escritura.
	if newShipped < 0 || newRefunded < 0 || newCanceled < 0 {
		return nil, nil, fmt.Errorf("línea %s: contador negativo: %w", item.ID, domain.ErrInvalidInput)
	}
	if newShipped+newRefunded+newCanceled > item.QteOrdered {
		return nil, nil, fmt.Errorf("línea %s: enviados+devueltos+cancelados (%d) excede lo ordenado (%d): %w",
			item.ID, newShipped+newRefunded+newCanceled, item.QteOrdered, domain.ErrInvalidInput)
	}

	// Enviar consume stock; devolución y cancelación lo regresan.
	delta := -(newShipped - oldShipped) + (newRefunded - oldRefunded) + (newCanceled - oldCanceled)
	var st *entity.Stock
	if delta != 0 && item.SourceID != "" && item.PartnerID != "" {
		st, err = uc.adjustStock(ctx, r, ledger, item, delta)
		if err != nil {
			return nil, nil, err
		}
	}

	item.QteShipped = newShipped
	item.QteRefunded = newRefunded
	item.QteCanceled = newCanceled
	item.DiscountedPrice = price
	if err := r.Orders.UpdateItem(ctx, item); err != nil {
		return nil, nil, err
	}

	shipped, refunded, canceled, err := recomputeAggregates(ctx, r, item.OrderID)
	if err != nil {
		return nil, nil, err
	}
	if err := r.Orders.UpdateAggregates(ctx, item.OrderID, shipped, refunded, canceled); err != nil {
		return nil, nil, err
	}

	return &dto.AdjustmentBreakdown{
		OrderItemID:    item.ID,
		OrderID:        item.OrderID,
		StockDelta:     delta,
		PriceUsed:      price,
		AmountShipped:  shipped,
		AmountRefunded: refunded,
		AmountCanceled: canceled,
		OldShipped:     oldShipped,
		NewShipped:     newShipped,
		OldRefunded:    oldRefunded,
		NewRefunded:    newRefunded,
		OldCanceled:    oldCanceled,
		NewCanceled:    newCanceled,
	}, st, nil
}

// adjustStock resuelve la fila de stock vía sku-partner y aplica el delta.
// Una fila inexistente no es error: la mutación aplica igual sobre la línea
// (y se devuelve nil para que no se refresque ningún snapshot).
func (uc *Adjuster) adjustStock(ctx context.Context, r ports.Repos, ledger *stock.Ledger, item *entity.OrderItem, delta int64) (*entity.Stock, error) {
	sp, err := r.SkuPartners.GetByProductAndPartner(ctx, item.ProductID, item.PartnerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Debug().Str("order_item_id", item.ID).Msg("sin sku-partner, ajuste de stock omitido")
			return nil, nil
		}
		return nil, err
	}
	st, err := ledger.Adjust(ctx, sp.ID, item.SourceID, delta)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Debug().Str("order_item_id", item.ID).Msg("sin fila de stock, ajuste omitido")
			return nil, nil
		}
		return nil, err
	}
	return st, nil
}

// recomputeAggregates recalcula los tres agregados sumando qty × precio con
// descuento sobre TODAS las líneas del pedido, no solo la editada.
func recomputeAggregates(ctx context.Context, r ports.Repos, orderID string) (shipped, refunded, canceled decimal.Decimal, err error) {
	lines, err := r.Orders.ListItems(ctx, orderID)
	if err != nil {
		return shipped, refunded, canceled, err
	}
	for _, line := range lines {
		shipped = shipped.Add(line.DiscountedPrice.Mul(decimal.NewFromInt(line.QteShipped)))
		refunded = refunded.Add(line.DiscountedPrice.Mul(decimal.NewFromInt(line.QteRefunded)))
		canceled = canceled.Add(line.DiscountedPrice.Mul(decimal.NewFromInt(line.QteCanceled)))
	}
	return shipped, refunded, canceled, nil
}

func coalesce(v *int64, current int64) int64 {
	if v != nil {
		return *v
	}
	return current
}
