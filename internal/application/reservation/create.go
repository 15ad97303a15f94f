package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Pedidos-api/internal/application/dto"
	"github.com/jhoicas/Pedidos-api/internal/application/ports"
	"github.com/jhoicas/Pedidos-api/internal/application/stock"
	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/jhoicas/Pedidos-api/pkg/logger"
)

// Precisión monetaria de las reservas (2 decimales).
const moneyScale = 2

// Ledger crea reservas validando cada línea contra el stock vendible
// (sealable) y descontándolo en el momento de la creación.
type Ledger struct {
	txRunner ports.TxRunner
	metrics  ports.Recorder
	events   ports.EventPublisher
	log      *logger.Logger
}

// NewLedger construye el caso de uso. events puede ser nil.
func NewLedger(txRunner ports.TxRunner, metrics ports.Recorder, events ports.EventPublisher, log *logger.Logger) *Ledger {
	return &Ledger{txRunner: txRunner, metrics: metrics, events: events, log: log}
}

// Create valida cliente, medio de pago y stock vendible de cada línea,
// descuenta sealable y persiste la reserva con sus líneas en una transacción.
func (uc *Ledger) Create(ctx context.Context, in dto.CreateReservationRequest) (*entity.Reservation, error) {
	if in.CustomerID == "" || in.PaymentMethodID == "" || len(in.Items) == 0 {
		return nil, fmt.Errorf("customer_id, payment_method_id e items son obligatorios: %w", domain.ErrInvalidInput)
	}
	for i := range in.Items {
		line := &in.Items[i]
		if line.ProductID == "" || line.PartnerID == "" || line.SourceID == "" || line.Sku == "" {
			return nil, fmt.Errorf("línea %d incompleta: %w", i, domain.ErrInvalidInput)
		}
		if line.QteReserved <= 0 {
			return nil, fmt.Errorf("línea %d: qte_reserved debe ser positivo: %w", i, domain.ErrInvalidInput)
		}
	}

	now := time.Now()
	res := buildReservation(in, now)

	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		if _, err := r.Customers.GetByID(ctx, in.CustomerID); err != nil {
			return fmt.Errorf("resolver cliente %s: %w", in.CustomerID, err)
		}
		if _, err := r.PaymentMethods.GetByID(ctx, in.PaymentMethodID); err != nil {
			return fmt.Errorf("resolver medio de pago %s: %w", in.PaymentMethodID, err)
		}

		ledger := stock.NewLedger(r.Stock, uc.metrics, nil)
		for i, line := range in.Items {
			sp, err := r.SkuPartners.GetByProductAndPartner(ctx, line.ProductID, line.PartnerID)
			if err != nil {
				return fmt.Errorf("línea %d: resolver sku-partner: %w", i, err)
			}
			if err := ledger.DecrementSealable(ctx, sp.ID, line.SourceID, line.QteReserved); err != nil {
				return fmt.Errorf("línea %d: %w", i, err)
			}
		}

		if err := r.Reservations.Create(ctx, res); err != nil {
			return err
		}
		for _, item := range res.Items {
			if err := r.Reservations.CreateItem(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.events != nil {
		uc.events.Publish(ctx, ports.EventReservationCreated, map[string]any{
			"reservation_id": res.ID,
			"customer_id":    res.CustomerID,
			"amount_ttc":     res.AmountTTC,
			"lines":          len(res.Items),
		})
	}
	uc.log.Info().Str("reservation_id", res.ID).Int("lines", len(res.Items)).Msg("reserva creada")
	return res, nil
}

// CreateBatch procesa cada reserva del lote como transacción independiente:
// una falla aborta solo esa reserva, las anteriores quedan confirmadas.
func (uc *Ledger) CreateBatch(ctx context.Context, batch dto.CreateReservationBatch) []dto.BatchItemResult {
	results := make([]dto.BatchItemResult, 0, len(batch.Reservations))
	for _, in := range batch.Reservations {
		res, err := uc.Create(ctx, in)
		if err != nil {
			results = append(results, dto.BatchItemResult{
				Error:     err.Error(),
				ErrorCode: batchErrorCode(err),
			})
			continue
		}
		results = append(results, dto.BatchItemResult{ReservationID: res.ID})
	}
	return results
}

func batchErrorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, domain.ErrInvalidInput):
		return "VALIDATION"
	}
	return "INTERNAL"
}

// buildReservation arma la entidad con montos y peso redondeados a 2 decimales.
// El total TTC es ordenado + envío; el precio por unidad ya viene con impuestos.
func buildReservation(in dto.CreateReservationRequest, now time.Time) *entity.Reservation {
	res := &entity.Reservation{
		ID:              uuid.New().String(),
		CustomerID:      in.CustomerID,
		PaymentMethodID: in.PaymentMethodID,
		ShippingAmount:  in.ShippingAmount.Round(moneyScale),
		Comment:         in.Comment,
		IsActive:        false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var ordered, weight decimal.Decimal
	for _, line := range in.Items {
		price := line.Price.Round(moneyScale)
		discounted := price
		if line.DiscountedPrice != nil {
			discounted = line.DiscountedPrice.Round(moneyScale)
		}
		qte := decimal.NewFromInt(line.QteReserved)
		ordered = ordered.Add(discounted.Mul(qte))
		weight = weight.Add(line.Weight.Round(moneyScale).Mul(qte))

		res.Items = append(res.Items, &entity.ReservationItem{
			ID:              uuid.New().String(),
			ReservationID:   res.ID,
			ProductID:       line.ProductID,
			PartnerID:       line.PartnerID,
			SourceID:        line.SourceID,
			Sku:             line.Sku,
			QteReserved:     line.QteReserved,
			Price:           price,
			DiscountedPrice: discounted,
			Weight:          line.Weight.Round(moneyScale),
			DeliveryDate:    line.DeliveryDate,
			TaxID:           line.TaxID,
		})
	}
	res.AmountOrdered = ordered.Round(moneyScale)
	res.AmountTTC = ordered.Add(res.ShippingAmount).Round(moneyScale)
	res.Weight = weight.Round(moneyScale)
	return res
}
