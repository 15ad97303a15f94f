package reservation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Pedidos-api/internal/application/apptest"
	"github.com/jhoicas/Pedidos-api/internal/application/dto"
	"github.com/jhoicas/Pedidos-api/internal/application/ports"
	"github.com/jhoicas/Pedidos-api/internal/application/reservation"
	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/jhoicas/Pedidos-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func boolp(v bool) *bool    { return &v }
func strp(v string) *string { return &v }

// seedInactiveReservation carga una reserva inactiva de dos líneas, una con
// fecha de entrega propia.
func seedInactiveReservation(s *apptest.Store) *entity.Reservation {
	ownDate := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	res := &entity.Reservation{
		ID:              "res-1",
		CustomerID:      testCustomerID,
		PaymentMethodID: testPaymentID,
		AmountOrdered:   dec("50.00"),
		AmountTTC:       dec("53.00"),
		ShippingAmount:  dec("3.00"),
		Weight:          dec("5.00"),
		Comment:         "original",
		Items: []*entity.ReservationItem{
			{
				ID:              "ri-1",
				ReservationID:   "res-1",
				ProductID:       testProductID,
				PartnerID:       testPartnerID,
				SourceID:        testSourceID,
				Sku:             "SKU-1",
				QteReserved:     7,
				Price:           dec("5.00"),
				DiscountedPrice: dec("5.00"),
				DeliveryDate:    &ownDate,
			},
			{
				ID:              "ri-2",
				ReservationID:   "res-1",
				ProductID:       "prod-2",
				PartnerID:       "partner-2",
				SourceID:        testSourceID,
				Sku:             "SKU-2",
				QteReserved:     3,
				Price:           dec("5.00"),
				DiscountedPrice: dec("5.00"),
			},
		},
	}
	s.Reservations[res.ID] = res
	return res
}

func newActivator(s *apptest.Store) (*reservation.Activator, *apptest.PublisherSpy) {
	events := &apptest.PublisherSpy{}
	uc := reservation.NewActivator(apptest.NewTxRunner(s), events, logger.Nop())
	return uc, events
}

// ──────────────────────────────────────────────────────────────────────────────
// Activación
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: activar una reserva inactiva crea el pedido con los totales de la
// reserva, fotografía cada línea con qte_ordered = qte_reserved y contadores
// en cero, y marca la reserva activa.
func TestUpdate_ActivacionCreaPedido(t *testing.T) {
	store := apptest.NewStore()
	seedInactiveReservation(store)
	uc, events := newActivator(store)

	out, err := uc.Update(context.Background(), "res-1", dto.UpdateReservationRequest{
		IsActive: boolp(true),
	})
	require.NoError(t, err)
	require.NotNil(t, out.Order)

	assert.True(t, out.Reservation.IsActive)
	assert.True(t, store.Reservations["res-1"].IsActive)

	o := out.Order
	require.NotNil(t, o.ReservationID)
	assert.Equal(t, "res-1", *o.ReservationID)
	assert.True(t, o.AmountTTC.Equal(dec("53.000")))
	assert.True(t, o.AmountOrdered.Equal(dec("50.000")))
	assert.True(t, o.ShippingAmount.Equal(dec("3.000")))

	require.Len(t, o.Items, 2)
	for _, item := range o.Items {
		assert.Equal(t, int64(0), item.QteShipped)
		assert.Equal(t, int64(0), item.QteRefunded)
		assert.Equal(t, int64(0), item.QteCanceled)
	}
	assert.Equal(t, int64(7), o.Items[0].QteOrdered)
	assert.Equal(t, int64(3), o.Items[1].QteOrdered)

	// Par (state, status) inicial creado de forma perezosa.
	assert.Contains(t, store.States, entity.StateNew)
	assert.Equal(t, "state-"+entity.StateNew, o.StateID)

	require.Len(t, events.Events, 1)
	assert.Equal(t, ports.EventReservationActivated, events.Events[0].Type)
}

// Caso 2: desactivar una reserva activa se rechaza y la reserva queda igual.
func TestUpdate_DesactivacionRechazada(t *testing.T) {
	store := apptest.NewStore()
	res := seedInactiveReservation(store)
	res.IsActive = true
	uc, events := newActivator(store)

	_, err := uc.Update(context.Background(), "res-1", dto.UpdateReservationRequest{
		IsActive: boolp(false),
		Comment:  strp("intento de desactivación"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	stored := store.Reservations["res-1"]
	assert.True(t, stored.IsActive)
	assert.Equal(t, "original", stored.Comment)
	assert.Empty(t, store.Orders)
	assert.Empty(t, events.Events)
}

// Caso 3: re-activar una reserva ya activa no crea un segundo pedido.
func TestUpdate_ReactivacionEsNoOp(t *testing.T) {
	store := apptest.NewStore()
	seedInactiveReservation(store)
	uc, _ := newActivator(store)
	ctx := context.Background()

	first, err := uc.Update(ctx, "res-1", dto.UpdateReservationRequest{IsActive: boolp(true)})
	require.NoError(t, err)
	require.NotNil(t, first.Order)

	second, err := uc.Update(ctx, "res-1", dto.UpdateReservationRequest{IsActive: boolp(true)})
	require.NoError(t, err)
	assert.Nil(t, second.Order)
	assert.Len(t, store.Orders, 1)
}

// Caso 4: prioridad de la fecha de entrega — override por partner primero,
// luego la fecha propia de la línea, si no null.
func TestUpdate_ResolucionFechaEntrega(t *testing.T) {
	store := apptest.NewStore()
	seedInactiveReservation(store)
	uc, _ := newActivator(store)

	override := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	out, err := uc.Update(context.Background(), "res-1", dto.UpdateReservationRequest{
		IsActive:      boolp(true),
		DeliveryDates: map[string]time.Time{testPartnerID: override},
	})
	require.NoError(t, err)
	require.Len(t, out.Order.Items, 2)

	// Línea 1: el override del partner pisa la fecha propia.
	require.NotNil(t, out.Order.Items[0].DeliveryDate)
	assert.True(t, out.Order.Items[0].DeliveryDate.Equal(override))
	// Línea 2: sin override ni fecha propia → null.
	assert.Nil(t, out.Order.Items[1].DeliveryDate)
}

// Caso 5: actualización plana — solo comment, sin transición, no crea pedido.
func TestUpdate_ActualizacionPlana(t *testing.T) {
	store := apptest.NewStore()
	seedInactiveReservation(store)
	uc, events := newActivator(store)

	out, err := uc.Update(context.Background(), "res-1", dto.UpdateReservationRequest{
		Comment: strp("nota nueva"),
	})
	require.NoError(t, err)

	assert.Nil(t, out.Order)
	assert.False(t, out.Reservation.IsActive)
	assert.Equal(t, "nota nueva", store.Reservations["res-1"].Comment)
	assert.Empty(t, store.Orders)
	assert.Empty(t, events.Events)
}

// Caso 6: reserva inexistente o ID vacío.
func TestUpdate_ReservaInvalida(t *testing.T) {
	store := apptest.NewStore()
	uc, _ := newActivator(store)
	ctx := context.Background()

	_, err := uc.Update(ctx, "", dto.UpdateReservationRequest{IsActive: boolp(true)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Update(ctx, "no-existe", dto.UpdateReservationRequest{IsActive: boolp(true)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
