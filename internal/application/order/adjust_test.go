package order_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Pedidos-api/internal/application/apptest"
	"github.com/jhoicas/Pedidos-api/internal/application/dto"
	"github.com/jhoicas/Pedidos-api/internal/application/order"
	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/jhoicas/Pedidos-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testOrderID     = "order-1"
	testItemID      = "item-1"
	testItemID2     = "item-2"
	testProductID   = "prod-1"
	testProductID2  = "prod-2"
	testPartnerID   = "partner-1"
	testSourceID    = "bodega-1"
	testSkuPartner  = "sp-1"
	testSkuPartner2 = "sp-2"
)

func i64(v int64) *int64 { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// seedOrder carga un pedido con dos líneas de 10 unidades a $5.00 y la fila
// de stock asociada a cada una (100 físicas, 100 vendibles).
func seedOrder(s *apptest.Store) {
	s.Orders[testOrderID] = &entity.Order{ID: testOrderID, StateID: "state-new", StatusID: "status-open"}
	s.OrderItems[testItemID] = &entity.OrderItem{
		ID:              testItemID,
		OrderID:         testOrderID,
		ProductID:       testProductID,
		PartnerID:       testPartnerID,
		SourceID:        testSourceID,
		Sku:             "SKU-1",
		DiscountedPrice: dec("5.00"),
		QteOrdered:      10,
	}
	s.OrderItems[testItemID2] = &entity.OrderItem{
		ID:              testItemID2,
		OrderID:         testOrderID,
		ProductID:       testProductID2,
		PartnerID:       testPartnerID,
		SourceID:        testSourceID,
		Sku:             "SKU-2",
		DiscountedPrice: dec("5.00"),
		QteOrdered:      10,
	}
	s.SkuPartners = append(s.SkuPartners,
		&entity.SkuPartner{ID: testSkuPartner, ProductID: testProductID, PartnerID: testPartnerID, SkuProduct: "SKU-1"},
		&entity.SkuPartner{ID: testSkuPartner2, ProductID: testProductID2, PartnerID: testPartnerID, SkuProduct: "SKU-2"},
	)
	s.SeedStock(testSkuPartner, testSourceID, 100, 100)
	s.SeedStock(testSkuPartner2, testSourceID, 100, 100)
}

func newAdjuster(s *apptest.Store) (*order.Adjuster, *apptest.RecorderSpy, *apptest.PublisherSpy) {
	metrics := apptest.NewRecorderSpy()
	events := &apptest.PublisherSpy{}
	uc := order.NewAdjuster(apptest.NewTxRunner(s), metrics, events, nil, logger.Nop())
	return uc, metrics, events
}

func newAdjusterWithSnapshots(s *apptest.Store) (*order.Adjuster, *apptest.SnapshotsSpy) {
	snapshots := apptest.NewSnapshotsSpy()
	uc := order.NewAdjuster(apptest.NewTxRunner(s), apptest.NewRecorderSpy(), nil, snapshots, logger.Nop())
	return uc, snapshots
}

// ──────────────────────────────────────────────────────────────────────────────
// Delta de stock
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: enviar 6 unidades descuenta 6 del stock físico y fija amount_shipped.
func TestAdjust_EnvioDescuentaStock(t *testing.T) {
	store := apptest.NewStore()
	seedOrder(store)
	uc, _, events := newAdjuster(store)

	b, err := uc.Adjust(context.Background(), dto.AdjustOrderItemRequest{
		OrderItemID: testItemID,
		QteShipped:  i64(6),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(-6), b.StockDelta)
	assert.Equal(t, int64(94), store.StockAt(testSkuPartner, testSourceID).StockQuantity)
	assert.True(t, b.AmountShipped.Equal(dec("30.00")), "6 × 5.00 = 30.00, got %s", b.AmountShipped)
	assert.True(t, store.Orders[testOrderID].AmountShipped.Equal(dec("30.00")))
	require.Len(t, events.Events, 1)
}

// Caso 2: devolver 2 de las 6 enviadas regresa 2 al stock.
func TestAdjust_DevolucionRegresaStock(t *testing.T) {
	store := apptest.NewStore()
	seedOrder(store)
	uc, _, _ := newAdjuster(store)
	ctx := context.Background()

	_, err := uc.Adjust(ctx, dto.AdjustOrderItemRequest{OrderItemID: testItemID, QteShipped: i64(6)})
	require.NoError(t, err)

	b, err := uc.Adjust(ctx, dto.AdjustOrderItemRequest{OrderItemID: testItemID, QteRefunded: i64(2)})
	require.NoError(t, err)

	assert.Equal(t, int64(2), b.StockDelta)
	assert.Equal(t, int64(96), store.StockAt(testSkuPartner, testSourceID).StockQuantity)
	assert.True(t, b.AmountShipped.Equal(dec("30.00")))
	assert.True(t, b.AmountRefunded.Equal(dec("10.00")))
}

// Caso 3: repetir la misma mutación es un no-op (delta 0, stock intacto).
func TestAdjust_MutacionIdempotente(t *testing.T) {
	store := apptest.NewStore()
	seedOrder(store)
	uc, _, _ := newAdjuster(store)
	ctx := context.Background()

	_, err := uc.Adjust(ctx, dto.AdjustOrderItemRequest{OrderItemID: testItemID, QteShipped: i64(4)})
	require.NoError(t, err)

	b, err := uc.Adjust(ctx, dto.AdjustOrderItemRequest{OrderItemID: testItemID, QteShipped: i64(4)})
	require.NoError(t, err)

	assert.Equal(t, int64(0), b.StockDelta)
	assert.Equal(t, int64(96), store.StockAt(testSkuPartner, testSourceID).StockQuantity)
}

// Caso 4: conservación del stock — una secuencia de mutaciones sobre la misma
// línea deja el stock desplazado exactamente por el estado final de los
// contadores, no por el camino recorrido.
func TestAdjust_ConservacionDeStock(t *testing.T) {
	store := apptest.NewStore()
	seedOrder(store)
	uc, _, _ := newAdjuster(store)
	ctx := context.Background()

	steps := []dto.AdjustOrderItemRequest{
		{OrderItemID: testItemID, QteShipped: i64(3)},
		{OrderItemID: testItemID, QteShipped: i64(7)},
		{OrderItemID: testItemID, QteRefunded: i64(2)},
		{OrderItemID: testItemID, QteShipped: i64(5), QteCanceled: i64(1)},
	}
	for _, in := range steps {
		_, err := uc.Adjust(ctx, in)
		require.NoError(t, err)
	}

	// Estado final: shipped=5, refunded=2, canceled=1 → -5 +2 +1 = -2.
	item := store.OrderItems[testItemID]
	assert.Equal(t, int64(5), item.QteShipped)
	assert.Equal(t, int64(2), item.QteRefunded)
	assert.Equal(t, int64(1), item.QteCanceled)
	assert.Equal(t, int64(98), store.StockAt(testSkuPartner, testSourceID).StockQuantity)
}

// Caso 5: una línea sin origen no toca stock pero sí los agregados.
func TestAdjust_SinOrigenNoTocaStock(t *testing.T) {
	store := apptest.NewStore()
	seedOrder(store)
	store.OrderItems[testItemID].SourceID = ""
	uc, _, _ := newAdjuster(store)

	b, err := uc.Adjust(context.Background(), dto.AdjustOrderItemRequest{
		OrderItemID: testItemID,
		QteShipped:  i64(3),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(-3), b.StockDelta)
	assert.Equal(t, int64(100), store.StockAt(testSkuPartner, testSourceID).StockQuantity)
	assert.True(t, store.Orders[testOrderID].AmountShipped.Equal(dec("15.00")))
}

// Caso 6: sin fila de stock para el par, el ajuste de línea aplica igual.
func TestAdjust_SinFilaDeStockAplicaIgual(t *testing.T) {
	store := apptest.NewStore()
	seedOrder(store)
	delete(store.Stock, testSkuPartner+"|"+testSourceID)
	uc, _, _ := newAdjuster(store)

	_, err := uc.Adjust(context.Background(), dto.AdjustOrderItemRequest{
		OrderItemID: testItemID,
		QteShipped:  i64(3),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), store.OrderItems[testItemID].QteShipped)
}

// ──────────────────────────────────────────────────────────────────────────────
// Invariante de contadores
// ──────────────────────────────────────────────────────────────────────────────

// Caso 7: enviados+devueltos+cancelados > ordenados se rechaza sin escribir.
func TestAdjust_RechazaExcesoSobreOrdenado(t *testing.T) {
	store := apptest.NewStore()
	seedOrder(store)
	uc, _, events := newAdjuster(store)

	_, err := uc.Adjust(context.Background(), dto.AdjustOrderItemRequest{
		OrderItemID: testItemID,
		QteShipped:  i64(8),
		QteRefunded: i64(3), // 8+3 > 10
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Nada escrito: línea, agregados y stock intactos.
	assert.Equal(t, int64(0), store.OrderItems[testItemID].QteShipped)
	assert.Equal(t, int64(100), store.StockAt(testSkuPartner, testSourceID).StockQuantity)
	assert.True(t, store.Orders[testOrderID].AmountShipped.IsZero())
	assert.Empty(t, events.Events)
}

// Caso 8: contadores negativos se rechazan.
func TestAdjust_RechazaContadorNegativo(t *testing.T) {
	store := apptest.NewStore()
	seedOrder(store)
	uc, _, _ := newAdjuster(store)

	_, err := uc.Adjust(context.Background(), dto.AdjustOrderItemRequest{
		OrderItemID: testItemID,
		QteShipped:  i64(-1),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Caso 9: la suma exactamente igual a lo ordenado sí es válida.
func TestAdjust_AceptaSumaExacta(t *testing.T) {
	store := apptest.NewStore()
	seedOrder(store)
	uc, _, _ := newAdjuster(store)

	b, err := uc.Adjust(context.Background(), dto.AdjustOrderItemRequest{
		OrderItemID: testItemID,
		QteShipped:  i64(6),
		QteRefunded: i64(3),
		QteCanceled: i64(1),
	})
	require.NoError(t, err)
	// -6 +3 +1 = -2
	assert.Equal(t, int64(-2), b.StockDelta)
	assert.Equal(t, int64(10), store.OrderItems[testItemID].Fulfilled())
}

// Caso 10: una línea inexistente devuelve not found.
func TestAdjust_LineaInexistente(t *testing.T) {
	store := apptest.NewStore()
	seedOrder(store)
	uc, _, _ := newAdjuster(store)

	_, err := uc.Adjust(context.Background(), dto.AdjustOrderItemRequest{
		OrderItemID: "no-existe",
		QteShipped:  i64(1),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Agregados del pedido
// ──────────────────────────────────────────────────────────────────────────────

// Caso 11: los agregados suman sobre TODAS las líneas del pedido, no solo la
// editada: ajustar la línea 2 conserva lo enviado de la línea 1.
func TestAdjust_AgregadosSumanTodasLasLineas(t *testing.T) {
	store := apptest.NewStore()
	seedOrder(store)
	uc, _, _ := newAdjuster(store)
	ctx := context.Background()

	_, err := uc.Adjust(ctx, dto.AdjustOrderItemRequest{OrderItemID: testItemID, QteShipped: i64(4)})
	require.NoError(t, err)

	b, err := uc.Adjust(ctx, dto.AdjustOrderItemRequest{OrderItemID: testItemID2, QteShipped: i64(2)})
	require.NoError(t, err)

	// 4×5.00 de la línea 1 + 2×5.00 de la línea 2.
	assert.True(t, b.AmountShipped.Equal(dec("30.00")), "got %s", b.AmountShipped)
	assert.True(t, store.Orders[testOrderID].AmountShipped.Equal(dec("30.00")))
}

// Caso 12: un precio con descuento nuevo se redondea a 2 decimales y entra
// en los agregados.
func TestAdjust_PrecioNuevoRedondeado(t *testing.T) {
	store := apptest.NewStore()
	seedOrder(store)
	uc, _, _ := newAdjuster(store)

	price := dec("4.999")
	b, err := uc.Adjust(context.Background(), dto.AdjustOrderItemRequest{
		OrderItemID:     testItemID,
		QteShipped:      i64(2),
		DiscountedPrice: &price,
	})
	require.NoError(t, err)

	assert.True(t, b.PriceUsed.Equal(dec("5.00")), "got %s", b.PriceUsed)
	assert.True(t, b.AmountShipped.Equal(dec("10.00")))
	assert.True(t, store.OrderItems[testItemID].DiscountedPrice.Equal(dec("5.00")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Lote (todo o nada)
// ──────────────────────────────────────────────────────────────────────────────

// Caso 13: un lote válido aplica todas las mutaciones en orden.
func TestAdjustBulk_AplicaTodoElLote(t *testing.T) {
	store := apptest.NewStore()
	seedOrder(store)
	uc, _, events := newAdjuster(store)

	out, err := uc.AdjustBulk(context.Background(), []dto.AdjustOrderItemRequest{
		{OrderItemID: testItemID, QteShipped: i64(5)},
		{OrderItemID: testItemID2, QteShipped: i64(3)},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, int64(95), store.StockAt(testSkuPartner, testSourceID).StockQuantity)
	assert.Equal(t, int64(97), store.StockAt(testSkuPartner2, testSourceID).StockQuantity)
	assert.True(t, store.Orders[testOrderID].AmountShipped.Equal(dec("40.00")))
	assert.Len(t, events.Events, 2)
}

// Caso 14: si un elemento del lote falla, se revierte el lote completo,
// incluidos los ajustes de stock de los elementos anteriores.
func TestAdjustBulk_TodoONada(t *testing.T) {
	store := apptest.NewStore()
	seedOrder(store)
	uc, _, events := newAdjuster(store)

	_, err := uc.AdjustBulk(context.Background(), []dto.AdjustOrderItemRequest{
		{OrderItemID: testItemID, QteShipped: i64(5)},
		{OrderItemID: testItemID2, QteShipped: i64(11)}, // excede lo ordenado
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// El primer elemento también quedó revertido.
	assert.Equal(t, int64(0), store.OrderItems[testItemID].QteShipped)
	assert.Equal(t, int64(100), store.StockAt(testSkuPartner, testSourceID).StockQuantity)
	assert.True(t, store.Orders[testOrderID].AmountShipped.IsZero())
	assert.Empty(t, events.Events)
}

// Caso 15: lote vacío o elemento sin ID se rechazan antes de abrir la tx.
func TestAdjustBulk_ValidacionDeEntrada(t *testing.T) {
	store := apptest.NewStore()
	seedOrder(store)
	uc, _, _ := newAdjuster(store)
	ctx := context.Background()

	_, err := uc.AdjustBulk(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.AdjustBulk(ctx, []dto.AdjustOrderItemRequest{{QteShipped: i64(1)}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Caso 16: tras el commit de un ajuste la caché de snapshots queda con la
// existencia resultante; un ajuste rechazado no escribe nada en ella.
func TestAdjust_RefrescaSnapshotTrasCommit(t *testing.T) {
	store := apptest.NewStore()
	seedOrder(store)
	uc, snapshots := newAdjusterWithSnapshots(store)
	ctx := context.Background()

	_, err := uc.Adjust(ctx, dto.AdjustOrderItemRequest{OrderItemID: testItemID, QteShipped: i64(6)})
	require.NoError(t, err)

	qty, ok := snapshots.Get(ctx, testSkuPartner, testSourceID)
	require.True(t, ok)
	assert.Equal(t, int64(94), qty)
	assert.Equal(t, 1, snapshots.Sets)

	// Lote rechazado: el snapshot conserva el valor del commit anterior.
	_, err = uc.AdjustBulk(ctx, []dto.AdjustOrderItemRequest{
		{OrderItemID: testItemID2, QteShipped: i64(3)},
		{OrderItemID: testItemID, QteShipped: i64(11)},
	})
	require.Error(t, err)

	qty, ok = snapshots.Get(ctx, testSkuPartner, testSourceID)
	require.True(t, ok)
	assert.Equal(t, int64(94), qty)
	_, ok = snapshots.Get(ctx, testSkuPartner2, testSourceID)
	assert.False(t, ok, "el rollback no debe llegar a la caché")
	assert.Equal(t, 1, snapshots.Sets)
}

// Caso 17: dos pasos del lote sobre la misma línea se componen: el segundo
// parte del estado que dejó el primero.
func TestAdjustBulk_PasosSecuencialesSobreMismaLinea(t *testing.T) {
	store := apptest.NewStore()
	seedOrder(store)
	uc, _, _ := newAdjuster(store)

	out, err := uc.AdjustBulk(context.Background(), []dto.AdjustOrderItemRequest{
		{OrderItemID: testItemID, QteShipped: i64(6)},
		{OrderItemID: testItemID, QteRefunded: i64(2)},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, int64(-6), out[0].StockDelta)
	assert.Equal(t, int64(2), out[1].StockDelta)
	assert.Equal(t, int64(6), out[1].OldShipped, "el segundo paso ve lo enviado por el primero")
	assert.Equal(t, int64(96), store.StockAt(testSkuPartner, testSourceID).StockQuantity)
}
