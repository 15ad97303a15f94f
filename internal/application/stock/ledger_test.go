package stock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Pedidos-api/internal/application/apptest"
	"github.com/jhoicas/Pedidos-api/internal/application/stock"
	"github.com/jhoicas/Pedidos-api/internal/domain"
)

const (
	testSkuPartner = "sp-1"
	testSourceID   = "bodega-1"
)

// Caso 1: Adjust acumula deltas con signo sobre la existencia física y emite
// contador, gauge y snapshot por cada mutación exitosa.
func TestLedger_AdjustAcumulaDeltas(t *testing.T) {
	store := apptest.NewStore()
	store.SeedStock(testSkuPartner, testSourceID, 50, 50)
	metrics := apptest.NewRecorderSpy()
	snapshots := apptest.NewSnapshotsSpy()
	ledger := stock.NewLedger(store.Repos().Stock, metrics, snapshots)
	ctx := context.Background()

	st, err := ledger.Adjust(ctx, testSkuPartner, testSourceID, -8)
	require.NoError(t, err)
	assert.Equal(t, int64(42), st.StockQuantity)

	st, err = ledger.Adjust(ctx, testSkuPartner, testSourceID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(45), st.StockQuantity)

	assert.Equal(t, 2, metrics.Operations["adjust/ok"])
	assert.Equal(t, int64(45), metrics.Gauges[testSkuPartner+"|"+testSourceID])
	assert.Equal(t, 2, metrics.Observed)
	qty, ok := snapshots.Get(ctx, testSkuPartner, testSourceID)
	require.True(t, ok)
	assert.Equal(t, int64(45), qty)
}

// Caso 2: ajustar un par sin fila devuelve not found y marca el error.
func TestLedger_AdjustParInexistente(t *testing.T) {
	store := apptest.NewStore()
	metrics := apptest.NewRecorderSpy()
	ledger := stock.NewLedger(store.Repos().Stock, metrics, nil)

	_, err := ledger.Adjust(context.Background(), testSkuPartner, testSourceID, -1)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, metrics.Operations["adjust/error"])
}

// Caso 3: DecrementSealable descuenta el vendible sin tocar el físico y
// falla con stock insuficiente cuando no alcanza.
func TestLedger_DecrementSealable(t *testing.T) {
	store := apptest.NewStore()
	store.SeedStock(testSkuPartner, testSourceID, 50, 10)
	ledger := stock.NewLedger(store.Repos().Stock, nil, nil)
	ctx := context.Background()

	require.NoError(t, ledger.DecrementSealable(ctx, testSkuPartner, testSourceID, 4))
	assert.Equal(t, int64(6), store.StockAt(testSkuPartner, testSourceID).Sealable)
	assert.Equal(t, int64(50), store.StockAt(testSkuPartner, testSourceID).StockQuantity)

	err := ledger.DecrementSealable(ctx, testSkuPartner, testSourceID, 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(6), store.StockAt(testSkuPartner, testSourceID).Sealable)
}

// Caso 4: con metrics y snapshots nil el ledger opera igual.
func TestLedger_TelemetriaOpcional(t *testing.T) {
	store := apptest.NewStore()
	store.SeedStock(testSkuPartner, testSourceID, 10, 10)
	ledger := stock.NewLedger(store.Repos().Stock, nil, nil)

	st, err := ledger.Adjust(context.Background(), testSkuPartner, testSourceID, -2)
	require.NoError(t, err)
	assert.Equal(t, int64(8), st.StockQuantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// Query con caché de snapshots
// ──────────────────────────────────────────────────────────────────────────────

// Caso 5: un snapshot vigente responde sin ir al repositorio.
func TestQuery_SnapshotVigente(t *testing.T) {
	store := apptest.NewStore()
	store.SeedStock(testSkuPartner, testSourceID, 50, 50)
	snapshots := apptest.NewSnapshotsSpy()
	snapshots.Set(context.Background(), testSkuPartner, testSourceID, 42)
	q := stock.NewQuery(store.Repos().Stock, snapshots)

	st, err := q.Get(context.Background(), testSkuPartner, testSourceID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), st.StockQuantity, "responde el snapshot, no la fila")
}

// Caso 6: un miss cae al repositorio y rehidrata la caché.
func TestQuery_MissRehidrata(t *testing.T) {
	store := apptest.NewStore()
	store.SeedStock(testSkuPartner, testSourceID, 50, 50)
	snapshots := apptest.NewSnapshotsSpy()
	q := stock.NewQuery(store.Repos().Stock, snapshots)
	ctx := context.Background()

	st, err := q.Get(ctx, testSkuPartner, testSourceID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), st.StockQuantity)

	qty, ok := snapshots.Get(ctx, testSkuPartner, testSourceID)
	require.True(t, ok)
	assert.Equal(t, int64(50), qty)
}

// Caso 7: sin caché la lectura es directa; not found se propaga.
func TestQuery_SinCache(t *testing.T) {
	store := apptest.NewStore()
	q := stock.NewQuery(store.Repos().Stock, nil)

	_, err := q.Get(context.Background(), testSkuPartner, testSourceID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
