package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Pedidos-api/internal/application/ports"
	"github.com/jhoicas/Pedidos-api/pkg/logger"
)

var _ ports.StockSnapshots = (*SnapshotCache)(nil)

// Clave y vigencia de los snapshots de stock.
const (
	keyStock    = "stock:%s:%s" // stock:{sku_partner_id}:{source_id} -> stock_quantity
	ttlSnapshot = 5 * time.Minute
)

// SnapshotCache caché best-effort de existencias en Redis para lecturas
// baratas. Cualquier error de Redis se loguea y se ignora: la BD sigue
// siendo la fuente de verdad.
type SnapshotCache struct {
	rdb *redis.Client
	log *logger.Logger
}

// New crea el cliente Redis y la caché de snapshots.
func New(addr string, log *logger.Logger) *SnapshotCache {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &SnapshotCache{rdb: rdb, log: log}
}

// Set guarda la existencia con TTL.
func (c *SnapshotCache) Set(ctx context.Context, skuPartnerID, sourceID string, qty int64) {
	key := fmt.Sprintf(keyStock, skuPartnerID, sourceID)
	if err := c.rdb.Set(ctx, key, qty, ttlSnapshot).Err(); err != nil {
		c.log.Debug().Err(err).Str("key", key).Msg("snapshot de stock no guardado")
	}
}

// Get devuelve (qty, true) si hay snapshot vigente.
func (c *SnapshotCache) Get(ctx context.Context, skuPartnerID, sourceID string) (int64, bool) {
	key := fmt.Sprintf(keyStock, skuPartnerID, sourceID)
	qty, err := c.rdb.Get(ctx, key).Int64()
	if err != nil {
		return 0, false
	}
	return qty, true
}

// Close cierra el cliente subyacente.
func (c *SnapshotCache) Close() error {
	return c.rdb.Close()
}
