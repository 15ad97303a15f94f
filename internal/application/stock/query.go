package stock

import (
	"context"
	"time"

	"github.com/jhoicas/Pedidos-api/internal/application/ports"
	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/jhoicas/Pedidos-api/internal/domain/repository"
)

// Query lectura de stock con caché de snapshots delante del repositorio.
// Un snapshot vigente evita el round-trip a la BD; un miss cae al repositorio
// y rehidrata la caché.
type Query struct {
	repo      repository.StockRepository
	snapshots ports.StockSnapshots
}

// NewQuery construye la lectura. snapshots puede ser nil (lectura directa).
func NewQuery(repo repository.StockRepository, snapshots ports.StockSnapshots) *Query {
	return &Query{repo: repo, snapshots: snapshots}
}

// Get devuelve la existencia física del par; domain.ErrNotFound si no existe.
func (q *Query) Get(ctx context.Context, skuPartnerID, sourceID string) (*entity.Stock, error) {
	if q.snapshots != nil {
		if qty, ok := q.snapshots.Get(ctx, skuPartnerID, sourceID); ok {
			return &entity.Stock{
				SkuPartnerID:  skuPartnerID,
				SourceID:      sourceID,
				StockQuantity: qty,
				UpdatedAt:     time.Now(),
			}, nil
		}
	}
	st, err := q.repo.Get(ctx, skuPartnerID, sourceID)
	if err != nil {
		return nil, err
	}
	if q.snapshots != nil {
		q.snapshots.Set(ctx, skuPartnerID, sourceID, st.StockQuantity)
	}
	return st, nil
}
