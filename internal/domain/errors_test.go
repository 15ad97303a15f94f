package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Pedidos-api/internal/domain"
)

// Caso 1: StockError se compara contra el sentinela que corresponde a su código.
func TestStockError_MapeoASentinelas(t *testing.T) {
	notFound := &domain.StockError{Code: domain.CodeStockNotFound, SourceID: "bodega-1"}
	assert.ErrorIs(t, notFound, domain.ErrNotFound)
	assert.NotErrorIs(t, notFound, domain.ErrInsufficientStock)

	insufficient := &domain.StockError{
		Code:         domain.CodeStockInsufficient,
		SkuPartnerID: "sp-1",
		SourceID:     "bodega-1",
		Available:    4,
		Required:     10,
	}
	assert.ErrorIs(t, insufficient, domain.ErrInsufficientStock)
	assert.Contains(t, insufficient.Error(), "disponible=4")
	assert.Contains(t, insufficient.Error(), "requerido=10")
}

// Caso 2: IsBusiness separa los errores de negocio (4xx) de las fallas
// internas (5xx), incluso envueltos.
func TestIsBusiness_Clasificacion(t *testing.T) {
	business := []error{
		domain.ErrNotFound,
		domain.ErrInvalidInput,
		domain.ErrInsufficientStock,
		domain.ErrInvalidTransition,
		fmt.Errorf("línea 2: %w", domain.ErrInvalidInput),
		&domain.StockError{Code: domain.CodeStockInsufficient},
	}
	for _, err := range business {
		assert.True(t, domain.IsBusiness(err), "debe ser de negocio: %v", err)
	}

	assert.False(t, domain.IsBusiness(errors.New("conexión rechazada")))
	assert.False(t, domain.IsBusiness(nil))
}
