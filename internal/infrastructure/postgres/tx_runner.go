package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Pedidos-api/internal/application/ports"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con
// timeout global y de espera de locks acotados por la configuración.
type TxRunner struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewTxRunner construye el runner. timeout acota cada unidad transaccional
// completa (por defecto ~30s).
func NewTxRunner(pool *pgxpool.Pool, timeout time.Duration) *TxRunner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TxRunner{pool: pool, timeout: timeout}
}

// Run inicia una transacción, ejecuta fn con los repositorios atados a la tx
// y hace Commit o Rollback. Sin política de reintentos: una falla (timeout,
// violación de constraint, conflicto de lock) revierte la unidad completa.
func (r *TxRunner) Run(ctx context.Context, fn func(ports.Repos) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.timeout.Milliseconds())); err != nil {
		return fmt.Errorf("set lock_timeout: %w", err)
	}

	repos := ports.Repos{
		Customers:      NewCustomerRepository(tx),
		PaymentMethods: NewPaymentMethodRepository(tx),
		SkuPartners:    NewSkuPartnerRepository(tx),
		Stock:          NewStockRepository(tx),
		Reservations:   NewReservationRepository(tx),
		Orders:         NewOrderRepository(tx),
		States:         NewStateRepository(tx),
		Statuses:       NewStatusRepository(tx),
	}

	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
