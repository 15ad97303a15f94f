package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/jhoicas/Pedidos-api/internal/domain/repository"
)

var _ repository.StateRepository = (*StateRepo)(nil)
var _ repository.StatusRepository = (*StatusRepo)(nil)

// StateRepo tabla de referencia de estados con creación perezosa.
type StateRepo struct {
	q Querier
}

// NewStateRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStateRepository(q Querier) *StateRepo {
	return &StateRepo{q: q}
}

// GetOrCreate devuelve el estado por nombre, creándolo si no existe.
// ON CONFLICT DO NOTHING + re-lectura cubre la carrera entre transacciones.
func (r *StateRepo) GetOrCreate(ctx context.Context, name string) (*entity.State, error) {
	var s entity.State
	err := r.q.QueryRow(ctx, `SELECT id, name FROM states WHERE name = $1`, name).Scan(&s.ID, &s.Name)
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get state: %w", err)
	}

	id := uuid.New().String()
	if _, err := r.q.Exec(ctx,
		`INSERT INTO states (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`, id, name); err != nil {
		return nil, fmt.Errorf("insert state: %w", err)
	}
	if err := r.q.QueryRow(ctx, `SELECT id, name FROM states WHERE name = $1`, name).Scan(&s.ID, &s.Name); err != nil {
		return nil, fmt.Errorf("reread state: %w", err)
	}
	return &s, nil
}

// StatusRepo tabla de referencia de sub-estados, únicos por (name, state_id).
type StatusRepo struct {
	q Querier
}

// NewStatusRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStatusRepository(q Querier) *StatusRepo {
	return &StatusRepo{q: q}
}

// GetOrCreate devuelve el sub-estado por (name, state_id), creándolo si no existe.
func (r *StatusRepo) GetOrCreate(ctx context.Context, name, stateID string) (*entity.Status, error) {
	var s entity.Status
	query := `SELECT id, name, state_id FROM statuses WHERE name = $1 AND state_id = $2`
	err := r.q.QueryRow(ctx, query, name, stateID).Scan(&s.ID, &s.Name, &s.StateID)
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get status: %w", err)
	}

	id := uuid.New().String()
	if _, err := r.q.Exec(ctx,
		`INSERT INTO statuses (id, name, state_id) VALUES ($1, $2, $3) ON CONFLICT (name, state_id) DO NOTHING`,
		id, name, stateID); err != nil {
		return nil, fmt.Errorf("insert status: %w", err)
	}
	if err := r.q.QueryRow(ctx, query, name, stateID).Scan(&s.ID, &s.Name, &s.StateID); err != nil {
		return nil, fmt.Errorf("reread status: %w", err)
	}
	return &s, nil
}
