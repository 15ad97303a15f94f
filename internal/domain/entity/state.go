package entity

// Valores iniciales de las tablas de referencia; se crean perezosamente
// en el primer uso en lugar de seed.
const (
	StateNew   = "new"
	StatusOpen = "open"
)

// State estado macro de un pedido.
type State struct {
	ID   string
	Name string
}

// Status sub-estado; pertenece a exactamente un State y es único por (Name, StateID).
type Status struct {
	ID      string
	Name    string
	StateID string
}
