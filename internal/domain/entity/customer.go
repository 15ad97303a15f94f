package entity

import "time"

// Customer cliente que origina reservas. Gestionado por otro módulo;
// aquí solo se resuelve por ID.
type Customer struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// PaymentMethod medio de pago asociado a la reserva. Solo lectura aquí.
type PaymentMethod struct {
	ID   string
	Name string
}
