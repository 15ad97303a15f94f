package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Pedidos-api/internal/application/order"
	"github.com/jhoicas/Pedidos-api/internal/application/reservation"
	"github.com/jhoicas/Pedidos-api/internal/application/stock"
	"github.com/jhoicas/Pedidos-api/pkg/logger"
)

// RouterDeps dependencias de los handlers.
type RouterDeps struct {
	ReservationLedger *reservation.Ledger
	Activator         *reservation.Activator
	OrderCreator      *order.Creator
	Adjuster          *order.Adjuster
	OrderQuery        *order.Query
	StockQuery        *stock.Query
	Log               *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	reservations := NewReservationHandler(deps.ReservationLedger, deps.Activator, deps.Log)
	ordersH := NewOrderHandler(deps.OrderCreator, deps.Adjuster, deps.OrderQuery, deps.Log)
	stockH := NewStockHandler(deps.StockQuery, deps.Log)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	api.Post("/reservations", reservations.Create)
	api.Patch("/reservations/:id", reservations.Update)
	api.Post("/orders/from-reservation/:id", ordersH.CreateFromReservation)
	api.Get("/orders/:id", ordersH.Get)
	api.Patch("/order-items/:id", ordersH.AdjustItem)
	api.Patch("/order-items", ordersH.AdjustItems)
	api.Get("/stock", stockH.Get)
}
