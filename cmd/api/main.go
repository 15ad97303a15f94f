package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Pedidos-api/internal/application/order"
	"github.com/jhoicas/Pedidos-api/internal/application/ports"
	"github.com/jhoicas/Pedidos-api/internal/application/reservation"
	"github.com/jhoicas/Pedidos-api/internal/application/stock"
	"github.com/jhoicas/Pedidos-api/internal/infrastructure/events"
	"github.com/jhoicas/Pedidos-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Pedidos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Pedidos-api/internal/infrastructure/redisx"
	httpRouter "github.com/jhoicas/Pedidos-api/internal/interfaces/http"
	"github.com/jhoicas/Pedidos-api/pkg/config"
	"github.com/jhoicas/Pedidos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	recorder := metrics.NewPrometheusRecorder()

	// Publicador de eventos y caché de snapshots: opcionales según config.
	var publisher ports.EventPublisher
	var kafkaPublisher *events.KafkaPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.App.Name, log)
		publisher = kafkaPublisher
		defer kafkaPublisher.Close()
	}
	var snapshots ports.StockSnapshots
	if cfg.Redis.Addr != "" {
		cache := redisx.New(cfg.Redis.Addr, log)
		snapshots = cache
		defer cache.Close()
	}

	txRunner := postgres.NewTxRunner(pool, cfg.Tx.Timeout)
	stockRepo := postgres.NewStockRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)

	reservationLedger := reservation.NewLedger(txRunner, recorder, publisher, log)
	activator := reservation.NewActivator(txRunner, publisher, log)
	orderCreator := order.NewCreator(txRunner, recorder, publisher, snapshots, log)
	adjuster := order.NewAdjuster(txRunner, recorder, publisher, snapshots, log)
	orderQuery := order.NewQuery(orderRepo)
	stockQuery := stock.NewQuery(stockRepo, snapshots)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ReservationLedger: reservationLedger,
		Activator:         activator,
		OrderCreator:      orderCreator,
		Adjuster:          adjuster,
		OrderQuery:        orderQuery,
		StockQuery:        stockQuery,
		Log:               log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
