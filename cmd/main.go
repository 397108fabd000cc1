package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/ArmanWeb/bobatea/internal/adapter/logger"
	"github.com/ArmanWeb/bobatea/internal/adapter/postgres"
	"github.com/ArmanWeb/bobatea/internal/adapter/rabbitmq"
	"github.com/ArmanWeb/bobatea/internal/adapter/ws"
	"github.com/ArmanWeb/bobatea/internal/app/fulfillment"
	"github.com/ArmanWeb/bobatea/internal/app/menusync"
	"github.com/ArmanWeb/bobatea/internal/app/order"
	"github.com/ArmanWeb/bobatea/internal/app/tracking"
	"github.com/ArmanWeb/bobatea/internal/config"
	"github.com/ArmanWeb/bobatea/internal/hub"

	amqpAdapter "github.com/ArmanWeb/bobatea/internal/adapter/amqp"
	httpAdapter "github.com/ArmanWeb/bobatea/internal/adapter/http"
)

func main() {
	mode := flag.String("mode", "", "Service mode: api, menu-sync")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	prefetch := flag.Int("prefetch", 1, "RabbitMQ prefetch count")
	flag.Parse()

	if *mode == "" {
		log.Fatal("--mode flag is required")
	}

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lgr := logger.New(*mode)

	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
		"host": cfg.Database.Host,
		"db":   cfg.Database.Database,
	})

	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer mqConn.Close()

	lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
		"host": cfg.RabbitMQ.Host,
	})

	switch *mode {
	case "api":
		runAPI(ctx, cfg, db, mqConn, lgr, *prefetch)
	case "menu-sync":
		runMenuSync(ctx, cfg, db, mqConn, lgr, *prefetch)
	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}
}

// runAPI hosts order intake, POS status changes, tracking, the shadow
// menu review endpoints and the realtime websocket fan-out.
func runAPI(ctx context.Context, cfg *config.Config, db postgres.DB, mqConn rabbitmq.Connection, lgr logger.Logger, prefetch int) {
	orderRepo := postgres.NewOrderRepository(db)
	storeRepo := postgres.NewStoreRepository(db)
	menuRepo := postgres.NewMenuRepository(db)

	notifier := hub.New(cfg.Realtime.SubscriberBuffer)
	defer notifier.Shutdown()

	orderService := order.NewService(orderRepo, storeRepo, notifier, lgr)
	fulfillmentService := fulfillment.NewService(orderRepo, notifier, lgr, cfg.Fulfillment.MaxRetries)
	trackingService := tracking.NewService(orderRepo, lgr)
	menuService := menusync.NewService(menuRepo, menusync.Config{
		AutoApprove:     cfg.Sync.AutoApprove,
		ReviewFirstSeen: cfg.Sync.ReviewFirstSeen,
	}, lgr)

	orderHandler := httpAdapter.NewOrderHandler(orderService, fulfillmentService, trackingService, lgr)
	menuHandler := httpAdapter.NewMenuHandler(menuService, lgr)
	storeHandler := httpAdapter.NewStoreHandler(storeRepo, lgr)
	wsHandler := ws.NewHandler(notifier, lgr)

	router := chi.NewRouter()
	router.Use(httpAdapter.RecoveryMiddleware(lgr))
	router.Use(httpAdapter.LoggingMiddleware(lgr))
	orderHandler.RegisterRoutes(router)
	menuHandler.RegisterRoutes(router)
	storeHandler.RegisterRoutes(router)
	router.Handle("/ws", wsHandler)

	// POS terminals that cannot call HTTP push status changes over the
	// message bus instead.
	statusHandler := amqpAdapter.NewStatusHandler(fulfillmentService, lgr)
	consumer := rabbitmq.NewConsumer(mqConn, prefetch, lgr)
	go func() {
		if err := consumer.ConsumeStatusUpdates(ctx, statusHandler.HandleStatusUpdate); err != nil && ctx.Err() == nil {
			lgr.Error("consumer_error", "Error consuming status updates", "runtime", nil, err)
		}
	}()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("service_started", fmt.Sprintf("API started on port %d", cfg.HTTP.Port), "startup", map[string]interface{}{
		"port": cfg.HTTP.Port,
	})

	go func() {
		<-ctx.Done()

		lgr.Info("shutdown_initiated", "Shutting down API", "shutdown", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			lgr.Error("shutdown_error", "Error during shutdown", "shutdown", nil, err)
		}
		notifier.Shutdown()
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lgr.Error("server_error", "Server error", "runtime", nil, err)
	}
}

// runMenuSync consumes the external POS/ERP price feed and stages every
// update in the shadow menu.
func runMenuSync(ctx context.Context, cfg *config.Config, db postgres.DB, mqConn rabbitmq.Connection, lgr logger.Logger, prefetch int) {
	menuRepo := postgres.NewMenuRepository(db)

	menuService := menusync.NewService(menuRepo, menusync.Config{
		AutoApprove:     cfg.Sync.AutoApprove,
		ReviewFirstSeen: cfg.Sync.ReviewFirstSeen,
	}, lgr)

	priceHandler := amqpAdapter.NewPriceHandler(menuService, lgr)
	consumer := rabbitmq.NewConsumer(mqConn, prefetch, lgr)

	lgr.Info("service_started", "Menu sync worker started", "startup", nil)

	if err := consumer.ConsumePriceUpdates(ctx, priceHandler.HandlePriceUpdate); err != nil && ctx.Err() == nil {
		lgr.Error("consumer_error", "Error consuming price updates", "runtime", nil, err)
	}

	lgr.Info("shutdown_initiated", "Menu sync worker stopped", "shutdown", nil)
}
