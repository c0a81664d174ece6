package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/retriever-essentials/pantry-web/internal/app"
	"github.com/retriever-essentials/pantry-web/internal/auth"
	"github.com/retriever-essentials/pantry-web/internal/authapi"
	"github.com/retriever-essentials/pantry-web/internal/backend"
	"github.com/retriever-essentials/pantry-web/internal/cart"
	"github.com/retriever-essentials/pantry-web/internal/catalog"
	"github.com/retriever-essentials/pantry-web/internal/checkouts"
	"github.com/retriever-essentials/pantry-web/internal/guard"
	"github.com/retriever-essentials/pantry-web/internal/inventorylog"
	"github.com/retriever-essentials/pantry-web/internal/observability"
	"github.com/retriever-essentials/pantry-web/internal/procurement"
	"github.com/retriever-essentials/pantry-web/internal/session"
	"github.com/retriever-essentials/pantry-web/internal/shared"
	"github.com/retriever-essentials/pantry-web/internal/users"
	"github.com/retriever-essentials/pantry-web/internal/view"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Default().Warn("load .env file", slog.Any("error", err))
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	store := session.NewStore(redisClient)
	if err := store.Hydrate(ctx); err != nil {
		logger.Warn("hydrate session", slog.Any("error", err))
	}

	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	authClient := authapi.NewClient(cfg.BackendBaseURL)
	api := backend.NewClient(cfg.BackendBaseURL, store)

	catalogService := catalog.NewService(catalog.NewRepository(api))
	checkoutsService := checkouts.NewService(checkouts.NewRepository(api))
	procurementService := procurement.NewService(procurement.NewRepository(api))
	usersService := users.NewService(users.NewRepository(api))
	inventoryLogService := inventorylog.NewService(inventorylog.NewRepository(api))

	shoppingCart := cart.New()
	cartService := cart.NewService(shoppingCart, checkouts.NewRepository(api))

	authHandler := auth.NewHandler(logger, authClient, templates, store, csrfManager)
	catalogHandler := catalog.NewHandler(logger, catalogService, templates, store, csrfManager)
	cartHandler := cart.NewHandler(logger, shoppingCart, cartService, catalogService, templates, store, csrfManager, metrics)
	checkoutsHandler := checkouts.NewHandler(logger, checkoutsService, templates, store, csrfManager)
	procurementHandler := procurement.NewHandler(logger, procurementService, catalogService, templates, store, csrfManager)
	usersHandler := users.NewHandler(logger, usersService, templates, store, csrfManager)
	inventoryLogHandler := inventorylog.NewHandler(logger, inventoryLogService, catalogService, templates, store, csrfManager)

	router := app.NewRouter(app.RouterParams{
		Logger:      logger,
		Config:      cfg,
		Templates:   templates,
		Store:       store,
		CSRFManager: csrfManager,
		Guard:       guard.Middleware{Store: store, Logger: logger},

		AuthHandler:         authHandler,
		CatalogHandler:      catalogHandler,
		CartHandler:         cartHandler,
		CheckoutsHandler:    checkoutsHandler,
		ProcurementHandler:  procurementHandler,
		UsersHandler:        usersHandler,
		InventoryLogHandler: inventoryLogHandler,

		Metrics: metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
