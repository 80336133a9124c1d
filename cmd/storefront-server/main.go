package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-client/internal/api"
	"storefront-client/internal/config"
	"storefront-client/internal/domain"
	"storefront-client/internal/handler"
	"storefront-client/internal/messaging"
	"storefront-client/internal/middleware"
	"storefront-client/internal/observability"
	"storefront-client/internal/storefront"
	"storefront-client/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()
	observability.InitLogger(cfg.LogLevel, cfg.LogFormat)

	slog.Info("starting storefront server",
		slog.String("environment", cfg.Environment),
		slog.String("storage", cfg.StorageDriver),
		slog.String("api", cfg.APIBaseURL))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connCtx, connCancel := context.WithTimeout(ctx, 10*time.Second)
	store, err := openStorage(connCtx, cfg)
	connCancel()
	if err != nil {
		slog.Error("failed to open storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := store.close(); err != nil {
			slog.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	hub := websocket.NewHub()
	go func() {
		if err := hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("hub error", slog.String("error", err.Error()))
		}
	}()
	slog.Info("websocket hub started")

	checks := map[string]handler.Check{"storage": store.check}

	var events domain.EventPublisher = messaging.Local{Handle: hub.BroadcastEvent}
	if cfg.RabbitMQURL != "" {
		rmqCtx, rmqCancel := context.WithTimeout(ctx, 60*time.Second)
		rmq, err := messaging.NewRabbitMQWithRetry(rmqCtx, cfg.RabbitMQURL)
		rmqCancel()
		if err != nil {
			slog.Error("failed to connect to rabbitmq", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer rmq.Close()

		// events come back through the broker so every instance relays them
		consumer := messaging.NewEventConsumer(rmq, "#", hub.BroadcastEvent)
		if err := consumer.Start(ctx); err != nil {
			slog.Error("failed to start event consumer", slog.String("error", err.Error()))
			os.Exit(1)
		}
		events = rmq
		checks["rabbitmq"] = func(context.Context) (map[string]any, error) {
			if rmq.IsClosed() {
				return nil, errors.New("connection closed")
			}
			return nil, nil
		}
		slog.Info("event consumer started")
	}

	client := api.NewClient(api.Config{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.RemoteTimeout,
		RateLimit: cfg.RemoteRateLimit,
		Burst:     cfg.RemoteBurst,
	})

	app := storefront.New(store.kv, storefront.Remotes{
		Auth:    client,
		Carts:   client,
		Catalog: client,
		Orders:  client,
		Reviews: client,
	}, storefront.Options{
		ReconcileTimeout: cfg.ReconcileTimeout,
		Reporter:         observability.FailureReporter(nil),
		Events:           events,
	})
	app.Cart.Subscribe(hub.BroadcastCart)
	app.Session.Subscribe(hub.BroadcastSession)

	// the listener comes up while the cold-start reconcile is in flight; its
	// result reaches clients through the cart subscription
	app.InitializeAsync(ctx)
	hub.BroadcastSession(app.Session.Snapshot())

	apiHandlers := &handler.API{
		Auth:     handler.NewAuthHandler(app.Auth),
		Cart:     handler.NewCartHandler(app.Carts),
		Checkout: handler.NewCheckoutHandler(app.Checkout, app.Orders),
		Catalog:  handler.NewCatalogHandler(app.Catalog, app.Reviews),

		RequireLogin: middleware.RequireLogin(app.Session),
	}
	origins := middleware.ParseOrigins(cfg.AllowedOrigins)
	wsHandler := handler.NewWebSocketHandler(hub, origins)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger())
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(origins))
	r.Use(middleware.Metrics())

	r.Get("/health", handler.Health)
	r.Get("/health/ready", handler.Ready(checks))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws/cart", wsHandler.HandleConnection)

	r.Route("/api/v1", func(r chi.Router) {
		limiter := middleware.NewRateLimiter(ctx, 20, 50)
		r.Use(limiter.Middleware())

		if cfg.OpenAPIValidation {
			validator := middleware.DefaultOpenAPIValidatorConfig()
			validator.Enabled = true
			r.Use(middleware.OpenAPIValidator(validator))
		}

		apiHandlers.Mount(r)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.HTTPWriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("storefront server listening", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
	}

	// flush the cart before storage goes away
	if err := app.Teardown(shutdownCtx); err != nil {
		slog.Error("storefront teardown error", slog.String("error", err.Error()))
	}

	cancel()

	slog.Info("server stopped gracefully")
}
