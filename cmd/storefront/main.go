package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fjod/go_storefront/internal/auth"
	"github.com/fjod/go_storefront/internal/cache"
	"github.com/fjod/go_storefront/internal/config"
	h "github.com/fjod/go_storefront/internal/http"
	"github.com/fjod/go_storefront/internal/publisher"
	"github.com/fjod/go_storefront/internal/remote"
	"github.com/fjod/go_storefront/internal/repository"
	"github.com/fjod/go_storefront/internal/service"
	"github.com/fjod/go_storefront/internal/session"
	"github.com/fjod/go_storefront/internal/telemetry"
	"github.com/fjod/go_storefront/pkg/logger"
)

type eventPublisher interface {
	service.EventPublisher
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, logger.ParseLevel(cfg.LogLevel))
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("storefront stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(cfg.Tracing, os.Stderr)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Error("tracer shutdown failed", "error", err)
		}
	}()

	repo, err := openStateRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer repo.Close()

	// Remote backends
	httpClient := remote.NewHTTPClient(cfg.RemoteTimeout)
	catalog := remote.NewCatalogClient(remote.Config{BaseURL: cfg.CatalogAPIURL, HTTPClient: httpClient, Logger: log})
	data := remote.NewDataClient(remote.Config{BaseURL: cfg.DataAPIURL, HTTPClient: httpClient, Logger: log})

	authService, err := auth.NewService(data, auth.Config{
		Secret:            []byte(cfg.JWTSecret),
		TokenTTL:          cfg.SessionTTL,
		AdminLogins:       cfg.AdminLogins,
		AdminPasswordHash: cfg.AdminPasswordHash,
		AdminName:         cfg.AdminName,
	})
	if err != nil {
		return err
	}

	var events eventPublisher = publisher.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		events = publisher.NewKafkaPublisher(cfg.KafkaTopic, log, cfg.KafkaBrokers...)
		log.Info("publishing order events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	defer events.Close()

	registry := session.NewRegistry(repo, authService, session.Config{IdleTTL: cfg.SessionIdleTTL}, log)
	defer registry.Close()

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go registry.Run(sweepCtx)

	checkoutService := service.NewCheckoutService(data, events, log)
	orderService := service.NewOrderService(data)
	offerService := service.NewOfferService(data, catalog)
	adminService := service.NewAdminService(catalog, data, data)

	router := h.NewRouter(h.RouterConfig{
		Logger:             log,
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		AllowedOrigins:     cfg.AllowedOrigins,
		Sessions:           registry,
		Tokens:             authService,
		Products:           h.NewProductHandler(catalog, cfg.RequestTimeout),
		Cart:               h.NewCartHandler(catalog, cfg.RequestTimeout),
		Wishlist:           h.NewWishlistHandler(catalog, cfg.RequestTimeout),
		Auth:               h.NewAuthHandler(authService, cfg.RequestTimeout),
		Checkout:           h.NewCheckoutHandler(checkoutService, cfg.RequestTimeout),
		Orders:             h.NewOrdersHandler(orderService, cfg.RequestTimeout),
		Offers:             h.NewOffersHandler(offerService, cfg.RequestTimeout),
		Admin:              h.NewAdminHandler(adminService, cfg.RequestTimeout),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("storefront starting", "port", cfg.HTTPPort, "state_backend", cfg.StateBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}

// openStateRepository connects the configured key-value backend that mirrors
// session state.
func openStateRepository(ctx context.Context, cfg *config.Config, log *slog.Logger) (repository.StateRepository, error) {
	switch cfg.StateBackend {
	case config.BackendSQLite, config.BackendPostgres:
		repo, err := repository.NewSQLRepository(cfg.StateBackend, cfg.StateDSN)
		if err != nil {
			return nil, err
		}
		if err := repo.RunMigrations(); err != nil {
			repo.Close()
			return nil, err
		}
		log.Info("state stored in sql database", "driver", cfg.StateBackend)
		return repo, nil

	case config.BackendMongo:
		repo, err := repository.OpenMongoRepository(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		log.Info("state stored in MongoDB", "database", cfg.MongoDBName)
		return repo, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		log.Info("state stored in Redis", "addr", cfg.RedisAddr)
		return cache.NewRedisCache(client, cfg.StateTTL), nil

	default:
		log.Warn("state kept in memory only; it is lost on restart")
		return repository.NewMemoryRepository(), nil
	}
}
