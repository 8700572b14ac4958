package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/shopmart/shopmart-backend/api/controllers"
	"github.com/shopmart/shopmart-backend/api/routes"
	"github.com/shopmart/shopmart-backend/internal/auth"
	"github.com/shopmart/shopmart-backend/internal/cart"
	"github.com/shopmart/shopmart-backend/internal/catalog"
	"github.com/shopmart/shopmart-backend/internal/orders"
	"github.com/shopmart/shopmart-backend/internal/wishlist"
	"github.com/shopmart/shopmart-backend/pkg/config"
	"github.com/shopmart/shopmart-backend/pkg/db"
	"github.com/shopmart/shopmart-backend/pkg/kv"
	"github.com/shopmart/shopmart-backend/pkg/logger"
	"github.com/shopmart/shopmart-backend/pkg/metrics"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	store, storePinger, closers, err := newStore(context.Background(), cfg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap session store", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeAll(closers); err != nil {
			logg.Error(context.Background(), "error closing session store", err)
		}
	}()

	upstream, err := catalog.NewClient(cfg.Upstream.BaseURL, catalog.WithTimeout(cfg.Upstream.Timeout))
	if err != nil {
		logg.Error(context.Background(), "failed to build upstream client", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cart.ServiceParams{Store: store, Logger: logg})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Store:  store,
		Cart:   cartService,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Store:  store,
		Client: upstream,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		Store:  store,
		Client: upstream,
		Tokens: authService,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"storage": cfg.Storage.Backend,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			httpMetrics,
			registry,
			storePinger,
			upstream,
			cartService,
			ordersService,
			wishlistService,
			authService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		timeout, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(timeout); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

// newStore wires the configured session storage backend.
func newStore(ctx context.Context, cfg *config.Config) (kv.Store, controllers.Pinger, []io.Closer, error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendRedis:
		redisStore, err := kv.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		return redisStore, redisStore, []io.Closer{redisStore}, nil
	default:
		dbClient, err := db.New(ctx, cfg.DB)
		if err != nil {
			return nil, nil, nil, err
		}
		dbStore, err := kv.NewDatabase(dbClient.DB())
		if err != nil {
			return nil, nil, nil, multierr.Append(err, dbClient.Close())
		}
		return dbStore, dbClient, []io.Closer{dbClient}, nil
	}
}

func closeAll(closers []io.Closer) error {
	var err error
	for _, closer := range closers {
		err = multierr.Append(err, closer.Close())
	}
	return err
}
