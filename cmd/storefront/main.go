package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/thedivyam/noon-sde3/api/routes"
	"github.com/thedivyam/noon-sde3/internal/cart"
	"github.com/thedivyam/noon-sde3/internal/catalog"
	"github.com/thedivyam/noon-sde3/internal/checkout"
	"github.com/thedivyam/noon-sde3/internal/notifications"
	"github.com/thedivyam/noon-sde3/internal/theme"
	"github.com/thedivyam/noon-sde3/pkg/config"
	"github.com/thedivyam/noon-sde3/pkg/kv"
	"github.com/thedivyam/noon-sde3/pkg/logger"
	"github.com/thedivyam/noon-sde3/pkg/metrics"
	"github.com/thedivyam/noon-sde3/pkg/swapi"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "storefront stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	storage, err := kv.Open(ctx, cfg, logg)
	if err != nil {
		return fmt.Errorf("bootstrap storage: %w", err)
	}
	defer func() {
		err = multierr.Append(err, storage.Close())
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storefrontMetrics := metrics.NewStorefrontMetrics(registry)
	catalogMetrics := metrics.NewCatalogMetrics(registry)

	hub := notifications.NewHub(logg, cfg.Notifications.SubscriberBuffer)
	defer hub.Close()

	taxRate := decimal.NewFromFloat(cfg.Pricing.TaxRate)
	cartStore := cart.NewStore(storage, hub, logg, storefrontMetrics, cart.Options{
		StorageKey:  cfg.Cart.StorageKey,
		MaxQuantity: cfg.Cart.MaxQuantity,
		TaxRate:     &taxRate,
	})
	themeStore := theme.NewStore(storage, logg, storefrontMetrics, cfg.Theme.StorageKey)

	client := newCatalogClient(cfg.Catalog, catalogMetrics)
	catalogService, err := catalog.NewService(client, logg)
	if err != nil {
		return fmt.Errorf("bootstrap catalog: %w", err)
	}
	searcher := catalog.NewSearcher(client, logg, cfg.Search.Debounce)
	defer searcher.Close()

	checkoutService, err := checkout.NewService(cartStore, hub, logg, storefrontMetrics, cfg.Pricing.Currency)
	if err != nil {
		return fmt.Errorf("bootstrap checkout: %w", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, storage, registry, catalogService, searcher, cartStore, checkoutService, themeStore, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	// Rehydrate in the background; mutations are rejected until this finishes.
	g.Go(func() error {
		cartStore.Initialize(gctx)
		themeStore.Initialize(gctx)
		return nil
	})

	g.Go(func() error {
		logCtx := logg.WithFields(gctx, map[string]any{
			"env":            cfg.App.Env,
			"addr":           addr,
			"storage_driver": cfg.Storage.Driver,
		})
		logg.Info(logCtx, "starting storefront server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logg.Info(context.Background(), "shutting down storefront server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()

		// end notification streams first so Shutdown is not held open by them
		hub.Close()
		return multierr.Append(server.Shutdown(shutdownCtx), cartStore.Close(shutdownCtx))
	})

	return g.Wait()
}

func newCatalogClient(cfg config.CatalogConfig, observer swapi.Observer) *swapi.Client {
	opts := []swapi.Option{
		swapi.WithBaseURL(cfg.BaseURL),
		swapi.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		swapi.WithMaxPages(cfg.MaxPages),
		swapi.WithObserver(observer),
	}
	if cfg.RatePerSec > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		opts = append(opts, swapi.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.RatePerSec), burst)))
	}
	return swapi.NewClient(opts...)
}
