package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/storefront/api/controllers"
	"github.com/angelmondragon/storefront/api/routes"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/internal/orders"
	"github.com/angelmondragon/storefront/internal/session"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/db"
	"github.com/angelmondragon/storefront/pkg/graphql"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/migrate"
	"github.com/angelmondragon/storefront/pkg/redis"
	"github.com/angelmondragon/storefront/pkg/storage"
)

const serviceName = "storefront-api"

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	readiness := map[string]controllers.Pinger{}

	var redisClient *redis.Client
	if cfg.Storage.UsesRedis() || cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, cfg.Storage.Namespace)
		if err != nil {
			return fmt.Errorf("bootstrap redis: %w", err)
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		readiness["redis"] = redisClient
	}

	var durable cart.Durable
	switch strings.ToLower(cfg.Storage.Driver) {
	case config.StorageDriverRedis:
		durable = storage.NewRedis(redisClient, 0)
	case config.StorageDriverSQL:
		dbClient, dbErr := db.New(ctx, cfg.DB, logg)
		if dbErr != nil {
			return fmt.Errorf("bootstrap database: %w", dbErr)
		}
		defer func() {
			err = multierr.Append(err, dbClient.Close())
		}()
		if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		readiness["database"] = dbClient
		durable = storage.NewSQL(dbClient.DB())
	default:
		durable = storage.NewMemory()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storefrontMetrics := metrics.NewStorefrontMetrics(registry)

	gql, err := graphql.NewClient(cfg.Catalog.URL,
		graphql.WithHTTPClient(&http.Client{Timeout: cfg.Catalog.Timeout}),
		graphql.WithBreaker(graphql.BreakerSettings{
			Name:        "catalog",
			MaxFailures: cfg.Catalog.BreakerFailures,
			OpenDelay:   cfg.Catalog.BreakerOpenDelay,
			OnStateChange: func(name string, from, to gobreaker.State) {
				logg.Warn(logg.WithFields(ctx, map[string]any{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				}), "graphql.breaker.state_change")
			},
		}),
	)
	if err != nil {
		return fmt.Errorf("build graphql client: %w", err)
	}

	catalogClient, err := catalog.NewClient(gql, storefrontMetrics)
	if err != nil {
		return err
	}
	var catalogService catalog.Service = catalogClient
	if redisClient != nil {
		catalogService = catalog.NewCachedCatalog(catalogClient, redisClient, cfg.Catalog.CacheTTL, logg)
	}

	orderClient, err := orders.NewClient(gql)
	if err != nil {
		return err
	}

	sessions, err := session.NewManager(session.Options{
		Namespace: cfg.Storage.Namespace,
		Durable:   durable,
		Submitter: orderClient,
		Logger:    logg,
		IdleTTL:   cfg.Session.IdleTTL,
		CartOpts:  []cart.Option{cart.WithMetrics(storefrontMetrics)},
		CheckoutOpts: []checkout.Option{
			checkout.WithMetrics(storefrontMetrics),
			checkout.WithSuccessDelay(cfg.Checkout.SuccessDelay),
			checkout.WithFlashDelay(cfg.Checkout.AddedFlashDelay),
		},
	})
	if err != nil {
		return fmt.Errorf("create session manager: %w", err)
	}
	defer func() {
		err = multierr.Append(err, sessions.Close())
	}()

	var idempotencyStore redis.IdempotencyStore
	if redisClient != nil {
		idempotencyStore = redisClient
	}

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			catalogService,
			sessions,
			idempotencyStore,
			readiness,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		),
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"storage": cfg.Storage.Driver,
	})
	logg.Info(logCtx, "starting api server")

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		return sessions.Run(groupCtx, cfg.Session.SweepInterval)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
