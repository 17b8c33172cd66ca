package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Cheertaboi/studio-pricing-service/internal/api"
	"github.com/Cheertaboi/studio-pricing-service/internal/cache"
	"github.com/Cheertaboi/studio-pricing-service/internal/config"
	"github.com/Cheertaboi/studio-pricing-service/internal/interfaces"
	"github.com/Cheertaboi/studio-pricing-service/internal/models"
	"github.com/Cheertaboi/studio-pricing-service/internal/pricing"
	"github.com/Cheertaboi/studio-pricing-service/internal/repository"
	"github.com/Cheertaboi/studio-pricing-service/internal/repository/memory"
	"github.com/Cheertaboi/studio-pricing-service/internal/service"
	"github.com/Cheertaboi/studio-pricing-service/pkg/db"
)

type backend struct {
	catalog     cache.Catalog
	usage       interfaces.UsageLookup
	redemptions interfaces.RedemptionStore
	close       func() error
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open backend", zap.Error(err))
	}
	defer b.close()

	catalog := cache.NewCachedCatalog(b.catalog, cache.NewDiscountCache(cfg.CacheTTL))
	applier := pricing.NewApplier(pricing.NewTotalizer(cfg.TaxRate))
	resolver := service.NewResolver(catalog, b.usage, applier, logger)

	handler := api.NewRouter(api.Deps{
		Pricing:      service.NewPricingService(catalog, resolver, applier, logger),
		Redemptions:  service.NewRedemptionService(catalog, b.redemptions, logger),
		Writer:       catalog,
		BatchWorkers: cfg.BatchWorkers,
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown", zap.Error(err))
		}
		close(idleConnsClosed)
	}()

	logger.Info("starting pricing-service", zap.String("addr", cfg.Addr), zap.Bool("postgres", cfg.UseDatabase()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("listen", zap.Error(err))
	}

	<-idleConnsClosed
	logger.Info("server stopped")
}

func newLogger(level string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		zcfg := zap.NewProductionConfig()
		if lvl, perr := zap.ParseAtomicLevel(level); perr == nil {
			zcfg.Level = lvl
		}
		logger, err = zcfg.Build()
	}
	if err != nil {
		panic(err)
	}
	return logger
}

// openBackend connects to Postgres when DB_HOST is configured and otherwise serves
// the YAML catalog file from memory.
func openBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (backend, error) {
	if cfg.UseDatabase() {
		conn, err := db.NewPostgresConnection(ctx, cfg.Postgres)
		if err != nil {
			return backend{}, err
		}
		if err := db.Migrate(ctx, conn); err != nil {
			conn.Close()
			return backend{}, err
		}
		usage := repository.NewUsageRepo(conn)
		return backend{
			catalog:     repository.NewDiscountRepo(conn),
			usage:       usage,
			redemptions: usage,
			close:       conn.Close,
		}, nil
	}

	var seed []models.Discount
	if cfg.CatalogFile != "" {
		discounts, err := memory.LoadCatalogFile(cfg.CatalogFile)
		if err != nil {
			return backend{}, err
		}
		seed = discounts
	}
	logger.Info("using in-memory catalog", zap.Int("discounts", len(seed)))

	store := memory.NewStore(seed)
	return backend{
		catalog:     store,
		usage:       store,
		redemptions: store,
		close:       func() error { return nil },
	}, nil
}
