package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/cityguide/internal/app"
	"github.com/playperu/cityguide/internal/catalog"
	"github.com/playperu/cityguide/internal/config"
	"github.com/playperu/cityguide/internal/database"
	"github.com/playperu/cityguide/internal/entitlement"
	"github.com/playperu/cityguide/internal/gate"
	"github.com/playperu/cityguide/internal/geo"
	"github.com/playperu/cityguide/internal/guide"
	"github.com/playperu/cityguide/internal/handler/health"
	"github.com/playperu/cityguide/internal/license"
	"github.com/playperu/cityguide/internal/migrations"
	"github.com/playperu/cityguide/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	checks := map[string]health.Checker{}

	// --- Entitlements ---
	backend, closeBackend, err := openBackend(ctx, cfg, logger, checks)
	if err != nil {
		return err
	}
	defer closeBackend()

	prefix := entitlement.PrefixCode
	if cfg.LicenseStrategy == config.StrategyRemote {
		prefix = entitlement.PrefixLicense
	}
	demoKey := guide.CityKey(cfg.DemoCity)
	store := entitlement.New(backend, prefix, demoKey)
	checks["entitlements"] = health.EntitlementChecker{Store: store}

	// --- Licences ---
	table, err := license.LoadTable(cfg.LicenseTable)
	if err != nil {
		return fmt.Errorf("loading licence table: %w", err)
	}
	var verifier license.Verifier = license.NewPrefixVerifier(table)
	if cfg.LicenseStrategy == config.StrategyRemote {
		verifier = license.NewRemoteVerifier(cfg.LicenseAPIURL, cfg.LicenseTimeout, table)
	}
	verifier = license.Instrument(verifier, cfg.LicenseStrategy)
	purchase := license.Purchase{Base: cfg.PurchaseBaseURL, Vendor: cfg.VendorUsername, Table: table}
	logger.Info("licence verification configured", "strategy", cfg.LicenseStrategy, "cities", len(table))

	// --- Catalog, gate, controller ---
	loader := catalog.NewCoalesced(catalog.NewFSLoader(os.DirFS(cfg.DataDir), logger))
	g := gate.New(loader, store, verifier, purchase.URL, logger)

	locator, err := newLocator(cfg)
	if err != nil {
		return err
	}
	ctrl := app.New(g, locator, cfg.Cities, logger)

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, ctrl, cfg.SPADir, func(r chi.Router) {
		r.Mount("/healthz", health.NewHandler(logger, checks).Routes())
		r.Handle("/metrics", promhttp.Handler())
	})

	// --- Run ---
	eg, gctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	eg.Go(func() error {
		if err := ctrl.Start(gctx); err != nil {
			logger.Error("initial city selection failed", "error", err)
		}
		if err := ctrl.RequestLocation(gctx); err != nil {
			logger.Info("no position yet", "error", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return eg.Wait()
}

// openBackend connects the configured entitlement backend and registers
// its health check.
func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger, checks map[string]health.Checker) (entitlement.Backend, func(), error) {
	switch cfg.EntitlementBackend {
	case config.BackendMemory:
		logger.Warn("entitlements are kept in memory and lost on restart")
		return entitlement.NewMemoryBackend(), func() {}, nil

	case config.BackendRedis:
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		logger.Info("connected to redis")
		checks["redis"] = health.RedisChecker{Client: rdb}
		return entitlement.NewRedisBackend(rdb), func() { rdb.Close() }, nil

	default:
		db, err := openSQLite(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("connected to sqlite", "path", cfg.DBPath)
		checks["sqlite"] = health.DBChecker{DB: db}
		return entitlement.NewSQLiteBackend(db), func() { db.Close() }, nil
	}
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := database.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("connecting to sqlite: %w", err)
	}
	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

func newLocator(cfg *config.Config) (geo.Locator, error) {
	if cfg.GeoFixed == "" {
		return geo.NewTracker(cfg.GeoTimeout, cfg.GeoMaxAge), nil
	}
	pos, err := catalog.ParseLatLng(cfg.GeoFixed)
	if err != nil {
		return nil, fmt.Errorf("parsing GEO_FIXED: %w", err)
	}
	return geo.Fixed(pos), nil
}
