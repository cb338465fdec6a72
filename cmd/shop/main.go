package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"ShadesStore/internal/auth"
	"ShadesStore/internal/cart"
	"ShadesStore/internal/catalog"
	"ShadesStore/internal/config"
	"ShadesStore/internal/seed"
	"ShadesStore/internal/shop"
	"ShadesStore/pkg/kit"
)

const startupTimeout = 10 * time.Second

func main() {
	service := "shop"

	cfg, help, err := config.Load(".env")
	if err != nil {
		if errors.Is(err, config.ErrHelpWanted) {
			fmt.Println(help)
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := kit.NewLogger(service, kit.LogConfig{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("config loaded", zap.String("config", cfg.String()))

	store, users, err := loadData(cfg, log)
	if err != nil {
		log.Fatal("load data failed", zap.Error(err))
	}

	creds := auth.NewMemStore(seed.Credentials(users))

	brands, products := store.Counts()
	log.Info("data loaded",
		zap.Int("brands", brands),
		zap.Int("products", products),
		zap.Int("users", creds.Len()),
	)
	if err := store.Ping(context.Background()); err != nil {
		log.Warn("catalog empty, readiness will fail", zap.Error(err))
	}

	h := shop.NewHandler(shop.Deps{
		Catalog:         store,
		Users:           creds,
		Carts:           cart.NewMemStore(seed.Carts(users)),
		TokenTTL:        cfg.Auth.TokenTTL,
		MaxFailedLogins: cfg.Auth.MaxFailedLogins,
		LoginRatePerMin: cfg.Auth.LoginRatePerMin,
	}, shop.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
	})

	err = kit.RunHTTPServer(kit.ServerConfig{
		Addr:              cfg.Web.Addr,
		ReadHeaderTimeout: cfg.Web.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.Web.ShutdownTimeout,
	}, h, log)
	if err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

// loadData returns the catalog and the seeded users. With a database URL
// the catalog is snapshotted from postgres; users always come from files.
func loadData(cfg config.Config, log *zap.Logger) (*catalog.MemStore, []seed.User, error) {
	fsys := seed.Source(cfg.Data.Dir)

	if cfg.Data.DatabaseURL == "" {
		data, err := seed.Load(fsys)
		if err != nil {
			return nil, nil, err
		}
		return catalog.NewMemStore(data.Brands, data.Products), data.Users, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	db, err := catalog.OpenPostgres(ctx, cfg.Data.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = db.Close() }()

	store, err := catalog.LoadFromPostgres(ctx, db)
	if err != nil {
		return nil, nil, err
	}
	log.Info("catalog loaded from postgres")

	users, err := seed.LoadUsers(fsys)
	if err != nil {
		return nil, nil, err
	}
	return store, users, nil
}
