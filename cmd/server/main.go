// Command server runs the courier messaging API.
//
// Configuration is layered: built-in defaults, then an optional YAML file
// (-config flag, COURIER_CONFIG, ./config.yaml, /etc/courier/config.yaml),
// then environment variable overrides:
//
//	COURIER_PORT             - Listen port (default: 3000)
//	COURIER_STORAGE          - Storage type: "memory" or "postgres" (default: "memory")
//	COURIER_DSN              - PostgreSQL connection string
//	COURIER_MIGRATE_ON_START - Apply schema migrations at startup ("true"/"false")
//	COURIER_TOKEN_SECRET     - Session token signing secret (required)
//	COURIER_TOKEN_TTL        - Session token lifetime (default: 24h, 0 = non-expiring)
//	COURIER_BCRYPT_COST      - Password hashing work factor (default: 12)
//	COURIER_METRICS_ENABLED  - Expose Prometheus metrics ("true"/"false")
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/courier-chat/courier/pkg/auth"
	"github.com/courier-chat/courier/pkg/config"
	"github.com/courier-chat/courier/pkg/storage"
	"github.com/courier-chat/courier/pkg/storage/memory"
	"github.com/courier-chat/courier/pkg/storage/postgres"
	"github.com/courier-chat/courier/pkg/transport"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx := context.Background()

	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	defer store.Close()

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret: []byte(cfg.Auth.TokenSecret),
		TTL:    cfg.Auth.TokenTTL,
	})
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	handler := transport.NewHandler(
		store,
		auth.NewVerifier(store, logger),
		auth.NewHasher(cfg.Auth.BcryptCost),
		tokens,
		transport.HandlerConfig{
			MaxBodySize: cfg.Server.MaxBodySize,
			Logger:      logger,
		},
	)

	mux := http.NewServeMux()
	mux.Handle("/", handler.Routes())
	if cfg.Observability.Metrics.Enabled {
		mux.Handle("GET "+cfg.Observability.Metrics.Path, promhttp.Handler())
		logger.Info("metrics enabled", "path", cfg.Observability.Metrics.Path)
	}

	srv := transport.NewServer(mux,
		transport.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transport.WithReadTimeout(cfg.Server.ReadTimeout),
		transport.WithWriteTimeout(cfg.Server.WriteTimeout),
		transport.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transport.WithLogger(logger),
	)

	return srv.ListenAndServe()
}

func newStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	switch cfg.Storage.Type {
	case "postgres":
		store, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("storage enabled", "type", "postgres", "migrate_on_start", cfg.Storage.Postgres.MigrateOnStart)
		return store, nil
	default:
		logger.Info("storage enabled", "type", "memory")
		return memory.New(), nil
	}
}
