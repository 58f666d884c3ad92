package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/splitledger/splitledger/internal/api"
	"github.com/splitledger/splitledger/internal/auth"
	"github.com/splitledger/splitledger/internal/config"
	"github.com/splitledger/splitledger/internal/events"
	"github.com/splitledger/splitledger/internal/service"
	"github.com/splitledger/splitledger/internal/storage"
	"github.com/splitledger/splitledger/internal/storage/postgres"
	"github.com/splitledger/splitledger/internal/storage/sqlite"
	"github.com/splitledger/splitledger/pkg/logging"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	level := logging.ParseLevel(cfg.Log.Level)
	if cfg.Log.JSON {
		logging.SetupJSON(level)
	} else {
		logging.SetupWithLevel(level)
	}

	if cfg.Auth.JWTSecret == "" {
		slog.Error("auth.jwt_secret is required (SPL_AUTH_JWT_SECRET)")
		os.Exit(1)
	}

	store, members, verifier, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err, "driver", cfg.Store.Driver)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "driver", cfg.Store.Driver)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry, cfg.Auth.StepUpExpiry)
	svc := service.NewSettlementService(store, members, events.LogPublisher{}, cfg.Settlement.StepUpThreshold)

	handler := api.NewHandler(svc, jwtManager, verifier)
	router := api.NewRouter(handler, jwtManager)

	// Wrap with h2c for HTTP/2 without TLS.
	h2cHandler := h2c.NewHandler(router, &http2.Server{})

	addr := cfg.Server.Addr()
	slog.Info("Ledger server starting",
		"address", addr,
		"step_up_threshold", cfg.Settlement.StepUpThreshold,
	)
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// openStore builds the configured backend along with its membership view
// and PIN verifier (both stores implement all three contracts).
func openStore(cfg *config.Config) (storage.Store, storage.Membership, *auth.PinVerifier, error) {
	switch cfg.Store.Driver {
	case "postgres":
		ctx := context.Background()
		pool, err := postgres.NewPool(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		store := postgres.New(pool)
		return store, store, auth.NewPinVerifier(store), nil
	default:
		store, err := sqlite.New(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, store, auth.NewPinVerifier(store), nil
	}
}
