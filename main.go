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
	"github.com/webpro/backend/internal/config"
	"github.com/webpro/backend/internal/db"
	"github.com/webpro/backend/internal/handler"
	"github.com/webpro/backend/internal/logging"
	"github.com/webpro/backend/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger logging.Logger) error {
	settings, err := service.ParseAuthConfig(cfg.Auth)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	codec, err := service.NewTokenCodec(settings.Secret, settings.TokenTTL)
	if err != nil {
		return err
	}
	hasher, err := service.NewPasswordHasher(settings.BcryptCost)
	if err != nil {
		return err
	}

	authService := service.NewAuthService(store, codec, hasher,
		service.WithSignup(settings.AllowSignup),
		service.WithLogger(logger.With("component", "auth")),
	)

	if cfg.Auth.AdminUsername != "" || cfg.Auth.AdminPassword != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	if err := handler.SetMode(cfg.Server.GinMode); err != nil {
		return err
	}
	router := handler.NewRouter(handler.RouterDeps{
		Auth:          authService,
		Authenticator: service.NewRequestAuthenticator(codec, store, time.Now),
		CORS:          cfg.CORS,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server listening", "addr", srv.Addr, "store", cfg.Store.Kind, "token_ttl", settings.TokenTTL.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info(shutdownCtx, "shutting down")
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.Config, logger logging.Logger) (service.IdentityStore, func(), error) {
	switch cfg.Store.Kind {
	case config.StoreMemory:
		logger.Warn(ctx, "using in-memory identity store; accounts are lost on restart")
		return db.NewMemoryStore(), func() {}, nil
	case config.StorePostgres:
		pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return db.NewPostgres(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown STORE %q", service.ErrMisconfigured, cfg.Store.Kind)
	}
}
