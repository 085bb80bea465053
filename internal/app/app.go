package app

import (
	"context"
	"fmt"

	"github.com/kbukum/apierr/auth/jwt"
	"github.com/kbukum/apierr/auth/password"
	"github.com/kbukum/apierr/database"
	"github.com/kbukum/apierr/internal/account"
	"github.com/kbukum/apierr/logger"
	"github.com/kbukum/apierr/server"
)

// Run starts the service and blocks until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	logger.Init(cfg.Logging)
	log := logger.GetGlobalLogger().WithFields(logger.Fields(
		"environment", cfg.Environment,
		"version", cfg.Version,
	))

	pool, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := account.NewPGStore(pool)
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	tokens, err := jwt.NewService(cfg.JWT, func() *account.Claims { return &account.Claims{} })
	if err != nil {
		return err
	}
	svc := account.NewService(store, password.NewHasher(cfg.Password), tokens)

	srv := server.New(cfg.Server, log)
	srv.Engine().GET("/healthz", server.Health(pool.Ping))
	account.NewHandler(svc).Register(srv.Engine())
	if err := srv.Start(); err != nil {
		return err
	}
	log.Info("Service started", logger.Fields("name", cfg.Name))

	<-ctx.Done()
	log.Info("Shutting down")
	return srv.Stop(context.WithoutCancel(ctx))
}
