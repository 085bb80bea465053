package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kbukum/apierr/config"
	"github.com/kbukum/apierr/internal/app"
	"github.com/kbukum/apierr/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg app.Config
	if err := config.LoadConfig("accountd", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	if err := app.Run(ctx, cfg); err != nil {
		logger.Error("Service stopped", logger.ErrorFields("run", err))
		os.Exit(1)
	}
}
