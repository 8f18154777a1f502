package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/okbot/internal/app"
	"github.com/samvad-hq/okbot/internal/config"
	"github.com/samvad-hq/okbot/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "okbot start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("okbot starting", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.Build(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize okbot", "error", err.Error())
		return err
	}
	defer rt.Close()

	if err := rt.Bot.Run(ctx); err != nil {
		return fmt.Errorf("okbot run: %w", err)
	}
	return nil
}
