package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"go.uber.org/zap"

	"github.com/GlebRadaev/stockfolio/internal/app"
)

//	@title			Stockfolio API
//	@version		1.0
//	@description	Stakes, transfers and ledger API

// @host		localhost:8080
// @BasePath	/
func main() {
	// zap is only configured inside Start, so errors that end the process are
	// reported through a plain stderr logger that needs no configuration.
	boot := bootLogger(os.Stderr)
	if err := run(); err != nil {
		boot.Fatal().Err(err).Msg("stockfolio stopped")
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application := app.New()
	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer func() { _ = zap.L().Sync() }()

	if err := application.Wait(ctx, stop); err != nil {
		return fmt.Errorf("all systems closed with errors: %w", err)
	}
	zap.L().Info("all systems closed without errors")
	return nil
}

func bootLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Str("service", "stockfolio").Logger()
}
