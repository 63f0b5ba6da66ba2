// Command market-server runs the simulated market and portfolio valuation
// service: a REST API plus a scheduled background cycle that mutates asset
// prices and revalues user portfolios.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Ranjith-H7/backend/internal/app"
	"github.com/Ranjith-H7/backend/internal/common"
	"github.com/Ranjith-H7/backend/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env for local development; a missing file is fine.
	_ = godotenv.Load()

	configPath := os.Getenv("MARKET_CONFIG")
	if configPath == "" {
		configPath = "market.toml"
	}

	a, err := app.NewApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	common.PrintBanner(a.Config, a.Logger)

	seedCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	if err := a.Seed(seedCtx); err != nil {
		return err
	}

	if err := a.StartScheduler(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	srv := server.NewServer(a)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		a.Logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	common.PrintShutdownBanner(a.Logger)
	return nil
}
