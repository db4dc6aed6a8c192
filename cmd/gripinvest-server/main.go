package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobmcallan/gripinvest/internal/app"
	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to gripinvest.toml (defaults to GRIPINVEST_CONFIG)")
	flag.Parse()

	a, err := app.NewApp(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	common.PrintBanner(a.Config, a.Logger)

	// Start background services
	if err := a.StartMaturityScheduler(); err != nil {
		a.Logger.Error().Err(err).Msg("Maturity scheduler not started")
	}

	srv := server.NewServer(a)

	// Start HTTP server
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	a.Logger.Info().
		Str("url", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)).
		Msg("Server ready")

	// Wait for interrupt signal or a listener failure
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	select {
	case <-sigChan:
		a.Logger.Info().Msg("Shutdown signal received")
	case err := <-serverErr:
		a.Logger.Error().Err(err).Msg("HTTP server failed")
		exitCode = 1
	}

	common.PrintShutdownBanner(a.Logger)

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	a.Close()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
