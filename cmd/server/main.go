package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MarcosLaine/Controle-se-sub003/internal/app"
	"github.com/MarcosLaine/Controle-se-sub003/internal/common"
	"github.com/MarcosLaine/Controle-se-sub003/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file (toml)")
	flag.Parse()

	a, err := app.NewApp(*configPath)
	if err != nil {
		bootstrap := common.NewLogger("info")
		bootstrap.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer a.Close()

	common.PrintBanner(a.Config, a.Logger)

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
		a.Logger.Fatal().Err(err).Msg("Server failed")
	case sig := <-sigCh:
		a.Logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("Graceful shutdown failed")
	}

	common.PrintShutdownBanner(a.Logger)
}
