package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robalyx/presencerelay/internal/relay"
	"github.com/robalyx/presencerelay/internal/setup"
	"go.uber.org/zap"
)

const (
	// BotLogDir specifies where bot log files are stored.
	BotLogDir = "logs/bot_logs"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	// Cancel on interrupt so every component shuts down in order
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize application with required dependencies
	app, err := setup.InitializeApp(ctx, BotLogDir)
	if err != nil {
		return err
	}
	defer app.Cleanup(context.Background())

	r, err := relay.New(app.Config, app.DB, app.StatusClient, app.Logger)
	if err != nil {
		app.Logger.Error("Failed to create relay", zap.Error(err))
		return err
	}

	log.Println("Relay has been started. Waiting for interrupt signal to gracefully shutdown...")

	return r.Run(ctx)
}
