package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/robalyx/presencerelay/cmd/db/commands"
	"github.com/robalyx/presencerelay/internal/database"
	"github.com/robalyx/presencerelay/internal/database/migrations"
	"github.com/robalyx/presencerelay/internal/setup/config"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	// Setup dependencies
	deps, err := setupDependencies()
	if err != nil {
		return fmt.Errorf("failed to setup dependencies: %w", err)
	}
	defer deps.DB.Close()

	app := &cli.Command{
		Name:     "db",
		Usage:    "Database management tool",
		Commands: append(commands.MigrationCommands(deps), commands.LinkCommands(deps)...),
	}

	return app.Run(context.Background(), os.Args)
}

// setupDependencies initializes the database connection and migrator.
func setupDependencies() (*commands.CLIDependencies, error) {
	// Load full configuration
	cfg, _, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Create development logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	// Migrations are driven by this tool, never on connect
	dbCfg := cfg.Common.Database
	dbCfg.AutoMigrate = false

	db, err := database.NewConnection(context.Background(), &dbCfg, logger, false)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &commands.CLIDependencies{
		DB:       db,
		Migrator: migrate.NewMigrator(db.DB(), migrations.Migrations),
		Logger:   logger,
	}, nil
}
