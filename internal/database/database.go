package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/robalyx/presencerelay/internal/database/migrations"
	"github.com/robalyx/presencerelay/internal/setup/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bunotel"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Client defines the methods that a database client must implement.
type Client interface {
	// Model returns the repository containing all model operations.
	Model() *Repository
	// Service returns the service containing all service operations.
	Service() *Service
	// Close gracefully shuts down the database connection.
	Close() error
	// DB returns the underlying bun.DB instance.
	DB() *bun.DB
}

// clientImpl represents the concrete implementation of the database client.
type clientImpl struct {
	db      *bun.DB
	logger  *zap.Logger
	repo    *Repository
	service *Service
}

// NewConnection establishes a new database connection for the configured driver
// and returns a Client instance.
func NewConnection(ctx context.Context, cfg *config.Database, logger *zap.Logger, tracing bool) (Client, error) {
	var db *bun.DB

	switch cfg.Driver {
	case config.DriverPostgres:
		sqldb := sql.OpenDB(pgdriver.NewConnector(
			pgdriver.WithAddr(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
			pgdriver.WithUser(cfg.User),
			pgdriver.WithPassword(cfg.Password),
			pgdriver.WithDatabase(cfg.DBName),
			pgdriver.WithInsecure(true),
			pgdriver.WithApplicationName("presencerelay"),
		))

		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
		sqldb.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Minute)
		sqldb.SetConnMaxIdleTime(time.Duration(cfg.MaxIdleTime) * time.Minute)

		db = bun.NewDB(sqldb, pgdialect.New())

	case config.DriverSQLite:
		sqldb, err := sql.Open("sqlite", cfg.Path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}

		// SQLite serialises writers, a single connection avoids lock contention
		sqldb.SetMaxOpenConns(1)

		db = bun.NewDB(sqldb, sqlitedialect.New())

	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnknownDatabaseDriver, cfg.Driver)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if tracing {
		db.AddQueryHook(bunotel.NewQueryHook(bunotel.WithDBName("presencerelay")))
	}

	if cfg.AutoMigrate {
		if err := Migrate(ctx, db, logger); err != nil {
			db.Close()
			return nil, err
		}
	}

	client := New(db, logger)

	logger.Info("Database connection established", zap.String("driver", cfg.Driver))

	return client, nil
}

// New wraps an existing bun.DB in a Client.
func New(db *bun.DB, logger *zap.Logger) Client {
	db.AddQueryHook(NewHook(logger))

	repo := NewRepository(db, logger)
	service := NewService(repo, logger)

	return &clientImpl{
		db:      db,
		logger:  logger,
		repo:    repo,
		service: service,
	}
}

// Migrate applies all pending migrations.
func Migrate(ctx context.Context, db *bun.DB, logger *zap.Logger) error {
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if !group.IsZero() {
		logger.Info("Automatically ran migrations", zap.String("group", group.String()))
	}

	return nil
}

// Close gracefully shuts down the database connection.
func (c *clientImpl) Close() error {
	err := c.db.Close()
	if err != nil {
		c.logger.Error("Failed to close database connection", zap.Error(err))
		return err
	}

	c.logger.Info("Database connection closed")

	return nil
}

// Model returns the repository containing all model operations.
func (c *clientImpl) Model() *Repository {
	return c.repo
}

// Service returns the service containing all service operations.
func (c *clientImpl) Service() *Service {
	return c.service
}

// DB returns the underlying bun.DB instance.
func (c *clientImpl) DB() *bun.DB {
	return c.db
}
