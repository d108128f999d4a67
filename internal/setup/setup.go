package setup

import (
	"context"
	"log"

	"github.com/redis/rueidis"
	"github.com/robalyx/presencerelay/internal/database"
	"github.com/robalyx/presencerelay/internal/redis"
	"github.com/robalyx/presencerelay/internal/setup/config"
	"github.com/robalyx/presencerelay/internal/setup/telemetry"
	"go.uber.org/zap"
)

// App bundles all core dependencies and services needed by the application.
// Each field represents a major subsystem that needs initialization and cleanup.
type App struct {
	Config       *config.Config     // Application configuration
	Logger       *zap.Logger        // Main application logger
	DBLogger     *zap.Logger        // Database-specific logger
	DB           database.Client    // Database connection pool
	RedisManager *redis.Manager     // Redis connection manager
	StatusClient rueidis.Client     // Redis client for session status, nil when Redis is disabled
	LogManager   *telemetry.Manager // Log management system
}

// InitializeApp bootstraps all application dependencies in the correct order,
// ensuring each component has its required dependencies available.
func InitializeApp(ctx context.Context, logDir string) (*App, error) {
	cfg, _, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	return InitializeAppWithConfig(ctx, cfg, logDir)
}

// InitializeAppWithConfig bootstraps the application from an already loaded config.
func InitializeAppWithConfig(ctx context.Context, cfg *config.Config, logDir string) (*App, error) {
	// Logging system is initialized first to capture setup issues
	logManager := telemetry.NewManager(logDir, &cfg.Common.Debug, &cfg.Common.Telemetry)

	logger, dbLogger, err := logManager.GetLoggers()
	if err != nil {
		return nil, err
	}

	db, err := database.NewConnection(ctx, &cfg.Common.Database, dbLogger.Named("database"), logManager.Tracing())
	if err != nil {
		return nil, err
	}

	redisManager := redis.NewManager(&cfg.Common.Redis, logger)

	var statusClient rueidis.Client
	if redisManager.Enabled() {
		statusClient, err = redisManager.GetClient(redis.StatusDBIndex)
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	return &App{
		Config:       cfg,
		Logger:       logger,
		DBLogger:     dbLogger.Named("database"),
		DB:           db,
		RedisManager: redisManager,
		StatusClient: statusClient,
		LogManager:   logManager,
	}, nil
}

// Cleanup ensures graceful shutdown of all components in reverse initialization order.
// Logs but does not fail on cleanup errors to ensure all components get cleanup attempts.
func (s *App) Cleanup(ctx context.Context) {
	// Close database connections
	if err := s.DB.Close(); err != nil {
		log.Printf("Failed to close database connection: %v", err)
	}

	// Close Redis connections
	s.RedisManager.Close()

	// Flush pending spans
	if err := s.LogManager.Stop(ctx); err != nil {
		log.Printf("Failed to stop telemetry: %v", err)
	}

	// Sync buffered logs last so every shutdown step is recorded
	if err := s.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	if err := s.DBLogger.Sync(); err != nil {
		log.Printf("Failed to sync DB logger: %v", err)
	}
}
