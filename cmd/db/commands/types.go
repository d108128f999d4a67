package commands

import (
	"errors"

	"github.com/robalyx/presencerelay/internal/database"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
)

var (
	ErrNameRequired     = errors.New("NAME argument required")
	ErrIDRequired       = errors.New("ID argument required")
	ErrInvalidSnowflake = errors.New("argument is not a valid Discord ID")
)

// CLIDependencies holds the common dependencies needed by CLI commands.
type CLIDependencies struct {
	DB       database.Client
	Migrator *migrate.Migrator
	Logger   *zap.Logger
}
