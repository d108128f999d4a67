package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
	ErrUnknownDatabaseDriver = errors.New("unknown database driver")
)

// RepositoryVersion is the repository version tag for config file references.
const RepositoryVersion = "v0.1.0"

// Current version of the config file.
const (
	CurrentCommonVersion = 1
	CurrentBotVersion    = 1
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DefaultCooldownSeconds is the minimum time between two notifications for the same account.
const DefaultCooldownSeconds = 300

// Config represents the entire application configuration.
type Config struct {
	Common CommonConfig `koanf:"common"`
	Bot    BotConfig    `koanf:"bot"`
}

// CommonConfig contains infrastructure configuration.
type CommonConfig struct {
	// Version of the common config.
	Version   int       `koanf:"version"`
	Debug     Debug     `koanf:"debug"`
	Database  Database  `koanf:"database"`
	Redis     Redis     `koanf:"redis"`
	Telemetry Telemetry `koanf:"telemetry"`
}

// BotConfig contains configuration for the relay itself.
type BotConfig struct {
	// Version of the bot config.
	Version  int      `koanf:"version"`
	Discord  Discord  `koanf:"discord"`
	Steam    Steam    `koanf:"steam"`
	Pipeline Pipeline `koanf:"pipeline"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Maximum log session directories to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
}

// Database contains database connection configuration.
type Database struct {
	// Driver is either "postgres" or "sqlite".
	Driver string `koanf:"driver"`
	// Database hostname.
	Host string `koanf:"host"`
	// Database port.
	Port int `koanf:"port"`
	// Database username.
	User string `koanf:"user"`
	// Database password.
	Password string `koanf:"password"`
	// Database name.
	DBName string `koanf:"db_name"`
	// Path of the SQLite database file.
	Path string `koanf:"path"`
	// Maximum open connections.
	MaxOpenConns int `koanf:"max_open_conns"`
	// Maximum idle connections.
	MaxIdleConns int `koanf:"max_idle_conns"`
	// Connection lifetime in minutes.
	MaxLifetime int `koanf:"max_lifetime"`
	// Idle timeout in minutes.
	MaxIdleTime int `koanf:"max_idle_time"`
	// Run pending migrations on startup.
	AutoMigrate bool `koanf:"auto_migrate"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	// Enable status reporting to Redis.
	Enabled bool `koanf:"enabled"`
	// Redis hostname.
	Host string `koanf:"host"`
	// Redis port.
	Port int `koanf:"port"`
	// Redis username.
	Username string `koanf:"username"`
	// Redis password.
	Password string `koanf:"password"`
}

// Telemetry contains tracing configuration.
type Telemetry struct {
	// Uptrace DSN. Tracing is disabled when empty.
	UptraceDSN string `koanf:"uptrace_dsn"`
	// Service name reported with traces.
	ServiceName string `koanf:"service_name"`
}

// Discord contains Discord bot configuration.
type Discord struct {
	// Discord bot token for authentication.
	Token string `koanf:"token"`
}

// Steam contains the credentials of the service account.
type Steam struct {
	// Steam account name.
	AccountName string `koanf:"account_name"`
	// Steam account password.
	Password string `koanf:"password"`
	// Base64 shared secret of the mobile authenticator, used to derive guard codes.
	SharedSecret string `koanf:"shared_secret"`
	// One-shot guard code, used when no shared secret is configured.
	GuardCode string `koanf:"guard_code"`
}

// Pipeline contains presence pipeline tuning.
type Pipeline struct {
	// Minimum seconds between two notifications for the same account.
	CooldownSeconds int `koanf:"cooldown_seconds"`
	// Number of event workers.
	Workers int `koanf:"workers"`
	// Queue capacity per worker.
	QueueSize int `koanf:"queue_size"`
}

// Cooldown returns the configured cooldown, falling back to the default.
func (p Pipeline) Cooldown() time.Duration {
	if p.CooldownSeconds <= 0 {
		return DefaultCooldownSeconds * time.Second
	}
	return time.Duration(p.CooldownSeconds) * time.Second
}

// LoadConfig loads the configuration from the config search paths.
// Returns the config along with the used config directory.
func LoadConfig() (*Config, string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return LoadConfigFrom([]string{
		".presencerelay",
		homeDir + "/.presencerelay/config",
		"/etc/presencerelay/config",
		"/app/config",
		"config",
		".",
	})
}

// LoadConfigFrom loads the configuration from the first matching path for each config file.
func LoadConfigFrom(configPaths []string) (*Config, string, error) {
	k := koanf.New(".")

	var usedConfigPath string

	configFiles := []string{"common", "bot"}
	for _, configName := range configFiles {
		configLoaded := false

		for _, path := range configPaths {
			configPath := fmt.Sprintf("%s/%s.toml", path, configName)
			// Each file is loaded under its own prefix so top-level keys do not collide
			fileKoanf := koanf.New(".")
			if err := fileKoanf.Load(file.Provider(configPath), toml.Parser()); err == nil {
				if err := k.MergeAt(fileKoanf, configName); err != nil {
					return nil, "", fmt.Errorf("failed to merge %s.toml: %w", configName, err)
				}

				configLoaded = true

				if usedConfigPath == "" {
					usedConfigPath = path
				}

				break
			}
		}

		if !configLoaded {
			return nil, "", fmt.Errorf("%w: %s.toml", ErrConfigFileNotFound, configName)
		}
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := checkConfigVersion("common", config.Common.Version, CurrentCommonVersion); err != nil {
		return nil, "", err
	}

	if err := checkConfigVersion("bot", config.Bot.Version, CurrentBotVersion); err != nil {
		return nil, "", err
	}

	if err := config.validate(); err != nil {
		return nil, "", err
	}

	return &config, usedConfigPath, nil
}

// validate fills defaults and rejects unusable values.
func (c *Config) validate() error {
	switch c.Common.Database.Driver {
	case "":
		c.Common.Database.Driver = DriverSQLite
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownDatabaseDriver, c.Common.Database.Driver)
	}

	if c.Common.Database.Driver == DriverSQLite && c.Common.Database.Path == "" {
		c.Common.Database.Path = "presencerelay.db"
	}

	if c.Common.Debug.LogLevel == "" {
		c.Common.Debug.LogLevel = "info"
	}

	if c.Common.Debug.MaxLogsToKeep <= 0 {
		c.Common.Debug.MaxLogsToKeep = 10
	}

	if c.Bot.Pipeline.Workers <= 0 {
		c.Bot.Pipeline.Workers = 4
	}

	if c.Bot.Pipeline.QueueSize <= 0 {
		c.Bot.Pipeline.QueueSize = 256
	}

	return nil
}

// checkConfigVersion checks if the config file version is correct.
func checkConfigVersion(name string, current, expected int) error {
	if current == 0 {
		return fmt.Errorf("%w: %s.toml", ErrConfigVersionMissing, name)
	}

	if current != expected {
		return fmt.Errorf(
			"%w: %s.toml (got: %d, expected: %d)\n"+
				"Please update your config file from: https://github.com/robalyx/presencerelay/tree/%s/config/%s.toml",
			ErrConfigVersionMismatch,
			name,
			current,
			expected,
			RepositoryVersion,
			name,
		)
	}

	return nil
}
