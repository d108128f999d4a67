package redis

import (
	"errors"
	"fmt"
	"sync"

	"github.com/redis/rueidis"
	"github.com/robalyx/presencerelay/internal/setup/config"
	"go.uber.org/zap"
)

// ErrRedisDisabled is returned when a client is requested but Redis is not configured.
var ErrRedisDisabled = errors.New("redis is disabled")

// StatusDBIndex holds session heartbeats.
const StatusDBIndex = 0

// Manager maintains a thread-safe mapping of database indices to Redis clients.
// Clients are created lazily on first use.
type Manager struct {
	clients map[int]rueidis.Client
	config  *config.Redis
	logger  *zap.Logger
	mu      sync.Mutex
}

// NewManager creates a Redis connection manager with an empty client pool.
func NewManager(config *config.Redis, logger *zap.Logger) *Manager {
	return &Manager{
		clients: make(map[int]rueidis.Client),
		config:  config,
		logger:  logger.Named("redis"),
	}
}

// Enabled reports whether Redis is configured.
func (m *Manager) Enabled() bool {
	return m.config.Enabled
}

// GetClient retrieves or creates a Redis client for the specified database index.
func (m *Manager) GetClient(dbIndex int) (rueidis.Client, error) {
	if !m.config.Enabled {
		return nil, ErrRedisDisabled
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if client, exists := m.clients[dbIndex]; exists {
		return client, nil
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)},
		Username:     m.config.Username,
		Password:     m.config.Password,
		SelectDB:     dbIndex,
		ClientName:   "presencerelay",
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis client for DB %d: %w", dbIndex, err)
	}

	m.clients[dbIndex] = client
	m.logger.Info("Created new Redis client", zap.Int("dbIndex", dbIndex))
	return client, nil
}

// Close shuts down all active Redis clients. Safe to call multiple times.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for dbIndex, client := range m.clients {
		client.Close()
		delete(m.clients, dbIndex)
		m.logger.Info("Closed Redis client", zap.Int("dbIndex", dbIndex))
	}
}
