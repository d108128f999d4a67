package steam

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

const (
	// HeartbeatInterval is how often the session status is published.
	HeartbeatInterval = 10 * time.Second

	// HeartbeatTTL is how long a published status remains valid.
	HeartbeatTTL = 1 * time.Minute

	statusKeyPrefix = "presencerelay:session:"
)

// StatusSource provides the session status to publish.
type StatusSource interface {
	Status() Status
}

// ReportedStatus is the JSON payload stored in Redis.
type ReportedStatus struct {
	InstanceID string    `json:"instanceId"`
	State      string    `json:"state"`
	Online     bool      `json:"online"`
	Friends    int       `json:"friends"`
	LastError  string    `json:"lastError,omitempty"`
	LastSeen   time.Time `json:"lastSeen"`
}

// StatusReporter publishes the session status to Redis as a heartbeat key.
type StatusReporter struct {
	client     rueidis.Client
	source     StatusSource
	instanceID string
	stopChan   chan struct{}
	doneChan   chan struct{}
	started    bool
	stopped    bool
	mu         sync.Mutex
	logger     *zap.Logger
}

// NewStatusReporter creates a new status reporter for the session.
func NewStatusReporter(client rueidis.Client, source StatusSource, logger *zap.Logger) *StatusReporter {
	return &StatusReporter{
		client:     client,
		source:     source,
		instanceID: uuid.New().String(),
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
		logger:     logger.Named("status_reporter"),
	}
}

// Key returns the Redis key the status is stored under.
func (r *StatusReporter) Key() string {
	return statusKeyPrefix + r.instanceID
}

// InstanceID returns the unique id of this process.
func (r *StatusReporter) InstanceID() string {
	return r.instanceID
}

// Start begins periodic status reporting.
func (r *StatusReporter) Start(ctx context.Context) {
	r.mu.Lock()
	if r.stopped || r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.mu.Unlock()

	go func() {
		defer close(r.doneChan)

		ticker := time.NewTicker(HeartbeatInterval)
		defer ticker.Stop()

		if err := r.Report(ctx); err != nil {
			r.logger.Error("Failed to report initial status", zap.Error(err))
		}

		for {
			select {
			case <-ticker.C:
				if err := r.Report(ctx); err != nil {
					r.logger.Error("Failed to report status", zap.Error(err))
				}
			case <-ctx.Done():
				return
			case <-r.stopChan:
				return
			}
		}
	}()
}

// Stop ends status reporting and removes the heartbeat key.
func (r *StatusReporter) Stop(ctx context.Context) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	close(r.stopChan)
	r.stopped = true
	started := r.started
	r.mu.Unlock()

	if started {
		select {
		case <-r.doneChan:
		case <-ctx.Done():
		}
	}

	if err := r.client.Do(ctx, r.client.B().Del().Key(r.Key()).Build()).Error(); err != nil {
		r.logger.Warn("Failed to remove status key", zap.Error(err))
	}
}

// Report publishes the current status once.
func (r *StatusReporter) Report(ctx context.Context) error {
	status := r.source.Status()

	data, err := sonic.Marshal(ReportedStatus{
		InstanceID: r.instanceID,
		State:      status.State.String(),
		Online:     status.Online,
		Friends:    status.Friends,
		LastError:  status.LastError,
		LastSeen:   time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	err = r.client.Do(ctx, r.client.B().Set().Key(r.Key()).Value(string(data)).Ex(HeartbeatTTL).Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to store status: %w", err)
	}

	return nil
}
