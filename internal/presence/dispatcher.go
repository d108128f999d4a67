package presence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/robalyx/presencerelay/internal/steam"
	"go.uber.org/zap"
)

// ErrProcessingPanic wraps a panic recovered while processing an event.
var ErrProcessingPanic = errors.New("panic while processing presence event")

// EventProcessor processes one presence snapshot.
type EventProcessor interface {
	Process(ctx context.Context, snapshot steam.Snapshot) (Outcome, error)
}

// Dispatcher hands events off to a fixed set of workers. Events of one account
// always land on the same worker, so they are processed in arrival order.
type Dispatcher struct {
	processor EventProcessor
	queues    []chan steam.Snapshot
	onFatal   func(error)
	wg        sync.WaitGroup
	started   bool
	closed    bool
	mu        sync.RWMutex
	dropped   atomic.Int64
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher with the given number of workers and per-worker queue size.
// onFatal is called when processing panics.
func NewDispatcher(
	processor EventProcessor, workers, queueSize int, onFatal func(error), logger *zap.Logger,
) *Dispatcher {
	workers = max(workers, 1)
	queueSize = max(queueSize, 1)

	queues := make([]chan steam.Snapshot, workers)
	for i := range queues {
		queues[i] = make(chan steam.Snapshot, queueSize)
	}

	return &Dispatcher{
		processor: processor,
		queues:    queues,
		onFatal:   onFatal,
		logger:    logger.Named("presence_dispatcher"),
	}
}

// Start launches the workers. Processing outlives ctx cancellation so queued
// events can finish their writes during shutdown.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started || d.closed {
		return
	}
	d.started = true

	ctx = context.WithoutCancel(ctx)
	for i, queue := range d.queues {
		d.wg.Add(1)
		go d.work(ctx, i, queue)
	}

	d.logger.Info("Started presence workers", zap.Int("workers", len(d.queues)))
}

// Submit queues a snapshot without blocking. Returns false when the event was dropped.
func (d *Dispatcher) Submit(snapshot steam.Snapshot) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return false
	}

	queue := d.queues[snapshot.AccountID%uint64(len(d.queues))]

	select {
	case queue <- snapshot:
		return true
	default:
		d.dropped.Add(1)
		d.logger.Warn("Presence queue full, dropping event",
			zap.Uint64("accountID", snapshot.AccountID),
			zap.Int64("dropped", d.dropped.Load()))
		return false
	}
}

// Stop rejects new events and waits until every queued event is processed.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, queue := range d.queues {
		close(queue)
	}
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info("Presence workers drained")
}

// Dropped returns the number of events dropped because a queue was full.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

func (d *Dispatcher) work(ctx context.Context, worker int, queue <-chan steam.Snapshot) {
	defer d.wg.Done()

	for snapshot := range queue {
		d.handle(ctx, worker, snapshot)
	}
}

func (d *Dispatcher) handle(ctx context.Context, worker int, snapshot steam.Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", ErrProcessingPanic, r)
			d.logger.Error("Presence processing panicked",
				zap.Int("worker", worker),
				zap.Uint64("accountID", snapshot.AccountID),
				zap.Error(err),
				zap.Stack("stack"))

			if d.onFatal != nil {
				d.onFatal(err)
			}
		}
	}()

	outcome, err := d.processor.Process(ctx, snapshot)
	if err != nil {
		d.logger.Error("Failed to process presence event",
			zap.Int("worker", worker),
			zap.Uint64("accountID", snapshot.AccountID),
			zap.Error(err))
		return
	}

	d.logger.Debug("Processed presence event",
		zap.Uint64("accountID", snapshot.AccountID),
		zap.String("outcome", outcome.String()))
}
