// Package relay wires the Steam session, the presence pipeline and the Discord bot together.
package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/rueidis"
	"github.com/robalyx/presencerelay/internal/database"
	"github.com/robalyx/presencerelay/internal/discord"
	"github.com/robalyx/presencerelay/internal/presence"
	"github.com/robalyx/presencerelay/internal/setup/config"
	"github.com/robalyx/presencerelay/internal/steam"
	"github.com/robalyx/presencerelay/internal/steam/client"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds each shutdown step that talks to a remote service.
const ShutdownTimeout = 10 * time.Second

// Session is the Steam session the relay drives.
type Session interface {
	presence.Gate
	discord.FriendChecker
	steam.StatusSource
	AddListener(listener *steam.Listener)
	Run(ctx context.Context) error
}

// Gateway is the chat platform connection.
type Gateway interface {
	Start(ctx context.Context) error
	Close(ctx context.Context)
}

// Relay runs every component until shutdown.
type Relay struct {
	session     Session
	gateway     Gateway
	dispatcher  *presence.Dispatcher
	auditor     *presence.LinkAuditor
	reporter    *steam.StatusReporter
	closers     []func()
	fatal       chan error
	audits      sync.WaitGroup
	auditCtx    context.Context
	auditCancel context.CancelFunc
	logger      *zap.Logger
}

// New builds a relay from configuration, connecting to Steam through go-steam
// and to Discord through disgo.
func New(cfg *config.Config, db database.Client, statusClient rueidis.Client, logger *zap.Logger) (*Relay, error) {
	credentials, err := steam.NewCredentials(&cfg.Bot.Steam)
	if err != nil {
		return nil, err
	}

	transport := client.New(logger)
	manager := steam.NewManager(transport, credentials, logger)
	store := db.Service().Link()

	commands := discord.NewCommands(store, manager, logger)
	bot, err := discord.New(cfg.Bot.Discord.Token, commands, logger)
	if err != nil {
		transport.Close()
		return nil, err
	}

	var reporter *steam.StatusReporter
	if statusClient != nil {
		reporter = steam.NewStatusReporter(statusClient, manager, logger)
	}

	processor := presence.NewProcessor(store, manager, bot.Notifier(), cfg.Bot.Pipeline.Cooldown(), logger)

	r := Assemble(manager, bot, processor, store, reporter, &cfg.Bot.Pipeline, logger)
	r.closers = append(r.closers, transport.Close)

	return r, nil
}

// Assemble builds a relay from already constructed collaborators.
func Assemble(
	session Session,
	gateway Gateway,
	processor presence.EventProcessor,
	links presence.LinkLister,
	reporter *steam.StatusReporter,
	pipeline *config.Pipeline,
	logger *zap.Logger,
) *Relay {
	r := &Relay{
		session:  session,
		gateway:  gateway,
		auditor:  presence.NewLinkAuditor(links, session, logger),
		reporter: reporter,
		fatal:    make(chan error, 1),
		logger:   logger.Named("relay"),
	}

	r.auditCtx, r.auditCancel = context.WithCancel(context.Background())
	r.dispatcher = presence.NewDispatcher(processor, pipeline.Workers, pipeline.QueueSize, r.onFatal, logger)

	session.AddListener(&steam.Listener{
		OnPresence: func(snapshot steam.Snapshot) {
			r.dispatcher.Submit(snapshot)
		},
		OnFriendsListLoaded: func() {
			r.audits.Add(1)
			go func() {
				defer r.audits.Done()
				r.audit()
			}()
		},
	})

	return r
}

// Dispatcher returns the presence event dispatcher.
func (r *Relay) Dispatcher() *presence.Dispatcher {
	return r.dispatcher
}

// Run starts all components and blocks until ctx is cancelled or a component
// fails fatally. Components are stopped in order before Run returns.
func (r *Relay) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	r.dispatcher.Start(gctx)

	if err := r.gateway.Start(gctx); err != nil {
		r.shutdown()
		return fmt.Errorf("failed to start discord gateway: %w", err)
	}

	if r.reporter != nil {
		r.reporter.Start(gctx)
	}

	r.logger.Info("Relay started")

	g.Go(func() error {
		return r.session.Run(gctx)
	})

	g.Go(func() error {
		select {
		case err := <-r.fatal:
			return err
		case <-gctx.Done():
			return nil
		}
	})

	err := g.Wait()
	if err != nil {
		r.logger.Error("Relay stopping after fatal error", zap.Error(err))
	} else {
		r.logger.Info("Relay stopping")
	}

	r.shutdown()

	return err
}

// shutdown stops components in dependency order. The session has already
// returned, so no new events arrive while the dispatcher drains.
func (r *Relay) shutdown() {
	// Audits read the store, which is closed after Run returns
	r.auditCancel()
	r.audits.Wait()

	r.dispatcher.Stop()
	r.logger.Info("Presence queue drained", zap.Int64("dropped", r.dispatcher.Dropped()))

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	r.gateway.Close(ctx)

	if r.reporter != nil {
		r.reporter.Stop(ctx)
	}

	for _, closer := range r.closers {
		closer()
	}

	r.logger.Info("Relay stopped")
}

// onFatal records the first fatal error. Later ones are only logged.
func (r *Relay) onFatal(err error) {
	select {
	case r.fatal <- err:
	default:
		r.logger.Error("Additional fatal error during shutdown", zap.Error(err))
	}
}

// audit checks existing links against the freshly loaded friends list.
func (r *Relay) audit() {
	ctx, cancel := context.WithTimeout(r.auditCtx, ShutdownTimeout)
	defer cancel()

	if _, err := r.auditor.Audit(ctx); err != nil && !errors.Is(err, context.Canceled) {
		r.logger.Error("Failed to audit links", zap.Error(err))
	}
}
