package steam

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	// ReconnectInitialInterval is the first wait after a dropped session.
	ReconnectInitialInterval = time.Second
	// ReconnectMaxInterval caps the wait between reconnect attempts.
	ReconnectMaxInterval = 5 * time.Minute

	guardCodePeriod   = 30 * time.Second
	disconnectTimeout = 5 * time.Second
)

// ErrDisconnected is returned when the server closes the connection.
var ErrDisconnected = errors.New("steam connection dropped")

// Status is a point in time view of the session.
type Status struct {
	State     State
	Online    bool
	Friends   int
	LastError string
}

// Manager owns the single authenticated connection to Steam and turns its
// event stream into listener callbacks.
type Manager struct {
	transport     Transport
	credentials   *Credentials
	friends       *FriendSet
	listeners     []*Listener
	friendsLoaded bool
	running       atomic.Bool
	state         State
	lastErr       error
	mu            sync.RWMutex
	logger        *zap.Logger

	now        func() time.Time
	newBackOff func() backoff.BackOff
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewManager creates a session manager over the given transport.
func NewManager(transport Transport, credentials *Credentials, logger *zap.Logger) *Manager {
	return &Manager{
		transport:   transport,
		credentials: credentials,
		friends:     NewFriendSet(),
		state:       StateDisconnected,
		logger:      logger.Named("steam_session"),
		now:         time.Now,
		newBackOff:  newReconnectBackOff,
		sleep:       sleepContext,
	}
}

// AddListener registers a listener. Must be called before Run.
func (m *Manager) AddListener(listener *Listener) {
	m.listeners = append(m.listeners, listener)
}

// Friends returns the friend set owned by the session.
func (m *Manager) Friends() *FriendSet {
	return m.friends
}

// IsFriend reports whether the account is a friend of the service account.
func (m *Manager) IsFriend(accountID uint64) bool {
	return m.friends.IsFriend(accountID)
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Online reports whether the session is logged on.
func (m *Manager) Online() bool {
	return m.State() == StateOnline
}

// Status returns a snapshot of the session for status reporting.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := Status{
		State:   m.state,
		Online:  m.state == StateOnline,
		Friends: m.friends.Len(),
	}
	if m.lastErr != nil {
		status.LastError = m.lastErr.Error()
	}

	return status
}

// Run keeps the session connected until the context is done or the credentials
// are rejected. Returns nil on cancellation and an *AuthError when the session failed.
func (m *Manager) Run(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return ErrSessionRunning
	}
	defer m.running.Store(false)

	bo := m.newBackOff()
	secondFactorRetried := false

	for {
		loggedOn, err := m.runSession(ctx)
		if ctx.Err() != nil {
			m.logger.Info("Steam session stopped")
			return nil
		}

		m.setLastError(err)

		if loggedOn {
			bo.Reset()
			secondFactorRetried = false
		}

		var authErr *AuthError
		if errors.As(err, &authErr) {
			switch authErr.Kind {
			case AuthInvalidCredentials:
				return m.fail(err)
			case AuthSecondFactorRequired:
				if !m.credentials.CanDeriveCode() || secondFactorRetried {
					return m.fail(err)
				}
				secondFactorRetried = true

				// The next code window guarantees a code different from the rejected one
				wait := guardCodePeriod - time.Duration(m.now().Unix()%30)*time.Second
				m.logger.Warn("Guard code rejected, retrying with a fresh code", zap.Duration("wait", wait))

				if err := m.sleep(ctx, wait); err != nil {
					return nil
				}
				continue
			case AuthTransient:
			}
		}

		wait := bo.NextBackOff()
		m.logger.Warn("Steam session dropped, reconnecting",
			zap.Duration("wait", wait),
			zap.Error(err))

		if err := m.sleep(ctx, wait); err != nil {
			return nil
		}
	}
}

// runSession connects, logs on and pumps events until the connection ends.
// Reports whether a logon succeeded during this connection.
func (m *Manager) runSession(ctx context.Context) (bool, error) {
	m.setState(StateAuthenticating)

	if err := m.transport.Connect(); err != nil {
		m.setState(StateDisconnected)
		return false, fmt.Errorf("failed to connect to steam: %w", err)
	}

	events := m.transport.Events()
	loggedOn := false

	for {
		select {
		case <-ctx.Done():
			m.transport.Disconnect()
			m.setState(StateDisconnected)
			return loggedOn, ctx.Err()

		case event, ok := <-events:
			if !ok {
				m.setState(StateDisconnected)
				return loggedOn, ErrTransportClosed
			}

			switch e := event.(type) {
			case *ConnectedEvent:
				m.logger.Info("Connected to Steam, logging on",
					zap.String("account", m.credentials.AccountName))
				m.transport.LogOn(m.credentials.LogOnDetails(m.now()))

			case *LoggedOnEvent:
				loggedOn = true
				m.credentials.GuardCode = ""
				m.setState(StateOnline)
				m.transport.SetPersonaOnline()
				m.logger.Info("Logged on to Steam")
				m.emit(func(l *Listener) {
					if l.OnLoggedOn != nil {
						l.OnLoggedOn()
					}
				})

			case *LogOnFailedEvent:
				if e.Kind == AuthSecondFactorRequired {
					m.credentials.GuardCode = ""
				}

				m.transport.Disconnect()
				m.awaitDisconnect(events)
				m.setState(StateDisconnected)
				return loggedOn, &AuthError{Kind: e.Kind, Reason: e.Reason}

			case *DisconnectedEvent:
				m.setState(StateDisconnected)
				m.emit(func(l *Listener) {
					if l.OnDisconnected != nil {
						l.OnDisconnected(e.Err)
					}
				})

				if e.Err != nil {
					return loggedOn, fmt.Errorf("%w: %w", ErrDisconnected, e.Err)
				}
				return loggedOn, ErrDisconnected

			case *FriendsListEvent:
				m.friends.Replace(e.Friends)
				m.logger.Debug("Friends list synced", zap.Int("count", len(e.Friends)))

				if !m.friendsLoaded {
					m.friendsLoaded = true
					m.emit(func(l *Listener) {
						if l.OnFriendsListLoaded != nil {
							l.OnFriendsListLoaded()
						}
					})
				}

			case *FriendRelationshipEvent:
				m.friends.Set(e.AccountID, e.IsFriend)
				m.emit(func(l *Listener) {
					if l.OnFriendRelationship != nil {
						l.OnFriendRelationship(e.AccountID, e.IsFriend)
					}
				})

			case *PresenceEvent:
				m.emit(func(l *Listener) {
					if l.OnPresence != nil {
						l.OnPresence(e.Snapshot)
					}
				})

			default:
				m.logger.Debug("Ignoring unknown transport event", zap.String("type", fmt.Sprintf("%T", event)))
			}
		}
	}
}

// awaitDisconnect drops events until the transport confirms the disconnect.
// Keeps a stale disconnect from ending the next session.
func (m *Manager) awaitDisconnect(events <-chan any) {
	timer := time.NewTimer(disconnectTimeout)
	defer timer.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if _, ok := event.(*DisconnectedEvent); ok {
				return
			}
		case <-timer.C:
			return
		}
	}
}

func (m *Manager) emit(fn func(*Listener)) {
	for _, listener := range m.listeners {
		fn(listener)
	}
}

func (m *Manager) fail(err error) error {
	m.setState(StateFailed)
	m.logger.Error("Steam credentials rejected, giving up", zap.Error(err))
	return err
}

func (m *Manager) setState(state State) {
	m.mu.Lock()
	previous := m.state
	m.state = state
	m.mu.Unlock()

	if previous != state {
		m.logger.Debug("Session state changed",
			zap.String("from", previous.String()),
			zap.String("to", state.String()))
	}
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

// newReconnectBackOff returns an exponential backoff that never gives up.
func newReconnectBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = ReconnectInitialInterval
	bo.MaxInterval = ReconnectMaxInterval
	bo.RandomizationFactor = 0.1
	bo.MaxElapsedTime = 0
	bo.Reset()
	return bo
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
