package steam

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/robalyx/presencerelay/internal/database/types/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testSecret = []byte("secret-shared-secret")

// fakeTransport scripts the Steam server. respond is called for every logon attempt.
type fakeTransport struct {
	events      chan any
	connected   bool
	connectErrs []error
	logOns      []LogOnDetails
	personas    int
	respond     func(f *fakeTransport, attempt int, details LogOnDetails)
	mu          sync.Mutex
}

func newFakeTransport(respond func(f *fakeTransport, attempt int, details LogOnDetails)) *fakeTransport {
	return &fakeTransport{
		events:  make(chan any, 64),
		respond: respond,
	}
}

func (f *fakeTransport) Connect() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.connectErrs) > 0 {
		err := f.connectErrs[0]
		f.connectErrs = f.connectErrs[1:]
		if err != nil {
			return err
		}
	}

	f.connected = true
	f.events <- &ConnectedEvent{}
	return nil
}

func (f *fakeTransport) LogOn(details LogOnDetails) {
	f.mu.Lock()
	f.logOns = append(f.logOns, details)
	attempt := len(f.logOns)
	f.mu.Unlock()

	f.respond(f, attempt, details)
}

func (f *fakeTransport) SetPersonaOnline() {
	f.mu.Lock()
	f.personas++
	f.mu.Unlock()
}

func (f *fakeTransport) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.connected {
		f.connected = false
		f.events <- &DisconnectedEvent{}
	}
}

func (f *fakeTransport) Events() <-chan any {
	return f.events
}

// drop simulates the server closing the connection.
func (f *fakeTransport) drop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.connected = false
	f.events <- &DisconnectedEvent{Err: errors.New("connection reset")}
}

func (f *fakeTransport) push(event any) {
	f.events <- event
}

func (f *fakeTransport) attempts() []LogOnDetails {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]LogOnDetails(nil), f.logOns...)
}

type testClock struct {
	now    time.Time
	sleeps []time.Duration
}

func setupManager(t *testing.T, transport Transport, creds *Credentials) (*Manager, *testClock) {
	t.Helper()

	clock := &testClock{now: time.Unix(1_700_000_000, 0)}

	m := NewManager(transport, creds, zap.NewNop())
	m.now = func() time.Time { return clock.now }
	m.sleep = func(ctx context.Context, d time.Duration) error {
		clock.sleeps = append(clock.sleeps, d)
		clock.now = clock.now.Add(d)
		return ctx.Err()
	}

	return m, clock
}

func rejectWith(kind AuthErrorKind) func(f *fakeTransport, attempt int, details LogOnDetails) {
	return func(f *fakeTransport, _ int, _ LogOnDetails) {
		f.push(&LogOnFailedEvent{Kind: kind, Reason: kind.String()})
	}
}

func TestRunInvalidCredentials(t *testing.T) {
	t.Parallel()

	transport := newFakeTransport(rejectWith(AuthInvalidCredentials))
	m, clock := setupManager(t, transport, &Credentials{AccountName: "relay", Password: "wrong"})

	err := m.Run(t.Context())
	require.Error(t, err)
	assert.True(t, IsAuthKind(err, AuthInvalidCredentials))
	assert.Equal(t, StateFailed, m.State())
	assert.False(t, m.Online())
	assert.Len(t, transport.attempts(), 1, "invalid credentials are never retried")
	assert.Empty(t, clock.sleeps)
	assert.NotEmpty(t, m.Status().LastError)
}

func TestRunSecondFactorWithoutSeed(t *testing.T) {
	t.Parallel()

	transport := newFakeTransport(rejectWith(AuthSecondFactorRequired))
	m, _ := setupManager(t, transport, &Credentials{AccountName: "relay", Password: "pw"})

	err := m.Run(t.Context())
	require.Error(t, err)
	assert.True(t, IsAuthKind(err, AuthSecondFactorRequired))
	assert.Equal(t, StateFailed, m.State())
	assert.Len(t, transport.attempts(), 1)
}

func TestRunSecondFactorRetriedOnceWithFreshCode(t *testing.T) {
	t.Parallel()

	transport := newFakeTransport(rejectWith(AuthSecondFactorRequired))
	m, clock := setupManager(t, transport, &Credentials{
		AccountName:  "relay",
		Password:     "pw",
		SharedSecret: testSecret,
	})

	err := m.Run(t.Context())
	require.Error(t, err)
	assert.True(t, IsAuthKind(err, AuthSecondFactorRequired))

	attempts := transport.attempts()
	require.Len(t, attempts, 2)
	assert.Equal(t, "G9FMQ", attempts[0].TwoFactorCode)
	assert.Equal(t, "C5TN8", attempts[1].TwoFactorCode)
	assert.Equal(t, []time.Duration{10 * time.Second}, clock.sleeps)
}

func TestRunRecoversAfterSecondFactorRetry(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	transport := newFakeTransport(func(f *fakeTransport, attempt int, _ LogOnDetails) {
		if attempt == 1 {
			f.push(&LogOnFailedEvent{Kind: AuthSecondFactorRequired})
			return
		}
		f.push(&LoggedOnEvent{})
	})
	m, _ := setupManager(t, transport, &Credentials{
		AccountName:  "relay",
		Password:     "pw",
		SharedSecret: testSecret,
	})

	m.AddListener(&Listener{
		OnLoggedOn: func() {
			assert.True(t, m.Online())
			cancel()
		},
	})

	require.NoError(t, m.Run(ctx))
	assert.Len(t, transport.attempts(), 2)
	assert.Equal(t, 1, transport.personas, "persona is set online after logon")
	assert.Equal(t, StateDisconnected, m.State())
}

func TestRunTransientRetriesWithBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	transport := newFakeTransport(func(f *fakeTransport, attempt int, _ LogOnDetails) {
		if attempt <= 3 {
			f.push(&LogOnFailedEvent{Kind: AuthTransient, Reason: "ServiceUnavailable"})
			return
		}
		f.push(&LoggedOnEvent{})
	})
	transport.connectErrs = []error{errors.New("dial tcp: timeout")}

	m, clock := setupManager(t, transport, &Credentials{AccountName: "relay", Password: "pw"})
	m.newBackOff = func() backoff.BackOff {
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = time.Second
		bo.RandomizationFactor = 0
		bo.Multiplier = 2
		bo.MaxElapsedTime = 0
		bo.Reset()
		return bo
	}
	m.AddListener(&Listener{OnLoggedOn: cancel})

	require.NoError(t, m.Run(ctx))
	assert.Len(t, transport.attempts(), 4)
	assert.Equal(t, []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
	}, clock.sleeps)
}

func TestRunReconnectKeepsFriends(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	transport := newFakeTransport(func(f *fakeTransport, attempt int, _ LogOnDetails) {
		f.push(&LoggedOnEvent{})
		f.push(&FriendsListEvent{Friends: []uint64{1, 2}})
		if attempt == 1 {
			f.push(&FriendRelationshipEvent{AccountID: 3, IsFriend: true})
		}
		f.push(&PresenceEvent{Snapshot: Snapshot{AccountID: uint64(attempt), State: enum.PresenceStateOnline}})
		if attempt == 1 {
			f.drop()
		}
	})

	m, clock := setupManager(t, transport, &Credentials{
		AccountName: "relay",
		Password:    "pw",
		GuardCode:   "ABCDE",
	})

	var (
		loggedOn       int
		friendsLoaded  int
		disconnects    int
		relationships  []uint64
		snapshots      []Snapshot
		stateOnSleep   State
		friendsOnSleep bool
	)

	m.AddListener(&Listener{
		OnLoggedOn:           func() { loggedOn++ },
		OnDisconnected:       func(error) { disconnects++ },
		OnFriendsListLoaded:  func() { friendsLoaded++ },
		OnFriendRelationship: func(id uint64, _ bool) { relationships = append(relationships, id) },
		OnPresence: func(s Snapshot) {
			snapshots = append(snapshots, s)
			if len(snapshots) == 2 {
				cancel()
			}
		},
	})

	sleep := m.sleep
	m.sleep = func(ctx context.Context, d time.Duration) error {
		stateOnSleep = m.State()
		friendsOnSleep = m.IsFriend(3)
		return sleep(ctx, d)
	}

	require.NoError(t, m.Run(ctx))

	assert.Equal(t, 2, loggedOn)
	assert.Equal(t, 1, friendsLoaded, "friends list loaded fires once")
	assert.Equal(t, 1, disconnects)
	assert.Equal(t, []uint64{3}, relationships)
	require.Len(t, snapshots, 2)
	assert.Equal(t, uint64(1), snapshots[0].AccountID)
	assert.Equal(t, uint64(2), snapshots[1].AccountID)

	assert.Equal(t, StateDisconnected, stateOnSleep)
	assert.True(t, friendsOnSleep, "friend set survives a disconnect")
	require.Len(t, clock.sleeps, 1)
	assert.LessOrEqual(t, clock.sleeps[0], ReconnectInitialInterval+ReconnectInitialInterval/10)

	attempts := transport.attempts()
	require.Len(t, attempts, 2)
	assert.Equal(t, "ABCDE", attempts[0].AuthCode)
	assert.Empty(t, attempts[1].AuthCode, "manual guard code is used once")
	assert.Equal(t, 2, transport.personas)

	// The second full sync replaced the set
	assert.True(t, m.IsFriend(1))
	assert.False(t, m.IsFriend(3))
}

func TestRunAlreadyRunning(t *testing.T) {
	t.Parallel()

	m, _ := setupManager(t, newFakeTransport(rejectWith(AuthTransient)), &Credentials{})
	m.running.Store(true)

	require.ErrorIs(t, m.Run(t.Context()), ErrSessionRunning)
}

func TestReconnectBackOff(t *testing.T) {
	t.Parallel()

	bo := newReconnectBackOff()
	for range 100 {
		wait := bo.NextBackOff()
		require.NotEqual(t, backoff.Stop, wait, "reconnect never gives up")
		assert.LessOrEqual(t, wait, ReconnectMaxInterval+ReconnectMaxInterval/10)
	}

	bo.Reset()
	assert.LessOrEqual(t, bo.NextBackOff(), ReconnectInitialInterval+ReconnectInitialInterval/10)
}

func TestGenerateGuardCode(t *testing.T) {
	t.Parallel()

	secret, err := base64.StdEncoding.DecodeString("c2VjcmV0LXNoYXJlZC1zZWNyZXQ=")
	require.NoError(t, err)

	tests := []struct {
		unix     int64
		expected string
	}{
		{1_700_000_000, "G9FMQ"},
		{1_700_000_010, "C5TN8"},
		{1_700_000_029, "C5TN8"},
		{1_700_000_030, "C5TN8"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, GenerateGuardCode(secret, time.Unix(tt.unix, 0)), "at %d", tt.unix)
	}
}

func TestLogOnDetails(t *testing.T) {
	t.Parallel()
	now := time.Unix(1_700_000_000, 0)

	t.Run("seed takes precedence over manual code", func(t *testing.T) {
		t.Parallel()

		creds := &Credentials{AccountName: "a", Password: "p", SharedSecret: testSecret, GuardCode: "ZZZZZ"}
		details := creds.LogOnDetails(now)
		assert.Equal(t, "G9FMQ", details.TwoFactorCode)
		assert.Empty(t, details.AuthCode)
	})

	t.Run("manual code", func(t *testing.T) {
		t.Parallel()

		creds := &Credentials{AccountName: "a", Password: "p", GuardCode: "ZZZZZ"}
		details := creds.LogOnDetails(now)
		assert.Equal(t, "ZZZZZ", details.AuthCode)
		assert.Empty(t, details.TwoFactorCode)
	})
}
