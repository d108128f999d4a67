package steam

import "github.com/robalyx/presencerelay/internal/database/types/enum"

// Snapshot is a point in time report of a friend's status, name and activity.
type Snapshot struct {
	AccountID    uint64
	DisplayName  string
	State        enum.PresenceState
	ActivityName string
	ActivityID   uint64
}

// LogOnDetails are sent with each logon attempt.
type LogOnDetails struct {
	AccountName   string
	Password      string
	AuthCode      string
	TwoFactorCode string
}

// Transport is the connection to the Steam network.
// Logon results and everything else arrive on the event channel as the event types below.
type Transport interface {
	Connect() error
	LogOn(details LogOnDetails)
	SetPersonaOnline()
	Disconnect()
	Events() <-chan any
}

// ConnectedEvent is emitted once the transport connection is established.
type ConnectedEvent struct{}

// LoggedOnEvent is emitted after a successful logon.
type LoggedOnEvent struct{}

// LogOnFailedEvent is emitted when the server rejects a logon.
type LogOnFailedEvent struct {
	Kind   AuthErrorKind
	Reason string
}

// DisconnectedEvent is emitted when the connection drops.
type DisconnectedEvent struct {
	Err error
}

// FriendsListEvent carries the full list of friends after a sync.
type FriendsListEvent struct {
	Friends []uint64
}

// FriendRelationshipEvent is emitted when a single relationship changes.
type FriendRelationshipEvent struct {
	AccountID uint64
	IsFriend  bool
}

// PresenceEvent carries a presence update of a friend.
type PresenceEvent struct {
	Snapshot Snapshot
}

// Listener receives session events. Every callback runs on the session event loop
// and must return quickly. Nil callbacks are skipped.
type Listener struct {
	OnLoggedOn           func()
	OnDisconnected       func(err error)
	OnFriendsListLoaded  func()
	OnFriendRelationship func(accountID uint64, isFriend bool)
	OnPresence           func(snapshot Snapshot)
}
