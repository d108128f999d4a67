package steam

// State is the connection state of the Steam session.
//
//go:generate go tool enumer -type=State -trimprefix=State
type State int

const (
	// StateDisconnected means no connection is open. The session may reconnect.
	StateDisconnected State = iota
	// StateAuthenticating means a connection is open and a logon is in flight.
	StateAuthenticating
	// StateOnline means the session is logged on and emitting events.
	StateOnline
	// StateFailed is terminal and only reached on credential errors.
	StateFailed
)
