package enum

// PresenceState represents the persona state reported for a Steam account.
// Values match Steam's EPersonaState so they can be converted directly.
//
//go:generate go tool enumer -type=PresenceState -trimprefix=PresenceState
type PresenceState int

const (
	// PresenceStateOffline means the account is not signed in.
	PresenceStateOffline PresenceState = iota
	// PresenceStateOnline means the account is signed in and available.
	PresenceStateOnline
	// PresenceStateBusy means the account has set do-not-disturb.
	PresenceStateBusy
	// PresenceStateAway means the account has been idle for a while.
	PresenceStateAway
	// PresenceStateSnooze means the account has been idle for a long time.
	PresenceStateSnooze
	// PresenceStateLookingToTrade means the account is advertising for trades.
	PresenceStateLookingToTrade
	// PresenceStateLookingToPlay means the account is looking for a match.
	PresenceStateLookingToPlay
)
