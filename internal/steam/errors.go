package steam

import (
	"errors"
	"fmt"
)

var (
	// ErrTransportClosed is returned when the transport event stream ends unexpectedly.
	ErrTransportClosed = errors.New("steam transport event stream closed")
	// ErrSessionRunning is returned when Run is called twice.
	ErrSessionRunning = errors.New("steam session is already running")
)

// AuthErrorKind classifies a failed logon.
type AuthErrorKind int

const (
	// AuthTransient is retried with backoff.
	AuthTransient AuthErrorKind = iota
	// AuthInvalidCredentials is fatal.
	AuthInvalidCredentials
	// AuthSecondFactorRequired is retried once when a fresh guard code can be derived.
	AuthSecondFactorRequired
)

func (k AuthErrorKind) String() string {
	switch k {
	case AuthInvalidCredentials:
		return "InvalidCredentials"
	case AuthSecondFactorRequired:
		return "SecondFactorRequired"
	default:
		return "Transient"
	}
}

// AuthError is returned when the session cannot log on.
type AuthError struct {
	Kind   AuthErrorKind
	Reason string
}

func (e *AuthError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("steam logon failed: %s", e.Kind)
	}
	return fmt.Sprintf("steam logon failed: %s (%s)", e.Kind, e.Reason)
}

// IsAuthKind reports whether err is an AuthError of the given kind.
func IsAuthKind(err error, kind AuthErrorKind) bool {
	var authErr *AuthError
	return errors.As(err, &authErr) && authErr.Kind == kind
}
