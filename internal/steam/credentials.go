package steam

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // Steam Guard codes are defined over HMAC-SHA1
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/robalyx/presencerelay/internal/setup/config"
)

var (
	// ErrInvalidSharedSecret is returned when the shared secret is not valid base64.
	ErrInvalidSharedSecret = errors.New("invalid steam shared secret")
	// ErrMissingCredentials is returned when the account name or password is empty.
	ErrMissingCredentials = errors.New("steam account name and password are required")
)

const guardCodeAlphabet = "23456789BCDFGHJKMNPQRTVWXY"

// Credentials are the logon details of the service account.
type Credentials struct {
	AccountName string
	Password    string
	// SharedSecret is the decoded mobile authenticator seed.
	SharedSecret []byte
	// GuardCode is a manually supplied one-shot code.
	GuardCode string
}

// NewCredentials builds credentials from the steam config section.
func NewCredentials(cfg *config.Steam) (*Credentials, error) {
	if cfg.AccountName == "" || cfg.Password == "" {
		return nil, ErrMissingCredentials
	}

	creds := &Credentials{
		AccountName: cfg.AccountName,
		Password:    cfg.Password,
		GuardCode:   cfg.GuardCode,
	}

	if cfg.SharedSecret != "" {
		secret, err := base64.StdEncoding.DecodeString(cfg.SharedSecret)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSharedSecret, err)
		}
		creds.SharedSecret = secret
	}

	return creds, nil
}

// CanDeriveCode reports whether a fresh guard code can be generated on demand.
func (c *Credentials) CanDeriveCode() bool {
	return len(c.SharedSecret) > 0
}

// LogOnDetails builds the details for one logon attempt.
// A derived code is computed from the given time and never reused.
func (c *Credentials) LogOnDetails(now time.Time) LogOnDetails {
	details := LogOnDetails{
		AccountName: c.AccountName,
		Password:    c.Password,
	}

	switch {
	case c.CanDeriveCode():
		details.TwoFactorCode = GenerateGuardCode(c.SharedSecret, now)
	case c.GuardCode != "":
		details.AuthCode = c.GuardCode
	}

	return details
}

// GenerateGuardCode derives the 5 character Steam Guard code for the 30 second window containing now.
func GenerateGuardCode(secret []byte, now time.Time) string {
	var counter [8]byte
	binary.BigEndian.PutUint64(counter[:], uint64(now.Unix()/30)) //nolint:gosec // unix time is positive

	mac := hmac.New(sha1.New, secret)
	mac.Write(counter[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	code := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	out := make([]byte, 5)
	for i := range out {
		out[i] = guardCodeAlphabet[code%uint32(len(guardCodeAlphabet))]
		code /= uint32(len(guardCodeAlphabet))
	}

	return string(out)
}
