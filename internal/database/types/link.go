package types

import "errors"

var (
	// ErrLinkNotFound is returned when no link exists for the requested identity.
	ErrLinkNotFound = errors.New("link not found")
	// ErrAlreadyLinkedSelf is returned when the exact link being created already exists.
	ErrAlreadyLinkedSelf = errors.New("already linked to this account")
	// ErrAlreadyLinkedOther is returned when either side of a link is bound to a different counterpart.
	ErrAlreadyLinkedOther = errors.New("already linked to a different account")
)

// LinkRecord binds a Discord user to exactly one Steam account.
// Both columns are unique so the mapping stays a bijection.
type LinkRecord struct {
	ChatUserID        uint64 `bun:",pk"`
	ExternalAccountID uint64 `bun:",notnull,unique"`
	LinkedAt          int64  `bun:",notnull"`
}
