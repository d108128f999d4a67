package presence

import (
	"context"
	"fmt"

	"github.com/robalyx/presencerelay/internal/database/types"
	"go.uber.org/zap"
)

// LinkLister lists every link.
type LinkLister interface {
	ListLinks(ctx context.Context) ([]*types.LinkRecord, error)
}

// FriendChecker reports friendship with the service account.
type FriendChecker interface {
	IsFriend(accountID uint64) bool
}

// LinkAuditor cross checks links against the friend list once it is loaded.
// Stale links are only reported, never removed.
type LinkAuditor struct {
	links   LinkLister
	friends FriendChecker
	logger  *zap.Logger
}

// NewLinkAuditor creates a new link auditor.
func NewLinkAuditor(links LinkLister, friends FriendChecker, logger *zap.Logger) *LinkAuditor {
	return &LinkAuditor{
		links:   links,
		friends: friends,
		logger:  logger.Named("link_auditor"),
	}
}

// Audit warns about every link whose account is no longer a friend and returns them.
func (a *LinkAuditor) Audit(ctx context.Context) ([]*types.LinkRecord, error) {
	links, err := a.links.ListLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	var stale []*types.LinkRecord
	for _, link := range links {
		if a.friends.IsFriend(link.ExternalAccountID) {
			continue
		}

		stale = append(stale, link)
		a.logger.Warn("Linked account is not a friend of the service account",
			zap.Uint64("chatUserID", link.ChatUserID),
			zap.Uint64("accountID", link.ExternalAccountID))
	}

	a.logger.Info("Audited links",
		zap.Int("links", len(links)),
		zap.Int("stale", len(stale)))

	return stale, nil
}
