package presence_test

import (
	"context"
	"errors"
	"testing"

	"github.com/robalyx/presencerelay/internal/database/types"
	"github.com/robalyx/presencerelay/internal/presence"
	"github.com/robalyx/presencerelay/internal/steam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticLinks struct {
	links []*types.LinkRecord
	err   error
}

func (s staticLinks) ListLinks(context.Context) ([]*types.LinkRecord, error) {
	return s.links, s.err
}

func TestLinkAuditor(t *testing.T) {
	t.Parallel()

	friends := steam.NewFriendSet()
	friends.Replace([]uint64{10, 30})

	auditor := presence.NewLinkAuditor(staticLinks{links: []*types.LinkRecord{
		{ChatUserID: 1, ExternalAccountID: 10},
		{ChatUserID: 2, ExternalAccountID: 20},
		{ChatUserID: 3, ExternalAccountID: 30},
	}}, friends, zap.NewNop())

	stale, err := auditor.Audit(t.Context())
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, uint64(2), stale[0].ChatUserID)
}

func TestLinkAuditorError(t *testing.T) {
	t.Parallel()

	auditor := presence.NewLinkAuditor(staticLinks{err: errors.New("db down")}, steam.NewFriendSet(), zap.NewNop())

	_, err := auditor.Audit(t.Context())
	require.Error(t, err)
}
