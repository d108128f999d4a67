package client

import (
	"testing"

	gosteam "github.com/Philipp15b/go-steam/v3"
	"github.com/Philipp15b/go-steam/v3/protocol/steamlang"
	"github.com/Philipp15b/go-steam/v3/steamid"
	"github.com/robalyx/presencerelay/internal/database/types/enum"
	"github.com/robalyx/presencerelay/internal/steam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClassifyLogOnResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		result   steamlang.EResult
		expected steam.AuthErrorKind
	}{
		{steamlang.EResult_InvalidPassword, steam.AuthInvalidCredentials},
		{steamlang.EResult_AccountNotFound, steam.AuthInvalidCredentials},
		{steamlang.EResult_AccountLogonDenied, steam.AuthSecondFactorRequired},
		{steamlang.EResult_AccountLoginDeniedNeedTwoFactor, steam.AuthSecondFactorRequired},
		{steamlang.EResult_TwoFactorCodeMismatch, steam.AuthSecondFactorRequired},
		{steamlang.EResult_InvalidLoginAuthCode, steam.AuthSecondFactorRequired},
		{steamlang.EResult_ServiceUnavailable, steam.AuthTransient},
		{steamlang.EResult_TryAnotherCM, steam.AuthTransient},
	}

	for _, tt := range tests {
		t.Run(tt.result.String(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, ClassifyLogOnResult(tt.result))
		})
	}
}

func TestSnapshotFromPersona(t *testing.T) {
	t.Parallel()

	t.Run("in game", func(t *testing.T) {
		t.Parallel()

		snapshot := SnapshotFromPersona(&gosteam.PersonaStateEvent{
			FriendId:  steamid.SteamId(76561197960287930),
			State:     steamlang.EPersonaState_Busy,
			Name:      "gabe",
			GameName:  "Half-Life 2",
			GameAppId: 220,
		})

		assert.Equal(t, steam.Snapshot{
			AccountID:    76561197960287930,
			DisplayName:  "gabe",
			State:        enum.PresenceStateBusy,
			ActivityName: "Half-Life 2",
			ActivityID:   220,
		}, snapshot)
	})

	t.Run("non steam game falls back to game id", func(t *testing.T) {
		t.Parallel()

		snapshot := SnapshotFromPersona(&gosteam.PersonaStateEvent{
			State:    steamlang.EPersonaState_Online,
			GameName: "Custom Shortcut",
			GameId:   9_000_000_000,
		})

		assert.Equal(t, uint64(9_000_000_000), snapshot.ActivityID)
	})

	t.Run("invisible maps to offline", func(t *testing.T) {
		t.Parallel()

		snapshot := SnapshotFromPersona(&gosteam.PersonaStateEvent{
			State: steamlang.EPersonaState_Invisible,
		})

		assert.Equal(t, enum.PresenceStateOffline, snapshot.State)
	})
}

func TestConvert(t *testing.T) {
	t.Parallel()
	c := &Client{logger: zap.NewNop()}

	failed, ok := c.convert(&gosteam.LogOnFailedEvent{Result: steamlang.EResult_InvalidPassword}).(*steam.LogOnFailedEvent)
	require.True(t, ok)
	assert.Equal(t, steam.AuthInvalidCredentials, failed.Kind)
	assert.NotEmpty(t, failed.Reason)

	relationship, ok := c.convert(&gosteam.FriendStateEvent{
		SteamId:      steamid.SteamId(42),
		Relationship: steamlang.EFriendRelationship_None,
	}).(*steam.FriendRelationshipEvent)
	require.True(t, ok)
	assert.Equal(t, uint64(42), relationship.AccountID)
	assert.False(t, relationship.IsFriend)

	assert.IsType(t, &steam.ConnectedEvent{}, c.convert(&gosteam.ConnectedEvent{}))
	assert.IsType(t, &steam.LoggedOnEvent{}, c.convert(&gosteam.LoggedOnEvent{}))
	assert.IsType(t, &steam.DisconnectedEvent{}, c.convert(&gosteam.DisconnectedEvent{}))
	assert.Nil(t, c.convert(&gosteam.ChatMsgEvent{}))
}
