// Package client adapts the go-steam client to the session transport.
package client

import (
	"sync"

	gosteam "github.com/Philipp15b/go-steam/v3"
	"github.com/Philipp15b/go-steam/v3/protocol/steamlang"
	"github.com/robalyx/presencerelay/internal/database/types/enum"
	"github.com/robalyx/presencerelay/internal/steam"
	"go.uber.org/zap"
)

// eventBufferSize keeps the go-steam reader from stalling while the session is busy.
const eventBufferSize = 256

// Client is a steam.Transport backed by go-steam.
type Client struct {
	steam    *gosteam.Client
	events   chan any
	stopChan chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

// New creates a transport and starts forwarding go-steam events.
func New(logger *zap.Logger) *Client {
	c := &Client{
		steam:    gosteam.NewClient(),
		events:   make(chan any, eventBufferSize),
		stopChan: make(chan struct{}),
		logger:   logger.Named("steam_client"),
	}

	go c.pump()

	return c
}

// Connect opens a connection to a Steam connection manager.
func (c *Client) Connect() error {
	addr, err := c.steam.Connect()
	if err != nil {
		return err
	}

	c.logger.Debug("Connecting to Steam", zap.String("addr", addr.String()))
	return nil
}

// LogOn sends the logon request. The result arrives as an event.
func (c *Client) LogOn(details steam.LogOnDetails) {
	c.steam.Auth.LogOn(&gosteam.LogOnDetails{
		Username:      details.AccountName,
		Password:      details.Password,
		AuthCode:      details.AuthCode,
		TwoFactorCode: details.TwoFactorCode,
	})
}

// SetPersonaOnline broadcasts the neutral online persona state.
func (c *Client) SetPersonaOnline() {
	c.steam.Social.SetPersonaState(steamlang.EPersonaState_Online)
}

// Disconnect closes the current connection.
func (c *Client) Disconnect() {
	c.steam.Disconnect()
}

// Events returns the normalised event stream.
func (c *Client) Events() <-chan any {
	return c.events
}

// Close stops event forwarding.
func (c *Client) Close() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
		c.steam.Disconnect()
	})
}

func (c *Client) pump() {
	source := c.steam.Events()

	for {
		select {
		case <-c.stopChan:
			return
		case raw, ok := <-source:
			if !ok {
				close(c.events)
				return
			}

			event := c.convert(raw)
			if event == nil {
				continue
			}

			select {
			case c.events <- event:
			case <-c.stopChan:
				return
			}
		}
	}
}

// convert maps a go-steam event to a session event. Returns nil for events the session ignores.
func (c *Client) convert(raw any) any {
	switch e := raw.(type) {
	case *gosteam.ConnectedEvent:
		return &steam.ConnectedEvent{}

	case *gosteam.LoggedOnEvent:
		return &steam.LoggedOnEvent{}

	case *gosteam.LogOnFailedEvent:
		return &steam.LogOnFailedEvent{
			Kind:   ClassifyLogOnResult(e.Result),
			Reason: e.Result.String(),
		}

	case *gosteam.DisconnectedEvent:
		return &steam.DisconnectedEvent{}

	case *gosteam.FriendsListEvent:
		return &steam.FriendsListEvent{Friends: c.friendIDs()}

	case *gosteam.FriendStateEvent:
		return &steam.FriendRelationshipEvent{
			AccountID: uint64(e.SteamId),
			IsFriend:  e.Relationship == steamlang.EFriendRelationship_Friend,
		}

	case *gosteam.PersonaStateEvent:
		return &steam.PresenceEvent{Snapshot: SnapshotFromPersona(e)}

	case gosteam.FatalErrorEvent:
		c.logger.Warn("Steam connection error", zap.Error(e))
		return nil

	default:
		return nil
	}
}

func (c *Client) friendIDs() []uint64 {
	friends := c.steam.Social.Friends.GetCopy()

	ids := make([]uint64, 0, len(friends))
	for id, friend := range friends {
		if friend.Relationship == steamlang.EFriendRelationship_Friend {
			ids = append(ids, uint64(id))
		}
	}

	return ids
}

// ClassifyLogOnResult maps a logon result code to the session's auth error kinds.
func ClassifyLogOnResult(result steamlang.EResult) steam.AuthErrorKind {
	switch result {
	case steamlang.EResult_InvalidPassword,
		steamlang.EResult_AccountNotFound:
		return steam.AuthInvalidCredentials
	case steamlang.EResult_AccountLogonDenied,
		steamlang.EResult_AccountLoginDeniedNeedTwoFactor,
		steamlang.EResult_TwoFactorCodeMismatch,
		steamlang.EResult_InvalidLoginAuthCode:
		return steam.AuthSecondFactorRequired
	default:
		return steam.AuthTransient
	}
}

// SnapshotFromPersona builds a presence snapshot from a persona update.
func SnapshotFromPersona(e *gosteam.PersonaStateEvent) steam.Snapshot {
	activityID := uint64(e.GameAppId)
	if activityID == 0 {
		activityID = e.GameId
	}

	return steam.Snapshot{
		AccountID:    uint64(e.FriendId),
		DisplayName:  e.Name,
		State:        presenceState(e.State),
		ActivityName: e.GameName,
		ActivityID:   activityID,
	}
}

// presenceState maps a persona state, treating invisible and unknown states as offline.
func presenceState(state steamlang.EPersonaState) enum.PresenceState {
	converted := enum.PresenceState(state)
	if !converted.IsAPresenceState() {
		return enum.PresenceStateOffline
	}
	return converted
}
