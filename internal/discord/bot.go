// Package discord delivers presence notifications and serves the linking commands.
package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"go.uber.org/zap"
)

// commandTimeout bounds the store work done for one interaction.
const commandTimeout = 2 * time.Second

// Bot owns the Discord client.
type Bot struct {
	client   bot.Client
	commands *Commands
	ctx      context.Context
	logger   *zap.Logger
}

// New configures the Discord client with the command listener.
func New(token string, commands *Commands, logger *zap.Logger) (*Bot, error) {
	b := &Bot{
		commands: commands,
		ctx:      context.Background(),
		logger:   logger.Named("bot"),
	}

	client, err := disgo.New(token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(gateway.IntentGuilds),
		),
		bot.WithEventListeners(&events.ListenerAdapter{
			OnApplicationCommandInteraction: b.handleApplicationCommandInteraction,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord client: %w", err)
	}

	b.client = client
	return b, nil
}

// Notifier returns a notifier posting through this client.
func (b *Bot) Notifier() *Notifier {
	return NewNotifier(b.client.Rest(), b.logger)
}

// Start registers the slash commands and opens the gateway connection.
func (b *Bot) Start(ctx context.Context) error {
	b.ctx = ctx

	b.logger.Info("Registering commands")

	_, err := b.client.Rest().SetGlobalCommands(b.client.ApplicationID(), CommandDefinitions())
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	b.logger.Info("Opening gateway")
	return b.client.OpenGateway(ctx)
}

// Close shuts down the gateway connection.
func (b *Bot) Close(ctx context.Context) {
	b.logger.Info("Closing bot")
	b.client.Close(ctx)
}

// CommandDefinitions returns the slash commands registered globally.
func CommandDefinitions() []discord.ApplicationCommandCreate {
	return []discord.ApplicationCommandCreate{
		discord.SlashCommandCreate{
			Name:        LinkCommandName,
			Description: "Link your Steam account",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "steam_id",
					Description: "Your SteamID64",
					Required:    true,
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        UnlinkCommandName,
			Description: "Unlink your Steam account",
		},
		discord.SlashCommandCreate{
			Name:        StatusCommandName,
			Description: "Show the last observed Steam presence",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "User to look up, defaults to you",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        SetChannelCommandName,
			Description: "Post presence updates in a channel",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionChannel{
					Name:         "channel",
					Description:  "Channel for presence updates",
					Required:     true,
					ChannelTypes: []discord.ChannelType{discord.ChannelTypeGuildText},
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        ClearChannelCommandName,
			Description: "Stop posting presence updates in this server",
		},
	}
}

// handleApplicationCommandInteraction answers slash commands off the gateway goroutine.
func (b *Bot) handleApplicationCommandInteraction(event *events.ApplicationCommandInteractionCreate) {
	go func() {
		start := time.Now()
		data := event.SlashCommandInteractionData()

		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in application command interaction handler",
					zap.String("command", data.CommandName()),
					zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(b.ctx, commandTimeout)
		defer cancel()

		reply := b.commands.Handle(ctx, requestFromEvent(event, data))

		err := event.CreateMessage(discord.NewMessageCreateBuilder().
			SetContent(reply).
			SetEphemeral(true).
			SetAllowedMentions(&discord.AllowedMentions{}).
			Build())
		if err != nil {
			b.logger.Error("Failed to respond to command",
				zap.String("command", data.CommandName()),
				zap.Error(err))
			return
		}

		b.logger.Debug("Application command interaction handled",
			zap.String("command", data.CommandName()),
			zap.Duration("duration", time.Since(start)))
	}()
}

func requestFromEvent(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) Request {
	req := Request{
		Command: data.CommandName(),
		UserID:  uint64(event.User().ID),
	}

	if guildID := event.GuildID(); guildID != nil {
		req.GuildID = uint64(*guildID)
	}

	if member := event.Member(); member != nil {
		req.CanManageGuild = member.Permissions.Has(discord.PermissionManageGuild)
	}

	if steamID, ok := data.OptString("steam_id"); ok {
		req.SteamID = steamID
	}

	if user, ok := data.OptUser("user"); ok {
		req.TargetUserID = uint64(user.ID)
	}

	if channel, ok := data.OptChannel("channel"); ok {
		req.ChannelID = uint64(channel.ID)
	}

	return req
}
