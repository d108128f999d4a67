package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/robalyx/presencerelay/internal/database/types"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// LinkCommands returns commands for inspecting and repairing links and destinations.
func LinkCommands(deps *CLIDependencies) []*cli.Command {
	return []*cli.Command{
		{
			Name:   "links",
			Usage:  "List all account links",
			Action: handleListLinks(deps),
		},
		{
			Name:      "unlink",
			Usage:     "Remove the link of a Discord user",
			ArgsUsage: "USER_ID",
			Action:    handleUnlink(deps),
		},
		{
			Name:   "destinations",
			Usage:  "List notification channels per guild",
			Action: handleListDestinations(deps),
		},
		{
			Name:      "clear-destination",
			Usage:     "Remove the notification channel of a guild",
			ArgsUsage: "GUILD_ID",
			Action:    handleClearDestination(deps),
		},
	}
}

// handleListLinks handles the 'links' command.
func handleListLinks(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, _ *cli.Command) error {
		links, err := deps.DB.Service().Link().ListLinks(ctx)
		if err != nil {
			return err
		}

		for _, link := range links {
			deps.Logger.Info("Link",
				zap.Uint64("userID", link.ChatUserID),
				zap.Uint64("steamID", link.ExternalAccountID),
				zap.Time("linkedAt", time.Unix(link.LinkedAt, 0).UTC()),
			)
		}

		deps.Logger.Info("Listed links", zap.Int("count", len(links)))

		return nil
	}
}

// handleUnlink handles the 'unlink' command.
func handleUnlink(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		userID, err := parseIDArg(c)
		if err != nil {
			return err
		}

		link, err := deps.DB.Service().Link().Unlink(ctx, userID)
		if errors.Is(err, types.ErrLinkNotFound) {
			deps.Logger.Info("User has no link", zap.Uint64("userID", userID))
			return nil
		}
		if err != nil {
			return err
		}

		deps.Logger.Info("Removed link",
			zap.Uint64("userID", link.ChatUserID),
			zap.Uint64("steamID", link.ExternalAccountID),
		)

		return nil
	}
}

// handleListDestinations handles the 'destinations' command.
func handleListDestinations(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, _ *cli.Command) error {
		destinations, err := deps.DB.Service().Link().ListDestinations(ctx)
		if err != nil {
			return err
		}

		for _, destination := range destinations {
			deps.Logger.Info("Destination",
				zap.Uint64("guildID", destination.GuildID),
				zap.Uint64("channelID", destination.ChannelID),
			)
		}

		deps.Logger.Info("Listed destinations", zap.Int("count", len(destinations)))

		return nil
	}
}

// handleClearDestination handles the 'clear-destination' command.
func handleClearDestination(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		guildID, err := parseIDArg(c)
		if err != nil {
			return err
		}

		removed, err := deps.DB.Service().Link().RemoveDestination(ctx, guildID)
		if err != nil {
			return err
		}

		deps.Logger.Info("Cleared destination",
			zap.Uint64("guildID", guildID),
			zap.Bool("removed", removed),
		)

		return nil
	}
}

// parseIDArg parses the single Discord ID argument of a command.
func parseIDArg(c *cli.Command) (uint64, error) {
	if c.Args().Len() != 1 {
		return 0, ErrIDRequired
	}

	id, err := snowflake.Parse(c.Args().First())
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidSnowflake, err)
	}

	return uint64(id), nil
}
