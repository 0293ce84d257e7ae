package tallybot

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/snowflake/v2"
	"github.com/tallybot/tallybot/tallybot/announce"
	"github.com/tallybot/tallybot/tallybot/database"
	"github.com/tallybot/tallybot/tallybot/database/models"
	"github.com/tallybot/tallybot/tallybot/format"
	"github.com/tallybot/tallybot/tallybot/permissions"
	"github.com/tallybot/tallybot/tallybot/tally"
	"github.com/tallybot/tallybot/tallybot/timer"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:     cfg,
		Version: version,
		Commit:  commit,
	}
}

type Bot struct {
	Cfg     Config
	Client  bot.Client
	Version string
	Commit  string

	DB            *database.DB
	Tallies       *tally.Service
	Announcements *announce.Scheduler
	Timers        *timer.Service
	Permissions   *permissions.Service
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(
			gateway.IntentGuilds,
			gateway.IntentGuildMessages,
			gateway.IntentGuildMessageReactions,
			gateway.IntentDirectMessages,
			gateway.IntentDirectMessageReactions,
			gateway.IntentMessageContent,
		)),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds)),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	return nil
}

func (b *Bot) OnReady(_ *events.Ready) {
	slog.Info("Tally bot is now ready",
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithListeningActivity(b.Cfg.Bot.Prefix+" help"),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence", slog.Any("error", err))
	}
}

// SendAnnouncement delivers a fired announcement to its channel. It
// satisfies announce.Sender.
func (b *Bot) SendAnnouncement(channelID snowflake.ID, a *models.Announcement) error {
	_, err := b.Client.Rest().CreateMessage(channelID, format.Announcement(a))
	return err
}
