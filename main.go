package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/tallybot/tallybot/tallybot"
	"github.com/tallybot/tallybot/tallybot/announce"
	"github.com/tallybot/tallybot/tallybot/command"
	"github.com/tallybot/tallybot/tallybot/database"
	"github.com/tallybot/tallybot/tallybot/database/repositories"
	"github.com/tallybot/tallybot/tallybot/handlers"
	"github.com/tallybot/tallybot/tallybot/logger"
	"github.com/tallybot/tallybot/tallybot/permissions"
	"github.com/tallybot/tallybot/tallybot/tally"
	"github.com/tallybot/tallybot/tallybot/timer"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := tallybot.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}

	slog.SetDefault(slog.New(logger.NewHandler(cfg.Log.Level)))
	slog.Info("Starting tally bot",
		slog.String("version", version),
		slog.String("commit", commit),
		slog.String("prefix", cfg.Bot.Prefix))

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("error", err.Error()))
		os.Exit(-1)
	}
	slog.Info("Database ready",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	b := tallybot.New(*cfg, version, commit)
	b.DB = db

	bunDB := db.BunDB()
	b.Tallies = tally.NewService(repositories.NewTallyRepository(bunDB))
	b.Announcements = announce.NewScheduler(repositories.NewAnnouncementRepository(bunDB), b)
	b.Timers = timer.NewService(repositories.NewTimerRepository(bunDB))
	b.Permissions = permissions.NewService(repositories.NewPermissionRepository(bunDB))
	defer b.Announcements.Stop()

	// Every count change is checked against the channel's active
	// threshold goals without blocking the command reply.
	b.Tallies.OnCountChange(func(ctx context.Context, mctx command.Context, _ command.Scope, name string, current int64) {
		b.Announcements.CheckTallyGoals(ctx, mctx.ChannelID, name, current)
	})

	if err := b.SetupBot(handlers.NewDispatcher(b), bot.NewListenerFunc(b.OnReady)); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err))
		os.Exit(-1)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	// Date and cron goals registered by a previous process only live
	// in the database; put them back on the scheduler.
	if err := b.Announcements.Restore(ctx); err != nil {
		slog.Error("Failed to restore announcement schedules",
			slog.String("type", "sys"),
			slog.Any("error", err))
	}

	gwCtx, gwCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer gwCancel()
	if err := b.Client.OpenGateway(gwCtx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err))
		os.Exit(-1)
	}

	slog.Info("Bot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down bot...")
}
