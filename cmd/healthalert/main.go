package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/tallybot/tallybot/tallybot/logger"
)

const (
	defaultCronPattern = "*/30 * * * * *"
	defaultSocketPath  = "/var/run/docker.sock"

	initialBackoff = 5 * time.Minute
	maxBackoff     = 60 * time.Minute
)

// watchedServices are the compose services whose containers must be
// running (and healthy, announcer excepted since it has no healthcheck).
var watchedServices = []string{"tally-bot", "announcer"}

type watchdog struct {
	docker *DockerClient
	send   func(content string) error

	mu        sync.Mutex
	nextAlert time.Time
	backoff   time.Duration
}

func main() {
	slog.SetDefault(slog.New(logger.NewHandler(slog.LevelInfo)))

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		slog.Error("DISCORD_TOKEN is not set")
		os.Exit(-1)
	}

	channelID, err := snowflake.Parse(os.Getenv("ALERT_CHANNEL_ID"))
	if err != nil {
		slog.Error("ALERT_CHANNEL_ID is missing or invalid", slog.Any("error", err))
		os.Exit(-1)
	}

	pattern := os.Getenv("HEALTHCHECK_CRON_PATTERN")
	if pattern == "" {
		pattern = defaultCronPattern
	}
	socketPath := os.Getenv("DOCKER_SOCKET")
	if socketPath == "" {
		socketPath = defaultSocketPath
	}

	client, err := disgo.New(token)
	if err != nil {
		slog.Error("Failed to create discord client", slog.Any("error", err))
		os.Exit(-1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Close(ctx)
	}()

	w := &watchdog{
		docker:    NewDockerClient(socketPath),
		nextAlert: time.Now(),
		backoff:   initialBackoff,
		send: func(content string) error {
			_, err := client.Rest().CreateMessage(channelID, discord.MessageCreate{Content: content})
			return err
		},
	}

	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(pattern, w.check); err != nil {
		slog.Error("Invalid health check cron pattern",
			slog.String("pattern", pattern),
			slog.Any("error", err))
		os.Exit(-1)
	}
	c.Start()
	defer c.Stop()

	logger.LogSystem("Health check service started",
		slog.String("pattern", pattern),
		slog.String("socket", socketPath))

	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	logger.LogSystem("Shutting down health check service...")
}

func (w *watchdog) check() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	slog.Debug("Starting health check")
	containers, err := w.docker.ListContainers(ctx)
	if err != nil {
		logger.LogError("Health check failed", err)
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, container := range containers {
		if !watched(container, watchedServices) {
			continue
		}
		g.Go(func() error {
			return w.checkContainer(ctx, container)
		})
	}
	if err := g.Wait(); err != nil {
		logger.LogError("Failed to deliver container alert", err)
	}
	slog.Debug("Health check done")
}

func (w *watchdog) checkContainer(_ context.Context, c Container) error {
	var problem string
	switch {
	case c.State != "running":
		problem = "Tally Bot container is not running."
	case c.Service() != "announcer" && !strings.Contains(c.Status, "healthy"):
		problem = "Tally Bot container is not healthy!"
	default:
		slog.Debug("Container is in valid running state",
			slog.String("container", c.Name()))
		return nil
	}

	slog.Error("ALERT: "+problem,
		slog.String("container", c.Name()),
		slog.String("state", c.State),
		slog.String("status", c.Status))

	if !w.shouldAlert() {
		return nil
	}
	return w.send("ALERT: " + problem)
}

// shouldAlert applies the doubling backoff so a stuck container does
// not page the operator channel every poll.
func (w *watchdog) shouldAlert() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if time.Now().Before(w.nextAlert) {
		return false
	}
	w.nextAlert = w.nextAlert.Add(w.backoff)
	if w.backoff < maxBackoff {
		w.backoff *= 2
	}
	return true
}
