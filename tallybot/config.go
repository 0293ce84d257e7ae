package tallybot

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/tallybot/tallybot/tallybot/database"
)

// DefaultPrefix is the command prefix used when the config leaves it
// empty.
const DefaultPrefix = "!tb"

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	if cfg.Bot.Prefix == "" {
		cfg.Bot.Prefix = DefaultPrefix
	}
	return &cfg, nil
}

type Config struct {
	Log      LogConfig         `toml:"log"`
	Bot      BotConfig         `toml:"bot"`
	DB       database.DBConfig `toml:"db"`
	Watchdog WatchdogConfig    `toml:"watchdog"`
}

type BotConfig struct {
	DevGuilds []snowflake.ID `toml:"dev_guilds"`
	Token     string         `toml:"token"`
	Prefix    string         `toml:"prefix"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

// WatchdogConfig configures the companion health-alert process. The
// bot itself ignores it.
type WatchdogConfig struct {
	CronPattern    string       `toml:"cron_pattern"`
	AlertChannelID snowflake.ID `toml:"alert_channel_id"`
}
