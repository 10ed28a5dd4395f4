// Package config loads the bot configuration from the environment, reading
// a .env file first when one is present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken  string `env:"DISCORD_TOKEN,required,notEmpty"`
	ApplicationID string `env:"DISCORD_APPLICATION_ID"`
	// DeveloperID passes every permission check.
	DeveloperID string `env:"DEVELOPER_ID"`

	// GuildIDs limits command registration to these guilds. Empty means
	// global registration.
	GuildIDs       []string `env:"DISCORD_GUILD_IDS" envSeparator:","`
	GuildBlacklist []string `env:"DISCORD_GUILD_BLACKLIST" envSeparator:","`

	RegisterCommands bool   `env:"REGISTER_COMMANDS" envDefault:"true"`
	CommandCacheDir  string `env:"COMMAND_CACHE_DIR" envDefault:"data/commands"`
	SyncWorkers      int    `env:"SYNC_WORKERS" envDefault:"2"`

	// SettingsPath is the JSON file guild settings persist to. Empty keeps
	// them in memory only.
	SettingsPath string `env:"SETTINGS_PATH" envDefault:"data/settings.json"`

	ModalTimeout time.Duration `env:"MODAL_TIMEOUT" envDefault:"10m"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"true"`
}

// Load reads the given .env files (default ".env"), then parses the
// environment. Missing .env files are not an error.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.SyncWorkers < 1 {
		cfg.SyncWorkers = 1
	}
	return &cfg, nil
}

// IsBlacklisted reports whether the bot must not serve guildID.
func (c *Config) IsBlacklisted(guildID string) bool {
	return slices.Contains(c.GuildBlacklist, guildID)
}
