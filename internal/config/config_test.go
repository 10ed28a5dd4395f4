package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "secret")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.DiscordToken)
	assert.True(t, cfg.RegisterCommands)
	assert.Equal(t, "data/commands", cfg.CommandCacheDir)
	assert.Equal(t, 10*time.Minute, cfg.ModalTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 2, cfg.SyncWorkers)
	assert.Equal(t, "data/settings.json", cfg.SettingsPath)
	assert.Empty(t, cfg.GuildIDs)
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "secret")
	t.Setenv("DISCORD_GUILD_IDS", "1,2")
	t.Setenv("DISCORD_GUILD_BLACKLIST", "9")
	t.Setenv("MODAL_TIMEOUT", "90s")
	t.Setenv("REGISTER_COMMANDS", "false")
	t.Setenv("SYNC_WORKERS", "0")
	t.Setenv("DEVELOPER_ID", "42")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, cfg.GuildIDs)
	assert.Equal(t, 90*time.Second, cfg.ModalTimeout)
	assert.False(t, cfg.RegisterCommands)
	assert.Equal(t, 1, cfg.SyncWorkers)
	assert.Equal(t, "42", cfg.DeveloperID)
	assert.True(t, cfg.IsBlacklisted("9"))
	assert.False(t, cfg.IsBlacklisted("1"))
}

func TestParse_RequiresToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	_, err := Parse()
	assert.Error(t, err)
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	// godotenv does not override variables already set, so make sure the
	// token comes from the file.
	t.Setenv("DISCORD_TOKEN", "")
	require.NoError(t, os.Unsetenv("DISCORD_TOKEN"))
	t.Setenv("LOG_LEVEL", "debug")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DISCORD_TOKEN=from-file\nLOG_LEVEL=warn\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.DiscordToken)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "secret")
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
