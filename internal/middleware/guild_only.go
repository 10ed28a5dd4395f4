package middleware

import "github.com/keshon/slashdispatch/pkg/cmd"

// GuildOnly fails outside of guilds. Commands that also set OnlyGuilds
// are hidden from DMs by Discord; this covers clients with stale command lists.
func GuildOnly() cmd.Check {
	return func(c *cmd.Context) (bool, error) {
		return c.Interaction != nil && c.Interaction.InGuild(), nil
	}
}
