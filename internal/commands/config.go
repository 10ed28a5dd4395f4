package commands

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/slashdispatch/internal/middleware"
	"github.com/keshon/slashdispatch/pkg/cmd"
)

func settingChoices() []cmd.Choice {
	keys := settingKeys()
	out := make([]cmd.Choice, 0, len(keys))
	for _, k := range keys {
		out = append(out, cmd.Choice{Name: k, Value: k})
	}
	return out
}

func registerConfig(b *cmd.Builder, d Deps) {
	perm := int64(discordgo.PermissionManageGuild)
	checks := []cmd.Check{
		middleware.GuildOnly(),
		middleware.RequireAnyPermission(d.DeveloperID, discordgo.PermissionManageGuild),
	}

	b.Parent(cmd.Parent{
		Name:        "config",
		Description: "Configure the bot for this server",
		Permissions: &perm,
		OnlyGuilds:  true,
	})
	b.Command(&cmd.Command{
		Name:        "show",
		Description: "Show the current settings",
		Parent:      "config",
		Checks:      checks,
		Run: func(c *cmd.Context, _ cmd.Args) (any, error) {
			all := d.Settings.All(c.Interaction.GuildID)
			var sb strings.Builder
			for _, k := range settingKeys() {
				fmt.Fprintf(&sb, "`%s`: **%d**\n", k, all[k])
			}
			return all, c.Respond(cmd.Response{
				Kind: cmd.ResponseMessage,
				Message: &cmd.Message{
					Embeds:    []cmd.Embed{{Title: "⚙️ Settings", Description: strings.TrimSpace(sb.String()), Color: embedColor}},
					Ephemeral: true,
				},
			})
		},
	})

	b.Group("config", "limits", "Dice limits")
	b.Command(&cmd.Command{
		Name:        "set",
		Description: "Change a limit",
		Parent:      "config",
		Group:       "limits",
		Checks:      checks,
		Arguments: []cmd.Argument{
			{Name: "key", Description: "Setting to change", Required: true, Type: cmd.StringChoices(settingChoices()...)},
			{Name: "value", Description: "New value", Required: true, Type: cmd.IntegerRange(1, 100)},
		},
		Run: func(c *cmd.Context, args cmd.Args) (any, error) {
			key, value := args.String("key"), args.Int("value")
			if err := d.Settings.Set(c.Interaction.GuildID, key, value); err != nil {
				return nil, fmt.Errorf("save setting: %w", err)
			}
			c.Logger().Info().Str("key", key).Int64("value", value).Msg("setting changed")
			return value, c.ReplyEphemeral(fmt.Sprintf("`%s` is now **%d**.", key, value))
		},
	})
	b.Command(&cmd.Command{
		Name:        "reset",
		Description: "Restore defaults",
		Parent:      "config",
		Group:       "limits",
		Checks:      checks,
		Arguments: []cmd.Argument{
			{Name: "key", Description: "Setting to reset, all when empty", Type: cmd.StringChoices(settingChoices()...)},
		},
		Run: func(c *cmd.Context, args cmd.Args) (any, error) {
			key := args.String("key")
			if err := d.Settings.Reset(c.Interaction.GuildID, key); err != nil {
				return nil, fmt.Errorf("reset settings: %w", err)
			}
			if key == "" {
				return nil, c.ReplyEphemeral("All limits restored to defaults.")
			}
			return nil, c.ReplyEphemeral(fmt.Sprintf("`%s` restored to **%d**.", key, settingDefaults[key]))
		},
	})
}
