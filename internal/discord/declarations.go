package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/keshon/slashdispatch/pkg/cmd"
)

// ApplicationCommands converts framework declarations into the payloads
// uploaded to Discord.
func ApplicationCommands(decls []cmd.Declaration) []*discordgo.ApplicationCommand {
	out := make([]*discordgo.ApplicationCommand, 0, len(decls))
	for _, d := range decls {
		out = append(out, applicationCommand(d))
	}
	return out
}

func applicationCommand(d cmd.Declaration) *discordgo.ApplicationCommand {
	ac := &discordgo.ApplicationCommand{
		Type:                     discordgo.ChatApplicationCommand,
		Name:                     d.Name,
		Description:              d.Description,
		Options:                  commandOptions(d.Options),
		DefaultMemberPermissions: d.Permissions,
	}
	if d.OnlyGuilds {
		dm := false
		ac.DMPermission = &dm
	}
	if d.NSFW {
		nsfw := true
		ac.NSFW = &nsfw
	}
	return ac
}

func commandOptions(in []cmd.OptionDecl) []*discordgo.ApplicationCommandOption {
	if len(in) == 0 {
		return nil
	}
	out := make([]*discordgo.ApplicationCommandOption, 0, len(in))
	for _, o := range in {
		out = append(out, &discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionType(o.Kind),
			Name:         o.Name,
			Description:  o.Description,
			Required:     o.Required,
			Autocomplete: o.Autocomplete,
			Choices:      choiceList(o.Choices),
			Options:      commandOptions(o.Options),
		})
	}
	return out
}

func choiceList(in []cmd.Choice) []*discordgo.ApplicationCommandOptionChoice {
	if len(in) == 0 {
		return nil
	}
	return optionChoices(in)
}
