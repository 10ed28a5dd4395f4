package discord

import (
	"fmt"
	"math"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/slashdispatch/pkg/cmd"
)

// FromDiscord converts a gateway interaction into the transport-neutral form
// the framework processes. Pings and message components are not supported
// and yield cmd.ErrUnsupportedInteraction.
func FromDiscord(ic *discordgo.InteractionCreate) (*cmd.Interaction, error) {
	if ic == nil || ic.Interaction == nil {
		return nil, fmt.Errorf("%w: empty event", cmd.ErrUnsupportedInteraction)
	}
	e := ic.Interaction
	out := &cmd.Interaction{
		ID:            e.ID,
		Token:         e.Token,
		ApplicationID: e.AppID,
		GuildID:       e.GuildID,
		ChannelID:     e.ChannelID,
	}
	switch {
	case e.Member != nil:
		out.Member = member(e.Member)
		out.User = out.Member.User
	case e.User != nil:
		out.User = user(e.User)
	}

	switch e.Type {
	case discordgo.InteractionApplicationCommand, discordgo.InteractionApplicationCommandAutocomplete:
		data, ok := e.Data.(discordgo.ApplicationCommandInteractionData)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected data %T", cmd.ErrUnsupportedInteraction, e.Data)
		}
		if data.CommandType != 0 && data.CommandType != discordgo.ChatApplicationCommand {
			return nil, fmt.Errorf("%w: command type %d", cmd.ErrUnsupportedInteraction, data.CommandType)
		}
		out.Kind = cmd.InteractionCommand
		if e.Type == discordgo.InteractionApplicationCommandAutocomplete {
			out.Kind = cmd.InteractionAutocomplete
		}
		out.Name = data.Name
		out.Options = options(data.Options)
		out.Resolved = resolved(data.Resolved)
	case discordgo.InteractionModalSubmit:
		data, ok := e.Data.(discordgo.ModalSubmitInteractionData)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected data %T", cmd.ErrUnsupportedInteraction, e.Data)
		}
		out.Kind = cmd.InteractionModalSubmit
		out.CustomID = data.CustomID
		out.Fields = make(map[string]string)
		collectFields(data.Components, out.Fields)
	default:
		return nil, fmt.Errorf("%w: type %d", cmd.ErrUnsupportedInteraction, e.Type)
	}
	return out, nil
}

func options(in []*discordgo.ApplicationCommandInteractionDataOption) []cmd.RawOption {
	if len(in) == 0 {
		return nil
	}
	out := make([]cmd.RawOption, 0, len(in))
	for _, o := range in {
		if o == nil {
			continue
		}
		raw := cmd.RawOption{
			Name:    o.Name,
			Kind:    cmd.OptionKind(o.Type),
			Value:   o.Value,
			Focused: o.Focused,
			Options: options(o.Options),
		}
		// JSON numbers arrive as float64. Values that do not fit an int64
		// stay float64 for the coercer to reject.
		if f, ok := o.Value.(float64); ok && o.Type == discordgo.ApplicationCommandOptionInteger &&
			f == math.Trunc(f) && f >= -(1<<63) && f < 1<<63 {
			raw.Value = int64(f)
		}
		out = append(out, raw)
	}
	return out
}

func collectFields(components []discordgo.MessageComponent, dst map[string]string) {
	for _, c := range components {
		switch v := c.(type) {
		case *discordgo.ActionsRow:
			collectFields(v.Components, dst)
		case discordgo.ActionsRow:
			collectFields(v.Components, dst)
		case *discordgo.TextInput:
			dst[v.CustomID] = v.Value
		case discordgo.TextInput:
			dst[v.CustomID] = v.Value
		}
	}
}

func user(u *discordgo.User) *cmd.User {
	if u == nil {
		return nil
	}
	return &cmd.User{ID: u.ID, Username: u.Username, Bot: u.Bot}
}

func member(m *discordgo.Member) *cmd.Member {
	if m == nil {
		return nil
	}
	return &cmd.Member{
		User:        user(m.User),
		Nick:        m.Nick,
		Roles:       m.Roles,
		Permissions: m.Permissions,
	}
}

func resolved(r *discordgo.ApplicationCommandInteractionDataResolved) *cmd.Resolved {
	if r == nil {
		return nil
	}
	out := &cmd.Resolved{
		Users:    make(map[string]*cmd.User, len(r.Users)),
		Members:  make(map[string]*cmd.Member, len(r.Members)),
		Roles:    make(map[string]*cmd.Role, len(r.Roles)),
		Channels: make(map[string]*cmd.Channel, len(r.Channels)),
	}
	for id, u := range r.Users {
		out.Users[id] = user(u)
	}
	for id, m := range r.Members {
		if m == nil {
			continue
		}
		cm := member(m)
		// Resolved members omit the user; it lives in Users under the same id.
		if cm.User == nil {
			cm.User = out.Users[id]
		}
		out.Members[id] = cm
	}
	for id, role := range r.Roles {
		if role != nil {
			out.Roles[id] = &cmd.Role{ID: role.ID, Name: role.Name, Permissions: role.Permissions}
		}
	}
	for id, ch := range r.Channels {
		if ch != nil {
			out.Channels[id] = &cmd.Channel{ID: ch.ID, Name: ch.Name, Type: int(ch.Type)}
		}
	}
	return out
}
