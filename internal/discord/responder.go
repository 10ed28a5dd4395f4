package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/slashdispatch/pkg/cmd"
)

const EmbedColor = 0xb01e66

// Discord rejects autocomplete results with more than 25 choices.
const maxAutocompleteChoices = 25

// Session is the subset of *discordgo.Session the adapter calls.
type Session interface {
	InteractionRespond(i *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(i *discordgo.Interaction, edit *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ApplicationCommands(appID, guildID string, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	ApplicationCommandCreate(appID, guildID string, c *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	ApplicationCommandDelete(appID, guildID, cmdID string, options ...discordgo.RequestOption) error
	ApplicationCommandBulkOverwrite(appID, guildID string, cmds []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	GuildLeave(guildID string, options ...discordgo.RequestOption) error
}

var _ Session = (*discordgo.Session)(nil)

// Responder delivers framework responses over the Discord HTTP API.
type Responder struct {
	s Session
}

// NewResponder returns a Responder bound to s.
func NewResponder(s Session) *Responder { return &Responder{s: s} }

var _ cmd.Responder = (*Responder)(nil)

// Respond implements cmd.Responder.
func (r *Responder) Respond(ctx context.Context, i *cmd.Interaction, resp cmd.Response) error {
	out, err := interactionResponse(resp)
	if err != nil {
		return err
	}
	return r.s.InteractionRespond(ref(i), out, discordgo.WithContext(ctx))
}

// Edit implements cmd.Responder.
func (r *Responder) Edit(ctx context.Context, i *cmd.Interaction, m cmd.Message) error {
	content := m.Content
	embeds := embeds(m.Embeds)
	_, err := r.s.InteractionResponseEdit(ref(i), &discordgo.WebhookEdit{
		Content: &content,
		Embeds:  &embeds,
	}, discordgo.WithContext(ctx))
	return err
}

func ref(i *cmd.Interaction) *discordgo.Interaction {
	return &discordgo.Interaction{ID: i.ID, AppID: i.ApplicationID, Token: i.Token}
}

func interactionResponse(r cmd.Response) (*discordgo.InteractionResponse, error) {
	switch r.Kind {
	case cmd.ResponseMessage:
		if r.Message == nil {
			return nil, fmt.Errorf("message response without message")
		}
		return &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: messageData(*r.Message),
		}, nil
	case cmd.ResponseDeferred:
		out := &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredChannelMessageWithSource}
		if r.Ephemeral {
			out.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
		}
		return out, nil
	case cmd.ResponseModal:
		if r.Modal == nil {
			return nil, fmt.Errorf("modal response without modal")
		}
		return &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: &discordgo.InteractionResponseData{
				CustomID:   r.Modal.CustomID,
				Title:      r.Modal.Title,
				Components: modalComponents(r.Modal.Fields),
			},
		}, nil
	case cmd.ResponseAutocomplete:
		choices := r.Choices
		if len(choices) > maxAutocompleteChoices {
			choices = choices[:maxAutocompleteChoices]
		}
		return &discordgo.InteractionResponse{
			Type: discordgo.InteractionApplicationCommandAutocompleteResult,
			Data: &discordgo.InteractionResponseData{Choices: optionChoices(choices)},
		}, nil
	default:
		return nil, fmt.Errorf("unknown response kind %d", r.Kind)
	}
}

func messageData(m cmd.Message) *discordgo.InteractionResponseData {
	d := &discordgo.InteractionResponseData{
		Content: m.Content,
		Embeds:  embeds(m.Embeds),
	}
	if m.Ephemeral {
		d.Flags = discordgo.MessageFlagsEphemeral
	}
	return d
}

func embeds(in []cmd.Embed) []*discordgo.MessageEmbed {
	out := make([]*discordgo.MessageEmbed, 0, len(in))
	for _, e := range in {
		color := e.Color
		if color == 0 {
			color = EmbedColor
		}
		out = append(out, &discordgo.MessageEmbed{Title: e.Title, Description: e.Description, Color: color})
	}
	return out
}

func modalComponents(fields []cmd.ModalField) []discordgo.MessageComponent {
	rows := make([]discordgo.MessageComponent, 0, len(fields))
	for _, f := range fields {
		style := discordgo.TextInputShort
		if f.Style == cmd.TextParagraph {
			style = discordgo.TextInputParagraph
		}
		rows = append(rows, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    f.ID,
					Label:       f.Label,
					Style:       style,
					Placeholder: f.Placeholder,
					Value:       f.Value,
					Required:    f.Required,
					MinLength:   f.MinLength,
					MaxLength:   f.MaxLength,
				},
			},
		})
	}
	return rows
}

func optionChoices(in []cmd.Choice) []*discordgo.ApplicationCommandOptionChoice {
	out := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(in))
	for _, c := range in {
		out = append(out, &discordgo.ApplicationCommandOptionChoice{Name: c.Name, Value: c.Value})
	}
	return out
}
