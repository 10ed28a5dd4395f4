package discord

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/slashdispatch/pkg/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testInteraction = &cmd.Interaction{ID: "1", ApplicationID: "app", Token: "tok"}

func TestResponder_Message(t *testing.T) {
	s := newFakeSession()
	r := NewResponder(s)

	err := r.Respond(context.Background(), testInteraction, cmd.Response{
		Kind: cmd.ResponseMessage,
		Message: &cmd.Message{
			Content:   "hi",
			Embeds:    []cmd.Embed{{Title: "t", Description: "d"}},
			Ephemeral: true,
		},
	})
	require.NoError(t, err)

	sent := s.sentResponses()
	require.Len(t, sent, 1)
	assert.Equal(t, "1", sent[0].interaction.ID)
	assert.Equal(t, "tok", sent[0].interaction.Token)
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, sent[0].resp.Type)
	assert.Equal(t, "hi", sent[0].resp.Data.Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, sent[0].resp.Data.Flags)
	require.Len(t, sent[0].resp.Data.Embeds, 1)
	assert.Equal(t, EmbedColor, sent[0].resp.Data.Embeds[0].Color)
}

func TestResponder_Deferred(t *testing.T) {
	s := newFakeSession()
	r := NewResponder(s)

	require.NoError(t, r.Respond(context.Background(), testInteraction, cmd.Response{Kind: cmd.ResponseDeferred}))
	require.NoError(t, r.Respond(context.Background(), testInteraction, cmd.Response{Kind: cmd.ResponseDeferred, Ephemeral: true}))

	sent := s.sentResponses()
	require.Len(t, sent, 2)
	assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, sent[0].resp.Type)
	assert.Nil(t, sent[0].resp.Data)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, sent[1].resp.Data.Flags)
}

func TestResponder_Modal(t *testing.T) {
	s := newFakeSession()
	r := NewResponder(s)

	err := r.Respond(context.Background(), testInteraction, cmd.Response{
		Kind: cmd.ResponseModal,
		Modal: &cmd.Modal{
			CustomID: "m1",
			Title:    "Feedback",
			Fields: []cmd.ModalField{
				{ID: "subject", Label: "Subject", Required: true, MaxLength: 80},
				{ID: "body", Label: "Body", Style: cmd.TextParagraph},
			},
		},
	})
	require.NoError(t, err)

	resp := s.sentResponses()[0].resp
	assert.Equal(t, discordgo.InteractionResponseModal, resp.Type)
	assert.Equal(t, "m1", resp.Data.CustomID)
	require.Len(t, resp.Data.Components, 2)

	row := resp.Data.Components[1].(discordgo.ActionsRow)
	input := row.Components[0].(discordgo.TextInput)
	assert.Equal(t, "body", input.CustomID)
	assert.Equal(t, discordgo.TextInputParagraph, input.Style)

	first := resp.Data.Components[0].(discordgo.ActionsRow).Components[0].(discordgo.TextInput)
	assert.Equal(t, discordgo.TextInputShort, first.Style)
	assert.True(t, first.Required)
	assert.Equal(t, 80, first.MaxLength)
}

func TestResponder_AutocompleteCapsChoices(t *testing.T) {
	s := newFakeSession()
	r := NewResponder(s)

	choices := make([]cmd.Choice, 40)
	for i := range choices {
		choices[i] = cmd.Choice{Name: fmt.Sprint(i), Value: i}
	}
	require.NoError(t, r.Respond(context.Background(), testInteraction, cmd.Response{Kind: cmd.ResponseAutocomplete, Choices: choices}))
	require.NoError(t, r.Respond(context.Background(), testInteraction, cmd.Response{Kind: cmd.ResponseAutocomplete}))

	sent := s.sentResponses()
	assert.Equal(t, discordgo.InteractionApplicationCommandAutocompleteResult, sent[0].resp.Type)
	assert.Len(t, sent[0].resp.Data.Choices, maxAutocompleteChoices)
	assert.NotNil(t, sent[1].resp.Data.Choices)
	assert.Empty(t, sent[1].resp.Data.Choices)
}

func TestResponder_Edit(t *testing.T) {
	s := newFakeSession()
	r := NewResponder(s)

	require.NoError(t, r.Edit(context.Background(), testInteraction, cmd.Message{Content: "done"}))
	require.Len(t, s.edits, 1)
	assert.Equal(t, "done", *s.edits[0].Content)
}

func TestResponder_InvalidResponses(t *testing.T) {
	r := NewResponder(newFakeSession())
	for _, resp := range []cmd.Response{
		{Kind: cmd.ResponseMessage},
		{Kind: cmd.ResponseModal},
		{Kind: cmd.ResponseKind(99)},
	} {
		assert.Error(t, r.Respond(context.Background(), testInteraction, resp))
	}
}
