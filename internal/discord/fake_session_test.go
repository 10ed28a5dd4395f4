package discord

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

type respondCall struct {
	interaction *discordgo.Interaction
	resp        *discordgo.InteractionResponse
}

type fakeSession struct {
	mu sync.Mutex

	remote      map[string][]*discordgo.ApplicationCommand
	responses   []respondCall
	edits       []*discordgo.WebhookEdit
	created     []string
	deleted     []string
	overwritten map[string][]*discordgo.ApplicationCommand
	left        []string

	respondErr error
	createErr  map[string]error
	listErrs   []error
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		remote:      make(map[string][]*discordgo.ApplicationCommand),
		overwritten: make(map[string][]*discordgo.ApplicationCommand),
		createErr:   make(map[string]error),
	}
}

func (f *fakeSession) InteractionRespond(i *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, respondCall{interaction: i, resp: resp})
	return f.respondErr
}

func (f *fakeSession) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, edit)
	return &discordgo.Message{}, nil
}

func (f *fakeSession) ApplicationCommands(_, guildID string, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.listErrs) > 0 {
		err := f.listErrs[0]
		f.listErrs = f.listErrs[1:]
		return nil, err
	}
	return append([]*discordgo.ApplicationCommand(nil), f.remote[guildID]...), nil
}

func (f *fakeSession) ApplicationCommandCreate(_, guildID string, c *discordgo.ApplicationCommand, _ ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.createErr[c.Name]; err != nil {
		return nil, err
	}
	f.created = append(f.created, guildID+"/"+c.Name)
	stored := *c
	stored.ID = "id-" + c.Name
	kept := f.remote[guildID][:0]
	for _, rc := range f.remote[guildID] {
		if rc.Name != c.Name {
			kept = append(kept, rc)
		}
	}
	f.remote[guildID] = append(kept, &stored)
	return &stored, nil
}

func (f *fakeSession) ApplicationCommandDelete(_, guildID, cmdID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, guildID+"/"+cmdID)
	kept := f.remote[guildID][:0]
	for _, rc := range f.remote[guildID] {
		if rc.ID != cmdID {
			kept = append(kept, rc)
		}
	}
	f.remote[guildID] = kept
	return nil
}

func (f *fakeSession) ApplicationCommandBulkOverwrite(_, guildID string, cmds []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overwritten[guildID] = cmds
	f.remote[guildID] = cmds
	return cmds, nil
}

func (f *fakeSession) GuildLeave(guildID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.left = append(f.left, guildID)
	return nil
}

func (f *fakeSession) sentResponses() []respondCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]respondCall(nil), f.responses...)
}
