package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/slashdispatch/internal/config"
	"github.com/keshon/slashdispatch/pkg/cmd"
	"github.com/keshon/slashdispatch/pkg/jobmgr"
	"github.com/keshon/slashdispatch/pkg/util"
	"github.com/rs/zerolog"
)

// Gateway is the connection side of *discordgo.Session.
type Gateway interface {
	AddHandler(handler interface{}) func()
	Open() error
	Close() error
}

var _ Gateway = (*discordgo.Session)(nil)

// Bot feeds gateway interactions into a cmd.Framework, one job per
// interaction, and keeps the application's commands registered.
type Bot struct {
	cfg       *config.Config
	api       Session
	gw        Gateway
	fw        *cmd.Framework
	responder *Responder
	cache     *HashCache
	jobs      *jobmgr.Manager
	log       zerolog.Logger
}

// NewBot wires a bot around an unopened session.
func NewBot(cfg *config.Config, s *discordgo.Session, fw *cmd.Framework, log zerolog.Logger) *Bot {
	return newBot(cfg, s, s, fw, log)
}

func newBot(cfg *config.Config, api Session, gw Gateway, fw *cmd.Framework, log zerolog.Logger) *Bot {
	return &Bot{
		cfg:       cfg,
		api:       api,
		gw:        gw,
		fw:        fw,
		responder: NewResponder(api),
		cache:     NewHashCache(cfg.CommandCacheDir),
		log:       log.With().Str("component", "bot").Logger(),
	}
}

// Run opens the gateway and serves until ctx is done. In-flight
// interactions are cancelled and awaited before the session closes.
func (b *Bot) Run(ctx context.Context) error {
	b.jobs = jobmgr.NewManager(ctx, func(msg string) {
		b.log.Trace().Msg(msg)
	})

	b.gw.AddHandler(b.onReady)
	b.gw.AddHandler(b.onGuildCreate)
	b.gw.AddHandler(b.onInteractionCreate)

	if err := b.gw.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	<-ctx.Done()
	b.log.Info().Msg("shutdown signal received, cleaning up")
	b.jobs.StopAll()
	b.jobs.Wait()
	return b.gw.Close()
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	for _, g := range r.Guilds {
		b.leaveIfBlacklisted(g.ID)
	}

	appID := b.cfg.ApplicationID
	if appID == "" && r.User != nil {
		appID = r.User.ID
	}
	if !b.cfg.RegisterCommands {
		b.log.Info().Msg("command registration skipped")
	} else if err := b.jobs.Go("sync-commands", func(ctx context.Context) error {
		return b.SyncCommands(ctx, appID)
	}); err != nil {
		b.log.Warn().Err(err).Msg("command sync not started")
	}

	name := ""
	if r.User != nil {
		name = r.User.Username
	}
	b.log.Info().Str("user", name).Int("guilds", len(r.Guilds)).Msg("discord bot is running")
}

func (b *Bot) onGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Guild == nil {
		return
	}
	b.log.Debug().Str("guild", g.ID).Str("name", g.Name).Msg("guild available")
	b.leaveIfBlacklisted(g.ID)
}

func (b *Bot) leaveIfBlacklisted(guildID string) {
	if !b.cfg.IsBlacklisted(guildID) {
		return
	}
	b.log.Info().Str("guild", guildID).Msg("leaving blacklisted guild")
	if err := b.api.GuildLeave(guildID); err != nil {
		b.log.Error().Err(err).Str("guild", guildID).Msg("failed to leave guild")
	}
}

// SyncCommands registers the framework's declarations for every configured
// guild, or globally when none are configured.
func (b *Bot) SyncCommands(ctx context.Context, appID string) error {
	if appID == "" {
		return errors.New("application id unknown")
	}
	syncer := NewSyncer(b.api, appID, b.cache, b.log)
	defs := ApplicationCommands(b.fw.Declarations())

	if len(b.cfg.GuildIDs) == 0 {
		report, err := syncer.SyncGlobal(ctx, defs)
		if err != nil {
			b.log.Error().Err(err).Msg("global command sync failed")
			return err
		}
		b.log.Info().Int("created", report.Created).Int("unchanged", report.Unchanged).Msg("global commands synced")
		return nil
	}

	return util.Parallel(ctx, b.cfg.GuildIDs, b.cfg.SyncWorkers, func(ctx context.Context, guildID string) error {
		if b.cfg.IsBlacklisted(guildID) {
			if err := syncer.ClearGuild(ctx, guildID); err != nil {
				b.log.Error().Err(err).Str("guild", guildID).Msg("failed to clear commands")
			}
			return nil
		}
		report, err := syncer.SyncGuild(ctx, guildID, defs)
		if err != nil {
			b.log.Error().Err(err).Str("guild", guildID).Msg("command sync incomplete")
			return nil
		}
		b.log.Info().
			Str("guild", guildID).
			Int("created", report.Created).
			Int("deleted", report.Deleted).
			Int("unchanged", report.Unchanged).
			Msg("guild commands synced")
		return nil
	})
}

func (b *Bot) onInteractionCreate(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
	b.handle(ic)
}

func (b *Bot) handle(ic *discordgo.InteractionCreate) {
	in, err := FromDiscord(ic)
	if err != nil {
		b.log.Debug().Err(err).Msg("ignoring interaction")
		return
	}
	if in.InGuild() && b.cfg.IsBlacklisted(in.GuildID) {
		b.log.Debug().Str("guild", in.GuildID).Msg("interaction from blacklisted guild")
		return
	}
	if err := b.jobs.Go("interaction:"+in.ID, func(ctx context.Context) error {
		return b.process(ctx, in)
	}); err != nil {
		b.log.Warn().Err(err).Str("interaction", in.ID).Msg("interaction dropped")
	}
}

func (b *Bot) process(ctx context.Context, in *cmd.Interaction) error {
	out := b.fw.Process(ctx, in)

	ev := b.log.Debug()
	if out.Failed() {
		ev = b.log.Warn().Err(out.Err)
	}
	ev.Str("interaction", in.ID).
		Str("kind", in.Kind.String()).
		Str("command", out.Command).
		Str("outcome", out.Kind.String()).
		Msg("interaction processed")

	if msg, ok := failureMessage(in, out); ok {
		b.notify(ctx, in, msg)
	}
	return out.Err
}

// notify tells the user why their interaction failed. If the interaction was
// already acknowledged the original response is replaced instead.
func (b *Bot) notify(ctx context.Context, in *cmd.Interaction, text string) {
	msg := cmd.Message{Embeds: []cmd.Embed{{Description: text, Color: EmbedColor}}, Ephemeral: true}
	err := b.responder.Respond(ctx, in, cmd.Response{Kind: cmd.ResponseMessage, Message: &msg})
	if err == nil {
		return
	}
	if editErr := b.responder.Edit(ctx, in, msg); editErr != nil {
		b.log.Warn().Err(errors.Join(err, editErr)).Str("interaction", in.ID).Msg("failed to report error to user")
	}
}

func failureMessage(in *cmd.Interaction, out cmd.Outcome) (string, bool) {
	switch out.Kind {
	case cmd.OutcomeUnknownCommand:
		return "Unknown command.", true
	case cmd.OutcomeCheckFailed:
		var ce *cmd.CheckError
		if errors.As(out.Err, &ce) && ce.Err != nil {
			return fmt.Sprintf("You can't use this command: %v", ce.Err), true
		}
		return "You can't use this command here.", true
	case cmd.OutcomeCoercionFailed:
		var ce *cmd.CoercionError
		if !errors.As(out.Err, &ce) {
			return "Invalid input.", true
		}
		what := "option"
		if in.Kind == cmd.InteractionModalSubmit {
			what = "field"
		}
		switch {
		case ce.Kind == cmd.CoercionMissingRequired:
			return fmt.Sprintf("The %s `%s` is required.", what, ce.Argument), true
		case ce.Detail != "":
			return fmt.Sprintf("Invalid %s `%s`: %s", what, ce.Argument, ce.Detail), true
		case ce.Err != nil:
			return fmt.Sprintf("Invalid %s `%s`: %v", what, ce.Argument, ce.Err), true
		default:
			return fmt.Sprintf("Invalid %s `%s`.", what, ce.Argument), true
		}
	case cmd.OutcomeExecutionFailed:
		var ee *cmd.ExecutionError
		if errors.As(out.Err, &ee) {
			return fmt.Sprintf("Error running command: %v", ee.Err), true
		}
		return "Error running command.", true
	case cmd.OutcomeInternalError:
		return "Something went wrong.", true
	case cmd.OutcomeStaleModal:
		return "This form has expired. Run the command again.", true
	default:
		return "", false
	}
}
