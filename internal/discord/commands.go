package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/slashdispatch/pkg/retrylimit"
	"github.com/rs/zerolog"
)

// SyncReport summarizes one command sync.
type SyncReport struct {
	Created   int
	Deleted   int
	Unchanged int
}

// Syncer uploads command declarations, skipping commands whose hash matches
// the last successful upload.
type Syncer struct {
	s       Session
	appID   string
	cache   *HashCache
	limiter *retrylimit.AdaptiveLimiter
	retry   retrylimit.RetryConfig
	log     zerolog.Logger
}

// NewSyncer returns a Syncer for the application appID.
func NewSyncer(s Session, appID string, cache *HashCache, log zerolog.Logger) *Syncer {
	retry := retrylimit.DefaultRetryConfig()
	retry.MaxAttempts = 3
	retry.MaxDelay = 5 * time.Second
	retry.Status = restStatus
	return &Syncer{
		s:       s,
		appID:   appID,
		cache:   cache,
		limiter: retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5),
		retry:   retry,
		log:     log.With().Str("component", "sync").Logger(),
	}
}

func (y *Syncer) call(ctx context.Context, fn func() error) error {
	cfg := y.retry
	cfg.Logger = &y.log
	return retrylimit.WithRetryConfig(ctx, fn, y.limiter, cfg)
}

// SyncGuild makes the guild's commands match defs: obsolete commands are
// deleted, new or changed ones are created (Discord upserts by name).
func (y *Syncer) SyncGuild(ctx context.Context, guildID string, defs []*discordgo.ApplicationCommand) (SyncReport, error) {
	var report SyncReport
	log := y.log.With().Str("guild", guildID).Logger()

	var remote []*discordgo.ApplicationCommand
	err := y.call(ctx, func() (err error) {
		remote, err = y.s.ApplicationCommands(y.appID, guildID, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		return report, fmt.Errorf("list commands for guild %s: %w", guildID, err)
	}
	remoteByName := make(map[string]*discordgo.ApplicationCommand, len(remote))
	for _, c := range remote {
		remoteByName[c.Name] = c
	}

	wanted := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		wanted[d.Name] = struct{}{}
	}

	hashes := y.cache.Load(guildID)
	var errs []error

	for name, rc := range remoteByName {
		if _, ok := wanted[name]; ok {
			continue
		}
		log.Info().Str("command", name).Msg("deleting obsolete command")
		err := y.call(ctx, func() error {
			return y.s.ApplicationCommandDelete(y.appID, guildID, rc.ID, discordgo.WithContext(ctx))
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", name, err))
			continue
		}
		delete(hashes, name)
		report.Deleted++
	}

	for _, d := range defs {
		h := hashCommand(d)
		if _, present := remoteByName[d.Name]; present && hashes[d.Name] == h {
			report.Unchanged++
			continue
		}
		err := y.call(ctx, func() error {
			_, err := y.s.ApplicationCommandCreate(y.appID, guildID, d, discordgo.WithContext(ctx))
			return err
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("register %s: %w", d.Name, err))
			continue
		}
		log.Info().Str("command", d.Name).Msg("registered command")
		hashes[d.Name] = h
		report.Created++
	}

	if err := y.cache.Save(guildID, hashes); err != nil {
		log.Warn().Err(err).Msg("failed to save command cache")
	}
	return report, errors.Join(errs...)
}

// SyncGlobal replaces the global command set in one request unless it is
// unchanged since the last upload and Discord still lists exactly the same
// commands.
func (y *Syncer) SyncGlobal(ctx context.Context, defs []*discordgo.ApplicationCommand) (SyncReport, error) {
	h := hashCommandSet(defs)
	cached := y.cache.Load(globalScope)
	if cached["*"] == h {
		var remote []*discordgo.ApplicationCommand
		err := y.call(ctx, func() (err error) {
			remote, err = y.s.ApplicationCommands(y.appID, "", discordgo.WithContext(ctx))
			return err
		})
		if err != nil {
			return SyncReport{}, fmt.Errorf("list global commands: %w", err)
		}
		if sameNames(remote, defs) {
			return SyncReport{Unchanged: len(defs)}, nil
		}
		y.log.Info().Int("remote", len(remote)).Msg("global commands drifted from cache, re-uploading")
	}

	err := y.call(ctx, func() error {
		_, err := y.s.ApplicationCommandBulkOverwrite(y.appID, "", defs, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		return SyncReport{}, fmt.Errorf("overwrite global commands: %w", err)
	}
	if err := y.cache.Save(globalScope, map[string]string{"*": h}); err != nil {
		y.log.Warn().Err(err).Msg("failed to save command cache")
	}
	y.log.Info().Int("commands", len(defs)).Msg("global commands registered")
	return SyncReport{Created: len(defs)}, nil
}

func sameNames(remote, defs []*discordgo.ApplicationCommand) bool {
	if len(remote) != len(defs) {
		return false
	}
	names := make(map[string]struct{}, len(remote))
	for _, c := range remote {
		names[c.Name] = struct{}{}
	}
	for _, d := range defs {
		if _, ok := names[d.Name]; !ok {
			return false
		}
	}
	return true
}

// ClearGuild removes every command of the application from a guild.
func (y *Syncer) ClearGuild(ctx context.Context, guildID string) error {
	err := y.call(ctx, func() error {
		_, err := y.s.ApplicationCommandBulkOverwrite(y.appID, guildID, []*discordgo.ApplicationCommand{}, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		return fmt.Errorf("clear commands for guild %s: %w", guildID, err)
	}
	return y.cache.Drop(guildID)
}

// restStatus reports the HTTP status of a failed Discord REST call.
func restStatus(err error) (int, bool) {
	var re *discordgo.RESTError
	if errors.As(err, &re) && re.Response != nil {
		return re.Response.StatusCode, true
	}
	return retrylimit.DefaultStatus(err)
}
