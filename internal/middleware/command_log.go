package middleware

import (
	"time"

	"github.com/keshon/slashdispatch/pkg/cmd"
	"github.com/rs/zerolog"
)

// WithCommandLogger logs every executor run with its duration and outcome.
func WithCommandLogger(log zerolog.Logger) cmd.Middleware {
	return func(next cmd.Executor) cmd.Executor {
		return func(c *cmd.Context, args cmd.Args) (any, error) {
			start := time.Now()
			value, err := next(c, args)

			ev := log.Info()
			if err != nil {
				ev = log.Warn().Err(err)
			}
			ev = ev.Str("command", commandName(c)).
				Dur("took", time.Since(start)).
				Int("args", args.Len())
			if i := c.Interaction; i != nil {
				ev = ev.Str("guild", i.GuildID).Str("channel", i.ChannelID)
				if u := i.User; u != nil {
					ev = ev.Str("user_id", u.ID).Str("user", u.Username)
				}
			}
			ev.Msg("command executed")
			return value, err
		}
	}
}

func commandName(c *cmd.Context) string {
	if c.Command == nil {
		return "unknown"
	}
	return c.Command.QualifiedName()
}
