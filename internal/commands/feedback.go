package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/keshon/slashdispatch/pkg/cmd"
	"github.com/rs/zerolog"
)

// Feedback is one submitted feedback form.
type Feedback struct {
	GuildID  string
	UserID   string
	Username string
	Subject  string
	Body     string
	// Rating is 0 when left empty.
	Rating int64
}

// FeedbackSink stores or forwards feedback.
type FeedbackSink func(ctx context.Context, f Feedback) error

func logFeedback(log zerolog.Logger) FeedbackSink {
	return func(_ context.Context, f Feedback) error {
		log.Info().
			Str("guild", f.GuildID).
			Str("user", f.Username).
			Str("subject", f.Subject).
			Int64("rating", f.Rating).
			Msg("feedback received")
		return nil
	}
}

func ratingType() cmd.Coercer {
	return cmd.CoercerFunc{
		S: cmd.Schema{Kind: cmd.OptionInteger},
		Fn: func(c *cmd.Context, raw cmd.RawOption) (any, error) {
			v, err := cmd.ParsedInteger().Coerce(c, raw)
			if err != nil {
				return nil, err
			}
			if n := v.(int64); n < 1 || n > 5 {
				return nil, &cmd.CoercionError{Argument: raw.Name, Kind: cmd.CoercionCustom, Detail: "rate from 1 to 5"}
			}
			return v, nil
		},
	}
}

var feedbackForm = []cmd.ModalField{
	{ID: "subject", Label: "Subject", Style: cmd.TextShort, Required: true, MaxLength: 80},
	{ID: "body", Label: "What's on your mind?", Style: cmd.TextParagraph, Required: true, MaxLength: 1000},
	{ID: "rating", Label: "Rating (1-5)", Placeholder: "5", Style: cmd.TextShort, MaxLength: 1, Type: ratingType()},
}

func feedbackCommand(d Deps) *cmd.Command {
	return &cmd.Command{
		Name:        "feedback",
		Description: "Send feedback to the bot maintainers",
		Run: func(c *cmd.Context, _ cmd.Args) (any, error) {
			w, err := c.CreateModal(cmd.Modal{Title: "Send feedback", Fields: feedbackForm})
			if err != nil {
				return nil, err
			}
			sub, err := w.Wait(c.Context())
			if err != nil {
				var ce *cmd.CoercionError
				switch {
				case errors.As(err, &ce):
					// The submitter was already told what was wrong.
					return nil, nil
				case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
					c.Logger().Debug().Err(err).Msg("feedback form abandoned")
					return nil, nil
				default:
					return nil, err
				}
			}

			f := Feedback{
				GuildID: c.Interaction.GuildID,
				Subject: sub.Values.String("subject"),
				Body:    sub.Values.String("body"),
				Rating:  sub.Values.Int("rating"),
			}
			if u := c.Interaction.User; u != nil {
				f.UserID, f.Username = u.ID, u.Username
			}
			if err := d.Feedback(c.Context(), f); err != nil {
				_ = sub.Respond(c.Context(), cmd.Response{
					Kind:    cmd.ResponseMessage,
					Message: &cmd.Message{Content: "Couldn't deliver your feedback, try again later.", Ephemeral: true},
				})
				return nil, fmt.Errorf("store feedback: %w", err)
			}

			return f, sub.Respond(c.Context(), cmd.Response{
				Kind:    cmd.ResponseMessage,
				Message: &cmd.Message{Content: "💌 Thanks, your feedback was delivered.", Ephemeral: true},
			})
		},
	}
}
