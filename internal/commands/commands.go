// Package commands holds the bot's slash commands.
package commands

import (
	"time"

	"github.com/keshon/slashdispatch/pkg/cmd"
	"github.com/rs/zerolog"
)

const embedColor = 0x00cc99

// Deps are the collaborators commands need at runtime.
type Deps struct {
	Settings *Settings
	// Feedback receives submitted feedback forms.
	Feedback FeedbackSink
	// Latency reports the gateway heartbeat latency.
	Latency     func() time.Duration
	DeveloperID string
	Log         zerolog.Logger
}

// Register adds every command to b.
func Register(b *cmd.Builder, d Deps) *cmd.Builder {
	if d.Settings == nil {
		d.Settings = NewSettings()
	}
	if d.Feedback == nil {
		d.Feedback = logFeedback(d.Log)
	}
	b.Command(pingCommand(d), rollCommand(d), diceCommand(d), feedbackCommand(d))
	registerConfig(b, d)
	return b
}
