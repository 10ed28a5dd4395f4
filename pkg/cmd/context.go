package cmd

import (
	"context"

	"github.com/rs/zerolog"
)

// Context is handed to checks, hooks, executors and autocomplete callbacks.
// It lives for the duration of one interaction.
type Context struct {
	Interaction *Interaction
	// Command is nil for modal submissions.
	Command *Command
	// Data is the application state passed to the builder.
	Data any

	ctx context.Context
	fw  *Framework
	log zerolog.Logger
}

// Context returns the context governing this interaction. It is canceled
// when the transport tears the interaction's task down.
func (c *Context) Context() context.Context { return c.ctx }

// Logger returns a logger annotated with the interaction and command.
func (c *Context) Logger() *zerolog.Logger { return &c.log }

// Respond sends a response for the interaction.
func (c *Context) Respond(r Response) error {
	if err := c.fw.responder.Respond(c.ctx, c.Interaction, r); err != nil {
		return &TransportError{Op: "respond " + r.Kind.String(), Err: err}
	}
	return nil
}

// Reply sends a public text message.
func (c *Context) Reply(content string) error {
	return c.Respond(Response{Kind: ResponseMessage, Message: &Message{Content: content}})
}

// ReplyEphemeral sends a message only the invoking user can see.
func (c *Context) ReplyEphemeral(content string) error {
	return c.Respond(Response{Kind: ResponseMessage, Message: &Message{Content: content, Ephemeral: true}})
}

// Defer acknowledges the interaction; the answer follows through Edit.
func (c *Context) Defer(ephemeral bool) error {
	return c.Respond(Response{Kind: ResponseDeferred, Ephemeral: ephemeral})
}

// Edit replaces the original (usually deferred) response.
func (c *Context) Edit(content string) error {
	if err := c.fw.responder.Edit(c.ctx, c.Interaction, Message{Content: content}); err != nil {
		return &TransportError{Op: "edit", Err: err}
	}
	return nil
}
