package cmd

import "context"

// ResponseKind discriminates outbound payloads.
type ResponseKind int

const (
	ResponseMessage ResponseKind = iota + 1
	ResponseDeferred
	ResponseModal
	ResponseAutocomplete
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseMessage:
		return "message"
	case ResponseDeferred:
		return "deferred"
	case ResponseModal:
		return "modal"
	case ResponseAutocomplete:
		return "autocomplete"
	default:
		return "unknown"
	}
}

// Embed is a rich message block.
type Embed struct {
	Title       string
	Description string
	Color       int
}

// Message is a channel message payload.
type Message struct {
	Content   string
	Embeds    []Embed
	Ephemeral bool
}

// Response is sent back for an interaction. Only the field matching Kind is
// meaningful.
type Response struct {
	Kind ResponseKind

	Message *Message
	// Ephemeral applies to deferred acknowledgements.
	Ephemeral bool
	Modal     *Modal
	Choices   []Choice
}

// Responder is the transport capability that delivers responses to the
// platform.
type Responder interface {
	Respond(ctx context.Context, i *Interaction, r Response) error
	// Edit replaces the original response, typically after a deferral.
	Edit(ctx context.Context, i *Interaction, m Message) error
}
