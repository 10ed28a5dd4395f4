package cmd

import (
	"context"
	"fmt"
)

// AutocompleteInput describes the focused field of an autocomplete request.
type AutocompleteInput struct {
	Argument string
	// Value is the partial raw input typed so far.
	Value any
	// Options are the other raw options already filled in.
	Options []RawOption
}

// Text returns the partial input as a string.
func (in AutocompleteInput) Text() string {
	switch v := in.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func focusedOption(opts []RawOption) (RawOption, bool) {
	for _, o := range opts {
		if o.Focused {
			return o, true
		}
	}
	return RawOption{}, false
}

// processAutocomplete never reports an error outcome: every failure yields
// an empty suggestion list.
func (f *Framework) processAutocomplete(ctx context.Context, i *Interaction) Outcome {
	out := Outcome{Kind: OutcomeAutocompleted, Choices: []Choice{}}

	path, opts := i.Route()
	c, err := f.registry.Lookup(path)
	if err != nil {
		f.log.Debug().Str("path", path.String()).Msg("autocomplete for unknown command")
	} else {
		out.Command = c.QualifiedName()
		if choices := f.suggest(ctx, i, c, opts); len(choices) > 0 {
			out.Choices = choices
		}
	}

	if err := f.responder.Respond(ctx, i, Response{Kind: ResponseAutocomplete, Choices: out.Choices}); err != nil {
		out.Err = &TransportError{Op: "respond autocomplete", Err: err}
		f.log.Warn().Err(err).Str("command", out.Command).Msg("failed to send autocomplete suggestions")
	}
	return out
}

func (f *Framework) suggest(ctx context.Context, i *Interaction, c *Command, opts []RawOption) (choices []Choice) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Error().
				Str("interaction", i.ID).
				Str("command", c.QualifiedName()).
				Interface("panic", r).
				Msg("recovered panic in autocomplete callback")
			choices = nil
		}
	}()

	focused, ok := focusedOption(opts)
	if !ok {
		return nil
	}
	arg, ok := c.Argument(focused.Name)
	if !ok || arg.Autocomplete == nil {
		return nil
	}
	var err error
	choices, err = arg.Autocomplete(f.newContext(ctx, i, c), AutocompleteInput{
		Argument: arg.Name,
		Value:    focused.Value,
		Options:  opts,
	})
	if err != nil {
		f.log.Warn().Err(err).
			Str("command", c.QualifiedName()).
			Str("argument", arg.Name).
			Msg("autocomplete callback failed")
		return nil
	}
	return choices
}
