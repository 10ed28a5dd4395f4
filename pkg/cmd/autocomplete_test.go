package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func autocompleteInteraction(name string, opts ...RawOption) *Interaction {
	i := slash(name, opts...)
	i.Kind = InteractionAutocomplete
	return i
}

func fruitFramework(t *testing.T, resp *recordingResponder, complete AutocompleteFunc) *Framework {
	t.Helper()
	executed := false
	fw := mustBuild(t, NewBuilder(resp).Command(&Command{
		Name: "fruit", Description: "d",
		Arguments: []Argument{
			{Name: "kind", Description: "k", Required: true, Type: String(), Autocomplete: complete},
			{Name: "size", Description: "s", Type: String()},
		},
		Run: func(*Context, Args) (any, error) {
			executed = true
			return nil, nil
		},
	}))
	t.Cleanup(func() { assert.False(t, executed, "autocomplete must not run the executor") })
	return fw
}

func TestAutocomplete_InvokesFocusedCallback(t *testing.T) {
	resp := &recordingResponder{}
	var seen AutocompleteInput
	fw := fruitFramework(t, resp, func(_ *Context, in AutocompleteInput) ([]Choice, error) {
		seen = in
		var out []Choice
		for _, f := range []string{"apple", "apricot", "banana"} {
			if strings.HasPrefix(f, in.Text()) {
				out = append(out, Choice{Name: f, Value: f})
			}
		}
		return out, nil
	})

	out := fw.Process(context.Background(), autocompleteInteraction("fruit",
		RawOption{Name: "size", Kind: OptionString, Value: "big"},
		RawOption{Name: "kind", Kind: OptionString, Value: "ap", Focused: true},
	))

	assert.Equal(t, OutcomeAutocompleted, out.Kind)
	assert.Equal(t, []Choice{{Name: "apple", Value: "apple"}, {Name: "apricot", Value: "apricot"}}, out.Choices)
	assert.Equal(t, "kind", seen.Argument)
	assert.Len(t, seen.Options, 2)

	sent := resp.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, ResponseAutocomplete, sent[0].Kind)
	assert.Equal(t, out.Choices, sent[0].Choices)
}

func TestAutocomplete_SilentFailures(t *testing.T) {
	failing := func(*Context, AutocompleteInput) ([]Choice, error) { return nil, errors.New("backend down") }
	panicking := func(*Context, AutocompleteInput) ([]Choice, error) {
		var cache map[string]Choice
		cache["a"] = Choice{Name: "a", Value: "a"}
		return nil, nil
	}

	tests := []struct {
		name     string
		complete AutocompleteFunc
		inter    *Interaction
	}{
		{
			name:  "no callback configured",
			inter: autocompleteInteraction("fruit", RawOption{Name: "kind", Value: "a", Focused: true}),
		},
		{
			name:     "focused argument without callback",
			complete: failing,
			inter:    autocompleteInteraction("fruit", RawOption{Name: "size", Value: "b", Focused: true}),
		},
		{
			name:     "callback error",
			complete: failing,
			inter:    autocompleteInteraction("fruit", RawOption{Name: "kind", Value: "a", Focused: true}),
		},
		{
			name:     "callback panics",
			complete: panicking,
			inter:    autocompleteInteraction("fruit", RawOption{Name: "kind", Value: "a", Focused: true}),
		},
		{
			name:  "unknown focused option",
			inter: autocompleteInteraction("fruit", RawOption{Name: "color", Value: "r", Focused: true}),
		},
		{
			name:  "unknown command",
			inter: autocompleteInteraction("vegetable", RawOption{Name: "kind", Value: "c", Focused: true}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &recordingResponder{}
			fw := fruitFramework(t, resp, tt.complete)

			out := fw.Process(context.Background(), tt.inter)

			assert.Equal(t, OutcomeAutocompleted, out.Kind)
			assert.NoError(t, out.Err)
			assert.False(t, out.Failed())
			assert.NotNil(t, out.Choices)
			assert.Empty(t, out.Choices)
			sent := resp.sent()
			require.Len(t, sent, 1)
			assert.Equal(t, ResponseAutocomplete, sent[0].Kind)
			assert.Empty(t, sent[0].Choices)
		})
	}
}

func TestAutocomplete_TransportErrorStillServed(t *testing.T) {
	resp := &recordingResponder{err: errors.New("closed")}
	fw := fruitFramework(t, resp, nil)

	out := fw.Process(context.Background(), autocompleteInteraction("fruit", RawOption{Name: "kind", Value: "", Focused: true}))
	assert.Equal(t, OutcomeAutocompleted, out.Kind)
	var te *TransportError
	assert.ErrorAs(t, out.Err, &te)
}
