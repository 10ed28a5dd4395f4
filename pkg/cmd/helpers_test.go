package cmd

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingResponder struct {
	mu        sync.Mutex
	responses []Response
	edits     []Message
	err       error
	onRespond func(Response)
}

func (r *recordingResponder) Respond(_ context.Context, _ *Interaction, resp Response) error {
	r.mu.Lock()
	r.responses = append(r.responses, resp)
	err, hook := r.err, r.onRespond
	r.mu.Unlock()
	if hook != nil {
		hook(resp)
	}
	return err
}

func (r *recordingResponder) Edit(_ context.Context, _ *Interaction, m Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edits = append(r.edits, m)
	return r.err
}

func (r *recordingResponder) sent() []Response {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Response(nil), r.responses...)
}

func mustBuild(t *testing.T, b *Builder) *Framework {
	t.Helper()
	fw, err := b.Build()
	require.NoError(t, err)
	return fw
}

func noop(*Context, Args) (any, error) { return nil, nil }

func slash(name string, opts ...RawOption) *Interaction {
	return &Interaction{ID: "i-" + name, Token: "tok", Kind: InteractionCommand, Name: name, Options: opts}
}

func sub(name string, opts ...RawOption) RawOption {
	return RawOption{Name: name, Kind: OptionSubCommand, Options: opts}
}

func grp(name string, opts ...RawOption) RawOption {
	return RawOption{Name: name, Kind: OptionSubCommandGroup, Options: opts}
}
