package cmd

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spy struct {
	mu    sync.Mutex
	calls []string
	after []*Result
}

func (s *spy) record(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
}

func (s *spy) before(allow bool) BeforeHook {
	return func(_ *Context, command string) bool {
		s.record("before:" + command)
		return allow
	}
}

func (s *spy) afterHook(_ *Context, command string, result *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "after:"+command)
	s.after = append(s.after, result)
}

func (s *spy) check(pass bool) Check {
	return func(*Context) (bool, error) {
		s.record(fmt.Sprintf("check:%v", pass))
		return pass, nil
	}
}

func (s *spy) exec(value any, err error) Executor {
	return func(*Context, Args) (any, error) {
		s.record("exec")
		return value, err
	}
}

func TestProcess_SuccessfulPipeline(t *testing.T) {
	s := &spy{}
	var got Args
	fw := mustBuild(t, NewBuilder(&recordingResponder{}).
		Before(s.before(true)).
		After(s.afterHook).
		Command(&Command{
			Name:        "echo",
			Description: "Echo",
			Checks:      []Check{s.check(true), s.check(true)},
			Arguments: []Argument{
				{Name: "text", Description: "t", Required: true, Type: String()},
				{Name: "times", Description: "n", Type: Integer()},
				{Name: "loud", Description: "l", Type: Boolean()},
			},
			Run: func(c *Context, args Args) (any, error) {
				s.record("exec")
				got = args
				return "done", nil
			},
		}))

	out := fw.Process(context.Background(), slash("echo",
		RawOption{Name: "times", Kind: OptionInteger, Value: float64(3)},
		RawOption{Name: "text", Kind: OptionString, Value: "hi"},
	))

	assert.Equal(t, OutcomeCompleted, out.Kind)
	assert.Equal(t, "echo", out.Command)
	assert.Equal(t, "done", out.Value)
	assert.NoError(t, out.Err)
	assert.False(t, out.Failed())

	assert.Equal(t, []string{"check:true", "check:true", "before:echo", "exec", "after:echo"}, s.calls)
	require.Len(t, s.after, 1)
	require.NotNil(t, s.after[0])
	assert.Equal(t, "done", s.after[0].Value)

	assert.Equal(t, []string{"text", "times"}, got.Names())
	assert.Equal(t, "hi", got.String("text"))
	assert.Equal(t, int64(3), got.Int("times"))
	assert.False(t, got.Has("loud"))
}

func TestProcess_FailingCheckStopsBeforeHooks(t *testing.T) {
	s := &spy{}
	coerced := false
	fw := mustBuild(t, NewBuilder(&recordingResponder{}).
		Before(s.before(true)).
		After(s.afterHook).
		Command(&Command{
			Name:        "ban",
			Description: "Ban",
			Checks:      []Check{s.check(true), s.check(false), s.check(true)},
			Arguments: []Argument{{Name: "who", Description: "w", Required: true, Type: CoercerFunc{
				S: Schema{Kind: OptionUser},
				Fn: func(*Context, RawOption) (any, error) {
					coerced = true
					return nil, nil
				},
			}}},
			Run: s.exec(nil, nil),
		}))

	out := fw.Process(context.Background(), slash("ban", RawOption{Name: "who", Kind: OptionUser, Value: "1"}))

	assert.Equal(t, OutcomeCheckFailed, out.Kind)
	var ce *CheckError
	require.ErrorAs(t, out.Err, &ce)
	assert.Equal(t, 1, ce.Index)
	assert.Equal(t, []string{"check:true", "check:false"}, s.calls)
	assert.False(t, coerced)
}

func TestProcess_CheckErrorIsWrapped(t *testing.T) {
	denied := errors.New("denied")
	fw := mustBuild(t, NewBuilder(&recordingResponder{}).Command(&Command{
		Name: "x", Description: "d", Run: noop,
		Checks: []Check{func(*Context) (bool, error) { return true, denied }},
	}))

	out := fw.Process(context.Background(), slash("x"))
	assert.Equal(t, OutcomeCheckFailed, out.Kind)
	assert.ErrorIs(t, out.Err, denied)
}

func TestProcess_BeforeHookFalseSkipsExecutorAndAfter(t *testing.T) {
	s := &spy{}
	fw := mustBuild(t, NewBuilder(&recordingResponder{}).
		Before(s.before(false)).
		After(s.afterHook).
		Command(&Command{Name: "hello", Description: "d", Run: s.exec("x", nil)}))

	out := fw.Process(context.Background(), slash("hello"))

	assert.Equal(t, OutcomeSkipped, out.Kind)
	assert.Equal(t, "hello", out.Command)
	assert.Equal(t, []string{"before:hello"}, s.calls)
	assert.Empty(t, s.after)
}

func TestProcess_CommandHooksOverrideFrameworkHooks(t *testing.T) {
	global, local := &spy{}, &spy{}
	fw := mustBuild(t, NewBuilder(&recordingResponder{}).
		Before(global.before(false)).
		After(global.afterHook).
		Command(&Command{
			Name: "hello", Description: "d", Run: noop,
			Before: local.before(true),
			After:  local.afterHook,
		}))

	out := fw.Process(context.Background(), slash("hello"))

	assert.Equal(t, OutcomeCompleted, out.Kind)
	assert.Empty(t, global.calls)
	assert.Equal(t, []string{"before:hello", "after:hello"}, local.calls)
}

func TestProcess_ErrorHandlerConsumesError(t *testing.T) {
	s := &spy{}
	boom := errors.New("boom")
	var handled error
	fw := mustBuild(t, NewBuilder(&recordingResponder{}).
		After(s.afterHook).
		Command(&Command{
			Name: "raise", Description: "d",
			Run:          s.exec(nil, boom),
			ErrorHandler: func(_ *Context, err error) { handled = err },
		}))

	out := fw.Process(context.Background(), slash("raise"))

	assert.Equal(t, OutcomeErrorHandled, out.Kind)
	assert.NoError(t, out.Err)
	assert.False(t, out.Failed())
	assert.Same(t, boom, handled)
	require.Len(t, s.after, 1)
	assert.Nil(t, s.after[0])
}

func TestProcess_UnhandledErrorIsSurfaced(t *testing.T) {
	s := &spy{}
	boom := errors.New("boom")
	fw := mustBuild(t, NewBuilder(&recordingResponder{}).
		After(s.afterHook).
		Command(&Command{Name: "raise", Description: "d", Run: s.exec("ignored", boom)}))

	out := fw.Process(context.Background(), slash("raise"))

	assert.Equal(t, OutcomeExecutionFailed, out.Kind)
	assert.True(t, out.Failed())
	var ee *ExecutionError
	require.ErrorAs(t, out.Err, &ee)
	assert.Equal(t, "raise", ee.Command)
	assert.ErrorIs(t, out.Err, boom)
	require.Len(t, s.after, 1)
	assert.Nil(t, s.after[0])
}

func TestProcess_CoercionFailures(t *testing.T) {
	s := &spy{}
	fw := mustBuild(t, NewBuilder(&recordingResponder{}).
		Before(s.before(true)).
		Command(&Command{
			Name: "roll", Description: "d", Run: s.exec(nil, nil),
			Arguments: []Argument{
				{Name: "sides", Description: "s", Required: true, Type: Integer()},
				{Name: "label", Description: "l", Type: String()},
			},
		}))

	tests := []struct {
		name string
		opts []RawOption
		kind CoercionErrorKind
		arg  string
	}{
		{name: "missing required", opts: nil, kind: CoercionMissingRequired, arg: "sides"},
		{name: "string for integer", opts: []RawOption{{Name: "sides", Kind: OptionString, Value: "six"}}, kind: CoercionTypeMismatch, arg: "sides"},
		{
			name: "bad optional",
			opts: []RawOption{{Name: "sides", Value: int64(6)}, {Name: "label", Value: 3}},
			kind: CoercionTypeMismatch,
			arg:  "label",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := fw.Process(context.Background(), slash("roll", tt.opts...))
			assert.Equal(t, OutcomeCoercionFailed, out.Kind)
			var ce *CoercionError
			require.ErrorAs(t, out.Err, &ce)
			assert.Equal(t, tt.kind, ce.Kind)
			assert.Equal(t, tt.arg, ce.Argument)
		})
	}
	assert.Empty(t, s.calls)
}

func TestProcess_UnknownCommand(t *testing.T) {
	fw := mustBuild(t, NewBuilder(&recordingResponder{}).Command(&Command{Name: "ping", Description: "d", Run: noop}))

	out := fw.Process(context.Background(), slash("pong"))
	assert.Equal(t, OutcomeUnknownCommand, out.Kind)
	var unknown *UnknownCommandError
	require.ErrorAs(t, out.Err, &unknown)
	assert.Equal(t, "pong", unknown.Path.Name)
}

func TestProcess_RoutesSubcommandsAndGroups(t *testing.T) {
	var ran []string
	var got Args
	run := func(c *Context, args Args) (any, error) {
		ran = append(ran, c.Command.QualifiedName())
		got = args
		return nil, nil
	}
	fw := mustBuild(t, NewBuilder(&recordingResponder{}).
		Parent(Parent{Name: "config", Description: "d"}).
		Command(&Command{Name: "show", Parent: "config", Description: "d", Run: run}).
		Group("config", "channel", "d").
		Command(&Command{
			Name: "set", Parent: "config", Group: "channel", Description: "d", Run: run,
			Arguments: []Argument{{Name: "target", Description: "t", Required: true, Type: ChannelRef()}},
		}))

	out := fw.Process(context.Background(), slash("config", sub("show")))
	assert.Equal(t, OutcomeCompleted, out.Kind)

	out = fw.Process(context.Background(), slash("config",
		grp("channel", sub("set", RawOption{Name: "target", Kind: OptionChannel, Value: "99"}))))
	assert.Equal(t, OutcomeCompleted, out.Kind)
	assert.Equal(t, "config channel set", out.Command)
	assert.Equal(t, "99", got.Channel("target").ID)

	out = fw.Process(context.Background(), slash("config"))
	assert.Equal(t, OutcomeUnknownCommand, out.Kind)

	assert.Equal(t, []string{"config show", "config channel set"}, ran)
}

func TestProcess_RecoversPanics(t *testing.T) {
	fw := mustBuild(t, NewBuilder(&recordingResponder{}).Command(&Command{
		Name: "crash", Description: "d",
		Run: func(*Context, Args) (any, error) { panic("kaboom") },
	}))

	out := fw.Process(context.Background(), slash("crash"))
	assert.Equal(t, OutcomeInternalError, out.Kind)
	assert.Equal(t, "crash", out.Command)
	assert.ErrorContains(t, out.Err, "kaboom")
}

func TestProcess_UnsupportedKind(t *testing.T) {
	fw := mustBuild(t, NewBuilder(&recordingResponder{}))
	out := fw.Process(context.Background(), &Interaction{ID: "x"})
	assert.Equal(t, OutcomeUnsupported, out.Kind)
	assert.ErrorIs(t, out.Err, ErrUnsupportedInteraction)
}

func TestBuilder_MiddlewareOrderAndData(t *testing.T) {
	var order []string
	mw := func(tag string) Middleware {
		return func(next Executor) Executor {
			return func(c *Context, args Args) (any, error) {
				order = append(order, tag)
				return next(c, args)
			}
		}
	}
	type state struct{ name string }
	fw := mustBuild(t, NewBuilder(&recordingResponder{}).
		Data(&state{name: "app"}).
		Use(mw("outer"), mw("inner")).
		Command(&Command{Name: "x", Description: "d", Run: func(c *Context, _ Args) (any, error) {
			order = append(order, "run")
			return c.Data.(*state).name, nil
		}}))

	out := fw.Process(context.Background(), slash("x"))
	assert.Equal(t, "app", out.Value)
	assert.Equal(t, []string{"outer", "inner", "run"}, order)
}

func TestBuilder_CollectsRegistrationErrors(t *testing.T) {
	_, err := NewBuilder(&recordingResponder{}).
		Command(&Command{Name: "a", Description: "d", Run: noop}).
		Command(&Command{Name: "a", Description: "d", Run: noop}).
		Command(&Command{Name: "b", Parent: "missing", Description: "d", Run: noop}).
		Build()
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.ErrorIs(t, err, ErrUnknownParent)

	_, err = NewBuilder(nil).Build()
	assert.Error(t, err)
}

func TestProcess_Concurrent(t *testing.T) {
	var runs atomic.Int64
	fw := mustBuild(t, NewBuilder(&recordingResponder{}).Command(&Command{
		Name: "count", Description: "d",
		Arguments: []Argument{{Name: "n", Description: "n", Required: true, Type: Integer()}},
		Run: func(_ *Context, args Args) (any, error) {
			runs.Add(1)
			return args.Int("n") * 2, nil
		},
	}))

	var wg sync.WaitGroup
	results := make([]Outcome, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = fw.Process(context.Background(), slash("count", RawOption{Name: "n", Value: int64(i)}))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(len(results)), runs.Load())
	for i, out := range results {
		assert.Equal(t, OutcomeCompleted, out.Kind)
		assert.Equal(t, int64(i*2), out.Value)
	}
}

func TestContext_ResponseHelpers(t *testing.T) {
	resp := &recordingResponder{}
	fw := mustBuild(t, NewBuilder(resp).Command(&Command{Name: "slow", Description: "d", Run: func(c *Context, _ Args) (any, error) {
		if err := c.Defer(true); err != nil {
			return nil, err
		}
		return nil, c.Edit("finished")
	}}))

	out := fw.Process(context.Background(), slash("slow"))
	require.Equal(t, OutcomeCompleted, out.Kind)

	sent := resp.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, ResponseDeferred, sent[0].Kind)
	assert.True(t, sent[0].Ephemeral)
	assert.Equal(t, []Message{{Content: "finished"}}, resp.edits)
}

func TestContext_TransportErrorsAreWrapped(t *testing.T) {
	down := errors.New("gateway down")
	fw := mustBuild(t, NewBuilder(&recordingResponder{err: down}).Command(&Command{
		Name: "hi", Description: "d",
		Run: func(c *Context, _ Args) (any, error) { return nil, c.Reply("hi") },
	}))

	out := fw.Process(context.Background(), slash("hi"))
	assert.Equal(t, OutcomeExecutionFailed, out.Kind)
	var te *TransportError
	require.ErrorAs(t, out.Err, &te)
	assert.ErrorIs(t, out.Err, down)
}
