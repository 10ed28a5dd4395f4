package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Builder assembles a Framework. Registration order matters: a parent must
// be declared before its groups and subcommands.
type Builder struct {
	responder    Responder
	registry     *Registry
	before       BeforeHook
	after        AfterHook
	mws          []Middleware
	data         any
	log          zerolog.Logger
	modalTimeout time.Duration
	errs         []error
}

// NewBuilder starts a framework that answers through responder.
func NewBuilder(responder Responder) *Builder {
	return &Builder{
		responder: responder,
		registry:  NewRegistry(),
		log:       zerolog.Nop(),
	}
}

// Command registers commands.
func (b *Builder) Command(cmds ...*Command) *Builder {
	for _, c := range cmds {
		b.record(b.registry.Register(c))
	}
	return b
}

// Parent declares a top-level command holding subcommands.
func (b *Builder) Parent(p Parent) *Builder {
	b.record(b.registry.RegisterParent(p))
	return b
}

// Group declares a subcommand group.
func (b *Builder) Group(parent, name, description string) *Builder {
	b.record(b.registry.RegisterGroup(parent, name, description))
	return b
}

// Before sets the framework-wide before hook. A command's own hook wins.
func (b *Builder) Before(h BeforeHook) *Builder {
	b.before = h
	return b
}

// After sets the framework-wide after hook. A command's own hook wins.
func (b *Builder) After(h AfterHook) *Builder {
	b.after = h
	return b
}

// Use wraps every executor with the given middlewares.
func (b *Builder) Use(mws ...Middleware) *Builder {
	b.mws = append(b.mws, mws...)
	return b
}

// Data sets the application state exposed as Context.Data.
func (b *Builder) Data(data any) *Builder {
	b.data = data
	return b
}

// Logger sets the framework logger.
func (b *Builder) Logger(l zerolog.Logger) *Builder {
	b.log = l
	return b
}

// ModalTimeout bounds how long a modal waiter waits for its submission.
// Zero means only the caller's context bounds it.
func (b *Builder) ModalTimeout(d time.Duration) *Builder {
	b.modalTimeout = d
	return b
}

func (b *Builder) record(err error) {
	if err != nil {
		b.errs = append(b.errs, err)
	}
}

// Build returns the framework or every registration error joined.
func (b *Builder) Build() (*Framework, error) {
	if b.responder == nil {
		b.record(errors.New("nil responder"))
	}
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("build framework: %w", errors.Join(b.errs...))
	}
	runs := make(map[*Command]Executor, b.registry.Len())
	for _, c := range b.registry.Commands() {
		runs[c] = Apply(c.Run, b.mws...)
	}
	return &Framework{
		registry:     b.registry,
		responder:    b.responder,
		before:       b.before,
		after:        b.after,
		runs:         runs,
		data:         b.data,
		log:          b.log,
		modalTimeout: b.modalTimeout,
		modals:       newModalSessions(),
	}, nil
}

// Framework dispatches interactions. It is read-only after Build except for
// the pending modal set, so one Framework serves any number of concurrent
// Process calls.
type Framework struct {
	registry     *Registry
	responder    Responder
	before       BeforeHook
	after        AfterHook
	runs         map[*Command]Executor
	data         any
	log          zerolog.Logger
	modalTimeout time.Duration
	modals       *modalSessions
}

// Registry exposes the command tree, e.g. for help output.
func (f *Framework) Registry() *Registry { return f.registry }

// Declarations returns the payload for bulk registration with the platform.
func (f *Framework) Declarations() []Declaration { return f.registry.Declarations() }

// PendingModals returns the number of modal waiters not yet resolved.
func (f *Framework) PendingModals() int { return f.modals.len() }

// Process runs one interaction to completion and always returns an outcome.
// Panics raised by user callbacks are reported as OutcomeInternalError.
func (f *Framework) Process(ctx context.Context, i *Interaction) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Error().
				Str("interaction", i.ID).
				Str("command", out.Command).
				Interface("panic", r).
				Msg("recovered panic while processing interaction")
			out = Outcome{Kind: OutcomeInternalError, Command: out.Command, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	switch i.Kind {
	case InteractionCommand:
		return f.processCommand(ctx, i, &out)
	case InteractionAutocomplete:
		return f.processAutocomplete(ctx, i)
	case InteractionModalSubmit:
		return f.processModal(ctx, i)
	default:
		return Outcome{Kind: OutcomeUnsupported, Err: fmt.Errorf("%w: %s", ErrUnsupportedInteraction, i.Kind)}
	}
}

// processCommand runs resolve, checks, coercion, before hook, executor,
// error handler and after hook, in that order. progress is updated as the
// pipeline advances so a recovered panic can still name the command.
func (f *Framework) processCommand(ctx context.Context, i *Interaction, progress *Outcome) Outcome {
	path, opts := i.Route()
	c, err := f.registry.Lookup(path)
	if err != nil {
		f.log.Debug().Str("path", path.String()).Msg("unknown command")
		return Outcome{Kind: OutcomeUnknownCommand, Err: err}
	}
	name := c.QualifiedName()
	progress.Command = name
	cx := f.newContext(ctx, i, c)

	for idx, check := range c.Checks {
		ok, err := check(cx)
		if err != nil || !ok {
			return Outcome{Kind: OutcomeCheckFailed, Command: name, Err: &CheckError{Command: name, Index: idx, Err: err}}
		}
	}

	args, err := c.coerce(cx, opts)
	if err != nil {
		return Outcome{Kind: OutcomeCoercionFailed, Command: name, Err: err}
	}

	before := c.Before
	if before == nil {
		before = f.before
	}
	if before != nil && !before(cx, name) {
		cx.log.Info().Msg("command skipped by before hook")
		return Outcome{Kind: OutcomeSkipped, Command: name}
	}

	value, err := f.runs[c](cx, args)

	out := Outcome{Command: name}
	var result *Result
	switch {
	case err == nil:
		out.Kind = OutcomeCompleted
		out.Value = value
		result = &Result{Value: value}
	case c.ErrorHandler != nil:
		c.ErrorHandler(cx, err)
		out.Kind = OutcomeErrorHandled
	default:
		out.Kind = OutcomeExecutionFailed
		out.Err = &ExecutionError{Command: name, Err: err}
	}

	after := c.After
	if after == nil {
		after = f.after
	}
	if after != nil {
		after(cx, name, result)
	}
	return out
}

func (f *Framework) processModal(ctx context.Context, i *Interaction) Outcome {
	p, ok := f.modals.take(i.CustomID)
	if !ok {
		f.log.Warn().Str("custom_id", i.CustomID).Msg("modal submission without pending session")
		return Outcome{Kind: OutcomeStaleModal, Err: fmt.Errorf("%w: %s", ErrStaleModalSession, i.CustomID)}
	}
	// The waiter is already removed, so it must hear about a panic here or
	// it blocks until its timeout.
	defer func() {
		if r := recover(); r != nil {
			p.ch <- modalResult{err: fmt.Errorf("panic: %v", r)}
			panic(r)
		}
	}()

	values, err := coerceFields(f.newContext(ctx, i, nil), p.fields, i.Fields)
	if err != nil {
		p.ch <- modalResult{err: err}
		return Outcome{Kind: OutcomeCoercionFailed, Err: err}
	}
	p.ch <- modalResult{sub: &ModalSubmission{Values: values, Interaction: i, fw: f}}
	return Outcome{Kind: OutcomeModalResolved}
}

func (f *Framework) newContext(ctx context.Context, i *Interaction, c *Command) *Context {
	lc := f.log.With().Str("interaction", i.ID)
	if c != nil {
		lc = lc.Str("command", c.QualifiedName())
	}
	return &Context{
		Interaction: i,
		Command:     c,
		Data:        f.data,
		ctx:         ctx,
		fw:          f,
		log:         lc.Logger(),
	}
}
