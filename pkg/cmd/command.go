package cmd

import (
	"fmt"
	"strings"
)

// Executor runs a command with its coerced arguments.
type Executor func(c *Context, args Args) (any, error)

// Check guards a command. Returning false or an error rejects the invocation
// before any argument is coerced.
type Check func(c *Context) (bool, error)

// BeforeHook runs after coercion and before the executor. Returning false
// skips the executor and the after hook.
type BeforeHook func(c *Context, command string) bool

// AfterHook runs after the executor. result is nil whenever the executor
// returned an error, whether or not an error handler consumed it.
type AfterHook func(c *Context, command string, result *Result)

// ErrorHandler consumes an executor error.
type ErrorHandler func(c *Context, err error)

// AutocompleteFunc returns suggestions for a focused argument.
type AutocompleteFunc func(c *Context, in AutocompleteInput) ([]Choice, error)

// Result carries a successful executor value to the after hook.
type Result struct {
	Value any
}

// Command is the registration record of one invocable command.
type Command struct {
	Name        string
	Description string

	// Parent is the top-level command this one is a subcommand of; Group the
	// subcommand group inside Parent. Both empty for flat commands.
	Parent string
	Group  string

	Arguments []Argument

	// Permissions, NSFW and OnlyGuilds are declared to the platform, which
	// enforces them. They only apply to top-level commands.
	Permissions *int64
	NSFW        bool
	OnlyGuilds  bool

	Checks       []Check
	Before       BeforeHook
	After        AfterHook
	ErrorHandler ErrorHandler
	Run          Executor
}

// Path returns the command's position in the registry tree.
func (c *Command) Path() Path {
	if c.Parent == "" {
		return Path{Name: c.Name}
	}
	return Path{Name: c.Parent, Group: c.Group, Sub: c.Name}
}

// QualifiedName returns the space separated path, e.g. "config set".
func (c *Command) QualifiedName() string { return c.Path().String() }

// Argument returns the declared argument with the given name.
func (c *Command) Argument(name string) (Argument, bool) {
	for _, a := range c.Arguments {
		if a.Name == name {
			return a, true
		}
	}
	return Argument{}, false
}

// Validate checks the descriptor for structural errors.
func (c *Command) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidCommand)
	}
	if c.Description == "" {
		return fmt.Errorf("%w: %s: empty description", ErrInvalidCommand, c.QualifiedName())
	}
	if c.Run == nil {
		return fmt.Errorf("%w: %s: nil executor", ErrInvalidCommand, c.QualifiedName())
	}
	if c.Group != "" && c.Parent == "" {
		return fmt.Errorf("%w: %s: group %q without parent", ErrInvalidCommand, c.Name, c.Group)
	}
	seen := make(map[string]struct{}, len(c.Arguments))
	optional := false
	for _, a := range c.Arguments {
		if a.Name == "" || a.Type == nil {
			return fmt.Errorf("%w: %s: argument needs a name and a type", ErrInvalidCommand, c.QualifiedName())
		}
		if _, dup := seen[a.Name]; dup {
			return fmt.Errorf("%w: %s: duplicate argument %q", ErrInvalidCommand, c.QualifiedName(), a.Name)
		}
		seen[a.Name] = struct{}{}
		if a.Required && optional {
			return fmt.Errorf("%w: %s: required argument %q after optional", ErrInvalidCommand, c.QualifiedName(), a.Name)
		}
		if !a.Required {
			optional = true
		}
	}
	return nil
}

// coerce converts the leaf options into Args following the declared
// argument order. The first failure aborts.
func (c *Command) coerce(ctx *Context, opts []RawOption) (Args, error) {
	byName := make(map[string]RawOption, len(opts))
	for _, o := range opts {
		byName[o.Name] = o
	}

	var args Args
	for _, a := range c.Arguments {
		raw, ok := byName[a.Name]
		if !ok || raw.Value == nil {
			if a.Required {
				return Args{}, &CoercionError{Argument: a.Name, Kind: CoercionMissingRequired}
			}
			continue
		}
		v, err := a.Type.Coerce(ctx, raw)
		if err != nil {
			return Args{}, asCoercionError(a.Name, err)
		}
		args.set(a.Name, v)
	}
	return args, nil
}

func (c *Command) options() []OptionDecl {
	opts := make([]OptionDecl, 0, len(c.Arguments))
	for _, a := range c.Arguments {
		opts = append(opts, a.Option())
	}
	return opts
}

func joinPath(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
