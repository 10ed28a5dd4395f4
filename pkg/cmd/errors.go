package cmd

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicate is returned when a registry path is already taken.
	ErrDuplicate = errors.New("command already registered")
	// ErrUnknownParent is returned when a subcommand names an undeclared parent or group.
	ErrUnknownParent = errors.New("unknown parent command")
	// ErrInvalidCommand is returned for descriptors that fail validation.
	ErrInvalidCommand = errors.New("invalid command")
	// ErrStaleModalSession is returned for submissions that match no pending modal.
	ErrStaleModalSession = errors.New("stale modal session")
	// ErrUnsupportedInteraction is returned for interaction kinds the dispatcher does not serve.
	ErrUnsupportedInteraction = errors.New("unsupported interaction")
)

// UnknownCommandError reports a name path with no registered command.
type UnknownCommandError struct {
	Path Path
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", e.Path.String())
}

// CheckError reports a failed guard check. Err is set when the check itself
// returned an error rather than false.
type CheckError struct {
	Command string
	Index   int
	Err     error
}

func (e *CheckError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("check %d of %s failed: %v", e.Index, e.Command, e.Err)
	}
	return fmt.Sprintf("check %d of %s rejected the invocation", e.Index, e.Command)
}

func (e *CheckError) Unwrap() error { return e.Err }

// CoercionErrorKind classifies coercion failures.
type CoercionErrorKind int

const (
	CoercionTypeMismatch CoercionErrorKind = iota + 1
	CoercionMissingRequired
	CoercionCustom
)

func (k CoercionErrorKind) String() string {
	switch k {
	case CoercionTypeMismatch:
		return "type mismatch"
	case CoercionMissingRequired:
		return "missing required"
	case CoercionCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// CoercionError reports a raw value that could not become its declared type.
type CoercionError struct {
	Argument string
	Kind     CoercionErrorKind
	Detail   string
	Err      error
}

func (e *CoercionError) Error() string {
	msg := fmt.Sprintf("argument %q: %s", e.Argument, e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CoercionError) Unwrap() error { return e.Err }

// ExecutionError wraps an error produced by a command executor.
type ExecutionError struct {
	Command string
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// TransportError wraps a failure of the response-sending capability.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// asCoercionError normalizes any error returned by a Coercer.
func asCoercionError(arg string, err error) *CoercionError {
	var ce *CoercionError
	if errors.As(err, &ce) {
		if ce.Argument == "" {
			ce.Argument = arg
		}
		return ce
	}
	return &CoercionError{Argument: arg, Kind: CoercionCustom, Err: err}
}
