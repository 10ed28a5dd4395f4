package cmd

// OutcomeKind is the terminal state of one processed interaction.
type OutcomeKind int

const (
	OutcomeCompleted OutcomeKind = iota + 1
	OutcomeUnknownCommand
	OutcomeCheckFailed
	OutcomeCoercionFailed
	// OutcomeSkipped means the before hook declined to run the command.
	OutcomeSkipped
	// OutcomeExecutionFailed means the executor failed and no error handler
	// consumed the error.
	OutcomeExecutionFailed
	OutcomeErrorHandled
	OutcomeAutocompleted
	OutcomeModalResolved
	OutcomeStaleModal
	OutcomeInternalError
	OutcomeUnsupported
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCompleted:
		return "completed"
	case OutcomeUnknownCommand:
		return "unknown_command"
	case OutcomeCheckFailed:
		return "check_failed"
	case OutcomeCoercionFailed:
		return "coercion_failed"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeExecutionFailed:
		return "execution_failed"
	case OutcomeErrorHandled:
		return "error_handled"
	case OutcomeAutocompleted:
		return "autocompleted"
	case OutcomeModalResolved:
		return "modal_resolved"
	case OutcomeStaleModal:
		return "stale_modal"
	case OutcomeInternalError:
		return "internal_error"
	case OutcomeUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Outcome is what Process reports for every interaction.
type Outcome struct {
	Kind OutcomeKind
	// Command is the qualified command name, empty when resolution failed.
	Command string
	// Value is the executor's result for OutcomeCompleted.
	Value any
	// Err is the structured error for failed outcomes. Autocomplete outcomes
	// may carry a transport error while still counting as served.
	Err error
	// Choices are the suggestions sent for OutcomeAutocompleted.
	Choices []Choice
}

// Failed reports whether the outcome should be surfaced to the user as an
// error.
func (o Outcome) Failed() bool {
	switch o.Kind {
	case OutcomeCompleted, OutcomeSkipped, OutcomeErrorHandled, OutcomeAutocompleted, OutcomeModalResolved:
		return false
	}
	return true
}
