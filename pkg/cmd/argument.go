package cmd

// OptionKind mirrors the platform's option type numbering.
type OptionKind int

const (
	OptionSubCommand      OptionKind = 1
	OptionSubCommandGroup OptionKind = 2
	OptionString          OptionKind = 3
	OptionInteger         OptionKind = 4
	OptionBoolean         OptionKind = 5
	OptionUser            OptionKind = 6
	OptionChannel         OptionKind = 7
	OptionRole            OptionKind = 8
	OptionMentionable     OptionKind = 9
	OptionNumber          OptionKind = 10
)

func (k OptionKind) String() string {
	switch k {
	case OptionSubCommand:
		return "subcommand"
	case OptionSubCommandGroup:
		return "subcommand_group"
	case OptionString:
		return "string"
	case OptionInteger:
		return "integer"
	case OptionBoolean:
		return "boolean"
	case OptionUser:
		return "user"
	case OptionChannel:
		return "channel"
	case OptionRole:
		return "role"
	case OptionMentionable:
		return "mentionable"
	case OptionNumber:
		return "number"
	default:
		return "unknown"
	}
}

// supportsAutocomplete reports whether the platform accepts autocomplete on
// options of this kind.
func (k OptionKind) supportsAutocomplete() bool {
	return k == OptionString || k == OptionInteger || k == OptionNumber
}

// Choice is a (display name, value) pair used for static choices and
// autocomplete suggestions.
type Choice struct {
	Name  string
	Value any
}

// Argument describes one command parameter.
type Argument struct {
	Name        string
	Description string
	Required    bool
	Type        Coercer

	// Choices overrides the choices reported by Type. Evaluated lazily when
	// declarations are built.
	Choices func() []Choice

	// Autocomplete is ignored at the schema level when static choices exist.
	Autocomplete AutocompleteFunc
}

// Kind returns the option kind declared by the argument's type.
func (a Argument) Kind() OptionKind {
	if a.Type == nil {
		return OptionString
	}
	return a.Type.Schema().Kind
}

func (a Argument) choices() []Choice {
	if a.Choices != nil {
		return a.Choices()
	}
	if a.Type == nil {
		return nil
	}
	return a.Type.Schema().Choices
}

// OptionDecl is the platform-facing schema of one option. Subcommands and
// groups are options too, carrying their children in Options.
type OptionDecl struct {
	Kind         OptionKind
	Name         string
	Description  string
	Required     bool
	Choices      []Choice
	Autocomplete bool
	Options      []OptionDecl
}

// Option builds the declaration schema for the argument.
func (a Argument) Option() OptionDecl {
	kind := a.Kind()
	opt := OptionDecl{
		Kind:        kind,
		Name:        a.Name,
		Description: a.Description,
		Required:    a.Required,
	}
	if !kind.supportsAutocomplete() {
		return opt
	}
	opt.Choices = a.choices()
	opt.Autocomplete = a.Autocomplete != nil && len(opt.Choices) == 0
	return opt
}
