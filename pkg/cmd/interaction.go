// Package cmd provides a transport-agnostic slash-command core: a registry of
// command descriptors, argument coercion, and a dispatcher that runs checks,
// hooks and executors for each incoming interaction. How interactions are
// received and how responses reach the platform is defined by adapters that
// implement Responder and build Interaction values.
package cmd

import "strings"

// InteractionKind discriminates the interactions the dispatcher handles.
type InteractionKind int

const (
	InteractionCommand InteractionKind = iota + 1
	InteractionAutocomplete
	InteractionModalSubmit
)

func (k InteractionKind) String() string {
	switch k {
	case InteractionCommand:
		return "command"
	case InteractionAutocomplete:
		return "autocomplete"
	case InteractionModalSubmit:
		return "modal_submit"
	default:
		return "unknown"
	}
}

// Interaction is an already-decoded inbound event. Adapters fill it from the
// platform payload; the core never looks at the wire format.
type Interaction struct {
	ID            string
	Token         string
	ApplicationID string
	Kind          InteractionKind

	GuildID   string
	ChannelID string
	User      *User
	// Member is the invoking user's guild membership, nil in DMs.
	Member *Member

	// Name is the top-level command name. Subcommand and group names travel
	// as options of kind OptionSubCommand / OptionSubCommandGroup, the way
	// the platform nests them.
	Name     string
	Options  []RawOption
	Resolved *Resolved

	// CustomID and Fields are set for modal submissions.
	CustomID string
	Fields   map[string]string
}

// InGuild reports whether the interaction was issued inside a guild.
func (i *Interaction) InGuild() bool { return i.GuildID != "" }

// RawOption is one option value as sent by the platform.
type RawOption struct {
	Name    string
	Kind    OptionKind
	Value   any
	Focused bool
	Options []RawOption
}

// Path is a decomposed command name path.
type Path struct {
	Name  string
	Group string
	Sub   string
}

func (p Path) String() string {
	parts := []string{p.Name}
	if p.Group != "" {
		parts = append(parts, p.Group)
	}
	if p.Sub != "" {
		parts = append(parts, p.Sub)
	}
	return strings.Join(parts, " ")
}

// Route splits the interaction into its name path and the options that
// belong to the leaf command.
func (i *Interaction) Route() (Path, []RawOption) {
	p := Path{Name: i.Name}
	opts := i.Options
	if len(opts) == 0 {
		return p, nil
	}
	switch opts[0].Kind {
	case OptionSubCommandGroup:
		p.Group = opts[0].Name
		opts = opts[0].Options
		if len(opts) > 0 && opts[0].Kind == OptionSubCommand {
			p.Sub = opts[0].Name
			opts = opts[0].Options
		}
	case OptionSubCommand:
		p.Sub = opts[0].Name
		opts = opts[0].Options
	}
	return p, opts
}

// Resolved holds the platform objects referenced by option values.
type Resolved struct {
	Users    map[string]*User
	Members  map[string]*Member
	Roles    map[string]*Role
	Channels map[string]*Channel
}

// User is a platform user.
type User struct {
	ID       string
	Username string
	Bot      bool
}

// Member is guild-specific user data.
type Member struct {
	User        *User
	Nick        string
	Roles       []string
	Permissions int64
}

// Role is a guild role.
type Role struct {
	ID          string
	Name        string
	Permissions int64
}

// Channel is a guild or private channel.
type Channel struct {
	ID   string
	Name string
	Type int
}

// Mentionable is either a user or a role.
type Mentionable struct {
	User *User
	Role *Role
}
