package cmd

import (
	"fmt"
	"sort"
)

// Parent declares a top-level command that only holds subcommands or groups.
type Parent struct {
	Name        string
	Description string
	Permissions *int64
	NSFW        bool
	OnlyGuilds  bool
}

// Declaration is the platform-facing description of one top-level command.
type Declaration struct {
	Name        string
	Description string
	Options     []OptionDecl
	Permissions *int64
	NSFW        bool
	OnlyGuilds  bool
}

type group struct {
	name        string
	description string
	subs        []*Command
}

type node struct {
	leaf   *Command
	parent *Parent
	// items keeps subcommands and groups in registration order.
	items []any
}

func (n *node) sub(name string) *Command {
	for _, it := range n.items {
		if c, ok := it.(*Command); ok && c.Name == name {
			return c
		}
	}
	return nil
}

func (n *node) group(name string) *group {
	for _, it := range n.items {
		if g, ok := it.(*group); ok && g.name == name {
			return g
		}
	}
	return nil
}

func (g *group) sub(name string) *Command {
	for _, c := range g.subs {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Registry stores commands in a tree of at most three name levels:
// command, group, subcommand. It is built before serving starts and is not
// safe for concurrent mutation; concurrent lookups are fine once built.
type Registry struct {
	nodes map[string]*node
	order []*Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{nodes: make(map[string]*node)}
}

// RegisterParent declares a top-level command holding subcommands.
func (r *Registry) RegisterParent(p Parent) error {
	if p.Name == "" || p.Description == "" {
		return fmt.Errorf("%w: parent needs a name and a description", ErrInvalidCommand)
	}
	if _, exists := r.nodes[p.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, p.Name)
	}
	r.nodes[p.Name] = &node{parent: &p}
	return nil
}

// RegisterGroup declares a subcommand group under a parent.
func (r *Registry) RegisterGroup(parent, name, description string) error {
	if name == "" || description == "" {
		return fmt.Errorf("%w: group needs a name and a description", ErrInvalidCommand)
	}
	n, ok := r.nodes[parent]
	if !ok || n.parent == nil {
		return fmt.Errorf("%w: %s", ErrUnknownParent, parent)
	}
	if n.group(name) != nil || n.sub(name) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicate, joinPath(parent, name))
	}
	n.items = append(n.items, &group{name: name, description: description})
	return nil
}

// Register inserts a command. It fails without touching the registry when
// the path is taken or the parent is missing.
func (r *Registry) Register(c *Command) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Parent == "" {
		if _, exists := r.nodes[c.Name]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicate, c.Name)
		}
		r.nodes[c.Name] = &node{leaf: c}
		r.order = append(r.order, c)
		return nil
	}

	n, ok := r.nodes[c.Parent]
	if !ok || n.parent == nil {
		return fmt.Errorf("%w: %s", ErrUnknownParent, c.Parent)
	}
	if c.Group == "" {
		if n.sub(c.Name) != nil || n.group(c.Name) != nil {
			return fmt.Errorf("%w: %s", ErrDuplicate, c.QualifiedName())
		}
		n.items = append(n.items, c)
		r.order = append(r.order, c)
		return nil
	}

	g := n.group(c.Group)
	if g == nil {
		return fmt.Errorf("%w: %s", ErrUnknownParent, joinPath(c.Parent, c.Group))
	}
	if g.sub(c.Name) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicate, c.QualifiedName())
	}
	g.subs = append(g.subs, c)
	r.order = append(r.order, c)
	return nil
}

// Lookup resolves a name path to its command.
func (r *Registry) Lookup(p Path) (*Command, error) {
	notFound := &UnknownCommandError{Path: p}
	n, ok := r.nodes[p.Name]
	if !ok {
		return nil, notFound
	}
	if n.leaf != nil {
		if p.Group != "" || p.Sub != "" {
			return nil, notFound
		}
		return n.leaf, nil
	}
	if p.Sub == "" {
		return nil, notFound
	}
	if p.Group == "" {
		if c := n.sub(p.Sub); c != nil {
			return c, nil
		}
		return nil, notFound
	}
	g := n.group(p.Group)
	if g == nil {
		return nil, notFound
	}
	if c := g.sub(p.Sub); c != nil {
		return c, nil
	}
	return nil, notFound
}

// Commands returns every invocable command in registration order.
func (r *Registry) Commands() []*Command {
	return append([]*Command(nil), r.order...)
}

// Len returns the number of invocable commands.
func (r *Registry) Len() int { return len(r.order) }

// Declarations returns the top-level declarations, sorted by name, ready to
// be uploaded to the platform.
func (r *Registry) Declarations() []Declaration {
	decls := make([]Declaration, 0, len(r.nodes))
	for _, n := range r.nodes {
		decls = append(decls, n.declaration())
	}
	sort.Slice(decls, func(i, j int) bool { return decls[i].Name < decls[j].Name })
	return decls
}

func (n *node) declaration() Declaration {
	if n.leaf != nil {
		c := n.leaf
		return Declaration{
			Name:        c.Name,
			Description: c.Description,
			Options:     c.options(),
			Permissions: c.Permissions,
			NSFW:        c.NSFW,
			OnlyGuilds:  c.OnlyGuilds,
		}
	}
	d := Declaration{
		Name:        n.parent.Name,
		Description: n.parent.Description,
		Permissions: n.parent.Permissions,
		NSFW:        n.parent.NSFW,
		OnlyGuilds:  n.parent.OnlyGuilds,
	}
	for _, it := range n.items {
		switch v := it.(type) {
		case *Command:
			d.Options = append(d.Options, subOption(v))
		case *group:
			g := OptionDecl{Kind: OptionSubCommandGroup, Name: v.name, Description: v.description}
			for _, c := range v.subs {
				g.Options = append(g.Options, subOption(c))
			}
			d.Options = append(d.Options, g)
		}
	}
	return d
}

func subOption(c *Command) OptionDecl {
	return OptionDecl{
		Kind:        OptionSubCommand,
		Name:        c.Name,
		Description: c.Description,
		Options:     c.options(),
	}
}
