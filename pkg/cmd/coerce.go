package cmd

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Schema is the static description a Coercer exposes for registration.
type Schema struct {
	Kind    OptionKind
	Choices []Choice
}

// Coercer converts a raw option value into a typed parameter value.
// Application-defined parameter types participate by implementing it.
type Coercer interface {
	Schema() Schema
	Coerce(c *Context, raw RawOption) (any, error)
}

// CoercerFunc adapts a schema and a function into a Coercer.
type CoercerFunc struct {
	S  Schema
	Fn func(c *Context, raw RawOption) (any, error)
}

func (f CoercerFunc) Schema() Schema { return f.S }

func (f CoercerFunc) Coerce(c *Context, raw RawOption) (any, error) { return f.Fn(c, raw) }

// String accepts string options.
func String() Coercer { return stringCoercer{} }

// StringChoices accepts a string restricted to the given choices.
func StringChoices(choices ...Choice) Coercer { return stringCoercer{choices: choices} }

type stringCoercer struct{ choices []Choice }

func (s stringCoercer) Schema() Schema { return Schema{Kind: OptionString, Choices: s.choices} }

func (s stringCoercer) Coerce(_ *Context, raw RawOption) (any, error) {
	v, ok := raw.Value.(string)
	if !ok {
		return nil, mismatch(raw, "string")
	}
	if len(s.choices) > 0 && !slices.ContainsFunc(s.choices, func(ch Choice) bool { return ch.Value == v }) {
		return nil, notAChoice(raw, s.choices)
	}
	return v, nil
}

// Integer accepts integer options and yields int64.
func Integer() Coercer { return integerCoercer{} }

// IntegerChoices accepts an integer restricted to the given choices.
func IntegerChoices(choices ...Choice) Coercer { return integerCoercer{choices: choices} }

type integerCoercer struct{ choices []Choice }

func (i integerCoercer) Schema() Schema { return Schema{Kind: OptionInteger, Choices: i.choices} }

func (i integerCoercer) Coerce(_ *Context, raw RawOption) (any, error) {
	n, ok := toInt64(raw.Value)
	if !ok {
		return nil, mismatch(raw, "integer")
	}
	if len(i.choices) > 0 && !slices.ContainsFunc(i.choices, func(ch Choice) bool {
		cv, ok := toInt64(ch.Value)
		return ok && cv == n
	}) {
		return nil, notAChoice(raw, i.choices)
	}
	return n, nil
}

// IntegerRange accepts an integer within [lo, hi].
func IntegerRange(lo, hi int64) Coercer {
	return CoercerFunc{
		S: Schema{Kind: OptionInteger},
		Fn: func(c *Context, raw RawOption) (any, error) {
			v, err := Integer().Coerce(c, raw)
			if err != nil {
				return nil, err
			}
			n := v.(int64)
			if n < lo || n > hi {
				return nil, &CoercionError{
					Argument: raw.Name,
					Kind:     CoercionCustom,
					Detail:   fmt.Sprintf("must be between %d and %d, got %d", lo, hi, n),
				}
			}
			return n, nil
		},
	}
}

// ParsedInteger accepts integers and decimal strings. Modal fields always
// submit text, so use it for numeric modal inputs.
func ParsedInteger() Coercer {
	return CoercerFunc{
		S: Schema{Kind: OptionInteger},
		Fn: func(_ *Context, raw RawOption) (any, error) {
			if s, ok := raw.Value.(string); ok {
				n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
				if err != nil {
					return nil, &CoercionError{Argument: raw.Name, Kind: CoercionTypeMismatch, Detail: "not an integer", Err: err}
				}
				return n, nil
			}
			if n, ok := toInt64(raw.Value); ok {
				return n, nil
			}
			return nil, mismatch(raw, "integer")
		},
	}
}

// Number accepts number options and yields float64.
func Number() Coercer { return numberCoercer{} }

// NumberChoices accepts a number restricted to the given choices.
func NumberChoices(choices ...Choice) Coercer { return numberCoercer{choices: choices} }

type numberCoercer struct{ choices []Choice }

func (n numberCoercer) Schema() Schema { return Schema{Kind: OptionNumber, Choices: n.choices} }

func (n numberCoercer) Coerce(_ *Context, raw RawOption) (any, error) {
	f, ok := toFloat64(raw.Value)
	if !ok {
		return nil, mismatch(raw, "number")
	}
	if len(n.choices) > 0 && !slices.ContainsFunc(n.choices, func(ch Choice) bool {
		cv, ok := toFloat64(ch.Value)
		return ok && cv == f
	}) {
		return nil, notAChoice(raw, n.choices)
	}
	return f, nil
}

// Boolean accepts boolean options.
func Boolean() Coercer { return booleanCoercer{} }

type booleanCoercer struct{}

func (booleanCoercer) Schema() Schema { return Schema{Kind: OptionBoolean} }

func (booleanCoercer) Coerce(_ *Context, raw RawOption) (any, error) {
	v, ok := raw.Value.(bool)
	if !ok {
		return nil, mismatch(raw, "boolean")
	}
	return v, nil
}

// UserRef resolves a user option into *User.
func UserRef() Coercer { return userCoercer{} }

type userCoercer struct{}

func (userCoercer) Schema() Schema { return Schema{Kind: OptionUser} }

func (userCoercer) Coerce(c *Context, raw RawOption) (any, error) {
	id, ok := raw.Value.(string)
	if !ok || id == "" {
		return nil, mismatch(raw, "user id")
	}
	if res := resolvedOf(c); res != nil {
		if u, ok := res.Users[id]; ok {
			return u, nil
		}
		if m, ok := res.Members[id]; ok && m.User != nil {
			return m.User, nil
		}
	}
	return &User{ID: id}, nil
}

// ChannelRef resolves a channel option into *Channel.
func ChannelRef() Coercer { return channelCoercer{} }

type channelCoercer struct{}

func (channelCoercer) Schema() Schema { return Schema{Kind: OptionChannel} }

func (channelCoercer) Coerce(c *Context, raw RawOption) (any, error) {
	id, ok := raw.Value.(string)
	if !ok || id == "" {
		return nil, mismatch(raw, "channel id")
	}
	if res := resolvedOf(c); res != nil {
		if ch, ok := res.Channels[id]; ok {
			return ch, nil
		}
	}
	return &Channel{ID: id}, nil
}

// RoleRef resolves a role option into *Role.
func RoleRef() Coercer { return roleCoercer{} }

type roleCoercer struct{}

func (roleCoercer) Schema() Schema { return Schema{Kind: OptionRole} }

func (roleCoercer) Coerce(c *Context, raw RawOption) (any, error) {
	id, ok := raw.Value.(string)
	if !ok || id == "" {
		return nil, mismatch(raw, "role id")
	}
	if res := resolvedOf(c); res != nil {
		if r, ok := res.Roles[id]; ok {
			return r, nil
		}
	}
	return &Role{ID: id}, nil
}

// MentionableRef resolves a user-or-role option into *Mentionable.
func MentionableRef() Coercer { return mentionableCoercer{} }

type mentionableCoercer struct{}

func (mentionableCoercer) Schema() Schema { return Schema{Kind: OptionMentionable} }

func (mentionableCoercer) Coerce(c *Context, raw RawOption) (any, error) {
	id, ok := raw.Value.(string)
	if !ok || id == "" {
		return nil, mismatch(raw, "mentionable id")
	}
	res := resolvedOf(c)
	if res != nil {
		if r, ok := res.Roles[id]; ok {
			return &Mentionable{Role: r}, nil
		}
		if u, ok := res.Users[id]; ok {
			return &Mentionable{User: u}, nil
		}
		if m, ok := res.Members[id]; ok && m.User != nil {
			return &Mentionable{User: m.User}, nil
		}
	}
	return &Mentionable{User: &User{ID: id}}, nil
}

func resolvedOf(c *Context) *Resolved {
	if c == nil || c.Interaction == nil {
		return nil
	}
	return c.Interaction.Resolved
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		// JSON decoders hand integers over as float64.
		if n != math.Trunc(n) || n < -(1<<63) || n >= 1<<63 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	case json.Number:
		n, err := f.Float64()
		return n, err == nil
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

func notAChoice(raw RawOption, choices []Choice) error {
	allowed := make([]string, len(choices))
	for i, ch := range choices {
		allowed[i] = fmt.Sprint(ch.Value)
	}
	return &CoercionError{
		Argument: raw.Name,
		Kind:     CoercionCustom,
		Detail:   "must be one of: " + strings.Join(allowed, ", "),
	}
}

func mismatch(raw RawOption, want string) error {
	return &CoercionError{
		Argument: raw.Name,
		Kind:     CoercionTypeMismatch,
		Detail:   fmt.Sprintf("expected %s, got %T", want, raw.Value),
	}
}
