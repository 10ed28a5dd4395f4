package cmd

// Args holds coerced argument values in declaration order. Absent optional
// arguments are simply missing.
type Args struct {
	names  []string
	values map[string]any
}

// NewArgs builds an Args from name/value pairs, mostly for tests.
func NewArgs(pairs ...any) Args {
	var a Args
	for i := 0; i+1 < len(pairs); i += 2 {
		name, _ := pairs[i].(string)
		a.set(name, pairs[i+1])
	}
	return a
}

func (a *Args) set(name string, v any) {
	if a.values == nil {
		a.values = make(map[string]any)
	}
	if _, ok := a.values[name]; !ok {
		a.names = append(a.names, name)
	}
	a.values[name] = v
}

// Names returns present argument names in declaration order.
func (a Args) Names() []string { return append([]string(nil), a.names...) }

// Len returns the number of present arguments.
func (a Args) Len() int { return len(a.names) }

// Has reports whether the argument was supplied.
func (a Args) Has(name string) bool {
	_, ok := a.values[name]
	return ok
}

// Get returns the raw coerced value.
func (a Args) Get(name string) (any, bool) {
	v, ok := a.values[name]
	return v, ok
}

// String returns a string argument or "".
func (a Args) String(name string) string {
	v, _ := ArgAs[string](a, name)
	return v
}

// Int returns an integer argument or 0.
func (a Args) Int(name string) int64 {
	v, _ := ArgAs[int64](a, name)
	return v
}

// Float returns a number argument or 0.
func (a Args) Float(name string) float64 {
	v, _ := ArgAs[float64](a, name)
	return v
}

// Bool returns a boolean argument or false.
func (a Args) Bool(name string) bool {
	v, _ := ArgAs[bool](a, name)
	return v
}

// User returns a user argument or nil.
func (a Args) User(name string) *User {
	v, _ := ArgAs[*User](a, name)
	return v
}

// Channel returns a channel argument or nil.
func (a Args) Channel(name string) *Channel {
	v, _ := ArgAs[*Channel](a, name)
	return v
}

// Role returns a role argument or nil.
func (a Args) Role(name string) *Role {
	v, _ := ArgAs[*Role](a, name)
	return v
}

// Mentionable returns a mentionable argument or nil.
func (a Args) Mentionable(name string) *Mentionable {
	v, _ := ArgAs[*Mentionable](a, name)
	return v
}

// ArgAs returns the named argument asserted to T. The second result is false
// when the argument is absent or holds a different type.
func ArgAs[T any](a Args, name string) (T, bool) {
	var zero T
	v, ok := a.values[name]
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
