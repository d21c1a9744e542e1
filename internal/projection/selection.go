// Package projection renders entities into field-filtered, ordered records.
//
// An entity declares its fields in order. Relation fields name a context key,
// and a Context maps those keys to the Selection applied to the related entity.
// The same Context is threaded through every level of the traversal.
package projection

import "strings"

// Mode tags a Selection.
type Mode int

const (
	All Mode = iota
	Include
	Exclude
)

func (m Mode) String() string {
	switch m {
	case Include:
		return "include"
	case Exclude:
		return "exclude"
	default:
		return "all"
	}
}

// Selection decides which declared fields of an entity are emitted.
type Selection struct {
	mode  Mode
	names map[string]struct{}
}

func newSelection(mode Mode, names []string) Selection {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return Selection{mode: mode, names: set}
}

// AllFields emits every declared field.
func AllFields() Selection { return Selection{} }

// Only emits just the named fields.
func Only(names ...string) Selection { return newSelection(Include, names) }

// Except emits every declared field but the named ones.
func Except(names ...string) Selection { return newSelection(Exclude, names) }

// Resolve builds a selection from optional include and exclude lists.
// A non-nil include list wins and the exclude list is ignored.
func Resolve(include, exclude []string) Selection {
	switch {
	case include != nil:
		return Only(include...)
	case exclude != nil:
		return Except(exclude...)
	default:
		return AllFields()
	}
}

// ParseList splits a comma separated query value. An empty value yields nil.
func ParseList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Mode returns the selection's tag.
func (s Selection) Mode() Mode { return s.mode }

// Allows reports whether the field is emitted under this selection.
func (s Selection) Allows(name string) bool {
	_, listed := s.names[name]
	switch s.mode {
	case Include:
		return listed
	case Exclude:
		return !listed
	default:
		return true
	}
}

// Context maps a relation context key to the selection used for that relation.
type Context map[string]Selection

// For returns the selection for key, defaulting to all fields.
func (c Context) For(key string) Selection {
	if sel, ok := c[key]; ok {
		return sel
	}
	return AllFields()
}
