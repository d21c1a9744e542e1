package projection

import (
	"fmt"
	"sort"
	"strings"
)

// Schema is the static relation graph of an entity type. Schemas are declared
// once at package init and are read-only afterwards.
type Schema struct {
	name      string
	relations []relation
}

type relation struct {
	field  string
	key    string
	target *Schema
}

// NewSchema declares a schema.
func NewSchema(name string) *Schema {
	return &Schema{name: name}
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Relate declares that field points at target and is configured by key.
// Relations may be declared after both schemas exist, so cycles are allowed.
func (s *Schema) Relate(field, key string, target *Schema) *Schema {
	s.relations = append(s.relations, relation{field: field, key: key, target: target})
	return s
}

// Keys returns every context key reachable from s, sorted.
func (s *Schema) Keys() []string {
	keys := make([]string, 0)
	for k := range s.reachable() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Schema) reachable() map[string]struct{} {
	keys := make(map[string]struct{})
	seen := map[*Schema]bool{}
	stack := []*Schema{s}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		for _, r := range cur.relations {
			keys[r.key] = struct{}{}
			if r.target != nil {
				stack = append(stack, r.target)
			}
		}
	}
	return keys
}

// Validate fails with a ConfigurationError when ctx names a key that no
// relation reachable from s uses.
func (s *Schema) Validate(ctx Context) error {
	if len(ctx) == 0 {
		return nil
	}
	known := s.reachable()
	var unknown []string
	for k := range ctx {
		if _, ok := known[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return &ConfigurationError{Schema: s.name, Keys: unknown}
}

// ConfigurationError reports context keys that name no relation of the schema.
type ConfigurationError struct {
	Schema string
	Keys   []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("projection context for %s names unknown relations: %s",
		e.Schema, strings.Join(e.Keys, ", "))
}
