// Package ordering turns a caller supplied, comma separated sort parameter into
// an ordering plan over a fixed set of sortable fields and virtual count fields.
package ordering

import (
	"strings"
)

// DefaultSort is used when nothing in the request survives filtering.
const DefaultSort = "-created_at"

// Virtual is a computed count field. Any token containing Marker selects it and
// the plan orders by Alias.
type Virtual struct {
	Marker string
	Alias  string
}

// Config is the immutable sort policy of one collection.
type Config struct {
	safelist map[string]struct{}
	virtuals []Virtual
	fallback Term
}

// NewConfig builds a policy. safelist holds bare field names; their descending
// forms are accepted automatically. An empty def falls back to DefaultSort.
func NewConfig(safelist []string, virtuals []Virtual, def string) Config {
	set := make(map[string]struct{}, len(safelist))
	for _, f := range safelist {
		set[strings.TrimPrefix(f, "-")] = struct{}{}
	}
	if def == "" {
		def = DefaultSort
	}
	return Config{
		safelist: set,
		virtuals: append([]Virtual(nil), virtuals...),
		fallback: parseTerm(def),
	}
}

// Virtuals returns the configured virtual fields in order.
func (c Config) Virtuals() []Virtual {
	return append([]Virtual(nil), c.virtuals...)
}

// Term is one ordering key.
type Term struct {
	Field   string
	Desc    bool
	Virtual bool
}

func parseTerm(token string) Term {
	if strings.HasPrefix(token, "-") {
		return Term{Field: token[1:], Desc: true}
	}
	return Term{Field: token}
}

// String renders the term in sort-parameter form.
func (t Term) String() string {
	if t.Desc {
		return "-" + t.Field
	}
	return t.Field
}

// Plan is the result of parsing a sort parameter.
type Plan struct {
	Terms     []Term
	Virtuals  []Virtual
	Dropped   []string
	Defaulted bool
}

// Annotates reports whether the plan needs the virtual with the given alias.
func (p Plan) Annotates(alias string) bool {
	for _, v := range p.Virtuals {
		if v.Alias == alias {
			return true
		}
	}
	return false
}

// Parse builds a plan:
//
//   - tokens are deduplicated by exact value, first occurrence kept;
//   - a token containing a virtual marker joins that virtual's bucket, and the
//     bucket sorts descending if any of its tokens starts with '-';
//   - other tokens are kept only when safelisted, in first-occurrence order;
//   - virtual terms follow the concrete ones, in configuration order;
//   - an empty result falls back to the default term.
func (c Config) Parse(raw string) Plan {
	var plan Plan

	seen := make(map[string]struct{})
	buckets := make([]struct{ used, desc bool }, len(c.virtuals))

	for _, part := range strings.Split(raw, ",") {
		token := strings.TrimSpace(part)
		if token == "" {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}

		if i := c.virtualIndex(token); i >= 0 {
			buckets[i].used = true
			if strings.HasPrefix(token, "-") {
				buckets[i].desc = true
			}
			continue
		}

		term := parseTerm(token)
		if _, ok := c.safelist[term.Field]; !ok || term.Field == "" {
			plan.Dropped = append(plan.Dropped, token)
			continue
		}
		plan.Terms = append(plan.Terms, term)
	}

	for i, b := range buckets {
		if !b.used {
			continue
		}
		v := c.virtuals[i]
		plan.Virtuals = append(plan.Virtuals, v)
		plan.Terms = append(plan.Terms, Term{Field: v.Alias, Desc: b.desc, Virtual: true})
	}

	if len(plan.Terms) == 0 {
		plan.Terms = []Term{c.fallback}
		plan.Defaulted = true
	}
	return plan
}

func (c Config) virtualIndex(token string) int {
	for i, v := range c.virtuals {
		if strings.Contains(token, v.Marker) {
			return i
		}
	}
	return -1
}
