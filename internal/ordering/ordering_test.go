package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var commentSort = NewConfig(
	[]string{"created_at", "updated_at", "id"},
	[]Virtual{
		{Marker: "postcommentlike", Alias: "likes_count"},
		{Marker: "postcommentreply", Alias: "replies_count"},
	},
	"",
)

func terms(p Plan) []string {
	out := make([]string, len(p.Terms))
	for i, t := range p.Terms {
		out[i] = t.String()
	}
	return out
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      []string
		dropped   []string
		defaulted bool
	}{
		{"empty uses default", "", []string{"-created_at"}, nil, true},
		{"only junk uses default", "foo,bar", []string{"-created_at"}, []string{"foo", "bar"}, true},
		{"safelist filter keeps both directions", "created_at,foo,-created_at", []string{"created_at", "-created_at"}, []string{"foo"}, false},
		{"exact duplicates collapse", "id,id, id", []string{"id"}, nil, false},
		{"virtual ascending", "postcommentlike", []string{"likes_count"}, nil, false},
		{"virtual descending", "-postcommentlike", []string{"-likes_count"}, nil, false},
		{"conflicting virtual directions resolve descending", "postcommentlike,-postcommentlike", []string{"-likes_count"}, nil, false},
		{"conflict resolution ignores token order", "-postcommentlike,postcommentlike", []string{"-likes_count"}, nil, false},
		{"marker matched by containment", "postcommentlikes_count", []string{"likes_count"}, nil, false},
		{"concrete fields precede virtuals", "-postcommentreply,updated_at,postcommentlike", []string{"updated_at", "likes_count", "-replies_count"}, nil, false},
		{"whitespace and empty tokens", " -id , ,created_at ", []string{"-id", "created_at"}, nil, false},
		{"bare dash dropped", "-", []string{"-created_at"}, []string{"-"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := commentSort.Parse(tt.raw)
			assert.Equal(t, tt.want, terms(plan))
			assert.Equal(t, tt.dropped, plan.Dropped)
			assert.Equal(t, tt.defaulted, plan.Defaulted)
		})
	}
}

func TestParse_VirtualsAnnotated(t *testing.T) {
	plan := commentSort.Parse("postcommentreply")
	assert.True(t, plan.Annotates("replies_count"))
	assert.False(t, plan.Annotates("likes_count"))
	assert.True(t, plan.Terms[0].Virtual)

	assert.Empty(t, commentSort.Parse("created_at").Virtuals)
}

func TestParse_Deterministic(t *testing.T) {
	raw := "postcommentlike,-id,-postcommentlike,foo,created_at"
	assert.Equal(t, commentSort.Parse(raw), commentSort.Parse(raw))
}

func TestConfig_IndependentPolicies(t *testing.T) {
	postSort := NewConfig([]string{"created_at", "title"}, []Virtual{
		{Marker: "postlike", Alias: "likes_count"},
		{Marker: "postcomment", Alias: "comments_count"},
	}, "-created_at")

	assert.Equal(t, []string{"title"}, terms(postSort.Parse("title")))
	assert.Equal(t, []string{"-created_at"}, terms(commentSort.Parse("title")))
	assert.Equal(t, []string{"-comments_count"}, terms(postSort.Parse("-postcomment")))

	custom := NewConfig([]string{"id"}, nil, "id")
	assert.Equal(t, []string{"id"}, terms(custom.Parse("")))
}
