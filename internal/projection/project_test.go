package projection

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	languageSchema = NewSchema("language")
	nameSchema     = NewSchema("teamname").Relate("language", "language", languageSchema)
	teamSchema     = NewSchema("team").Relate("teamname_set", "teamname", nameSchema)
	gameSchema     = NewSchema("game").
			Relate("home_team", "team", teamSchema).
			Relate("visitor_team", "team", teamSchema)
)

type language struct {
	ID   uint
	Name string
}

func (l *language) ProjectionSchema() *Schema { return languageSchema }
func (l *language) ProjectionFields() []Field {
	return []Field{Value("id", l.ID), Value("name", l.Name)}
}

type teamName struct {
	ID       uint
	Name     string
	Language *language
}

func (n *teamName) ProjectionSchema() *Schema { return nameSchema }
func (n *teamName) ProjectionFields() []Field {
	return []Field{
		Value("id", n.ID),
		Value("name", n.Name),
		One("language", "language", n.Language),
	}
}

type team struct {
	ID     uint
	Symbol string
	Names  []teamName
	Liked  *bool
}

func (t *team) ProjectionSchema() *Schema { return teamSchema }
func (t *team) ProjectionFields() []Field {
	return []Field{
		Value("id", t.ID),
		Value("symbol", t.Symbol),
		Many("teamname_set", "teamname", t.Names),
		Optional("liked", t.Liked),
	}
}

type game struct {
	ID      string
	Home    *team
	Visitor *team
	Arena   string
}

func (g *game) ProjectionSchema() *Schema { return gameSchema }
func (g *game) ProjectionFields() []Field {
	return []Field{
		Value("game_id", g.ID),
		One("home_team", "team", g.Home),
		One("visitor_team", "team", g.Visitor),
		Value("arena_name", g.Arena),
	}
}

func fixtureGame() *game {
	english := &language{ID: 1, Name: "English"}
	korean := &language{ID: 2, Name: "Korean"}
	return &game{
		ID:    "0022400061",
		Arena: "Crypto.com Arena",
		Home: &team{ID: 1610612747, Symbol: "LAL", Names: []teamName{
			{ID: 1, Name: "Lakers", Language: english},
			{ID: 2, Name: "레이커스", Language: korean},
		}},
		Visitor: &team{ID: 1610612744, Symbol: "GSW", Names: []teamName{
			{ID: 3, Name: "Warriors", Language: english},
		}},
	}
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestProject_AllFieldsKeepsDeclarationOrder(t *testing.T) {
	rec, err := Project(&language{ID: 1, Name: "English"}, AllFields(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, rec.Keys())
	assert.Equal(t, `{"id":1,"name":"English"}`, toJSON(t, rec))
}

func TestProject_IncludeWinsOverExclude(t *testing.T) {
	sel := Resolve([]string{"game_id", "arena_name"}, []string{"arena_name", "home_team"})
	assert.Equal(t, Include, sel.Mode())

	rec, err := Project(fixtureGame(), sel, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"game_id", "arena_name"}, rec.Keys())
}

func TestProject_ExcludeAndUnknownNames(t *testing.T) {
	rec, err := Project(fixtureGame(), Except("home_team", "visitor_team", "no_such_field"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"game_id", "arena_name"}, rec.Keys())

	rec, err = Project(fixtureGame(), Only("game_id", "no_such_field"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"game_id"}, rec.Keys())
}

func TestProject_NestedContextAppliesAtEveryDepth(t *testing.T) {
	ctx := Context{
		"team":     Only("symbol", "teamname_set"),
		"teamname": Only("name", "language"),
		"language": Only("name"),
	}

	rec, err := Project(fixtureGame(), Except("arena_name"), ctx)
	require.NoError(t, err)

	expected := `{"game_id":"0022400061",` +
		`"home_team":{"symbol":"LAL","teamname_set":[{"name":"Lakers","language":{"name":"English"}},{"name":"레이커스","language":{"name":"Korean"}}]},` +
		`"visitor_team":{"symbol":"GSW","teamname_set":[{"name":"Warriors","language":{"name":"English"}}]}}`
	assert.JSONEq(t, expected, toJSON(t, rec))

	home, ok := rec.Get("home_team")
	require.True(t, ok)
	visitor, _ := rec.Get("visitor_team")
	assert.Equal(t, home.(*Record).Keys(), visitor.(*Record).Keys(), "siblings share the same rules")
}

func TestProject_UnloadedRelationsAreNull(t *testing.T) {
	g := &game{ID: "1", Home: &team{ID: 7, Symbol: "BOS"}}

	rec, err := Project(g, AllFields(), Context{"team": Only("symbol", "teamname_set")})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"game_id":"1","home_team":{"symbol":"BOS","teamname_set":null},"visitor_team":null,"arena_name":""}`,
		toJSON(t, rec))

	loadedEmpty := &team{ID: 7, Symbol: "BOS", Names: []teamName{}}
	rec, err = Project(loadedEmpty, Only("teamname_set"), nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"teamname_set":[]}`, toJSON(t, rec))
}

func TestProject_OptionalFieldAbsentVersusFalse(t *testing.T) {
	anon, err := Project(&team{ID: 1}, Only("id", "liked"), nil)
	require.NoError(t, err)
	_, present := anon.Get("liked")
	assert.False(t, present)

	no := false
	viewer, err := Project(&team{ID: 1, Liked: &no}, Only("id", "liked"), nil)
	require.NoError(t, err)
	liked, present := viewer.Get("liked")
	assert.True(t, present)
	assert.Equal(t, false, liked)
}

func TestProject_Idempotent(t *testing.T) {
	g := fixtureGame()
	ctx := Context{"teamname": Except("id")}

	first, err := Project(g, Except("arena_name"), ctx)
	require.NoError(t, err)
	second, err := Project(g, Except("arena_name"), ctx)
	require.NoError(t, err)
	assert.Equal(t, toJSON(t, first), toJSON(t, second))
}

func TestProject_UnknownContextKeyIsConfigurationError(t *testing.T) {
	_, err := Project(fixtureGame(), AllFields(), Context{"teamnmae": Only("name")})
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "game", cfgErr.Schema)
	assert.Equal(t, []string{"teamnmae"}, cfgErr.Keys)

	// A key valid for a deeper schema is not reachable from a shallower one.
	_, err = Project(&language{ID: 1}, AllFields(), Context{"team": AllFields()})
	assert.ErrorAs(t, err, &cfgErr)
}

func TestProjectAll(t *testing.T) {
	langs := []language{{ID: 1, Name: "English"}, {ID: 2, Name: "Korean"}}

	recs, err := ProjectAll(langs, Only("name"), nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"English"},{"name":"Korean"}]`, toJSON(t, recs))

	_, err = ProjectAll([]game{}, AllFields(), Context{"bogus": AllFields()})
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr, "validated even for an empty collection")
}

func TestSchema_KeysHandlesCycles(t *testing.T) {
	post := NewSchema("post")
	comment := NewSchema("comment").Relate("post", "post", post)
	post.Relate("comments", "comment", comment)

	assert.Equal(t, []string{"comment", "post"}, post.Keys())
	assert.NoError(t, comment.Validate(Context{"comment": AllFields(), "post": AllFields()}))
}

func TestParseList(t *testing.T) {
	assert.Nil(t, ParseList(""))
	assert.Nil(t, ParseList("  "))
	assert.Equal(t, []string{"id", "name"}, ParseList("id, name,,"))
}
