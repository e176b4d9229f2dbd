package devindex

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// transformOne transforms a single action and returns it.
func transformOne(t *testing.T, action string) Action {
	t.Helper()
	doc, err := Transform([]byte(`[{"title":"c","actions":[` + action + `]}]`))
	require.NoError(t, err)
	require.Len(t, doc, 1)
	require.Len(t, doc[0].Actions, 1)
	return doc[0].Actions[0]
}

func TestSlug(t *testing.T) {
	tests := []struct {
		tournament, entry, suffix string
		want                      string
	}{
		{"T1", "bob", "nextgame", "/tournament/T1/entry/bob/nextgame"},
		{"T1", "", "rankings", "/tournament/T1/rankings"},
		{"T1", "", "", "/tournament/T1"},
		{"", "bob", "", "/entry/bob"},
		{"", "", "tournaments", "/tournaments"},
		{"", "", "", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Slug(tc.tournament, tc.entry, tc.suffix))
	}
}

func TestTransform_hrefs(t *testing.T) {
	const ids = `"tournament":"T1","username":"bob","round":3`
	tests := []struct {
		kind Kind
		want string
	}{
		{CreateTournament, "/tournament/create"},
		{EnterGameScore, "/tournament/T1/entry/bob/entergamescore"},
		{EnterTournamentScore, "/tournament/T1/entry/bob/enterscore"},
		{GetDraw, "/tournament/T1/round/3/draw"},
		{GetRankings, "/tournament/T1/rankings"},
		{GetTournamentEntries, "/tournament/T1/entries"},
		{NextGame, "/tournament/T1/entry/bob/nextgame"},
		{PlaceFeedback, "/feedback"},
		{Register, "/tournament/T1"},
		{SetMissions, "/tournament/T1/missions"},
		{SetRounds, "/tournament/T1/rounds"},
		{SetScoreCategories, "/tournament/T1/categories"},
		{TournamentList, "/tournaments"},
	}
	require.Len(t, tests, len(Kinds()))

	for _, tc := range tests {
		t.Run(string(tc.kind), func(t *testing.T) {
			act := transformOne(t, `{"action":"`+string(tc.kind)+`",`+ids+`,"text":"go"}`)
			href, ok := act.Href()
			require.True(t, ok)
			assert.Equal(t, tc.want, href)
			assert.JSONEq(t, `"go"`, string(act["text"]))
		})
	}
}

func TestTransform_edgeValues(t *testing.T) {
	tests := []struct {
		name   string
		action string
		want   string
	}{
		{name: "create ignores ids", action: `{"action":"create_tournament","tournament":"T1","username":"bob","round":1}`, want: "/tournament/create"},
		{name: "register without tournament", action: `{"action":"register","tournament":null}`, want: ""},
		{name: "register with empty tournament", action: `{"action":"register","tournament":""}`, want: ""},
		{name: "next game without username", action: `{"action":"next_game","tournament":"T1","username":null}`, want: "/tournament/T1/nextgame"},
		{name: "numeric tournament", action: `{"action":"get_rankings","tournament":42}`, want: "/tournament/42/rankings"},
		{name: "draw without round", action: `{"action":"get_draw","tournament":"T1"}`, want: "/tournament/T1/round/undefined/draw"},
		{name: "draw with null round", action: `{"action":"get_draw","tournament":"T1","round":null}`, want: "/tournament/T1/round/null/draw"},
		{name: "draw with string round", action: `{"action":"get_draw","tournament":"T1","round":"2"}`, want: "/tournament/T1/round/2/draw"},
		{name: "draw with float round", action: `{"action":"get_draw","tournament":"T1","round":3.0}`, want: "/tournament/T1/round/3/draw"},
		{name: "draw with exponent round", action: `{"action":"get_draw","tournament":"T1","round":1e2}`, want: "/tournament/T1/round/100/draw"},
		{name: "draw with huge round", action: `{"action":"get_draw","tournament":"T1","round":1e21}`, want: "/tournament/T1/round/1e+21/draw"},
		{name: "draw with tiny round", action: `{"action":"get_draw","tournament":"T1","round":1.5e-7}`, want: "/tournament/T1/round/1.5e-7/draw"},
		{name: "draw with zero round", action: `{"action":"get_draw","tournament":"T1","round":0}`, want: "/tournament/T1/round/0/draw"},
		{name: "draw with false round", action: `{"action":"get_draw","tournament":"T1","round":false}`, want: "/tournament/T1/round/false/draw"},
		{name: "draw with array round", action: `{"action":"get_draw","tournament":"T1","round":[1,null,"b"]}`, want: "/tournament/T1/round/1,,b/draw"},
		{name: "zero tournament", action: `{"action":"get_rankings","tournament":0}`, want: "/rankings"},
		{name: "negative zero tournament", action: `{"action":"get_rankings","tournament":-0.0}`, want: "/rankings"},
		{name: "false tournament", action: `{"action":"get_rankings","tournament":false}`, want: "/rankings"},
		{name: "string zero tournament", action: `{"action":"get_rankings","tournament":"0"}`, want: "/tournament/0/rankings"},
		{name: "float tournament", action: `{"action":"get_rankings","tournament":7.50}`, want: "/tournament/7.5/rankings"},
		{name: "true username", action: `{"action":"next_game","tournament":"T1","username":true}`, want: "/tournament/T1/entry/true/nextgame"},
		{name: "zero username", action: `{"action":"next_game","tournament":"T1","username":0}`, want: "/tournament/T1/nextgame"},
		{name: "object tournament", action: `{"action":"register","tournament":{"id":1}}`, want: "/tournament/[object Object]"},
		{name: "list overwrites href", action: `{"action":"tournament_list","href":"/old"}`, want: "/tournaments"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			href, ok := transformOne(t, tc.action).Href()
			require.True(t, ok)
			assert.Equal(t, tc.want, href)
		})
	}
}

func TestTransform_unknownKind(t *testing.T) {
	tests := []struct {
		name   string
		action string
		want   Action
	}{
		{
			name:   "unknown kind",
			action: `{"action":"nonexistent_kind","tournament":"T1","username":"bob","round":2,"text":"x"}`,
			want:   Action{"text": json.RawMessage(`"x"`)},
		},
		{
			name:   "missing kind",
			action: `{"tournament":"T1"}`,
			want:   Action{},
		},
		{
			name:   "non string kind",
			action: `{"action":7}`,
			want:   Action{},
		},
		{
			name:   "passthrough href kept",
			action: `{"action":"nope","href":"/kept"}`,
			want:   Action{"href": json.RawMessage(`"/kept"`)},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			act := transformOne(t, tc.action)
			assert.Equal(t, tc.want, act)
			for _, f := range controlFields {
				assert.False(t, act.Has(f), f)
			}
		})
	}
}

func TestTransform_document(t *testing.T) {
	raw := `[
		{"key":"enter","title":"Enter","actions":[
			{"action":"tournament_list","text":"All"},
			{"action":"register","tournament":"T1","text":"Apply"},
			{"action":"mystery","tournament":"T1"}
		]},
		{"key":"empty","title":"Nothing","actions":[]},
		{"key":"bare","title":"No actions"},
		{"key":"view","actions":[{"action":"get_rankings","tournament":"T2","round":null}],"extra":{"a":[1,2]}}
	]`

	doc, err := Transform([]byte(raw))
	require.NoError(t, err)

	var in []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &in))
	require.Len(t, doc, len(in))
	for i, cat := range doc {
		var acts []json.RawMessage
		if a, ok := in[i]["actions"]; ok {
			require.NoError(t, json.Unmarshal(a, &acts))
		}
		assert.Len(t, cat.Actions, len(acts), "category %d", i)
		for _, act := range cat.Actions {
			for _, f := range controlFields {
				assert.False(t, act.Has(f))
			}
		}
	}

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"key":"enter","title":"Enter","actions":[
			{"href":"/tournaments","text":"All"},
			{"href":"/tournament/T1","text":"Apply"},
			{}
		]},
		{"key":"empty","title":"Nothing","actions":[]},
		{"key":"bare","title":"No actions"},
		{"key":"view","actions":[{"href":"/tournament/T2/rankings"}],"extra":{"a":[1,2]}}
	]`, string(out))
}

func TestTransform_empty(t *testing.T) {
	doc, err := Transform([]byte(" [] "))
	require.NoError(t, err)
	assert.Empty(t, doc)

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))
}

func TestTransform_parseErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "malformed", raw: `{not json`},
		{name: "empty input", raw: ``},
		{name: "truncated", raw: `[{"actions":[`},
		{name: "object at top level", raw: `{"actions":[]}`},
		{name: "null at top level", raw: `null`},
		{name: "string at top level", raw: `"[]"`},
		{name: "category not an object", raw: `[1]`},
		{name: "null category", raw: `[null]`},
		{name: "actions not an array", raw: `[{"actions":{}}]`},
		{name: "null actions", raw: `[{"actions":null}]`},
		{name: "action not an object", raw: `[{"actions":["register"]}]`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := Transform([]byte(tc.raw))
			assert.Nil(t, doc)
			var pErr *ParseError
			require.True(t, errors.As(err, &pErr), "want *ParseError, got %v", err)
		})
	}
}

func TestTransform_inputUntouched(t *testing.T) {
	raw := []byte(`[{"actions":[{"action":"register","tournament":"T1"}]}]`)
	orig := string(raw)

	_, err := Transform(raw)
	require.NoError(t, err)
	assert.Equal(t, orig, string(raw))
}
