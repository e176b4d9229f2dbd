// Package devindex builds the content of the site index: categories of actions, each turned into
// a navigable link.
//
// The upstream data-access layer describes an action by its kind and the ids it applies to
// (tournament, username, round). Transform rewrites these descriptors into an `href` the client
// can follow, dropping the routing-only fields on the way.
package devindex

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind identifies what an action does.
type Kind string

const (
	CreateTournament     Kind = "create_tournament"
	EnterGameScore       Kind = "enter_game_score"
	EnterTournamentScore Kind = "enter_tournament_score"
	GetDraw              Kind = "get_draw"
	GetRankings          Kind = "get_rankings"
	GetTournamentEntries Kind = "get_tournament_entries"
	NextGame             Kind = "next_game"
	PlaceFeedback        Kind = "place_feedback"
	Register             Kind = "register"
	SetMissions          Kind = "set_missions"
	SetRounds            Kind = "set_rounds"
	SetScoreCategories   Kind = "set_score_categories"
	TournamentList       Kind = "tournament_list"
)

// Descriptor fields consumed by Transform.
const (
	fieldKind       = "action"
	fieldTournament = "tournament"
	fieldUsername   = "username"
	fieldRound      = "round"
	fieldHref       = "href"
	fieldActions    = "actions"
)

var controlFields = []string{fieldKind, fieldTournament, fieldUsername, fieldRound}

const roundPlaceholder = "{round}"

// hrefRule describes how an href is built for a Kind: which ids go into the slug and the suffix
// appended after them. The suffix may contain roundPlaceholder.
type hrefRule struct {
	tournament bool
	entry      bool
	suffix     string
}

var hrefRules = map[Kind]hrefRule{
	CreateTournament:     {suffix: "tournament/create"},
	EnterGameScore:       {tournament: true, entry: true, suffix: "entergamescore"},
	EnterTournamentScore: {tournament: true, entry: true, suffix: "enterscore"},
	GetDraw:              {tournament: true, suffix: "round/" + roundPlaceholder + "/draw"},
	GetRankings:          {tournament: true, suffix: "rankings"},
	GetTournamentEntries: {tournament: true, suffix: "entries"},
	NextGame:             {tournament: true, entry: true, suffix: "nextgame"},
	PlaceFeedback:        {suffix: "feedback"},
	Register:             {tournament: true},
	SetMissions:          {tournament: true, suffix: "missions"},
	SetRounds:            {tournament: true, suffix: "rounds"},
	SetScoreCategories:   {tournament: true, suffix: "categories"},
	TournamentList:       {suffix: "tournaments"},
}

// Kinds returns every Kind Transform knows how to link.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(hrefRules))
	for k := range hrefRules {
		kinds = append(kinds, k)
	}
	return kinds
}

// Slug joins the non-empty parts into a path:
// /tournament/{tournament}/entry/{entry}/{suffix}.
func Slug(tournament, entry, suffix string) string {
	var b strings.Builder
	if tournament != "" {
		b.WriteString("/tournament/")
		b.WriteString(tournament)
	}
	if entry != "" {
		b.WriteString("/entry/")
		b.WriteString(entry)
	}
	if suffix != "" {
		b.WriteString("/")
		b.WriteString(suffix)
	}
	return b.String()
}

// Href returns the link of an action of the given kind, or false if the kind is unknown.
// round is inserted verbatim wherever the kind's path needs it.
func Href(kind Kind, tournament, username, round string) (string, bool) {
	rule, ok := hrefRules[kind]
	if !ok {
		return "", false
	}
	var t, e string
	if rule.tournament {
		t = tournament
	}
	if rule.entry {
		e = username
	}
	return Slug(t, e, strings.ReplaceAll(rule.suffix, roundPlaceholder, round)), true
}

// ParseError is returned by Transform when its input is not a document of categories.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "devindex: malformed document: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

type shapeError string

func (e shapeError) Error() string { return string(e) }

// Action is a single link of a Category, once transformed: its passthrough fields and, when its
// kind was recognized, its href.
type Action map[string]json.RawMessage

// Href returns the href of the action and whether it has one.
func (a Action) Href() (string, bool) {
	raw, ok := a[fieldHref]
	if !ok {
		return "", false
	}
	var href string
	if err := json.Unmarshal(raw, &href); err != nil {
		return "", false
	}
	return href, true
}

// Has reports whether the action carries the field.
func (a Action) Has(field string) bool {
	_, ok := a[field]
	return ok
}

// Category is a titled group of actions. Fields holds everything but the actions, untouched.
type Category struct {
	Fields  map[string]json.RawMessage
	Actions []Action
}

func (c Category) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(c.Fields)+1)
	for k, v := range c.Fields {
		out[k] = v
	}
	if c.Actions != nil {
		out[fieldActions] = c.Actions
	}
	return json.Marshal(out)
}

// Document is the ordered list of categories shown on the index page.
type Document []Category

// Transform parses the upstream JSON document and returns a new Document where every action has
// its routing fields (action, tournament, username, round) replaced by an href.
// Actions of unknown kinds get no href but still lose their routing fields.
// The number and order of categories and actions are preserved.
func Transform(raw []byte) (Document, error) {
	var rawCats []json.RawMessage
	if err := json.Unmarshal(raw, &rawCats); err != nil {
		return nil, &ParseError{Err: err}
	}
	if rawCats == nil { // top level `null`
		return nil, &ParseError{Err: shapeError("document is not an array")}
	}

	doc := make(Document, 0, len(rawCats))
	for i, rawCat := range rawCats {
		cat, err := transformCategory(rawCat)
		if err != nil {
			return nil, &ParseError{Err: errorAt(err, "category "+strconv.Itoa(i))}
		}
		doc = append(doc, cat)
	}
	return doc, nil
}

func transformCategory(raw json.RawMessage) (Category, error) {
	fields, err := decodeObject(raw)
	if err != nil {
		return Category{}, err
	}

	cat := Category{Fields: make(map[string]json.RawMessage, len(fields))}
	for k, v := range fields {
		if k != fieldActions {
			cat.Fields[k] = v
		}
	}

	rawActs, ok := fields[fieldActions]
	if !ok {
		return cat, nil
	}
	var acts []json.RawMessage
	if err := json.Unmarshal(rawActs, &acts); err != nil || acts == nil {
		return Category{}, shapeError("actions is not an array")
	}

	cat.Actions = make([]Action, 0, len(acts))
	for i, rawAct := range acts {
		act, err := transformAction(rawAct)
		if err != nil {
			return Category{}, errorAt(err, "action "+strconv.Itoa(i))
		}
		cat.Actions = append(cat.Actions, act)
	}
	return cat, nil
}

func transformAction(raw json.RawMessage) (Action, error) {
	fields, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	act := make(Action, len(fields)+1)
	for k, v := range fields {
		act[k] = v
	}

	var kind string // only a string kind is recognized
	_ = json.Unmarshal(fields[fieldKind], &kind)
	tournament := segment(fields[fieldTournament])
	username := segment(fields[fieldUsername])
	round := text(fields[fieldRound])

	if href, ok := Href(Kind(kind), tournament, username, round); ok {
		encoded, err := json.Marshal(href)
		if err != nil {
			return nil, err
		}
		act[fieldHref] = encoded
	}
	for _, f := range controlFields {
		delete(act, f)
	}
	return act, nil
}

// decodeObject decodes a JSON object, failing on anything else (including null).
func decodeObject(raw json.RawMessage) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, shapeError("not an object")
	}
	return fields, nil
}

// text renders a value the way it reads once concatenated into a path: strings as is, numbers
// in their shortest form, an absent value as "undefined", objects as "[object Object]" and arrays
// as their elements joined by commas.
func text(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "undefined"
	}
	switch raw[0] {
	case '"':
		var s string
		_ = json.Unmarshal(raw, &s)
		return s
	case '{':
		return "[object Object]"
	case '[':
		var elems []json.RawMessage
		_ = json.Unmarshal(raw, &elems)
		parts := make([]string, len(elems))
		for i, e := range elems {
			if e = bytes.TrimSpace(e); !bytes.Equal(e, []byte("null")) {
				parts[i] = text(e)
			}
		}
		return strings.Join(parts, ",")
	case 't', 'f', 'n':
		return string(raw)
	default:
		return formatNumber(raw)
	}
}

// segment is the text of an id, or "" when the value is falsy: absent, null, false, 0 or "".
func segment(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case 'n', 'f':
		return ""
	case '"', '{', '[', 't':
		return text(raw)
	default:
		if f, err := strconv.ParseFloat(string(raw), 64); err == nil && f == 0 {
			return ""
		}
		return formatNumber(raw)
	}
}

// formatNumber prints a JSON number in its shortest round-tripping form: 3.0 is "3", 1e2 is
// "100", 1e21 is "1e+21" and 1.5e-7 is "1.5e-7".
func formatNumber(raw json.RawMessage) string {
	f, err := strconv.ParseFloat(string(raw), 64)
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case err != nil:
		return string(raw)
	case f == 0:
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		return strings.NewReplacer("e-0", "e-", "e+0", "e+").Replace(s)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func errorAt(err error, where string) error {
	return shapeError(where + ": " + err.Error())
}
