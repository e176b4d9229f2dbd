package devindex

import (
	"context"
	"encoding/json"
	"io/fs"
	"strconv"

	"github.com/pkg/errors"

	"github.com/trezcool/tourney/core/tournament"
	appfs "github.com/trezcool/tourney/fs"
)

const baseContentPath = "assets/indexcontent.json"

// Category keys of the base content.
const (
	keyEnter    = "enter"
	keyOrganise = "organise"
	keyPlay     = "play"
	keyView     = "view"
)

// Source supplies the index content in the upstream format: a JSON array of categories holding
// action descriptors. viewer is the username of the logged in user, if any.
type Source interface {
	Fetch(ctx context.Context, viewer string) ([]byte, error)
}

// Service serves the transformed index content.
type Service struct {
	src Source
}

func NewService(src Source) *Service {
	return &Service{src: src}
}

// Index fetches the content for the viewer and transforms it.
// A malformed upstream document is reported as a *ParseError.
func (svc *Service) Index(ctx context.Context, viewer string) (Document, error) {
	raw, err := svc.src.Fetch(ctx, viewer)
	if err != nil {
		return nil, errors.Wrap(err, "fetching index content")
	}
	return Transform(raw)
}

type descriptor struct {
	Action     Kind   `json:"action"`
	Tournament string `json:"tournament,omitempty"`
	Username   string `json:"username,omitempty"`
	Round      *int   `json:"round,omitempty"`
	Text       string `json:"text"`
}

type category struct {
	Key     string        `json:"key"`
	Title   string        `json:"title"`
	Actions []interface{} `json:"actions"`
}

// TournamentLister is the part of the tournament service the Catalog reads.
type TournamentLister interface {
	List(ctx context.Context) ([]tournament.Tournament, error)
	CreatedBy(ctx context.Context, username string) ([]tournament.Tournament, error)
	EntriesFor(ctx context.Context, username string) ([]tournament.Entry, error)
}

// Catalog is the local Source: the embedded base content extended with the live tournaments.
type Catalog struct {
	base        []byte
	tournaments TournamentLister
}

var _ Source = (*Catalog)(nil)

// NewCatalog loads the embedded base content.
func NewCatalog(tournaments TournamentLister) (*Catalog, error) {
	base, err := fs.ReadFile(appfs.FS, baseContentPath)
	if err != nil {
		return nil, errors.Wrap(err, "reading base index content")
	}
	return &Catalog{base: base, tournaments: tournaments}, nil
}

// Fetch returns the base content with actions for every tournament added to the "enter" and
// "view" categories, and, for a logged in viewer, actions for the tournaments they organise or
// play in.
func (c *Catalog) Fetch(ctx context.Context, viewer string) ([]byte, error) {
	var cats []category
	if err := json.Unmarshal(c.base, &cats); err != nil {
		return nil, errors.Wrap(err, "decoding base index content")
	}

	all, err := c.tournaments.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing tournaments")
	}
	var organised []tournament.Tournament
	var entries []tournament.Entry
	if viewer != "" {
		if organised, err = c.tournaments.CreatedBy(ctx, viewer); err != nil {
			return nil, errors.Wrap(err, "listing organised tournaments")
		}
		if entries, err = c.tournaments.EntriesFor(ctx, viewer); err != nil {
			return nil, errors.Wrap(err, "listing entries")
		}
	}
	rounds := make(map[string]int, len(all))
	for _, t := range all {
		rounds[t.Name] = t.Rounds
	}

	for i := range cats {
		cat := &cats[i]
		switch cat.Key {
		case keyEnter:
			for _, t := range all {
				cat.add(descriptor{Action: Register, Tournament: t.Name, Text: "Apply to play in " + t.Name})
			}
		case keyOrganise:
			for _, t := range organised {
				cat.add(
					descriptor{Action: SetRounds, Tournament: t.Name, Text: "Set the rounds of " + t.Name},
					descriptor{Action: SetMissions, Tournament: t.Name, Text: "Set the missions of " + t.Name},
					descriptor{Action: SetScoreCategories, Tournament: t.Name, Text: "Set the score categories of " + t.Name},
					descriptor{Action: GetTournamentEntries, Tournament: t.Name, Text: "See who entered " + t.Name},
				)
			}
		case keyPlay:
			for _, e := range entries {
				cat.add(
					descriptor{Action: NextGame, Tournament: e.Tournament, Username: e.Username, Text: "Your next game in " + e.Tournament},
					descriptor{Action: EnterGameScore, Tournament: e.Tournament, Username: e.Username, Text: "Enter a game score"},
					descriptor{Action: EnterTournamentScore, Tournament: e.Tournament, Username: e.Username, Text: "Enter a tournament score"},
				)
				for r := 1; r <= rounds[e.Tournament]; r++ {
					cat.add(descriptor{Action: GetDraw, Tournament: e.Tournament, Round: &r, Text: "Draw for round " + strconv.Itoa(r)})
				}
			}
		case keyView:
			for _, t := range all {
				cat.add(
					descriptor{Action: GetRankings, Tournament: t.Name, Text: "Rankings of " + t.Name},
					descriptor{Action: GetTournamentEntries, Tournament: t.Name, Text: "Entries of " + t.Name},
				)
			}
		}
	}

	raw, err := json.Marshal(cats)
	return raw, errors.Wrap(err, "encoding index content")
}

func (cat *category) add(ds ...descriptor) {
	for _, d := range ds {
		cat.Actions = append(cat.Actions, d)
	}
}
