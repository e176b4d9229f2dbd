package tournament

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/tourney/core"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrNotFound     = errors.New("tournament not found")
	ErrNameExists   = errors.New("a tournament with this name already exists")
	ErrNotOrganiser = errors.New("only the organiser can change this tournament")

	errInvalidDate = errors.New("Enter a valid date")
)

type (
	Repository interface {
		CreateTournament(ctx context.Context, t Tournament) (Tournament, error)
		GetTournament(ctx context.Context, name string) (Tournament, error)
		QueryTournaments(ctx context.Context) ([]Tournament, error)
		CreateEntry(ctx context.Context, e Entry) error
		// QueryEntries returns the entries matching the non-empty fields of filter.
		QueryEntries(ctx context.Context, filter Entry) ([]Entry, error)
		// UpdateRounds sets the number of rounds, dropping the missions of the rounds past it.
		UpdateRounds(ctx context.Context, name string, rounds int) error
		QueryMissions(ctx context.Context, name string) ([]Mission, error)
		ReplaceMissions(ctx context.Context, name string, missions []Mission) error
		QueryScoreCategories(ctx context.Context, name string) ([]ScoreCategory, error)
		ReplaceScoreCategories(ctx context.Context, name string, cats []ScoreCategory) error
	}

	ServiceInterface interface {
		CheckUniqueness(name string) error
		Create(ctx context.Context, nt NewTournament, creator string) (Tournament, error)
		List(ctx context.Context) ([]Tournament, error)
		Get(ctx context.Context, name string) (Tournament, error)
		Details(ctx context.Context, name string) (Details, error)
		Register(ctx context.Context, name, username string) error
		Entries(ctx context.Context, name string) ([]string, error)
		EntriesFor(ctx context.Context, username string) ([]Entry, error)
		CreatedBy(ctx context.Context, username string) ([]Tournament, error)
		SetRounds(ctx context.Context, name, organiser string, ru RoundsUpdate) (Tournament, error)
		Missions(ctx context.Context, name string) ([]string, error)
		SetMissions(ctx context.Context, name, organiser string, mu MissionsUpdate) error
		ScoreCategories(ctx context.Context, name string) ([]ScoreCategory, error)
		SetScoreCategories(ctx context.Context, name, organiser string, cu CategoriesUpdate) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckUniqueness(name string) error {
	_, err := svc.repo.GetTournament(context.Background(), name)
	switch errors.Cause(err) {
	case ErrNotFound:
		return nil
	case nil:
		msg := fmt.Sprintf("A tournament with name %s already exists! Please choose another name", name)
		return core.NewValidationError(ErrNameExists, core.FieldError{Field: "inputTournamentName", Error: msg})
	default:
		return errors.Wrap(err, "getting tournament")
	}
}

func (svc *Service) Create(ctx context.Context, nt NewTournament, creator string) (Tournament, error) {
	t := Tournament{
		Name:    nt.Name,
		Date:    nt.Date,
		Creator: creator,
		Rounds:  nt.Rounds,
	}
	t, err := svc.repo.CreateTournament(ctx, t)
	return t, errors.Wrap(err, "creating tournament")
}

func (svc *Service) List(ctx context.Context) ([]Tournament, error) {
	ts, err := svc.repo.QueryTournaments(ctx)
	return ts, errors.Wrap(err, "querying tournaments")
}

func (svc *Service) Get(ctx context.Context, name string) (Tournament, error) {
	return svc.repo.GetTournament(ctx, core.CleanString(name))
}

func (svc *Service) Details(ctx context.Context, name string) (Details, error) {
	t, err := svc.Get(ctx, name)
	if err != nil {
		return Details{}, err
	}
	entries, err := svc.repo.QueryEntries(ctx, Entry{Tournament: t.Name})
	if err != nil {
		return Details{}, errors.Wrap(err, "querying entries")
	}
	return Details{Name: t.Name, Date: t.Date, Entries: len(entries)}, nil
}

// Register enters username in the tournament. A user can only enter a tournament once.
func (svc *Service) Register(ctx context.Context, name, username string) error {
	t, err := svc.Get(ctx, name)
	if err != nil {
		return err
	}
	entry := Entry{Tournament: t.Name, Username: username}

	existing, err := svc.repo.QueryEntries(ctx, entry)
	if err != nil {
		return errors.Wrap(err, "querying entries")
	}
	if len(existing) > 0 {
		return core.NewValidationError(fmt.Errorf("%s is already registered for %s", username, t.Name))
	}
	return errors.Wrap(svc.repo.CreateEntry(ctx, entry), "creating entry")
}

// Entries returns the usernames of the players entered in the tournament.
func (svc *Service) Entries(ctx context.Context, name string) ([]string, error) {
	t, err := svc.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	entries, err := svc.repo.QueryEntries(ctx, Entry{Tournament: t.Name})
	if err != nil {
		return nil, errors.Wrap(err, "querying entries")
	}
	unames := make([]string, 0, len(entries))
	for _, e := range entries {
		unames = append(unames, e.Username)
	}
	return unames, nil
}

func (svc *Service) EntriesFor(ctx context.Context, username string) ([]Entry, error) {
	if username == "" {
		return nil, nil
	}
	entries, err := svc.repo.QueryEntries(ctx, Entry{Username: username})
	return entries, errors.Wrap(err, "querying entries")
}

// CreatedBy returns the tournaments organised by username.
func (svc *Service) CreatedBy(ctx context.Context, username string) ([]Tournament, error) {
	all, err := svc.List(ctx)
	if err != nil {
		return nil, err
	}
	ts := make([]Tournament, 0)
	for _, t := range all {
		if username != "" && t.Creator == username {
			ts = append(ts, t)
		}
	}
	return ts, nil
}

// organised returns the tournament if username organises it.
func (svc *Service) organised(ctx context.Context, name, username string) (Tournament, error) {
	t, err := svc.Get(ctx, name)
	if err != nil {
		return Tournament{}, err
	}
	if username == "" || t.Creator != username {
		return Tournament{}, ErrNotOrganiser
	}
	return t, nil
}

// SetRounds changes the number of rounds of the tournament. Missions of the rounds dropped are lost.
func (svc *Service) SetRounds(ctx context.Context, name, organiser string, ru RoundsUpdate) (Tournament, error) {
	t, err := svc.organised(ctx, name, organiser)
	if err != nil {
		return Tournament{}, err
	}
	if err = svc.repo.UpdateRounds(ctx, t.Name, ru.Rounds); err != nil {
		return Tournament{}, errors.Wrap(err, "updating rounds")
	}
	t.Rounds = ru.Rounds
	return t, nil
}

// Missions returns the mission of every round of the tournament, in round order.
func (svc *Service) Missions(ctx context.Context, name string) ([]string, error) {
	t, err := svc.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	stored, err := svc.repo.QueryMissions(ctx, t.Name)
	if err != nil {
		return nil, errors.Wrap(err, "querying missions")
	}
	missions := make([]string, t.Rounds)
	for i := range missions {
		missions[i] = DefaultMission
	}
	for _, m := range stored {
		if m.Round >= 1 && m.Round <= t.Rounds {
			missions[m.Round-1] = m.Mission
		}
	}
	return missions, nil
}

// SetMissions sets the mission of every round. There must be exactly one mission per round.
func (svc *Service) SetMissions(ctx context.Context, name, organiser string, mu MissionsUpdate) error {
	t, err := svc.organised(ctx, name, organiser)
	if err != nil {
		return err
	}
	if len(mu.Missions) != t.Rounds {
		return core.NewValidationError(fmt.Errorf(
			"Tournament %s has %d rounds. You submitted missions %s", t.Name, t.Rounds, MissionsText(mu.Missions),
		))
	}

	missions := make([]Mission, 0, len(mu.Missions))
	for i, m := range mu.Missions {
		if m == "" {
			m = DefaultMission
		}
		missions = append(missions, Mission{Tournament: t.Name, Round: i + 1, Mission: m})
	}
	return errors.Wrap(svc.repo.ReplaceMissions(ctx, t.Name, missions), "replacing missions")
}

// MissionsText renders missions the way they are echoed back to the organiser.
func MissionsText(missions []string) string {
	return "[" + strings.Join(missions, ", ") + "]"
}

func (svc *Service) ScoreCategories(ctx context.Context, name string) ([]ScoreCategory, error) {
	t, err := svc.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	cats, err := svc.repo.QueryScoreCategories(ctx, t.Name)
	return cats, errors.Wrap(err, "querying score categories")
}

// SetScoreCategories replaces all the score categories of the tournament, keeping their order.
func (svc *Service) SetScoreCategories(ctx context.Context, name, organiser string, cu CategoriesUpdate) error {
	t, err := svc.organised(ctx, name, organiser)
	if err != nil {
		return err
	}
	cats := make([]ScoreCategory, 0, len(cu.Categories))
	for i, cat := range cu.Categories {
		cat.Tournament = t.Name
		cat.Position = i
		cats = append(cats, cat)
	}
	return errors.Wrap(svc.repo.ReplaceScoreCategories(ctx, t.Name, cats), "replacing score categories")
}

// CategoryNames joins the names of cats, as confirmed to the organiser.
func CategoryNames(cats []ScoreCategory) string {
	names := make([]string, 0, len(cats))
	for _, cat := range cats {
		names = append(names, cat.Name)
	}
	return strings.Join(names, ", ")
}
