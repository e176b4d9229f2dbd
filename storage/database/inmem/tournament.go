package inmemdb

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/tourney/core/tournament"
)

type tournamentRepository struct {
	db *tournamentTable
}

var _ tournament.Repository = (*tournamentRepository)(nil)

func NewTournamentRepository(db *DB) tournament.Repository {
	return &tournamentRepository{db: db.tournament}
}

func (repo *tournamentRepository) CreateTournament(_ context.Context, t tournament.Tournament) (tournament.Tournament, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[t.Name]; ok {
		return tournament.Tournament{}, tournament.ErrNameExists
	}
	repo.db.table[t.Name] = &t
	return t, nil
}

func (repo *tournamentRepository) GetTournament(_ context.Context, name string) (tournament.Tournament, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if t, ok := repo.db.table[name]; ok {
		return *t, nil
	}
	return tournament.Tournament{}, tournament.ErrNotFound
}

func (repo *tournamentRepository) QueryTournaments(context.Context) ([]tournament.Tournament, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	ts := make([]tournament.Tournament, 0, len(repo.db.table))
	for _, t := range repo.db.table {
		ts = append(ts, *t)
	}
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Date != ts[j].Date {
			return ts[i].Date < ts[j].Date
		}
		return ts[i].Name < ts[j].Name
	})
	return ts, nil
}

func (repo *tournamentRepository) CreateEntry(_ context.Context, e tournament.Entry) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[e.Tournament]; !ok {
		return tournament.ErrNotFound
	}
	if _, ok := repo.db.entries[e]; ok {
		return errors.Errorf("%s already entered %s", e.Username, e.Tournament)
	}
	repo.db.entries[e] = struct{}{}
	return nil
}

func (repo *tournamentRepository) QueryEntries(_ context.Context, filter tournament.Entry) ([]tournament.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	entries := make([]tournament.Entry, 0)
	for e := range repo.db.entries {
		if filter.Tournament != "" && e.Tournament != filter.Tournament {
			continue
		}
		if filter.Username != "" && e.Username != filter.Username {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Tournament != entries[j].Tournament {
			return entries[i].Tournament < entries[j].Tournament
		}
		return entries[i].Username < entries[j].Username
	})
	return entries, nil
}

func (repo *tournamentRepository) UpdateRounds(_ context.Context, name string, rounds int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	t, ok := repo.db.table[name]
	if !ok {
		return tournament.ErrNotFound
	}
	t.Rounds = rounds

	kept := make([]tournament.Mission, 0, len(repo.db.missions[name]))
	for _, m := range repo.db.missions[name] {
		if m.Round <= rounds {
			kept = append(kept, m)
		}
	}
	repo.db.missions[name] = kept
	return nil
}

func (repo *tournamentRepository) QueryMissions(_ context.Context, name string) ([]tournament.Mission, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	missions := append(make([]tournament.Mission, 0, len(repo.db.missions[name])), repo.db.missions[name]...)
	sort.Slice(missions, func(i, j int) bool { return missions[i].Round < missions[j].Round })
	return missions, nil
}

func (repo *tournamentRepository) ReplaceMissions(_ context.Context, name string, missions []tournament.Mission) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[name]; !ok {
		return tournament.ErrNotFound
	}
	repo.db.missions[name] = append([]tournament.Mission(nil), missions...)
	return nil
}

func (repo *tournamentRepository) QueryScoreCategories(_ context.Context, name string) ([]tournament.ScoreCategory, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	cats := append(make([]tournament.ScoreCategory, 0, len(repo.db.categories[name])), repo.db.categories[name]...)
	sort.Slice(cats, func(i, j int) bool { return cats[i].Position < cats[j].Position })
	return cats, nil
}

func (repo *tournamentRepository) ReplaceScoreCategories(_ context.Context, name string, cats []tournament.ScoreCategory) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[name]; !ok {
		return tournament.ErrNotFound
	}
	seen := make(map[string]bool, len(cats))
	for _, cat := range cats {
		if seen[cat.Name] {
			return errors.Errorf("duplicate score category %s", cat.Name)
		}
		seen[cat.Name] = true
	}
	repo.db.categories[name] = append([]tournament.ScoreCategory(nil), cats...)
	return nil
}
