package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/tourney/core/tournament"
)

type tournamentRepository struct {
	db *sqlx.DB
}

var _ tournament.Repository = (*tournamentRepository)(nil)

func NewTournamentRepository(db *sqlx.DB) tournament.Repository {
	return &tournamentRepository{db: db}
}

func (repo *tournamentRepository) CreateTournament(ctx context.Context, t tournament.Tournament) (tournament.Tournament, error) {
	q := "INSERT INTO tournaments (name, date, creator, rounds) VALUES (:name, :date, :creator, :rounds)"
	if _, err := repo.db.NamedExecContext(ctx, q, t); err != nil {
		if isUniqueViolation(err) {
			return tournament.Tournament{}, tournament.ErrNameExists
		}
		return tournament.Tournament{}, wrap(err, "inserting tournament")
	}
	return t, nil
}

func (repo *tournamentRepository) GetTournament(ctx context.Context, name string) (tournament.Tournament, error) {
	var t tournament.Tournament
	q := repo.db.Rebind("SELECT name, date, creator, rounds FROM tournaments WHERE name = ?")
	if err := repo.db.GetContext(ctx, &t, q, name); err != nil {
		if err == sql.ErrNoRows {
			return tournament.Tournament{}, tournament.ErrNotFound
		}
		return tournament.Tournament{}, wrap(err, "selecting tournament")
	}
	return t, nil
}

func (repo *tournamentRepository) QueryTournaments(ctx context.Context) ([]tournament.Tournament, error) {
	ts := make([]tournament.Tournament, 0)
	q := "SELECT name, date, creator, rounds FROM tournaments ORDER BY date, name"
	if err := repo.db.SelectContext(ctx, &ts, q); err != nil {
		return nil, wrap(err, "selecting tournaments")
	}
	return ts, nil
}

func (repo *tournamentRepository) CreateEntry(ctx context.Context, e tournament.Entry) error {
	q := "INSERT INTO tournament_entries (tournament, username) VALUES (:tournament, :username)"
	_, err := repo.db.NamedExecContext(ctx, q, e)
	return wrap(err, "inserting entry")
}

func (repo *tournamentRepository) QueryEntries(ctx context.Context, filter tournament.Entry) ([]tournament.Entry, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Tournament != "" {
		where = append(where, "tournament = ?")
		args = append(args, filter.Tournament)
	}
	if filter.Username != "" {
		where = append(where, "username = ?")
		args = append(args, filter.Username)
	}
	q := "SELECT tournament, username FROM tournament_entries"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY tournament, username"

	entries := make([]tournament.Entry, 0)
	if err := repo.db.SelectContext(ctx, &entries, repo.db.Rebind(q), args...); err != nil {
		return nil, wrap(err, "selecting entries")
	}
	return entries, nil
}

func (repo *tournamentRepository) UpdateRounds(ctx context.Context, name string, rounds int) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, tx.Rebind("UPDATE tournaments SET rounds = ? WHERE name = ?"), rounds, name)
	if err != nil {
		return wrap(err, "updating rounds")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(err, "counting updated tournaments")
	}
	if n == 0 {
		return tournament.ErrNotFound
	}
	q := tx.Rebind("DELETE FROM tournament_missions WHERE tournament = ? AND round > ?")
	if _, err = tx.ExecContext(ctx, q, name, rounds); err != nil {
		return wrap(err, "deleting missions")
	}
	return wrap(tx.Commit(), "committing rounds")
}

func (repo *tournamentRepository) QueryMissions(ctx context.Context, name string) ([]tournament.Mission, error) {
	missions := make([]tournament.Mission, 0)
	q := repo.db.Rebind("SELECT tournament, round, mission FROM tournament_missions WHERE tournament = ? ORDER BY round")
	if err := repo.db.SelectContext(ctx, &missions, q, name); err != nil {
		return nil, wrap(err, "selecting missions")
	}
	return missions, nil
}

func (repo *tournamentRepository) ReplaceMissions(ctx context.Context, name string, missions []tournament.Mission) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if err = deleteTournamentRows(ctx, tx, "tournament_missions", name); err != nil {
		return err
	}
	q := "INSERT INTO tournament_missions (tournament, round, mission) VALUES (:tournament, :round, :mission)"
	for _, m := range missions {
		if _, err = tx.NamedExecContext(ctx, q, m); err != nil {
			return wrap(err, "inserting mission")
		}
	}
	return wrap(tx.Commit(), "committing missions")
}

func (repo *tournamentRepository) QueryScoreCategories(ctx context.Context, name string) ([]tournament.ScoreCategory, error) {
	cats := make([]tournament.ScoreCategory, 0)
	q := repo.db.Rebind(`SELECT tournament, position, name, percentage, per_tournament, min_val, max_val
	FROM score_categories WHERE tournament = ? ORDER BY position`)
	if err := repo.db.SelectContext(ctx, &cats, q, name); err != nil {
		return nil, wrap(err, "selecting score categories")
	}
	return cats, nil
}

func (repo *tournamentRepository) ReplaceScoreCategories(ctx context.Context, name string, cats []tournament.ScoreCategory) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if err = deleteTournamentRows(ctx, tx, "score_categories", name); err != nil {
		return err
	}
	q := `INSERT INTO score_categories (tournament, position, name, percentage, per_tournament, min_val, max_val)
	VALUES (:tournament, :position, :name, :percentage, :per_tournament, :min_val, :max_val)`
	for _, cat := range cats {
		if _, err = tx.NamedExecContext(ctx, q, cat); err != nil {
			return wrap(err, "inserting score category")
		}
	}
	return wrap(tx.Commit(), "committing score categories")
}

// deleteTournamentRows empties table of the rows of the tournament, which must exist.
func deleteTournamentRows(ctx context.Context, tx *sqlx.Tx, table, name string) error {
	var n int
	if err := tx.GetContext(ctx, &n, tx.Rebind("SELECT COUNT(*) FROM tournaments WHERE name = ?"), name); err != nil {
		return wrap(err, "counting tournaments")
	}
	if n == 0 {
		return tournament.ErrNotFound
	}
	_, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM "+table+" WHERE tournament = ?"), name)
	return wrap(err, "deleting from "+table)
}
