// Package testutil holds the helpers shared by the tests: an in-memory SQL database and fixtures.
package testutil

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/trezcool/tourney/core/tournament"
	"github.com/trezcool/tourney/core/user"
)

const schema = `
CREATE TABLE users (
    id            TEXT PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    email         TEXT NOT NULL UNIQUE,
    is_active     BOOLEAN NOT NULL DEFAULT TRUE,
    is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
    password_hash TEXT NOT NULL
);
CREATE TABLE tournaments (
    name    TEXT PRIMARY KEY,
    date    TEXT NOT NULL,
    creator TEXT NOT NULL DEFAULT '',
    rounds  INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE tournament_entries (
    tournament TEXT NOT NULL REFERENCES tournaments (name) ON DELETE CASCADE,
    username   TEXT NOT NULL,
    PRIMARY KEY (tournament, username)
);
CREATE TABLE tournament_missions (
    tournament TEXT NOT NULL REFERENCES tournaments (name) ON DELETE CASCADE,
    round      INTEGER NOT NULL CHECK (round > 0),
    mission    TEXT NOT NULL DEFAULT 'TBA',
    PRIMARY KEY (tournament, round)
);
CREATE TABLE score_categories (
    tournament     TEXT NOT NULL REFERENCES tournaments (name) ON DELETE CASCADE,
    position       INTEGER NOT NULL,
    name           TEXT NOT NULL,
    percentage     INTEGER NOT NULL CHECK (percentage BETWEEN 1 AND 100),
    per_tournament BOOLEAN NOT NULL DEFAULT FALSE,
    min_val        INTEGER NOT NULL DEFAULT 0,
    max_val        INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (tournament, name)
);
`

// PrepareDB returns a fresh in-memory sqlite database with the app schema, closed at the end of
// the test.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	// every connection would get its own in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err = db.Exec(schema); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

func CreateUser(t *testing.T, repo user.Repository, id, uname, email, pwd string, isActive bool) user.User {
	t.Helper()

	usr := user.User{
		ID:       id,
		Username: uname,
		Email:    email,
		IsActive: isActive,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateTournament(t *testing.T, repo tournament.Repository, name, date, creator string, rounds int) tournament.Tournament {
	t.Helper()

	tnmt, err := repo.CreateTournament(context.Background(), tournament.Tournament{
		Name:    name,
		Date:    date,
		Creator: creator,
		Rounds:  rounds,
	})
	if err != nil {
		t.Fatalf("CreateTournament() failed: %v", err)
	}
	return tnmt
}

func CreateEntry(t *testing.T, repo tournament.Repository, tnmt, uname string) {
	t.Helper()

	if err := repo.CreateEntry(context.Background(), tournament.Entry{Tournament: tnmt, Username: uname}); err != nil {
		t.Fatalf("CreateEntry() failed: %v", err)
	}
}
