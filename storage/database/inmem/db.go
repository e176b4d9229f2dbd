// Package inmemdb implements the domain repositories in memory, for tests and the "memory" engine.
package inmemdb

import (
	"sync"

	"github.com/trezcool/tourney/core/tournament"
	"github.com/trezcool/tourney/core/user"
)

type (
	DB struct {
		user       *userTable
		tournament *tournamentTable
	}

	userTable struct {
		table map[string]*user.User // {id: User}
		mutex sync.RWMutex
	}

	tournamentTable struct {
		table      map[string]*tournament.Tournament // {name: Tournament}
		entries    map[tournament.Entry]struct{}
		missions   map[string][]tournament.Mission       // {name: missions}
		categories map[string][]tournament.ScoreCategory // {name: categories}
		mutex      sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		user: &userTable{table: make(map[string]*user.User)},
		tournament: &tournamentTable{
			table:      make(map[string]*tournament.Tournament),
			entries:    make(map[tournament.Entry]struct{}),
			missions:   make(map[string][]tournament.Mission),
			categories: make(map[string][]tournament.ScoreCategory),
		},
	}
}
