package sqlxrepos_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tourney/core"
	"github.com/trezcool/tourney/core/tournament"
	inmemdb "github.com/trezcool/tourney/storage/database/inmem"
	sqlxrepos "github.com/trezcool/tourney/storage/database/sqlx"
	"github.com/trezcool/tourney/testutil"
)

func tournamentRepos(t *testing.T) map[string]tournament.Repository {
	return map[string]tournament.Repository{
		"sqlx":  sqlxrepos.NewTournamentRepository(testutil.PrepareDB(t)),
		"inmem": inmemdb.NewTournamentRepository(inmemdb.Open()),
	}
}

func TestTournamentRepository_tournaments(t *testing.T) {
	for name, repo := range tournamentRepos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			spring := testutil.CreateTournament(t, repo, "spring", "2030-04-01", "alice", 3)
			winter := testutil.CreateTournament(t, repo, "winter", "2030-01-01", "bob", 0)
			autumn := testutil.CreateTournament(t, repo, "autumn", "2030-04-01", "", 5)

			got, err := repo.GetTournament(ctx, "spring")
			require.NoError(t, err)
			assert.Equal(t, spring, got)

			_, err = repo.GetTournament(ctx, "summer")
			assert.Equal(t, tournament.ErrNotFound, err)

			all, err := repo.QueryTournaments(ctx)
			require.NoError(t, err)
			assert.Equal(t, []tournament.Tournament{winter, autumn, spring}, all)

			_, err = repo.CreateTournament(ctx, tournament.Tournament{Name: "spring", Date: "2031-01-01"})
			assert.Equal(t, tournament.ErrNameExists, err)
		})
	}
}

func TestTournamentRepository_QueryEntries(t *testing.T) {
	for name, repo := range tournamentRepos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			testutil.CreateTournament(t, repo, "spring", "2030-04-01", "", 0)
			testutil.CreateTournament(t, repo, "winter", "2030-01-01", "", 0)
			testutil.CreateEntry(t, repo, "spring", "bob")
			testutil.CreateEntry(t, repo, "spring", "alice")
			testutil.CreateEntry(t, repo, "winter", "alice")

			assert.Error(t, repo.CreateEntry(ctx, tournament.Entry{Tournament: "spring", Username: "bob"}))

			tests := []struct {
				name   string
				filter tournament.Entry
				want   []tournament.Entry
			}{
				{
					name: "all",
					want: []tournament.Entry{
						{Tournament: "spring", Username: "alice"},
						{Tournament: "spring", Username: "bob"},
						{Tournament: "winter", Username: "alice"},
					},
				},
				{
					name:   "by tournament",
					filter: tournament.Entry{Tournament: "spring"},
					want: []tournament.Entry{
						{Tournament: "spring", Username: "alice"},
						{Tournament: "spring", Username: "bob"},
					},
				},
				{
					name:   "by username",
					filter: tournament.Entry{Username: "alice"},
					want: []tournament.Entry{
						{Tournament: "spring", Username: "alice"},
						{Tournament: "winter", Username: "alice"},
					},
				},
				{
					name:   "exact",
					filter: tournament.Entry{Tournament: "winter", Username: "bob"},
					want:   []tournament.Entry{},
				},
			}
			for _, tc := range tests {
				t.Run(tc.name, func(t *testing.T) {
					got, err := repo.QueryEntries(ctx, tc.filter)
					require.NoError(t, err)
					assert.Equal(t, tc.want, got)
				})
			}
		})
	}
}

func TestTournamentRepository_closedDatabase(t *testing.T) {
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewTournamentRepository(db)
	require.NoError(t, db.Close())

	_, err := repo.QueryTournaments(context.Background())
	assert.True(t, core.IsShutdown(err), "err = %v", err)
	assert.EqualError(t, err, "selecting tournaments: sql: database is closed")
}

func TestTournamentRepository_missions(t *testing.T) {
	for name, repo := range tournamentRepos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			testutil.CreateTournament(t, repo, "spring", "2030-04-01", "alice", 3)
			testutil.CreateTournament(t, repo, "winter", "2030-01-01", "bob", 1)

			got, err := repo.QueryMissions(ctx, "spring")
			require.NoError(t, err)
			assert.Empty(t, got)

			missions := []tournament.Mission{
				{Tournament: "spring", Round: 2, Mission: "Relic"},
				{Tournament: "spring", Round: 1, Mission: "Scorched Earth"},
				{Tournament: "spring", Round: 3, Mission: "TBA"},
			}
			require.NoError(t, repo.ReplaceMissions(ctx, "spring", missions))
			require.NoError(t, repo.ReplaceMissions(ctx, "winter", []tournament.Mission{{Tournament: "winter", Round: 1, Mission: "Ambush"}}))

			got, err = repo.QueryMissions(ctx, "spring")
			require.NoError(t, err)
			assert.Equal(t, []tournament.Mission{missions[1], missions[0], missions[2]}, got)

			require.NoError(t, repo.ReplaceMissions(ctx, "spring", missions[:1]))
			got, err = repo.QueryMissions(ctx, "spring")
			require.NoError(t, err)
			assert.Equal(t, missions[:1], got)

			assert.Equal(t, tournament.ErrNotFound, repo.ReplaceMissions(ctx, "summer", nil))

			require.NoError(t, repo.ReplaceMissions(ctx, "spring", missions))
			require.NoError(t, repo.UpdateRounds(ctx, "spring", 1))
			spring, err := repo.GetTournament(ctx, "spring")
			require.NoError(t, err)
			assert.Equal(t, 1, spring.Rounds)
			got, err = repo.QueryMissions(ctx, "spring")
			require.NoError(t, err)
			assert.Equal(t, []tournament.Mission{missions[1]}, got)

			got, err = repo.QueryMissions(ctx, "winter")
			require.NoError(t, err)
			assert.Len(t, got, 1)

			assert.Equal(t, tournament.ErrNotFound, repo.UpdateRounds(ctx, "summer", 2))
		})
	}
}

func TestTournamentRepository_scoreCategories(t *testing.T) {
	for name, repo := range tournamentRepos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			testutil.CreateTournament(t, repo, "spring", "2030-04-01", "alice", 3)

			got, err := repo.QueryScoreCategories(ctx, "spring")
			require.NoError(t, err)
			assert.Empty(t, got)

			cats := []tournament.ScoreCategory{
				{Tournament: "spring", Position: 0, Name: "battle", Percentage: 60, MaxVal: 20},
				{Tournament: "spring", Position: 1, Name: "painting", Percentage: 20, PerTournament: true, MinVal: 1, MaxVal: 10},
				{Tournament: "spring", Position: 2, Name: "sports", Percentage: 20, PerTournament: true, MaxVal: 5},
			}
			require.NoError(t, repo.ReplaceScoreCategories(ctx, "spring", cats))
			got, err = repo.QueryScoreCategories(ctx, "spring")
			require.NoError(t, err)
			assert.Equal(t, cats, got)

			require.NoError(t, repo.ReplaceScoreCategories(ctx, "spring", cats[1:2]))
			got, err = repo.QueryScoreCategories(ctx, "spring")
			require.NoError(t, err)
			assert.Equal(t, cats[1:2], got)

			dup := []tournament.ScoreCategory{cats[0], {Tournament: "spring", Position: 1, Name: "battle", Percentage: 10}}
			assert.Error(t, repo.ReplaceScoreCategories(ctx, "spring", dup))
			got, err = repo.QueryScoreCategories(ctx, "spring")
			require.NoError(t, err)
			assert.Equal(t, cats[1:2], got, "a failed replacement keeps the previous categories")

			assert.Equal(t, tournament.ErrNotFound, repo.ReplaceScoreCategories(ctx, "summer", cats))
		})
	}
}
