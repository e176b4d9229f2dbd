package sqlxrepos_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tourney/core/user"
	inmemdb "github.com/trezcool/tourney/storage/database/inmem"
	sqlxrepos "github.com/trezcool/tourney/storage/database/sqlx"
	"github.com/trezcool/tourney/testutil"
)

// userRepos returns every user.Repository implementation, each over an empty database.
func userRepos(t *testing.T) map[string]user.Repository {
	return map[string]user.Repository{
		"sqlx":  sqlxrepos.NewUserRepository(testutil.PrepareDB(t)),
		"inmem": inmemdb.NewUserRepository(inmemdb.Open()),
	}
}

func TestUserRepository_CheckUniqueness(t *testing.T) {
	for name, repo := range userRepos(t) {
		t.Run(name, func(t *testing.T) {
			alice := testutil.CreateUser(t, repo, "1", "alice", "alice@test.cd", "", true)
			testutil.CreateUser(t, repo, "2", "bob", "bob@test.cd", "", true)

			tests := []struct {
				name     string
				username string
				email    string
				excluded []string
				wantErr  error
			}{
				{name: "unique", username: "carol", email: "carol@test.cd"},
				{name: "username taken", username: "alice", email: "carol@test.cd", wantErr: user.ErrUsernameExists},
				{name: "email taken", username: "carol", email: "bob@test.cd", wantErr: user.ErrEmailExists},
				{name: "both taken", username: "alice", email: "bob@test.cd", wantErr: user.ErrUsernameExists},
				{name: "excluded self", username: "alice", email: "alice@test.cd", excluded: []string{alice.ID}},
				{name: "excluded other", username: "alice", email: "bob@test.cd", excluded: []string{alice.ID}, wantErr: user.ErrEmailExists},
			}
			for _, tc := range tests {
				t.Run(tc.name, func(t *testing.T) {
					err := repo.CheckUniqueness(context.Background(), tc.username, tc.email, tc.excluded...)
					assert.Equal(t, tc.wantErr, err)
				})
			}
		})
	}
}

func TestUserRepository_GetUser(t *testing.T) {
	for name, repo := range userRepos(t) {
		t.Run(name, func(t *testing.T) {
			alice := testutil.CreateUser(t, repo, "1", "alice", "alice@test.cd", "password1", true)

			tests := []struct {
				name    string
				filter  user.GetFilter
				wantErr error
			}{
				{name: "by id", filter: user.GetFilter{ID: alice.ID}},
				{name: "by username", filter: user.GetFilter{UsernameOrEmail: []string{"alice"}}},
				{name: "by email", filter: user.GetFilter{UsernameOrEmail: []string{"alice@test.cd"}}},
				{name: "by username or email", filter: user.GetFilter{UsernameOrEmail: []string{"nobody", "alice@test.cd"}}},
				{name: "unknown id", filter: user.GetFilter{ID: "42"}, wantErr: user.ErrNotFound},
				{name: "unknown username", filter: user.GetFilter{UsernameOrEmail: []string{"bob"}}, wantErr: user.ErrNotFound},
				{name: "empty filter", wantErr: user.ErrNotFound},
			}
			for _, tc := range tests {
				t.Run(tc.name, func(t *testing.T) {
					got, err := repo.GetUser(context.Background(), tc.filter)
					if tc.wantErr != nil {
						assert.Equal(t, tc.wantErr, err)
						return
					}
					require.NoError(t, err)
					assert.Equal(t, alice, got)
					assert.NoError(t, got.CheckPassword("password1"))
				})
			}
		})
	}
}

func TestUserRepository_UpdateUser(t *testing.T) {
	for name, repo := range userRepos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			alice := testutil.CreateUser(t, repo, "1", "alice", "alice@test.cd", "password1", true)

			alice.IsActive = false
			alice.IsAdmin = true
			require.NoError(t, alice.SetPassword("password2"))
			_, err := repo.UpdateUser(ctx, alice)
			require.NoError(t, err)

			got, err := repo.GetUser(ctx, user.GetFilter{ID: alice.ID})
			require.NoError(t, err)
			assert.False(t, got.IsActive)
			assert.True(t, got.IsAdmin)
			assert.NoError(t, got.CheckPassword("password2"))

			_, err = repo.UpdateUser(ctx, user.User{ID: "42"})
			assert.Equal(t, user.ErrNotFound, err)
		})
	}
}
