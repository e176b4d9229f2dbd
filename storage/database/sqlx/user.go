// Package sqlxrepos implements the domain repositories over a SQL database with sqlx.
// Queries are written with `?` placeholders and rebound for the driver in use.
package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/tourney/core/user"
)

const userColumns = "id, username, email, is_active, is_admin, password_hash"

// userRow is the users table row; the password hash is stored as text.
type userRow struct {
	ID           string `db:"id"`
	Username     string `db:"username"`
	Email        string `db:"email"`
	IsActive     bool   `db:"is_active"`
	IsAdmin      bool   `db:"is_admin"`
	PasswordHash string `db:"password_hash"`
}

func newUserRow(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Username:     usr.Username,
		Email:        usr.Email,
		IsActive:     usr.IsActive,
		IsAdmin:      usr.IsAdmin,
		PasswordHash: string(usr.PasswordHash),
	}
}

func (r userRow) toUser() user.User {
	return user.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		IsActive:     r.IsActive,
		IsAdmin:      r.IsAdmin,
		PasswordHash: []byte(r.PasswordHash),
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUniqueness(ctx context.Context, username, email string, excludedIDs ...string) error {
	q := "SELECT username, email FROM users WHERE (username = ? OR email = ?)"
	args := []interface{}{username, email}
	if len(excludedIDs) > 0 {
		q += " AND id NOT IN (?)"
		args = append(args, excludedIDs)
	}
	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return errors.Wrap(err, "building query")
	}

	var rows []userRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return wrap(err, "selecting users")
	}
	for _, r := range rows {
		if r.Username == username {
			return user.ErrUsernameExists
		}
	}
	if len(rows) > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `INSERT INTO users (id, username, email, is_active, is_admin, password_hash)
	VALUES (:id, :username, :email, :is_active, :is_admin, :password_hash)`
	if _, err := repo.db.NamedExecContext(ctx, q, newUserRow(usr)); err != nil {
		return user.User{}, wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var (
		q    string
		args []interface{}
		err  error
	)
	switch {
	case filter.ID != "":
		q, args = "SELECT "+userColumns+" FROM users WHERE id = ?", []interface{}{filter.ID}
	case len(filter.UsernameOrEmail) > 0:
		q, args, err = sqlx.In(
			"SELECT "+userColumns+" FROM users WHERE username IN (?) OR email IN (?) ORDER BY username LIMIT 1",
			filter.UsernameOrEmail, filter.UsernameOrEmail,
		)
		if err != nil {
			return user.User{}, errors.Wrap(err, "building query")
		}
	default:
		return user.User{}, user.ErrNotFound
	}

	var r userRow
	if err = repo.db.GetContext(ctx, &r, repo.db.Rebind(q), args...); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, wrap(err, "selecting user")
	}
	return r.toUser(), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `UPDATE users
	SET username = :username, email = :email, is_active = :is_active, is_admin = :is_admin, password_hash = :password_hash
	WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, newUserRow(usr))
	if err != nil {
		return user.User{}, wrap(err, "updating user")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return user.User{}, wrap(err, "updating user")
	}
	if n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}
