// Package database opens the SQL database configured for the app and migrates it.
package database

import (
	"database/sql"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/trezcool/goose"
	_ "modernc.org/sqlite"

	"github.com/trezcool/tourney/core"
	appfs "github.com/trezcool/tourney/fs"
)

// Engines
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
	Memory   = "memory"
)

var ErrUnsupportedEngine = errors.New("unsupported database engine")

var gooseRunFunc = goose.RunFS // mockable

// dataSource returns the driver name and DSN for conf.
func dataSource(conf *core.Config) (string, string, error) {
	switch conf.Database.Engine {
	case Postgres:
		sslMode := "require"
		if conf.Database.DisableTLS {
			sslMode = "disable"
		}
		q := make(url.Values)
		q.Set("sslmode", sslMode)
		q.Set("timezone", "utc")

		u := url.URL{
			Scheme:   Postgres,
			User:     url.UserPassword(conf.Database.User, conf.Database.Password),
			Host:     conf.Database.Address(),
			Path:     conf.Database.Name,
			RawQuery: q.Encode(),
		}
		return Postgres, u.String(), nil
	case SQLite:
		// database.name is the file path
		return SQLite, "file:" + conf.Database.Name + "?_pragma=foreign_keys(1)", nil
	default:
		return "", "", errors.Wrap(ErrUnsupportedEngine, conf.Database.Engine)
	}
}

// Open connects to the configured SQL database and waits for it to be ready.
func Open(conf *core.Config) (*sqlx.DB, error) {
	driver, dsn, err := dataSource(conf)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if driver == SQLite {
		db.SetMaxOpenConns(1)
	}
	if err = ping(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sql.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}
	return errors.Wrap(err, "DB ping timeout")
}

// Migrate runs the goose command (up, down, status...) with the embedded migrations.
func Migrate(db *sqlx.DB, command string, args ...string) error {
	dialect := db.DriverName()
	if dialect == SQLite {
		dialect = "sqlite3"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return errors.Wrap(err, "setting dialect")
	}
	if err := gooseRunFunc(command, db.DB, appfs.FS, "migrations", args...); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}
