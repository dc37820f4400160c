package database

import (
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Connect opens the database for driver ("sqlite" or "pgx") using the provided DSN.
func Connect(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if driver == "sqlite" {
		// SQLite serialises writers; one connection keeps transactions from seeing SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
	}
	return db, nil
}

// Driver is satisfied by *sqlx.DB and *sqlx.Tx.
type Driver interface {
	DriverName() string
}

// IsPostgres reports whether db talks to PostgreSQL.
func IsPostgres(db Driver) bool {
	return IsPostgresDriver(db.DriverName())
}

// IsPostgresDriver reports whether the driver name is a PostgreSQL driver.
func IsPostgresDriver(name string) bool {
	return name == "pgx" || name == "postgres"
}
