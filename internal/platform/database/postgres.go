package database

import (
	"database/sql"
	"fmt"
	"time"

	"overmind/internal/platform/config"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
)

// Connect opens the connection pool and verifies it. The handle is owned by
// the caller and passed explicitly to repositories; there is no package-level
// client.
func Connect(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DBConnStr)
	if err != nil {
		return nil, fmt.Errorf("database.Connect open: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database.Connect ping: %w", err)
	}

	return db, nil
}
