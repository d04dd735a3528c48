// Package mariadb provides MySQL/MariaDB-backed implementations of the
// repository interfaces for deployments that do not run PostgreSQL.
package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/jvasek/facemark/internal/config"
)

// Pool manages a MariaDB connection pool.
type Pool struct {
	db *sql.DB
}

// NewPool creates a new MariaDB connection pool.
func NewPool(cfg *config.DatabaseConfig) (*Pool, error) {
	if cfg.URL == "" {
		return nil, errors.New("MariaDB DSN is required")
	}

	// parseTime is required so timestamp columns scan into time.Time.
	dsn := cfg.URL
	if !strings.Contains(dsn, "parseTime") {
		if strings.Contains(dsn, "?") {
			dsn += "&parseTime=true"
		} else {
			dsn += "?parseTime=true"
		}
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MariaDB: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MariaDB: %w", err)
	}

	return &Pool{db: db}, nil
}

// DB returns the underlying sql.DB for direct access.
func (p *Pool) DB() *sql.DB {
	return p.db
}

// Close closes the connection pool.
func (p *Pool) Close() error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}

// Migrate creates the schema. MariaDB deployments are secondary; the schema
// is applied idempotently instead of through versioned migration files.
func (p *Pool) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS students (
			registration_no VARCHAR(64) PRIMARY KEY,
			name            TEXT NOT NULL,
			email           TEXT NOT NULL,
			credential      TEXT NOT NULL,
			image_path      TEXT NOT NULL,
			created_at      DATETIME(6) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS attendance (
			id              VARCHAR(36) PRIMARY KEY,
			registration_no VARCHAR(64) NOT NULL,
			name            TEXT NOT NULL,
			timestamp       DATETIME(6) NOT NULL,
			INDEX idx_attendance_registration_no (registration_no, timestamp DESC)
		)`,
	}
	for _, stmt := range statements {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
