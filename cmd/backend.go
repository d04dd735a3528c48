package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/jvasek/facemark/internal/config"
	"github.com/jvasek/facemark/internal/database"
	"github.com/jvasek/facemark/internal/database/mariadb"
	"github.com/jvasek/facemark/internal/database/postgres"
)

// repositories bundles the database-backed stores a command needs.
type repositories struct {
	identities database.IdentityRepository
	attendance database.AttendanceRepository
	close      func() error
}

// openRepositories connects to the configured database backend, runs
// migrations, and returns the repositories.
func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}

	switch cfg.Database.Driver {
	case "postgres":
		fmt.Println("Connecting to PostgreSQL database...")
		pool, err := postgres.NewPool(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		if err := pool.Migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		return &repositories{
			identities: postgres.NewIdentityRepository(pool),
			attendance: postgres.NewAttendanceRepository(pool),
			close:      pool.Close,
		}, nil
	case "mysql":
		fmt.Println("Connecting to MariaDB database...")
		pool, err := mariadb.NewPool(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MariaDB: %w", err)
		}
		if err := pool.Migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		return &repositories{
			identities: mariadb.NewIdentityRepository(pool),
			attendance: mariadb.NewAttendanceRepository(pool),
			close:      pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q (expected postgres or mysql)", cfg.Database.Driver)
	}
}
