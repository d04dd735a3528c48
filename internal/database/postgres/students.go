package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jvasek/facemark/internal/database"
)

// IdentityRepository provides PostgreSQL-backed identity storage.
type IdentityRepository struct {
	pool *Pool
}

// NewIdentityRepository creates a new PostgreSQL identity repository.
func NewIdentityRepository(pool *Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

// Save stores or replaces an identity keyed by registration number.
func (r *IdentityRepository) Save(ctx context.Context, identity *database.Identity) error {
	query := `
		INSERT INTO students (registration_no, name, email, credential, image_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (registration_no) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			credential = EXCLUDED.credential,
			image_path = EXCLUDED.image_path
	`

	_, err := r.pool.Exec(ctx, query,
		identity.RegistrationNo, identity.Name, identity.Email,
		identity.Credential, identity.ImagePath, identity.CreatedAt)
	if err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

// FindByRegistrationNo returns the identity or database.ErrNotFound.
func (r *IdentityRepository) FindByRegistrationNo(ctx context.Context, regNo string) (*database.Identity, error) {
	query := `
		SELECT registration_no, name, email, credential, image_path, created_at
		FROM students
		WHERE registration_no = $1
	`

	var identity database.Identity
	err := r.pool.QueryRow(ctx, query, regNo).Scan(
		&identity.RegistrationNo,
		&identity.Name,
		&identity.Email,
		&identity.Credential,
		&identity.ImagePath,
		&identity.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return &identity, nil
}

// ExistsByRegistrationNo reports whether the registration number is enrolled.
func (r *IdentityRepository) ExistsByRegistrationNo(ctx context.Context, regNo string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM students WHERE registration_no = $1)", regNo).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check identity exists: %w", err)
	}
	return exists, nil
}

// Delete removes an identity permanently. Returns database.ErrNotFound when
// no row matched.
func (r *IdentityRepository) Delete(ctx context.Context, regNo string) error {
	result, err := r.pool.Exec(ctx, "DELETE FROM students WHERE registration_no = $1", regNo)
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if affected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// FindAll returns all identities ordered by registration number.
func (r *IdentityRepository) FindAll(ctx context.Context) ([]database.Identity, error) {
	query := `
		SELECT registration_no, name, email, credential, image_path, created_at
		FROM students
		ORDER BY registration_no
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query identities: %w", err)
	}
	defer rows.Close()

	var identities []database.Identity
	for rows.Next() {
		var identity database.Identity
		if err := rows.Scan(
			&identity.RegistrationNo,
			&identity.Name,
			&identity.Email,
			&identity.Credential,
			&identity.ImagePath,
			&identity.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return identities, nil
}
