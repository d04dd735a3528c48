package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jvasek/facemark/internal/database"
)

// IdentityRepository provides MariaDB-backed identity storage.
type IdentityRepository struct {
	pool *Pool
}

// NewIdentityRepository creates a new MariaDB identity repository.
func NewIdentityRepository(pool *Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

// Save stores or replaces an identity keyed by registration number.
func (r *IdentityRepository) Save(ctx context.Context, identity *database.Identity) error {
	query := `
		INSERT INTO students (registration_no, name, email, credential, image_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			email = VALUES(email),
			credential = VALUES(credential),
			image_path = VALUES(image_path)
	`

	_, err := r.pool.db.ExecContext(ctx, query,
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
		WHERE registration_no = ?
	`

	var identity database.Identity
	err := r.pool.db.QueryRowContext(ctx, query, regNo).Scan(
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
	err := r.pool.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM students WHERE registration_no = ?)", regNo).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check identity exists: %w", err)
	}
	return exists, nil
}

// Delete removes an identity permanently. Returns database.ErrNotFound when
// no row matched.
func (r *IdentityRepository) Delete(ctx context.Context, regNo string) error {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM students WHERE registration_no = ?", regNo)
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

	rows, err := r.pool.db.QueryContext(ctx, query)
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

// AttendanceRepository provides MariaDB-backed storage for the attendance log.
type AttendanceRepository struct {
	pool *Pool
}

// NewAttendanceRepository creates a new MariaDB attendance repository.
func NewAttendanceRepository(pool *Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// Save appends a record. Records are never updated after insertion.
func (r *AttendanceRepository) Save(ctx context.Context, record *database.AttendanceRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	_, err := r.pool.db.ExecContext(ctx,
		"INSERT INTO attendance (id, registration_no, name, timestamp) VALUES (?, ?, ?, ?)",
		record.ID, record.RegistrationNo, record.Name, record.Timestamp)
	if err != nil {
		return fmt.Errorf("save attendance record: %w", err)
	}
	return nil
}

// FindAll returns the full attendance history, newest first.
func (r *AttendanceRepository) FindAll(ctx context.Context) ([]database.AttendanceRecord, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT id, registration_no, name, timestamp FROM attendance ORDER BY timestamp DESC")
	if err != nil {
		return nil, fmt.Errorf("query attendance: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// FindByRegistrationNoOrderByTimestampDesc returns one identity's records, newest first.
func (r *AttendanceRepository) FindByRegistrationNoOrderByTimestampDesc(ctx context.Context, regNo string) ([]database.AttendanceRecord, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT id, registration_no, name, timestamp FROM attendance WHERE registration_no = ? ORDER BY timestamp DESC",
		regNo)
	if err != nil {
		return nil, fmt.Errorf("query attendance by registration: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// FindByDate returns records whose timestamp falls on the given calendar date.
func (r *AttendanceRepository) FindByDate(ctx context.Context, date time.Time) ([]database.AttendanceRecord, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT id, registration_no, name, timestamp FROM attendance WHERE DATE(timestamp) = ? ORDER BY timestamp",
		date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("query attendance by date: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// DeleteByRegistrationNo removes all records for one identity and returns the count.
func (r *AttendanceRepository) DeleteByRegistrationNo(ctx context.Context, regNo string) (int64, error) {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM attendance WHERE registration_no = ?", regNo)
	if err != nil {
		return 0, fmt.Errorf("delete attendance records: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	return count, nil
}

// scanRecords collects attendance rows.
func scanRecords(rows *sql.Rows) ([]database.AttendanceRecord, error) {
	var records []database.AttendanceRecord
	for rows.Next() {
		var r database.AttendanceRecord
		if err := rows.Scan(&r.ID, &r.RegistrationNo, &r.Name, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance records: %w", err)
	}
	return records, nil
}
