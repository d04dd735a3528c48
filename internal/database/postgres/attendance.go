package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jvasek/facemark/internal/database"
)

// AttendanceRepository provides PostgreSQL-backed storage for the attendance log.
type AttendanceRepository struct {
	pool *Pool
}

// NewAttendanceRepository creates a new PostgreSQL attendance repository.
func NewAttendanceRepository(pool *Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// Save appends a record. Records are never updated after insertion.
func (r *AttendanceRepository) Save(ctx context.Context, record *database.AttendanceRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	query := `
		INSERT INTO attendance (id, registration_no, name, timestamp)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query, record.ID, record.RegistrationNo, record.Name, record.Timestamp)
	if err != nil {
		return fmt.Errorf("save attendance record: %w", err)
	}
	return nil
}

// FindAll returns the full attendance history, newest first.
func (r *AttendanceRepository) FindAll(ctx context.Context) ([]database.AttendanceRecord, error) {
	query := `
		SELECT id, registration_no, name, timestamp
		FROM attendance
		ORDER BY timestamp DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query attendance: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// FindByRegistrationNoOrderByTimestampDesc returns one identity's records, newest first.
func (r *AttendanceRepository) FindByRegistrationNoOrderByTimestampDesc(ctx context.Context, regNo string) ([]database.AttendanceRecord, error) {
	query := `
		SELECT id, registration_no, name, timestamp
		FROM attendance
		WHERE registration_no = $1
		ORDER BY timestamp DESC
	`

	rows, err := r.pool.Query(ctx, query, regNo)
	if err != nil {
		return nil, fmt.Errorf("query attendance by registration: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// FindByDate returns records whose timestamp falls on the given calendar date.
func (r *AttendanceRepository) FindByDate(ctx context.Context, date time.Time) ([]database.AttendanceRecord, error) {
	query := `
		SELECT id, registration_no, name, timestamp
		FROM attendance
		WHERE timestamp::date = $1::date
		ORDER BY timestamp
	`

	rows, err := r.pool.Query(ctx, query, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("query attendance by date: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// DeleteByRegistrationNo removes all records for one identity and returns the count.
func (r *AttendanceRepository) DeleteByRegistrationNo(ctx context.Context, regNo string) (int64, error) {
	result, err := r.pool.Exec(ctx, "DELETE FROM attendance WHERE registration_no = $1", regNo)
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
