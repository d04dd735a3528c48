// Package attendance owns the append-only log of presence events.
package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/jvasek/facemark/internal/database"
)

// Ledger records and queries attendance events keyed by identity. Records are
// immutable once written; the ledger never reorders them.
type Ledger struct {
	repo database.AttendanceRepository
}

// NewLedger creates a ledger over the given repository.
func NewLedger(repo database.AttendanceRepository) *Ledger {
	return &Ledger{repo: repo}
}

// MarkPresent appends one record stamped with the current time. Multiple marks
// for the same person on the same day all persist; deduplication is a business
// rule this system deliberately does not apply.
func (l *Ledger) MarkPresent(ctx context.Context, regNo, name string) (*database.AttendanceRecord, error) {
	record := &database.AttendanceRecord{
		RegistrationNo: regNo,
		Name:           name,
		Timestamp:      time.Now(),
	}
	if err := l.repo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("marking attendance for %s: %w", regNo, err)
	}
	return record, nil
}

// All returns the full attendance history for administrative listing.
func (l *Ledger) All(ctx context.Context) ([]database.AttendanceRecord, error) {
	records, err := l.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching attendance: %w", err)
	}
	return records, nil
}

// ByIdentity returns all records for one identity, newest first.
func (l *Ledger) ByIdentity(ctx context.Context, regNo string) ([]database.AttendanceRecord, error) {
	records, err := l.repo.FindByRegistrationNoOrderByTimestampDesc(ctx, regNo)
	if err != nil {
		return nil, fmt.Errorf("fetching attendance for %s: %w", regNo, err)
	}
	return records, nil
}

// ByDate returns all records whose timestamp falls on the given calendar date.
// The comparison uses the date component of the stored timestamp as written;
// there is no timezone normalization.
func (l *Ledger) ByDate(ctx context.Context, date time.Time) ([]database.AttendanceRecord, error) {
	records, err := l.repo.FindByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("fetching attendance for %s: %w", date.Format("2006-01-02"), err)
	}
	return records, nil
}

// Purge deletes every record for one identity. Used only as part of identity
// deletion; callers treat failures as best-effort cleanup.
func (l *Ledger) Purge(ctx context.Context, regNo string) error {
	if _, err := l.repo.DeleteByRegistrationNo(ctx, regNo); err != nil {
		return fmt.Errorf("purging attendance for %s: %w", regNo, err)
	}
	return nil
}
