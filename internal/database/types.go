// Package database defines the domain records and repository interfaces
// shared by the storage backends (postgres, mariadb, mock).
package database

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by lookups for a registration number that is not enrolled.
var ErrNotFound = errors.New("identity not found")

// Identity is one enrolled person. RegistrationNo is the true identity key and
// never changes after enrollment; the numeric database id (where a backend has
// one) is never used in logic.
type Identity struct {
	RegistrationNo string    `json:"registration_no"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Credential     string    `json:"-"` // opaque secret, never used in matching
	ImagePath      string    `json:"image_path"`
	CreatedAt      time.Time `json:"created_at"`
}

// AttendanceRecord is one immutable presence event. Name is a snapshot of the
// identity's display name at mark time and is not updated afterwards.
type AttendanceRecord struct {
	ID             string    `json:"id"`
	RegistrationNo string    `json:"registration_no"`
	Name           string    `json:"name"`
	Timestamp      time.Time `json:"timestamp"`
}

// IdentityRepository stores enrolled identities keyed by registration number.
type IdentityRepository interface {
	Save(ctx context.Context, identity *Identity) error
	FindByRegistrationNo(ctx context.Context, regNo string) (*Identity, error)
	ExistsByRegistrationNo(ctx context.Context, regNo string) (bool, error)
	Delete(ctx context.Context, regNo string) error
	FindAll(ctx context.Context) ([]Identity, error)
}

// AttendanceRepository stores the append-only attendance log.
type AttendanceRepository interface {
	Save(ctx context.Context, record *AttendanceRecord) error
	FindAll(ctx context.Context) ([]AttendanceRecord, error)
	FindByRegistrationNoOrderByTimestampDesc(ctx context.Context, regNo string) ([]AttendanceRecord, error)
	FindByDate(ctx context.Context, date time.Time) ([]AttendanceRecord, error)
	DeleteByRegistrationNo(ctx context.Context, regNo string) (int64, error)
}
