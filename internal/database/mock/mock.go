// Package mock provides in-memory implementations of the repository
// interfaces for testing.
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jvasek/facemark/internal/database"
)

// MockIdentityRepository is an in-memory implementation of database.IdentityRepository.
type MockIdentityRepository struct {
	mu         sync.RWMutex
	identities map[string]database.Identity

	// Error injection
	SaveError   error
	FindError   error
	ExistsError error
	DeleteError error
}

// NewMockIdentityRepository creates an empty in-memory identity repository.
func NewMockIdentityRepository() *MockIdentityRepository {
	return &MockIdentityRepository{identities: make(map[string]database.Identity)}
}

// Save stores or replaces an identity.
func (m *MockIdentityRepository) Save(ctx context.Context, identity *database.Identity) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identities[identity.RegistrationNo] = *identity
	return nil
}

// FindByRegistrationNo returns the identity or database.ErrNotFound.
func (m *MockIdentityRepository) FindByRegistrationNo(ctx context.Context, regNo string) (*database.Identity, error) {
	if m.FindError != nil {
		return nil, m.FindError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	identity, ok := m.identities[regNo]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &identity, nil
}

// ExistsByRegistrationNo reports whether the registration number is enrolled.
func (m *MockIdentityRepository) ExistsByRegistrationNo(ctx context.Context, regNo string) (bool, error) {
	if m.ExistsError != nil {
		return false, m.ExistsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.identities[regNo]
	return ok, nil
}

// Delete removes an identity permanently.
func (m *MockIdentityRepository) Delete(ctx context.Context, regNo string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.identities[regNo]; !ok {
		return database.ErrNotFound
	}
	delete(m.identities, regNo)
	return nil
}

// FindAll returns all identities sorted by registration number.
func (m *MockIdentityRepository) FindAll(ctx context.Context) ([]database.Identity, error) {
	if m.FindError != nil {
		return nil, m.FindError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	identities := make([]database.Identity, 0, len(m.identities))
	for _, identity := range m.identities {
		identities = append(identities, identity)
	}
	sort.Slice(identities, func(i, j int) bool {
		return identities[i].RegistrationNo < identities[j].RegistrationNo
	})
	return identities, nil
}

// MockAttendanceRepository is an in-memory implementation of database.AttendanceRepository.
// Records are kept in insertion order.
type MockAttendanceRepository struct {
	mu      sync.RWMutex
	records []database.AttendanceRecord

	// Error injection
	SaveError   error
	FindError   error
	DeleteError error
}

// NewMockAttendanceRepository creates an empty in-memory attendance repository.
func NewMockAttendanceRepository() *MockAttendanceRepository {
	return &MockAttendanceRepository{}
}

// Save appends a record, assigning it an id.
func (m *MockAttendanceRepository) Save(ctx context.Context, record *database.AttendanceRecord) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	m.records = append(m.records, *record)
	return nil
}

// FindAll returns every record in insertion order.
func (m *MockAttendanceRepository) FindAll(ctx context.Context) ([]database.AttendanceRecord, error) {
	if m.FindError != nil {
		return nil, m.FindError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]database.AttendanceRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

// FindByRegistrationNoOrderByTimestampDesc returns one identity's records, newest first.
func (m *MockAttendanceRepository) FindByRegistrationNoOrderByTimestampDesc(ctx context.Context, regNo string) ([]database.AttendanceRecord, error) {
	if m.FindError != nil {
		return nil, m.FindError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.AttendanceRecord
	for _, r := range m.records {
		if r.RegistrationNo == regNo {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// FindByDate returns records whose timestamp falls on the given calendar date.
func (m *MockAttendanceRepository) FindByDate(ctx context.Context, date time.Time) ([]database.AttendanceRecord, error) {
	if m.FindError != nil {
		return nil, m.FindError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	y, mo, d := date.Date()
	var out []database.AttendanceRecord
	for _, r := range m.records {
		ry, rmo, rd := r.Timestamp.Date()
		if ry == y && rmo == mo && rd == d {
			out = append(out, r)
		}
	}
	return out, nil
}

// DeleteByRegistrationNo removes all records for one identity and returns the count.
func (m *MockAttendanceRepository) DeleteByRegistrationNo(ctx context.Context, regNo string) (int64, error) {
	if m.DeleteError != nil {
		return 0, m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []database.AttendanceRecord
	var deleted int64
	for _, r := range m.records {
		if r.RegistrationNo == regNo {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return deleted, nil
}
