// Package enrollment orchestrates the enrollment-to-recognition lifecycle:
// image storage, identity persistence, attendance marking, and retraining
// triggers, with per-identity serialization of mutating operations.
package enrollment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jvasek/facemark/internal/attendance"
	"github.com/jvasek/facemark/internal/database"
	"github.com/jvasek/facemark/internal/imagestore"
)

// ErrAlreadyEnrolled is returned when enrolling a registration number that exists.
var ErrAlreadyEnrolled = errors.New("already enrolled")

// ErrNotFound is returned when operating on a registration number that is not enrolled.
var ErrNotFound = database.ErrNotFound

// Retrainer triggers an asynchronous model rebuild. Satisfied by
// training.Coordinator.
type Retrainer interface {
	RequestRetrain()
}

// Manager owns the identity lifecycle: UNREGISTERED -> REGISTERED ->
// (UPDATED)* -> DELETED. Operations on the same registration number are
// serialized against each other.
type Manager struct {
	identities database.IdentityRepository
	images     *imagestore.Store
	ledger     *attendance.Ledger
	retrainer  Retrainer

	locks keyLock
}

// NewManager wires the enrollment manager.
func NewManager(identities database.IdentityRepository, images *imagestore.Store, ledger *attendance.Ledger, retrainer Retrainer) *Manager {
	return &Manager{
		identities: identities,
		images:     images,
		ledger:     ledger,
		retrainer:  retrainer,
	}
}

// Enroll registers a new identity with its enrollment images and triggers a
// model retrain. The retrain is fire-and-forget: enrollment succeeds
// regardless of the eventual training outcome. Enrolling an existing
// registration number fails with ErrAlreadyEnrolled.
func (m *Manager) Enroll(ctx context.Context, regNo, name, email, credential string, images [][]byte) (*database.Identity, error) {
	unlock := m.locks.Lock(regNo)
	defer unlock()

	exists, err := m.identities.ExistsByRegistrationNo(ctx, regNo)
	if err != nil {
		return nil, fmt.Errorf("checking enrollment for %s: %w", regNo, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyEnrolled, regNo)
	}

	location, err := m.images.Put(regNo, name, images)
	if err != nil {
		// No identity is persisted without its images.
		return nil, err
	}

	identity := &database.Identity{
		RegistrationNo: regNo,
		Name:           name,
		Email:          email,
		Credential:     credential,
		ImagePath:      location,
		CreatedAt:      time.Now(),
	}
	if err := m.identities.Save(ctx, identity); err != nil {
		return nil, fmt.Errorf("saving identity %s: %w", regNo, err)
	}

	m.retrainer.RequestRetrain()
	return identity, nil
}

// Update changes an identity's mutable fields. A display name change relocates
// the enrollment folder before the other fields are persisted; a failed move
// is logged and the identity keeps the best-effort recomputed location.
// Metadata edits never retrigger training.
func (m *Manager) Update(ctx context.Context, regNo, newName, newEmail, newCredential string) (*database.Identity, error) {
	unlock := m.locks.Lock(regNo)
	defer unlock()

	identity, err := m.identities.FindByRegistrationNo(ctx, regNo)
	if err != nil {
		return nil, err
	}

	if newName != identity.Name {
		newLocation, err := m.images.Rename(identity.ImagePath, newName, regNo)
		if err != nil {
			log.Printf("[enrollment] relocating images for %s: %v", regNo, err)
		}
		identity.ImagePath = newLocation
	}

	identity.Name = newName
	identity.Email = newEmail
	identity.Credential = newCredential

	if err := m.identities.Save(ctx, identity); err != nil {
		return nil, fmt.Errorf("updating identity %s: %w", regNo, err)
	}
	return identity, nil
}

// Remove deletes an identity, its attendance history, and its enrollment
// images. The three steps run in order and each is best-effort: a failed
// attendance purge or image purge is logged and never blocks the remaining
// steps.
func (m *Manager) Remove(ctx context.Context, regNo string) error {
	unlock := m.locks.Lock(regNo)
	defer unlock()

	identity, err := m.identities.FindByRegistrationNo(ctx, regNo)
	if err != nil {
		return err
	}

	if err := m.ledger.Purge(ctx, regNo); err != nil {
		log.Printf("[enrollment] purging attendance for %s: %v", regNo, err)
	}

	if err := m.images.Purge(identity.ImagePath); err != nil {
		log.Printf("[enrollment] purging images for %s: %v", regNo, err)
	}

	if err := m.identities.Delete(ctx, regNo); err != nil {
		return fmt.Errorf("deleting identity %s: %w", regNo, err)
	}
	return nil
}

// MarkAttendanceByFaceMatch records presence for a registration number
// produced by the external face matcher. The identity must still be enrolled;
// matching itself happens outside this service.
func (m *Manager) MarkAttendanceByFaceMatch(ctx context.Context, regNo string) (*database.AttendanceRecord, error) {
	unlock := m.locks.Lock(regNo)
	defer unlock()

	identity, err := m.identities.FindByRegistrationNo(ctx, regNo)
	if err != nil {
		return nil, err
	}
	return m.ledger.MarkPresent(ctx, identity.RegistrationNo, identity.Name)
}

// Get returns one enrolled identity.
func (m *Manager) Get(ctx context.Context, regNo string) (*database.Identity, error) {
	return m.identities.FindByRegistrationNo(ctx, regNo)
}

// List returns all enrolled identities.
func (m *Manager) List(ctx context.Context) ([]database.Identity, error) {
	return m.identities.FindAll(ctx)
}
