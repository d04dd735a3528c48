//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jvasek/facemark/internal/config"
	"github.com/jvasek/facemark/internal/database"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	cfg := &config.DatabaseConfig{
		URL:          dbURL,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}
	return pool, cleanup
}

func TestIdentityRepository_Roundtrip(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	defer cleanup()
	ctx := context.Background()

	repo := NewIdentityRepository(pool)

	identity := &database.Identity{
		RegistrationNo: "REG7",
		Name:           "Asha",
		Email:          "asha@example.com",
		Credential:     "secret",
		ImagePath:      "/srv/images/Asha0007",
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := repo.Save(ctx, identity); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	exists, err := repo.ExistsByRegistrationNo(ctx, "REG7")
	if err != nil || !exists {
		t.Fatalf("expected identity to exist, got exists=%v err=%v", exists, err)
	}

	found, err := repo.FindByRegistrationNo(ctx, "REG7")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if found.Name != "Asha" || found.Email != "asha@example.com" || found.ImagePath != "/srv/images/Asha0007" {
		t.Errorf("unexpected identity %+v", found)
	}

	// Save again replaces mutable fields.
	identity.Name = "Asha Rao"
	if err := repo.Save(ctx, identity); err != nil {
		t.Fatalf("re-Save failed: %v", err)
	}
	found, err = repo.FindByRegistrationNo(ctx, "REG7")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if found.Name != "Asha Rao" {
		t.Errorf("expected updated name, got '%s'", found.Name)
	}

	if err := repo.Delete(ctx, "REG7"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.FindByRegistrationNo(ctx, "REG7"); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, "REG7"); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("expected ErrNotFound for repeated delete, got %v", err)
	}
}

func TestAttendanceRepository_QueriesAndPurge(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	defer cleanup()
	ctx := context.Background()

	repo := NewAttendanceRepository(pool)

	day1 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	seeds := []database.AttendanceRecord{
		{RegistrationNo: "REG7", Name: "Asha", Timestamp: day1},
		{RegistrationNo: "REG7", Name: "Asha", Timestamp: day1.Add(time.Hour)},
		{RegistrationNo: "REG8", Name: "Bela", Timestamp: day1.Add(2 * time.Hour)},
		{RegistrationNo: "REG7", Name: "Asha", Timestamp: day2},
		{RegistrationNo: "REG8", Name: "Bela", Timestamp: day2.Add(time.Hour)},
	}
	for i := range seeds {
		if err := repo.Save(ctx, &seeds[i]); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if seeds[i].ID == "" {
			t.Fatal("expected Save to assign an id")
		}
	}

	byReg, err := repo.FindByRegistrationNoOrderByTimestampDesc(ctx, "REG7")
	if err != nil {
		t.Fatalf("FindByRegistrationNo failed: %v", err)
	}
	if len(byReg) != 3 {
		t.Fatalf("expected 3 records for REG7, got %d", len(byReg))
	}
	for i := 1; i < len(byReg); i++ {
		if byReg[i].Timestamp.After(byReg[i-1].Timestamp) {
			t.Error("expected newest-first ordering")
		}
	}

	byDate, err := repo.FindByDate(ctx, day1)
	if err != nil {
		t.Fatalf("FindByDate failed: %v", err)
	}
	if len(byDate) != 3 {
		t.Errorf("expected 3 records on 2024-01-01, got %d", len(byDate))
	}

	deleted, err := repo.DeleteByRegistrationNo(ctx, "REG7")
	if err != nil {
		t.Fatalf("DeleteByRegistrationNo failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("expected 3 deleted records, got %d", deleted)
	}

	all, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 remaining records, got %d", len(all))
	}
}
