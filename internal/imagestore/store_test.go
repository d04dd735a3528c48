package imagestore

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/jvasek/facemark/internal/config"
)

// testImage returns a tiny valid PNG blob.
func testImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func testStore(t *testing.T) *Store {
	t.Helper()
	return New(&config.ImageStoreConfig{BaseDir: t.TempDir()})
}

func TestFolderKey(t *testing.T) {
	tests := []struct {
		name     string
		regNo    string
		expected string
	}{
		{"Asha", "REG7", "Asha0007"},
		{"Jan Novák", "REG42", "Jan_Novak0042"},
		{"  spaced   out  ", "12345", "spaced_out12345"},
		{"NoDigits", "REG", "NoDigits0000"},
		{"Tab\tand newline", "1", "Tab_and_newline0001"},
	}

	for _, tt := range tests {
		if got := FolderKey(tt.name, tt.regNo); got != tt.expected {
			t.Errorf("FolderKey(%q, %q) = %q, expected %q", tt.name, tt.regNo, got, tt.expected)
		}
	}
}

func TestPut_WritesNumberedFiles(t *testing.T) {
	store := testStore(t)
	img := testImage(t)

	location, err := store.Put("REG7", "Asha", [][]byte{img, img})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if filepath.Base(location) != "Asha0007" {
		t.Errorf("expected folder 'Asha0007', got '%s'", filepath.Base(location))
	}

	for _, name := range []string{"img1.jpg", "img2.jpg"} {
		if _, err := os.Stat(filepath.Join(location, name)); err != nil {
			t.Errorf("expected file %s to exist: %v", name, err)
		}
	}
}

func TestPut_OverwritesExistingLocation(t *testing.T) {
	store := testStore(t)
	img := testImage(t)

	first, err := store.Put("REG7", "Asha", [][]byte{img, img, img})
	if err != nil {
		t.Fatalf("first Put failed: %v", err)
	}

	second, err := store.Put("REG7", "Asha", [][]byte{img})
	if err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	if first != second {
		t.Errorf("expected deterministic location, got %s and %s", first, second)
	}

	// img1 overwritten; img2/img3 from the first put survive (no rollback policy).
	if _, err := os.Stat(filepath.Join(second, "img1.jpg")); err != nil {
		t.Errorf("expected img1.jpg to exist: %v", err)
	}
}

func TestPut_UndecodableBlob(t *testing.T) {
	store := testStore(t)
	img := testImage(t)

	_, err := store.Put("REG8", "Bela", [][]byte{img, []byte("not an image")})
	if !errors.Is(err, ErrStorageWrite) {
		t.Fatalf("expected ErrStorageWrite, got %v", err)
	}

	// The first image was already written; partial writes are tolerated.
	partial := filepath.Join(store.BaseDir(), "Bela0008", "img1.jpg")
	if _, statErr := os.Stat(partial); statErr != nil {
		t.Errorf("expected partial write img1.jpg to survive: %v", statErr)
	}
}

func TestRename_MovesFolder(t *testing.T) {
	store := testStore(t)
	img := testImage(t)

	oldLocation, err := store.Put("REG7", "Asha", [][]byte{img})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	newLocation, err := store.Rename(oldLocation, "Asha Rao", "REG7")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	if filepath.Base(newLocation) != "Asha_Rao0007" {
		t.Errorf("expected folder 'Asha_Rao0007', got '%s'", filepath.Base(newLocation))
	}
	if _, err := os.Stat(oldLocation); !os.IsNotExist(err) {
		t.Errorf("expected old location to be gone")
	}
	if _, err := os.Stat(filepath.Join(newLocation, "img1.jpg")); err != nil {
		t.Errorf("expected images to move with the folder: %v", err)
	}
}

func TestRename_MissingOldLocation(t *testing.T) {
	store := testStore(t)

	newLocation, err := store.Rename(filepath.Join(store.BaseDir(), "gone"), "Asha", "REG7")
	if err != nil {
		t.Fatalf("expected no-op success for missing old location, got %v", err)
	}
	if filepath.Base(newLocation) != "Asha0007" {
		t.Errorf("expected computed location 'Asha0007', got '%s'", filepath.Base(newLocation))
	}
}

func TestPurge_RemovesFolderRecursively(t *testing.T) {
	store := testStore(t)
	img := testImage(t)

	location, err := store.Put("REG7", "Asha", [][]byte{img, img})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	// Nested content is removed too.
	if err := os.MkdirAll(filepath.Join(location, "nested"), 0o755); err != nil {
		t.Fatalf("failed to create nested dir: %v", err)
	}

	if err := store.Purge(location); err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if _, err := os.Stat(location); !os.IsNotExist(err) {
		t.Errorf("expected location to be removed")
	}
}

func TestPurge_Idempotent(t *testing.T) {
	store := testStore(t)

	location := filepath.Join(store.BaseDir(), "never_existed")
	if err := store.Purge(location); err != nil {
		t.Errorf("expected purge of missing location to be a no-op, got %v", err)
	}
	if err := store.Purge(location); err != nil {
		t.Errorf("expected repeated purge to be a no-op, got %v", err)
	}
}
