// Package imagestore persists enrollment images on disk. Each identity owns
// one folder under the configured base directory, keyed by display name and
// registration number.
package imagestore

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jvasek/facemark/internal/config"
)

// ErrStorageWrite indicates an enrollment image could not be decoded or written.
var ErrStorageWrite = errors.New("image storage write failed")

// ErrStorageMove indicates an enrollment folder could not be relocated.
var ErrStorageMove = errors.New("image storage move failed")

var nonDigits = regexp.MustCompile(`\D`)

// Store writes, relocates, and purges per-identity enrollment image folders.
type Store struct {
	baseDir string
}

// New creates a store rooted at the configured base directory.
func New(cfg *config.ImageStoreConfig) *Store {
	return &Store{baseDir: cfg.BaseDir}
}

// BaseDir returns the corpus root directory shared with the recognizer trainer.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// removeDiacritics strips diacritical marks from a string (e.g. "Jiří" -> "Jiri")
// so folder names stay ASCII-safe across filesystems.
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// FolderKey derives the deterministic folder name for an identity: the display
// name with whitespace collapsed to underscores, followed by the numeric
// portion of the registration number zero-padded to 4 digits ("REG7" -> "0007").
func FolderKey(name, regNo string) string {
	digits := nonDigits.ReplaceAllString(regNo, "")
	if digits == "" {
		digits = "0"
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		// Numeric portion too large for int; keep the raw digits.
		return sanitizeName(name) + digits
	}
	return sanitizeName(name) + fmt.Sprintf("%04d", n)
}

func sanitizeName(name string) string {
	name = removeDiacritics(strings.TrimSpace(name))
	return strings.Join(strings.Fields(name), "_")
}

// Put writes the enrollment images for one identity and returns the folder
// location. Existing files at the same numbered paths are overwritten. Each
// blob must decode as an image; a decode or write failure aborts with
// ErrStorageWrite, leaving any earlier files in place (no rollback).
func (s *Store) Put(regNo, name string, images [][]byte) (string, error) {
	folder := filepath.Join(s.baseDir, FolderKey(name, regNo))
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating folder %s: %v", ErrStorageWrite, folder, err)
	}

	for i, blob := range images {
		if _, _, err := image.Decode(bytes.NewReader(blob)); err != nil {
			return "", fmt.Errorf("%w: decoding image %d: %v", ErrStorageWrite, i+1, err)
		}
		path := filepath.Join(folder, fmt.Sprintf("img%d.jpg", i+1))
		if err := os.WriteFile(path, blob, 0o644); err != nil {
			return "", fmt.Errorf("%w: writing image %d: %v", ErrStorageWrite, i+1, err)
		}
	}

	return folder, nil
}

// Rename relocates an identity's folder after a display name change and
// returns the new location. A missing old location is not an error: the new
// location is computed and returned, and the move is skipped.
func (s *Store) Rename(oldLocation, newName, regNo string) (string, error) {
	newLocation := filepath.Join(s.baseDir, FolderKey(newName, regNo))
	if oldLocation == newLocation {
		return newLocation, nil
	}

	if _, err := os.Stat(oldLocation); os.IsNotExist(err) {
		return newLocation, nil
	}

	if err := os.Rename(oldLocation, newLocation); err != nil {
		return newLocation, fmt.Errorf("%w: %s -> %s: %v", ErrStorageMove, oldLocation, newLocation, err)
	}
	return newLocation, nil
}

// Purge removes an identity's folder and everything beneath it. A missing
// location is a no-op.
func (s *Store) Purge(location string) error {
	if location == "" {
		return nil
	}
	if err := os.RemoveAll(location); err != nil {
		return fmt.Errorf("purging %s: %w", location, err)
	}
	return nil
}
