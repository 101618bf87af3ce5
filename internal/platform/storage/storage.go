package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Uploaded artifacts are kept on disk under <root>/<kind>/ with stored names
// of the form author+++hexid+++originalname. The moderation tool receives
// that stored name verbatim, so it doubles as the lookup key.

const nameSeparator = "+++"

type Store struct {
	root string
}

func New(root string) *Store {
	return &Store{root: root}
}

// StoredName builds the on-disk file name for an artifact.
func StoredName(author, hexID, filename string) string {
	return author + nameSeparator + hexID + nameSeparator + filepath.Base(filename)
}

// ParseStoredName splits a stored name back into its parts.
func ParseStoredName(name string) (author, hexID, filename string, err error) {
	parts := strings.SplitN(name, nameSeparator, 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", fmt.Errorf("storage.ParseStoredName: malformed stored name %q", name)
	}
	return parts[0], parts[1], parts[2], nil
}

func (s *Store) Path(kind, storedName string) string {
	return filepath.Join(s.root, kind, storedName)
}

func (s *Store) Save(kind, storedName string, r io.Reader) error {
	dir := filepath.Join(s.root, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage.Save mkdir: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, storedName))
	if err != nil {
		return fmt.Errorf("storage.Save create: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("storage.Save write: %w", err)
	}
	return nil
}

// Remove deletes an artifact. A missing file is not an error: the record may
// have been uploaded before artifact storage moved, or already cleaned up.
func (s *Store) Remove(kind, storedName string) error {
	err := os.Remove(s.Path(kind, storedName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage.Remove: %w", err)
	}
	return nil
}
