// Package artifacts stores the uploaded and stamped document files on the
// local filesystem, keyed by the record's internal identifier.
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	originalDir = "original"
	stampedDir  = "with_qr"
)

type Store struct {
	root string
}

func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("artifact root dir is required")
	}
	for _, sub := range []string{originalDir, stampedDir} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o700); err != nil {
			return nil, fmt.Errorf("create artifact dir: %w", err)
		}
	}
	return &Store{root: root}, nil
}

// SaveOriginal keeps the file exactly as uploaded, before stamping.
func (s *Store) SaveOriginal(id uuid.UUID, data []byte) (string, error) {
	return s.save(originalDir, id, data)
}

func (s *Store) SaveStamped(id uuid.UUID, data []byte) (string, error) {
	return s.save(stampedDir, id, data)
}

func (s *Store) save(sub string, id uuid.UUID, data []byte) (string, error) {
	rel := filepath.Join(sub, id.String()+".pdf")
	if err := os.WriteFile(filepath.Join(s.root, rel), data, 0o600); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return rel, nil
}

// LoadStamped reads a stamped artifact by the path recorded at issuance. The
// path is confined to the store root.
func (s *Store) LoadStamped(path string) ([]byte, error) {
	full := filepath.Join(s.root, filepath.Clean(path))
	if !strings.HasPrefix(full, filepath.Clean(s.root)+string(filepath.Separator)) {
		return nil, fmt.Errorf("artifact path escapes store root")
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return data, nil
}

// Purge removes both copies. Missing files are not an error: a purge retried
// after a partial failure must still succeed.
func (s *Store) Purge(id uuid.UUID) error {
	for _, sub := range []string{originalDir, stampedDir} {
		path := filepath.Join(s.root, sub, id.String()+".pdf")
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove artifact: %w", err)
		}
	}
	return nil
}
