package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	domain "github.com/bryanwahyu/agentic-rag/internal/domain/documents"
)

const contentFile = "original"

// FSStore keeps each document under <base>/<id>/original.
type FSStore struct {
	base string
	now  func() time.Time
}

func NewFSStore(base string) (*FSStore, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating blob dir: %v", domain.ErrStorage, err)
	}
	return &FSStore{base: base, now: time.Now}, nil
}

// Store persists content under a freshly generated id.
func (s *FSStore) Store(ctx context.Context, content []byte) (domain.DocID, error) {
	id := domain.NewDocID(content, s.now())

	dir := filepath.Join(s.base, string(id))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating document dir: %v", domain.ErrStorage, err)
	}
	if err := os.WriteFile(filepath.Join(dir, contentFile), content, 0o644); err != nil {
		return "", fmt.Errorf("%w: writing content: %v", domain.ErrStorage, err)
	}
	return id, nil
}

// Retrieve returns the stored bytes, or ErrNotFound for unknown ids.
func (s *FSStore) Retrieve(ctx context.Context, id domain.DocID) ([]byte, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	b, err := os.ReadFile(filepath.Join(s.base, string(id), contentFile))
	if os.IsNotExist(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading content: %v", domain.ErrStorage, err)
	}
	return b, nil
}

// validID blocks path traversal through crafted ids.
func validID(id domain.DocID) bool {
	s := string(id)
	if s == "" || strings.ContainsAny(s, `/\`) || strings.Contains(s, "..") {
		return false
	}
	return true
}
