package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	domain "github.com/bryanwahyu/agentic-rag/internal/domain/documents"
)

const metadataFile = "metadata.json"

// Catalog keeps one metadata.json per document under <base>/<id>/.
// Search is a linear directory scan; os.ReadDir returns entries sorted by
// name, which for our ids is ascending creation order.
type Catalog struct {
	base string
}

func New(base string) (*Catalog, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating catalog dir: %v", domain.ErrStorage, err)
	}
	return &Catalog{base: base}, nil
}

func (c *Catalog) Put(ctx context.Context, meta *domain.Metadata) error {
	dir := filepath.Join(c.base, string(meta.ID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating metadata dir: %v", domain.ErrStorage, err)
	}
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding metadata: %v", domain.ErrStorage, err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFile), b, 0o644); err != nil {
		return fmt.Errorf("%w: writing metadata: %v", domain.ErrStorage, err)
	}
	return nil
}

func (c *Catalog) Get(ctx context.Context, id domain.DocID) (*domain.Metadata, error) {
	if strings.ContainsAny(string(id), `/\`) || strings.Contains(string(id), "..") {
		return nil, domain.ErrNotFound
	}
	b, err := os.ReadFile(filepath.Join(c.base, string(id), metadataFile))
	if os.IsNotExist(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading metadata: %v", domain.ErrStorage, err)
	}
	var meta domain.Metadata
	if err := json.Unmarshal(b, &meta); err != nil {
		return nil, fmt.Errorf("%w: decoding metadata: %v", domain.ErrStorage, err)
	}
	return &meta, nil
}

func (c *Catalog) Search(ctx context.Context, tags []string, attrs map[string]any) ([]*domain.Reference, error) {
	entries, err := os.ReadDir(c.base)
	if err != nil {
		return nil, fmt.Errorf("%w: scanning catalog: %v", domain.ErrStorage, err)
	}

	var out []*domain.Reference
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := c.Get(ctx, domain.DocID(e.Name()))
		if err != nil {
			// Directories without metadata are skipped, not fatal.
			continue
		}
		if !meta.HasTags(tags) || !meta.MatchesAttributes(attrs) {
			continue
		}
		out = append(out, &domain.Reference{
			ID:       meta.ID,
			Location: c.Location(meta.ID),
			Metadata: *meta,
		})
	}
	return out, nil
}

func (c *Catalog) Location(id domain.DocID) string {
	return filepath.Join(c.base, string(id))
}
