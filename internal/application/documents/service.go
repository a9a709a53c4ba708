package documents

import (
	"context"
	"fmt"
	"log"

	"github.com/bryanwahyu/agentic-rag/internal/application"
	domain "github.com/bryanwahyu/agentic-rag/internal/domain/documents"
)

// Service implements use-cases untuk documents: the facade that composes the
// blob store and the metadata catalog. Safe for concurrent use: writes are
// append-only and content-addressed, reads never mutate.
type Service struct {
	Blobs   domain.BlobStore
	Catalog domain.Catalog
	Clock   application.Clock
	Logger  *log.Logger
}

func NewService(blobs domain.BlobStore, catalog domain.Catalog, clock application.Clock, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &Service{Blobs: blobs, Catalog: catalog, Clock: clock, Logger: logger}
}

// Command untuk store document
type StoreDocumentCommand struct {
	Content     []byte
	Filename    string
	ContentType string
	Tags        []string
	Attributes  map[string]any
}

// StoreDocument persists content then metadata. The checksum is computed by
// re-reading the stored blob, which cross-checks blob integrity at write time.
// If metadata persistence fails after the blob write, the orphaned blob is
// left in place: blobs are inert without a catalog entry.
func (s *Service) StoreDocument(ctx context.Context, cmd StoreDocumentCommand) (*domain.Reference, error) {
	id, err := s.Blobs.Store(ctx, cmd.Content)
	if err != nil {
		return nil, fmt.Errorf("storing document %q: %w", cmd.Filename, err)
	}

	stored, err := s.Blobs.Retrieve(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reading back document %q: %w", cmd.Filename, err)
	}

	now := s.Clock.Now()
	meta := &domain.Metadata{
		ID:          id,
		Filename:    cmd.Filename,
		ContentType: cmd.ContentType,
		Size:        int64(len(cmd.Content)),
		CreatedAt:   now,
		UpdatedAt:   now,
		Checksum:    domain.Checksum(stored),
		Tags:        cmd.Tags,
		Attributes:  cmd.Attributes,
	}
	if meta.Tags == nil {
		meta.Tags = []string{}
	}
	if meta.Attributes == nil {
		meta.Attributes = map[string]any{}
	}

	if err := s.Catalog.Put(ctx, meta); err != nil {
		return nil, fmt.Errorf("cataloging document %q: %w", cmd.Filename, err)
	}

	s.Logger.Printf("document stored id=%s filename=%s size=%d", id, cmd.Filename, meta.Size)

	return &domain.Reference{
		ID:       id,
		Location: s.Catalog.Location(id),
		Metadata: *meta,
	}, nil
}

// RetrieveDocument returns the raw content, or ErrNotFound.
func (s *Service) RetrieveDocument(ctx context.Context, id domain.DocID) ([]byte, error) {
	return s.Blobs.Retrieve(ctx, id)
}

// GetReference returns the immutable handle for id, or ErrNotFound.
func (s *Service) GetReference(ctx context.Context, id domain.DocID) (*domain.Reference, error) {
	meta, err := s.Catalog.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.Reference{
		ID:       id,
		Location: s.Catalog.Location(id),
		Metadata: *meta,
	}, nil
}

// Search delegates to the catalog; results are ordered ascending by id.
func (s *Service) Search(ctx context.Context, tags []string, attrs map[string]any) ([]*domain.Reference, error) {
	return s.Catalog.Search(ctx, tags, attrs)
}

// VerifyChecksum re-reads the blob and compares it against the cataloged
// checksum. Not called on the normal read path; callers that need corruption
// detection opt in explicitly.
func (s *Service) VerifyChecksum(ctx context.Context, id domain.DocID) (bool, error) {
	meta, err := s.Catalog.Get(ctx, id)
	if err != nil {
		return false, err
	}
	content, err := s.Blobs.Retrieve(ctx, id)
	if err != nil {
		return false, err
	}
	return domain.Checksum(content) == meta.Checksum, nil
}
