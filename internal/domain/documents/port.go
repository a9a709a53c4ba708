package documents

import "context"

// BlobStore port (interface untuk penyimpanan konten)
type BlobStore interface {
	// Store persists content and returns the generated document id.
	// Storing identical content twice yields two distinct ids.
	Store(ctx context.Context, content []byte) (DocID, error)

	// Retrieve returns the raw bytes for id, or ErrNotFound.
	Retrieve(ctx context.Context, id DocID) ([]byte, error)
}

// Catalog port (interface untuk metadata persistence)
type Catalog interface {
	Put(ctx context.Context, meta *Metadata) error
	Get(ctx context.Context, id DocID) (*Metadata, error)

	// Search returns references matching all given tags and attribute
	// key/value pairs, ordered ascending by id. Nil/empty filters match
	// every document. An empty result is not an error.
	Search(ctx context.Context, tags []string, attrs map[string]any) ([]*Reference, error)

	// Location returns the storage location recorded in references for id.
	Location(id DocID) string
}
