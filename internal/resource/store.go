package resource

import (
	"context"
)

// CollectionSpec is what a Store must provision for one kind
type CollectionSpec struct {
	Name         string
	UniqueFields []string
}

// Store is the document-store contract the Manager depends on.
// Implementations own connection pooling; the Manager never shares state across requests.
type Store interface {
	// EnsureCollection creates the collection and its unique constraints if missing
	EnsureCollection(ctx context.Context, spec CollectionSpec) error

	// Find returns every document, newest first
	Find(ctx context.Context, collection string) ([]Record, error)

	// FindByID returns ErrDocumentNotFound when nothing matches
	FindByID(ctx context.Context, collection, id string) (*Record, error)

	// Insert returns *DuplicateKeyError when a unique field collides
	Insert(ctx context.Context, collection string, rec Record) error

	// Update merges patch into the stored fields in one atomic step and returns
	// the resulting document. Fields absent from patch keep their stored value.
	// Returns ErrDocumentNotFound or *DuplicateKeyError.
	Update(ctx context.Context, collection, id string, patch map[string]string) (*Record, error)

	// DeleteByID returns ErrDocumentNotFound when nothing matches
	DeleteByID(ctx context.Context, collection, id string) error

	// Ping reports whether the store is reachable
	Ping(ctx context.Context) error
}
