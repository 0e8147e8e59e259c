package resource

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store used for local development and tests.
// Unique fields are checked under the store lock, so concurrent duplicates cannot both land.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
	seq         uint64
}

type memCollection struct {
	unique []string
	docs   map[string]memDoc
}

type memDoc struct {
	rec Record
	seq uint64
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memCollection)}
}

func (s *MemoryStore) EnsureCollection(_ context.Context, spec CollectionSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[spec.Name]; ok {
		c.unique = append([]string(nil), spec.UniqueFields...)
		return nil
	}
	s.collections[spec.Name] = &memCollection{
		unique: append([]string(nil), spec.UniqueFields...),
		docs:   make(map[string]memDoc),
	}
	return nil
}

// collection must be called with s.mu held
func (s *MemoryStore) collection(name string) *memCollection {
	c, ok := s.collections[name]
	if !ok {
		c = &memCollection{docs: make(map[string]memDoc)}
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) Find(ctx context.Context, collection string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return []Record{}, nil
	}

	docs := make([]memDoc, 0, len(c.docs))
	for _, d := range c.docs {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].rec.CreatedAt.Equal(docs[j].rec.CreatedAt) {
			return docs[i].seq > docs[j].seq
		}
		return docs[i].rec.CreatedAt.After(docs[j].rec.CreatedAt)
	})

	out := make([]Record, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.rec.Clone())
	}
	return out, nil
}

func (s *MemoryStore) FindByID(ctx context.Context, collection, id string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	d, ok := c.docs[id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	rec := d.rec.Clone()
	return &rec, nil
}

// conflict returns the first unique field of rec already held by another document
func (c *memCollection) conflict(rec Record) (string, bool) {
	for _, field := range c.unique {
		value := rec.Fields[field]
		for id, d := range c.docs {
			if id != rec.ID && d.rec.Fields[field] == value {
				return field, true
			}
		}
	}
	return "", false
}

func (s *MemoryStore) Insert(ctx context.Context, collection string, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)
	if _, exists := c.docs[rec.ID]; exists {
		return fmt.Errorf("document %s already exists in %s", rec.ID, collection)
	}
	if field, dup := c.conflict(rec); dup {
		return &DuplicateKeyError{Collection: collection, Field: field}
	}

	s.seq++
	c.docs[rec.ID] = memDoc{rec: rec.Clone(), seq: s.seq}
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, patch map[string]string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)
	existing, ok := c.docs[id]
	if !ok {
		return nil, ErrDocumentNotFound
	}

	// identity and timestamp stay as first stored
	merged := existing.rec.Clone()
	for name, value := range patch {
		merged.Fields[name] = value
	}
	if field, dup := c.conflict(merged); dup {
		return nil, &DuplicateKeyError{Collection: collection, Field: field}
	}

	c.docs[id] = memDoc{rec: merged, seq: existing.seq}
	out := merged.Clone()
	return &out, nil
}

func (s *MemoryStore) DeleteByID(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		return ErrDocumentNotFound
	}
	if _, ok := c.docs[id]; !ok {
		return ErrDocumentNotFound
	}
	delete(c.docs, id)
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
