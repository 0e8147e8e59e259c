package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"flipper-backend/pkg/cache"
	"flipper-backend/pkg/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultStoreTimeout bounds every store round trip
const DefaultStoreTimeout = 5 * time.Second

// Manager implements list/create/update/delete for one resource kind.
// It is stateless across requests; the Store owns connections.
type Manager struct {
	schema   *Schema
	store    Store
	cache    cache.Cache
	cacheTTL time.Duration
	timeout  time.Duration
	now      func() time.Time
	newID    func() string

	// cacheMu orders list fills against invalidations; cacheGen counts invalidations
	cacheMu  sync.Mutex
	cacheGen uint64
}

// Option configures a Manager
type Option func(*Manager)

// WithCache enables list caching; writes invalidate the cached list
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(m *Manager) {
		m.cache = c
		m.cacheTTL = ttl
	}
}

// WithTimeout overrides DefaultStoreTimeout
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithIDGenerator overrides the identifier source
func WithIDGenerator(newID func() string) Option {
	return func(m *Manager) {
		m.newID = newID
	}
}

// NewManager creates a manager for schema backed by store
func NewManager(schema *Schema, store Store, opts ...Option) *Manager {
	m := &Manager{
		schema:  schema,
		store:   store,
		timeout: DefaultStoreTimeout,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Schema returns the descriptor this manager was built with
func (m *Manager) Schema() *Schema {
	return m.schema
}

// Ensure provisions the collection in the store
func (m *Manager) Ensure(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	if err := m.store.EnsureCollection(ctx, m.schema.CollectionSpec()); err != nil {
		return m.storeFailure(err)
	}
	return nil
}

// ========================================
// OPERATIONS
// ========================================

// List returns every record of the kind, newest first
func (m *Manager) List(ctx context.Context) ([]Record, error) {
	if !m.schema.Allows(OpList) {
		return nil, ErrOperationNotAllowed
	}

	if cached, ok := m.cachedList(ctx); ok {
		return cached, nil
	}

	gen := m.generation()

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	records, err := m.store.Find(ctx, m.schema.Collection)
	metrics.RecordStoreOperation(m.schema.Collection, "find", err, time.Since(start))
	if err != nil {
		return nil, m.storeFailure(err)
	}

	for i := range records {
		records[i].TimestampField = m.schema.TimestampField
	}
	if records == nil {
		records = []Record{}
	}

	m.storeList(ctx, gen, records)
	return records, nil
}

// Create validates input, assigns identity and timestamp, and persists the record
func (m *Manager) Create(ctx context.Context, input map[string]any) (*Record, error) {
	if !m.schema.Allows(OpCreate) {
		return nil, ErrOperationNotAllowed
	}

	fields, err := m.schema.ParseCreate(input)
	if err != nil {
		return nil, err
	}

	rec := Record{
		ID:             m.newID(),
		Fields:         fields,
		CreatedAt:      m.now().UTC().Truncate(time.Millisecond),
		TimestampField: m.schema.TimestampField,
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	err = m.store.Insert(ctx, m.schema.Collection, rec)
	metrics.RecordStoreOperation(m.schema.Collection, "insert", err, time.Since(start))
	if err != nil {
		return nil, m.writeFailure(err)
	}

	m.invalidate(ctx)
	metrics.IncrementRecordsCreated(m.schema.Kind)
	return &rec, nil
}

// PartialUpdate overwrites only the fields present in input
func (m *Manager) PartialUpdate(ctx context.Context, id string, input map[string]any) (*Record, error) {
	if !m.schema.Allows(OpUpdate) {
		return nil, ErrOperationNotAllowed
	}
	if !validID(id) {
		return nil, NewNotFound(m.schema.Singular)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	current, err := m.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch, err := m.schema.ParsePatch(input)
	if err != nil {
		return nil, err
	}
	if len(patch) == 0 {
		return current, nil
	}

	start := time.Now()
	updated, err := m.store.Update(ctx, m.schema.Collection, id, patch)
	metrics.RecordStoreOperation(m.schema.Collection, "update", err, time.Since(start))
	if err != nil {
		return nil, m.writeFailure(err)
	}

	m.invalidate(ctx)
	updated.TimestampField = m.schema.TimestampField
	return updated, nil
}

// Delete removes the record by identifier
func (m *Manager) Delete(ctx context.Context, id string) error {
	if !m.schema.Allows(OpDelete) {
		return ErrOperationNotAllowed
	}
	if !validID(id) {
		return NewNotFound(m.schema.Singular)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	err := m.store.DeleteByID(ctx, m.schema.Collection, id)
	metrics.RecordStoreOperation(m.schema.Collection, "delete", err, time.Since(start))
	if err != nil {
		return m.writeFailure(err)
	}

	m.invalidate(ctx)
	return nil
}

// ========================================
// HELPERS
// ========================================

func (m *Manager) findByID(ctx context.Context, id string) (*Record, error) {
	start := time.Now()
	rec, err := m.store.FindByID(ctx, m.schema.Collection, id)
	metrics.RecordStoreOperation(m.schema.Collection, "find_by_id", err, time.Since(start))
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, NewNotFound(m.schema.Singular)
		}
		return nil, m.storeFailure(err)
	}
	rec.TimestampField = m.schema.TimestampField
	return rec, nil
}

// writeFailure maps store errors from Insert/Update/DeleteByID
func (m *Manager) writeFailure(err error) error {
	var dup *DuplicateKeyError
	switch {
	case errors.As(err, &dup):
		return NewValidationError(m.schema.duplicateMessage(dup.Field))
	case errors.Is(err, ErrDocumentNotFound):
		return NewNotFound(m.schema.Singular)
	default:
		return m.storeFailure(err)
	}
}

func (m *Manager) storeFailure(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewStoreUnavailable(fmt.Errorf("%s store request timed out: %w", m.schema.Collection, err))
	}
	return NewStoreUnavailable(err)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (m *Manager) cacheKey() string {
	return fmt.Sprintf("resource:%s:list", m.schema.Collection)
}

func (m *Manager) cachedList(ctx context.Context) ([]Record, bool) {
	if m.cache == nil {
		return nil, false
	}

	var records []Record
	found, err := m.cache.Get(ctx, m.cacheKey(), &records)
	if err != nil {
		metrics.IncrementCacheLookup(m.schema.Kind, "error")
		log.Warn().Err(err).Str("kind", m.schema.Kind).Msg("list cache read failed")
		return nil, false
	}
	if !found {
		metrics.IncrementCacheLookup(m.schema.Kind, "miss")
		return nil, false
	}

	metrics.IncrementCacheLookup(m.schema.Kind, "hit")
	for i := range records {
		records[i].TimestampField = m.schema.TimestampField
	}
	if records == nil {
		records = []Record{}
	}
	return records, true
}

func (m *Manager) generation() uint64 {
	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()
	return m.cacheGen
}

// storeList caches records read at generation gen. A write that invalidated
// the list after that read wins and the fill is dropped.
func (m *Manager) storeList(ctx context.Context, gen uint64, records []Record) {
	if m.cache == nil {
		return
	}

	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()
	if m.cacheGen != gen {
		return
	}
	if err := m.cache.Set(ctx, m.cacheKey(), records, m.cacheTTL); err != nil {
		log.Warn().Err(err).Str("kind", m.schema.Kind).Msg("list cache write failed")
	}
}

func (m *Manager) invalidate(ctx context.Context) {
	if m.cache == nil {
		return
	}

	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()
	m.cacheGen++
	if err := m.cache.Delete(ctx, m.cacheKey()); err != nil {
		log.Warn().Err(err).Str("kind", m.schema.Kind).Msg("list cache invalidation failed")
	}
}
