package resource_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"flipper-backend/internal/domains/client"
	"flipper-backend/internal/domains/contact"
	"flipper-backend/internal/domains/newsletter"
	"flipper-backend/internal/domains/project"
	"flipper-backend/internal/resource"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// steppingClock returns a clock that advances one second per call
func steppingClock() func() time.Time {
	var mu sync.Mutex
	t := baseTime
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newManager(t *testing.T, schema *resource.Schema, opts ...resource.Option) *resource.Manager {
	t.Helper()
	opts = append([]resource.Option{resource.WithClock(steppingClock())}, opts...)
	m := resource.NewManager(schema, resource.NewMemoryStore(), opts...)
	require.NoError(t, m.Ensure(context.Background()))
	return m
}

func validProject(name string) map[string]any {
	return map[string]any{
		"name":        name,
		"description": "A landing page rebuild",
		"image":       "https://example.com/p.jpg",
	}
}

func validClient() map[string]any {
	return map[string]any{
		"name":        "Ada",
		"designation": "CEO",
		"description": "Great team",
		"image":       "http://i",
	}
}

func TestManagerCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns identifier and timestamp", func(t *testing.T) {
		m := newManager(t, project.Schema())

		rec, err := m.Create(ctx, validProject("Site"))
		require.NoError(t, err)

		_, err = uuid.Parse(rec.ID)
		assert.NoError(t, err)
		assert.Equal(t, baseTime.Add(time.Second), rec.CreatedAt)
		assert.Equal(t, "Site", rec.Get(project.FieldName))
		assert.Equal(t, "createdAt", rec.TimestampField)
	})

	t.Run("ignores client supplied identity and unknown keys", func(t *testing.T) {
		m := newManager(t, project.Schema())

		input := validProject("Site")
		input["_id"] = "client-chosen"
		input["createdAt"] = "1999-01-01T00:00:00Z"
		input["extra"] = "dropped"

		rec, err := m.Create(ctx, input)
		require.NoError(t, err)
		assert.NotEqual(t, "client-chosen", rec.ID)
		assert.Equal(t, baseTime.Add(time.Second), rec.CreatedAt)
		assert.NotContains(t, rec.Fields, "extra")
		assert.NotContains(t, rec.Fields, "_id")
	})

	t.Run("trims text fields", func(t *testing.T) {
		m := newManager(t, project.Schema())

		rec, err := m.Create(ctx, validProject("  Site  "))
		require.NoError(t, err)
		assert.Equal(t, "Site", rec.Get(project.FieldName))
	})

	t.Run("reports every missing field", func(t *testing.T) {
		m := newManager(t, project.Schema())

		_, err := m.Create(ctx, map[string]any{})
		require.Error(t, err)
		assert.True(t, resource.IsValidationError(err))
		msg := resource.GetErrorMessage(err)
		assert.Contains(t, msg, "name")
		assert.Contains(t, msg, "description")
		assert.Contains(t, msg, "image")
	})

	t.Run("rejects non-string values", func(t *testing.T) {
		m := newManager(t, project.Schema())

		input := validProject("Site")
		input["name"] = 42

		_, err := m.Create(ctx, input)
		require.Error(t, err)
		assert.True(t, resource.IsValidationError(err))
		assert.Contains(t, resource.GetErrorMessage(err), "must be a string")
	})

	t.Run("rejects designation outside the allowed set", func(t *testing.T) {
		m := newManager(t, client.Schema())

		input := validClient()
		input["designation"] = "Architect"

		_, err := m.Create(ctx, input)
		require.Error(t, err)
		assert.True(t, resource.IsValidationError(err))
		assert.Contains(t, resource.GetErrorMessage(err), "designation")

		records, err := m.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("accepts every allowed designation", func(t *testing.T) {
		m := newManager(t, client.Schema())

		for _, d := range client.Designations {
			input := validClient()
			input["designation"] = d
			_, err := m.Create(ctx, input)
			assert.NoError(t, err, d)
		}
	})

	t.Run("lowercases and validates contact email", func(t *testing.T) {
		m := newManager(t, contact.Schema())

		rec, err := m.Create(ctx, map[string]any{
			"name":  "Grace",
			"email": "Grace@Example.COM",
			"phone": "+1 555 0100",
			"city":  "Arlington",
		})
		require.NoError(t, err)
		assert.Equal(t, "grace@example.com", rec.Get(contact.FieldEmail))

		_, err = m.Create(ctx, map[string]any{
			"name":  "Grace",
			"email": "not-an-email",
			"phone": "+1 555 0100",
			"city":  "Arlington",
		})
		assert.True(t, resource.IsValidationError(err))
	})
}

func TestNewsletterUniqueness(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, newsletter.Schema())

	first, err := m.Create(ctx, map[string]any{"email": "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, "subscribedAt", first.TimestampField)

	_, err = m.Create(ctx, map[string]any{"email": "A@B.com "})
	require.Error(t, err)
	assert.True(t, resource.IsValidationError(err))
	assert.Equal(t, newsletter.MsgAlreadySubscribed, resource.GetErrorMessage(err))

	records, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a@b.com", records[0].Get(newsletter.FieldEmail))
}

func TestNewsletterConcurrentDuplicates(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, newsletter.Schema())

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Create(ctx, map[string]any{"email": "race@b.com"}); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	records, err := m.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestManagerPartialUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("only overwrites supplied fields", func(t *testing.T) {
		m := newManager(t, client.Schema())
		before, err := m.Create(ctx, validClient())
		require.NoError(t, err)

		after, err := m.PartialUpdate(ctx, before.ID, map[string]any{"name": "Ada Lovelace"})
		require.NoError(t, err)

		assert.Equal(t, "Ada Lovelace", after.Get(client.FieldName))
		assert.Equal(t, before.ID, after.ID)
		assert.Equal(t, before.CreatedAt, after.CreatedAt)
		for _, f := range []string{client.FieldDesignation, client.FieldDescription, client.FieldImage} {
			assert.Equal(t, before.Get(f), after.Get(f), f)
		}

		records, err := m.List(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Ada Lovelace", records[0].Get(client.FieldName))
		assert.Equal(t, before.Get(client.FieldDescription), records[0].Get(client.FieldDescription))
	})

	t.Run("null and absent fields are left alone", func(t *testing.T) {
		m := newManager(t, project.Schema())
		before, err := m.Create(ctx, validProject("Site"))
		require.NoError(t, err)

		after, err := m.PartialUpdate(ctx, before.ID, map[string]any{"description": nil})
		require.NoError(t, err)
		assert.Equal(t, before.Fields, after.Fields)
	})

	t.Run("identity and timestamp in input are ignored", func(t *testing.T) {
		m := newManager(t, project.Schema())
		before, err := m.Create(ctx, validProject("Site"))
		require.NoError(t, err)

		after, err := m.PartialUpdate(ctx, before.ID, map[string]any{
			"_id":       uuid.NewString(),
			"createdAt": "2000-01-01T00:00:00.000Z",
			"name":      "Renamed",
		})
		require.NoError(t, err)
		assert.Equal(t, before.ID, after.ID)
		assert.Equal(t, before.CreatedAt, after.CreatedAt)
	})

	t.Run("invalid designation is rejected and nothing changes", func(t *testing.T) {
		m := newManager(t, client.Schema())
		before, err := m.Create(ctx, validClient())
		require.NoError(t, err)

		_, err = m.PartialUpdate(ctx, before.ID, map[string]any{"designation": "Architect"})
		assert.True(t, resource.IsValidationError(err))

		records, err := m.List(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "CEO", records[0].Get(client.FieldDesignation))
	})

	t.Run("empty string for a required field is rejected", func(t *testing.T) {
		m := newManager(t, project.Schema())
		before, err := m.Create(ctx, validProject("Site"))
		require.NoError(t, err)

		_, err = m.PartialUpdate(ctx, before.ID, map[string]any{"name": "   "})
		assert.True(t, resource.IsValidationError(err))
	})

	t.Run("missing identifier is not found and count is unchanged", func(t *testing.T) {
		m := newManager(t, project.Schema())
		_, err := m.Create(ctx, validProject("Site"))
		require.NoError(t, err)

		for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
			_, err = m.PartialUpdate(ctx, id, map[string]any{"name": "x"})
			assert.True(t, resource.IsNotFound(err), id)
			assert.Equal(t, "Project not found", resource.GetErrorMessage(err))
		}

		records, err := m.List(ctx)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("append-only kinds refuse updates", func(t *testing.T) {
		m := newManager(t, contact.Schema())
		_, err := m.PartialUpdate(ctx, uuid.NewString(), map[string]any{"name": "x"})
		assert.ErrorIs(t, err, resource.ErrOperationNotAllowed)
	})
}

func TestManagerDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("missing identifier is not found and count is unchanged", func(t *testing.T) {
		m := newManager(t, client.Schema())
		_, err := m.Create(ctx, validClient())
		require.NoError(t, err)

		err = m.Delete(ctx, uuid.NewString())
		assert.True(t, resource.IsNotFound(err))
		assert.Equal(t, "Client not found", resource.GetErrorMessage(err))

		records, err := m.List(ctx)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("second delete is not found", func(t *testing.T) {
		m := newManager(t, project.Schema())
		rec, err := m.Create(ctx, validProject("Site"))
		require.NoError(t, err)

		require.NoError(t, m.Delete(ctx, rec.ID))
		assert.True(t, resource.IsNotFound(m.Delete(ctx, rec.ID)))
	})

	t.Run("append-only kinds refuse deletes", func(t *testing.T) {
		m := newManager(t, newsletter.Schema())
		assert.ErrorIs(t, m.Delete(ctx, uuid.NewString()), resource.ErrOperationNotAllowed)
	})
}

func TestManagerListOrdering(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, project.Schema())

	const n, deletes = 7, 3
	created := make([]*resource.Record, 0, n)
	for i := 0; i < n; i++ {
		rec, err := m.Create(ctx, validProject(string(rune('A'+i))))
		require.NoError(t, err)
		created = append(created, rec)
	}
	for i := 0; i < deletes; i++ {
		require.NoError(t, m.Delete(ctx, created[i*2].ID))
	}

	records, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, n-deletes)

	for i := 1; i < len(records); i++ {
		assert.True(t, records[i-1].CreatedAt.After(records[i].CreatedAt),
			"record %d is not newer than record %d", i-1, i)
	}
	assert.Equal(t, created[n-1].ID, records[0].ID)
}

func TestManagerListEmpty(t *testing.T) {
	m := newManager(t, project.Schema())

	records, err := m.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

// ========================================
// STORE FAILURES
// ========================================

type failingStore struct {
	resource.Store
	err error
}

func (s failingStore) Find(context.Context, string) ([]resource.Record, error) {
	return nil, s.err
}

func (s failingStore) Insert(context.Context, string, resource.Record) error {
	return s.err
}

// blockingStore waits for the deadline on every read
type blockingStore struct {
	resource.Store
}

func (blockingStore) Find(ctx context.Context, _ string) ([]resource.Record, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestManagerStoreUnavailable(t *testing.T) {
	ctx := context.Background()

	t.Run("store errors surface the underlying message", func(t *testing.T) {
		m := resource.NewManager(project.Schema(), failingStore{err: errors.New("connection refused")})

		_, err := m.List(ctx)
		require.Error(t, err)
		assert.True(t, resource.IsStoreUnavailable(err))

		status, msg, code := resource.MapErrorToHTTP(err)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "connection refused", msg)
		assert.Equal(t, resource.CodeStoreUnavailable, code)

		_, err = m.Create(ctx, validProject("Site"))
		assert.True(t, resource.IsStoreUnavailable(err))
	})

	t.Run("deadline expiry is a store failure", func(t *testing.T) {
		m := resource.NewManager(project.Schema(), blockingStore{}, resource.WithTimeout(20*time.Millisecond))

		_, err := m.List(ctx)
		require.Error(t, err)
		assert.True(t, resource.IsStoreUnavailable(err))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

// ========================================
// LIST CACHE
// ========================================

type mapCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string][]byte{}}
}

func (c *mapCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return false, errors.New("cache down")
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.data[key] = raw
	c.mu.Unlock()
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *mapCache) Ping(context.Context) error { return nil }

func (c *mapCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

func TestManagerListCache(t *testing.T) {
	ctx := context.Background()
	const key = "resource:newsletters:list"

	t.Run("list fills the cache and writes invalidate it", func(t *testing.T) {
		c := newMapCache()
		m := newManager(t, newsletter.Schema(), resource.WithCache(c, time.Minute))

		_, err := m.Create(ctx, map[string]any{"email": "a@b.com"})
		require.NoError(t, err)
		assert.False(t, c.has(key))

		records, err := m.List(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.True(t, c.has(key))

		cached, err := m.List(ctx)
		require.NoError(t, err)
		require.Len(t, cached, 1)
		assert.Equal(t, records[0].ID, cached[0].ID)
		assert.Equal(t, "subscribedAt", cached[0].TimestampField)
		assert.True(t, records[0].CreatedAt.Equal(cached[0].CreatedAt))

		_, err = m.Create(ctx, map[string]any{"email": "c@d.com"})
		require.NoError(t, err)
		assert.False(t, c.has(key))

		records, err = m.List(ctx)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("cache failures fall through to the store", func(t *testing.T) {
		c := newMapCache()
		c.failGet = true
		m := newManager(t, newsletter.Schema(), resource.WithCache(c, time.Minute))

		_, err := m.Create(ctx, map[string]any{"email": "a@b.com"})
		require.NoError(t, err)

		records, err := m.List(ctx)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})
}

// pausingStore holds the first Find after it has read, until release is closed
type pausingStore struct {
	*resource.MemoryStore
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (s *pausingStore) Find(ctx context.Context, collection string) ([]resource.Record, error) {
	records, err := s.MemoryStore.Find(ctx, collection)
	s.once.Do(func() {
		close(s.read)
		<-s.release
	})
	return records, err
}

func TestManagerListCacheConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	store := &pausingStore{
		MemoryStore: resource.NewMemoryStore(),
		read:        make(chan struct{}),
		release:     make(chan struct{}),
	}
	m := resource.NewManager(newsletter.Schema(), store, resource.WithCache(newMapCache(), time.Minute))
	require.NoError(t, m.Ensure(ctx))

	done := make(chan []resource.Record)
	go func() {
		records, err := m.List(ctx)
		assert.NoError(t, err)
		done <- records
	}()

	<-store.read
	_, err := m.Create(ctx, map[string]any{"email": "a@b.com"})
	require.NoError(t, err)
	close(store.release)

	// the in-flight read started before the create
	assert.Empty(t, <-done)

	records, err := m.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

// ========================================
// CONCURRENT UPDATES
// ========================================

// lockstepStore makes every FindByID wait until n callers have read
type lockstepStore struct {
	*resource.MemoryStore
	wg *sync.WaitGroup
}

func (s lockstepStore) FindByID(ctx context.Context, collection, id string) (*resource.Record, error) {
	rec, err := s.MemoryStore.FindByID(ctx, collection, id)
	s.wg.Done()
	s.wg.Wait()
	return rec, err
}

func TestManagerConcurrentPartialUpdates(t *testing.T) {
	ctx := context.Background()
	mem := resource.NewMemoryStore()
	seed := resource.NewManager(project.Schema(), mem)
	require.NoError(t, seed.Ensure(ctx))

	created, err := seed.Create(ctx, map[string]any{
		"name":        "old",
		"description": "old",
		"image":       "http://i",
	})
	require.NoError(t, err)

	var barrier sync.WaitGroup
	barrier.Add(2)
	m := resource.NewManager(project.Schema(), lockstepStore{MemoryStore: mem, wg: &barrier})

	var wg sync.WaitGroup
	for _, patch := range []map[string]any{
		{"name": "new-name"},
		{"description": "new-desc"},
	} {
		wg.Add(1)
		go func(patch map[string]any) {
			defer wg.Done()
			_, err := m.PartialUpdate(ctx, created.ID, patch)
			assert.NoError(t, err)
		}(patch)
	}
	wg.Wait()

	got, err := mem.FindByID(ctx, project.Schema().Collection, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-name", got.Get("name"))
	assert.Equal(t, "new-desc", got.Get("description"))
	assert.Equal(t, "http://i", got.Get("image"))
}
