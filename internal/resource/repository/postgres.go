// Package repository holds the PostgreSQL implementation of resource.Store.
// Each collection is a table of JSONB documents keyed by UUID.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"flipper-backend/internal/infrastructure/database"
	"flipper-backend/internal/resource"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

const uniqueViolation = "23505"

// postgresStore implements resource.Store on top of the shared pool
type postgresStore struct {
	db *database.PostgresDB

	mu      sync.Mutex
	pending map[string]resource.CollectionSpec // collections whose DDL has not run yet
	unique  map[string]string                  // constraint name -> field
}

// NewPostgresStore creates a store over db.
// Dependency injection pattern - receives the database wrapper from the container.
func NewPostgresStore(db *database.PostgresDB) resource.Store {
	return &postgresStore{
		db:      db,
		pending: make(map[string]resource.CollectionSpec),
		unique:  make(map[string]string),
	}
}

func table(collection string) string {
	return pgx.Identifier{collection}.Sanitize()
}

func uniqueIndexName(collection, field string) string {
	return fmt.Sprintf("%s_%s_key", collection, field)
}

// EnsureCollection runs the DDL for spec. When the database is unreachable the spec
// is remembered and retried before the next operation on that collection.
func (s *postgresStore) EnsureCollection(ctx context.Context, spec resource.CollectionSpec) error {
	s.mu.Lock()
	for _, field := range spec.UniqueFields {
		s.unique[uniqueIndexName(spec.Name, field)] = field
	}
	s.pending[spec.Name] = spec
	s.mu.Unlock()

	return s.ensure(ctx, spec.Name)
}

func (s *postgresStore) ensure(ctx context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	spec, ok := s.pending[collection]
	if !ok {
		return nil
	}
	if s.db.Pool == nil {
		return database.ErrPoolNotInitialized
	}

	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id         uuid PRIMARY KEY,
			doc        jsonb NOT NULL DEFAULT '{}'::jsonb,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, table(spec.Name)),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (created_at DESC)`,
			pgx.Identifier{spec.Name + "_created_at_idx"}.Sanitize(), table(spec.Name)),
	}
	for _, field := range spec.UniqueFields {
		statements = append(statements, fmt.Sprintf(
			`CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s ((doc->>'%s'))`,
			pgx.Identifier{uniqueIndexName(spec.Name, field)}.Sanitize(),
			table(spec.Name),
			strings.ReplaceAll(field, "'", "''"),
		))
	}

	for _, stmt := range statements {
		if _, err := s.db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to provision collection %s: %w", spec.Name, err)
		}
	}

	delete(s.pending, collection)
	log.Info().Str("component", "database").Str("collection", spec.Name).Msg("collection ready")
	return nil
}

func (s *postgresStore) ready(ctx context.Context, collection string) error {
	if s.db.Pool == nil {
		return database.ErrPoolNotInitialized
	}
	return s.ensure(ctx, collection)
}

// Find returns all documents, newest first
func (s *postgresStore) Find(ctx context.Context, collection string) ([]resource.Record, error) {
	if err := s.ready(ctx, collection); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT id, doc, created_at FROM %s ORDER BY created_at DESC, id DESC`, table(collection))
	rows, err := s.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	records := []resource.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", collection, err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s rows: %w", collection, err)
	}
	return records, nil
}

// FindByID retrieves one document
func (s *postgresStore) FindByID(ctx context.Context, collection, id string) (*resource.Record, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, resource.ErrDocumentNotFound
	}
	if err := s.ready(ctx, collection); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT id, doc, created_at FROM %s WHERE id = $1`, table(collection))
	rec, err := scanRecord(s.db.Pool.QueryRow(ctx, query, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, resource.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get %s by id: %w", collection, err)
	}
	return rec, nil
}

// Insert stores a new document
func (s *postgresStore) Insert(ctx context.Context, collection string, rec resource.Record) error {
	uid, err := uuid.Parse(rec.ID)
	if err != nil {
		return fmt.Errorf("invalid document id %q: %w", rec.ID, err)
	}
	if err := s.ready(ctx, collection); err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, doc, created_at) VALUES ($1, $2, $3)`, table(collection))
	if _, err := s.db.Pool.Exec(ctx, query, uid, rec.Fields, rec.CreatedAt); err != nil {
		if dup := s.duplicate(collection, err); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	return nil
}

// Update merges patch into the stored document; id and created_at are never touched
func (s *postgresStore) Update(ctx context.Context, collection, id string, patch map[string]string) (*resource.Record, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, resource.ErrDocumentNotFound
	}
	if err := s.ready(ctx, collection); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`UPDATE %s SET doc = doc || $2::jsonb WHERE id = $1 RETURNING id, doc, created_at`, table(collection))
	rec, err := scanRecord(s.db.Pool.QueryRow(ctx, query, uid, patch))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, resource.ErrDocumentNotFound
		}
		if dup := s.duplicate(collection, err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("failed to update %s: %w", collection, err)
	}
	return rec, nil
}

// DeleteByID removes one document
func (s *postgresStore) DeleteByID(ctx context.Context, collection, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return resource.ErrDocumentNotFound
	}
	if err := s.ready(ctx, collection); err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table(collection))
	tag, err := s.db.Pool.Exec(ctx, query, uid)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", collection, err)
	}
	if tag.RowsAffected() == 0 {
		return resource.ErrDocumentNotFound
	}
	return nil
}

// Ping checks connectivity
func (s *postgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// duplicate converts a unique violation into *resource.DuplicateKeyError
func (s *postgresStore) duplicate(collection string, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}

	s.mu.Lock()
	field, ok := s.unique[pgErr.ConstraintName]
	s.mu.Unlock()
	if !ok {
		field = pgErr.ConstraintName
	}
	return &resource.DuplicateKeyError{Collection: collection, Field: field}
}

func scanRecord(row pgx.Row) (*resource.Record, error) {
	var (
		id        uuid.UUID
		fields    map[string]string
		createdAt time.Time
	)
	if err := row.Scan(&id, &fields, &createdAt); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]string{}
	}
	return &resource.Record{
		ID:        id.String(),
		Fields:    fields,
		CreatedAt: createdAt.UTC(),
	}, nil
}
