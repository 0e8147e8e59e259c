package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrPoolNotInitialized is returned when Connect never produced a pool
var ErrPoolNotInitialized = fmt.Errorf("database pool is not initialized")

// Ping checks that the database is reachable.
// Used by the health endpoint, so it carries its own short timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	if db.Pool == nil {
		return ErrPoolNotInitialized
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.Pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close closes every connection in the pool. Safe to call multiple times.
func (db *PostgresDB) Close() error {
	if db.Pool == nil {
		log.Debug().Str("component", "database").Msg("pool is already closed or was never initialized")
		return nil
	}

	log.Info().Str("component", "database").Msg("closing database connection pool")
	db.Pool.Close()
	db.Pool = nil
	log.Info().Str("component", "database").Msg("connection pool closed")
	return nil
}
