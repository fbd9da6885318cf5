package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// nowFunc is injectable for testing TTL expiry.
var nowFunc = time.Now

// ResponseStore caches raw Overpass responses keyed by a hash of the query
// document. Entries older than the TTL are treated as misses and overwritten
// on the next successful fetch.
type ResponseStore struct {
	db  *sql.DB
	ttl time.Duration
}

// NewResponseStore creates a response store and initializes the schema.
// Returns an error if the db is nil, the TTL is not positive, or the
// migration fails.
func NewResponseStore(db *sql.DB, ttl time.Duration) (*ResponseStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db must not be nil")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("ttl must be positive")
	}
	s := &ResponseStore{db: db, ttl: ttl}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("cache migrate: %w", err)
	}
	return s, nil
}

// migrate creates the responses table if it doesn't exist.
func (s *ResponseStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS overpass_responses (
			query_hash TEXT PRIMARY KEY,
			response TEXT NOT NULL,
			fetched_at INTEGER NOT NULL
		)
	`)
	return err
}

// Get returns the cached response for the query. A missing or expired entry
// is a miss, not an error.
func (s *ResponseStore) Get(ctx context.Context, query string) (string, bool, error) {
	var response string
	var fetchedAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT response, fetched_at FROM overpass_responses WHERE query_hash = ?",
		hashQuery(query),
	).Scan(&response, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if nowFunc().Unix()-fetchedAt > int64(s.ttl.Seconds()) {
		return "", false, nil
	}
	return response, true, nil
}

// Put stores a response, replacing any previous entry for the same query.
func (s *ResponseStore) Put(ctx context.Context, query, response string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO overpass_responses (query_hash, response, fetched_at) VALUES (?, ?, ?)",
		hashQuery(query), response, nowFunc().Unix(),
	)
	return err
}

// Prune deletes every expired entry and returns the number removed.
func (s *ResponseStore) Prune(ctx context.Context) (int64, error) {
	cutoff := nowFunc().Add(-s.ttl).Unix()
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM overpass_responses WHERE fetched_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// hashQuery derives the fixed-length cache key for a query document.
func hashQuery(query string) string {
	sum := sha256.Sum256([]byte(query))
	return hex.EncodeToString(sum[:])
}
