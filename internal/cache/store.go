package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/dipscan/internal/database"
	"github.com/aristath/dipscan/pkg/logger"
)

const storeSchema = `
CREATE TABLE IF NOT EXISTS entries (
    key        TEXT PRIMARY KEY,
    data       BLOB NOT NULL,
    created_at INTEGER NOT NULL,
    expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entries_expires_at ON entries(expires_at);
`

// Store is the file-backed expiring cache. Entries are keyed by a stable
// hash of their logical parameters and hold msgpack payloads with creation
// and expiry timestamps. Store faults never propagate to callers: reads
// degrade to misses and writes to no-ops, logged at warn level, because a
// broken cache must not take the screener down with it.
type Store struct {
	db  *database.DB
	log zerolog.Logger
}

// NewStore opens (or creates) the cache table on the given database.
func NewStore(db *database.DB, log zerolog.Logger) (*Store, error) {
	if _, err := db.Exec(storeSchema); err != nil {
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}
	return &Store{
		db:  db,
		log: logger.Component(log, "cache_store"),
	}, nil
}

// Key derives a stable cache key from the logical parameter set. Parts are
// normalized to lowercase so symbol casing cannot split entries.
func Key(parts ...string) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(strings.Join(parts, "|"))))
	return hex.EncodeToString(h.Sum(nil))
}

// Put stores value under key with expiry now + ttl, replacing any previous
// entry. Failures are logged and swallowed.
func (s *Store) Put(key string, value interface{}, ttl time.Duration) {
	payload, err := msgpack.Marshal(value)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to encode cache entry")
		return
	}

	now := time.Now().Unix()
	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO entries (key, data, created_at, expires_at) VALUES (?, ?, ?, ?)",
		key, payload, now, time.Now().Add(ttl).Unix(),
	)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to write cache entry")
	}
}

// GetIfFresh decodes the entry for key into dest and reports whether a
// fresh entry was found. Expired, missing, or malformed entries are misses.
func (s *Store) GetIfFresh(key string, dest interface{}) bool {
	var payload []byte
	err := s.db.QueryRow(
		"SELECT data FROM entries WHERE key = ? AND expires_at > ?",
		key, time.Now().Unix(),
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to read cache entry")
		return false
	}

	if err := msgpack.Unmarshal(payload, dest); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to decode cache entry, treating as miss")
		return false
	}
	return true
}

// Delete removes the entry for key. Failures are logged and swallowed.
func (s *Store) Delete(key string) {
	if _, err := s.db.Exec("DELETE FROM entries WHERE key = ?", key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to delete cache entry")
	}
}

// DeleteExpired removes all entries past their expiry. Returns the number
// of rows deleted.
func (s *Store) DeleteExpired() (int64, error) {
	result, err := s.db.Exec("DELETE FROM entries WHERE expires_at < ?", time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache entries: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}
