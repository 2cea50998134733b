// Package querycache persists AGVD query results between runs so that
// repeat lookups skip the network entirely.
package querycache

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/carbocation/pfx"
	"github.com/jmoiron/sqlx"

	_ "github.com/mattn/go-sqlite3"

	"github.com/h3abionet/agvd"
	"github.com/h3abionet/agvd/variantid"
)

const schema = `
CREATE TABLE IF NOT EXISTS variant_cache (
	variant_id TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	fetched_at INTEGER NOT NULL
);`

// Store is a persistent identifier-to-result cache backed by SQLite. Safe
// for use from multiple goroutines; writes are funneled through a single
// connection.
type Store struct {
	db  *sqlx.DB
	ttl time.Duration
}

type cacheRow struct {
	VariantID string `db:"variant_id"`
	Payload   string `db:"payload"`
	FetchedAt int64  `db:"fetched_at"`
}

// DefaultPath is the cache database location when the user does not choose
// one: <user cache dir>/agvd/querycache.sqlite.
func DefaultPath() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", pfx.Err(err)
	}

	return filepath.Join(base, "agvd", "querycache.sqlite"), nil
}

// Open opens the cache at path, creating the file and schema if needed. A
// ttl of zero means entries never expire; with a positive ttl, entries older
// than it are treated as misses and overwritten on the next Put.
func Open(path string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, pfx.Err(err)
	}

	// URI filenames have to begin with 'file:'; see
	// https://www.sqlite.org/c3ref/open.html . It seems that sqlite3 permitted
	// URI filenames without the file: prefix, but that is not standard.
	uri := path
	if !strings.HasPrefix(uri, "file:") {
		uri = "file:" + uri
	}

	db, err := sqlx.Connect("sqlite3", uri)
	if err != nil {
		return nil, pfx.Err(err)
	}

	// SQLite tolerates exactly one writer; a single connection avoids
	// SQLITE_BUSY races when callers overlap.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, pfx.Err(err)
	}

	return &Store{db: db, ttl: ttl}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Fetch splits ids into cached results, keyed by canonical identifier, and
// identifiers that still need a network query. Expired or unreadable entries
// count as misses.
func (s *Store) Fetch(ids []variantid.VariantID) (map[string]agvd.VariantResult, []variantid.VariantID, error) {
	hits := make(map[string]agvd.VariantResult)
	misses := make([]variantid.VariantID, 0, len(ids))

	for _, id := range ids {
		key := id.String()

		var r cacheRow
		err := s.db.Get(&r, "SELECT variant_id, payload, fetched_at FROM variant_cache WHERE variant_id = ?", key)
		if err == sql.ErrNoRows {
			misses = append(misses, id)
			continue
		} else if err != nil {
			return nil, nil, pfx.Err(err)
		}

		if s.ttl > 0 && time.Since(time.Unix(0, r.FetchedAt)) > s.ttl {
			misses = append(misses, id)
			continue
		}

		var result agvd.VariantResult
		if err := json.Unmarshal([]byte(r.Payload), &result); err != nil {
			misses = append(misses, id)
			continue
		}

		hits[key] = result
	}

	return hits, misses, nil
}

// Put records results keyed by canonical identifier, overwriting earlier
// entries for the same key.
func (s *Store) Put(results map[string]agvd.VariantResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return pfx.Err(err)
	}

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO variant_cache (variant_id, payload, fetched_at) VALUES (?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return pfx.Err(err)
	}
	defer stmt.Close()

	now := time.Now().UnixNano()
	for key, result := range results {
		payload, err := json.Marshal(result)
		if err != nil {
			tx.Rollback()
			return pfx.Err(err)
		}
		if _, err := stmt.Exec(key, string(payload), now); err != nil {
			tx.Rollback()
			return pfx.Err(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// Len reports the number of cached entries, expired or not.
func (s *Store) Len() (int, error) {
	var n int
	if err := s.db.Get(&n, "SELECT COUNT(*) FROM variant_cache"); err != nil {
		return 0, pfx.Err(err)
	}

	return n, nil
}
