// Package cache implements the response cache (C5): an embedded
// columnar key-value store, keyed by (language, canonical_text,
// schema_version), holding serialized DictionaryEntry lists. It is
// backed by DuckDB the same way leapsql's pkg/adapters/duckdb adapter
// opens its database/sql connection, since spec §4.5/§6 literally call
// for an "embedded columnar" engine.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rs/zerolog"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

// Logger is the package-level logger, silent by default.
var Logger = zerolog.Nop()

// SchemaVersion is the compile-time constant spec §4.5 requires: rows
// whose stored schema_version differs are treated as a cold cache, not
// an error (spec §6's "version mismatch at startup").
const SchemaVersion = 1

// Key identifies one cache row.
type Key struct {
	Language  schema.Language
	Canonical string
}

// Stats is the aggregate shape returned by Stats and by the CLI/HTTP
// cache-stats surface (spec §6).
type Stats struct {
	TotalEntries int64
	TotalBytes   int64
	ByLanguage   []LanguageStats
}

// LanguageStats is one row of the by-language breakdown.
type LanguageStats struct {
	Language schema.Language
	Entries  int64
	Bytes    int64
}

// Cache wraps a DuckDB connection implementing the C5 contract: O(log
// n) get via the primary key index, transactional put/clear, and a
// stats aggregate. The cache is advisory — every exported method
// degrades to "as if absent" on storage failure rather than
// propagating a raw database error, per spec §4.5/§7's CacheError
// policy; callers that want the distinction can still inspect the
// returned error's Kind.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if necessary) the DuckDB-backed cache file at
// path and ensures its schema exists. path may be ":memory:" for
// tests, matching the teacher's duckdb adapter.
func Open(path string) (*Cache, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("cache: failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("cache: failed to open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache: failed to ping duckdb: %w", err)
	}

	c := &Cache{db: db}
	if err := c.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) migrate() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS cache_entries (
			language         VARCHAR NOT NULL,
			canonical_text   VARCHAR NOT NULL,
			schema_version   INTEGER NOT NULL,
			payload          BLOB NOT NULL,
			size_bytes       BIGINT NOT NULL,
			created_at       TIMESTAMP NOT NULL,
			last_accessed_at TIMESTAMP NOT NULL,
			PRIMARY KEY (language, canonical_text, schema_version)
		)
	`)
	if err != nil {
		return fmt.Errorf("cache: migration failed: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying DuckDB connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get looks up key at the current SchemaVersion. A miss (including a
// row whose stored schema_version no longer matches, per spec §6) is
// reported as found=false, not an error. Storage errors are logged
// and also reported as a miss, so the engine never treats a cache
// failure as a request failure (spec §4.5).
func (c *Cache) Get(ctx context.Context, key Key) (entries []schema.DictionaryEntry, found bool, err error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT payload FROM cache_entries
		WHERE language = ? AND canonical_text = ? AND schema_version = ?
	`, string(key.Language), key.Canonical, SchemaVersion)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		Logger.Warn().Err(err).Msg("cache get failed, treating as miss")
		return nil, false, &schema.CacheError{Kind: schema.StorageIO, Err: err}
	}

	if err := json.Unmarshal(payload, &entries); err != nil {
		Logger.Warn().Err(err).Msg("cache payload corrupted, treating as miss")
		return nil, false, &schema.CacheError{Kind: schema.StorageCorruption, Err: err}
	}

	// Best-effort last-accessed-at bump; failure here never surfaces.
	_, _ = c.db.ExecContext(ctx, `
		UPDATE cache_entries SET last_accessed_at = ?
		WHERE language = ? AND canonical_text = ? AND schema_version = ?
	`, time.Now(), string(key.Language), key.Canonical, SchemaVersion)

	return entries, true, nil
}

// Put overwrites the row for key with entries, within a single
// transaction (spec §5's "writes are transactional at the row level").
func (c *Cache) Put(ctx context.Context, key Key, entries []schema.DictionaryEntry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("cache: failed to marshal entries: %w", err)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return &schema.CacheError{Kind: schema.StorageIO, Err: err}
	}
	defer tx.Rollback()

	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO cache_entries
			(language, canonical_text, schema_version, payload, size_bytes, created_at, last_accessed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, string(key.Language), key.Canonical, SchemaVersion, payload, len(payload), now, now)
	if err != nil {
		return &schema.CacheError{Kind: schema.StorageIO, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &schema.CacheError{Kind: schema.StorageIO, Err: err}
	}
	return nil
}

// ClearByLanguage deletes every row for lang in one transaction,
// returning the number of rows removed (spec §4.5/§6).
func (c *Cache) ClearByLanguage(ctx context.Context, lang schema.Language) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE language = ?`, string(lang))
	if err != nil {
		return 0, &schema.CacheError{Kind: schema.StorageIO, Err: err}
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Stats returns aggregate counts and byte totals by language.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT language, COUNT(*), COALESCE(SUM(size_bytes), 0)
		FROM cache_entries
		GROUP BY language
		ORDER BY language
	`)
	if err != nil {
		return Stats{}, &schema.CacheError{Kind: schema.StorageIO, Err: err}
	}
	defer rows.Close()

	var out Stats
	for rows.Next() {
		var ls LanguageStats
		var lang string
		if err := rows.Scan(&lang, &ls.Entries, &ls.Bytes); err != nil {
			return Stats{}, &schema.CacheError{Kind: schema.StorageIO, Err: err}
		}
		ls.Language = schema.Language(lang)
		out.TotalEntries += ls.Entries
		out.TotalBytes += ls.Bytes
		out.ByLanguage = append(out.ByLanguage, ls)
	}
	return out, rows.Err()
}
