// Package factindex implements the Fact Index (C9): a persistent
// store of Fact and ProvenanceRecord rows with a secondary index on
// (subject, predicate, source), backed by the same embedded DuckDB
// engine as cache (spec §4.9). Per the Design Notes, provenance and
// facts are modeled as two tables joined by a foreign key — not as an
// object graph with back-pointers — so reading never tries to
// materialize a cycle in memory.
package factindex

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rs/zerolog"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

// Logger is the package-level logger, silent by default.
var Logger = zerolog.Nop()

// factNamespace is the UUID namespace used to derive a synthetic fact
// ID when a fact's own payload carries no natural key to hash (spec
// §3's NewFactID expects a payloadKey); this reuses uuid.NewSHA1's
// namespace-hash pattern rather than a random UUID, keeping the
// "stable hash" contract spec §3 asks for even in that edge case.
var factNamespace = uuid.MustParse("6f6e0e2a-2e7e-4f0a-9f16-8c2a9f9f8a10")

// Index is a handle onto the persistent facts + provenance_records
// tables.
type Index struct {
	db *sql.DB
}

// Open opens (creating if necessary) the DuckDB-backed fact index at
// path and ensures its schema exists.
func Open(path string) (*Index, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("factindex: failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("factindex: failed to open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("factindex: failed to ping duckdb: %w", err)
	}
	idx := &Index{db: db}
	if err := idx.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return idx, nil
}

func (idx *Index) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS provenance_records (
			provenance_id VARCHAR PRIMARY KEY,
			source        VARCHAR NOT NULL,
			source_ref    VARCHAR,
			request_url   VARCHAR,
			raw_ref       VARCHAR,
			extracted_at  TIMESTAMP NOT NULL,
			tool_version  VARCHAR,
			metadata      JSON
		)`,
		`CREATE TABLE IF NOT EXISTS facts (
			fact_id       VARCHAR PRIMARY KEY,
			tool          VARCHAR NOT NULL,
			fact_type     VARCHAR NOT NULL,
			subject       VARCHAR NOT NULL,
			predicate     VARCHAR NOT NULL,
			payload       JSON,
			provenance_id VARCHAR NOT NULL REFERENCES provenance_records(provenance_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_facts_subject_predicate_source ON facts(subject, predicate, tool)`,
	}
	for _, s := range stmts {
		if _, err := idx.db.Exec(s); err != nil {
			return fmt.Errorf("factindex: migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the underlying connection.
func (idx *Index) Close() error { return idx.db.Close() }

// SyntheticFactID derives a stable ID via the uuid.NewSHA1
// namespace-hash pattern when a fact has no natural payload key to
// feed schema.NewFactID (e.g. a CLTK morphology fact with no single
// distinguishing field).
func SyntheticFactID(tool schema.Source, subject string, predicate schema.Predicate) string {
	return "fact:" + uuid.NewSHA1(factNamespace, []byte(fmt.Sprintf("%s|%s|%s", tool, subject, predicate))).String()
}

// WriteFacts writes facts and their provenance records in a single
// transaction, per spec §4.9's "single transaction" requirement.
// Provenance records are upserted (re-extraction of the same raw
// response is idempotent); facts are upserted by fact_id for the same
// reason.
func (idx *Index) WriteFacts(ctx context.Context, facts []schema.Fact, provenance []schema.ProvenanceRecord) error {
	if len(facts) == 0 && len(provenance) == 0 {
		return nil
	}

	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return &schema.FactIndexError{Kind: schema.StorageIO, Err: err}
	}
	defer tx.Rollback()

	for _, p := range provenance {
		meta, err := json.Marshal(p.Metadata)
		if err != nil {
			return fmt.Errorf("factindex: failed to marshal provenance metadata: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO provenance_records
				(provenance_id, source, source_ref, request_url, raw_ref, extracted_at, tool_version, metadata)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ProvenanceID, string(p.Source), p.SourceRef, p.RequestURL, p.RawRef, p.ExtractedAt, p.ToolVersion, meta)
		if err != nil {
			return &schema.FactIndexError{Kind: schema.StorageIO, Err: err}
		}
	}

	for _, f := range facts {
		payload, err := json.Marshal(f.Payload)
		if err != nil {
			return fmt.Errorf("factindex: failed to marshal fact payload: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO facts
				(fact_id, tool, fact_type, subject, predicate, payload, provenance_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, f.FactID, string(f.Tool), string(f.FactType), f.Subject, string(f.Predicate), payload, f.ProvenanceID)
		if err != nil {
			return &schema.FactIndexError{Kind: schema.StorageIO, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &schema.FactIndexError{Kind: schema.StorageIO, Err: err}
	}
	return nil
}

// Lookup returns every Fact for subject whose predicate is in
// predicates, along with its matching ProvenanceRecord (joined by
// provenance_id, never back-pointer-materialized). Lookup is the
// "finite lazy cursor" spec §9 describes; the engine fully drains it
// within one request, so it is implemented here as a plain slice
// return rather than an iterator type.
func (idx *Index) Lookup(ctx context.Context, subject string, predicates []schema.Predicate) ([]FactWithProvenance, error) {
	if len(predicates) == 0 {
		return nil, nil
	}
	placeholders := make([]any, 0, len(predicates)+1)
	placeholders = append(placeholders, subject)
	q := `
		SELECT f.fact_id, f.tool, f.fact_type, f.subject, f.predicate, f.payload, f.provenance_id,
		       p.provenance_id, p.source, p.source_ref, p.request_url, p.raw_ref, p.extracted_at, p.tool_version, p.metadata
		FROM facts f
		JOIN provenance_records p ON p.provenance_id = f.provenance_id
		WHERE f.subject = ? AND f.predicate IN (`
	for i, pred := range predicates {
		if i > 0 {
			q += ", "
		}
		q += "?"
		placeholders = append(placeholders, string(pred))
	}
	q += ")"

	rows, err := idx.db.QueryContext(ctx, q, placeholders...)
	if err != nil {
		return nil, &schema.FactIndexError{Kind: schema.StorageIO, Err: err}
	}
	defer rows.Close()

	var out []FactWithProvenance
	for rows.Next() {
		var fwp FactWithProvenance
		var factPayload, provMeta []byte
		var tool, factType, predicate string
		var provSource string
		if err := rows.Scan(
			&fwp.Fact.FactID, &tool, &factType, &fwp.Fact.Subject, &predicate, &factPayload, &fwp.Fact.ProvenanceID,
			&fwp.Provenance.ProvenanceID, &provSource, &fwp.Provenance.SourceRef, &fwp.Provenance.RequestURL,
			&fwp.Provenance.RawRef, &fwp.Provenance.ExtractedAt, &fwp.Provenance.ToolVersion, &provMeta,
		); err != nil {
			return nil, &schema.FactIndexError{Kind: schema.StorageIO, Err: err}
		}
		fwp.Fact.Tool = schema.Source(tool)
		fwp.Fact.FactType = schema.FactType(factType)
		fwp.Fact.Predicate = schema.Predicate(predicate)
		fwp.Provenance.Source = schema.Source(provSource)
		if len(factPayload) > 0 {
			if err := json.Unmarshal(factPayload, &fwp.Fact.Payload); err != nil {
				Logger.Warn().Err(err).Str("fact_id", fwp.Fact.FactID).Msg("failed to decode fact payload")
			}
		}
		if len(provMeta) > 0 {
			if err := json.Unmarshal(provMeta, &fwp.Provenance.Metadata); err != nil {
				Logger.Warn().Err(err).Str("provenance_id", fwp.Provenance.ProvenanceID).Msg("failed to decode provenance metadata")
			}
		}
		out = append(out, fwp)
	}
	return out, rows.Err()
}

// FactWithProvenance pairs a Fact with its joined ProvenanceRecord.
type FactWithProvenance struct {
	Fact       schema.Fact
	Provenance schema.ProvenanceRecord
}
