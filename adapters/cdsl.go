package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/parse"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

// cdslRecordSeparator joins a row's stable mw: source_ref to its raw
// block text so ExtractFacts can recover both from a stored raw blob
// without a second index lookup.
const cdslRecordSeparator = "\x1f"

// cdslBlockSeparator separates successive headword blocks within one
// query's raw payload.
const cdslBlockSeparator = "\n@@@\n"

// CDSLRow is one row of the prebuilt CDSL index: a headword's raw
// dictionary block text plus its stable Monier-Williams reference.
type CDSLRow struct {
	Headword  string
	SourceRef string // e.g. "mw:217497"
	RawBlock  string
}

// CDSLStore is the lookup surface the CDSL adapter needs; implemented
// here by a DuckDB-backed index, and satisfiable by a fake in tests.
type CDSLStore interface {
	Lookup(ctx context.Context, canonical string) ([]CDSLRow, error)
}

// CDSLIndex is a DuckDB-backed CDSLStore over a locally-built embedded
// columnar index (spec §6: "query against a locally-built embedded
// columnar index, no network").
type CDSLIndex struct {
	db *sql.DB
}

// OpenCDSLIndex opens the CDSL index file at path read-only.
func OpenCDSLIndex(path string) (*CDSLIndex, error) {
	db, err := sql.Open("duckdb", path+"?access_mode=READ_ONLY")
	if err != nil {
		return nil, fmt.Errorf("cdsl: failed to open index %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cdsl: failed to ping index %s: %w", path, err)
	}
	return &CDSLIndex{db: db}, nil
}

// Close closes the underlying connection.
func (idx *CDSLIndex) Close() error { return idx.db.Close() }

// Lookup returns every cdsl_entries row whose headword column matches
// canonical (SLP1).
func (idx *CDSLIndex) Lookup(ctx context.Context, canonical string) ([]CDSLRow, error) {
	rows, err := idx.db.QueryContext(ctx, `
		SELECT headword, source_ref, raw_block FROM cdsl_entries WHERE headword = ?
	`, canonical)
	if err != nil {
		return nil, fmt.Errorf("cdsl: lookup failed: %w", err)
	}
	defer rows.Close()

	var out []CDSLRow
	for rows.Next() {
		var r CDSLRow
		if err := rows.Scan(&r.Headword, &r.SourceRef, &r.RawBlock); err != nil {
			return nil, fmt.Errorf("cdsl: row scan failed: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CDSL is the C6 adapter for the Cologne Digital Sanskrit Lexicon.
type CDSL struct {
	store CDSLStore
}

// NewCDSL constructs the CDSL adapter over store.
func NewCDSL(store CDSLStore) *CDSL { return &CDSL{store: store} }

func (a *CDSL) Source() schema.Source { return schema.SourceCDSL }

func (a *CDSL) Query(ctx context.Context, cq schema.CanonicalQuery) (Result, error) {
	rows, err := a.store.Lookup(ctx, cq.Canonical)
	if err != nil {
		return Result{}, &schema.AdapterError{Source: schema.SourceCDSL, Kind: schema.AdapterTransport, Message: "index lookup failed", Err: err}
	}
	if len(rows) == 0 {
		return Result{}, nil
	}

	var blobParts []string
	for _, r := range rows {
		blobParts = append(blobParts, r.SourceRef+cdslRecordSeparator+r.RawBlock)
	}
	raw := strings.Join(blobParts, cdslBlockSeparator)

	entries := cdslEntriesFromRows(rows)
	return Result{Entries: entries, Raw: raw}, nil
}

func (a *CDSL) ExtractFacts(ctx context.Context, raw string, provenance schema.ProvenanceRecord) ([]schema.Fact, error) {
	rows := decodeCDSLRaw(raw)
	var facts []schema.Fact
	for _, r := range rows {
		entry := parse.Parse(schema.SourceCDSL, schema.Sanskrit, r.RawBlock)
		entry.Headword = r.Headword
		entry = applyCDSLSourceRef(entry, r.SourceRef)
		facts = append(facts, factsFromParsed(entry, schema.SourceCDSL, provenance.ProvenanceID)...)
	}
	return facts, nil
}

func decodeCDSLRaw(raw string) []CDSLRow {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []CDSLRow
	for _, blob := range strings.Split(raw, cdslBlockSeparator) {
		parts := strings.SplitN(blob, cdslRecordSeparator, 2)
		if len(parts) != 2 {
			continue
		}
		out = append(out, CDSLRow{SourceRef: parts[0], RawBlock: parts[1]})
	}
	return out
}

// applyCDSLSourceRef sets every sense that has no SenseID of its own
// to the index's mw:-prefixed stable reference, since
// the CDSL grammar (spec §4.4.1) itself has no notion of the upstream
// identifier — only the prebuilt index does.
func applyCDSLSourceRef(entry schema.ParsedEntry, sourceRef string) schema.ParsedEntry {
	for i := range entry.Senses {
		if entry.Senses[i].SenseID == "" {
			entry.Senses[i].SenseID = sourceRef
		}
	}
	return entry
}

// cdslEntriesFromRows parses each row's block and consolidates
// same-headword rows per spec §4.6's CDSL-specific consolidation
// rule, building DictionaryDefinitions whose SourceRef is the index's
// own mw: reference, suffixed "#1", "#2", ... when a row splits into
// more than one sense (CDSL's grammar carries no upstream
// identifier of its own — spec §4.4.1 — so the index is the only
// source of truth for it, unlike the generic entriesFromParsed
// mapping used by every other adapter).
func cdslEntriesFromRows(rows []CDSLRow) []schema.DictionaryEntry {
	order := make([]string, 0, len(rows))
	byHeadword := make(map[string]*schema.DictionaryEntry)

	for _, r := range rows {
		entry := parse.Parse(schema.SourceCDSL, schema.Sanskrit, r.RawBlock)
		entry.Headword = r.Headword

		de, ok := byHeadword[r.Headword]
		if !ok {
			fresh := schema.DictionaryEntry{
				Source:   schema.SourceCDSL,
				Headword: r.Headword,
				Language: schema.Sanskrit,
				Metadata: map[string]any{},
			}
			if entry.Root != "" {
				fresh.Metadata["root"] = entry.Root
			}
			byHeadword[r.Headword] = &fresh
			de = &fresh
			order = append(order, r.Headword)
		}

		for i, s := range entry.Senses {
			ref := r.SourceRef
			if len(entry.Senses) > 1 {
				ref = fmt.Sprintf("%s#%d", r.SourceRef, i+1)
			}
			de.Definitions = append(de.Definitions, schema.DictionaryDefinition{
				Definition: s.Gloss,
				SourceRef:  ref,
				Domains:    s.Domains,
				Register:   s.Register,
			})
		}
		for _, c := range entry.Citations {
			de.Citations = append(de.Citations, schema.DictionaryCitation{
				Text:      c.Text,
				SourceRef: c.SourceRef,
				CTSURN:    c.CTSURN,
			})
		}
	}

	out := make([]schema.DictionaryEntry, 0, len(order))
	for _, h := range order {
		out = append(out, *byHeadword[h])
	}
	return out
}
