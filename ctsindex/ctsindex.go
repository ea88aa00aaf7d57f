// Package ctsindex implements the CTS URN Index (C8): an immutable
// lookup from author/work abbreviations to canonical text URNs,
// backed by the same embedded DuckDB engine as cache and factindex
// (spec §4.8/§6). The core consumes a prebuilt index file and must be
// tolerant of it being absent; Open returns a nil-safe *Index in that
// case rather than an error, so citations simply lack a CTS URN.
package ctsindex

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rs/zerolog"
)

// Logger is the package-level logger, silent by default.
var Logger = zerolog.Nop()

// Index is a read-only handle onto a prebuilt CTS URN index file. A
// nil *Index is valid and every lookup on it reports a miss, matching
// spec §4.8's "tolerant of it being absent" requirement.
type Index struct {
	db *sql.DB
}

// Open opens the index file at path read-only. If path does not exist,
// Open returns (nil, nil): the absence of the index is not an error.
func Open(path string) (*Index, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		Logger.Debug().Str("path", path).Msg("cts urn index absent, citations will carry no cts_urn")
		return nil, nil
	}

	db, err := sql.Open("duckdb", path+"?access_mode=READ_ONLY")
	if err != nil {
		return nil, fmt.Errorf("ctsindex: failed to open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ctsindex: failed to ping %s: %w", path, err)
	}
	return &Index{db: db}, nil
}

// Close closes the underlying connection. Safe to call on a nil
// *Index.
func (idx *Index) Close() error {
	if idx == nil {
		return nil
	}
	return idx.db.Close()
}

// normalizeAbbrev implements spec §4.8's matching rule: case
// insensitive, periods stripped, whitespace collapsed.
func normalizeAbbrev(abbrev string) string {
	fields := strings.Fields(strings.ReplaceAll(abbrev, ".", ""))
	return strings.ToLower(strings.Join(fields, " "))
}

// Resolve looks up abbreviation and returns its canonical CTS URN.
// Ties (multiple candidate rows after normalization) are broken by
// preferring the longest original abbreviation, then the lowest
// author_id, per spec §4.8. A nil *Index (no prebuilt index available)
// always reports a miss.
func (idx *Index) Resolve(ctx context.Context, abbreviation string) (urn string, ok bool) {
	if idx == nil || abbreviation == "" {
		return "", false
	}
	norm := normalizeAbbrev(abbreviation)

	row := idx.db.QueryRowContext(ctx, `
		SELECT cts_urn FROM abbrev_index
		WHERE normalized_abbrev = ?
		ORDER BY LENGTH(abbrev) DESC, author_id ASC
		LIMIT 1
	`, norm)

	if err := row.Scan(&urn); err != nil {
		if err != sql.ErrNoRows {
			Logger.Debug().Err(err).Str("abbrev", abbreviation).Msg("cts urn resolve failed")
		}
		return "", false
	}
	return urn, true
}

// PassageURN is a CTS URN with a locus appended, as returned by
// ResolveWithLocus.
type PassageURN struct {
	URN     string
	Book    string
	Chapter string
	Verse   string
}

// String renders the full passage URN, appending the locus in the
// conventional CTS "work:book.chapter.verse" shape.
func (p PassageURN) String() string {
	var parts []string
	for _, v := range []string{p.Book, p.Chapter, p.Verse} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return p.URN
	}
	return p.URN + ":" + strings.Join(parts, ".")
}

// ResolveWithLocus resolves abbreviation the same way Resolve does,
// then appends the given book/chapter/verse locus (spec §4.8).
func (idx *Index) ResolveWithLocus(ctx context.Context, abbreviation, book, chapter, verse string) (PassageURN, bool) {
	urn, ok := idx.Resolve(ctx, abbreviation)
	if !ok {
		return PassageURN{}, false
	}
	return PassageURN{URN: urn, Book: book, Chapter: chapter, Verse: verse}, true
}
