package ctsindex

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
)

// AuthorRow is one row of the authors.csv seed described by
// SPEC_FULL §4.8: author_id, name, cts_namespace.
type AuthorRow struct {
	AuthorID     string
	Name         string
	CTSNamespace string
}

// WorkRow is one row of the works.csv seed: author_id, title,
// reference_abbrevs (semicolon-separated), cts_urn.
type WorkRow struct {
	AuthorID          string
	Title             string
	ReferenceAbbrevs  []string
	CTSURN            string
}

// Build reads the two seed CSVs and writes a fresh CTS URN index file
// at outPath. This is the thin offline glue spec §4.8 calls for in
// place of live-scraping the two external corpora: the repository
// ships a build step that reads pre-collected seed CSVs rather than
// fetching Perseus/legacy classics-data over the network, which is out
// of scope (SPEC_FULL §4.8).
func Build(authorsCSVPath, worksCSVPath, outPath string) error {
	authors, err := readAuthorsCSV(authorsCSVPath)
	if err != nil {
		return err
	}
	works, err := readWorksCSV(worksCSVPath)
	if err != nil {
		return err
	}

	if _, err := os.Stat(outPath); err == nil {
		if err := os.Remove(outPath); err != nil {
			return fmt.Errorf("ctsindex: failed to remove stale index %s: %w", outPath, err)
		}
	}

	db, err := sql.Open("duckdb", outPath)
	if err != nil {
		return fmt.Errorf("ctsindex: failed to create %s: %w", outPath, err)
	}
	defer db.Close()

	schemaStmts := []string{
		`CREATE TABLE authors (author_id VARCHAR PRIMARY KEY, name VARCHAR, cts_namespace VARCHAR)`,
		`CREATE TABLE works (author_id VARCHAR, title VARCHAR, reference_abbrevs VARCHAR[], cts_urn VARCHAR)`,
		`CREATE TABLE abbrev_index (abbrev VARCHAR, normalized_abbrev VARCHAR, author_id VARCHAR, cts_urn VARCHAR)`,
	}
	for _, s := range schemaStmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("ctsindex: schema creation failed: %w", err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("ctsindex: failed to begin build transaction: %w", err)
	}
	defer tx.Rollback()

	for _, a := range authors {
		if _, err := tx.Exec(`INSERT INTO authors VALUES (?, ?, ?)`, a.AuthorID, a.Name, a.CTSNamespace); err != nil {
			return fmt.Errorf("ctsindex: failed to insert author %s: %w", a.AuthorID, err)
		}
	}
	for _, w := range works {
		if _, err := tx.Exec(`INSERT INTO works VALUES (?, ?, ?, ?)`, w.AuthorID, w.Title, w.ReferenceAbbrevs, w.CTSURN); err != nil {
			return fmt.Errorf("ctsindex: failed to insert work %q: %w", w.Title, err)
		}
		for _, abbrev := range w.ReferenceAbbrevs {
			if _, err := tx.Exec(`INSERT INTO abbrev_index VALUES (?, ?, ?, ?)`,
				abbrev, normalizeAbbrev(abbrev), w.AuthorID, w.CTSURN); err != nil {
				return fmt.Errorf("ctsindex: failed to index abbrev %q: %w", abbrev, err)
			}
		}
	}

	if _, err := tx.Exec(`CREATE INDEX idx_abbrev_index_normalized ON abbrev_index(normalized_abbrev)`); err != nil {
		return fmt.Errorf("ctsindex: failed to create abbrev index: %w", err)
	}

	return tx.Commit()
}

func readAuthorsCSV(path string) ([]AuthorRow, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	var out []AuthorRow
	for _, r := range rows {
		if len(r) < 3 {
			continue
		}
		out = append(out, AuthorRow{AuthorID: r[0], Name: r[1], CTSNamespace: r[2]})
	}
	return out, nil
}

func readWorksCSV(path string) ([]WorkRow, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	var out []WorkRow
	for _, r := range rows {
		if len(r) < 4 {
			continue
		}
		out = append(out, WorkRow{
			AuthorID:         r[0],
			Title:            r[1],
			ReferenceAbbrevs: strings.Split(r[2], ";"),
			CTSURN:           r[3],
		})
	}
	return out, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ctsindex: failed to open seed csv %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var out [][]string
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ctsindex: failed to read seed csv %s: %w", path, err)
		}
		if first {
			first = false
			continue // header row
		}
		out = append(out, rec)
	}
	return out, nil
}
