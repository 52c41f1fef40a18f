// Package storage maintains the SQLite query cache under .reftab/.
//
// The cache is derived entirely from bibliography.json and the TSV
// tables; it exists so that lookups and full-text search do not rescan
// the tree. It can be deleted at any time and rebuilt with one command.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/brainemulation/reftab/internal/bib"
	"github.com/brainemulation/reftab/internal/reconcile"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// selectRefFields contains the standard field list for SELECT queries.
const selectRefFields = `id, type, title, container_title, year, doi, url, authors_json`

// Open opens or creates the cache database at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- Bibliography entries
		CREATE TABLE IF NOT EXISTS refs (
			id TEXT PRIMARY KEY,
			type TEXT,
			title TEXT,
			container_title TEXT,
			year INTEGER,
			doi TEXT,
			url TEXT,
			authors_json TEXT NOT NULL
		);

		-- Index for DOI lookups
		CREATE INDEX IF NOT EXISTS idx_refs_doi ON refs(doi) WHERE doi IS NOT NULL AND doi != '';

		-- Full-text search virtual table (standalone, not external content)
		CREATE VIRTUAL TABLE IF NOT EXISTS refs_fts USING fts5(
			id,
			title,
			authors_text
		);

		-- Where each entry is used in the TSV tree
		CREATE TABLE IF NOT EXISTS ref_usage (
			ref_id TEXT NOT NULL,
			file TEXT NOT NULL,
			row INTEGER NOT NULL,
			via TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_ref_usage_id ON ref_usage(ref_id);
	`

	_, err := db.Exec(schema)
	return err
}

// Rebuild clears the cache and repopulates it from the bibliography and
// the collected table usage. Returns the number of entries inserted.
func (d *DB) Rebuild(entries []bib.Entry, usage []reconcile.Usage) (int, error) {
	for _, table := range []string{"refs", "refs_fts", "ref_usage"} {
		if _, err := d.db.Exec("DELETE FROM " + table); err != nil {
			return 0, fmt.Errorf("clearing %s table: %w", table, err)
		}
	}

	refsStmt, err := d.db.Prepare(`
		INSERT INTO refs (id, type, title, container_title, year, doi, url, authors_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing refs insert: %w", err)
	}
	defer refsStmt.Close()

	ftsStmt, err := d.db.Prepare(`
		INSERT INTO refs_fts (id, title, authors_text)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	usageStmt, err := d.db.Prepare(`
		INSERT INTO ref_usage (ref_id, file, row, via)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing usage insert: %w", err)
	}
	defer usageStmt.Close()

	for i := range entries {
		e := &entries[i]
		authorsJSON, err := json.Marshal(e.Authors)
		if err != nil {
			return 0, fmt.Errorf("marshaling authors for %s: %w", e.ID, err)
		}
		if e.Authors == nil {
			authorsJSON = []byte("[]")
		}

		_, err = refsStmt.Exec(
			e.ID, e.Type, e.Title, e.ContainerTitle, e.Issued.Year(),
			e.DOI, e.URL, string(authorsJSON),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting ref %s: %w", e.ID, err)
		}

		if _, err := ftsStmt.Exec(e.ID, e.Title, formatAuthorsText(e.Authors)); err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", e.ID, err)
		}
	}

	for _, u := range usage {
		if _, err := usageStmt.Exec(u.RefID, u.File, u.Row, u.Via); err != nil {
			return 0, fmt.Errorf("inserting usage for %s: %w", u.RefID, err)
		}
	}

	return len(entries), nil
}

// formatAuthorsText creates a searchable text representation of authors.
func formatAuthorsText(authors []bib.Author) string {
	var names []string
	for _, a := range authors {
		if a.Literal != "" {
			names = append(names, a.Literal)
		} else if a.Given != "" {
			names = append(names, a.Given+" "+a.Family)
		} else {
			names = append(names, a.Family)
		}
	}
	return strings.Join(names, ", ")
}

// Reference is a cached bibliography entry as returned by queries.
type Reference struct {
	ID             string       `json:"id"`
	Type           string       `json:"type,omitempty"`
	Title          string       `json:"title,omitempty"`
	ContainerTitle string       `json:"container_title,omitempty"`
	Year           int          `json:"year,omitempty"`
	DOI            string       `json:"doi,omitempty"`
	URL            string       `json:"url,omitempty"`
	Authors        []bib.Author `json:"authors,omitempty"`
	UsageCount     int          `json:"usage_count"`
}

// rowScanner abstracts sql.Row and sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReference(row rowScanner) (*Reference, error) {
	var ref Reference
	var authorsJSON string
	err := row.Scan(
		&ref.ID, &ref.Type, &ref.Title, &ref.ContainerTitle,
		&ref.Year, &ref.DOI, &ref.URL, &authorsJSON, &ref.UsageCount,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning reference: %w", err)
	}
	if err := json.Unmarshal([]byte(authorsJSON), &ref.Authors); err != nil {
		return nil, fmt.Errorf("parsing authors for %s: %w", ref.ID, err)
	}
	return &ref, nil
}

func scanReferences(rows *sql.Rows) ([]Reference, error) {
	var refs []Reference
	for rows.Next() {
		ref, err := scanReference(rows)
		if err != nil {
			return nil, err
		}
		refs = append(refs, *ref)
	}
	return refs, rows.Err()
}

// usageCountExpr counts table occurrences per entry inline.
const usageCountExpr = `(SELECT COUNT(*) FROM ref_usage u WHERE u.ref_id = refs.id)`

// GetByID retrieves a cached entry by its ID. Returns nil when absent.
func (d *DB) GetByID(id string) (*Reference, error) {
	row := d.db.QueryRow(
		`SELECT `+selectRefFields+`, `+usageCountExpr+` FROM refs WHERE id = ?`, id)
	return scanReference(row)
}

// Search performs a full-text search over titles and authors.
func (d *DB) Search(query string, limit int) ([]Reference, error) {
	ftsQuery := prepareFTSQuery(query)

	rows, err := d.db.Query(`
		SELECT `+selectRefFields+`, `+usageCountExpr+`
		FROM refs
		WHERE id IN (SELECT id FROM refs_fts WHERE refs_fts MATCH ?)
		ORDER BY id
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanReferences(rows)
}

// SearchField performs a search on a specific field.
func (d *DB) SearchField(field, value string, limit int) ([]Reference, error) {
	var ftsQuery string

	switch field {
	case "author":
		ftsQuery = "authors_text:" + prepareFTSQuery(value)
	case "title":
		ftsQuery = "title:" + prepareFTSQuery(value)
	default:
		return nil, fmt.Errorf("unknown search field: %s", field)
	}

	rows, err := d.db.Query(`
		SELECT `+selectRefFields+`, `+usageCountExpr+`
		FROM refs
		WHERE id IN (SELECT id FROM refs_fts WHERE refs_fts MATCH ?)
		ORDER BY id
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", field, err)
	}
	defer rows.Close()

	return scanReferences(rows)
}

// UsageFor lists where an entry is used, ordered by file then row.
func (d *DB) UsageFor(refID string) ([]reconcile.Usage, error) {
	rows, err := d.db.Query(`
		SELECT ref_id, file, row, via
		FROM ref_usage
		WHERE ref_id = ?
		ORDER BY file, row`, refID)
	if err != nil {
		return nil, fmt.Errorf("querying usage: %w", err)
	}
	defer rows.Close()

	var usage []reconcile.Usage
	for rows.Next() {
		var u reconcile.Usage
		if err := rows.Scan(&u.RefID, &u.File, &u.Row, &u.Via); err != nil {
			return nil, fmt.Errorf("scanning usage: %w", err)
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

// Count returns the number of cached entries.
func (d *DB) Count() (int, error) {
	var n int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM refs").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting refs: %w", err)
	}
	return n, nil
}

// prepareFTSQuery prepares user input for FTS5 matching.
func prepareFTSQuery(query string) string {
	// For simple queries, just quote the terms
	// FTS5 uses double quotes for phrase matching
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// If query contains special chars, quote it
	if strings.ContainsAny(query, "\"*+-:(){}[]^~") {
		// Escape internal quotes and wrap in quotes
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
