// Package tabular reads and writes the TSV data files.
//
// The format is raw tab-split: no quoting, no escaping, no embedded
// tabs or newlines in cells. Cells pass through byte-for-byte, so a
// value like `"quoted"` or `a,b` survives a rewrite unchanged. This is
// why encoding/csv is not used here; its quoting rules would rewrite
// cells the files' own producers never quote.
package tabular

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MaxLineCapacity is the maximum buffer size for reading a single TSV
// line (1MB).
const MaxLineCapacity = 1024 * 1024

// Table is one TSV file held in memory: a header row plus data rows.
// Rows may be ragged; use PadRow before writing to a high column index.
type Table struct {
	Path   string
	Header []string
	Rows   [][]string
}

// Read loads a TSV file. The first line is the header. A trailing \r is
// stripped from each line so CRLF files read the same as LF files.
func Read(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening table: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	buf := make([]byte, MaxLineCapacity)
	scanner.Buffer(buf, MaxLineCapacity)

	t := &Table{Path: path}
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		cells := strings.Split(line, "\t")
		if t.Header == nil {
			t.Header = cells
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading table %s: %w", path, err)
	}
	return t, nil
}

// Write replaces the file at t.Path with the in-memory contents. The
// write is whole-file and not atomic; these files live in version
// control, which is the rollback mechanism.
func (t *Table) Write() error {
	var b strings.Builder
	b.WriteString(strings.Join(t.Header, "\t"))
	b.WriteByte('\n')
	for _, row := range t.Rows {
		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}

	if err := os.WriteFile(t.Path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}
	return nil
}

// ColumnIndex returns the index of the exactly named header column, or
// -1 when the column is absent.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at (row, col), or "" when the row is too
// short. Row indexes are zero-based over Rows.
func (t *Table) Cell(row, col int) string {
	if col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// PadRow extends row i with empty cells until index col is valid.
func (t *Table) PadRow(row, col int) {
	for len(t.Rows[row]) <= col {
		t.Rows[row] = append(t.Rows[row], "")
	}
}

// Walk returns the paths of all .tsv files under dir, sorted. Paths
// containing any of the exclude substrings are skipped.
func Walk(dir string, exclude ...string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tsv") {
			return nil
		}
		for _, substr := range exclude {
			if strings.Contains(path, substr) {
				return nil
			}
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// FindByName locates a TSV file by bare filename anywhere under dir.
// When several files share the name, the lexically first path wins.
// ok is false when no file matches; err reports walk faults only.
func FindByName(dir, name string) (path string, ok bool, err error) {
	paths, err := Walk(dir)
	if err != nil {
		return "", false, err
	}
	for _, p := range paths {
		if filepath.Base(p) == name {
			return p, true, nil
		}
	}
	return "", false, nil
}
