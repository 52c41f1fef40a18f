package tabular

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.tsv")
	content := "id\tname\tref_id\n" +
		"r1\talpha\tsmith2020\n" +
		"r2\tbeta\t\n"
	writeFile(t, path, content)

	table, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(table.Header) != 3 || table.Header[2] != "ref_id" {
		t.Errorf("Header = %v", table.Header)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("Rows = %d, want 2", len(table.Rows))
	}
	if table.Rows[0][2] != "smith2020" || table.Rows[1][2] != "" {
		t.Errorf("rows = %v", table.Rows)
	}

	if err := table.Write(); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != content {
		t.Errorf("round trip changed file:\ngot  %q\nwant %q", got, content)
	}
}

// Cells are never quoted or escaped. Quotes and commas must pass
// through byte-for-byte.
func TestNoQuoting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "raw.tsv")
	content := "name\tnote\n" +
		"alpha\tsaid \"hello\", twice\n"
	writeFile(t, path, content)

	table, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if table.Rows[0][1] != `said "hello", twice` {
		t.Errorf("cell = %q", table.Rows[0][1])
	}
	if err := table.Write(); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != content {
		t.Errorf("quoting applied:\ngot  %q\nwant %q", got, content)
	}
}

func TestReadCRLF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.tsv")
	writeFile(t, path, "a\tb\r\n1\t2\r\n")

	table, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if table.Header[1] != "b" || table.Rows[0][1] != "2" {
		t.Errorf("CR not stripped: header=%v rows=%v", table.Header, table.Rows)
	}
}

func TestReadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.tsv")
	writeFile(t, path, "")

	table, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if table.Header != nil || table.Rows != nil {
		t.Errorf("empty file should yield empty table: %+v", table)
	}
	if table.ColumnIndex("ref_id") != -1 {
		t.Error("ColumnIndex on empty table should be -1")
	}
}

func TestColumnIndexIsExact(t *testing.T) {
	table := &Table{Header: []string{"id", "Ref_ID", "ref_id"}}
	if got := table.ColumnIndex("ref_id"); got != 2 {
		t.Errorf("ColumnIndex(ref_id) = %d, want 2", got)
	}
	if got := table.ColumnIndex("missing"); got != -1 {
		t.Errorf("ColumnIndex(missing) = %d, want -1", got)
	}
}

func TestCellAndPadRow(t *testing.T) {
	table := &Table{
		Header: []string{"a", "b", "c"},
		Rows:   [][]string{{"1"}},
	}

	if got := table.Cell(0, 2); got != "" {
		t.Errorf("Cell beyond row = %q, want empty", got)
	}
	if got := table.Cell(0, 0); got != "1" {
		t.Errorf("Cell(0,0) = %q", got)
	}

	table.PadRow(0, 2)
	if len(table.Rows[0]) != 3 {
		t.Errorf("PadRow left %d cells, want 3", len(table.Rows[0]))
	}
	table.PadRow(0, 1) // already wide enough
	if len(table.Rows[0]) != 3 {
		t.Errorf("PadRow shrank row to %d cells", len(table.Rows[0]))
	}
}

func TestWalk(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "organisms", "organisms.tsv"), "id\n")
	writeFile(t, filepath.Join(dir, "compute", "costs.tsv"), "id\n")
	writeFile(t, filepath.Join(dir, "_metadata", "costs.tsv"), "id\n")
	writeFile(t, filepath.Join(dir, "references", "refs.tsv"), "id\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "not a table")

	all, err := Walk(dir)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("Walk found %d files, want 4: %v", len(all), all)
	}
	for i := 1; i < len(all); i++ {
		if all[i-1] > all[i] {
			t.Errorf("Walk output not sorted: %v", all)
		}
	}

	filtered, err := Walk(dir, "_metadata", "references")
	if err != nil {
		t.Fatalf("Walk with excludes: %v", err)
	}
	if len(filtered) != 2 {
		t.Errorf("filtered walk found %d files, want 2: %v", len(filtered), filtered)
	}
	for _, p := range filtered {
		if strings.Contains(p, "_metadata") || strings.Contains(p, "references") {
			t.Errorf("exclude leaked: %s", p)
		}
	}
}

func TestFindByName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b", "shared.tsv"), "id\n")
	writeFile(t, filepath.Join(dir, "a", "shared.tsv"), "id\n")
	writeFile(t, filepath.Join(dir, "a", "only.tsv"), "id\n")

	path, ok, err := FindByName(dir, "only.tsv")
	if err != nil || !ok {
		t.Fatalf("FindByName(only) = %v, %v", ok, err)
	}
	if filepath.Base(path) != "only.tsv" {
		t.Errorf("found %s", path)
	}

	// Duplicate names resolve to the lexically first path.
	path, ok, err = FindByName(dir, "shared.tsv")
	if err != nil || !ok {
		t.Fatalf("FindByName(shared) = %v, %v", ok, err)
	}
	if !strings.Contains(path, string(filepath.Separator)+"a"+string(filepath.Separator)) {
		t.Errorf("expected a/shared.tsv to win, got %s", path)
	}

	if _, ok, err := FindByName(dir, "nope.tsv"); err != nil || ok {
		t.Errorf("FindByName(nope) = %v, %v, want miss without error", ok, err)
	}
}
