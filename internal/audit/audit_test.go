package audit

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAndGroup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "extraction_audit.json")
	content := `{
		"_generated": "2025-01-01T00:00:00Z",
		"extractions": [
			{"file": "organisms.tsv", "row": 2, "ref_id": "smith2020", "original": "https://doi.org/10.1/a"},
			{"file": "organisms.tsv", "row": 2, "ref_id": "jones2021"},
			{"file": "organisms.tsv", "row": 5, "ref_id": "text_ab12", "original": "internal estimate"},
			{"file": "costs.tsv", "row": 3, "ref_id": "brown2019"}
		]
	}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	log, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(log.Extractions) != 4 {
		t.Fatalf("loaded %d extractions, want 4", len(log.Extractions))
	}

	grouped := log.ByFile()
	if len(grouped) != 2 {
		t.Errorf("grouped into %d files, want 2", len(grouped))
	}

	org := grouped["organisms.tsv"]
	if len(org[2]) != 2 {
		t.Errorf("organisms row 2 has %d records, want 2", len(org[2]))
	}
	if org[2][0].RefID != "smith2020" || org[2][1].RefID != "jones2021" {
		t.Errorf("row 2 order not preserved: %+v", org[2])
	}
	if org[5][0].Original != "internal estimate" {
		t.Errorf("original text lost: %+v", org[5][0])
	}

	files := SortedFiles(grouped)
	if len(files) != 2 || files[0] != "costs.tsv" || files[1] != "organisms.tsv" {
		t.Errorf("SortedFiles = %v", files)
	}
	rows := SortedRows(org)
	if len(rows) != 2 || rows[0] != 2 || rows[1] != 5 {
		t.Errorf("SortedRows = %v", rows)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Load should fail on a missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"extractions": [`), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("Load should fail on malformed JSON")
	}
}
