package dist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/brainemulation/reftab/internal/tabular"
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

func TestFormatRowCount(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, "0"},
		{5, "5"},
		{9, "9"},
		{10, "10+"},
		{19, "10+"},
		{20, "20+"},
		{29, "20+"},
		{30, "30+"},
		{49, "30+"},
		{50, "50+"},
		{99, "50+"},
		{100, "100+"},
		{250, "100+"},
	}
	for _, tt := range tests {
		if got := formatRowCount(tt.count); got != tt.want {
			t.Errorf("formatRowCount(%d) = %q, want %q", tt.count, got, tt.want)
		}
	}
}

func TestDatasetID(t *testing.T) {
	tests := []struct {
		stem string
		want string
	}{
		{"organisms", "organisms"},
		{"compute-requirements", "compute-requirements"},
		{"shared_params", "shared_params"},
		{"neural-data.v2", "neural_data.v2"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := datasetID(tt.stem); got != tt.want {
			t.Errorf("datasetID(%q) = %q, want %q", tt.stem, got, tt.want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"compute requirements", "Compute Requirements"},
		{"h100 gpu", "H100 Gpu"},
		{"shared_params", "Shared_Params"},
		{"ALL CAPS", "All Caps"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := titleCase(tt.in); got != tt.want {
			t.Errorf("titleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCountDataRows(t *testing.T) {
	table := &tabular.Table{
		Header: []string{"id", "name"},
		Rows: [][]string{
			{"a", "one"},
			{""},
			{"", "", ""},
			{"b", "two"},
		},
	}
	// Blank and tabs-only lines do not count.
	if got := countDataRows(table); got != 2 {
		t.Errorf("countDataRows = %d, want 2", got)
	}

	empty := &tabular.Table{}
	if got := countDataRows(empty); got != 0 {
		t.Errorf("countDataRows(empty) = %d, want 0", got)
	}
}

func TestBuild(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	metadataDir := filepath.Join(dataDir, "_metadata")
	distDir := filepath.Join(root, "dist", "data")

	writeFile(t, filepath.Join(dataDir, "organisms", "organisms.tsv"),
		"id\tname\tneurons\n"+
			"c_elegans\tC. elegans\t302\n"+
			"mouse\tMouse\t71000000\n"+
			"human\tHuman\t86000000000\n")

	var computeRows strings.Builder
	computeRows.WriteString("name\tcompute_pflops\n")
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&computeRows, "organism%d\t%d\n", i, i)
	}
	writeFile(t, filepath.Join(dataDir, "compute", "compute-requirements.tsv"), computeRows.String())

	// No display configuration exists for "notes": copied, not listed.
	writeFile(t, filepath.Join(dataDir, "notes", "scratch.tsv"), "a\tb\n1\t2\n")

	// Sidecars under _metadata must not be published as datasets.
	writeFile(t, filepath.Join(metadataDir, "organisms", "organisms.json"),
		`{"title": "Model Organism Reference", "source": "External Lab", "license": "CC BY 4.0"}`)
	writeFile(t, filepath.Join(metadataDir, "stray.tsv"), "x\n1\n")

	src := filepath.Join(dataDir, "organisms", "organisms.tsv")
	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(src, stamp, stamp); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	result, err := Build(dataDir, metadataDir, distDir)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.FilesCopied != 3 {
		t.Errorf("files copied = %d, want 3", result.FilesCopied)
	}
	if result.Categories["organisms"] != 1 || result.Categories["compute"] != 1 || result.Categories["notes"] != 1 {
		t.Errorf("categories = %v", result.Categories)
	}

	// Copies land at mirrored paths with the source mtime.
	copied := filepath.Join(distDir, "organisms", "organisms.tsv")
	info, err := os.Stat(copied)
	if err != nil {
		t.Fatalf("copied file missing: %v", err)
	}
	if info.ModTime().Unix() != stamp.Unix() {
		t.Errorf("mtime = %v, want %v", info.ModTime(), stamp)
	}
	if _, err := os.Stat(filepath.Join(distDir, "notes", "scratch.tsv")); err != nil {
		t.Errorf("unlisted category should still be copied: %v", err)
	}
	if _, err := os.Stat(filepath.Join(distDir, "_metadata", "stray.tsv")); !os.IsNotExist(err) {
		t.Error("files under _metadata should not be published")
	}

	data, err := os.ReadFile(result.MetadataPath)
	if err != nil {
		t.Fatalf("manifest missing: %v", err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatalf("manifest does not parse: %v", err)
	}

	// Categories follow the configured order: compute before organisms,
	// and "notes" is absent.
	if len(meta.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(meta.Categories))
	}
	if meta.Categories[0].ID != "compute" || meta.Categories[1].ID != "organisms" {
		t.Errorf("category order = %s, %s", meta.Categories[0].ID, meta.Categories[1].ID)
	}

	compute := meta.Categories[0].Datasets[0]
	if compute.ID != "compute-requirements" {
		t.Errorf("id = %q", compute.ID)
	}
	if compute.Title != "Compute Requirements" {
		t.Errorf("derived title = %q", compute.Title)
	}
	if compute.Description != "Data from compute-requirements.tsv" {
		t.Errorf("derived description = %q", compute.Description)
	}
	if compute.Rows != "10+" {
		t.Errorf("rows = %q, want 10+", compute.Rows)
	}
	if compute.Path != "data/compute" {
		t.Errorf("path = %q", compute.Path)
	}

	organisms := meta.Categories[1].Datasets[0]
	if organisms.Title != "Model Organism Reference" {
		t.Errorf("sidecar title not applied: %q", organisms.Title)
	}
	if organisms.Source != "External Lab" {
		t.Errorf("source = %q", organisms.Source)
	}
	if organisms.License != "" {
		t.Errorf("default license should be omitted, got %q", organisms.License)
	}
	if organisms.Rows != "3" {
		t.Errorf("rows = %q, want 3", organisms.Rows)
	}
	if len(organisms.Columns) != 3 || organisms.Columns[0] != "id" {
		t.Errorf("columns = %v", organisms.Columns)
	}

	if meta.GitHub.Repo == "" || meta.License.Name != "CC BY 4.0" {
		t.Errorf("fixed blocks missing: %+v %+v", meta.GitHub, meta.License)
	}
}

func TestBuildMetadataNoFiles(t *testing.T) {
	meta, err := BuildMetadata(map[string][]string{}, t.TempDir())
	if err != nil {
		t.Fatalf("BuildMetadata: %v", err)
	}
	if meta.Categories == nil || len(meta.Categories) != 0 {
		t.Errorf("categories = %v, want empty", meta.Categories)
	}
	if meta.License.Attribution == "" {
		t.Error("license block should always be present")
	}
}

func TestDatasetEntryMalformedSidecar(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "costs", "megaprojects.tsv"), "name\tcost\nLHC\t9e9\n")
	writeFile(t, filepath.Join(root, "_metadata", "costs", "megaprojects.json"), "{not json")

	_, err := datasetEntry(filepath.Join(root, "costs", "megaprojects.tsv"), "costs", filepath.Join(root, "_metadata"))
	if err == nil {
		t.Fatal("expected error for malformed sidecar")
	}
}
