package storage

import (
	"path/filepath"
	"testing"

	"github.com/brainemulation/reftab/internal/bib"
	"github.com/brainemulation/reftab/internal/reconcile"
)

// setupTestDB creates a cache populated with a small bibliography.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	entries := []bib.Entry{
		{
			ID:    "smith2020",
			Type:  "article-journal",
			Title: "Neural Circuit Mapping",
			Authors: []bib.Author{
				{Family: "Smith", Given: "Ada"},
				{Family: "Jones", Given: "Ben"},
			},
			Issued:         &bib.Date{DateParts: [][]int{{2020, 4}}},
			ContainerTitle: "Nature Methods",
			DOI:            "10.1234/smith",
		},
		{
			ID:      "microns2021",
			Type:    "article-journal",
			Title:   "Functional connectomics of mouse visual cortex",
			Authors: []bib.Author{{Literal: "MICrONS Consortium"}},
			Issued:  &bib.Date{DateParts: [][]int{{2021}}},
			DOI:     "10.1101/2021.07.28.454025",
		},
		{
			ID:    "nvidia2024",
			Type:  "webpage",
			Title: "H100 Tensor Core GPU",
			URL:   "https://www.nvidia.com/en-us/data-center/h100/",
		},
	}
	usage := []reconcile.Usage{
		{RefID: "smith2020", File: "organisms/organisms.tsv", Row: 2, Via: reconcile.ViaRefID},
		{RefID: "smith2020", File: "compute/costs.tsv", Row: 7, Via: reconcile.ViaSupporting},
		{RefID: "microns2021", File: "connectomics/datasets.tsv", Row: 3, Via: reconcile.ViaSource},
	}

	db, err := Open(filepath.Join(t.TempDir(), "refs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	n, err := db.Rebuild(entries, usage)
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if n != 3 {
		t.Fatalf("Rebuild inserted %d entries, want 3", n)
	}

	return db
}

func TestOpenCreatesSchema(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "refs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	n, err := db.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Errorf("Count = %d, want 0", n)
	}
}

func TestGetByID(t *testing.T) {
	db := setupTestDB(t)

	ref, err := db.GetByID("smith2020")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if ref == nil {
		t.Fatal("GetByID returned nil for existing entry")
	}
	if ref.Title != "Neural Circuit Mapping" || ref.Year != 2020 || ref.DOI != "10.1234/smith" {
		t.Errorf("ref = %+v", ref)
	}
	if len(ref.Authors) != 2 || ref.Authors[0].Family != "Smith" {
		t.Errorf("authors = %+v", ref.Authors)
	}
	if ref.UsageCount != 2 {
		t.Errorf("UsageCount = %d, want 2", ref.UsageCount)
	}

	missing, err := db.GetByID("nope")
	if err != nil {
		t.Fatalf("GetByID missing: %v", err)
	}
	if missing != nil {
		t.Errorf("GetByID(nope) = %+v, want nil", missing)
	}
}

func TestSearch(t *testing.T) {
	db := setupTestDB(t)

	refs, err := db.Search("connectomics", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(refs) != 1 || refs[0].ID != "microns2021" {
		t.Errorf("Search(connectomics) = %+v", refs)
	}
	if refs[0].UsageCount != 1 {
		t.Errorf("UsageCount = %d, want 1", refs[0].UsageCount)
	}

	refs, err = db.Search("quantum gravity", 10)
	if err != nil {
		t.Fatalf("Search no hits: %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("Search(no hits) = %+v", refs)
	}
}

func TestSearchField(t *testing.T) {
	db := setupTestDB(t)

	refs, err := db.SearchField("author", "Smith", 10)
	if err != nil {
		t.Fatalf("SearchField: %v", err)
	}
	if len(refs) != 1 || refs[0].ID != "smith2020" {
		t.Errorf("SearchField(author, Smith) = %+v", refs)
	}

	refs, err = db.SearchField("title", "H100", 10)
	if err != nil {
		t.Fatalf("SearchField title: %v", err)
	}
	if len(refs) != 1 || refs[0].ID != "nvidia2024" {
		t.Errorf("SearchField(title, H100) = %+v", refs)
	}

	if _, err := db.SearchField("venue", "Nature", 10); err == nil {
		t.Error("SearchField should reject unknown fields")
	}
}

func TestSearchLimit(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "refs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	entries := []bib.Entry{
		{ID: "a2020", Title: "Synaptic plasticity in worms"},
		{ID: "b2021", Title: "Synaptic plasticity in flies"},
	}
	if _, err := db.Rebuild(entries, nil); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	refs, err := db.Search("plasticity", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(refs) != 1 {
		t.Errorf("limit ignored: %+v", refs)
	}

	refs, err = db.Search("plasticity", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(refs) != 2 {
		t.Errorf("expected both matches: %+v", refs)
	}
}

func TestUsageFor(t *testing.T) {
	db := setupTestDB(t)

	usage, err := db.UsageFor("smith2020")
	if err != nil {
		t.Fatalf("UsageFor: %v", err)
	}
	if len(usage) != 2 {
		t.Fatalf("usage = %+v", usage)
	}
	// Ordered by file, then row.
	if usage[0].File != "compute/costs.tsv" || usage[1].File != "organisms/organisms.tsv" {
		t.Errorf("usage order = %+v", usage)
	}

	none, err := db.UsageFor("nope")
	if err != nil {
		t.Fatalf("UsageFor missing: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("usage for unknown = %+v", none)
	}
}

func TestRebuildReplacesEverything(t *testing.T) {
	db := setupTestDB(t)

	n, err := db.Rebuild([]bib.Entry{{ID: "only2022", Title: "Sole survivor"}}, nil)
	if err != nil {
		t.Fatalf("second Rebuild: %v", err)
	}
	if n != 1 {
		t.Errorf("Rebuild = %d, want 1", n)
	}

	if ref, _ := db.GetByID("smith2020"); ref != nil {
		t.Error("old entry survived rebuild")
	}
	if ref, _ := db.GetByID("only2022"); ref == nil {
		t.Error("new entry missing after rebuild")
	}
	if usage, _ := db.UsageFor("smith2020"); len(usage) != 0 {
		t.Error("old usage survived rebuild")
	}

	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("Count = %d, want 1", count)
	}
}

func TestPrepareFTSQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"phylogenetics", "phylogenetics"},
		{"  spaced  ", "spaced"},
		{"", ""},
		{`with "quotes"`, `"with ""quotes"""`},
		{"wild*card", `"wild*card"`},
		{"colon:term", `"colon:term"`},
	}
	for _, tt := range tests {
		if got := prepareFTSQuery(tt.in); got != tt.want {
			t.Errorf("prepareFTSQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
