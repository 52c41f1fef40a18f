// Package dist publishes the data/ tree: it mirrors every TSV file
// into the dist directory and generates the consolidated _metadata.json
// manifest the site reads.
package dist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/brainemulation/reftab/internal/config"
	"github.com/brainemulation/reftab/internal/tabular"
)

// Values treated as repo defaults. Matching sidecar values are omitted
// from dataset entries since the manifest-level blocks already carry
// them.
const (
	reportSource  = "State of Brain Emulation Report 2025"
	reportLicense = "CC BY 4.0"
)

// CategoryInfo is the display configuration for one data/ subdirectory.
// Directories without an entry here are still copied but are not listed
// in the manifest.
type CategoryInfo struct {
	ID          string
	Title       string
	Description string
	Icon        string
}

// Categories defines the manifest ordering and display text.
var Categories = []CategoryInfo{
	{"simulations", "Neural Simulations", "Comprehensive data on computational brain models and neural simulations across organisms.", "cpu"},
	{"recordings", "Neural Recordings", "Historical and contemporary data on neural recording techniques, capabilities, and information rates.", "activity"},
	{"connectomics", "Connectomics", "Data on brain connectivity mapping at various resolutions, from synaptic to regional scales.", "share-2"},
	{"compute", "Compute & Hardware", "Computational requirements and hardware data for AI and neural simulations.", "zap"},
	{"costs", "Costs & Funding", "Economic analysis of neuroscience projects, hardware costs, and comparisons to other megaprojects.", "dollar-sign"},
	{"imaging", "Imaging", "Neuroimaging technologies and modalities.", "eye"},
	{"organisms", "Model Organisms", "Reference data on model organisms used in neuroscience research.", "database"},
	{"initiatives", "Brain Initiatives", "Overview of major brain research programs and their goals.", "globe"},
	{"formulas", "Calculator Formulas", "Formula definitions for the brain emulation calculator.", "calculator"},
	{"parameters", "Shared Parameters", "Shared parameter definitions used across calculations.", "settings"},
	{"recording", "Recording Capabilities", "Neural recording capabilities and costs by organism.", "radio"},
}

// Dataset is one published TSV file in the manifest.
type Dataset struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Filename    string   `json:"filename"`
	Path        string   `json:"path"`
	Rows        string   `json:"rows"`
	Columns     []string `json:"columns"`
	Source      string   `json:"source,omitempty"`
	License     string   `json:"license,omitempty"`
}

// Category groups the datasets of one data/ subdirectory.
type Category struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Datasets    []Dataset `json:"datasets"`
}

// GitHub points readers at the canonical repository.
type GitHub struct {
	Repo      string `json:"repo"`
	DataPath  string `json:"dataPath"`
	IssuesURL string `json:"issuesUrl"`
}

// License is the manifest-level license block.
type License struct {
	Name        string `json:"name"`
	FullName    string `json:"fullName"`
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
}

// Metadata is the full _metadata.json document.
type Metadata struct {
	Categories []Category `json:"categories"`
	GitHub     GitHub     `json:"github"`
	License    License    `json:"license"`
}

var githubInfo = GitHub{
	Repo:      "https://github.com/mxschons/sobe-2025-data-repository",
	DataPath:  "data",
	IssuesURL: "https://github.com/mxschons/sobe-2025-data-repository/issues",
}

var licenseInfo = License{
	Name:        reportLicense,
	FullName:    "Creative Commons Attribution 4.0 International",
	URL:         "https://creativecommons.org/licenses/by/4.0/",
	Attribution: "Zanichelli & Schons et al., State of Brain Emulation Report 2025",
}

// fileMetadata is the hand-written sidecar at
// <metadataDir>/<category>/<stem>.json. All fields are optional.
type fileMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"`
	License     string `json:"license"`
}

// Result summarizes one build.
type Result struct {
	FilesCopied  int            `json:"files_copied"`
	Categories   map[string]int `json:"categories"`
	MetadataPath string         `json:"metadata_path"`
}

// Build mirrors the TSV files under dataDir into distDir and writes the
// manifest. metadataDir holds the per-file sidecar overrides.
func Build(dataDir, metadataDir, distDir string) (*Result, error) {
	copied, err := copyDataFiles(dataDir, distDir)
	if err != nil {
		return nil, err
	}

	meta, err := BuildMetadata(copied, metadataDir)
	if err != nil {
		return nil, err
	}

	metaPath := filepath.Join(distDir, config.DistMetadataFile)
	if err := writeMetadata(metaPath, meta); err != nil {
		return nil, err
	}

	result := &Result{
		Categories:   make(map[string]int, len(copied)),
		MetadataPath: metaPath,
	}
	for category, files := range copied {
		result.Categories[category] = len(files)
		result.FilesCopied += len(files)
	}
	return result, nil
}

// copyDataFiles mirrors every TSV under dataDir into distDir, keeping
// the directory structure and modification times. The _metadata
// directory itself is not published. Returns the copied dist paths
// grouped by category, where the category is the first path component
// under dataDir.
func copyDataFiles(dataDir, distDir string) (map[string][]string, error) {
	paths, err := tabular.Walk(dataDir)
	if err != nil {
		return nil, err
	}

	copied := make(map[string][]string)
	for _, src := range paths {
		rel, err := filepath.Rel(dataDir, src)
		if err != nil {
			return nil, fmt.Errorf("relativizing %s: %w", src, err)
		}
		parts := strings.Split(rel, string(filepath.Separator))
		if hasPart(parts, "_metadata") {
			continue
		}

		dst := filepath.Join(distDir, rel)
		if err := copyFile(src, dst); err != nil {
			return nil, err
		}
		category := parts[0]
		copied[category] = append(copied[category], dst)
	}
	return copied, nil
}

// BuildMetadata assembles the manifest for the copied files, following
// the Categories ordering. copied maps category to dist file paths.
func BuildMetadata(copied map[string][]string, metadataDir string) (*Metadata, error) {
	meta := &Metadata{
		Categories: []Category{},
		GitHub:     githubInfo,
		License:    licenseInfo,
	}

	for _, info := range Categories {
		files, ok := copied[info.ID]
		if !ok {
			continue
		}
		sorted := append([]string(nil), files...)
		sort.Strings(sorted)

		datasets := make([]Dataset, 0, len(sorted))
		for _, path := range sorted {
			entry, err := datasetEntry(path, info.ID, metadataDir)
			if err != nil {
				return nil, err
			}
			datasets = append(datasets, entry)
		}
		if len(datasets) == 0 {
			continue
		}

		meta.Categories = append(meta.Categories, Category{
			ID:          info.ID,
			Title:       info.Title,
			Description: info.Description,
			Icon:        info.Icon,
			Datasets:    datasets,
		})
	}
	return meta, nil
}

// datasetEntry describes one published TSV file, merging in its sidecar
// metadata when one exists.
func datasetEntry(path, category, metadataDir string) (Dataset, error) {
	filename := filepath.Base(path)
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))

	t, err := tabular.Read(path)
	if err != nil {
		return Dataset{}, err
	}

	entry := Dataset{
		ID:          datasetID(stem),
		Title:       titleCase(strings.ReplaceAll(stem, "-", " ")),
		Description: "Data from " + filename,
		Filename:    filename,
		Path:        "data/" + category,
		Rows:        formatRowCount(countDataRows(t)),
		Columns:     tableColumns(t),
	}

	sidecar, err := loadFileMetadata(metadataDir, category, stem)
	if err != nil {
		return Dataset{}, err
	}
	if sidecar != nil {
		if sidecar.Title != "" {
			entry.Title = sidecar.Title
		}
		if sidecar.Description != "" {
			entry.Description = sidecar.Description
		}
		if sidecar.Source != "" && sidecar.Source != reportSource {
			entry.Source = sidecar.Source
		}
		if sidecar.License != "" && sidecar.License != reportLicense {
			entry.License = sidecar.License
		}
	}
	return entry, nil
}

// loadFileMetadata reads the sidecar for category/stem, returning nil
// when none exists.
func loadFileMetadata(metadataDir, category, stem string) (*fileMetadata, error) {
	path := filepath.Join(metadataDir, category, stem+".json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading metadata sidecar: %w", err)
	}
	var meta fileMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &meta, nil
}

// writeMetadata writes the manifest with two-space indentation.
func writeMetadata(path string, meta *Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// copyFile copies src to dst, creating parent directories and carrying
// over the source modification time.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stating %s: %w", src, err)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return fmt.Errorf("copying to %s: %w", dst, err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("preserving mtime of %s: %w", dst, err)
	}
	return nil
}

// countDataRows counts the non-blank lines of a table, excluding the
// header line. Lines of only whitespace or tabs do not count.
func countDataRows(t *tabular.Table) int {
	nonBlank := 0
	if strings.TrimSpace(strings.Join(t.Header, "\t")) != "" {
		nonBlank++
	}
	for _, row := range t.Rows {
		if strings.TrimSpace(strings.Join(row, "\t")) != "" {
			nonBlank++
		}
	}
	if nonBlank == 0 {
		return 0
	}
	return nonBlank - 1
}

// tableColumns returns the header names with surrounding whitespace
// and empty edge cells trimmed away.
func tableColumns(t *tabular.Table) []string {
	line := strings.TrimSpace(strings.Join(t.Header, "\t"))
	return strings.Split(line, "\t")
}

// formatRowCount buckets a row count for display.
func formatRowCount(count int) string {
	switch {
	case count >= 100:
		return "100+"
	case count >= 50:
		return "50+"
	case count >= 30:
		return "30+"
	case count >= 20:
		return "20+"
	case count >= 10:
		return "10+"
	default:
		return fmt.Sprintf("%d", count)
	}
}

// datasetID derives a manifest ID from a filename stem. Stems made of
// letters, digits, dashes, and underscores keep their dashes; any other
// punctuation in the stem switches the dashes to underscores.
func datasetID(stem string) string {
	underscored := strings.ReplaceAll(stem, "-", "_")
	if isAlnum(strings.ReplaceAll(underscored, "_", "")) {
		return stem
	}
	return underscored
}

func hasPart(parts []string, name string) bool {
	for _, p := range parts {
		if p == name {
			return true
		}
	}
	return false
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// titleCase uppercases the first letter of every word, where a word
// starts after any non-letter. Digits reset word starts, so "h100 gpu"
// becomes "H100 Gpu".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r):
			b.WriteRune(r)
			prevLetter = false
		case prevLetter:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(unicode.ToUpper(r))
			prevLetter = true
		}
	}
	return b.String()
}
