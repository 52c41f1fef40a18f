package reconcile

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/brainemulation/reftab/internal/match"
	"github.com/brainemulation/reftab/internal/tabular"
)

// maxValueLen caps the source text recorded per unmapped value.
const maxValueLen = 200

// Unmapped is one source value that resolved to no bibliography entry.
// File is relative to the data directory; Row is 1-indexed with the
// header at row 1.
type Unmapped struct {
	File     string         `json:"file"`
	Row      int            `json:"row"`
	Column   string         `json:"column"`
	Value    string         `json:"value"`
	Category match.Category `json:"category"`
}

// UnmappedReport is the unmapped_sources.json document.
type UnmappedReport struct {
	Generated   string          `json:"_generated"`
	Description string          `json:"_description"`
	Summary     UnmappedSummary `json:"summary"`
	Unmapped    []Unmapped      `json:"unmapped"`
}

// UnmappedSummary counts unmapped values per category.
type UnmappedSummary struct {
	Total      int                    `json:"total"`
	ByCategory map[match.Category]int `json:"by_category"`
}

// FindUnmapped scans every source-like column under dataDir for values
// that resolve to no bibliography entry. Metadata and reference
// directories are excluded; so are empty sentinels and internal prose,
// which are not citations at all. Unreadable files are skipped, not
// fatal; a scan over dirty data must still produce its report.
func FindUnmapped(dataDir string, resolver *Resolver) ([]Unmapped, error) {
	paths, err := tabular.Walk(dataDir, "_metadata", "references")
	if err != nil {
		return nil, err
	}

	var unmapped []Unmapped
	for _, path := range paths {
		t, err := tabular.Read(path)
		if err != nil {
			continue
		}

		type sourceCol struct {
			idx  int
			name string
		}
		var cols []sourceCol
		for i, h := range t.Header {
			if match.IsSourceColumn(h) {
				cols = append(cols, sourceCol{i, h})
			}
		}
		if len(cols) == 0 {
			continue
		}

		rel := relPath(dataDir, path)
		for i, row := range t.Rows {
			rowNum := i + 2
			for _, col := range cols {
				if col.idx >= len(row) {
					continue
				}
				val := strings.TrimSpace(row[col.idx])
				if match.IsEmptySentinel(val) || match.IsInternalSource(val) {
					continue
				}
				if _, ok := resolver.Resolve(val); ok {
					continue
				}
				unmapped = append(unmapped, Unmapped{
					File:     rel,
					Row:      rowNum,
					Column:   col.name,
					Value:    truncateValue(val, maxValueLen),
					Category: match.Classify(val),
				})
			}
		}
	}
	return unmapped, nil
}

// NewUnmappedReport wraps scan results in the report document.
func NewUnmappedReport(items []Unmapped) UnmappedReport {
	if items == nil {
		items = []Unmapped{}
	}
	byCategory := make(map[match.Category]int)
	for _, item := range items {
		byCategory[item.Category]++
	}
	return UnmappedReport{
		Generated:   time.Now().UTC().Format(time.RFC3339),
		Description: "TSV source values that could not be matched to bibliography entries",
		Summary: UnmappedSummary{
			Total:      len(items),
			ByCategory: byCategory,
		},
		Unmapped: items,
	}
}

// relPath renders path relative to dir for reports, falling back to the
// full path when it cannot be relativized.
func relPath(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// truncateValue caps a value at max runes.
func truncateValue(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
