package reconcile

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/brainemulation/reftab/internal/bib"
	"github.com/brainemulation/reftab/internal/match"
	"github.com/brainemulation/reftab/internal/tabular"
)

// How a table row uses a bibliography entry.
const (
	ViaRefID      = "ref_id"
	ViaSupporting = "supporting_refs"
	ViaSource     = "source"
)

// Usage is one occurrence of a bibliography entry in a table: either a
// literal ID in an identifier column, or a source value that resolved
// to the entry.
type Usage struct {
	RefID string `json:"ref_id"`
	File  string `json:"file"`
	Row   int    `json:"row"`
	Via   string `json:"via"`
}

// CollectUsage scans every TSV under dataDir, with no directory
// exclusions, and records each reference occurrence. Identifier columns
// contribute their literal values (minus empties, "none" placeholders
// and internal_ labels); source columns contribute whatever the
// resolver can match. Unreadable files are reported to warn and
// skipped.
func CollectUsage(dataDir string, resolver *Resolver, warn io.Writer) ([]Usage, error) {
	paths, err := tabular.Walk(dataDir)
	if err != nil {
		return nil, err
	}

	var usage []Usage
	for _, path := range paths {
		t, err := tabular.Read(path)
		if err != nil {
			fmt.Fprintf(warn, "error processing %s: %v\n", path, err)
			continue
		}

		refIdx := t.ColumnIndex("ref_id")
		supIdx := t.ColumnIndex("supporting_refs")
		var sourceIdxs []int
		for i, h := range t.Header {
			if match.IsSourceColumn(h) {
				sourceIdxs = append(sourceIdxs, i)
			}
		}
		if refIdx == -1 && supIdx == -1 && len(sourceIdxs) == 0 {
			continue
		}

		rel := relPath(dataDir, path)
		for i, row := range t.Rows {
			rowNum := i + 2

			if refIdx != -1 && refIdx < len(row) {
				if id := strings.TrimSpace(row[refIdx]); isUsableID(id) {
					usage = append(usage, Usage{RefID: id, File: rel, Row: rowNum, Via: ViaRefID})
				}
			}

			if supIdx != -1 && supIdx < len(row) {
				for _, part := range strings.Split(row[supIdx], ";") {
					if id := strings.TrimSpace(part); isUsableID(id) {
						usage = append(usage, Usage{RefID: id, File: rel, Row: rowNum, Via: ViaSupporting})
					}
				}
			}

			for _, idx := range sourceIdxs {
				if idx >= len(row) {
					continue
				}
				val := strings.TrimSpace(row[idx])
				if val == "" {
					continue
				}
				if id, ok := resolver.Resolve(val); ok {
					usage = append(usage, Usage{RefID: id, File: rel, Row: rowNum, Via: ViaSource})
				}
			}
		}
	}
	return usage, nil
}

// isUsableID filters identifier-column values down to real
// bibliography keys.
func isUsableID(id string) bool {
	return id != "" && id != "none" && !match.IsInternalRef(id)
}

// UsageSets splits collected usage into the two ID sets the orphan
// report compares: IDs cited literally in identifier columns, and IDs
// reached only through source-value resolution.
func UsageSets(usage []Usage) (viaColumns, viaSource map[string]bool) {
	viaColumns = make(map[string]bool)
	viaSource = make(map[string]bool)
	for _, u := range usage {
		switch u.Via {
		case ViaRefID, ViaSupporting:
			viaColumns[u.RefID] = true
		case ViaSource:
			viaSource[u.RefID] = true
		}
	}
	return viaColumns, viaSource
}

// OrphanReport is the orphaned_entries.json document.
type OrphanReport struct {
	Generated     string               `json:"_generated"`
	Description   string               `json:"_description"`
	Note          string               `json:"_note"`
	Summary       OrphanSummary        `json:"summary"`
	TrulyOrphaned []string             `json:"truly_orphaned"`
	SourceOnly    []string             `json:"referenced_via_source_only"`
	Entries       map[string]bib.Entry `json:"entries"`
}

// OrphanSummary counts entries by usage class. UsedViaRefID counts
// distinct identifier-column values, which can include dangling IDs
// that name no bibliography entry.
type OrphanSummary struct {
	TotalEntries  int `json:"total_bibliography_entries"`
	UsedViaRefID  int `json:"used_via_ref_id_column"`
	SourceOnly    int `json:"used_via_source_doi_column_only"`
	TrulyOrphaned int `json:"truly_orphaned"`
}

// BuildOrphanReport classifies every bibliography ID against the usage
// sets. An entry is truly orphaned when neither set contains it; full
// entry details are attached for those so the report stands alone.
func BuildOrphanReport(store *bib.Store, viaColumns, viaSource map[string]bool) OrphanReport {
	ids := store.IDSet()

	var trulyOrphaned, sourceOnly []string
	for id := range ids {
		if !viaColumns[id] && !viaSource[id] {
			trulyOrphaned = append(trulyOrphaned, id)
		}
	}
	for id := range viaSource {
		if !viaColumns[id] {
			sourceOnly = append(sourceOnly, id)
		}
	}
	sort.Strings(trulyOrphaned)
	sort.Strings(sourceOnly)
	if trulyOrphaned == nil {
		trulyOrphaned = []string{}
	}
	if sourceOnly == nil {
		sourceOnly = []string{}
	}

	entries := make(map[string]bib.Entry)
	orphanSet := make(map[string]bool, len(trulyOrphaned))
	for _, id := range trulyOrphaned {
		orphanSet[id] = true
	}
	for i := range store.References {
		if orphanSet[store.References[i].ID] {
			entries[store.References[i].ID] = store.References[i]
		}
	}

	return OrphanReport{
		Generated:   time.Now().UTC().Format(time.RFC3339),
		Description: "Orphaned bibliography entries for investigation",
		Note:        "These entries are in bibliography.json but may not be actively referenced",
		Summary: OrphanSummary{
			TotalEntries:  len(ids),
			UsedViaRefID:  len(viaColumns),
			SourceOnly:    len(sourceOnly),
			TrulyOrphaned: len(trulyOrphaned),
		},
		TrulyOrphaned: trulyOrphaned,
		SourceOnly:    sourceOnly,
		Entries:       entries,
	}
}
