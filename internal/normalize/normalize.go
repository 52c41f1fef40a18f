// Package normalize cleans the ref_id convention in place: "none"
// placeholders become empty cells, internal_ labels move into the
// ref_note column as prose, and any remaining ref_id that names no
// bibliography entry is flagged for a human. Flagged rows are never
// mutated; the job reports them and moves on.
package normalize

import (
	"fmt"
	"strings"

	"github.com/brainemulation/reftab/internal/match"
	"github.com/brainemulation/reftab/internal/tabular"
)

// Change descriptions, as they appear in reports.
const (
	ChangeNoneCleared         = `Replaced "none" with empty`
	ChangeMovedToNote         = "Moved to ref_note"
	ChangeClearedNoNoteColumn = "Cleared internal label (no ref_note column)"
	ChangeWarning             = "WARNING: ref_id not in bibliography"
)

// Change records one row edit or warning.
type Change struct {
	File   string `json:"file"`
	Row    int    `json:"row"`
	Change string `json:"change"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// Summary buckets changes by kind.
type Summary struct {
	Total     int `json:"total"`
	NoneFixes int `json:"none_to_empty"`
	NoteMoves int `json:"internal_to_ref_note"`
	Warnings  int `json:"warnings"`
}

// Summarize tallies a change list.
func Summarize(changes []Change) Summary {
	s := Summary{Total: len(changes)}
	for _, c := range changes {
		switch c.Change {
		case ChangeNoneCleared:
			s.NoneFixes++
		case ChangeMovedToNote, ChangeClearedNoNoteColumn:
			s.NoteMoves++
		case ChangeWarning:
			s.Warnings++
		}
	}
	return s
}

// File normalizes one table in memory and returns what changed. Tables
// without a ref_id column are left alone. The caller persists the
// mutated table (only when applying and something changed); previews
// run the same mutations but never write.
func File(t *tabular.Table, bibIDs map[string]bool) []Change {
	var changes []Change

	refIdx := t.ColumnIndex("ref_id")
	if refIdx == -1 {
		return changes
	}
	noteIdx := t.ColumnIndex("ref_note")

	pad := refIdx
	if noteIdx > pad {
		pad = noteIdx
	}

	for i := range t.Rows {
		rowNum := i + 2
		t.PadRow(i, pad)

		original := t.Rows[i][refIdx]
		refID := strings.TrimSpace(original)

		switch {
		case refID == "none":
			t.Rows[i][refIdx] = ""
			changes = append(changes, Change{
				File:   t.Path,
				Row:    rowNum,
				Change: ChangeNoneCleared,
				Before: original,
				After:  "",
			})

		case match.IsInternalRef(refID):
			t.Rows[i][refIdx] = ""
			if noteIdx == -1 {
				changes = append(changes, Change{
					File:   t.Path,
					Row:    rowNum,
					Change: ChangeClearedNoNoteColumn,
					Before: original,
					After:  `ref_id=""`,
				})
				continue
			}
			label := match.DeriveInternalLabel(refID)
			if existing := strings.TrimSpace(t.Rows[i][noteIdx]); existing != "" {
				t.Rows[i][noteIdx] = existing + "; " + label
			} else {
				t.Rows[i][noteIdx] = label
			}
			changes = append(changes, Change{
				File:   t.Path,
				Row:    rowNum,
				Change: ChangeMovedToNote,
				Before: original,
				After:  fmt.Sprintf(`ref_id="", ref_note="%s"`, t.Rows[i][noteIdx]),
			})

		case refID != "" && !bibIDs[refID]:
			changes = append(changes, Change{
				File:   t.Path,
				Row:    rowNum,
				Change: ChangeWarning,
				Before: original,
				After:  "(needs manual fix or bibliography addition)",
			})
		}
	}

	return changes
}
