// Package backfill replays the extraction audit log against the TSV
// tables, writing extracted reference IDs into ref_id cells that are
// still empty. Cells that already name a reference are never touched,
// so the job is idempotent: a second run over its own output changes
// nothing. Rows whose source cells no longer hold the text the audit
// recorded are reported as mismatches and left alone.
package backfill

import (
	"strings"

	"github.com/brainemulation/reftab/internal/audit"
	"github.com/brainemulation/reftab/internal/match"
	"github.com/brainemulation/reftab/internal/tabular"
)

// Row outcome statuses.
const (
	StatusBackfilled      = "backfilled"
	StatusAlreadyHas      = "already_has_ref_id"
	StatusSkippedInternal = "skipped_internal"
	StatusInternalNoted   = "internal_source_noted"
	StatusOutOfRange      = "row_out_of_range"
	StatusRowMismatch     = "row_mismatch"
)

// File outcome statuses.
const (
	FileProcessed     = "processed"
	FileNoRefIDColumn = "no_ref_id_column"
	FileNotFound      = "file_not_found"
)

// SkippedRef is a text-hash extraction that was not written back.
type SkippedRef struct {
	RefID    string `json:"ref_id"`
	Original string `json:"original"`
}

// RowChange records the outcome for one audited row.
type RowChange struct {
	Row           int          `json:"row"`
	Status        string       `json:"status"`
	RefID         string       `json:"ref_id,omitempty"`
	Existing      string       `json:"existing,omitempty"`
	Supporting    []string     `json:"supporting_refs,omitempty"`
	RefNote       string       `json:"ref_note,omitempty"`
	Skipped       []SkippedRef `json:"skipped_internal,omitempty"`
	AuditedSource string       `json:"audited_source,omitempty"`
	FoundSource   string       `json:"found_source,omitempty"`
	TotalRows     int          `json:"total_rows,omitempty"`
}

// FileResult is the outcome for one table.
type FileResult struct {
	File    string      `json:"file"`
	Status  string      `json:"status"`
	Changes []RowChange `json:"changes"`
}

// Backfilled reports whether any row was actually backfilled, which is
// the condition for rewriting the file.
func (r FileResult) Backfilled() bool {
	for _, c := range r.Changes {
		if c.Status == StatusBackfilled {
			return true
		}
	}
	return false
}

// Stats aggregates row outcomes across files.
type Stats struct {
	FilesProcessed      int `json:"files_processed"`
	RowsBackfilled      int `json:"rows_backfilled"`
	SupportingRefsAdded int `json:"supporting_refs_added"`
	RowsSkippedInternal int `json:"rows_skipped_internal"`
	RowsAlreadyHave     int `json:"rows_already_have_ref_id"`
	RowsOutOfRange      int `json:"rows_out_of_range"`
	RowsMismatched      int `json:"rows_mismatched"`
}

// Add tallies one file's outcome. Missing files carry no row outcomes
// and do not count as processed.
func (s *Stats) Add(result FileResult) {
	if result.Status == FileNotFound {
		return
	}
	s.FilesProcessed++
	for _, c := range result.Changes {
		switch c.Status {
		case StatusBackfilled:
			s.RowsBackfilled++
			s.SupportingRefsAdded += len(c.Supporting)
		case StatusSkippedInternal, StatusInternalNoted:
			s.RowsSkippedInternal++
		case StatusAlreadyHas:
			s.RowsAlreadyHave++
		case StatusOutOfRange:
			s.RowsOutOfRange++
		case StatusRowMismatch:
			s.RowsMismatched++
		}
	}
}

// File applies one table's audited extractions to the table in memory
// and reports what happened per row. The caller decides whether to
// write the mutated table back (only when Backfilled() and not a dry
// run). With dryRun set, cells are left untouched but outcomes are
// reported as if they had been written.
//
// Audit rows are 1-indexed with the header at row 1, so table index
// row-2. Row numbering is only trusted as far as it can be verified:
// when the audit recorded the source text an ID was minted from, the
// row must still hold that text in a source-like column, or the row is
// reported as a mismatch and nothing is written. Rows are processed in
// ascending order for stable reports.
func File(t *tabular.Table, byRow map[int][]audit.Record, dryRun bool) FileResult {
	result := FileResult{
		File:    t.Path,
		Status:  FileProcessed,
		Changes: []RowChange{},
	}

	refIDIdx := t.ColumnIndex("ref_id")
	if refIDIdx == -1 {
		result.Status = FileNoRefIDColumn
		return result
	}
	supportingIdx := t.ColumnIndex("supporting_refs")
	noteIdx := t.ColumnIndex("ref_note")
	var sourceIdxs []int
	for i, h := range t.Header {
		if match.IsSourceColumn(h) {
			sourceIdxs = append(sourceIdxs, i)
		}
	}

	for _, rowNum := range audit.SortedRows(byRow) {
		idx := rowNum - 2
		if idx < 0 || idx >= len(t.Rows) {
			result.Changes = append(result.Changes, RowChange{
				Row:       rowNum,
				Status:    StatusOutOfRange,
				TotalRows: len(t.Rows),
			})
			continue
		}

		// An in-range row number can still point at the wrong row if
		// the table was edited after the audit was taken. The audited
		// source text is the cross-check.
		if audited := auditedSource(byRow[rowNum]); audited != "" && len(sourceIdxs) > 0 {
			if found, ok := sourceStillMatches(t.Rows[idx], sourceIdxs, audited); !ok {
				result.Changes = append(result.Changes, RowChange{
					Row:           rowNum,
					Status:        StatusRowMismatch,
					AuditedSource: audited,
					FoundSource:   found,
				})
				continue
			}
		}

		t.PadRow(idx, refIDIdx)
		current := strings.TrimSpace(t.Rows[idx][refIDIdx])

		// Never clobber a cell that already names a reference.
		if current != "" && strings.ToLower(current) != "none" {
			result.Changes = append(result.Changes, RowChange{
				Row:      rowNum,
				Status:   StatusAlreadyHas,
				Existing: current,
			})
			continue
		}

		// Text-hash IDs are extraction placeholders, not bibliography
		// keys. They are skipped, but their source text is kept.
		var validRefs []string
		var skipped []SkippedRef
		for _, rec := range byRow[rowNum] {
			if match.IsTextHashRef(rec.RefID) {
				skipped = append(skipped, SkippedRef{RefID: rec.RefID, Original: rec.Original})
			} else {
				validRefs = append(validRefs, rec.RefID)
			}
		}

		if len(validRefs) == 0 {
			result.Changes = append(result.Changes, skipOnlyChange(t, idx, rowNum, noteIdx, skipped, dryRun))
			continue
		}

		primary := validRefs[0]
		if !dryRun {
			t.Rows[idx][refIDIdx] = primary
		}
		change := RowChange{
			Row:     rowNum,
			Status:  StatusBackfilled,
			RefID:   primary,
			Skipped: skipped,
		}

		// Extra extractions for the same row land in supporting_refs,
		// appended to whatever is already there.
		if len(validRefs) > 1 && supportingIdx != -1 {
			t.PadRow(idx, supportingIdx)
			supporting := strings.Join(validRefs[1:], ";")
			if !dryRun {
				existing := strings.TrimSpace(t.Rows[idx][supportingIdx])
				if existing != "" && strings.ToLower(existing) != "none" {
					t.Rows[idx][supportingIdx] = existing + ";" + supporting
				} else {
					t.Rows[idx][supportingIdx] = supporting
				}
			}
			change.Supporting = validRefs[1:]
		}

		result.Changes = append(result.Changes, change)
	}

	return result
}

// skipOnlyChange handles a row whose extractions were all text hashes.
// When the table has an empty ref_note cell, the first skipped
// extraction's source text is preserved there; otherwise the row is
// recorded as skipped and left alone.
func skipOnlyChange(t *tabular.Table, idx, rowNum, noteIdx int, skipped []SkippedRef, dryRun bool) RowChange {
	if len(skipped) > 0 && noteIdx != -1 {
		t.PadRow(idx, noteIdx)
		if strings.TrimSpace(t.Rows[idx][noteIdx]) == "" {
			noteText := skipped[0].Original
			if !dryRun {
				t.Rows[idx][noteIdx] = noteText
			}
			return RowChange{
				Row:     rowNum,
				Status:  StatusInternalNoted,
				RefNote: noteText,
				Skipped: skipped,
			}
		}
	}
	return RowChange{
		Row:     rowNum,
		Status:  StatusSkippedInternal,
		Skipped: skipped,
	}
}

// auditedSource returns the first non-empty source text recorded for a
// row's extractions. Audits that recorded none give the row nothing to
// be verified against.
func auditedSource(recs []audit.Record) string {
	for _, rec := range recs {
		if v := strings.TrimSpace(rec.Original); v != "" {
			return v
		}
	}
	return ""
}

// sourceStillMatches reports whether any source-like cell in the row
// still holds the audited text. When none does, the first source
// cell's current value comes back for the report.
func sourceStillMatches(row []string, sourceIdxs []int, audited string) (string, bool) {
	var found string
	for i, col := range sourceIdxs {
		var val string
		if col < len(row) {
			val = strings.TrimSpace(row[col])
		}
		if i == 0 {
			found = val
		}
		if val == audited {
			return val, true
		}
	}
	return found, false
}
