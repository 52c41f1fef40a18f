// Package audit reads the extraction audit log, the record of which
// reference IDs were minted from which TSV cells during bibliography
// extraction. The backfill job replays it to write those IDs back into
// the tables they came from.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Record is one extraction: a reference ID minted from a table cell.
// Row numbers are 1-indexed with the header at row 1, so the first data
// row is row 2. Original holds the source text the ID was minted from.
type Record struct {
	File     string `json:"file"`
	Row      int    `json:"row"`
	RefID    string `json:"ref_id"`
	Original string `json:"original,omitempty"`
}

// Log is the extraction audit file.
type Log struct {
	Generated   string   `json:"_generated,omitempty"`
	Description string   `json:"_description,omitempty"`
	Extractions []Record `json:"extractions"`
}

// Load reads an extraction audit file. A missing or malformed file is
// an error; the backfill job cannot run without its input.
func Load(path string) (*Log, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading extraction audit: %w", err)
	}

	var log Log
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("parsing extraction audit %s: %w", path, err)
	}
	return &log, nil
}

// ByFile groups extractions by bare filename, then by row number.
func (l *Log) ByFile() map[string]map[int][]Record {
	grouped := make(map[string]map[int][]Record)
	for _, rec := range l.Extractions {
		rows, ok := grouped[rec.File]
		if !ok {
			rows = make(map[int][]Record)
			grouped[rec.File] = rows
		}
		rows[rec.Row] = append(rows[rec.Row], rec)
	}
	return grouped
}

// SortedFiles returns the grouped filenames in lexical order, so runs
// over the same audit always process files in the same order.
func SortedFiles(grouped map[string]map[int][]Record) []string {
	files := make([]string, 0, len(grouped))
	for f := range grouped {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// SortedRows returns the row numbers of one file's group in ascending
// order.
func SortedRows(rows map[int][]Record) []int {
	nums := make([]int, 0, len(rows))
	for n := range rows {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}
