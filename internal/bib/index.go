package bib

import "strings"

// Index maps lowercased DOIs and URLs to entry IDs for source-value
// resolution. When two entries share a DOI or URL, the later one wins;
// duplicate detection is a separate curation concern.
type Index struct {
	byDOI map[string]string
	byURL map[string]string
	ids   map[string]bool
}

// NewIndex builds an index over the given entries.
func NewIndex(entries []Entry) *Index {
	idx := &Index{
		byDOI: make(map[string]string),
		byURL: make(map[string]string),
		ids:   make(map[string]bool, len(entries)),
	}
	for i := range entries {
		e := &entries[i]
		idx.ids[e.ID] = true
		if e.DOI != "" {
			idx.byDOI[strings.ToLower(e.DOI)] = e.ID
		}
		if e.URL != "" {
			idx.byURL[strings.ToLower(e.URL)] = e.ID
		}
	}
	return idx
}

// LookupDOI resolves a DOI to an entry ID, case-insensitively.
func (idx *Index) LookupDOI(doi string) (string, bool) {
	id, ok := idx.byDOI[strings.ToLower(doi)]
	return id, ok
}

// LookupURL resolves a whole cell value as a URL, case-insensitively.
func (idx *Index) LookupURL(url string) (string, bool) {
	id, ok := idx.byURL[strings.ToLower(url)]
	return id, ok
}

// HasID reports whether an entry with the given ID exists.
func (idx *Index) HasID(id string) bool {
	return idx.ids[id]
}

// Size returns the number of indexed entries.
func (idx *Index) Size() int {
	return len(idx.ids)
}
