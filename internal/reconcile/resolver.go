// Package reconcile compares what the TSV tables cite against what the
// bibliography holds, from both directions: source values that resolve
// to no entry (unmapped) and entries that no table uses (orphaned).
// Both scans share one resolver so they can never disagree about
// whether a value matches.
package reconcile

import (
	"github.com/brainemulation/reftab/internal/bib"
	"github.com/brainemulation/reftab/internal/match"
)

// Resolver matches a source-column value to a bibliography entry ID.
type Resolver struct {
	idx *bib.Index
}

// NewResolver wraps a bibliography index.
func NewResolver(idx *bib.Index) *Resolver {
	return &Resolver{idx: idx}
}

// Resolve matches one trimmed cell value. A DOI embedded anywhere in
// the value is tried first; failing that, the whole value is tried as a
// URL. Both lookups are case-insensitive.
func (r *Resolver) Resolve(value string) (refID string, ok bool) {
	if doi := match.ExtractDOI(value); doi != "" {
		if id, ok := r.idx.LookupDOI(doi); ok {
			return id, true
		}
	}
	if id, ok := r.idx.LookupURL(value); ok {
		return id, true
	}
	return "", false
}

// HasID reports whether the bibliography has an entry with this ID.
func (r *Resolver) HasID(id string) bool {
	return r.idx.HasID(id)
}
