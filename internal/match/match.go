// Package match holds the shared vocabulary of the curation jobs: which
// cell values count as empty, which identifier columns to scan, how DOIs
// are pulled out of free text, and how unmatched values are categorized.
//
// All jobs must agree on these rules. A value the unmapped scan treats as
// internal prose must also be skipped by the orphan scan, otherwise the
// two reports contradict each other.
package match

import (
	"regexp"
	"strings"
)

// InternalPrefix marks reference IDs that name an internal derivation
// rather than a published work (e.g. "internal_estimate_2025").
const InternalPrefix = "internal_"

// TextHashPrefix marks placeholder IDs minted from a hash of the source
// text during extraction. They are candidates for backfilling, never
// bibliography keys.
const TextHashPrefix = "text_"

// emptySentinels are cell values that mean "no reference here". Matched
// case-insensitively after trimming.
var emptySentinels = map[string]bool{
	"":     true,
	"none": true,
	"n/a":  true,
	"na":   true,
}

// IsEmptySentinel reports whether a cell value carries no reference
// information at all.
func IsEmptySentinel(value string) bool {
	return emptySentinels[strings.ToLower(strings.TrimSpace(value))]
}

// internalSourceRules match source-column values that describe our own
// analysis rather than an external citation. Each pattern is anchored at
// the start of the trimmed, lowercased value. Order matters only for
// readability; any hit excludes the value from unmapped reporting.
var internalSourceRules = []*regexp.Regexp{
	regexp.MustCompile(`^estimated$`),
	regexp.MustCompile(`^computational demands analysis$`),
	regexp.MustCompile(`^internal\s`),
	regexp.MustCompile(`^s&k$`),
	regexp.MustCompile(`^analysis$`),
	regexp.MustCompile(`^derived`),
	regexp.MustCompile(`^calculated`),
	regexp.MustCompile(`^estimates$`),
	regexp.MustCompile(`^assumptions$`),
	regexp.MustCompile(`^estimates,?\s*assumptions`),
}

// IsInternalSource reports whether a source-column value is internal
// prose (an estimate, a derivation) rather than a citation to resolve.
func IsInternalSource(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, rule := range internalSourceRules {
		if rule.MatchString(v) {
			return true
		}
	}
	return false
}

// IsTextHashRef reports whether a reference ID is an extraction
// placeholder (text_ prefix) rather than a real bibliography key.
func IsTextHashRef(refID string) bool {
	return strings.HasPrefix(refID, TextHashPrefix)
}

// IsInternalRef reports whether a reference ID names an internal
// derivation (internal_ prefix).
func IsInternalRef(refID string) bool {
	return strings.HasPrefix(refID, InternalPrefix)
}

// doiPattern matches a DOI embedded in free text: the directory
// indicator "10.", a registrant code of four or more digits, a slash,
// then everything up to the next whitespace.
var doiPattern = regexp.MustCompile(`10\.\d{4,}/\S+`)

// ExtractDOI pulls the first DOI-shaped substring out of a value and
// strips trailing sentence punctuation. Returns "" when no DOI is
// present. Case is preserved; DOI comparison is the caller's concern.
func ExtractDOI(value string) string {
	// Cheap guard before the regex. Most values carry no DOI.
	if !strings.Contains(value, "10.") {
		return ""
	}
	m := doiPattern.FindString(value)
	if m == "" {
		return ""
	}
	return strings.TrimRight(m, ".,;")
}

// sourceColumns are the headers (lowercased) scanned for citation
// values. Files use several conventions; all of them resolve the same
// way.
var sourceColumns = map[string]bool{
	"source":     true,
	"doi":        true,
	"link":       true,
	"references": true,
	"ref":        true,
	"url":        true,
}

// IsSourceColumn reports whether a header names a column whose values
// are citations (DOIs, URLs, or prose source notes).
func IsSourceColumn(header string) bool {
	return sourceColumns[strings.ToLower(header)]
}

// Category buckets an unresolvable source value by failure mode. The
// buckets are diagnostic only; they steer a human toward the right fix.
type Category string

const (
	// CategoryMultiURL: the cell packs several URLs (or a URL plus
	// prose) into one value, so no single lookup can succeed.
	CategoryMultiURL Category = "multi_url"
	// CategoryDOIFormat: the cell looks like it carries a DOI but not in
	// a resolvable form (a doi: prefix, or a bare DOI the bibliography
	// does not know).
	CategoryDOIFormat Category = "doi_format_issue"
	// CategoryURLNotInBib: a plain URL with no bibliography entry.
	CategoryURLNotInBib Category = "url_not_in_bib"
	// CategoryTextReference: free-text prose naming a source.
	CategoryTextReference Category = "text_reference"
)

// categoryRules classify an unmatched value. First match wins, so the
// order is load-bearing: multi-URL must be tested before the single-URL
// bucket, and DOI shapes before the prose fallback. Extend by inserting
// a rule at the right position, not by appending.
var categoryRules = []struct {
	category Category
	matches  func(lower string) bool
}{
	{CategoryMultiURL, func(lower string) bool {
		return strings.Count(lower, "http") > 1 ||
			(strings.Count(lower, " ") > 3 && strings.Contains(lower, "http"))
	}},
	{CategoryDOIFormat, func(lower string) bool {
		return strings.Contains(lower, "doi:") ||
			(strings.Contains(lower, "10.") && !strings.Contains(lower, "http"))
	}},
	{CategoryURLNotInBib, func(lower string) bool {
		return strings.Contains(lower, "http")
	}},
	{CategoryTextReference, func(string) bool {
		return true
	}},
}

// Classify buckets a source value that failed bibliography resolution.
func Classify(value string) Category {
	lower := strings.ToLower(value)
	for _, rule := range categoryRules {
		if rule.matches(lower) {
			return rule.category
		}
	}
	// Unreachable: the prose rule matches everything.
	return CategoryTextReference
}

// trailingYear strips a four-digit year token from the end of a label,
// e.g. "estimate 2025" -> "estimate".
var trailingYear = regexp.MustCompile(`\s*\d{4}$`)

// DeriveInternalLabel turns an internal_ reference ID into the
// human-readable note that replaces it, e.g. "internal_estimate_2025"
// -> "Internal estimate". A handful of common labels get a fixed
// spelling; the rest are sentence-cased as-is.
func DeriveInternalLabel(refID string) string {
	label := strings.TrimPrefix(refID, InternalPrefix)
	label = strings.ReplaceAll(label, "_", " ")
	label = trailingYear.ReplaceAllString(label, "")
	label = sentenceCase(strings.TrimSpace(label))

	switch label {
	case "Estimate":
		return "Internal estimate"
	case "Methodology":
		return "Internal methodology"
	}
	return label
}

// sentenceCase uppercases the first rune and lowercases the rest.
func sentenceCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
	return string(runes)
}
