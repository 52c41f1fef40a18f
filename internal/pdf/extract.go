// Package pdf extracts citation metadata from local PDF files.
package pdf

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// doiSearchPages bounds the DOI scan; DOIs sit on the first page of
// nearly every article PDF.
const doiSearchPages = 3

// minTitleLength filters running heads and page numbers out of the
// title guess.
const minTitleLength = 20

// doiPattern matches 10.XXXX/... registrant DOIs.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// Metadata is what a PDF file reveals about the work it contains.
type Metadata struct {
	DOI   string `json:"doi,omitempty"`
	Title string `json:"title,omitempty"`
}

// Extract reads a PDF and pulls out its DOI and a best-effort title.
// A PDF with neither yields empty Metadata, not an error; only an
// unreadable file fails.
func Extract(path string) (Metadata, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	scan := doiSearchPages
	if n := r.NumPage(); n < scan {
		scan = n
	}

	var meta Metadata
	for i := 1; i <= scan; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i == 1 {
			meta.Title = guessTitle(text)
		}
		if meta.DOI == "" {
			meta.DOI = FindDOI(text)
		}
		if meta.DOI != "" && meta.Title != "" {
			break
		}
	}
	return meta, nil
}

// FindDOI returns the first plausible DOI in text, with trailing
// punctuation trimmed away.
func FindDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if plausibleDOI(match) {
			return match
		}
	}
	return ""
}

// plausibleDOI rejects matches too short to be real or with an empty
// registrant suffix.
func plausibleDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slash := strings.Index(doi, "/")
	return slash != -1 && slash < len(doi)-1
}

// guessTitle takes the first substantial line of the first page.
func guessTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) >= minTitleLength && !looksLikeFurniture(line) {
			return line
		}
	}
	return ""
}

// looksLikeFurniture reports lines that read as journal headers or
// copyright marks rather than titles.
func looksLikeFurniture(line string) bool {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "journal"):
		return true
	case strings.Contains(lower, "copyright"):
		return true
	case strings.Contains(lower, "volume") && strings.Contains(lower, "issue"):
		return true
	case strings.Contains(lower, "article") && strings.Contains(lower, "published"):
		return true
	}
	return false
}
