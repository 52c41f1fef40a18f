// Package bib reads and writes the CSL-JSON bibliography that every
// curation job resolves against. The JSON file is the source of truth;
// the SQLite cache under .reftab/ is derived from it and disposable.
package bib

import (
	"encoding/json"
	"fmt"
)

// Author is one CSL author object. Personal names use Family/Given;
// corporate authors use Literal.
type Author struct {
	Family  string `json:"family,omitempty"`
	Given   string `json:"given,omitempty"`
	Literal string `json:"literal,omitempty"`
}

// String renders the author for display.
func (a Author) String() string {
	if a.Literal != "" {
		return a.Literal
	}
	if a.Given != "" {
		return a.Family + ", " + a.Given
	}
	return a.Family
}

// Date is a CSL date-parts object: [[year, month, day]] with month and
// day optional.
type Date struct {
	DateParts [][]int `json:"date-parts,omitempty"`
}

// Year returns the year component, or 0 when absent.
func (d *Date) Year() int {
	if d == nil || len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return 0
	}
	return d.DateParts[0][0]
}

// Entry is one bibliography record. The typed fields cover what the
// curation jobs read; anything else an entry carries is kept verbatim
// in Extra so rewrites never lose data.
type Entry struct {
	ID             string   `json:"id"`
	Type           string   `json:"type,omitempty"`
	Title          string   `json:"title,omitempty"`
	Authors        []Author `json:"author,omitempty"`
	Issued         *Date    `json:"issued,omitempty"`
	ContainerTitle string   `json:"container-title,omitempty"`
	Volume         string   `json:"volume,omitempty"`
	Page           string   `json:"page,omitempty"`
	Publisher      string   `json:"publisher,omitempty"`
	DOI            string   `json:"DOI,omitempty"`
	URL            string   `json:"URL,omitempty"`

	// Extra holds fields outside the typed set, keyed by their JSON
	// name. Populated on decode, merged back on encode.
	Extra map[string]json.RawMessage `json:"-"`
}

// entryAlias avoids recursing into the custom (un)marshalers.
type entryAlias Entry

// typedFields are the JSON keys owned by Entry's typed fields.
var typedFields = []string{
	"id", "type", "title", "author", "issued",
	"container-title", "volume", "page", "publisher", "DOI", "URL",
}

// UnmarshalJSON decodes the typed fields and stashes every other key in
// Extra.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var a entryAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range typedFields {
		delete(raw, key)
	}
	if len(raw) > 0 {
		a.Extra = raw
	}

	*e = Entry(a)
	return nil
}

// MarshalJSON encodes the typed fields and merges Extra back in. Typed
// fields win on a key collision. Entries without extras keep the struct
// field order; entries with extras are emitted with sorted keys.
func (e Entry) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(entryAlias(e))
	if err != nil {
		return nil, err
	}
	if len(e.Extra) == 0 {
		return data, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for key, value := range e.Extra {
		if _, ok := merged[key]; !ok {
			merged[key] = value
		}
	}
	return json.Marshal(merged)
}

// Validate checks the fields the curation jobs depend on.
func (e *Entry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("entry missing id")
	}
	return nil
}
