package bib

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Store is the bibliography file: a references array plus underscore
// metadata keys written by whichever tool last regenerated it.
type Store struct {
	Generated   string  `json:"_generated,omitempty"`
	Description string  `json:"_description,omitempty"`
	References  []Entry `json:"references"`
}

// Load reads a bibliography file. A malformed file is an error; the
// caller decides whether that halts the run.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bibliography: %w", err)
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("parsing bibliography %s: %w", path, err)
	}

	for i := range store.References {
		if err := store.References[i].Validate(); err != nil {
			return nil, fmt.Errorf("bibliography %s: entry %d: %w", path, i, err)
		}
	}
	return &store, nil
}

// Save writes the bibliography back, stamping _generated. The write
// replaces the whole file; there is no partial update.
func (s *Store) Save(path string) error {
	s.Generated = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding bibliography: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing bibliography: %w", err)
	}
	return nil
}

// IDSet returns the set of entry IDs.
func (s *Store) IDSet() map[string]bool {
	ids := make(map[string]bool, len(s.References))
	for i := range s.References {
		ids[s.References[i].ID] = true
	}
	return ids
}

// FindByID returns the entry with the given ID.
func (s *Store) FindByID(id string) (*Entry, bool) {
	for i := range s.References {
		if s.References[i].ID == id {
			return &s.References[i], true
		}
	}
	return nil, false
}

// AddMissing appends each entry whose ID is not already present and
// returns the IDs that were added, in input order. Existing entries are
// never overwritten, so re-running an add is a no-op.
func (s *Store) AddMissing(entries []Entry) []string {
	ids := s.IDSet()
	var added []string
	for _, entry := range entries {
		if ids[entry.ID] {
			continue
		}
		s.References = append(s.References, entry)
		ids[entry.ID] = true
		added = append(added, entry.ID)
	}
	return added
}
