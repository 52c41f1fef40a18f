package main

import "testing"

func TestDeriveDraftID(t *testing.T) {
	tests := []struct {
		name     string
		existing map[string]bool
		doi      string
		want     string
	}{
		{
			name: "suffix after registrant slash",
			doi:  "10.1038/s41592-018-0049-4",
			want: "s41592-018-0049-4",
		},
		{
			name: "dots become underscores",
			doi:  "10.1101/2021.07.28.454025",
			want: "2021_07_28_454025",
		},
		{
			name: "uppercase is lowered",
			doi:  "10.1234/ABC99",
			want: "abc99",
		},
		{
			name:     "collision gets numeric suffix",
			existing: map[string]bool{"386250": true},
			doi:      "10.1101/386250",
			want:     "386250-2",
		},
		{
			name:     "numeric suffix skips taken candidates",
			existing: map[string]bool{"386250": true, "386250-2": true},
			doi:      "10.1101/386250",
			want:     "386250-3",
		},
		{
			name: "all punctuation falls back to placeholder",
			doi:  "10.1234/(((",
			want: "pdf_import",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := tt.existing
			if existing == nil {
				existing = map[string]bool{}
			}
			got := deriveDraftID(existing, tt.doi)
			if got != tt.want {
				t.Errorf("deriveDraftID(%q) = %q, want %q", tt.doi, got, tt.want)
			}
		})
	}
}
