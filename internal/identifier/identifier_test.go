// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package identifier

import (
	"errors"
	"testing"
)

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain DOI", "10.1016/j.compag.2023.107890", "10.1016/j.compag.2023.107890", false},
		{"upper-cased short prefix", "10.1/AB", "10.1/ab", false},
		{"mixed case", "10.1145/3290605.3300233", "10.1145/3290605.3300233", false},
		{"resolver URL prefix", "https://doi.org/10.1016/j.compag.2023.107890", "10.1016/j.compag.2023.107890", false},
		{"dx resolver prefix", "http://dx.doi.org/10.1038/nature12373", "10.1038/nature12373", false},
		{"doi scheme prefix", "doi:10.1038/nature12373", "10.1038/nature12373", false},
		{"file form accepted", "10.1016_j.compag.2023.107890", "10.1016/j.compag.2023.107890", false},
		{"multiple path segments", "10.1000/xyz/123", "10.1000/xyz/123", false},
		{"surrounding whitespace", "  10.1038/nature12373  ", "10.1038/nature12373", false},
		{"empty", "", "", true},
		{"not a DOI", "hello-world", "", true},
		{"missing suffix", "10.1016/", "", true},
		{"underscore in suffix cannot round-trip", "10.1016/j_x", "", true},
		{"embedded whitespace", "10.1016/j. compag", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input, KindDOI)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Normalize(%q) = %q, want error", tt.input, got)
				}
				if !errors.Is(err, ErrInvalidIdentifier) {
					t.Errorf("Normalize(%q) error = %v, want ErrInvalidIdentifier", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeDOICaseFolding(t *testing.T) {
	a, err := Normalize("10.1/AB", KindDOI)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Normalize("10.1/ab", KindDOI)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("case-differing DOIs normalize to %q and %q, want equal", a, b)
	}
}

func TestDOIRoundTrip(t *testing.T) {
	dois := []string{
		"10.1016/j.compag.2023.107890",
		"10.1000/xyz/123",
		"10.1145/3290605.3300233",
	}
	for _, doi := range dois {
		file := FileForm(doi)
		back, err := Normalize(file, KindDOI)
		if err != nil {
			t.Fatalf("Normalize(FileForm(%q)) error: %v", doi, err)
		}
		if back != doi {
			t.Errorf("round-trip of %q via %q = %q", doi, file, back)
		}
		if ComparisonForm(file) != doi {
			t.Errorf("ComparisonForm(%q) = %q, want %q", file, ComparisonForm(file), doi)
		}
	}
}

func TestNormalizeFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"DOI file form with extension", "10.1016_j.compag.2023.107890.pdf", "10.1016/j.compag.2023.107890", false},
		{"opaque stem", "paper_7f3a.pdf", "paper_7f3a", false},
		{"uuid stem", "c7d9e9a2-41b7-4f28-9c21-1f0a2b3c4d5e.pdf", "c7d9e9a2-41b7-4f28-9c21-1f0a2b3c4d5e", false},
		{"random notes", "random_notes.pdf", "random_notes", false},
		{"no extension", "10.1016_j.compag.2023.107890", "10.1016/j.compag.2023.107890", false},
		{"empty", "", "", true},
		{"extension only", ".pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input, KindFilename)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Normalize(%q) = %q, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeOpaque(t *testing.T) {
	if _, err := Normalize("", KindOpaque); !errors.Is(err, ErrInvalidIdentifier) {
		t.Errorf("empty opaque id: error = %v, want ErrInvalidIdentifier", err)
	}
	if _, err := Normalize("a/b", KindOpaque); !errors.Is(err, ErrInvalidIdentifier) {
		t.Errorf("opaque id with separator: error = %v, want ErrInvalidIdentifier", err)
	}
	got, err := Normalize("  paper_7f3a  ", KindOpaque)
	if err != nil {
		t.Fatal(err)
	}
	if got != "paper_7f3a" {
		t.Errorf("opaque id = %q, want %q", got, "paper_7f3a")
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"dir/10.1016_j.compag.2023.107890.pdf", "10.1016_j.compag.2023.107890"},
		{"notes.PDF", "notes"},
		{"noext", "noext"},
		// Dots inside a file-form DOI are not an extension.
		{"10.1016_j.compag.2023.107890", "10.1016_j.compag.2023.107890"},
		{"archive.tar", "archive.tar"},
	}
	for _, tt := range tests {
		if got := Stem(tt.input); got != tt.want {
			t.Errorf("Stem(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
