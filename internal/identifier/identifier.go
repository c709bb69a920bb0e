// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identifier canonicalizes external identifiers (DOIs, artifact
// filenames, opaque internal ids) into comparable keys.
//
// DOIs have two canonical forms that convert losslessly into each other:
// the comparison form keeps the '/' separators and is used for registry
// lookups; the file form replaces '/' with '_' and is safe to use as a
// filename stem. A DOI whose comparison form already contains '_' cannot
// round-trip through the file form and is rejected.
package identifier

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Kind selects the normalization rules applied to a raw identifier.
type Kind int

const (
	KindDOI Kind = iota
	KindFilename
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindDOI:
		return "doi"
	case KindFilename:
		return "filename"
	case KindOpaque:
		return "opaque_id"
	default:
		return "unknown"
	}
}

// ErrInvalidIdentifier reports malformed or empty identifier input.
// Callers typically treat the affected record as unmatched rather than
// aborting a batch.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// doiPattern matches comparison-form DOIs: "10.1145/1234567.1234568".
// Registrant prefixes are usually 4-9 digits but shorter ones exist, so
// any digit run is accepted.
var doiPattern = regexp.MustCompile(`^10\.\d+/\S+$`)

// doiFilePattern matches file-form DOIs: "10.1016_j.compag.2023.107890".
var doiFilePattern = regexp.MustCompile(`^10\.\d+_\S+$`)

// resolverPrefixes are stripped from the front of raw DOI input.
var resolverPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi:",
}

// Normalize canonicalizes raw according to kind and returns the
// comparison key. DOIs come back in comparison form (slashes intact);
// filenames that look like a DOI are normalized as DOIs, all other
// filename stems and opaque ids come back trimmed and unchanged.
func Normalize(raw string, kind Kind) (string, error) {
	switch kind {
	case KindDOI:
		return normalizeDOI(raw)
	case KindFilename:
		stem := Stem(raw)
		if stem == "" {
			return "", fmt.Errorf("%w: empty filename stem in %q", ErrInvalidIdentifier, raw)
		}
		if doiPattern.MatchString(strings.ToLower(stem)) || doiFilePattern.MatchString(strings.ToLower(stem)) {
			return normalizeDOI(stem)
		}
		return normalizeOpaque(stem)
	case KindOpaque:
		return normalizeOpaque(raw)
	default:
		return "", fmt.Errorf("%w: unknown kind %d", ErrInvalidIdentifier, kind)
	}
}

// normalizeDOI lower-cases, strips resolver prefixes, and accepts either
// comparison or file form, always returning the comparison form.
func normalizeDOI(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", fmt.Errorf("%w: empty DOI", ErrInvalidIdentifier)
	}
	for _, prefix := range resolverPrefixes {
		if strings.HasPrefix(s, prefix) {
			s = s[len(prefix):]
			break
		}
	}

	if doiFilePattern.MatchString(s) && !strings.Contains(s, "/") {
		s = ComparisonForm(s)
	}
	if !doiPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q is not a DOI", ErrInvalidIdentifier, raw)
	}
	// A '_' in the comparison form would collide with the '/' replacement
	// and make the file form ambiguous.
	if strings.Contains(s, "_") {
		return "", fmt.Errorf("%w: DOI %q cannot round-trip to a filename", ErrInvalidIdentifier, raw)
	}
	return s, nil
}

// normalizeOpaque validates an internal id used as a filename stem.
func normalizeOpaque(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("%w: empty identifier", ErrInvalidIdentifier)
	}
	if strings.ContainsAny(s, "/\\") || strings.ContainsAny(s, " \t\n") {
		return "", fmt.Errorf("%w: %q contains characters that cannot round-trip", ErrInvalidIdentifier, raw)
	}
	return s, nil
}

// FileForm converts a comparison-form DOI into its filename-safe form.
func FileForm(doi string) string {
	return strings.ReplaceAll(doi, "/", "_")
}

// ComparisonForm converts a file-form DOI stem back into comparison form.
func ComparisonForm(stem string) string {
	return strings.ReplaceAll(stem, "_", "/")
}

// artifactExts are the extensions Stem strips. Only known artifact
// extensions are removed: file-form DOIs contain dots, so a generic
// last-dot rule would truncate an extensionless DOI stem.
var artifactExts = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".html": true,
}

// Stem returns the base name of filename without its artifact extension.
func Stem(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	if ext := filepath.Ext(base); artifactExts[strings.ToLower(ext)] {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// IsDOI reports whether raw normalizes cleanly as a DOI.
func IsDOI(raw string) bool {
	_, err := normalizeDOI(raw)
	return err == nil
}
