// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"strings"
	"unicode"
)

// NormalizeTitle lowercases, strips punctuation, and collapses
// whitespace so titles from different backends compare cleanly.
func NormalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	lastSpace := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace:
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// TokenSetSimilarity is the Jaccard index over the word sets of two
// normalized titles: |A∩B| / |A∪B|. Word order and repetition do not
// matter, which tolerates subtitle reordering between backends.
func TokenSetSimilarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	inter := 0
	for tok := range setA {
		if setB[tok] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}

// surnameSet extracts the last token of each author name, lowercased.
// "Jane Q. Smith" and "Smith, Jane Q." both yield "smith" because the
// comma form is split on the comma first.
func surnameSet(authors []string) map[string]bool {
	set := map[string]bool{}
	for _, a := range authors {
		if i := strings.IndexByte(a, ','); i >= 0 {
			a = a[:i]
		}
		fields := strings.Fields(a)
		if len(fields) == 0 {
			continue
		}
		set[strings.ToLower(fields[len(fields)-1])] = true
	}
	return set
}

// surnameOverlap is the shared fraction relative to the smaller set, so
// a backend that truncates its author list does not defeat the check.
func surnameOverlap(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	shared := 0
	for s := range small {
		if large[s] {
			shared++
		}
	}
	return float64(shared) / float64(len(small))
}
