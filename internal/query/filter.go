// Package query holds the pure predicate, comparator and pagination
// helpers shared by every list view (accounts, transactions, categories,
// shops). Nothing here performs I/O or mutates its inputs.
package query

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// searchNormalizer strips combining marks after NFD decomposition so that
// "Géant" and "geant" compare equal.
var searchNormalizer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeSearch lowers a string into its diacritic-free, lower-case,
// trimmed search form.
func NormalizeSearch(s string) string {
	out, _, err := transform.String(searchNormalizer, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// MatchText reports whether needle occurs in haystack under search
// normalization. An empty needle matches everything.
func MatchText(haystack, needle string) bool {
	n := NormalizeSearch(needle)
	if n == "" {
		return true
	}
	return strings.Contains(NormalizeSearch(haystack), n)
}

// MatchAnyText reports whether needle matches any of the haystacks.
func MatchAnyText(haystacks []string, needle string) bool {
	n := NormalizeSearch(needle)
	if n == "" {
		return true
	}
	for _, h := range haystacks {
		if strings.Contains(NormalizeSearch(h), n) {
			return true
		}
	}
	return false
}

// DateInRange reports whether t falls inside the inclusive [from, to]
// range. Nil bounds are open.
func DateInRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

// Filter returns the elements of items that satisfy keep, preserving
// order. The input slice is never modified.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
