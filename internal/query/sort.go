package query

import (
	"math"
	"sort"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortState is one column sort selection. Clicking the active column
// flips the direction; clicking a new column resets to ascending.
type SortState struct {
	Column     string `json:"column"`
	Descending bool   `json:"descending"`
}

// Toggle returns the state after a click on column.
func (s SortState) Toggle(column string) SortState {
	if s.Column == column {
		return SortState{Column: column, Descending: !s.Descending}
	}
	return SortState{Column: column}
}

var (
	collatorMu sync.Mutex
	collator   = collate.New(language.Und, collate.IgnoreCase)
)

// CompareStrings is a locale-aware case-insensitive comparison, -1/0/+1.
func CompareStrings(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b)
}

// NumberKey maps an optional numeric cell to its sort key. Missing or
// non-finite values become -Inf so unknowns sort first ascending and last
// descending.
func NumberKey(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return math.Inf(-1)
	}
	return *v
}

// TimeKey maps an optional date cell to its sort key, with the same
// missing-value rule as NumberKey.
func TimeKey(t *time.Time) float64 {
	if t == nil || t.IsZero() {
		return math.Inf(-1)
	}
	return float64(t.UnixNano())
}

// CompareNumbers compares two sort keys, -1/0/+1.
func CompareNumbers(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// SortCopy returns items ordered by cmp, reversed when descending. The
// sort is stable and the input slice is never modified.
func SortCopy[T any](items []T, cmp func(a, b T) int, descending bool) []T {
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if descending {
			return c > 0
		}
		return c < 0
	})
	return out
}
