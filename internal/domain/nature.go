package domain

import (
	"sort"
	"strings"
)

// NatureCode classifies the economic direction of a transaction or
// category. Exactly four codes exist; anything else is "unknown" and
// callers decide the fallback (the UI defaults to expense).
type NatureCode string

const (
	NatureExpense  NatureCode = "EX"
	NatureIncome   NatureCode = "IN"
	NatureTransfer NatureCode = "TF"
	NatureDebt     NatureCode = "DE"
)

// natureAliases maps recognized spellings (after TrimSpace + ToUpper) to
// canonical codes. Historical data carries codes, full words, plurals and
// a few abbreviations; the table is fixed at startup and never mutated.
var natureAliases = map[string]NatureCode{
	"EX":        NatureExpense,
	"EXP":       NatureExpense,
	"EXPENSE":   NatureExpense,
	"EXPENSES":  NatureExpense,
	"IN":        NatureIncome,
	"INC":       NatureIncome,
	"INCOME":    NatureIncome,
	"INCOMES":   NatureIncome,
	"TF":        NatureTransfer,
	"TR":        NatureTransfer,
	"TRF":       NatureTransfer,
	"TRANSFER":  NatureTransfer,
	"TRANSFERS": NatureTransfer,
	"DE":        NatureDebt,
	"DEBT":      NatureDebt,
	"DEBTS":     NatureDebt,
	"LOAN":      NatureDebt,
}

// displayNames maps each code to the spelling shown in the UI and written
// by the current schema.
var displayNames = map[NatureCode]string{
	NatureExpense:  "Expense",
	NatureIncome:   "Income",
	NatureTransfer: "Transfer",
	NatureDebt:     "Debt",
}

// ParseNature normalizes a free-text nature label to a canonical code.
// Input is trimmed and upper-cased before lookup. Unrecognized input
// returns ok=false; that is not an error condition.
func ParseNature(raw string) (NatureCode, bool) {
	code, ok := natureAliases[strings.ToUpper(strings.TrimSpace(raw))]
	return code, ok
}

// ParseNatureDefault normalizes a nature label, falling back to expense
// when the label is unknown. This matches the UI's behavior for legacy
// rows with no usable nature.
func ParseNatureDefault(raw string) NatureCode {
	if code, ok := ParseNature(raw); ok {
		return code
	}
	return NatureExpense
}

// Valid reports whether the code is one of the four canonical codes.
func (c NatureCode) Valid() bool {
	_, ok := displayNames[c]
	return ok
}

// Display returns the human-readable spelling for the code, or "" for an
// invalid code.
func (c NatureCode) Display() string {
	return displayNames[c]
}

// WireSpellings returns the distinct set of on-the-wire spellings a query
// filter should accept for a code. Historical rows encode natures
// inconsistently (canonical code, display word, plurals, mixed case), so
// store queries match against every alias in every casing. Output is
// sorted so generated queries are stable.
func WireSpellings(code NatureCode) []string {
	display, ok := displayNames[code]
	if !ok {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	bases := []string{string(code), display}
	for alias, c := range natureAliases {
		if c == code {
			bases = append(bases, alias)
		}
	}

	for _, base := range bases {
		add(base)
		add(strings.ToUpper(base))
		add(strings.ToLower(base))
		lower := strings.ToLower(base)
		add(strings.ToUpper(lower[:1]) + lower[1:])
	}
	sort.Strings(out)
	return out
}
