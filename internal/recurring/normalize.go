// Package recurring detects recurring expenses in a transaction history and
// projects their next occurrences.
//
// The pipeline is pure: every entry point takes the transaction snapshot and
// "today" as arguments and never reads the clock or any shared state, so
// concurrent calls over separate snapshots are safe.
package recurring

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// monthTokens are dropped as whole words so that "Netflix Oct" and
// "Netflix nov23" share the key "netflix".
var monthTokens = map[string]struct{}{
	"jan": {}, "feb": {}, "mar": {}, "apr": {}, "may": {}, "jun": {},
	"jul": {}, "aug": {}, "sep": {}, "sept": {}, "oct": {}, "nov": {}, "dec": {},
	"january": {}, "february": {}, "march": {}, "april": {}, "june": {},
	"july": {}, "august": {}, "september": {}, "october": {}, "november": {}, "december": {},
}

// Normalize turns a free-text description into a grouping key: lowercase,
// no digits, no punctuation, single spaces, no month words. Letters of any
// script are kept. The result may be empty.
func Normalize(description string) string {
	return strings.Join(words(strings.ToLower(description)), " ")
}

// DisplayName strips the same noise as Normalize but keeps the original
// casing. It is used for labels only.
func DisplayName(description string) string {
	if name := strings.Join(words(description), " "); name != "" {
		return name
	}
	return strings.TrimSpace(description)
}

func words(s string) []string {
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.Is(unicode.Mn, r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	out := fields[:0]
	for _, f := range fields {
		if _, month := monthTokens[strings.ToLower(f)]; month {
			continue
		}
		out = append(out, f)
	}
	return out
}
