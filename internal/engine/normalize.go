// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import "strings"

// NormalizeQuery trims, collapses all interior whitespace runs to single
// spaces, and truncates to at most maxChars characters. It is pure:
// identical input always yields identical output, which the cache key
// depends on. The empty result for blank input is the caller's signal to
// reject the query.
func NormalizeQuery(query string, maxChars int) string {
	collapsed := strings.Join(strings.Fields(query), " ")
	if maxChars <= 0 {
		return collapsed
	}

	runes := []rune(collapsed)
	if len(runes) > maxChars {
		collapsed = strings.TrimSpace(string(runes[:maxChars]))
	}
	return collapsed
}

// FirstWords bounds text to its first n whitespace-separated words.
// File-derived queries search on this prefix while the full extraction is
// echoed back to the caller.
func FirstWords(text string, n int) string {
	fields := strings.Fields(text)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}
