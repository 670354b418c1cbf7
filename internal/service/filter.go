package service

import "strings"

// denylist contains the masked substrings, applied in order.
var denylist = []string{"spam", "malware", "phishing", "scam"}

// FilterContent masks denylisted substrings with an equal-length run of '*'.
// For each entry the exact-lower, Capitalized and ALL-UPPER forms are
// replaced; no other casings and no word-boundary checks. Entries are applied
// one after another, so overlapping replacements are possible and the
// last-applied entry wins.
func FilterContent(content string) string {
	filtered := content
	for _, word := range denylist {
		mask := strings.Repeat("*", len(word))
		filtered = strings.ReplaceAll(filtered, word, mask)
		filtered = strings.ReplaceAll(filtered, capitalize(word), mask)
		filtered = strings.ReplaceAll(filtered, strings.ToUpper(word), mask)
	}
	return filtered
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
