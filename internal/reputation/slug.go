// Package reputation maintains deduplicated company identities and their
// rolling reputation aggregates. All updates are additive counters: O(1) per
// event regardless of how much history a company has.
package reputation

import "strings"

// Slug normalizes a company name for matching: lowercase, punctuation
// stripped, whitespace collapsed to single hyphens. "Acme, Inc." and
// "ACME Inc" resolve to the same slug.
func Slug(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
