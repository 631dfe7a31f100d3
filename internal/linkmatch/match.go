package linkmatch

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// URLsMatch reports whether two raw URLs identify the same posting: exact
// normalized equality, or same-domain substring containment (one side is a
// redirect-expanded form of the other).
func URLsMatch(a, b string) bool {
	na, errA := Normalize(a)
	nb, errB := Normalize(b)
	if errA != nil || errB != nil {
		return false
	}
	if na.URL == nb.URL {
		return true
	}
	if na.Domain != nb.Domain {
		return false
	}
	return strings.Contains(na.URL, nb.URL) || strings.Contains(nb.URL, na.URL)
}

// CompanyTitleHash is the fallback identity when URL matching fails entirely:
// a case-, whitespace- and punctuation-insensitive hash of (company, title).
func CompanyTitleHash(company, title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(company + "|" + title) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '|' {
			b.WriteRune(r)
		}
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
