// Package normalize converts heterogeneous provider payloads into canonical
// insert candidates. Normalizers are pure functions over one payload: a
// malformed item returns an error and is counted by the caller, it never
// aborts the batch.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"jobiq/pipeline-service/internal/model"
)

// Field caps applied to every candidate regardless of provider.
const (
	maxTitleLen   = 500
	maxCompanyLen = 255
	maxURLLen     = 2000
	maxSalaryLen  = 255
	maxTechStack  = 10
)

// TimezoneGlobal is the sentinel timezone for remote/unspecified locations.
const TimezoneGlobal = "global"

// Normalizer turns one provider's raw job payload into a canonical candidate.
type Normalizer interface {
	Source() string
	Normalize(raw json.RawMessage) (*model.JobCandidate, error)
}

// All returns one normalizer per supported provider.
func All() []Normalizer {
	return []Normalizer{
		&LinkedIn{},
		&Indeed{},
		&Glassdoor{},
		&Dice{},
		&Wellfound{},
	}
}

// Sources returns the supported provider ids, in registration order.
func Sources() []string {
	all := All()
	ids := make([]string, 0, len(all))
	for _, n := range all {
		ids = append(ids, n.Source())
	}
	return ids
}

// BySource resolves a normalizer, erroring on unknown providers so that bad
// source names are rejected at the boundary before any side effect.
func BySource(source string) (Normalizer, error) {
	for _, n := range All() {
		if n.Source() == source {
			return n, nil
		}
	}
	return nil, fmt.Errorf("unknown source %q", source)
}

// DescriptionHash returns a whitespace- and case-insensitive content hash of
// a job description, used for repost matching when URLs differ.
func DescriptionHash(description string) string {
	folded := strings.Join(strings.Fields(strings.ToLower(description)), " ")
	if folded == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(folded))
	return hex.EncodeToString(sum[:])
}

// capString truncates s to max bytes on a rune boundary.
func capString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	for len(string(runes)) > max {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}

// timezoneFor maps a free-text location to the timezone field: remote or
// unspecified locations get the global sentinel.
func timezoneFor(location string) string {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" || strings.Contains(loc, "remote") || strings.Contains(loc, "anywhere") {
		return TimezoneGlobal
	}
	return loc
}
