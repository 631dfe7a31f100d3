// Package lifecycle implements the daily snapshot state machine for job
// postings.
//
// Valid status graph:
//
//	active ──► closed_filled / closed_expired / closed_unknown
//	closed_* ──► reposted
//	reposted ──► closed_filled / closed_expired / closed_unknown
//
// is_evergreen is an orthogonal one-directional flag: once a posting is
// evergreen it stays evergreen.
package lifecycle

import (
	"fmt"

	"jobiq/pipeline-service/internal/model"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[model.Status][]model.Status{
	model.StatusActive: {
		model.StatusClosedFilled, model.StatusClosedExpired, model.StatusClosedUnknown,
	},
	model.StatusReposted: {
		model.StatusClosedFilled, model.StatusClosedExpired, model.StatusClosedUnknown,
	},
	model.StatusClosedFilled:  {model.StatusReposted},
	model.StatusClosedExpired: {model.StatusReposted},
	model.StatusClosedUnknown: {model.StatusReposted},
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (model.Status, error) {
	st := model.Status(s)
	switch st {
	case model.StatusActive, model.StatusClosedFilled, model.StatusClosedExpired,
		model.StatusClosedUnknown, model.StatusReposted:
		return st, nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// state machine.
func IsTransitionAllowed(from, to model.Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsClosed reports whether a status is one of the closed states, i.e. the
// posting may come back only as a repost.
func IsClosed(s model.Status) bool {
	switch s {
	case model.StatusClosedFilled, model.StatusClosedExpired, model.StatusClosedUnknown:
		return true
	}
	return false
}

// IsLive reports whether a status counts as currently open.
func IsLive(s model.Status) bool {
	return s == model.StatusActive || s == model.StatusReposted
}
