package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relativeAge = regexp.MustCompile(`(\d+)\s*(minute|hour|day|week|month)s?\s*ago`)

// Absolute layouts providers have been observed to emit.
var postedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParsePostedDate turns a provider date string — absolute or relative
// ("3 days ago", "just posted", "yesterday") — into a timestamp. Returns nil
// when the string carries no usable date; the posting then has no posted_date
// and freshness scoring stays neutral.
func ParsePostedDate(s string, now time.Time) *time.Time {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	lower := strings.ToLower(trimmed)

	if m := relativeAge.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		var d time.Duration
		switch m[2] {
		case "minute":
			d = time.Duration(n) * time.Minute
		case "hour":
			d = time.Duration(n) * time.Hour
		case "day":
			d = time.Duration(n) * 24 * time.Hour
		case "week":
			d = time.Duration(n) * 7 * 24 * time.Hour
		case "month":
			d = time.Duration(n) * 30 * 24 * time.Hour
		}
		t := now.Add(-d)
		return &t
	}

	if strings.Contains(lower, "today") || strings.Contains(lower, "just posted") || strings.Contains(lower, "just now") {
		t := now
		return &t
	}
	if strings.Contains(lower, "yesterday") {
		t := now.Add(-24 * time.Hour)
		return &t
	}

	for _, layout := range postedLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return &t
		}
	}
	return nil
}
