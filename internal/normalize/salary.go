package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// Hours in a working year, used to annualize hourly rates.
const hoursPerYear = 2080

// Below this threshold a bare number is assumed to be an hourly rate even
// without an explicit "/hour" marker (e.g. Indeed's "45 - 60 an hour" snippets
// sometimes drop the unit).
const hourlyCutoff = 500

var salaryToken = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([kK])?`)

var hourlyMarker = regexp.MustCompile(`(?i)(/\s*h(ou)?r|per\s+hour|an\s+hour|hourly)`)

// ParseSalary extracts salary bounds and a currency from a free-text salary
// string. It returns nil bounds when nothing numeric is present ("Competitive
// salary"), expands k-suffixes, annualizes hourly rates, and swaps inverted
// min/max pairs.
func ParseSalary(s string) (min, max *int, currency string) {
	currency = detectCurrency(s)
	if strings.TrimSpace(s) == "" {
		return nil, nil, currency
	}

	cleaned := strings.ReplaceAll(s, ",", "")
	hourly := hourlyMarker.MatchString(cleaned)

	var values []int
	for _, m := range salaryToken.FindAllStringSubmatch(cleaned, 2) {
		f, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if m[2] != "" {
			f *= 1000
		}
		values = append(values, int(f))
	}
	if len(values) == 0 {
		return nil, nil, currency
	}

	lo := values[0]
	hi := lo
	if len(values) > 1 {
		hi = values[1]
	}
	if hourly || (lo < hourlyCutoff && hi < hourlyCutoff) {
		lo *= hoursPerYear
		hi *= hoursPerYear
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return &lo, &hi, currency
}

// detectCurrency looks for a currency symbol or ISO code; USD when none found.
func detectCurrency(s string) string {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(s, "€") || strings.Contains(lower, "eur"):
		return "EUR"
	case strings.Contains(s, "£") || strings.Contains(lower, "gbp"):
		return "GBP"
	case strings.Contains(lower, "cad") || strings.Contains(s, "C$"):
		return "CAD"
	case strings.Contains(lower, "aud") || strings.Contains(s, "A$"):
		return "AUD"
	case strings.Contains(lower, "inr") || strings.Contains(s, "₹"):
		return "INR"
	default:
		return "USD"
	}
}
