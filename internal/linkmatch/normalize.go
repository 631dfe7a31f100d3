// Package linkmatch canonicalizes job posting URLs so that externally
// observed links (browser extension lookups) can be matched back to catalogue
// entries, across ATS redirect and tracking-parameter noise.
package linkmatch

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// Normalized is the canonical form of a job posting URL.
type Normalized struct {
	URL    string
	Domain string
	ATS    string
}

// ATS identifiers returned by DetectATS. Empty string means unrecognized.
const (
	ATSGreenhouse      = "greenhouse"
	ATSLever           = "lever"
	ATSWorkday         = "workday"
	ATSAshby           = "ashby"
	ATSTaleo           = "taleo"
	ATSICIMS           = "icims"
	ATSBambooHR        = "bamboohr"
	ATSSmartRecruiters = "smartrecruiters"
	ATSLinkedIn        = "linkedin"
	ATSIndeed          = "indeed"
)

// atsHostPatterns maps a domain substring to its ATS id. Order matters only
// for readability; patterns are mutually exclusive in practice.
var atsHostPatterns = []struct {
	pattern string
	ats     string
}{
	{"greenhouse.io", ATSGreenhouse},
	{"lever.co", ATSLever},
	{"myworkdayjobs.com", ATSWorkday},
	{"ashbyhq.com", ATSAshby},
	{"taleo.net", ATSTaleo},
	{"icims.com", ATSICIMS},
	{"bamboohr.com", ATSBambooHR},
	{"smartrecruiters.com", ATSSmartRecruiters},
	{"linkedin.com", ATSLinkedIn},
	{"indeed.com", ATSIndeed},
}

// queryAllowlist lists the per-ATS query parameters that identify a posting
// and therefore survive normalization. Everything else (tracking, session,
// locale) is stripped.
var queryAllowlist = map[string][]string{
	ATSGreenhouse: {"gh_jid"},
	ATSWorkday:    {"jobId"},
	ATSIndeed:     {"jk", "vjk"},
	ATSLinkedIn:   {"currentJobId"},
	ATSTaleo:      {"job"},
}

var dupSlashes = regexp.MustCompile(`/{2,}`)

// Normalize canonicalizes a raw job URL: lowercase, https default, no www.,
// no duplicate or trailing slashes, and only allowlisted query parameters,
// re-appended in sorted order for determinism. Normalize is idempotent.
func Normalize(rawURL string) (Normalized, error) {
	trimmed := strings.TrimSpace(strings.ToLower(rawURL))
	if trimmed == "" {
		return Normalized{}, fmt.Errorf("empty url")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return Normalized{}, fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if u.Host == "" {
		return Normalized{}, fmt.Errorf("url %q has no host", rawURL)
	}

	domain := strings.TrimPrefix(u.Hostname(), "www.")
	path := dupSlashes.ReplaceAllString(u.EscapedPath(), "/")
	path = strings.TrimSuffix(path, "/")

	ats := DetectATS(domain, path)

	query := ""
	if allowed := queryAllowlist[ats]; len(allowed) > 0 {
		values := u.Query()
		var kept []string
		for _, key := range allowed {
			// Query was lowercased with the rest of the URL.
			if v := values.Get(strings.ToLower(key)); v != "" {
				kept = append(kept, strings.ToLower(key)+"="+url.QueryEscape(v))
			}
		}
		sort.Strings(kept)
		query = strings.Join(kept, "&")
	}

	normalized := "https://" + domain + path
	if query != "" {
		normalized += "?" + query
	}

	return Normalized{URL: normalized, Domain: domain, ATS: ats}, nil
}

// DetectATS matches the domain (and path, for embedded career portals)
// against the fixed ATS host table. Returns "" when nothing matches.
func DetectATS(domain, path string) string {
	haystack := domain + path
	for _, p := range atsHostPatterns {
		if strings.Contains(haystack, p.pattern) {
			return p.ats
		}
	}
	return ""
}

// Per-ATS job id extraction rules.
var (
	uuidPattern            = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	numericSegment         = regexp.MustCompile(`/(\d+)(?:/|$)`)
	workdayRequisition     = regexp.MustCompile(`(?i)((?:jr|req|r)[-_]?\d{4,})`)
	icimsJobSegment        = regexp.MustCompile(`/jobs/(\d+)`)
	linkedinViewSegment    = regexp.MustCompile(`/jobs/view/(\d+)`)
	smartrecruitersSegment = regexp.MustCompile(`/(\d{9,})`)
)

// ExtractJobID applies the ATS-specific rule for pulling the posting id out
// of a normalized URL. Returns "" for unrecognized ATS types or malformed
// URLs — it never panics and never guesses across ATS boundaries.
func ExtractJobID(n Normalized) string {
	u, err := url.Parse(n.URL)
	if err != nil {
		return ""
	}
	path := u.Path
	query := u.Query()

	switch n.ATS {
	case ATSGreenhouse:
		if id := query.Get("gh_jid"); id != "" {
			return id
		}
		if m := numericSegment.FindStringSubmatch(path + "/"); m != nil {
			return m[1]
		}
	case ATSLever, ATSAshby:
		return uuidPattern.FindString(path)
	case ATSWorkday:
		if m := workdayRequisition.FindStringSubmatch(path); m != nil {
			return strings.ToUpper(m[1])
		}
		return query.Get("jobid")
	case ATSTaleo:
		return query.Get("job")
	case ATSICIMS:
		if m := icimsJobSegment.FindStringSubmatch(path); m != nil {
			return m[1]
		}
	case ATSBambooHR:
		if m := numericSegment.FindStringSubmatch(path + "/"); m != nil {
			return m[1]
		}
	case ATSSmartRecruiters:
		if m := smartrecruitersSegment.FindStringSubmatch(path); m != nil {
			return m[1]
		}
	case ATSLinkedIn:
		if m := linkedinViewSegment.FindStringSubmatch(path); m != nil {
			return m[1]
		}
		return query.Get("currentjobid")
	case ATSIndeed:
		if id := query.Get("jk"); id != "" {
			return id
		}
		return query.Get("vjk")
	}
	return ""
}
