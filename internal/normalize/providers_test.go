package normalize_test

import (
	"encoding/json"
	"testing"
	"time"

	"jobiq/pipeline-service/internal/model"
	"jobiq/pipeline-service/internal/normalize"
)

func TestParsePostedDate_RelativeForms(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		in   string
		want time.Time
	}{
		{"3 days ago", now.Add(-3 * 24 * time.Hour)},
		{"2 weeks ago", now.Add(-14 * 24 * time.Hour)},
		{"5 hours ago", now.Add(-5 * time.Hour)},
		{"1 month ago", now.Add(-30 * 24 * time.Hour)},
		{"Just posted", now},
		{"today", now},
		{"yesterday", now.Add(-24 * time.Hour)},
	}
	for _, c := range cases {
		got := normalize.ParsePostedDate(c.in, now)
		if got == nil {
			t.Errorf("ParsePostedDate(%q) = nil, want %v", c.in, c.want)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("ParsePostedDate(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParsePostedDate_AbsoluteAndUnparseable(t *testing.T) {
	now := time.Now().UTC()
	if got := normalize.ParsePostedDate("2026-03-01", now); got == nil {
		t.Error("ParsePostedDate(\"2026-03-01\") should parse")
	}
	for _, in := range []string{"", "whenever", "soon"} {
		if got := normalize.ParsePostedDate(in, now); got != nil {
			t.Errorf("ParsePostedDate(%q) = %v, want nil", in, got)
		}
	}
}

// Every normalizer must emit fully-typed candidates: job_type and
// experience_level are always drawn from the fixed enums, never empty.
func TestNormalizers_AlwaysFullyTyped(t *testing.T) {
	payloads := map[string]string{
		"linkedin":  `{"title":"Senior Go Developer","company":"Acme","location":"Remote","salary":"90k-130k","url":"https://linkedin.com/jobs/view/123","postedDate":"2 days ago","description":"Build services in Go.","employmentType":"Full-time"}`,
		"indeed":    `{"jobTitle":"Data Engineer","companyName":"Beta Corp","location":"Austin, TX","salarySnippet":"$60/hour","jobUrl":"https://indeed.com/viewjob?jk=abc","formattedRelativeTime":"5 days ago","snippet":"Python and Kafka pipelines.","jobTypes":["Contract"]}`,
		"glassdoor": `{"jobTitle":"Engineering Intern","employer":{"name":"Gamma"},"location":"Remote","payRange":"","jobLink":"https://glassdoor.com/job/456","discoverDate":"2026-02-20","description":"Internship program.","jobType":""}`,
		"dice":      `{"title":"Platform Engineer","companyName":"Delta","jobLocation":"NYC","salary":"140k","detailsPageUrl":"https://dice.com/job/789","postedDate":"1 week ago","summary":"Kubernetes at scale.","employmentType":"Full-time","skills":["Terraform","AWS"]}`,
		"wellfound": `{"title":"Founding Engineer","startup":{"name":"Epsilon"},"locations":["Remote"],"compensation":"120k - 160k","jobUrl":"https://wellfound.com/l/abc","postedAt":"3 days ago","description":"Early stage, Rust backend.","jobType":"full-time"}`,
	}

	validTypes := map[model.JobType]bool{
		model.JobTypeFullTime: true, model.JobTypePartTime: true,
		model.JobTypeContract: true, model.JobTypeFreelance: true,
		model.JobTypeInternship: true,
	}
	validLevels := map[model.ExperienceLevel]bool{
		model.ExperienceAny: true, model.ExperienceJunior: true,
		model.ExperienceMid: true, model.ExperienceSenior: true,
		model.ExperienceLead: true,
	}

	for _, n := range normalize.All() {
		raw, ok := payloads[n.Source()]
		if !ok {
			t.Fatalf("no fixture payload for source %q", n.Source())
		}
		cand, err := n.Normalize(json.RawMessage(raw))
		if err != nil {
			t.Fatalf("%s: Normalize returned error: %v", n.Source(), err)
		}
		if !validTypes[cand.JobType] {
			t.Errorf("%s: job_type %q not in enum", n.Source(), cand.JobType)
		}
		if !validLevels[cand.ExperienceLevel] {
			t.Errorf("%s: experience_level %q not in enum", n.Source(), cand.ExperienceLevel)
		}
		if cand.URL == "" || cand.Title == "" {
			t.Errorf("%s: candidate missing url/title", n.Source())
		}
		if cand.Source != n.Source() {
			t.Errorf("%s: candidate source = %q", n.Source(), cand.Source)
		}
		if len(cand.TechStack) > 10 {
			t.Errorf("%s: tech stack exceeds cap: %d", n.Source(), len(cand.TechStack))
		}
	}
}

func TestNormalize_GlassdoorInternshipFromTitle(t *testing.T) {
	n := &normalize.Glassdoor{}
	cand, err := n.Normalize(json.RawMessage(`{"jobTitle":"Engineering Intern","employer":{"name":"Gamma"},"jobLink":"https://glassdoor.com/job/456","description":""}`))
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if cand.JobType != model.JobTypeInternship {
		t.Errorf("job_type = %q, want internship from title", cand.JobType)
	}
	if cand.Timezone != normalize.TimezoneGlobal {
		t.Errorf("timezone = %q, want %q for unspecified location", cand.Timezone, normalize.TimezoneGlobal)
	}
}

// The verbatim salary text must survive normalization even when no numeric
// bounds parse out of it: the scoring engine reads it to flag postings whose
// salary field only says "competitive".
func TestNormalize_UnparseableSalaryTextRetained(t *testing.T) {
	n := &normalize.LinkedIn{}
	cand, err := n.Normalize(json.RawMessage(`{"title":"Go Developer","company":"Acme","salary":"Competitive salary","url":"https://linkedin.com/jobs/view/321","description":"Short role blurb."}`))
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if cand.SalaryMin != nil || cand.SalaryMax != nil {
		t.Errorf("bounds = (%v, %v), want nil for unparseable salary", cand.SalaryMin, cand.SalaryMax)
	}
	if cand.SalaryRaw != "Competitive salary" {
		t.Errorf("salary_raw = %q, want the verbatim salary field", cand.SalaryRaw)
	}
}

func TestNormalize_MalformedPayload(t *testing.T) {
	for _, n := range normalize.All() {
		if _, err := n.Normalize(json.RawMessage(`{"title":""`)); err == nil {
			t.Errorf("%s: malformed JSON should error", n.Source())
		}
		if _, err := n.Normalize(json.RawMessage(`{}`)); err == nil {
			t.Errorf("%s: empty payload (no title/url) should error", n.Source())
		}
	}
}

func TestBySource_UnknownRejected(t *testing.T) {
	if _, err := normalize.BySource("monster"); err == nil {
		t.Error("BySource(\"monster\") expected error, got nil")
	}
}
