package linkmatch_test

import (
	"testing"

	"jobiq/pipeline-service/internal/linkmatch"
)

func TestNormalize_Canonicalization(t *testing.T) {
	cases := []struct {
		in       string
		wantURL  string
		wantDom  string
		wantATS  string
	}{
		{
			"https://www.linkedin.com/jobs/view/3912345678/?refId=abc&trackingId=xyz",
			"https://linkedin.com/jobs/view/3912345678",
			"linkedin.com", linkmatch.ATSLinkedIn,
		},
		{
			"HTTPS://BOARDS.GREENHOUSE.IO/acme/jobs/4012345",
			"https://boards.greenhouse.io/acme/jobs/4012345",
			"boards.greenhouse.io", linkmatch.ATSGreenhouse,
		},
		{
			"https://www.indeed.com/viewjob?jk=abc123&from=serp&utm_source=mail",
			"https://indeed.com/viewjob?jk=abc123",
			"indeed.com", linkmatch.ATSIndeed,
		},
		{
			"https://jobs.lever.co//acme//0f4e1f9a-1b2c-4d5e-8f90-a1b2c3d4e5f6/",
			"https://jobs.lever.co/acme/0f4e1f9a-1b2c-4d5e-8f90-a1b2c3d4e5f6",
			"jobs.lever.co", linkmatch.ATSLever,
		},
		{
			"acme.example.com/careers/123/",
			"https://acme.example.com/careers/123",
			"acme.example.com", "",
		},
	}
	for _, c := range cases {
		got, err := linkmatch.Normalize(c.in)
		if err != nil {
			t.Errorf("Normalize(%q) error: %v", c.in, err)
			continue
		}
		if got.URL != c.wantURL {
			t.Errorf("Normalize(%q).URL = %q, want %q", c.in, got.URL, c.wantURL)
		}
		if got.Domain != c.wantDom {
			t.Errorf("Normalize(%q).Domain = %q, want %q", c.in, got.Domain, c.wantDom)
		}
		if got.ATS != c.wantATS {
			t.Errorf("Normalize(%q).ATS = %q, want %q", c.in, got.ATS, c.wantATS)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	urls := []string{
		"https://www.linkedin.com/jobs/view/3912345678/?trk=guest",
		"https://boards.greenhouse.io/acme/jobs/4012345?gh_jid=4012345&gh_src=newsletter",
		"https://www.indeed.com/viewjob?jk=abc123",
		"https://careers.example.com//engineering//backend/",
	}
	for _, u := range urls {
		first, err := linkmatch.Normalize(u)
		if err != nil {
			t.Fatalf("Normalize(%q) error: %v", u, err)
		}
		second, err := linkmatch.Normalize(first.URL)
		if err != nil {
			t.Fatalf("Normalize(Normalize(%q)) error: %v", u, err)
		}
		if first.URL != second.URL {
			t.Errorf("Normalize not idempotent for %q: %q != %q", u, first.URL, second.URL)
		}
	}
}

func TestNormalize_InvalidInput(t *testing.T) {
	for _, u := range []string{"", "   ", "://nothing"} {
		if _, err := linkmatch.Normalize(u); err == nil {
			t.Errorf("Normalize(%q) expected error", u)
		}
	}
}

func TestDetectATS_NoMatch(t *testing.T) {
	if ats := linkmatch.DetectATS("jobs.acme-startup.dev", "/openings/42"); ats != "" {
		t.Errorf("DetectATS on unknown host = %q, want \"\"", ats)
	}
}

func TestExtractJobID(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://boards.greenhouse.io/acme/jobs/4012345", "4012345"},
		{"https://jobs.lever.co/acme/0f4e1f9a-1b2c-4d5e-8f90-a1b2c3d4e5f6", "0f4e1f9a-1b2c-4d5e-8f90-a1b2c3d4e5f6"},
		{"https://acme.wd1.myworkdayjobs.com/en-US/careers/job/Backend-Engineer_JR-20441", "JR-20441"},
		{"https://jobs.ashbyhq.com/acme/7b1d2e3f-4a5b-6c7d-8e9f-0a1b2c3d4e5f", "7b1d2e3f-4a5b-6c7d-8e9f-0a1b2c3d4e5f"},
		{"https://careers.acme.icims.com/jobs/20231/backend-engineer/job", "20231"},
		{"https://acme.bamboohr.com/careers/142", "142"},
		{"https://jobs.smartrecruiters.com/Acme/743999912345678-backend-engineer", "743999912345678"},
		{"https://www.linkedin.com/jobs/view/3912345678", "3912345678"},
		{"https://www.indeed.com/viewjob?jk=abc123def456", "abc123def456"},
	}
	for _, c := range cases {
		n, err := linkmatch.Normalize(c.url)
		if err != nil {
			t.Fatalf("Normalize(%q) error: %v", c.url, err)
		}
		if got := linkmatch.ExtractJobID(n); got != c.want {
			t.Errorf("ExtractJobID(%q) = %q, want %q", c.url, got, c.want)
		}
	}
}

func TestExtractJobID_UnknownATSReturnsEmpty(t *testing.T) {
	n, err := linkmatch.Normalize("https://jobs.acme-startup.dev/openings/42")
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if got := linkmatch.ExtractJobID(n); got != "" {
		t.Errorf("ExtractJobID on unknown ATS = %q, want \"\"", got)
	}
}
