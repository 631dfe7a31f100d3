package linkmatch_test

import (
	"testing"

	"jobiq/pipeline-service/internal/linkmatch"
)

func TestURLsMatch_Reflexive(t *testing.T) {
	urls := []string{
		"https://www.linkedin.com/jobs/view/3912345678",
		"https://boards.greenhouse.io/acme/jobs/4012345",
		"https://careers.example.com/backend-engineer",
	}
	for _, u := range urls {
		if !linkmatch.URLsMatch(u, u) {
			t.Errorf("URLsMatch(%q, %q) should be true", u, u)
		}
	}
}

func TestURLsMatch_CaseAndTrailingSlashInsensitive(t *testing.T) {
	a := "https://careers.example.com/backend-engineer"
	variants := []string{
		"https://careers.example.com/backend-engineer/",
		"HTTPS://CAREERS.EXAMPLE.COM/Backend-Engineer",
		"https://www.careers.example.com/backend-engineer",
	}
	for _, b := range variants {
		if !linkmatch.URLsMatch(a, b) {
			t.Errorf("URLsMatch(%q, %q) should be true", a, b)
		}
	}
}

func TestURLsMatch_SameDomainSubstring(t *testing.T) {
	short := "https://boards.greenhouse.io/acme/jobs/4012345"
	long := "https://boards.greenhouse.io/acme/jobs/4012345/backend-engineer-remote"
	if !linkmatch.URLsMatch(short, long) {
		t.Error("same-domain substring containment should match")
	}
}

func TestURLsMatch_DifferentDomainNeverMatches(t *testing.T) {
	a := "https://boards.greenhouse.io/acme/jobs/4012345"
	b := "https://jobs.lever.co/acme/jobs/4012345"
	if linkmatch.URLsMatch(a, b) {
		t.Error("different domains must not match")
	}
}

func TestURLsMatch_InvalidInput(t *testing.T) {
	if linkmatch.URLsMatch("", "https://example.com/job/1") {
		t.Error("invalid input should never match")
	}
}

func TestCompanyTitleHash_Insensitivity(t *testing.T) {
	base := linkmatch.CompanyTitleHash("Acme Corp", "Senior Backend Engineer")
	same := []struct{ company, title string }{
		{"ACME CORP", "SENIOR BACKEND ENGINEER"},
		{"Acme,  Corp.", "Senior Backend-Engineer"},
		{"acme corp", "senior backend engineer!!"},
	}
	for _, c := range same {
		if got := linkmatch.CompanyTitleHash(c.company, c.title); got != base {
			t.Errorf("CompanyTitleHash(%q, %q) differs from base", c.company, c.title)
		}
	}
	if linkmatch.CompanyTitleHash("Acme Corp", "Junior Backend Engineer") == base {
		t.Error("different titles must hash differently")
	}
}
