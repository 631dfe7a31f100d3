package normalize_test

import (
	"testing"

	"jobiq/pipeline-service/internal/model"
	"jobiq/pipeline-service/internal/normalize"
)

func TestInferJobType(t *testing.T) {
	cases := []struct {
		rawType string
		title   string
		want    model.JobType
	}{
		{"Full-time", "Backend Engineer", model.JobTypeFullTime},
		{"PART TIME", "Support Agent", model.JobTypePartTime},
		{"contract", "DevOps Engineer", model.JobTypeContract},
		{"freelance", "Designer", model.JobTypeFreelance},
		{"", "Backend Engineer", model.JobTypeFullTime},              // default
		{"gibberish", "Backend Engineer", model.JobTypeFullTime},     // unrecognized → default
		{"full-time", "Software Engineering Intern", model.JobTypeInternship}, // title wins
		{"", "Summer Internship - Data", model.JobTypeInternship},
		{"temporary", "QA Tester", model.JobTypeContract},
	}
	for _, c := range cases {
		if got := normalize.InferJobType(c.rawType, c.title); got != c.want {
			t.Errorf("InferJobType(%q, %q) = %q, want %q", c.rawType, c.title, got, c.want)
		}
	}
}

func TestInferExperienceLevel_PriorityOrder(t *testing.T) {
	cases := []struct {
		title string
		want  model.ExperienceLevel
	}{
		{"Principal Software Engineer", model.ExperienceLead},
		{"Staff Engineer", model.ExperienceLead},
		{"Director of Engineering", model.ExperienceLead},
		// Lead-signalling terms outrank senior even when both appear.
		{"Senior Principal Engineer", model.ExperienceLead},
		{"Senior Backend Developer", model.ExperienceSenior},
		{"Mid-Level Developer", model.ExperienceMid},
		{"Junior Frontend Developer", model.ExperienceJunior},
		{"Entry-Level Analyst", model.ExperienceJunior},
		{"Software Engineer", model.ExperienceAny},
	}
	for _, c := range cases {
		if got := normalize.InferExperienceLevel(c.title, ""); got != c.want {
			t.Errorf("InferExperienceLevel(%q) = %q, want %q", c.title, got, c.want)
		}
	}
}

func TestInferExperienceLevel_DescriptionFallback(t *testing.T) {
	got := normalize.InferExperienceLevel("Software Engineer",
		"We are looking for a senior engineer to own our billing platform.")
	if got != model.ExperienceSenior {
		t.Errorf("description fallback = %q, want senior", got)
	}
}

func TestExtractTechStack(t *testing.T) {
	desc := "We use Go and PostgreSQL on AWS, with React on the frontend. Django experience is a plus."
	stack := normalize.ExtractTechStack("Backend Engineer", desc, nil)

	want := map[string]bool{"go": true, "postgresql": true, "aws": true, "react": true}
	for kw := range want {
		found := false
		for _, s := range stack {
			if s == kw {
				found = true
			}
		}
		if !found {
			t.Errorf("ExtractTechStack missing %q in %v", kw, stack)
		}
	}
	// "go" must not be matched inside "Django".
	for _, s := range stack {
		if s == "django" {
			t.Errorf("ExtractTechStack unexpectedly extracted %q", s)
		}
	}
}

func TestExtractTechStack_CapsAtTen(t *testing.T) {
	desc := "go python javascript typescript react vue angular node java kotlin swift rust ruby"
	stack := normalize.ExtractTechStack("", desc, nil)
	if len(stack) > 10 {
		t.Errorf("tech stack has %d entries, cap is 10", len(stack))
	}
}
