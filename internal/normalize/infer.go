package normalize

import (
	"strings"

	"jobiq/pipeline-service/internal/model"
)

// jobTypeMap maps provider free-text employment types to the fixed enum.
var jobTypeMap = map[string]model.JobType{
	"full_time":  model.JobTypeFullTime,
	"full-time":  model.JobTypeFullTime,
	"fulltime":   model.JobTypeFullTime,
	"permanent":  model.JobTypeFullTime,
	"part_time":  model.JobTypePartTime,
	"part-time":  model.JobTypePartTime,
	"parttime":   model.JobTypePartTime,
	"contract":   model.JobTypeContract,
	"contractor": model.JobTypeContract,
	"temporary":  model.JobTypeContract,
	"freelance":  model.JobTypeFreelance,
	"internship": model.JobTypeInternship,
	"intern":     model.JobTypeInternship,
}

// InferJobType maps a provider employment-type string to the enum, defaulting
// to full_time — except that a title clearly signalling an internship wins
// over both the raw tag and the default.
func InferJobType(rawType, title string) model.JobType {
	titleLower := strings.ToLower(title)
	if strings.Contains(titleLower, "intern ") || strings.HasSuffix(titleLower, "intern") ||
		strings.Contains(titleLower, "internship") {
		return model.JobTypeInternship
	}

	key := strings.ToLower(strings.TrimSpace(rawType))
	key = strings.ReplaceAll(key, " ", "_")
	if jt, ok := jobTypeMap[key]; ok {
		return jt
	}
	return model.JobTypeFullTime
}

// Experience keyword tiers in strict priority order: a lead-signalling term
// outranks senior, which outranks mid, which outranks junior.
var experienceTiers = []struct {
	level    model.ExperienceLevel
	keywords []string
}{
	{model.ExperienceLead, []string{"principal", "staff", "architect", "director", "lead", "head of", "vp "}},
	{model.ExperienceSenior, []string{"senior", "sr.", "sr "}},
	{model.ExperienceMid, []string{"mid-level", "mid level", "intermediate"}},
	{model.ExperienceJunior, []string{"junior", "jr.", "jr ", "entry-level", "entry level", "graduate"}},
}

// InferExperienceLevel infers seniority from title and description keywords.
// The title is checked first on every tier; the description only breaks a
// total miss. Defaults to any.
func InferExperienceLevel(title, description string) model.ExperienceLevel {
	titleLower := strings.ToLower(title)
	for _, tier := range experienceTiers {
		for _, kw := range tier.keywords {
			if strings.Contains(titleLower, kw) {
				return tier.level
			}
		}
	}

	descLower := strings.ToLower(description)
	for _, tier := range experienceTiers {
		for _, kw := range tier.keywords {
			if strings.Contains(descLower, kw) {
				return tier.level
			}
		}
	}
	return model.ExperienceAny
}

// techVocabulary is the fixed set of stack keywords scanned out of job text.
var techVocabulary = []string{
	"go", "golang", "python", "javascript", "typescript", "react", "vue",
	"angular", "node", "java", "kotlin", "swift", "rust", "ruby", "rails",
	"php", "c#", ".net", "c++", "scala", "elixir", "aws", "gcp", "azure",
	"docker", "kubernetes", "terraform", "postgresql", "postgres", "mysql",
	"mongodb", "redis", "kafka", "rabbitmq", "graphql", "grpc", "sql",
}

// ExtractTechStack scans title + description for known stack keywords,
// capped at 10 entries.
func ExtractTechStack(title, description string, extra []string) []string {
	text := strings.ToLower(title + " " + description)
	seen := make(map[string]bool)
	var stack []string

	add := func(kw string) {
		if kw == "" || seen[kw] {
			return
		}
		seen[kw] = true
		if len(stack) < maxTechStack {
			stack = append(stack, kw)
		}
	}

	// Provider-supplied skill tags take precedence over text scanning.
	for _, kw := range extra {
		add(strings.ToLower(strings.TrimSpace(kw)))
	}
	for _, kw := range techVocabulary {
		if containsKeyword(text, kw) {
			add(kw)
		}
	}
	return stack
}

// containsKeyword is a word-boundary-aware substring check so that "go" does
// not match inside "django" or "java" inside "javascript".
func containsKeyword(text, kw string) bool {
	for start := 0; ; {
		i := strings.Index(text[start:], kw)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(kw)
		beforeOK := i == 0 || !isWordChar(text[i-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		start = i + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
