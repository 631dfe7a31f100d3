package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"jobiq/pipeline-service/internal/model"
)

// Each provider owns its payload schema; the structs below mirror only the
// fields this pipeline consumes. Unknown fields are ignored.

// ─── LinkedIn ────────────────────────────────────────────────────────────────

// LinkedIn normalizes payloads from the LinkedIn jobs feed.
type LinkedIn struct{}

type linkedinPayload struct {
	Title          string `json:"title"`
	Company        string `json:"company"`
	CompanyLogo    string `json:"companyLogo"`
	Location       string `json:"location"`
	Salary         string `json:"salary"`
	URL            string `json:"url"`
	PostedDate     string `json:"postedDate"`
	Description    string `json:"description"`
	EmploymentType string `json:"employmentType"`
}

func (n *LinkedIn) Source() string { return "linkedin" }

func (n *LinkedIn) Normalize(raw json.RawMessage) (*model.JobCandidate, error) {
	var p linkedinPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("linkedin payload: %w", err)
	}
	return build(n.Source(), p.Title, p.Company, p.CompanyLogo, p.Location,
		p.Salary, p.URL, p.PostedDate, p.Description, p.EmploymentType, nil)
}

// ─── Indeed ──────────────────────────────────────────────────────────────────

// Indeed normalizes payloads from the Indeed jobs feed.
type Indeed struct{}

type indeedPayload struct {
	JobTitle              string   `json:"jobTitle"`
	CompanyName           string   `json:"companyName"`
	Location              string   `json:"location"`
	SalarySnippet         string   `json:"salarySnippet"`
	JobURL                string   `json:"jobUrl"`
	FormattedRelativeTime string   `json:"formattedRelativeTime"`
	Snippet               string   `json:"snippet"`
	JobTypes              []string `json:"jobTypes"`
}

func (n *Indeed) Source() string { return "indeed" }

func (n *Indeed) Normalize(raw json.RawMessage) (*model.JobCandidate, error) {
	var p indeedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("indeed payload: %w", err)
	}
	rawType := ""
	if len(p.JobTypes) > 0 {
		rawType = p.JobTypes[0]
	}
	return build(n.Source(), p.JobTitle, p.CompanyName, "", p.Location,
		p.SalarySnippet, p.JobURL, p.FormattedRelativeTime, p.Snippet, rawType, nil)
}

// ─── Glassdoor ───────────────────────────────────────────────────────────────

// Glassdoor normalizes payloads from the Glassdoor jobs feed.
type Glassdoor struct{}

type glassdoorPayload struct {
	JobTitle string `json:"jobTitle"`
	Employer struct {
		Name    string `json:"name"`
		LogoURL string `json:"logoUrl"`
	} `json:"employer"`
	Location     string `json:"location"`
	PayRange     string `json:"payRange"`
	JobLink      string `json:"jobLink"`
	DiscoverDate string `json:"discoverDate"`
	Description  string `json:"description"`
	JobType      string `json:"jobType"`
}

func (n *Glassdoor) Source() string { return "glassdoor" }

func (n *Glassdoor) Normalize(raw json.RawMessage) (*model.JobCandidate, error) {
	var p glassdoorPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("glassdoor payload: %w", err)
	}
	return build(n.Source(), p.JobTitle, p.Employer.Name, p.Employer.LogoURL,
		p.Location, p.PayRange, p.JobLink, p.DiscoverDate, p.Description, p.JobType, nil)
}

// ─── Dice ────────────────────────────────────────────────────────────────────

// Dice normalizes payloads from the Dice jobs feed. Dice is the one provider
// that ships explicit skill tags, which seed the tech stack directly.
type Dice struct{}

type dicePayload struct {
	Title          string   `json:"title"`
	Company        string   `json:"companyName"`
	CompanyLogo    string   `json:"companyLogoUrl"`
	Location       string   `json:"jobLocation"`
	Salary         string   `json:"salary"`
	DetailsPageURL string   `json:"detailsPageUrl"`
	PostedDate     string   `json:"postedDate"`
	Summary        string   `json:"summary"`
	EmploymentType string   `json:"employmentType"`
	Skills         []string `json:"skills"`
}

func (n *Dice) Source() string { return "dice" }

func (n *Dice) Normalize(raw json.RawMessage) (*model.JobCandidate, error) {
	var p dicePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("dice payload: %w", err)
	}
	return build(n.Source(), p.Title, p.Company, p.CompanyLogo, p.Location,
		p.Salary, p.DetailsPageURL, p.PostedDate, p.Summary, p.EmploymentType, p.Skills)
}

// ─── Wellfound ───────────────────────────────────────────────────────────────

// Wellfound normalizes payloads from the Wellfound (AngelList Talent) feed.
type Wellfound struct{}

type wellfoundPayload struct {
	Title   string `json:"title"`
	Startup struct {
		Name    string `json:"name"`
		LogoURL string `json:"logoUrl"`
	} `json:"startup"`
	Locations    []string `json:"locations"`
	Compensation string   `json:"compensation"`
	JobURL       string   `json:"jobUrl"`
	PostedAt     string   `json:"postedAt"`
	Description  string   `json:"description"`
	JobType      string   `json:"jobType"`
}

func (n *Wellfound) Source() string { return "wellfound" }

func (n *Wellfound) Normalize(raw json.RawMessage) (*model.JobCandidate, error) {
	var p wellfoundPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("wellfound payload: %w", err)
	}
	return build(n.Source(), p.Title, p.Startup.Name, p.Startup.LogoURL,
		strings.Join(p.Locations, ", "), p.Compensation, p.JobURL, p.PostedAt,
		p.Description, p.JobType, nil)
}

// ─── Shared candidate assembly ───────────────────────────────────────────────

// build assembles a JobCandidate from normalized provider fields. Title and
// URL are mandatory — a posting without either cannot be deduplicated and is
// rejected as malformed.
func build(source, title, company, logoURL, location, salary, rawURL, posted, description, rawType string, skills []string) (*model.JobCandidate, error) {
	title = strings.TrimSpace(title)
	rawURL = strings.TrimSpace(rawURL)
	if title == "" {
		return nil, fmt.Errorf("%s: missing title", source)
	}
	if rawURL == "" {
		return nil, fmt.Errorf("%s: missing url", source)
	}

	salaryMin, salaryMax, currency := ParseSalary(salary)

	return &model.JobCandidate{
		URL:             capString(rawURL, maxURLLen),
		Title:           capString(title, maxTitleLen),
		Company:         capString(strings.TrimSpace(company), maxCompanyLen),
		CompanyLogoURL:  logoURL,
		Description:     description,
		DescriptionHash: DescriptionHash(description),
		SalaryMin:       salaryMin,
		SalaryMax:       salaryMax,
		SalaryRaw:       capString(strings.TrimSpace(salary), maxSalaryLen),
		Currency:        currency,
		JobType:         InferJobType(rawType, title),
		ExperienceLevel: InferExperienceLevel(title, description),
		TechStack:       ExtractTechStack(title, description, skills),
		Timezone:        timezoneFor(location),
		Source:          source,
		PostedDate:      ParsePostedDate(posted, time.Now().UTC()),
	}, nil
}
