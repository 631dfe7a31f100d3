// Package model defines the canonical rows shared by every pipeline stage.
package model

import (
	"fmt"
	"time"
)

// ─── Enums ───────────────────────────────────────────────────────────────────

// JobType mirrors the job_type enum in PostgreSQL.
type JobType string

const (
	JobTypeFullTime   JobType = "full_time"
	JobTypePartTime   JobType = "part_time"
	JobTypeContract   JobType = "contract"
	JobTypeFreelance  JobType = "freelance"
	JobTypeInternship JobType = "internship"
)

// ExperienceLevel mirrors the experience_level enum in PostgreSQL.
type ExperienceLevel string

const (
	ExperienceAny    ExperienceLevel = "any"
	ExperienceJunior ExperienceLevel = "junior"
	ExperienceMid    ExperienceLevel = "mid"
	ExperienceSenior ExperienceLevel = "senior"
	ExperienceLead   ExperienceLevel = "lead"
)

// Status is the lifecycle state of a job posting. Jobs are never deleted —
// inactivity is a status, not a removal from the table.
type Status string

const (
	StatusActive        Status = "active"
	StatusClosedFilled  Status = "closed_filled"
	StatusClosedExpired Status = "closed_expired"
	StatusClosedUnknown Status = "closed_unknown"
	StatusReposted      Status = "reposted"
)

// SignalType is a user-submitted feedback event on a job posting.
type SignalType string

const (
	SignalApplied     SignalType = "applied"
	SignalGotResponse SignalType = "got_response"
	SignalInterview   SignalType = "interview"
	SignalGotOffer    SignalType = "got_offer"
	SignalGotHired    SignalType = "got_hired"
	SignalNoResponse  SignalType = "no_response"
	SignalFakeReport  SignalType = "fake_report"
	SignalSpamReport  SignalType = "spam_report"
)

// ParseSignalType converts a raw string to a SignalType, returning an error
// for unknown values. Called at the API boundary before any side effect.
func ParseSignalType(s string) (SignalType, error) {
	st := SignalType(s)
	switch st {
	case SignalApplied, SignalGotResponse, SignalInterview, SignalGotOffer,
		SignalGotHired, SignalNoResponse, SignalFakeReport, SignalSpamReport:
		return st, nil
	}
	return "", fmt.Errorf("unknown signal type %q", s)
}

// GhostFlag is one heuristic reason a posting looks like a ghost job.
type GhostFlag string

const (
	FlagStale90d           GhostFlag = "stale_90d"
	FlagReposted4x         GhostFlag = "reposted_4x"
	FlagMassHiring         GhostFlag = "mass_hiring"
	FlagMultiLocationClone GhostFlag = "multi_location_clone"
	FlagVagueSalary        GhostFlag = "vague_salary"
	FlagShortDescription   GhostFlag = "short_description"
	FlagTemplatedApply     GhostFlag = "templated_apply"
)

// ─── Rows ────────────────────────────────────────────────────────────────────

// Job is the canonical posting row. `url` is globally unique and is the
// deduplication key: ingestion is always an upsert on it.
type Job struct {
	ID              string
	URL             string
	Title           string
	Company         string
	CompanyID       string
	Description     string
	DescriptionHash string
	SalaryMin       *int
	SalaryMax       *int
	Currency        string
	JobType         JobType
	ExperienceLevel ExperienceLevel
	TechStack       []string
	Timezone        string
	Source          string
	PostedDate      *time.Time
	FetchedAt       time.Time
	IsActive        bool
	Status          Status
	HealthScore     float64
	QualityScore    float64
	GhostScore      float64
	GhostFlags      []GhostFlag
	RepostCount     int
	DaysActive      int
	IsEvergreen     bool
	LastSeenAt      *time.Time
	RemovedAt       *time.Time
}

// JobCandidate is a fully-normalized insert candidate produced by a source
// normalizer. Every field is populated or explicitly nil — never
// partially-typed data.
type JobCandidate struct {
	URL             string
	Title           string
	Company         string
	CompanyLogoURL  string
	Description     string
	DescriptionHash string
	SalaryMin       *int
	SalaryMax       *int
	SalaryRaw       string
	Currency        string
	JobType         JobType
	ExperienceLevel ExperienceLevel
	TechStack       []string
	Timezone        string
	Source          string
	PostedDate      *time.Time
}

// Company is a deduplicated employer identity keyed by a normalized name slug.
type Company struct {
	ID        string
	Name      string
	Slug      string
	LogoURL   string
	CreatedAt time.Time
}

// CompanyReputation is the rolling per-company aggregate. It is updated by
// additive counters only, never recomputed from full history scans.
type CompanyReputation struct {
	CompanyID        string
	JobsPosted       int
	JobsFilled       int
	JobsExpired      int
	JobsGhosted      int
	AppsTracked      int
	AppsResponded    int
	RepostsTotal     int
	DaysToCloseTotal float64
	ReputationScore  float64
	UpdatedAt        time.Time
}

// AvgDaysToClose derives the rolling average from the additive totals.
func (r *CompanyReputation) AvgDaysToClose() float64 {
	closed := r.JobsFilled + r.JobsExpired + r.JobsGhosted
	if closed == 0 {
		return 0
	}
	return r.DaysToCloseTotal / float64(closed)
}

// AvgRepostsPerJob derives the rolling reposts-per-job average.
func (r *CompanyReputation) AvgRepostsPerJob() float64 {
	if r.JobsPosted == 0 {
		return 0
	}
	return float64(r.RepostsTotal) / float64(r.JobsPosted)
}

// JobLineage links a canonical posting to each concrete occurrence.
// instance_number is strictly increasing per canonical id and never reused.
type JobLineage struct {
	ID             string
	CanonicalJobID string
	JobID          string
	InstanceNumber int
	PostedAt       time.Time
	ClosedAt       *time.Time
	CloseReason    string
}

// JobSnapshot records whether a posting was observed live on a calendar date.
// At most one row per (job_id, source, date).
type JobSnapshot struct {
	JobID        string
	Source       string
	SnapshotDate time.Time
	IsLive       bool
}

// JobSignal is user feedback, unique per (job_id, user_id, signal_type).
type JobSignal struct {
	ID         string
	JobID      string
	UserID     string
	SignalType SignalType
	CreatedAt  time.Time
}

// ReviewQueueItem is auto-inserted when a job accumulates enough fake/spam
// reports; consumed by the admin review UI outside this pipeline.
type ReviewQueueItem struct {
	ID        string
	JobID     string
	Reason    string
	CreatedAt time.Time
}

// RunReport carries per-source counters for one sync run. Item-level errors
// are counted here, never fatal to the batch.
type RunReport struct {
	RunID      string
	Source     string
	Found      int
	Inserted   int
	Updated    int
	Errors     int
	StartedAt  time.Time
	FinishedAt time.Time
}
