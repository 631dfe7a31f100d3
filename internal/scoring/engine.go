// Package scoring computes the health, freshness, ghost and quality scores
// for one job posting. Scoring is a pure function of the job's attributes and
// its company's reputation — no network, no datastore — so it is cheap to
// re-run on every sync.
//
// Two thresholds are fixed contracts shared with every downstream consumer
// (filtering, badges, chat context): ghost_score >= 5 means "suspicious" and
// quality_score > 0.8 means "high quality". The weights behind them are
// tunable; the thresholds are not.
package scoring

import (
	"strings"
	"time"

	"jobiq/pipeline-service/internal/model"
)

// SuspiciousGhostScore is the fixed cutoff above which a posting is treated
// as a likely ghost job everywhere downstream.
const SuspiciousGhostScore = 5.0

// HighQualityScore is the fixed cutoff above which a posting is surfaced as
// high quality.
const HighQualityScore = 0.8

// Structural thresholds behind the ghost flags.
const (
	staleDays          = 90
	repostFlagCount    = 4
	massHiringOpenings = 15
	cloneLocations     = 5
	minDescriptionLen  = 200
	freshnessWindow    = 180.0 // days until freshness bottoms out
)

// Input carries everything the engine needs for one job.
type Input struct {
	PostedDate        *time.Time
	Now               time.Time
	SalaryMin         *int
	SalaryMax         *int
	RawSalaryText     string
	Description       string
	RepostCount       int
	DaysActive        int
	CompanyReputation float64
	// Structural context resolved by the caller from catalogue state.
	CompanyOpenPostings int
	LocationCloneCount  int
}

// Result is the atomically-written scoring output.
type Result struct {
	Freshness    float64
	HealthScore  float64
	GhostScore   float64
	GhostFlags   []model.GhostFlag
	QualityScore float64
}

// Weights parameterizes the scoring blend. Defaults honor the fixed
// thresholds; the coefficients themselves are tunable.
type Weights struct {
	Flags map[model.GhostFlag]float64

	HealthFreshness  float64
	HealthReputation float64
	HealthStructure  float64

	QualityHealth     float64
	QualityFreshness  float64
	QualityReputation float64
	QualityGhost      float64
}

// DefaultWeights sums flag weights to the full 10-point ghost scale.
func DefaultWeights() Weights {
	return Weights{
		Flags: map[model.GhostFlag]float64{
			model.FlagStale90d:           2.0,
			model.FlagReposted4x:         2.5,
			model.FlagMassHiring:         1.5,
			model.FlagMultiLocationClone: 1.5,
			model.FlagVagueSalary:        1.0,
			model.FlagShortDescription:   1.0,
			model.FlagTemplatedApply:     0.5,
		},
		HealthFreshness:  0.35,
		HealthReputation: 0.35,
		HealthStructure:  0.30,

		QualityHealth:     0.40,
		QualityFreshness:  0.20,
		QualityReputation: 0.20,
		QualityGhost:      0.20,
	}
}

// Engine scores jobs under one weight set.
type Engine struct {
	weights Weights
}

// NewEngine returns an Engine with the given weights; zero-value weights fall
// back to the defaults.
func NewEngine(w Weights) *Engine {
	if w.Flags == nil {
		w = DefaultWeights()
	}
	return &Engine{weights: w}
}

// Score computes all four quantities together. Callers persist the whole
// Result in one write.
func (e *Engine) Score(in Input) Result {
	freshness := Freshness(in.PostedDate, in.Now)
	flags := e.ghostFlags(in)
	ghost := e.ghostScore(flags)

	health := e.weights.HealthFreshness*freshness +
		e.weights.HealthReputation*in.CompanyReputation +
		e.weights.HealthStructure*structuralScore(in)
	health = clamp01(health)

	quality := e.weights.QualityHealth*health +
		e.weights.QualityFreshness*freshness +
		e.weights.QualityReputation*in.CompanyReputation +
		e.weights.QualityGhost*(1.0-ghost/10.0)
	quality = clamp01(quality)

	return Result{
		Freshness:    freshness,
		HealthScore:  health,
		GhostScore:   ghost,
		GhostFlags:   flags,
		QualityScore: quality,
	}
}

// Freshness decays linearly from 1.0 at posting time to 0.0 after the
// freshness window. A job with no posted_date scores neutral: absence of a
// date is not evidence of staleness.
func Freshness(postedDate *time.Time, now time.Time) float64 {
	if postedDate == nil {
		return 0.5
	}
	days := now.Sub(*postedDate).Hours() / 24.0
	if days < 0 {
		days = 0
	}
	return clamp01(1.0 - days/freshnessWindow)
}

// ghostFlags evaluates every flag independently against the job's attributes.
func (e *Engine) ghostFlags(in Input) []model.GhostFlag {
	var flags []model.GhostFlag

	if in.DaysActive >= staleDays {
		flags = append(flags, model.FlagStale90d)
	}
	if in.RepostCount >= repostFlagCount {
		flags = append(flags, model.FlagReposted4x)
	}
	if in.CompanyOpenPostings >= massHiringOpenings {
		flags = append(flags, model.FlagMassHiring)
	}
	if in.LocationCloneCount >= cloneLocations {
		flags = append(flags, model.FlagMultiLocationClone)
	}
	if vagueSalary(in) {
		flags = append(flags, model.FlagVagueSalary)
	}
	if len(strings.TrimSpace(in.Description)) < minDescriptionLen {
		flags = append(flags, model.FlagShortDescription)
	}
	if templatedApply(in.Description) {
		flags = append(flags, model.FlagTemplatedApply)
	}
	return flags
}

// ghostScore is the weighted sum over present flags, clamped to [0,10].
// Adding flags never lowers the score.
func (e *Engine) ghostScore(flags []model.GhostFlag) float64 {
	var score float64
	for _, f := range flags {
		score += e.weights.Flags[f]
	}
	if score > 10 {
		return 10
	}
	return score
}

// vagueSalary: "competitive" language with no numeric range disclosed.
func vagueSalary(in Input) bool {
	if in.SalaryMin != nil || in.SalaryMax != nil {
		return false
	}
	text := strings.ToLower(in.RawSalaryText + " " + in.Description)
	return strings.Contains(text, "competitive salary") ||
		strings.Contains(text, "competitive compensation") ||
		strings.Contains(text, "competitive pay")
}

// templatedApply: generic 1-click apply flows correlate with application
// harvesting.
func templatedApply(description string) bool {
	text := strings.ToLower(description)
	for _, marker := range []string{"easy apply", "quick apply", "1-click apply", "one-click apply"} {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// structuralScore rewards disclosed salary, a substantive description, and a
// moderate (not excessive) repost count.
func structuralScore(in Input) float64 {
	var score float64
	if in.SalaryMin != nil || in.SalaryMax != nil {
		score += 1
	}
	if len(strings.TrimSpace(in.Description)) >= minDescriptionLen {
		score += 1
	}
	switch {
	case in.RepostCount <= 2:
		score += 1
	case in.RepostCount <= 4:
		score += 0.5
	}
	return score / 3.0
}

// Suspicious reports whether a ghost score crosses the fixed downstream
// cutoff.
func Suspicious(ghostScore float64) bool { return ghostScore >= SuspiciousGhostScore }

// HighQuality reports whether a quality score crosses the fixed downstream
// cutoff.
func HighQuality(qualityScore float64) bool { return qualityScore > HighQualityScore }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
