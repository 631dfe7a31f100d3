package scoring_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobiq/pipeline-service/internal/model"
	"jobiq/pipeline-service/internal/reputation"
	"jobiq/pipeline-service/internal/scoring"
)

var now = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func cleanInput() scoring.Input {
	posted := now.Add(-2 * 24 * time.Hour)
	min, max := 90000, 130000
	return scoring.Input{
		PostedDate:        &posted,
		Now:               now,
		SalaryMin:         &min,
		SalaryMax:         &max,
		Description:       strings.Repeat("We build developer tooling in Go. ", 20),
		RepostCount:       0,
		DaysActive:        2,
		CompanyReputation: reputation.NeutralScore,
	}
}

func TestFreshness(t *testing.T) {
	fresh := now.Add(-24 * time.Hour)
	stale := now.Add(-400 * 24 * time.Hour)

	assert.Greater(t, scoring.Freshness(&fresh, now), scoring.Freshness(&stale, now))
	assert.Equal(t, 0.0, scoring.Freshness(&stale, now))
	assert.Equal(t, 0.5, scoring.Freshness(nil, now), "missing posted_date scores neutral")
}

func TestScore_CleanJobHasNoFlags(t *testing.T) {
	res := scoring.NewEngine(scoring.Weights{}).Score(cleanInput())

	assert.Empty(t, res.GhostFlags)
	assert.Zero(t, res.GhostScore)
	assert.False(t, scoring.Suspicious(res.GhostScore))
	assert.Greater(t, res.QualityScore, 0.5)
}

func TestScore_FlagsEvaluatedIndependently(t *testing.T) {
	engine := scoring.NewEngine(scoring.Weights{})

	mutations := []struct {
		name   string
		mutate func(*scoring.Input)
		flag   model.GhostFlag
	}{
		{"stale", func(in *scoring.Input) { in.DaysActive = 120 }, model.FlagStale90d},
		{"reposted", func(in *scoring.Input) { in.RepostCount = 4 }, model.FlagReposted4x},
		{"mass hiring", func(in *scoring.Input) { in.CompanyOpenPostings = 20 }, model.FlagMassHiring},
		{"location clones", func(in *scoring.Input) { in.LocationCloneCount = 6 }, model.FlagMultiLocationClone},
		{"vague salary", func(in *scoring.Input) {
			in.SalaryMin, in.SalaryMax = nil, nil
			in.RawSalaryText = "Competitive salary"
		}, model.FlagVagueSalary},
		{"short description", func(in *scoring.Input) { in.Description = "Great job." }, model.FlagShortDescription},
		{"templated apply", func(in *scoring.Input) { in.Description += " Easy Apply today!" }, model.FlagTemplatedApply},
	}
	for _, m := range mutations {
		t.Run(m.name, func(t *testing.T) {
			in := cleanInput()
			m.mutate(&in)
			res := engine.Score(in)
			assert.Contains(t, res.GhostFlags, m.flag)
		})
	}
}

// ghost_score must be non-decreasing as flags accumulate on an otherwise
// identical job.
func TestScore_GhostScoreMonotoneInFlags(t *testing.T) {
	engine := scoring.NewEngine(scoring.Weights{})

	in := cleanInput()
	prev := engine.Score(in).GhostScore

	steps := []func(*scoring.Input){
		func(in *scoring.Input) { in.DaysActive = 120 },
		func(in *scoring.Input) { in.RepostCount = 5 },
		func(in *scoring.Input) { in.CompanyOpenPostings = 25 },
		func(in *scoring.Input) { in.LocationCloneCount = 8 },
		func(in *scoring.Input) {
			in.SalaryMin, in.SalaryMax = nil, nil
			in.RawSalaryText = "competitive pay"
		},
		func(in *scoring.Input) { in.Description = "short" },
	}
	for i, step := range steps {
		step(&in)
		got := engine.Score(in).GhostScore
		require.GreaterOrEqual(t, got, prev, "step %d lowered ghost score", i)
		prev = got
	}
	assert.True(t, scoring.Suspicious(prev), "fully flagged job must cross the suspicious cutoff")
	assert.LessOrEqual(t, prev, 10.0)
}

func TestScore_QualityPenalizedByGhost(t *testing.T) {
	engine := scoring.NewEngine(scoring.Weights{})

	clean := engine.Score(cleanInput())

	ghosted := cleanInput()
	ghosted.DaysActive = 150
	ghosted.RepostCount = 6
	ghosted.SalaryMin, ghosted.SalaryMax = nil, nil
	ghosted.RawSalaryText = "competitive salary"
	res := engine.Score(ghosted)

	assert.Less(t, res.QualityScore, clean.QualityScore)
	assert.True(t, res.HealthScore >= 0 && res.HealthScore <= 1)
	assert.True(t, res.QualityScore >= 0 && res.QualityScore <= 1)
}

func TestScore_ReputationMovesQuality(t *testing.T) {
	engine := scoring.NewEngine(scoring.Weights{})

	trusted := cleanInput()
	trusted.CompanyReputation = 0.95
	shady := cleanInput()
	shady.CompanyReputation = 0.05

	assert.Greater(t, engine.Score(trusted).QualityScore, engine.Score(shady).QualityScore)
}

func TestThresholds(t *testing.T) {
	assert.False(t, scoring.Suspicious(4.99))
	assert.True(t, scoring.Suspicious(5.0))
	assert.False(t, scoring.HighQuality(0.8))
	assert.True(t, scoring.HighQuality(0.81))
}
