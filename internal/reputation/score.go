package reputation

import "jobiq/pipeline-service/internal/model"

// NeutralScore is returned for companies with no history. The neutral default
// is load-bearing: a brand-new company must not start out looking either
// trusted or suspicious.
const NeutralScore = 0.5

// Blend weights for the reputation score. Tunable, but the neutral default
// and the [0,1] range are fixed contracts.
type ScoreWeights struct {
	FillRate     float64
	ResponseRate float64
	RepostFactor float64
}

// DefaultScoreWeights blends closure outcomes, application responsiveness and
// repost behavior.
var DefaultScoreWeights = ScoreWeights{
	FillRate:     0.40,
	ResponseRate: 0.35,
	RepostFactor: 0.25,
}

// ScoreFromCounters derives the [0,1] reputation scalar from the rolling
// aggregate. Each component falls back to neutral when its denominator is
// empty, so partial history never drags a company to an extreme.
func ScoreFromCounters(rep *model.CompanyReputation, w ScoreWeights) float64 {
	closed := rep.JobsFilled + rep.JobsExpired + rep.JobsGhosted
	if closed == 0 && rep.AppsTracked == 0 && rep.JobsPosted == 0 {
		return NeutralScore
	}

	fillRate := NeutralScore
	if closed > 0 {
		fillRate = float64(rep.JobsFilled) / float64(closed)
	}

	responseRate := NeutralScore
	if rep.AppsTracked > 0 {
		responseRate = float64(rep.AppsResponded) / float64(rep.AppsTracked)
	}

	// 0 reposts/job → 1.0, degrading toward 0 as reposting becomes habitual.
	repostFactor := 1.0 / (1.0 + rep.AvgRepostsPerJob())

	score := w.FillRate*fillRate + w.ResponseRate*responseRate + w.RepostFactor*repostFactor
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
