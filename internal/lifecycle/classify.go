package lifecycle

import "jobiq/pipeline-service/internal/model"

// SignalSummary is the evidence available when classifying why a posting
// disappeared.
type SignalSummary struct {
	HasHiredOrOffer        bool // got_hired or got_offer signal on the job
	HasInterviewOrResponse bool // interview or got_response signal
	Applications           int  // tracked applications against the job
	DaysActive             int
}

// Removal is the classified reason a posting went inactive.
type Removal struct {
	Status     model.Status
	Outcome    string // filled | expired | unknown; feeds reputation counters
	Confidence float64
}

// ClassifyRemoval applies the fixed priority order for removal reasons.
// Hiring evidence always wins: a got_hired signal classifies the removal as
// filled at 0.95 regardless of how long the job was active.
func ClassifyRemoval(s SignalSummary) Removal {
	switch {
	case s.HasHiredOrOffer:
		return Removal{model.StatusClosedFilled, "filled", 0.95}
	case s.HasInterviewOrResponse:
		return Removal{model.StatusClosedFilled, "filled", 0.80}
	case s.Applications > 0 && s.DaysActive >= 14 && s.DaysActive <= 60:
		return Removal{model.StatusClosedFilled, "filled", 0.70}
	case s.Applications == 0 && s.DaysActive >= 90:
		return Removal{model.StatusClosedExpired, "expired", 0.60}
	default:
		return Removal{model.StatusClosedUnknown, "unknown", 0.50}
	}
}
