package lifecycle_test

import (
	"testing"

	"jobiq/pipeline-service/internal/lifecycle"
	"jobiq/pipeline-service/internal/model"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    model.Status
		wantErr bool
	}{
		{"active", model.StatusActive, false},
		{"closed_filled", model.StatusClosedFilled, false},
		{"closed_expired", model.StatusClosedExpired, false},
		{"closed_unknown", model.StatusClosedUnknown, false},
		{"reposted", model.StatusReposted, false},
		{"", "", true},
		{"deleted", "", true},
		{"ACTIVE", "", true},
	}
	for _, tt := range tests {
		got, err := lifecycle.ParseStatus(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStatus(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseStatus(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsTransitionAllowed(t *testing.T) {
	closed := []model.Status{
		model.StatusClosedFilled,
		model.StatusClosedExpired,
		model.StatusClosedUnknown,
	}

	for _, to := range closed {
		if !lifecycle.IsTransitionAllowed(model.StatusActive, to) {
			t.Errorf("active -> %s should be allowed", to)
		}
		if !lifecycle.IsTransitionAllowed(model.StatusReposted, to) {
			t.Errorf("reposted -> %s should be allowed", to)
		}
		if !lifecycle.IsTransitionAllowed(to, model.StatusReposted) {
			t.Errorf("%s -> reposted should be allowed", to)
		}
		if lifecycle.IsTransitionAllowed(to, model.StatusActive) {
			t.Errorf("%s -> active should not be allowed", to)
		}
	}

	// Closed statuses never move between each other.
	for _, from := range closed {
		for _, to := range closed {
			if lifecycle.IsTransitionAllowed(from, to) {
				t.Errorf("%s -> %s should not be allowed", from, to)
			}
		}
	}

	if lifecycle.IsTransitionAllowed(model.StatusActive, model.StatusActive) {
		t.Error("active -> active should not be allowed")
	}
	if lifecycle.IsTransitionAllowed(model.StatusActive, model.StatusReposted) {
		t.Error("active -> reposted should not be allowed")
	}
}

func TestIsClosedAndIsLive(t *testing.T) {
	for _, s := range []model.Status{model.StatusActive, model.StatusReposted} {
		if lifecycle.IsClosed(s) {
			t.Errorf("IsClosed(%s) = true, want false", s)
		}
		if !lifecycle.IsLive(s) {
			t.Errorf("IsLive(%s) = false, want true", s)
		}
	}
	for _, s := range []model.Status{model.StatusClosedFilled, model.StatusClosedExpired, model.StatusClosedUnknown} {
		if !lifecycle.IsClosed(s) {
			t.Errorf("IsClosed(%s) = false, want true", s)
		}
		if lifecycle.IsLive(s) {
			t.Errorf("IsLive(%s) = true, want false", s)
		}
	}
}

func TestClassifyRemoval(t *testing.T) {
	tests := []struct {
		name           string
		summary        lifecycle.SignalSummary
		wantStatus     model.Status
		wantOutcome    string
		wantConfidence float64
	}{
		{
			name:           "hired signal wins regardless of age",
			summary:        lifecycle.SignalSummary{HasHiredOrOffer: true, DaysActive: 200},
			wantStatus:     model.StatusClosedFilled,
			wantOutcome:    "filled",
			wantConfidence: 0.95,
		},
		{
			name:           "hired beats interview evidence",
			summary:        lifecycle.SignalSummary{HasHiredOrOffer: true, HasInterviewOrResponse: true},
			wantStatus:     model.StatusClosedFilled,
			wantOutcome:    "filled",
			wantConfidence: 0.95,
		},
		{
			name:           "interview or response",
			summary:        lifecycle.SignalSummary{HasInterviewOrResponse: true, DaysActive: 120},
			wantStatus:     model.StatusClosedFilled,
			wantOutcome:    "filled",
			wantConfidence: 0.80,
		},
		{
			name:           "applications in normal window",
			summary:        lifecycle.SignalSummary{Applications: 4, DaysActive: 30},
			wantStatus:     model.StatusClosedFilled,
			wantOutcome:    "filled",
			wantConfidence: 0.70,
		},
		{
			name:           "applications at window edges",
			summary:        lifecycle.SignalSummary{Applications: 1, DaysActive: 14},
			wantStatus:     model.StatusClosedFilled,
			wantOutcome:    "filled",
			wantConfidence: 0.70,
		},
		{
			name:           "applications past window falls through",
			summary:        lifecycle.SignalSummary{Applications: 2, DaysActive: 61},
			wantStatus:     model.StatusClosedUnknown,
			wantOutcome:    "unknown",
			wantConfidence: 0.50,
		},
		{
			name:           "no applications and very old",
			summary:        lifecycle.SignalSummary{DaysActive: 90},
			wantStatus:     model.StatusClosedExpired,
			wantOutcome:    "expired",
			wantConfidence: 0.60,
		},
		{
			name:           "no applications but recent",
			summary:        lifecycle.SignalSummary{DaysActive: 20},
			wantStatus:     model.StatusClosedUnknown,
			wantOutcome:    "unknown",
			wantConfidence: 0.50,
		},
		{
			name:           "no evidence at all",
			summary:        lifecycle.SignalSummary{},
			wantStatus:     model.StatusClosedUnknown,
			wantOutcome:    "unknown",
			wantConfidence: 0.50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lifecycle.ClassifyRemoval(tt.summary)
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %v, want %v", got.Status, tt.wantStatus)
			}
			if got.Outcome != tt.wantOutcome {
				t.Errorf("Outcome = %q, want %q", got.Outcome, tt.wantOutcome)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.wantConfidence)
			}
		})
	}
}
