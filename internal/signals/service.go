// Package signals records user feedback on job postings and routes it into
// company reputation counters and the manual review queue.
package signals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"jobiq/pipeline-service/internal/model"
	"jobiq/pipeline-service/internal/reputation"
)

// ReviewThreshold is the number of distinct fake/spam reports that queues a
// job for manual review.
const ReviewThreshold = 3

// ErrJobNotFound is returned when a signal targets a job that does not exist.
var ErrJobNotFound = errors.New("job not found")

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// Service records job signals.
type Service struct {
	pool      *pgxpool.Pool
	rdb       *redis.Client
	companies *reputation.Service
}

func NewService(pool *pgxpool.Pool, rdb *redis.Client, companies *reputation.Service) *Service {
	return &Service{pool: pool, rdb: rdb, companies: companies}
}

// Record stores a signal for (jobID, userID). The pair is unique per signal
// type: repeating the same signal is a no-op and does not double-count
// reputation. Positive hiring-funnel signals feed the company's reputation
// counters; enough fake/spam reports queue the job for review.
func (s *Service) Record(ctx context.Context, jobID, userID, rawType string) error {
	sigType, err := model.ParseSignalType(rawType)
	if err != nil {
		return &ValidationError{Msg: err.Error()}
	}

	var companyID string
	err = s.pool.QueryRow(ctx,
		`SELECT COALESCE(company_id::text, '') FROM jobs WHERE id = $1`, jobID,
	).Scan(&companyID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrJobNotFound
	}
	if err != nil {
		return fmt.Errorf("signals: load job: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO job_signals (job_id, user_id, signal_type)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (job_id, user_id, signal_type) DO NOTHING`,
		jobID, userID, string(sigType))
	if err != nil {
		return fmt.Errorf("signals: insert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Duplicate signal, already counted.
		return nil
	}

	if companyID != "" {
		if err := s.bumpReputation(ctx, companyID, sigType); err != nil {
			slog.Warn("reputation bump failed", "companyId", companyID, "err", err)
		}
	}

	if sigType == model.SignalFakeReport || sigType == model.SignalSpamReport {
		if err := s.maybeQueueReview(ctx, jobID); err != nil {
			slog.Warn("review queue check failed", "jobId", jobID, "err", err)
		}
	}
	return nil
}

func (s *Service) bumpReputation(ctx context.Context, companyID string, sigType model.SignalType) error {
	switch sigType {
	case model.SignalApplied:
		return s.companies.RecordApplication(ctx, companyID)
	case model.SignalGotResponse, model.SignalInterview:
		return s.companies.RecordResponse(ctx, companyID)
	}
	return nil
}

// maybeQueueReview inserts a review queue entry once the report count reaches
// the threshold. The unique index on job_id makes the insert idempotent.
func (s *Service) maybeQueueReview(ctx context.Context, jobID string) error {
	var reports int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM job_signals
		 WHERE job_id = $1 AND signal_type IN ('fake_report', 'spam_report')`,
		jobID,
	).Scan(&reports)
	if err != nil {
		return err
	}
	if reports < ReviewThreshold {
		return nil
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO review_queue (job_id, reason, report_count)
		 VALUES ($1, 'user_reports', $2)
		 ON CONFLICT (job_id) DO NOTHING`,
		jobID, reports)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	event, _ := json.Marshal(map[string]any{"jobId": jobID, "reports": reports})
	if err := s.rdb.Publish(ctx, "EVENT_REVIEW_QUEUED", event).Err(); err != nil {
		slog.Warn("publish failed", "channel", "EVENT_REVIEW_QUEUED", "err", err)
	}
	log.Printf("[signals] job %s queued for review (%d reports)", jobID, reports)
	return nil
}
