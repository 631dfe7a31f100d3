package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"jobiq/pipeline-service/internal/model"
	"jobiq/pipeline-service/internal/probe"
	"jobiq/pipeline-service/internal/reputation"
	"jobiq/pipeline-service/internal/scoring"
)

const (
	// Removed jobs stay in the daily sweep this long to catch quick reposts.
	removedLookbackDays = 7

	// Chunking keeps the sweep inside the prober's rate budget; the delay
	// spaces chunks out further.
	defaultChunkSize  = 20
	defaultChunkDelay = 2 * time.Second
)

// Runner executes the daily lifecycle sweep.
type Runner struct {
	pool      *pgxpool.Pool
	rdb       *redis.Client
	prober    *probe.Prober
	companies *reputation.Service

	ChunkSize   int
	ChunkDelay  time.Duration
	Concurrency int
}

// NewRunner constructs a Runner with default chunking.
func NewRunner(pool *pgxpool.Pool, rdb *redis.Client, prober *probe.Prober, companies *reputation.Service) *Runner {
	return &Runner{
		pool:        pool,
		rdb:         rdb,
		prober:      prober,
		companies:   companies,
		ChunkSize:   defaultChunkSize,
		ChunkDelay:  defaultChunkDelay,
		Concurrency: probe.DefaultConcurrency,
	}
}

type sweepJob struct {
	ID          string
	URL         string
	Source      string
	CompanyID   string
	Status      model.Status
	IsActive    bool
	GhostScore  float64
	DaysActive  int
	FirstSeenAt time.Time
}

// Run performs one daily sweep: probe every candidate job, upsert today's
// snapshot, transition statuses against yesterday's state, then recompute
// days_active and evergreen flags in bulk. A chunk failure increments the
// error counter and the sweep continues; only a run-level datastore failure
// aborts.
func (r *Runner) Run(ctx context.Context, now time.Time) error {
	jobs, err := r.loadSweepJobs(ctx)
	if err != nil {
		return fmt.Errorf("lifecycle: load jobs: %w", err)
	}
	log.Printf("[lifecycle] sweep started: %d job(s)", len(jobs))

	today := now.UTC().Truncate(24 * time.Hour)
	var transitioned, skipped, errCount int

	for start := 0; start < len(jobs); start += r.ChunkSize {
		end := start + r.ChunkSize
		if end > len(jobs) {
			end = len(jobs)
		}
		chunk := jobs[start:end]

		reqs := make([]probe.Request, len(chunk))
		for i, j := range chunk {
			reqs[i] = probe.Request{JobID: j.ID, URL: j.URL, Source: j.Source}
		}
		outcomes := r.prober.ExistsBatch(ctx, reqs, r.Concurrency)

		for _, j := range chunk {
			live := outcomes[j.ID]
			if live == nil {
				// No information: no snapshot, no transition. A transient
				// probe error must never look like a removal.
				skipped++
				continue
			}
			if err := r.applyObservation(ctx, j, *live, today); err != nil {
				log.Printf("[lifecycle] job %s: %v", j.ID, err)
				errCount++
				continue
			}
			transitioned++
		}

		if end < len(jobs) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.ChunkDelay):
			}
		}
	}

	if err := r.refreshDerivedFields(ctx); err != nil {
		return fmt.Errorf("lifecycle: derived fields: %w", err)
	}

	log.Printf("[lifecycle] sweep done: processed=%d skipped=%d errors=%d",
		transitioned, skipped, errCount)
	return nil
}

func (r *Runner) loadSweepJobs(ctx context.Context) ([]sweepJob, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT id, url, source, COALESCE(company_id::text, ''), status, is_active,
		        ghost_score, days_active, COALESCE(posted_date, fetched_at)
		 FROM jobs
		 WHERE is_active = true
		    OR removed_at > NOW() - INTERVAL '%d days'`, removedLookbackDays))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []sweepJob
	for rows.Next() {
		var j sweepJob
		var status string
		if err := rows.Scan(&j.ID, &j.URL, &j.Source, &j.CompanyID, &status,
			&j.IsActive, &j.GhostScore, &j.DaysActive, &j.FirstSeenAt); err != nil {
			return nil, err
		}
		j.Status, _ = ParseStatus(status)
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// applyObservation records today's snapshot and transitions the job against
// yesterday's state. The snapshot upsert commits before any transition runs;
// the two steps are sequential per job.
func (r *Runner) applyObservation(ctx context.Context, j sweepJob, live bool, today time.Time) error {
	if _, err := r.pool.Exec(ctx,
		`INSERT INTO job_snapshots (job_id, source, snapshot_date, is_live)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (job_id, source, snapshot_date) DO UPDATE SET is_live = EXCLUDED.is_live`,
		j.ID, j.Source, today, live,
	); err != nil {
		return fmt.Errorf("snapshot upsert: %w", err)
	}

	switch {
	case live && j.IsActive:
		_, err := r.pool.Exec(ctx,
			`UPDATE jobs SET last_seen_at = NOW() WHERE id = $1`, j.ID)
		return err

	case live && !j.IsActive && IsClosed(j.Status):
		return r.markReposted(ctx, j)

	case !live && j.IsActive:
		return r.markRemoved(ctx, j, today)
	}
	// Already closed and still gone: nothing to do.
	return nil
}

// markRemoved classifies the removal reason and closes the job. removed_at is
// set to yesterday, the last day the posting was observed live.
func (r *Runner) markRemoved(ctx context.Context, j sweepJob, today time.Time) error {
	summary, err := r.signalSummary(ctx, j.ID)
	if err != nil {
		return fmt.Errorf("signal summary: %w", err)
	}
	summary.DaysActive = j.DaysActive

	removal := ClassifyRemoval(summary)
	if !IsTransitionAllowed(j.Status, removal.Status) {
		return fmt.Errorf("transition %s → %s not allowed", j.Status, removal.Status)
	}

	yesterday := today.Add(-24 * time.Hour)
	if _, err := r.pool.Exec(ctx,
		`UPDATE jobs
		 SET status = $1, is_active = false, removed_at = $2
		 WHERE id = $3`,
		string(removal.Status), yesterday, j.ID,
	); err != nil {
		return fmt.Errorf("close update: %w", err)
	}

	if _, err := r.pool.Exec(ctx,
		`UPDATE job_lineage SET closed_at = $1, close_reason = $2
		 WHERE job_id = $3 AND closed_at IS NULL`,
		yesterday, removal.Outcome, j.ID,
	); err != nil {
		slog.Warn("lineage close update failed", "jobId", j.ID, "err", err)
	}

	if j.CompanyID != "" {
		outcome := removal.Outcome
		if outcome == "unknown" {
			if !scoring.Suspicious(j.GhostScore) {
				outcome = "" // no reputation evidence either way
			} else {
				outcome = "ghosted"
			}
		}
		if outcome != "" {
			if err := r.companies.RecordClosure(ctx, j.CompanyID, outcome, float64(j.DaysActive)); err != nil {
				slog.Warn("closure counter failed", "companyId", j.CompanyID, "err", err)
			}
		}
	}

	r.publish(ctx, "EVENT_JOB_CLOSED", map[string]any{
		"jobId":      j.ID,
		"status":     string(removal.Status),
		"reason":     removal.Outcome,
		"confidence": removal.Confidence,
	})
	return nil
}

// markReposted reopens a previously closed job that resolved live again.
func (r *Runner) markReposted(ctx context.Context, j sweepJob) error {
	if !IsTransitionAllowed(j.Status, model.StatusReposted) {
		return fmt.Errorf("transition %s → reposted not allowed", j.Status)
	}
	if _, err := r.pool.Exec(ctx,
		`UPDATE jobs
		 SET status = $1, is_active = true, removed_at = NULL,
		     repost_count = repost_count + 1, last_seen_at = NOW()
		 WHERE id = $2`,
		string(model.StatusReposted), j.ID,
	); err != nil {
		return fmt.Errorf("repost update: %w", err)
	}

	if j.CompanyID != "" {
		if err := r.companies.RecordRepost(ctx, j.CompanyID); err != nil {
			slog.Warn("repost counter failed", "companyId", j.CompanyID, "err", err)
		}
	}

	r.publish(ctx, "EVENT_JOB_REPOSTED", map[string]any{"jobId": j.ID})
	return nil
}

func (r *Runner) signalSummary(ctx context.Context, jobID string) (SignalSummary, error) {
	var s SignalSummary
	err := r.pool.QueryRow(ctx,
		`SELECT
		   COUNT(*) FILTER (WHERE signal_type IN ('got_hired', 'got_offer')) > 0,
		   COUNT(*) FILTER (WHERE signal_type IN ('interview', 'got_response')) > 0,
		   COUNT(*) FILTER (WHERE signal_type = 'applied')
		 FROM job_signals WHERE job_id = $1`, jobID,
	).Scan(&s.HasHiredOrOffer, &s.HasInterviewOrResponse, &s.Applications)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return s, err
	}
	return s, nil
}

// refreshDerivedFields recomputes days_active (active jobs measured to now,
// closed jobs to their last sighting) and promotes qualifying active jobs to
// evergreen. Evergreen is never unset.
func (r *Runner) refreshDerivedFields(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx,
		`UPDATE jobs
		 SET days_active = GREATEST(0, CASE
		   WHEN is_active THEN EXTRACT(DAY FROM NOW() - COALESCE(posted_date, fetched_at))::int
		   ELSE EXTRACT(DAY FROM COALESCE(last_seen_at, fetched_at) - COALESCE(posted_date, fetched_at))::int
		 END)`,
	); err != nil {
		return fmt.Errorf("days_active update: %w", err)
	}

	if _, err := r.pool.Exec(ctx,
		`UPDATE jobs SET is_evergreen = true
		 WHERE is_active = true AND is_evergreen = false
		   AND (days_active >= 90 OR repost_count >= 3)`,
	); err != nil {
		return fmt.Errorf("evergreen update: %w", err)
	}
	return nil
}

// publish emits a Redis event for downstream consumers; failures are
// non-fatal.
func (r *Runner) publish(ctx context.Context, channel string, payload map[string]any) {
	event, _ := json.Marshal(payload)
	if err := r.rdb.Publish(ctx, channel, event).Err(); err != nil {
		slog.Warn("publish failed", "channel", channel, "err", err)
	}
}
