// Package ingest implements the deduplication and repost-lineage stage: raw
// provider payloads go in, upserted catalogue rows with lineage and fresh
// scores come out.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobiq/pipeline-service/internal/linkmatch"
	"jobiq/pipeline-service/internal/model"
	"jobiq/pipeline-service/internal/normalize"
	"jobiq/pipeline-service/internal/reputation"
	"jobiq/pipeline-service/internal/scoring"
)

// BatchSize bounds each upsert transaction. Postgres round-trip latency is
// paid once per batch, and a failed batch loses at most this many items until
// the next scheduled run retries them.
const BatchSize = 50

// How far back repost detection looks for a matching earlier posting.
const repostLookbackDays = 90

// Ingestor runs the normalize → upsert → lineage → score pipeline for one
// provider batch.
type Ingestor struct {
	pool      *pgxpool.Pool
	companies *reputation.Service
	engine    *scoring.Engine
}

// NewIngestor constructs an Ingestor.
func NewIngestor(pool *pgxpool.Pool, companies *reputation.Service, engine *scoring.Engine) *Ingestor {
	return &Ingestor{pool: pool, companies: companies, engine: engine}
}

// Run ingests one provider's raw payload batch. The source name is validated
// before any side effect; a malformed item is counted and skipped, never
// fatal to its siblings.
func (ing *Ingestor) Run(ctx context.Context, source string, raws []json.RawMessage) (model.RunReport, error) {
	report := model.RunReport{
		RunID:     uuid.NewString(),
		Source:    source,
		Found:     len(raws),
		StartedAt: time.Now().UTC(),
	}

	normalizer, err := normalize.BySource(source)
	if err != nil {
		return report, err
	}

	var candidates []*model.JobCandidate
	for _, raw := range raws {
		cand, err := normalizer.Normalize(raw)
		if err != nil {
			log.Printf("[ingest] %s: skipping malformed item: %v", source, err)
			report.Errors++
			continue
		}
		candidates = append(candidates, cand)
	}

	for start := 0; start < len(candidates); start += BatchSize {
		end := start + BatchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		ing.processChunk(ctx, candidates[start:end], &report)
	}

	report.FinishedAt = time.Now().UTC()
	log.Printf("[ingest] %s done — found=%d inserted=%d updated=%d errors=%d",
		source, report.Found, report.Inserted, report.Updated, report.Errors)
	return report, nil
}

type upsertResult struct {
	cand      *model.JobCandidate
	companyID string // empty when the company could not be resolved
	jobID     string
	inserted  bool
}

// processChunk upserts one bounded chunk via a single pgx batch, then runs
// lineage and scoring per job. A failure on one item never fails its
// siblings; a batch-level send failure counts every item and leaves the retry
// to the next scheduled run.
func (ing *Ingestor) processChunk(ctx context.Context, chunk []*model.JobCandidate, report *model.RunReport) {
	companyIDs := make([]string, len(chunk))
	for i, cand := range chunk {
		if cand.Company == "" {
			continue
		}
		company, err := ing.companies.FindOrCreateCompany(ctx, cand.Company, cand.CompanyLogoURL)
		if err != nil {
			log.Printf("[ingest] company resolve %q: %v", cand.Company, err)
			continue
		}
		companyIDs[i] = company.ID
	}

	batch := &pgx.Batch{}
	for i, cand := range chunk {
		queueUpsert(batch, cand, companyIDs[i])
	}

	results := make([]upsertResult, 0, len(chunk))
	br := ing.pool.SendBatch(ctx, batch)
	for i, cand := range chunk {
		var jobID string
		var inserted bool
		if err := br.QueryRow().Scan(&jobID, &inserted); err != nil {
			log.Printf("[ingest] upsert %s: %v", cand.URL, err)
			report.Errors++
			continue
		}
		results = append(results, upsertResult{cand: cand, companyID: companyIDs[i], jobID: jobID, inserted: inserted})
	}
	if err := br.Close(); err != nil {
		// Scan failures above already counted the lost items; the chunk is
		// retried wholesale at the next scheduled run, not inline.
		log.Printf("[ingest] batch close: %v", err)
	}

	for _, res := range results {
		if res.inserted {
			report.Inserted++
		} else {
			report.Updated++
		}
		if err := ing.track(ctx, res); err != nil {
			log.Printf("[ingest] lineage/scoring %s: %v", res.jobID, err)
			report.Errors++
		}
	}
}

func queueUpsert(batch *pgx.Batch, cand *model.JobCandidate, companyID string) {
	norm, _ := linkmatch.Normalize(cand.URL)
	batch.Queue(
		`INSERT INTO jobs (
		   id, url, url_normalized, url_domain, title, company, company_id,
		   company_title_hash, description, description_hash,
		   salary_min, salary_max, salary_raw, currency, job_type, experience_level,
		   tech_stack, timezone, source, posted_date, fetched_at,
		   is_active, status, last_seen_at
		 ) VALUES (
		   $1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10,
		   $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, NOW(),
		   true, 'active', NOW()
		 )
		 ON CONFLICT (url) DO UPDATE SET
		   title = EXCLUDED.title,
		   company = EXCLUDED.company,
		   company_id = COALESCE(jobs.company_id, EXCLUDED.company_id),
		   company_title_hash = EXCLUDED.company_title_hash,
		   description = EXCLUDED.description,
		   description_hash = EXCLUDED.description_hash,
		   salary_min = EXCLUDED.salary_min,
		   salary_max = EXCLUDED.salary_max,
		   salary_raw = EXCLUDED.salary_raw,
		   currency = EXCLUDED.currency,
		   job_type = EXCLUDED.job_type,
		   experience_level = EXCLUDED.experience_level,
		   tech_stack = EXCLUDED.tech_stack,
		   timezone = EXCLUDED.timezone,
		   posted_date = COALESCE(EXCLUDED.posted_date, jobs.posted_date),
		   fetched_at = NOW(),
		   last_seen_at = NOW()
		 RETURNING id, (xmax = 0) AS inserted`,
		uuid.NewString(), cand.URL, norm.URL, norm.Domain, cand.Title,
		cand.Company, companyID,
		linkmatch.CompanyTitleHash(cand.Company, cand.Title),
		cand.Description, cand.DescriptionHash,
		cand.SalaryMin, cand.SalaryMax, cand.SalaryRaw, cand.Currency,
		string(cand.JobType), string(cand.ExperienceLevel),
		cand.TechStack, cand.Timezone, cand.Source, cand.PostedDate,
	)
}

// track runs repost detection, writes the lineage row, bumps company
// counters, and rescores the job. Lineage runs on every pass, insert or
// update: the write is a no-op once the row exists, and a job whose lineage
// insert failed on the first sync gets it on the next one.
func (ing *Ingestor) track(ctx context.Context, res upsertResult) error {
	if err := ing.assignLineage(ctx, res); err != nil {
		return err
	}
	if res.inserted && res.companyID != "" {
		if err := ing.companies.IncrementJobCount(ctx, res.companyID); err != nil {
			log.Printf("[ingest] job count %s: %v", res.companyID, err)
		}
	}
	return ing.rescore(ctx, res.jobID, res.companyID)
}

// assignLineage fuzzy-matches the new posting against recent postings from
// the same company/title or identical description. A match chains it to the
// existing canonical id with the next instance number; a miss mints a new
// self-referencing canonical. The lineage write is idempotent per job, so
// re-ingesting an unchanged URL never creates a second canonical id.
func (ing *Ingestor) assignLineage(ctx context.Context, res upsertResult) error {
	canonicalID := res.jobID
	instance := 1

	var prevCanonical string
	var prevMax int
	err := ing.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT l.canonical_job_id, MAX(l.instance_number)
		 FROM job_lineage l
		 JOIN jobs j ON j.id = l.job_id
		 WHERE j.id <> $1
		   AND j.fetched_at > NOW() - INTERVAL '%d days'
		   AND (j.company_title_hash = $2
		        OR ($3 <> '' AND j.description_hash = $3))
		 GROUP BY l.canonical_job_id
		 ORDER BY MAX(l.instance_number) DESC
		 LIMIT 1`, repostLookbackDays),
		res.jobID,
		linkmatch.CompanyTitleHash(res.cand.Company, res.cand.Title),
		res.cand.DescriptionHash,
	).Scan(&prevCanonical, &prevMax)
	switch {
	case err == nil:
		canonicalID = prevCanonical
		instance = prevMax + 1
	case errors.Is(err, pgx.ErrNoRows):
		// First sighting of this role.
	default:
		return fmt.Errorf("repost lookup: %w", err)
	}

	tag, err := ing.pool.Exec(ctx,
		`INSERT INTO job_lineage (id, canonical_job_id, job_id, instance_number, posted_at)
		 VALUES ($1, $2, $3, $4, COALESCE($5, NOW()))
		 ON CONFLICT (job_id) DO NOTHING`,
		uuid.NewString(), canonicalID, res.jobID, instance, res.cand.PostedDate,
	)
	if err != nil {
		return fmt.Errorf("lineage insert: %w", err)
	}
	if tag.RowsAffected() == 0 || instance == 1 {
		return nil
	}

	// A later instance is by definition a repost of the canonical role.
	if _, err := ing.pool.Exec(ctx,
		`UPDATE jobs SET repost_count = $1 WHERE id = $2`,
		instance-1, res.jobID,
	); err != nil {
		return fmt.Errorf("repost count update: %w", err)
	}
	if res.companyID != "" {
		if err := ing.companies.RecordRepost(ctx, res.companyID); err != nil {
			log.Printf("[ingest] repost counter %s: %v", res.companyID, err)
		}
	}
	return nil
}

// rescore recomputes all four quality figures for one job and writes them
// atomically with quality_updated_at.
func (ing *Ingestor) rescore(ctx context.Context, jobID, companyID string) error {
	var in scoring.Input
	var companyTitleHash string
	err := ing.pool.QueryRow(ctx,
		`SELECT posted_date, salary_min, salary_max, salary_raw, description, repost_count,
		        GREATEST(COALESCE(days_active, 0),
		                 EXTRACT(DAY FROM NOW() - fetched_at)::int),
		        company_title_hash
		 FROM jobs WHERE id = $1`, jobID,
	).Scan(&in.PostedDate, &in.SalaryMin, &in.SalaryMax, &in.RawSalaryText, &in.Description,
		&in.RepostCount, &in.DaysActive, &companyTitleHash)
	if err != nil {
		return fmt.Errorf("rescore load: %w", err)
	}
	in.Now = time.Now().UTC()

	in.CompanyReputation = reputation.NeutralScore
	if companyID != "" {
		if score, err := ing.companies.Score(ctx, companyID); err == nil {
			in.CompanyReputation = score
		}
		if err := ing.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM jobs WHERE company_id = $1 AND is_active`, companyID,
		).Scan(&in.CompanyOpenPostings); err != nil {
			return fmt.Errorf("open postings count: %w", err)
		}
	}
	if err := ing.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM jobs
		 WHERE company_title_hash = $1 AND is_active AND id <> $2`,
		companyTitleHash, jobID,
	).Scan(&in.LocationCloneCount); err != nil {
		return fmt.Errorf("clone count: %w", err)
	}

	res := ing.engine.Score(in)
	flags := make([]string, len(res.GhostFlags))
	for i, f := range res.GhostFlags {
		flags[i] = string(f)
	}

	_, err = ing.pool.Exec(ctx,
		`UPDATE jobs
		 SET health_score = $1, quality_score = $2, ghost_score = $3,
		     ghost_flags = $4, quality_updated_at = NOW()
		 WHERE id = $5`,
		res.HealthScore, res.QualityScore, res.GhostScore, flags, jobID,
	)
	if err != nil {
		return fmt.Errorf("score write: %w", err)
	}
	return nil
}
