package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
-- Companies, resolved by normalized slug
CREATE TABLE IF NOT EXISTS companies (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE,
	logo_url TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Additive reputation counters, one row per company
CREATE TABLE IF NOT EXISTS company_reputation (
	company_id UUID PRIMARY KEY REFERENCES companies(id),
	jobs_posted INT NOT NULL DEFAULT 0,
	jobs_filled INT NOT NULL DEFAULT 0,
	jobs_expired INT NOT NULL DEFAULT 0,
	jobs_ghosted INT NOT NULL DEFAULT 0,
	apps_tracked INT NOT NULL DEFAULT 0,
	apps_responded INT NOT NULL DEFAULT 0,
	reposts_total INT NOT NULL DEFAULT 0,
	days_to_close_total DOUBLE PRECISION NOT NULL DEFAULT 0,
	reputation_score DOUBLE PRECISION NOT NULL DEFAULT 0.5,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Job catalogue, deduped by raw URL
CREATE TABLE IF NOT EXISTS jobs (
	id UUID PRIMARY KEY,
	url TEXT NOT NULL UNIQUE,
	url_normalized TEXT NOT NULL,
	url_domain TEXT NOT NULL,
	title TEXT NOT NULL,
	company TEXT NOT NULL,
	company_id UUID REFERENCES companies(id),
	company_title_hash TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	description_hash TEXT NOT NULL DEFAULT '',
	salary_min INT,
	salary_max INT,
	salary_raw TEXT NOT NULL DEFAULT '',
	currency TEXT NOT NULL DEFAULT 'USD',
	job_type TEXT NOT NULL DEFAULT 'full_time',
	experience_level TEXT NOT NULL DEFAULT 'any',
	tech_stack TEXT[] NOT NULL DEFAULT '{}',
	timezone TEXT NOT NULL DEFAULT 'global',
	source TEXT NOT NULL,
	posted_date TIMESTAMPTZ,
	fetched_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	last_seen_at TIMESTAMPTZ,
	removed_at TIMESTAMPTZ,
	is_active BOOLEAN NOT NULL DEFAULT true,
	status TEXT NOT NULL DEFAULT 'active',
	repost_count INT NOT NULL DEFAULT 0,
	days_active INT NOT NULL DEFAULT 0,
	is_evergreen BOOLEAN NOT NULL DEFAULT false,
	health_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	quality_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	ghost_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	ghost_flags TEXT[] NOT NULL DEFAULT '{}',
	quality_updated_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_jobs_url_normalized ON jobs(url_normalized);
CREATE INDEX IF NOT EXISTS idx_jobs_url_domain ON jobs(url_domain);
CREATE INDEX IF NOT EXISTS idx_jobs_content_hash ON jobs(company_title_hash);
CREATE INDEX IF NOT EXISTS idx_jobs_company_active ON jobs(company_id, is_active);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);

-- Repost chains: every job points at the canonical first sighting
CREATE TABLE IF NOT EXISTS job_lineage (
	id UUID PRIMARY KEY,
	canonical_job_id UUID NOT NULL,
	job_id UUID NOT NULL UNIQUE REFERENCES jobs(id),
	instance_number INT NOT NULL,
	posted_at TIMESTAMPTZ NOT NULL,
	closed_at TIMESTAMPTZ,
	close_reason TEXT
);

CREATE INDEX IF NOT EXISTS idx_lineage_canonical ON job_lineage(canonical_job_id);

-- Daily liveness observations, one row per job per source per day
CREATE TABLE IF NOT EXISTS job_snapshots (
	id BIGSERIAL PRIMARY KEY,
	job_id UUID NOT NULL REFERENCES jobs(id),
	source TEXT NOT NULL,
	snapshot_date DATE NOT NULL,
	is_live BOOLEAN NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (job_id, source, snapshot_date)
);

-- User feedback, unique per (job, user, type)
CREATE TABLE IF NOT EXISTS job_signals (
	id BIGSERIAL PRIMARY KEY,
	job_id UUID NOT NULL REFERENCES jobs(id),
	user_id TEXT NOT NULL,
	signal_type TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (job_id, user_id, signal_type)
);

CREATE INDEX IF NOT EXISTS idx_signals_job ON job_signals(job_id);

-- Jobs flagged for manual review after repeated fake/spam reports
CREATE TABLE IF NOT EXISTS review_queue (
	id BIGSERIAL PRIMARY KEY,
	job_id UUID NOT NULL UNIQUE REFERENCES jobs(id),
	reason TEXT NOT NULL,
	report_count INT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	resolved_at TIMESTAMPTZ
);

-- Jobs a user tracks via the extension
CREATE TABLE IF NOT EXISTS saved_jobs (
	user_id TEXT NOT NULL,
	job_id UUID NOT NULL REFERENCES jobs(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, job_id)
);
`

// Migrate applies the schema. Every statement is idempotent, so running it on
// each startup is safe.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
