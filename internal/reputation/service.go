package reputation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobiq/pipeline-service/internal/model"
)

// Service encapsulates company identity resolution and reputation counters.
// It is transport-agnostic and safe to call from any pipeline stage.
type Service struct {
	pool    *pgxpool.Pool
	weights ScoreWeights
}

// NewService returns a configured Service with the default score weights.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool, weights: DefaultScoreWeights}
}

// ─── Company resolution ──────────────────────────────────────────────────────

// FindOrCreateCompany resolves a Company by normalized-name match. Exact slug
// match wins; otherwise prefix/substring candidates are considered with the
// shortest slug preferred (closest to the query, least extra qualifier text),
// ties broken by earliest created row. A miss creates the company.
func (s *Service) FindOrCreateCompany(ctx context.Context, name, logoURL string) (*model.Company, error) {
	slug := Slug(name)
	if slug == "" {
		return nil, fmt.Errorf("company name %q normalizes to empty slug", name)
	}

	var c model.Company
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, slug, COALESCE(logo_url, ''), created_at
		 FROM companies WHERE slug = $1`, slug,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.LogoURL, &c.CreatedAt)
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("company exact lookup: %w", err)
	}

	err = s.pool.QueryRow(ctx,
		`SELECT id, name, slug, COALESCE(logo_url, ''), created_at
		 FROM companies
		 WHERE position($1 IN slug) > 0 OR position(slug IN $1) > 0
		 ORDER BY length(slug) ASC, created_at ASC
		 LIMIT 1`, slug,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.LogoURL, &c.CreatedAt)
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("company fuzzy lookup: %w", err)
	}

	// ON CONFLICT covers a concurrent create of the same slug.
	err = s.pool.QueryRow(ctx,
		`INSERT INTO companies (id, name, slug, logo_url)
		 VALUES ($1, $2, $3, NULLIF($4, ''))
		 ON CONFLICT (slug) DO UPDATE SET logo_url = COALESCE(companies.logo_url, EXCLUDED.logo_url)
		 RETURNING id, name, slug, COALESCE(logo_url, ''), created_at`,
		uuid.NewString(), name, slug, logoURL,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.LogoURL, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("company insert: %w", err)
	}
	return &c, nil
}

// ─── Counter increments ──────────────────────────────────────────────────────

// Counter columns allowed in bump. Additive updates only — reputation is
// never recomputed from full history scans.
var counterColumns = map[string]bool{
	"jobs_posted":    true,
	"jobs_filled":    true,
	"jobs_expired":   true,
	"jobs_ghosted":   true,
	"apps_tracked":   true,
	"apps_responded": true,
	"reposts_total":  true,
}

func (s *Service) bump(ctx context.Context, companyID, column string) error {
	if !counterColumns[column] {
		return fmt.Errorf("unknown reputation counter %q", column)
	}
	_, err := s.pool.Exec(ctx, fmt.Sprintf(
		`INSERT INTO company_reputation (company_id, %[1]s)
		 VALUES ($1, 1)
		 ON CONFLICT (company_id)
		 DO UPDATE SET %[1]s = company_reputation.%[1]s + 1, updated_at = NOW()`, column),
		companyID,
	)
	if err != nil {
		return fmt.Errorf("bump %s: %w", column, err)
	}
	return nil
}

// IncrementJobCount records one more posting attributed to the company.
func (s *Service) IncrementJobCount(ctx context.Context, companyID string) error {
	return s.bump(ctx, companyID, "jobs_posted")
}

// RecordRepost counts one more repost instance for the company.
func (s *Service) RecordRepost(ctx context.Context, companyID string) error {
	return s.bump(ctx, companyID, "reposts_total")
}

// RecordApplication counts a tracked application against the company.
func (s *Service) RecordApplication(ctx context.Context, companyID string) error {
	return s.bump(ctx, companyID, "apps_tracked")
}

// RecordResponse counts an employer response to a tracked application.
func (s *Service) RecordResponse(ctx context.Context, companyID string) error {
	return s.bump(ctx, companyID, "apps_responded")
}

// RecordClosure records a closed posting and its time-to-close. outcome must
// be one of filled/expired/ghosted.
func (s *Service) RecordClosure(ctx context.Context, companyID, outcome string, daysToClose float64) error {
	var column string
	switch outcome {
	case "filled":
		column = "jobs_filled"
	case "expired":
		column = "jobs_expired"
	case "ghosted":
		column = "jobs_ghosted"
	default:
		return fmt.Errorf("unknown closure outcome %q", outcome)
	}
	_, err := s.pool.Exec(ctx, fmt.Sprintf(
		`INSERT INTO company_reputation (company_id, %[1]s, days_to_close_total)
		 VALUES ($1, 1, $2)
		 ON CONFLICT (company_id)
		 DO UPDATE SET %[1]s = company_reputation.%[1]s + 1,
		               days_to_close_total = company_reputation.days_to_close_total + $2,
		               updated_at = NOW()`, column),
		companyID, daysToClose,
	)
	if err != nil {
		return fmt.Errorf("record closure %s: %w", outcome, err)
	}
	return nil
}

// ─── Score ───────────────────────────────────────────────────────────────────

// Score returns the company's reputation scalar in [0,1], neutral 0.5 when no
// history exists. The derived score is written back to the row so read-side
// consumers (company profile endpoint) see the same number; that writeback is
// best-effort.
func (s *Service) Score(ctx context.Context, companyID string) (float64, error) {
	rep := model.CompanyReputation{CompanyID: companyID}
	err := s.pool.QueryRow(ctx,
		`SELECT jobs_posted, jobs_filled, jobs_expired, jobs_ghosted,
		        apps_tracked, apps_responded, reposts_total, days_to_close_total
		 FROM company_reputation WHERE company_id = $1`, companyID,
	).Scan(&rep.JobsPosted, &rep.JobsFilled, &rep.JobsExpired, &rep.JobsGhosted,
		&rep.AppsTracked, &rep.AppsResponded, &rep.RepostsTotal, &rep.DaysToCloseTotal)
	if errors.Is(err, pgx.ErrNoRows) {
		return NeutralScore, nil
	}
	if err != nil {
		return NeutralScore, fmt.Errorf("reputation lookup: %w", err)
	}

	score := ScoreFromCounters(&rep, s.weights)
	if _, err := s.pool.Exec(ctx,
		`UPDATE company_reputation SET reputation_score = $1, updated_at = NOW()
		 WHERE company_id = $2`, score, companyID); err != nil {
		slog.Warn("reputation score writeback failed", "companyId", companyID, "err", err)
	}
	return score, nil
}
