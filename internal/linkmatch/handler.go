// HTTP surface for the browser extension: resolve a raw job URL to the
// canonical catalogue entry.
//
// Routes:
//
//	POST /lookup → {url, company?, title?} → canonical job + saved flag
package linkmatch

import (
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// How long a resolved lookup stays cached in Redis. Lookups are repeated on
// every page load of the same posting, so even a short TTL absorbs most of
// the traffic.
const lookupCacheTTL = 10 * time.Minute

// ─── Request/response types ──────────────────────────────────────────────────

type lookupRequest struct {
	URL     string `json:"url"`
	Company string `json:"company,omitempty"`
	Title   string `json:"title,omitempty"`
}

// LookupJob is the JSON shape returned to the extension.
type LookupJob struct {
	ID           string  `json:"id"`
	URL          string  `json:"url"`
	Title        string  `json:"title"`
	Company      string  `json:"company"`
	Source       string  `json:"source"`
	Status       string  `json:"status"`
	IsActive     bool    `json:"isActive"`
	QualityScore float64 `json:"qualityScore"`
	GhostScore   float64 `json:"ghostScore"`
}

type lookupResponse struct {
	Found     bool       `json:"found"`
	MatchedBy string     `json:"matchedBy,omitempty"`
	Job       *LookupJob `json:"job,omitempty"`
	Saved     bool       `json:"saved"`
}

// ─── Handler ─────────────────────────────────────────────────────────────────

// Handler resolves extension URL lookups against the job catalogue.
type Handler struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
}

// NewHandler returns a configured Handler.
func NewHandler(pool *pgxpool.Pool, rdb *redis.Client) *Handler {
	return &Handler{pool: pool, rdb: rdb}
}

// RegisterRoutes mounts the lookup route on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/lookup", h.handleLookup)
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req lookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	norm, err := Normalize(req.URL)
	if err != nil {
		jsonError(w, "invalid url", http.StatusBadRequest)
		return
	}

	userID := r.Header.Get("x-user-id")

	// Cache first: repeated lookups of the same posting are the common case.
	cacheKey := "lookup:" + norm.URL
	if jobID, err := h.rdb.Get(r.Context(), cacheKey).Result(); err == nil && jobID != "" {
		if job, matchedBy := h.fetchJob(r, jobID); job != nil {
			writeJSON(w, http.StatusOK, lookupResponse{
				Found: true, MatchedBy: matchedBy, Job: job,
				Saved: h.isSaved(r, userID, job.ID),
			})
			return
		}
	}

	job, matchedBy := h.match(r, norm, req.Company, req.Title)
	if job == nil {
		writeJSON(w, http.StatusOK, lookupResponse{Found: false})
		return
	}

	if err := h.rdb.Set(r.Context(), cacheKey, job.ID, lookupCacheTTL).Err(); err != nil {
		slog.Warn("lookup cache set failed", "err", err)
	}

	writeJSON(w, http.StatusOK, lookupResponse{
		Found: true, MatchedBy: matchedBy, Job: job,
		Saved: h.isSaved(r, userID, job.ID),
	})
}

// match tries the three strategies in fixed order: exact normalized URL,
// same-domain substring containment, then the company+title content hash.
func (h *Handler) match(r *http.Request, norm Normalized, company, title string) (*LookupJob, string) {
	const cols = `SELECT id, url, title, company, source, status, is_active, quality_score, ghost_score FROM jobs`

	var job LookupJob
	scan := func(row interface{ Scan(dest ...any) error }) *LookupJob {
		if err := row.Scan(&job.ID, &job.URL, &job.Title, &job.Company,
			&job.Source, &job.Status, &job.IsActive, &job.QualityScore, &job.GhostScore); err != nil {
			return nil
		}
		return &job
	}

	if j := scan(h.pool.QueryRow(r.Context(),
		cols+` WHERE url_normalized = $1`, norm.URL)); j != nil {
		return j, "url"
	}

	if j := scan(h.pool.QueryRow(r.Context(),
		cols+` WHERE url_domain = $1
		   AND (position(url_normalized IN $2) > 0 OR position($2 IN url_normalized) > 0)
		 ORDER BY length(url_normalized) DESC
		 LIMIT 1`, norm.Domain, norm.URL)); j != nil {
		return j, "domain"
	}

	if company != "" && title != "" {
		if j := scan(h.pool.QueryRow(r.Context(),
			cols+` WHERE company_title_hash = $1
			 ORDER BY fetched_at DESC
			 LIMIT 1`, CompanyTitleHash(company, title))); j != nil {
			return j, "content_hash"
		}
	}
	return nil, ""
}

func (h *Handler) fetchJob(r *http.Request, jobID string) (*LookupJob, string) {
	var job LookupJob
	err := h.pool.QueryRow(r.Context(),
		`SELECT id, url, title, company, source, status, is_active, quality_score, ghost_score
		 FROM jobs WHERE id = $1`, jobID,
	).Scan(&job.ID, &job.URL, &job.Title, &job.Company, &job.Source,
		&job.Status, &job.IsActive, &job.QualityScore, &job.GhostScore)
	if err != nil {
		return nil, ""
	}
	return &job, "cache"
}

// isSaved reports whether the user already tracks this job. Anonymous lookups
// always report false.
func (h *Handler) isSaved(r *http.Request, userID, jobID string) bool {
	if userID == "" {
		return false
	}
	var saved bool
	err := h.pool.QueryRow(r.Context(),
		`SELECT EXISTS (SELECT 1 FROM saved_jobs WHERE user_id = $1 AND job_id = $2)`,
		userID, jobID,
	).Scan(&saved)
	if err != nil {
		log.Printf("[linkmatch] isSaved query error: %v", err)
		return false
	}
	return saved
}

// ─── JSON helpers ────────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
