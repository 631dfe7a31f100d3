// jobiq-pipeline-service
//
// Ingestion and quality pipeline for job postings:
//   - pulls raw listings per source and normalizes them into the catalogue
//   - dedupes by URL and content hash, tracking repost lineage
//   - scores health, ghost likelihood and overall quality
//   - sweeps daily liveness snapshots and drives the status state machine
//   - serves /lookup for the browser extension and /signals for user feedback
//
// Publishes EVENT_JOB_CLOSED, EVENT_JOB_REPOSTED and EVENT_REVIEW_QUEUED to
// Redis for Gateway SSE forward.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobiq/pipeline-service/internal/config"
	"jobiq/pipeline-service/internal/db"
	"jobiq/pipeline-service/internal/fetch"
	"jobiq/pipeline-service/internal/ingest"
	"jobiq/pipeline-service/internal/lifecycle"
	"jobiq/pipeline-service/internal/linkmatch"
	"jobiq/pipeline-service/internal/normalize"
	"jobiq/pipeline-service/internal/probe"
	"jobiq/pipeline-service/internal/reputation"
	"jobiq/pipeline-service/internal/scheduler"
	"jobiq/pipeline-service/internal/scoring"
	"jobiq/pipeline-service/internal/signals"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[pipeline-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[pipeline-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[pipeline-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[pipeline-service] PostgreSQL connected ✓")

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("[pipeline-service] Migrate: %v", err)
	}

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[pipeline-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[pipeline-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[pipeline-service] Redis connected ✓")

	// ── Pipeline wiring ──────────────────────────────────────────────────────
	companies := reputation.NewService(pool)
	engine := scoring.NewEngine(scoring.Weights{})
	ingestor := ingest.NewIngestor(pool, companies, engine)

	// One limiter shared by every probe the process issues.
	limiter := probe.NewLimiter(cfg.ProbeRequestsPerMinute)
	prober := probe.NewProber(limiter, normalize.Sources())

	runner := lifecycle.NewRunner(pool, rdb, prober, companies)
	runner.Concurrency = cfg.ProbeConcurrency

	sources := normalize.Sources()
	fetchers := make([]*fetch.FeedFetcher, 0, len(sources))
	for _, source := range sources {
		fetchers = append(fetchers, fetch.NewFeedFetcher(source, cfg.FeedEndpoint, cfg.FeedAPIKey))
	}

	sched := scheduler.New(fetchers, ingestor, runner, cfg.SyncIntervalHours, cfg.LifecycleCron)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[pipeline-service] Scheduler: %v", err)
	}
	defer sched.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	linkmatch.NewHandler(pool, rdb).RegisterRoutes(mux)
	signals.NewHandler(signals.NewService(pool, rdb, companies)).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[pipeline-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[pipeline-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[pipeline-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[pipeline-service] Shutdown error: %v", err)
	}
	log.Println("[pipeline-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "pipeline-service",
		"version": version,
	})
}
