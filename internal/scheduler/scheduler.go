// Package scheduler wires up the cron jobs that drive the pipeline: the
// periodic ingest cycle and the daily lifecycle sweep.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"jobiq/pipeline-service/internal/fetch"
	"jobiq/pipeline-service/internal/ingest"
	"jobiq/pipeline-service/internal/lifecycle"
)

// Scheduler wraps robfig/cron and manages the ingest and lifecycle loops.
type Scheduler struct {
	cron          *cron.Cron
	fetchers      []*fetch.FeedFetcher
	ingestor      *ingest.Ingestor
	runner        *lifecycle.Runner
	syncSpec      string // e.g. "@every 6h"
	lifecycleSpec string // e.g. "0 3 * * *"
}

// New creates a Scheduler that ingests every intervalHours hours and runs the
// lifecycle sweep on lifecycleSpec.
func New(fetchers []*fetch.FeedFetcher, ingestor *ingest.Ingestor, runner *lifecycle.Runner, intervalHours int, lifecycleSpec string) *Scheduler {
	return &Scheduler{
		cron:          cron.New(cron.WithLogger(cron.DefaultLogger)),
		fetchers:      fetchers,
		ingestor:      ingestor,
		runner:        runner,
		syncSpec:      fmt.Sprintf("@every %dh", intervalHours),
		lifecycleSpec: lifecycleSpec,
	}
}

// Start registers both jobs and starts the scheduler. Also runs one ingest
// cycle immediately so the pipeline is populated without waiting for the
// first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.syncSpec, func() { s.runSync(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc sync: %w", err)
	}
	if _, err := s.cron.AddFunc(s.lifecycleSpec, func() { s.runLifecycle(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc lifecycle: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — sync: %s, lifecycle: %s", s.syncSpec, s.lifecycleSpec)

	// Run immediately on startup (non-blocking)
	go s.runSync(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

// runSync fetches and ingests every configured source. A source failure is
// logged and the cycle moves on to the next source.
func (s *Scheduler) runSync(ctx context.Context) {
	log.Println("[scheduler] Ingest cycle started")

	for _, f := range s.fetchers {
		raws, err := f.Fetch(ctx)
		if err != nil {
			log.Printf("[scheduler] Fetch error for %s: %v", f.Source, err)
			if len(raws) == 0 {
				continue
			}
			// Partial page set still gets ingested.
		}
		if len(raws) == 0 {
			continue
		}

		report, err := s.ingestor.Run(ctx, f.Source, raws)
		if err != nil {
			log.Printf("[scheduler] Ingest error for %s: %v", f.Source, err)
			continue
		}
		log.Printf("[scheduler] %s: found=%d inserted=%d updated=%d errors=%d",
			f.Source, report.Found, report.Inserted, report.Updated, report.Errors)
	}

	log.Println("[scheduler] Ingest cycle complete")
}

func (s *Scheduler) runLifecycle(ctx context.Context) {
	log.Println("[scheduler] Lifecycle sweep started")
	if err := s.runner.Run(ctx, time.Now()); err != nil {
		log.Printf("[scheduler] Lifecycle error: %v", err)
		return
	}
	log.Println("[scheduler] Lifecycle sweep complete")
}
