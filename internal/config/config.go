// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the pipeline service.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	FeedEndpoint string // upstream aggregator feed, one call per source
	FeedAPIKey   string

	SyncIntervalHours      int    // How often the ingest cron fires
	LifecycleCron          string // cron spec for the daily sweep
	ProbeRequestsPerMinute int    // shared liveness probe budget
	ProbeConcurrency       int
}

// Load reads environment variables and returns a validated Config.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	interval := 6
	if s := os.Getenv("SYNC_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("SYNC_INTERVAL_HOURS must be a positive integer, got %q", s)
		}
		interval = v
	}

	lifecycleCron := os.Getenv("LIFECYCLE_CRON")
	if lifecycleCron == "" {
		lifecycleCron = "0 3 * * *" // 03:00 UTC daily
	}

	probeRPM := 30
	if s := os.Getenv("PROBE_REQUESTS_PER_MINUTE"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("PROBE_REQUESTS_PER_MINUTE must be a positive integer, got %q", s)
		}
		probeRPM = v
	}

	probeConcurrency := 5
	if s := os.Getenv("PROBE_CONCURRENCY"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > 10 {
			return nil, fmt.Errorf("PROBE_CONCURRENCY must be between 1 and 10, got %q", s)
		}
		probeConcurrency = v
	}

	port := os.Getenv("PIPELINE_PORT")
	if port == "" {
		port = "8082"
	}

	return &Config{
		Port:                   port,
		DatabaseURL:            dbURL,
		RedisURL:               redisURL,
		FeedEndpoint:           os.Getenv("FEED_ENDPOINT"),
		FeedAPIKey:             os.Getenv("FEED_API_KEY"),
		SyncIntervalHours:      interval,
		LifecycleCron:          lifecycleCron,
		ProbeRequestsPerMinute: probeRPM,
		ProbeConcurrency:       probeConcurrency,
	}, nil
}
