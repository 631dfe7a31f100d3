package ingest_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobiq/pipeline-service/internal/ingest"
	"jobiq/pipeline-service/internal/scoring"
)

// An unknown source is an invariant violation: rejected at the boundary
// before any datastore side effect.
func TestRun_UnknownSourceRejected(t *testing.T) {
	ing := ingest.NewIngestor(nil, nil, scoring.NewEngine(scoring.Weights{}))
	_, err := ing.Run(context.Background(), "monster",
		[]json.RawMessage{json.RawMessage(`{}`)})
	require.Error(t, err)
}

// Malformed items are counted and skipped; they never abort the batch and
// never reach the datastore.
func TestRun_MalformedItemsCountedNotFatal(t *testing.T) {
	ing := ingest.NewIngestor(nil, nil, scoring.NewEngine(scoring.Weights{}))
	report, err := ing.Run(context.Background(), "linkedin", []json.RawMessage{
		json.RawMessage(`{"broken`),
		json.RawMessage(`{}`),
		json.RawMessage(`{"title":"x"}`), // missing url
	})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Found)
	assert.Equal(t, 3, report.Errors)
	assert.Zero(t, report.Inserted)
	assert.Zero(t, report.Updated)
	assert.Equal(t, "linkedin", report.Source)
	assert.NotEmpty(t, report.RunID)
}
