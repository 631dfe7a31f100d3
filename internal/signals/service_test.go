package signals_test

import (
	"context"
	"errors"
	"testing"

	"jobiq/pipeline-service/internal/signals"
)

func TestRecordRejectsUnknownSignalType(t *testing.T) {
	svc := signals.NewService(nil, nil, nil)

	err := svc.Record(context.Background(), "job-1", "user-1", "bookmarked")
	if err == nil {
		t.Fatal("expected validation error for unknown signal type")
	}
	var ve *signals.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
}

func TestRecordRejectsEmptySignalType(t *testing.T) {
	svc := signals.NewService(nil, nil, nil)

	var ve *signals.ValidationError
	if err := svc.Record(context.Background(), "job-1", "user-1", ""); !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
}
