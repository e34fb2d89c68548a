package main

import (
	"context"
	"errors"
	"testing"
)

type fakeExporter struct {
	n   int
	err error
}

func (f fakeExporter) ExportPending(ctx context.Context, limit int) (int, error) {
	return f.n, f.err
}

func TestRunOnceSuccess(t *testing.T) {
	if err := runOnce(context.Background(), fakeExporter{n: 2}); err != nil {
		t.Fatalf("runOnce: %v", err)
	}
}

func TestRunOnceFailure(t *testing.T) {
	if err := runOnce(context.Background(), fakeExporter{err: errors.New("sheets down")}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("WORKER_TEST_INT", "12")
	if got := envInt("WORKER_TEST_INT", 3); got != 12 {
		t.Fatalf("expected 12, got %d", got)
	}
	t.Setenv("WORKER_TEST_INT", "nope")
	if got := envInt("WORKER_TEST_INT", 3); got != 3 {
		t.Fatalf("expected default, got %d", got)
	}
}
