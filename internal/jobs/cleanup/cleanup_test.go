package cleanup

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recordingPruner struct {
	mu      sync.Mutex
	cutoffs []time.Time
	removed int64
}

func (p *recordingPruner) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cutoffs = append(p.cutoffs, cutoff)
	return p.removed, nil
}

func (p *recordingPruner) calls() []time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]time.Time, len(p.cutoffs))
	copy(out, p.cutoffs)
	return out
}

func TestSweepUsesRetentionCutoff(t *testing.T) {
	pruner := &recordingPruner{removed: 3}
	job := NewJob(pruner, 24*time.Hour, time.Hour, nil)

	fixed := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return fixed }

	job.sweep(context.Background())

	calls := pruner.calls()
	if len(calls) != 1 {
		t.Fatalf("expected one sweep, got %d", len(calls))
	}
	want := fixed.Add(-24 * time.Hour)
	if !calls[0].Equal(want) {
		t.Fatalf("cutoff mismatch: got %v want %v", calls[0], want)
	}
}

func TestStartSweepsImmediatelyAndStopsOnCancel(t *testing.T) {
	pruner := &recordingPruner{}
	job := NewJob(pruner, time.Hour, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for len(pruner.calls()) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("initial sweep never ran")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("job did not stop on cancel")
	}
}

func TestNewJobAppliesDefaults(t *testing.T) {
	job := NewJob(nil, 0, 0, nil)

	if job.retention != 24*time.Hour {
		t.Fatalf("unexpected default retention %v", job.retention)
	}
	if job.interval != time.Hour {
		t.Fatalf("unexpected default interval %v", job.interval)
	}

	// nil pruner must be a harmless no-op.
	job.sweep(context.Background())
}
