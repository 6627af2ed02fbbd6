package cli

import (
	"context"
	"testing"
	"time"
)

func TestSpinnerStopIsNotCancellation(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), "Working...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if s.Cancelled() {
		t.Error("an ordinary Stop should not report cancellation")
	}
}

func TestSpinnerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "Working...")
	s.Start()

	cancel()

	// Give the goroutine time to notice.
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should report cancellation after its context is cancelled")
	}
	s.Stop()
}

func TestSpinnerDoubleStop(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), "Working...")
	s.Start()
	s.Stop()
	s.Stop() // second Stop must not panic or block
}
