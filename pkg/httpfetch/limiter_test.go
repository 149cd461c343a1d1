package httpfetch

import (
	"context"
	"testing"
	"time"
)

func TestLimiterAllowsBurst(t *testing.T) {
	l := NewLimiter(1, 3)
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Wait(ctx, "example.com"); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("burst of 3 took %s, want near-instant", elapsed)
	}
}

func TestLimiterThrottlesBeyondBurst(t *testing.T) {
	l := NewLimiter(20, 1) // 1 token, refilling at 20/s => next token in 50ms
	ctx := context.Background()

	if err := l.Wait(ctx, "example.com"); err != nil {
		t.Fatalf("first Wait() error = %v", err)
	}

	start := time.Now()
	if err := l.Wait(ctx, "example.com"); err != nil {
		t.Fatalf("second Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("second Wait() returned in %s, expected to be throttled", elapsed)
	}
}

func TestLimiterTracksHostsIndependently(t *testing.T) {
	l := NewLimiter(1, 1)
	ctx := context.Background()
	if err := l.Wait(ctx, "a.com"); err != nil {
		t.Fatalf("Wait(a.com) error = %v", err)
	}

	start := time.Now()
	if err := l.Wait(ctx, "b.com"); err != nil {
		t.Fatalf("Wait(b.com) error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("distinct host was throttled by another host's bucket, took %s", elapsed)
	}
}

func TestLimiterRespectsContextCancellation(t *testing.T) {
	l := NewLimiter(1, 1)
	ctx := context.Background()
	_ = l.Wait(ctx, "example.com")

	cctx, cancel := context.WithTimeout(ctx, 5*time.Millisecond)
	defer cancel()
	if err := l.Wait(cctx, "example.com"); err == nil {
		t.Error("expected context deadline error while waiting for a token")
	}
}
