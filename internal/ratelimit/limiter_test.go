package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllowEnforcesMinuteQuota(t *testing.T) {
	l := New()
	now := time.Date(2025, 3, 10, 12, 0, 5, 0, time.UTC)
	l.now = func() time.Time { return now }
	l.Register("adzuna", Quota{PerMinute: 3, PerDay: 100})

	for i := 0; i < 3; i++ {
		if !l.Allow("adzuna") {
			t.Fatalf("call %d should be allowed", i+1)
		}
	}
	if l.Allow("adzuna") {
		t.Error("fourth call within the minute should be denied")
	}

	// Next wall-clock minute resets the counter
	now = time.Date(2025, 3, 10, 12, 1, 0, 0, time.UTC)
	if !l.Allow("adzuna") {
		t.Error("call should be allowed after minute rollover")
	}
}

func TestAllowEnforcesDayQuota(t *testing.T) {
	l := New()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	l.Register("jooble", Quota{PerMinute: 100, PerDay: 2})

	l.Allow("jooble")
	l.Allow("jooble")
	if l.Allow("jooble") {
		t.Error("third call of the day should be denied")
	}

	// Minute rollover alone does not help
	now = now.Add(5 * time.Minute)
	if l.Allow("jooble") {
		t.Error("day quota should still block after minute rollover")
	}

	// Next calendar day resets
	now = time.Date(2025, 3, 11, 0, 0, 1, 0, time.UTC)
	if !l.Allow("jooble") {
		t.Error("call should be allowed on the next day")
	}
}

func TestAllowUnregisteredProvider(t *testing.T) {
	l := New()
	for i := 0; i < 50; i++ {
		if !l.Allow("unknown") {
			t.Fatal("unregistered providers must never be limited")
		}
	}
}

func TestZeroQuotaDimensionIsUnlimited(t *testing.T) {
	l := New()
	l.Register("remotive", Quota{PerMinute: 0, PerDay: 2})
	if !l.Allow("remotive") || !l.Allow("remotive") {
		t.Fatal("calls within day quota should pass")
	}
	if l.Allow("remotive") {
		t.Error("day quota should still apply")
	}
}

func TestWaitTimesOut(t *testing.T) {
	l := New()
	l.Register("adzuna", Quota{PerMinute: 1})
	if !l.Allow("adzuna") {
		t.Fatal("first call should pass")
	}

	start := time.Now()
	err := l.Wait(context.Background(), "adzuna", 300*time.Millisecond)
	if err != context.DeadlineExceeded {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("wait blocked far past its bound")
	}
}

func TestWaitHonorsContext(t *testing.T) {
	l := New()
	l.Register("adzuna", Quota{PerMinute: 1})
	l.Allow("adzuna")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Wait(ctx, "adzuna", time.Minute); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSnapshot(t *testing.T) {
	l := New()
	l.Register("adzuna", Quota{PerMinute: 2, PerDay: 10})
	l.Allow("adzuna")
	l.Allow("adzuna")

	snap := l.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected one provider, got %d", len(snap))
	}
	u := snap[0]
	if u.MinuteUsed != 2 || u.DayUsed != 2 {
		t.Errorf("usage = %+v, want 2/2", u)
	}
	if !u.MinuteBlocks {
		t.Error("minute window should report exhausted")
	}
	if u.DayBlocks {
		t.Error("day window should not report exhausted")
	}
}
