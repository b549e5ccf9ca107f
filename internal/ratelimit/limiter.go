// Package ratelimit tracks per-provider request budgets over rolling
// wall-clock windows. Providers advertise minute and day quotas; the
// limiter counts outbound calls against both and rolls each counter over
// when its window boundary passes.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Quota describes one provider's request budget. Zero values mean the
// dimension is unlimited.
type Quota struct {
	PerMinute int
	PerDay    int
}

type window struct {
	count int
	start time.Time
}

type providerState struct {
	quota  Quota
	minute window
	day    window
}

// Limiter gates outbound provider calls. Unknown providers are always
// allowed.
type Limiter struct {
	mu        sync.Mutex
	providers map[string]*providerState
	now       func() time.Time
}

// New creates a limiter with no registered providers.
func New() *Limiter {
	return &Limiter{
		providers: make(map[string]*providerState),
		now:       time.Now,
	}
}

// Register installs or replaces the quota for a provider.
func (l *Limiter) Register(provider string, quota Quota) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.providers[provider] = &providerState{quota: quota}
}

// Allow reports whether one more call to the provider fits within both
// windows and, if so, records it. Callers must invoke Allow once per
// outbound request, before the request is made.
func (l *Limiter) Allow(provider string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.providers[provider]
	if !ok {
		return true
	}

	now := l.now()
	l.roll(st, now)

	if st.quota.PerMinute > 0 && st.minute.count >= st.quota.PerMinute {
		return false
	}
	if st.quota.PerDay > 0 && st.day.count >= st.quota.PerDay {
		return false
	}

	st.minute.count++
	st.day.count++
	return true
}

// Wait blocks until a slot opens for the provider or the deadline passes.
// The wait is bounded by maxWait regardless of the context deadline.
func (l *Limiter) Wait(ctx context.Context, provider string, maxWait time.Duration) error {
	deadline := l.now().Add(maxWait)
	for {
		if l.Allow(provider) {
			return nil
		}
		if !l.now().Before(deadline) {
			return context.DeadlineExceeded
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}
	}
}

// Usage is a point-in-time snapshot of one provider's window counters.
type Usage struct {
	Provider     string `json:"provider"`
	MinuteUsed   int    `json:"minute_used"`
	MinuteQuota  int    `json:"minute_quota"`
	DayUsed      int    `json:"day_used"`
	DayQuota     int    `json:"day_quota"`
	MinuteBlocks bool   `json:"minute_exhausted"`
	DayBlocks    bool   `json:"day_exhausted"`
}

// Snapshot returns current usage for every registered provider.
func (l *Limiter) Snapshot() []Usage {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	usages := make([]Usage, 0, len(l.providers))
	for name, st := range l.providers {
		l.roll(st, now)
		usages = append(usages, Usage{
			Provider:     name,
			MinuteUsed:   st.minute.count,
			MinuteQuota:  st.quota.PerMinute,
			DayUsed:      st.day.count,
			DayQuota:     st.quota.PerDay,
			MinuteBlocks: st.quota.PerMinute > 0 && st.minute.count >= st.quota.PerMinute,
			DayBlocks:    st.quota.PerDay > 0 && st.day.count >= st.quota.PerDay,
		})
	}
	return usages
}

// roll resets counters whose wall-clock window has ended. Day windows
// follow the local calendar day, minute windows the started minute.
func (l *Limiter) roll(st *providerState, now time.Time) {
	if st.minute.start.IsZero() || now.Sub(st.minute.start) >= time.Minute {
		st.minute = window{start: now.Truncate(time.Minute)}
	}
	if st.day.start.IsZero() || now.YearDay() != st.day.start.YearDay() || now.Year() != st.day.start.Year() {
		st.day = window{start: now}
	}
}
