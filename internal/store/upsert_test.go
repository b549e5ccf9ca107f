package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"jobpulse-engine/pkg/models"
)

// fakeStore is an in-memory Store used to exercise the upsert service.
type fakeStore struct {
	mu      sync.Mutex
	nextID  int64
	records map[string]*StoredJob
	failOn  map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*StoredJob), failOn: make(map[string]error)}
}

func (f *fakeStore) key(source, sourceID string) string { return source + "/" + sourceID }

func (f *fakeStore) FindByIdentity(_ context.Context, source, sourceID string) (*StoredJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.records[f.key(source, sourceID)]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *st
	return &copied, nil
}

func (f *fakeStore) Insert(_ context.Context, job *models.CanonicalJob) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn[job.IdentityKey()]; err != nil {
		return 0, err
	}
	f.nextID++
	now := time.Now()
	f.records[f.key(job.Source, job.SourceID)] = &StoredJob{
		ID: f.nextID, Job: *job, CreatedAt: now, UpdatedAt: now, LastSeenAt: now,
	}
	return f.nextID, nil
}

func (f *fakeStore) Update(_ context.Context, id int64, job *models.CanonicalJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn[job.IdentityKey()]; err != nil {
		return err
	}
	for _, st := range f.records {
		if st.ID == id {
			st.Job = *job
			st.UpdatedAt = time.Now()
			st.LastSeenAt = st.UpdatedAt
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeStore) Touch(_ context.Context, id int64, seenAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, st := range f.records {
		if st.ID == id {
			st.LastSeenAt = seenAt
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeStore) MarkExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, st := range f.records {
		if st.Job.IsActive && st.Job.ExpiryDate != nil && st.Job.ExpiryDate.Before(now) {
			st.Job.IsActive = false
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) MarkStale(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, st := range f.records {
		if st.Job.IsActive && st.LastSeenAt.Before(cutoff) {
			st.Job.IsActive = false
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CountActive(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, st := range f.records {
		if st.Job.IsActive {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) Ping(_ context.Context) error { return nil }
func (f *fakeStore) Close()                       {}

func sampleJob(id, title string) models.CanonicalJob {
	return models.CanonicalJob{
		Source:   "adzuna",
		SourceID: id,
		Title:    title,
		Company:  "Acme",
		Location: "Pune",
		Country:  "IN",
		IsActive: true,
	}
}

func TestUpsertCreateThenSkip(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	u := NewUpserter(fs, 1)

	job := sampleJob("1", "Go Developer")
	outcome, err := u.Upsert(ctx, &job)
	if err != nil || outcome != models.UpsertCreated {
		t.Fatalf("first upsert = %s, %v; want created", outcome, err)
	}
	firstUpdated := fs.records["adzuna/1"].UpdatedAt

	outcome, err = u.Upsert(ctx, &job)
	if err != nil || outcome != models.UpsertSkipped {
		t.Fatalf("second upsert = %s, %v; want skipped", outcome, err)
	}
	if !fs.records["adzuna/1"].UpdatedAt.Equal(firstUpdated) {
		t.Error("skip must not touch the update timestamp")
	}
}

func TestUpsertSkipRefreshesSighting(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	u := NewUpserter(fs, 1)

	job := sampleJob("1", "Go Developer")
	u.Upsert(ctx, &job)

	// Simulate a month of unchanged refetches by backdating the sighting.
	fs.records["adzuna/1"].LastSeenAt = time.Now().Add(-31 * 24 * time.Hour)

	outcome, err := u.Upsert(ctx, &job)
	if err != nil || outcome != models.UpsertSkipped {
		t.Fatalf("upsert = %s, %v; want skipped", outcome, err)
	}
	if time.Since(fs.records["adzuna/1"].LastSeenAt) > time.Minute {
		t.Fatal("skip did not refresh the sighting timestamp")
	}

	n, err := fs.MarkStale(ctx, time.Now().Add(-30*24*time.Hour))
	if err != nil || n != 0 {
		t.Errorf("stale sweep deactivated %d jobs, want 0 for a freshly sighted record", n)
	}
	if !fs.records["adzuna/1"].Job.IsActive {
		t.Error("a continuously sighted job must stay active")
	}
}

func TestUpsertReactivatesSweptJob(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	u := NewUpserter(fs, 1)

	job := sampleJob("1", "Go Developer")
	u.Upsert(ctx, &job)

	// The sweep deactivated it, then a later fetch sees it live again.
	fs.records["adzuna/1"].LastSeenAt = time.Now().Add(-31 * 24 * time.Hour)
	if n, _ := fs.MarkStale(ctx, time.Now().Add(-30*24*time.Hour)); n != 1 {
		t.Fatalf("stale sweep deactivated %d jobs, want 1", n)
	}

	outcome, err := u.Upsert(ctx, &job)
	if err != nil || outcome != models.UpsertUpdated {
		t.Fatalf("upsert after sweep = %s, %v; want updated", outcome, err)
	}
	if !fs.records["adzuna/1"].Job.IsActive {
		t.Error("re-sighted job must be reactivated")
	}
}

func TestUpsertUpdatesOnSignificantChange(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	u := NewUpserter(fs, 1)

	job := sampleJob("1", "Go Developer")
	u.Upsert(ctx, &job)

	changed := job
	changed.Title = "Senior Go Developer"
	outcome, err := u.Upsert(ctx, &changed)
	if err != nil || outcome != models.UpsertUpdated {
		t.Fatalf("upsert = %s, %v; want updated", outcome, err)
	}
	if fs.records["adzuna/1"].Job.Title != "Senior Go Developer" {
		t.Error("update did not persist new title")
	}
}

func TestUpsertIgnoresInsignificantChange(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	u := NewUpserter(fs, 1)

	job := sampleJob("1", "Go Developer")
	u.Upsert(ctx, &job)

	refetched := job
	refetched.RawPayload = []byte(`{"noise":"different"}`)
	now := time.Now()
	refetched.PostedAt = &now

	outcome, _ := u.Upsert(ctx, &refetched)
	if outcome != models.UpsertSkipped {
		t.Errorf("outcome = %s, want skipped for volatile-only changes", outcome)
	}
}

func TestUpsertBatchDuplicateIdentityLastWins(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	u := NewUpserter(fs, 1)

	stats := u.UpsertBatch(ctx, []models.CanonicalJob{
		sampleJob("1", "First Title"),
		sampleJob("1", "Second Title"),
		sampleJob("1", "Final Title"),
	})
	if stats.Created != 1 || stats.Updated != 2 {
		t.Fatalf("stats = %+v, want 1 created 2 updated", stats)
	}
	if len(fs.records) != 1 {
		t.Fatalf("expected exactly one stored record, got %d", len(fs.records))
	}
	if fs.records["adzuna/1"].Job.Title != "Final Title" {
		t.Errorf("stored title = %s, want last-processed value", fs.records["adzuna/1"].Job.Title)
	}
}

func TestUpsertBatchIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	fs.failOn["adzuna/2"] = errors.New("disk on fire")
	u := NewUpserter(fs, 3)

	stats := u.UpsertBatch(ctx, []models.CanonicalJob{
		sampleJob("1", "A"),
		sampleJob("2", "B"),
		sampleJob("3", "C"),
	})
	if stats.Created != 2 {
		t.Errorf("created = %d, want 2", stats.Created)
	}
	if len(stats.Errors) != 1 || !strings.Contains(stats.Errors[0], "adzuna/2") {
		t.Errorf("errors = %v, want one keyed by identity", stats.Errors)
	}
}

func TestUpsertBatchEmpty(t *testing.T) {
	u := NewUpserter(newFakeStore(), 4)
	stats := u.UpsertBatch(context.Background(), nil)
	if stats.Created != 0 || stats.Updated != 0 || stats.Skipped != 0 || len(stats.Errors) != 0 {
		t.Errorf("stats = %+v, want all zero", stats)
	}
}

func TestSignificantlyDiffers(t *testing.T) {
	base := sampleJob("1", "Go Developer")

	same := base
	if SignificantlyDiffers(&base, &same) {
		t.Error("identical jobs must not differ")
	}

	inactive := base
	inactive.IsActive = false
	if !SignificantlyDiffers(&inactive, &base) {
		t.Error("active flag flip must count")
	}

	salary := base
	v := 80000.0
	salary.SalaryMin = &v
	if !SignificantlyDiffers(&base, &salary) {
		t.Error("salary change must count")
	}

	equalSalary1, equalSalary2 := base, base
	a, b := 80000.0, 80000.0
	equalSalary1.SalaryMin, equalSalary2.SalaryMin = &a, &b
	if SignificantlyDiffers(&equalSalary1, &equalSalary2) {
		t.Error("equal salary values behind different pointers must not differ")
	}
}
