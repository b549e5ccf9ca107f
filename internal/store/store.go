// Package store persists canonical jobs. Postgres is the production
// backend; the Store interface exists so the upsert service and scheduler
// can be exercised against fakes.
package store

import (
	"context"
	"errors"
	"time"

	"jobpulse-engine/pkg/models"
)

// ErrNotFound is returned by FindByIdentity when no record matches.
var ErrNotFound = errors.New("store: job not found")

// StoredJob is a canonical job plus its storage-assigned identity. The
// numeric ID is always generated by storage, never derived from the
// provider's native ID. LastSeenAt tracks the most recent live sighting
// independently of UpdatedAt, which only moves on content changes.
type StoredJob struct {
	ID         int64
	Job        models.CanonicalJob
	CreatedAt  time.Time
	UpdatedAt  time.Time
	LastSeenAt time.Time
}

// Store is the persistence contract for canonical jobs.
type Store interface {
	FindByIdentity(ctx context.Context, source, sourceID string) (*StoredJob, error)
	Insert(ctx context.Context, job *models.CanonicalJob) (int64, error)
	Update(ctx context.Context, id int64, job *models.CanonicalJob) error
	// Touch records a live sighting of an unchanged job without rewriting
	// the record.
	Touch(ctx context.Context, id int64, seenAt time.Time) error
	// MarkExpired deactivates active records whose expiry date has passed
	// and returns how many rows changed.
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
	// MarkStale deactivates active records not sighted since the cutoff.
	MarkStale(ctx context.Context, cutoff time.Time) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close()
}

// SignificantlyDiffers reports whether any field that matters for readers
// changed between the stored and fetched versions of a job. Volatile
// fields (raw payload, posted-at clock skew) deliberately do not count, so
// refetch volume does not translate into write volume. The active flag
// does count: a swept record that a provider still serves live must come
// back through a real update.
func SignificantlyDiffers(stored, fetched *models.CanonicalJob) bool {
	if stored.IsActive != fetched.IsActive ||
		stored.Title != fetched.Title ||
		stored.Company != fetched.Company ||
		stored.Location != fetched.Location ||
		stored.Description != fetched.Description ||
		stored.JobType != fetched.JobType ||
		stored.ExperienceLevel != fetched.ExperienceLevel ||
		stored.IsRemote != fetched.IsRemote ||
		stored.IsFeatured != fetched.IsFeatured ||
		stored.Sector != fetched.Sector ||
		stored.ApplyURL != fetched.ApplyURL ||
		stored.SourceURL != fetched.SourceURL {
		return true
	}
	return !floatPtrEqual(stored.SalaryMin, fetched.SalaryMin) ||
		!floatPtrEqual(stored.SalaryMax, fetched.SalaryMax)
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
