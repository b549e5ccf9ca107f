package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"jobpulse-engine/internal/logging"
	"jobpulse-engine/pkg/models"
	"jobpulse-engine/pkg/utils"
)

// Upserter applies canonical jobs to storage with change detection. A
// record only produces a write when one of its significant fields moved.
type Upserter struct {
	store       Store
	concurrency int
	logger      logging.Logger
}

func NewUpserter(store Store, concurrency int) *Upserter {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Upserter{
		store:       store,
		concurrency: concurrency,
		logger:      logging.GetGlobalLogger(),
	}
}

// Upsert applies a single job and reports what happened to it.
func (u *Upserter) Upsert(ctx context.Context, job *models.CanonicalJob) (models.UpsertOutcome, error) {
	existing, err := u.store.FindByIdentity(ctx, job.Source, job.SourceID)
	switch {
	case errors.Is(err, ErrNotFound):
		if _, err := u.store.Insert(ctx, job); err != nil {
			return "", err
		}
		return models.UpsertCreated, nil
	case err != nil:
		return "", err
	}

	if !SignificantlyDiffers(&existing.Job, job) {
		// An unchanged job is still a sighting. Without the touch the
		// staleness sweep would deactivate postings every sync sees live.
		if err := u.store.Touch(ctx, existing.ID, time.Now()); err != nil {
			return "", err
		}
		return models.UpsertSkipped, nil
	}
	if err := u.store.Update(ctx, existing.ID, job); err != nil {
		return "", err
	}
	return models.UpsertUpdated, nil
}

// UpsertBatch processes a batch under a fixed worker count. A failing
// record lands in the stats error list under its identity key and never
// aborts the rest of the batch.
func (u *Upserter) UpsertBatch(ctx context.Context, jobs []models.CanonicalJob) *models.UpsertStats {
	stats := &models.UpsertStats{}
	if len(jobs) == 0 {
		return stats
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	work := make(chan *models.CanonicalJob)

	for i := 0; i < u.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range work {
				outcome, err := u.Upsert(ctx, job)
				mu.Lock()
				if err != nil {
					stats.Errors = append(stats.Errors, utils.NewStorageError(job.IdentityKey(), err.Error()).Error())
				} else {
					switch outcome {
					case models.UpsertCreated:
						stats.Created++
					case models.UpsertUpdated:
						stats.Updated++
					case models.UpsertSkipped:
						stats.Skipped++
					}
				}
				mu.Unlock()
			}
		}()
	}

	for i := range jobs {
		work <- &jobs[i]
	}
	close(work)
	wg.Wait()

	if len(stats.Errors) > 0 {
		u.logger.Warn("Upsert batch finished with errors", map[string]interface{}{
			"batch":  len(jobs),
			"errors": len(stats.Errors),
		})
	}
	return stats
}
