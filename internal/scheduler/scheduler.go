// Package scheduler drives the periodic full sync: every configured query
// is aggregated for every configured country, the cross-product batch is
// re-deduplicated, expired records are swept and the batch is persisted.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"jobpulse-engine/internal/aggregator"
	"jobpulse-engine/internal/config"
	"jobpulse-engine/internal/logging"
	"jobpulse-engine/internal/store"
	"jobpulse-engine/pkg/models"
	"jobpulse-engine/pkg/utils"
)

// Notifier receives the outcome of each completed sync run.
type Notifier interface {
	NotifySyncCompleted(ctx context.Context, run *models.SyncRun) error
}

// Scheduler owns the cron loop and the sync control flow.
type Scheduler struct {
	cfg      *config.Config
	agg      *aggregator.Aggregator
	upserter *store.Upserter
	store    store.Store
	cron     *cron.Cron
	notifier Notifier
	logger   logging.Logger
}

func New(cfg *config.Config, agg *aggregator.Aggregator, upserter *store.Upserter, st store.Store) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		agg:      agg,
		upserter: upserter,
		store:    st,
		cron:     cron.New(),
		logger:   logging.GetGlobalLogger(),
	}
}

// SetNotifier installs an optional webhook notifier invoked after every
// sync run.
func (s *Scheduler) SetNotifier(n Notifier) {
	s.notifier = n
}

// Start registers the periodic sync job. It is a no-op when the scheduler
// is disabled in configuration.
func (s *Scheduler) Start() error {
	if !s.cfg.Scheduler.Enabled {
		s.logger.Info("Scheduler disabled, skipping cron registration")
		return nil
	}

	spec := fmt.Sprintf("@every %s", s.cfg.Scheduler.Interval)
	_, err := s.cron.AddFunc(spec, func() {
		run := s.RunSync(context.Background(), nil)
		s.logger.Info("Scheduled sync finished", map[string]interface{}{
			"run_id":   run.RunID,
			"fetched":  run.Fetched,
			"created":  run.Created,
			"updated":  run.Updated,
			"skipped":  run.Skipped,
			"expired":  run.Expired,
			"errors":   len(run.Errors),
			"success":  run.Success,
			"duration": utils.FormatDuration(run.Duration),
		})
	})
	if err != nil {
		return fmt.Errorf("failed to register sync job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started", map[string]interface{}{
		"interval": s.cfg.Scheduler.Interval.String(),
	})
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunSync executes one full sync cycle. req overrides the configured
// defaults where its fields are set. The returned SyncRun is always
// complete: partial provider failures are folded into the error list,
// only a storage-level control failure flips Success to false.
func (s *Scheduler) RunSync(ctx context.Context, req *models.SyncRequest) *models.SyncRun {
	run := &models.SyncRun{
		RunID:     utils.GenerateRequestID(),
		StartedAt: time.Now(),
		Success:   true,
	}

	queries, countries, maxPerQuery := s.resolvePlan(req)
	s.logger.Info("Sync run starting", map[string]interface{}{
		"run_id":    run.RunID,
		"queries":   len(queries),
		"countries": countries,
	})

	var providerFilter []string
	if req != nil {
		providerFilter = req.Providers
	}
	batch := s.collect(ctx, queries, countries, maxPerQuery, providerFilter, run)
	run.Fetched = len(batch)

	// The same posting often surfaces under several query terms, so both
	// dedup stages run again over the whole cross-product batch.
	batch = aggregator.Dedupe(batch)

	if expired, err := s.sweepInactive(ctx); err != nil {
		run.Errors = append(run.Errors, fmt.Sprintf("expiry sweep: %v", err))
		run.Success = false
	} else {
		run.Expired = expired
	}

	stats := s.upserter.UpsertBatch(ctx, batch)
	run.Created = stats.Created
	run.Updated = stats.Updated
	run.Skipped = stats.Skipped
	run.Errors = append(run.Errors, stats.Errors...)

	run.Duration = time.Since(run.StartedAt)

	if s.notifier != nil {
		go func(r *models.SyncRun) {
			notifyCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := s.notifier.NotifySyncCompleted(notifyCtx, r); err != nil {
				s.logger.Warn("Sync completion notification failed", map[string]interface{}{
					"run_id": r.RunID,
					"error":  err.Error(),
				})
			}
		}(run)
	}

	return run
}

// collect aggregates every query for every country, keeping fallback
// filler records out of the persisted batch.
func (s *Scheduler) collect(ctx context.Context, queries, countries []string, maxPerQuery int, providers []string, run *models.SyncRun) []models.CanonicalJob {
	noCache := false
	var batch []models.CanonicalJob

	for _, country := range countries {
		for _, query := range queriesFor(country, queries) {
			var collected int
			for page := 1; page <= s.cfg.Scheduler.PagesPerQuery; page++ {
				if collected >= maxPerQuery {
					break
				}
				res, err := s.agg.Search(ctx, &models.SearchRequest{
					Query:   query,
					Country: country,
					Page:    page,
					Options: &models.SearchOptions{IncludeCache: &noCache, Providers: providers},
				})
				if err != nil {
					run.Errors = append(run.Errors, fmt.Sprintf("%s/%s page %d: %v", query, country, page, err))
					break
				}

				for _, job := range res.Jobs {
					if job.Source == aggregator.FallbackSource {
						continue
					}
					if collected >= maxPerQuery {
						break
					}
					batch = append(batch, job)
					collected++
				}

				// Spread provider load between pages
				if page < s.cfg.Scheduler.PagesPerQuery {
					select {
					case <-ctx.Done():
						return batch
					case <-time.After(s.cfg.Scheduler.PageDelay):
					}
				}
			}
		}
	}
	return batch
}

// sweepInactive deactivates records past their expiry date and records no
// sync has sighted within the staleness window.
func (s *Scheduler) sweepInactive(ctx context.Context) (int, error) {
	now := time.Now()
	expired, err := s.store.MarkExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	stale, err := s.store.MarkStale(ctx, now.Add(-s.cfg.Scheduler.StaleAfter))
	if err != nil {
		return int(expired), err
	}
	return int(expired + stale), nil
}

func (s *Scheduler) resolvePlan(req *models.SyncRequest) (queries, countries []string, maxPerQuery int) {
	queries = s.cfg.Scheduler.Queries
	countries = s.cfg.Scheduler.Countries
	maxPerQuery = s.cfg.Scheduler.MaxJobsPerQuery

	if req != nil {
		if len(req.Queries) > 0 {
			queries = req.Queries
		}
		if len(req.Countries) > 0 {
			countries = req.Countries
		}
		if req.MaxJobsPerQuery > 0 {
			maxPerQuery = req.MaxJobsPerQuery
		}
	}

	// An empty query list is resolved per country during collection.
	if len(countries) == 0 {
		countries = []string{"IN"}
	}
	if maxPerQuery <= 0 {
		maxPerQuery = 200
	}

	// Normalize into a copy, the input slice belongs to the config or the
	// caller's request.
	upper := make([]string, len(countries))
	for i, c := range countries {
		upper[i] = strings.ToUpper(c)
	}
	return queries, upper, maxPerQuery
}
