// Package aggregator fans a search out across the configured provider
// adapters, joins the results, dedups them in two stages and tops up thin
// result sets from the fallback generator.
package aggregator

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"jobpulse-engine/internal/cache"
	"jobpulse-engine/internal/config"
	"jobpulse-engine/internal/logging"
	"jobpulse-engine/internal/providers"
	"jobpulse-engine/internal/ratelimit"
	"jobpulse-engine/pkg/models"
	"jobpulse-engine/pkg/utils"
)

// Result is the outcome of one aggregation request.
type Result struct {
	Jobs    []models.CanonicalJob
	Sources map[string]int
	Cached  bool
}

// Aggregator owns the fan-out pipeline. All mutable state (rate limiter,
// cache) is injected so independent instances never share counters.
type Aggregator struct {
	cfg      *config.Config
	registry *providers.Registry
	limiter  *ratelimit.Limiter
	results  cache.ResultCache
	dispatch *rate.Limiter
	logger   logging.Logger
}

func New(cfg *config.Config, registry *providers.Registry, limiter *ratelimit.Limiter, results cache.ResultCache) *Aggregator {
	perSecond := cfg.Aggregator.DispatchPerSecond
	if perSecond <= 0 {
		perSecond = 4
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &Aggregator{
		cfg:      cfg,
		registry: registry,
		limiter:  limiter,
		results:  results,
		dispatch: rate.NewLimiter(rate.Limit(perSecond), burst),
		logger:   logging.GetGlobalLogger(),
	}
}

// Search runs the full pipeline for one request. Provider failures are
// absorbed; the error return covers cache plumbing only and is currently
// always nil so handlers can stay oblivious to backend hiccups.
func (a *Aggregator) Search(ctx context.Context, req *models.SearchRequest) (*Result, error) {
	var only []string
	if req.Options != nil {
		only = req.Options.Providers
	}
	enabled := a.registry.Enabled(only)

	names := make([]string, 0, len(enabled))
	for _, p := range enabled {
		names = append(names, p.Name())
	}

	useCache := req.Options == nil || req.Options.IncludeCache == nil || *req.Options.IncludeCache
	key := cache.Key(req, names)

	if useCache {
		if jobs, err := a.results.Get(ctx, key); err == nil {
			a.logger.Debug("Search served from cache", map[string]interface{}{
				"key":  key,
				"jobs": len(jobs),
			})
			return &Result{Jobs: jobs, Sources: countSources(jobs), Cached: true}, nil
		}
	}

	var fetched []models.CanonicalJob
	if req.Options == nil || req.Options.IncludeExternal == nil || *req.Options.IncludeExternal {
		fetched = a.fanOut(ctx, enabled, req)
	}
	jobs := a.finalize(fetched, req)

	if useCache {
		if err := a.results.Set(ctx, key, jobs); err != nil {
			a.logger.Warn("Failed to populate result cache", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}

	return &Result{Jobs: jobs, Sources: countSources(jobs)}, nil
}

// fanOut dispatches every (provider, country) pair in parallel under the
// concurrency cap and waits for all of them. Individual failures become
// log lines, never errors.
func (a *Aggregator) fanOut(ctx context.Context, enabled []providers.Provider, req *models.SearchRequest) []models.CanonicalJob {
	countries := a.resolveCountries(req.Country)

	sem := make(chan struct{}, a.cfg.Aggregator.MaxConcurrentFetches)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var all []models.CanonicalJob

	for _, p := range enabled {
		for _, country := range countries {
			wg.Add(1)
			go func(p providers.Provider, country string) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				if err := a.dispatch.Wait(ctx); err != nil {
					return
				}
				if err := a.limiter.Wait(ctx, p.Name(), a.cfg.Aggregator.RateLimitWait); err != nil {
					a.logger.Info("Skipping provider call", map[string]interface{}{
						"provider": p.Name(),
						"country":  country,
						"error":    utils.NewRateLimitError(p.Name()).Error(),
					})
					return
				}

				fetchReq := providers.FetchRequest{
					Query:    req.Query,
					Location: req.Location,
					Country:  country,
					Page:     req.Page,
				}
				if req.Options != nil {
					fetchReq.DistanceKm = req.Options.DistanceKm
				}
				jobs, err := p.Fetch(ctx, fetchReq)
				if err != nil {
					a.logger.Warn("Provider fetch failed", map[string]interface{}{
						"provider": p.Name(),
						"country":  country,
						"error":    err.Error(),
					})
					return
				}

				mu.Lock()
				all = append(all, jobs...)
				mu.Unlock()
			}(p, country)
		}
	}
	wg.Wait()
	return all
}

// finalize runs the post-join stages: malformed filtering, both dedup
// stages, relevance sort, and the fallback floor top-up.
func (a *Aggregator) finalize(fetched []models.CanonicalJob, req *models.SearchRequest) []models.CanonicalJob {
	wellFormed := fetched[:0:0]
	for _, job := range fetched {
		if strings.TrimSpace(job.Title) == "" || strings.TrimSpace(job.Company) == "" {
			continue
		}
		wellFormed = append(wellFormed, job)
	}

	jobs := Dedupe(wellFormed)
	SortJobs(jobs)

	if floor := a.cfg.Aggregator.FallbackFloor; len(jobs) < floor {
		filler := GenerateFallback(req.Query, req.Location, req.Country, floor-len(jobs))
		jobs = append(jobs, filler...)
	}
	return jobs
}

// resolveCountries widens the primary country with a bounded number of
// secondary markets from the scheduler's configured country list.
func (a *Aggregator) resolveCountries(primary string) []string {
	primary = strings.ToUpper(primary)
	countries := []string{primary}

	budget := a.cfg.Aggregator.MaxSecondaryCountries
	for _, c := range a.cfg.Scheduler.Countries {
		if budget <= 0 {
			break
		}
		c = strings.ToUpper(c)
		if c == primary || !providers.SupportedCountry(c) {
			continue
		}
		countries = append(countries, c)
		budget--
	}
	return countries
}

func countSources(jobs []models.CanonicalJob) map[string]int {
	sources := make(map[string]int)
	for _, job := range jobs {
		sources[job.Source]++
	}
	return sources
}
