package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jobpulse-engine/internal/config"
	"jobpulse-engine/internal/logging"
	"jobpulse-engine/internal/normalize"
	"jobpulse-engine/pkg/models"
	"jobpulse-engine/pkg/utils"
)

// Remotive adapts the Remotive remote-jobs API. The API needs no
// credentials and has no country or page dimension, so the adapter serves
// page 1 only and tags every job with the requested country.
type Remotive struct {
	settings config.ProviderSettings
	client   *http.Client
	logger   logging.Logger
	enabled  bool
}

func NewRemotive(settings config.ProviderSettings, enabled bool) *Remotive {
	return &Remotive{
		settings: settings,
		client:   &http.Client{Timeout: settings.Timeout},
		logger:   logging.GetGlobalLogger(),
		enabled:  enabled,
	}
}

func (r *Remotive) Name() string { return "remotive" }

func (r *Remotive) Enabled() bool { return r.enabled }

type remotiveJob struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	CompanyName string `json:"company_name"`
	Category    string `json:"category"`
	JobType     string `json:"job_type"`
	Location    string `json:"candidate_required_location"`
	Salary      string `json:"salary"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publication_date"`
}

type remotiveResponse struct {
	Jobs []json.RawMessage `json:"jobs"`
}

func (r *Remotive) Fetch(ctx context.Context, req FetchRequest) ([]models.CanonicalJob, error) {
	// The API is unpaged; later pages duplicate page 1
	if req.Page > 1 {
		return nil, nil
	}

	build := func() (*http.Request, error) {
		q := url.Values{}
		q.Set("search", req.Query)
		q.Set("limit", "50")
		return http.NewRequest(http.MethodGet, r.settings.BaseURL+"/remote-jobs?"+q.Encode(), nil)
	}

	resp, err := doWithRetry(ctx, r.client, build, r.settings.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("remotive fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, utils.NewProviderError("remotive", fmt.Sprintf("status %d", resp.StatusCode))
	}

	var body remotiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("remotive response decode failed: %w", err)
	}

	jobs := make([]models.CanonicalJob, 0, len(body.Jobs))
	for _, raw := range body.Jobs {
		var j remotiveJob
		if err := json.Unmarshal(raw, &j); err != nil {
			r.logger.Warn("Skipping unparseable remotive result", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}
		if job, ok := r.mapJob(j, raw, req.Country); ok {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

func (r *Remotive) mapJob(j remotiveJob, raw json.RawMessage, country string) (models.CanonicalJob, bool) {
	if j.ID == 0 || j.Title == "" {
		return models.CanonicalJob{}, false
	}

	title := strings.TrimSpace(j.Title)
	description := strings.TrimSpace(j.Description)
	salaryMin, salaryMax := normalize.ParseSalary(j.Salary)
	_, hybrid, urgent := normalize.Flags(title, description, j.Location)

	job := models.CanonicalJob{
		Source:          "remotive",
		SourceID:        strconv.FormatInt(j.ID, 10),
		Title:           title,
		Company:         strings.TrimSpace(j.CompanyName),
		Location:        j.Location,
		Country:         strings.ToUpper(country),
		Description:     description,
		Requirements:    normalize.RequirementsExcerpt(description),
		SourceURL:       j.URL,
		SalaryMin:       salaryMin,
		SalaryMax:       salaryMax,
		SalaryCurrency:  "USD",
		JobType:         normalize.MapJobType(j.JobType),
		ExperienceLevel: normalize.Experience(title, description),
		Skills:          normalize.ExtractSkills(title, description),
		IsRemote:        true,
		IsHybrid:        hybrid,
		IsUrgent:        urgent,
		IsActive:        true,
		Sector:          j.Category,
		RawPayload:      raw,
	}

	if job.Company == "" {
		job.Company = "Unknown Company"
	}
	if job.Sector == "" {
		job.Sector = normalize.Sector(title, description)
	}
	if t, err := time.Parse("2006-01-02T15:04:05", j.PublishedAt); err == nil {
		job.PostedAt = &t
	}
	return job, true
}
