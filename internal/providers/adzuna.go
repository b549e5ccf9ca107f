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

const adzunaResultsPerPage = 50

// Adzuna adapts the Adzuna search API. Results are paged per country
// market; authentication is an app_id/app_key pair in the query string.
type Adzuna struct {
	settings config.ProviderSettings
	client   *http.Client
	logger   logging.Logger
}

func NewAdzuna(settings config.ProviderSettings) *Adzuna {
	return &Adzuna{
		settings: settings,
		client:   &http.Client{Timeout: settings.Timeout},
		logger:   logging.GetGlobalLogger(),
	}
}

func (a *Adzuna) Name() string { return "adzuna" }

func (a *Adzuna) Enabled() bool {
	return a.settings.AppID != "" && a.settings.APIKey != ""
}

type adzunaResult struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	RedirectURL string  `json:"redirect_url"`
	Created     string  `json:"created"`
	SalaryMin   float64 `json:"salary_min"`
	SalaryMax   float64 `json:"salary_max"`
	Company     struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	Category struct {
		Label string `json:"label"`
	} `json:"category"`
	ContractTime string `json:"contract_time"`
	ContractType string `json:"contract_type"`
}

type adzunaResponse struct {
	Results []json.RawMessage `json:"results"`
}

func (a *Adzuna) Fetch(ctx context.Context, req FetchRequest) ([]models.CanonicalJob, error) {
	m := marketFor(req.Country)

	page := req.Page
	if page < 1 {
		page = 1
	}

	build := func() (*http.Request, error) {
		q := url.Values{}
		q.Set("app_id", a.settings.AppID)
		q.Set("app_key", a.settings.APIKey)
		q.Set("what", req.Query)
		q.Set("results_per_page", strconv.Itoa(adzunaResultsPerPage))
		q.Set("content-type", "application/json")
		if req.Location != "" {
			q.Set("where", req.Location)
			if req.DistanceKm > 0 {
				q.Set("distance", strconv.Itoa(req.DistanceKm))
			}
		}
		endpoint := fmt.Sprintf("%s/%s/search/%d?%s", a.settings.BaseURL, m.Adzuna, page, q.Encode())
		return http.NewRequest(http.MethodGet, endpoint, nil)
	}

	resp, err := doWithRetry(ctx, a.client, build, a.settings.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("adzuna fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, utils.NewProviderError("adzuna", fmt.Sprintf("status %d", resp.StatusCode))
	}

	var body adzunaResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("adzuna response decode failed: %w", err)
	}

	jobs := make([]models.CanonicalJob, 0, len(body.Results))
	for _, raw := range body.Results {
		var r adzunaResult
		if err := json.Unmarshal(raw, &r); err != nil {
			a.logger.Warn("Skipping unparseable adzuna result", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}
		if job, ok := a.mapJob(r, raw, req.Country); ok {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

func (a *Adzuna) mapJob(r adzunaResult, raw json.RawMessage, country string) (models.CanonicalJob, bool) {
	if r.ID == "" || r.Title == "" {
		return models.CanonicalJob{}, false
	}

	title := strings.TrimSpace(r.Title)
	description := strings.TrimSpace(r.Description)
	remote, hybrid, urgent := normalize.Flags(title, description, r.Location.DisplayName)

	job := models.CanonicalJob{
		Source:          "adzuna",
		SourceID:        r.ID,
		Title:           title,
		Company:         strings.TrimSpace(r.Company.DisplayName),
		Location:        r.Location.DisplayName,
		Country:         strings.ToUpper(country),
		Description:     description,
		Requirements:    normalize.RequirementsExcerpt(description),
		SourceURL:       r.RedirectURL,
		SalaryCurrency:  normalize.CurrencyForCountry(country),
		JobType:         adzunaJobType(r.ContractTime, r.ContractType),
		ExperienceLevel: normalize.Experience(title, description),
		Skills:          normalize.ExtractSkills(title, description),
		IsRemote:        remote,
		IsHybrid:        hybrid,
		IsUrgent:        urgent,
		IsActive:        true,
		Sector:          r.Category.Label,
		RawPayload:      raw,
	}

	if job.Company == "" {
		job.Company = "Unknown Company"
	}
	if job.Sector == "" {
		job.Sector = normalize.Sector(title, description)
	}
	if r.SalaryMin > 0 {
		job.SalaryMin = &r.SalaryMin
	}
	if r.SalaryMax > 0 {
		job.SalaryMax = &r.SalaryMax
	}
	if job.SalaryMin == nil && job.SalaryMax == nil {
		job.SalaryMin, job.SalaryMax = normalize.ParseSalary(description)
	}
	if t, err := time.Parse(time.RFC3339, r.Created); err == nil {
		job.PostedAt = &t
	}
	return job, true
}

func adzunaJobType(contractTime, contractType string) models.JobType {
	if contractType == "contract" {
		return models.JobTypeContract
	}
	if contractTime == "part_time" {
		return models.JobTypePartTime
	}
	return normalize.MapJobType(contractTime)
}
