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

// JSearch adapts the JSearch API on RapidAPI. Authentication is the
// X-RapidAPI-Key header; the country goes into the query string.
type JSearch struct {
	settings config.ProviderSettings
	client   *http.Client
	logger   logging.Logger
}

func NewJSearch(settings config.ProviderSettings) *JSearch {
	return &JSearch{
		settings: settings,
		client:   &http.Client{Timeout: settings.Timeout},
		logger:   logging.GetGlobalLogger(),
	}
}

func (j *JSearch) Name() string { return "jsearch" }

func (j *JSearch) Enabled() bool { return j.settings.APIKey != "" }

type jsearchJob struct {
	JobID            string   `json:"job_id"`
	Title            string   `json:"job_title"`
	EmployerName     string   `json:"employer_name"`
	City             string   `json:"job_city"`
	State            string   `json:"job_state"`
	Country          string   `json:"job_country"`
	Description      string   `json:"job_description"`
	ApplyLink        string   `json:"job_apply_link"`
	PostedAt         string   `json:"job_posted_at_datetime_utc"`
	EmploymentType   string   `json:"job_employment_type"`
	IsRemote         bool     `json:"job_is_remote"`
	SalaryMin        *float64 `json:"job_min_salary"`
	SalaryMax        *float64 `json:"job_max_salary"`
	SalaryCurrency   string   `json:"job_salary_currency"`
	Highlights       struct {
		Qualifications []string `json:"Qualifications"`
	} `json:"job_highlights"`
}

type jsearchResponse struct {
	Data []json.RawMessage `json:"data"`
}

func (j *JSearch) Fetch(ctx context.Context, req FetchRequest) ([]models.CanonicalJob, error) {
	m := marketFor(req.Country)

	page := req.Page
	if page < 1 {
		page = 1
	}

	query := req.Query
	if req.Location != "" {
		query = query + " in " + req.Location
	}

	build := func() (*http.Request, error) {
		q := url.Values{}
		q.Set("query", query)
		q.Set("page", strconv.Itoa(page))
		q.Set("num_pages", "1")
		q.Set("country", m.JSearch)

		httpReq, err := http.NewRequest(http.MethodGet, j.settings.BaseURL+"/search?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("X-RapidAPI-Key", j.settings.APIKey)
		httpReq.Header.Set("X-RapidAPI-Host", "jsearch.p.rapidapi.com")
		return httpReq, nil
	}

	resp, err := doWithRetry(ctx, j.client, build, j.settings.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("jsearch fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, utils.NewProviderError("jsearch", fmt.Sprintf("status %d", resp.StatusCode))
	}

	var body jsearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("jsearch response decode failed: %w", err)
	}

	jobs := make([]models.CanonicalJob, 0, len(body.Data))
	for _, raw := range body.Data {
		var r jsearchJob
		if err := json.Unmarshal(raw, &r); err != nil {
			j.logger.Warn("Skipping unparseable jsearch result", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}
		if job, ok := j.mapJob(r, raw, req); ok {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

func (j *JSearch) mapJob(r jsearchJob, raw json.RawMessage, req FetchRequest) (models.CanonicalJob, bool) {
	if r.JobID == "" || r.Title == "" {
		return models.CanonicalJob{}, false
	}

	title := strings.TrimSpace(r.Title)
	description := strings.TrimSpace(r.Description)

	location := r.City
	if r.City != "" && r.State != "" {
		location = r.City + ", " + r.State
	} else if r.State != "" {
		location = r.State
	}
	if location == "" {
		location = req.Location
	}

	country := r.Country
	if country == "" {
		country = req.Country
	}

	remote, hybrid, urgent := normalize.Flags(title, description, location)

	requirements := strings.Join(r.Highlights.Qualifications, "\n")
	if requirements == "" {
		requirements = normalize.RequirementsExcerpt(description)
	}

	job := models.CanonicalJob{
		Source:          "jsearch",
		SourceID:        r.JobID,
		Title:           title,
		Company:         strings.TrimSpace(r.EmployerName),
		Location:        location,
		Country:         strings.ToUpper(country),
		Description:     description,
		Requirements:    requirements,
		SourceURL:       r.ApplyLink,
		SalaryMin:       r.SalaryMin,
		SalaryMax:       r.SalaryMax,
		SalaryCurrency:  r.SalaryCurrency,
		JobType:         normalize.MapJobType(r.EmploymentType),
		ExperienceLevel: normalize.Experience(title, description),
		Skills:          normalize.ExtractSkills(title, description),
		IsRemote:        r.IsRemote || remote,
		IsHybrid:        hybrid,
		IsUrgent:        urgent,
		IsActive:        true,
		Sector:          normalize.Sector(title, description),
		RawPayload:      raw,
	}

	if job.Company == "" {
		job.Company = "Unknown Company"
	}
	if job.SalaryCurrency == "" {
		job.SalaryCurrency = normalize.CurrencyForCountry(country)
	}
	if t, err := time.Parse(time.RFC3339, r.PostedAt); err == nil {
		job.PostedAt = &t
	}
	return job, true
}
