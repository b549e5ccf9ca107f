package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"jobpulse-engine/internal/config"
	"jobpulse-engine/internal/logging"
	"jobpulse-engine/internal/normalize"
	"jobpulse-engine/pkg/models"
	"jobpulse-engine/pkg/utils"
)

// Jooble adapts the Jooble search API. Unlike the other boards it is a
// POST endpoint with the API key in the path and a JSON body.
type Jooble struct {
	settings config.ProviderSettings
	client   *http.Client
	logger   logging.Logger
}

func NewJooble(settings config.ProviderSettings) *Jooble {
	return &Jooble{
		settings: settings,
		client:   &http.Client{Timeout: settings.Timeout},
		logger:   logging.GetGlobalLogger(),
	}
}

func (j *Jooble) Name() string { return "jooble" }

func (j *Jooble) Enabled() bool { return j.settings.APIKey != "" }

type joobleJob struct {
	ID       json.Number `json:"id"`
	Title    string      `json:"title"`
	Company  string      `json:"company"`
	Location string      `json:"location"`
	Snippet  string      `json:"snippet"`
	Salary   string      `json:"salary"`
	Type     string      `json:"type"`
	Link     string      `json:"link"`
	Updated  string      `json:"updated"`
}

type joobleResponse struct {
	Jobs []json.RawMessage `json:"jobs"`
}

func (j *Jooble) Fetch(ctx context.Context, req FetchRequest) ([]models.CanonicalJob, error) {
	m := marketFor(req.Country)

	page := req.Page
	if page < 1 {
		page = 1
	}

	location := req.Location
	if location == "" {
		location = m.Jooble
	}

	payload, err := json.Marshal(map[string]interface{}{
		"keywords": req.Query,
		"location": location,
		"page":     strconv.Itoa(page),
	})
	if err != nil {
		return nil, fmt.Errorf("jooble request encode failed: %w", err)
	}

	build := func() (*http.Request, error) {
		httpReq, err := http.NewRequest(http.MethodPost, j.settings.BaseURL+"/"+j.settings.APIKey, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		return httpReq, nil
	}

	resp, err := doWithRetry(ctx, j.client, build, j.settings.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("jooble fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, utils.NewProviderError("jooble", fmt.Sprintf("status %d", resp.StatusCode))
	}

	var body joobleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("jooble response decode failed: %w", err)
	}

	jobs := make([]models.CanonicalJob, 0, len(body.Jobs))
	for _, raw := range body.Jobs {
		var r joobleJob
		if err := json.Unmarshal(raw, &r); err != nil {
			j.logger.Warn("Skipping unparseable jooble result", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}
		if job, ok := j.mapJob(r, raw, req.Country); ok {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

func (j *Jooble) mapJob(r joobleJob, raw json.RawMessage, country string) (models.CanonicalJob, bool) {
	if r.ID.String() == "" || r.Title == "" {
		return models.CanonicalJob{}, false
	}

	title := strings.TrimSpace(r.Title)
	description := strings.TrimSpace(r.Snippet)
	remote, hybrid, urgent := normalize.Flags(title, description, r.Location)

	salaryMin, salaryMax := normalize.ParseSalary(r.Salary)

	job := models.CanonicalJob{
		Source:          "jooble",
		SourceID:        r.ID.String(),
		Title:           title,
		Company:         strings.TrimSpace(r.Company),
		Location:        r.Location,
		Country:         strings.ToUpper(country),
		Description:     description,
		Requirements:    normalize.RequirementsExcerpt(description),
		SourceURL:       r.Link,
		SalaryMin:       salaryMin,
		SalaryMax:       salaryMax,
		SalaryCurrency:  normalize.CurrencyForCountry(country),
		JobType:         normalize.MapJobType(r.Type),
		ExperienceLevel: normalize.Experience(title, description),
		Skills:          normalize.ExtractSkills(title, description),
		IsRemote:        remote,
		IsHybrid:        hybrid,
		IsUrgent:        urgent,
		IsActive:        true,
		Sector:          normalize.Sector(title, description),
		RawPayload:      raw,
	}

	if job.Company == "" {
		job.Company = "Unknown Company"
	}
	if t, err := time.Parse(time.RFC3339, r.Updated); err == nil {
		job.PostedAt = &t
	}
	return job, true
}
