package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobpulse-engine/internal/config"
	"jobpulse-engine/pkg/models"
)

func testSettings(baseURL string) config.ProviderSettings {
	return config.ProviderSettings{
		AppID:      "test-app",
		APIKey:     "test-key",
		BaseURL:    baseURL,
		Timeout:    5 * time.Second,
		MaxRetries: 1,
	}
}

func TestAdzunaFetchMapsResults(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.URL.Query().Get("app_id") != "test-app" {
			t.Errorf("missing app_id, query = %s", r.URL.RawQuery)
		}
		if r.URL.Query().Get("where") != "London" || r.URL.Query().Get("distance") != "25" {
			t.Errorf("location params missing, query = %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{
				{
					"id":           "4321",
					"title":        "Senior Go Developer",
					"description":  "Remote role. Requirements: 5 years of Go and Kubernetes.",
					"redirect_url": "https://adzuna.example/job/4321",
					"created":      "2025-06-01T10:00:00Z",
					"salary_min":   70000.0,
					"salary_max":   90000.0,
					"company":      map[string]string{"display_name": "Acme Ltd"},
					"location":     map[string]string{"display_name": "London, UK"},
					"category":     map[string]string{"label": "IT Jobs"},
				},
				{
					// No id, must be dropped
					"title": "Broken",
				},
			},
		})
	}))
	defer srv.Close()

	p := NewAdzuna(testSettings(srv.URL))
	jobs, err := p.Fetch(context.Background(), FetchRequest{Query: "go developer", Location: "London", Country: "GB", Page: 1, DistanceKm: 25})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotPath != "/gb/search/1" {
		t.Errorf("path = %s, want /gb/search/1", gotPath)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}

	j := jobs[0]
	if j.Source != "adzuna" || j.SourceID != "4321" {
		t.Errorf("identity = %s/%s", j.Source, j.SourceID)
	}
	if j.Company != "Acme Ltd" || j.Country != "GB" {
		t.Errorf("company/country = %s/%s", j.Company, j.Country)
	}
	if j.SalaryMin == nil || *j.SalaryMin != 70000 {
		t.Errorf("salary min = %v", j.SalaryMin)
	}
	if j.SalaryCurrency != "GBP" {
		t.Errorf("currency = %s, want GBP", j.SalaryCurrency)
	}
	if !j.IsRemote {
		t.Error("expected remote flag from description scan")
	}
	if j.SourceURL == "" || j.ApplyURL != "" {
		t.Errorf("source_url/apply_url = %q/%q", j.SourceURL, j.ApplyURL)
	}
	if len(j.RawPayload) == 0 {
		t.Error("raw payload not preserved")
	}
	if j.PostedAt == nil {
		t.Error("posted_at not parsed")
	}
}

func TestAdzunaEnabledNeedsBothCredentials(t *testing.T) {
	s := testSettings("http://x")
	s.APIKey = ""
	if NewAdzuna(s).Enabled() {
		t.Error("adzuna should be disabled without app key")
	}
}

func TestJSearchFetchMapsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-RapidAPI-Key") != "test-key" {
			t.Error("missing rapidapi key header")
		}
		if r.URL.Query().Get("country") != "IN" {
			t.Errorf("country = %s, want IN", r.URL.Query().Get("country"))
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{
					"job_id":                     "abc-1",
					"job_title":                  "Backend Engineer",
					"employer_name":              "Initech",
					"job_city":                   "Bengaluru",
					"job_state":                  "KA",
					"job_country":                "IN",
					"job_description":            "Build services in Python and PostgreSQL",
					"job_apply_link":             "https://jsearch.example/abc-1",
					"job_employment_type":        "FULLTIME",
					"job_is_remote":              true,
					"job_posted_at_datetime_utc": "2025-06-02T08:00:00Z",
					"job_highlights": map[string]interface{}{
						"Qualifications": []string{"3 years Python", "SQL"},
					},
				},
			},
		})
	}))
	defer srv.Close()

	p := NewJSearch(testSettings(srv.URL))
	jobs, err := p.Fetch(context.Background(), FetchRequest{Query: "backend", Country: "in", Page: 1})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	j := jobs[0]
	if j.Source != "jsearch" || j.SourceID != "abc-1" {
		t.Errorf("identity = %s/%s", j.Source, j.SourceID)
	}
	if j.Location != "Bengaluru, KA" {
		t.Errorf("location = %s", j.Location)
	}
	if !j.IsRemote {
		t.Error("remote flag from payload lost")
	}
	if j.Requirements != "3 years Python\nSQL" {
		t.Errorf("requirements = %q", j.Requirements)
	}
	if j.JobType != models.JobTypeFullTime {
		t.Errorf("job type = %s", j.JobType)
	}
	if j.SalaryCurrency != "INR" {
		t.Errorf("currency = %s, want INR", j.SalaryCurrency)
	}
}

func TestJoobleFetchPostsKeyInPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/test-key" {
			t.Errorf("path = %s, want /test-key", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["keywords"] != "designer" {
			t.Errorf("keywords = %s", body["keywords"])
		}
		if body["location"] != "United States" {
			t.Errorf("location = %s, want country market name", body["location"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jobs": []map[string]interface{}{
				{
					"id":       998877,
					"title":    "Product Designer",
					"company":  "Hooli",
					"location": "New York, NY",
					"snippet":  "Design products. Salary $90,000 - $120,000.",
					"salary":   "$90,000 - $120,000",
					"type":     "Full-time",
					"link":     "https://jooble.example/998877",
					"updated":  "2025-06-03T00:00:00Z",
				},
			},
		})
	}))
	defer srv.Close()

	p := NewJooble(testSettings(srv.URL))
	jobs, err := p.Fetch(context.Background(), FetchRequest{Query: "designer", Country: "US", Page: 1})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	j := jobs[0]
	if j.Source != "jooble" || j.SourceID != "998877" {
		t.Errorf("identity = %s/%s", j.Source, j.SourceID)
	}
	if j.SalaryMin == nil || *j.SalaryMin != 90000 {
		t.Errorf("salary min = %v", j.SalaryMin)
	}
}

func TestRemotiveSkipsLaterPages(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		json.NewEncoder(w).Encode(map[string]interface{}{"jobs": []interface{}{}})
	}))
	defer srv.Close()

	p := NewRemotive(testSettings(srv.URL), true)
	jobs, err := p.Fetch(context.Background(), FetchRequest{Query: "go", Country: "US", Page: 2})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if jobs != nil || called {
		t.Error("page 2 must not hit the API")
	}
}

func TestRemotiveMapsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jobs": []map[string]interface{}{
				{
					"id":                          12345,
					"title":                       "Go Engineer",
					"company_name":                "RemoteCo",
					"category":                    "Software Development",
					"job_type":                    "full_time",
					"candidate_required_location": "Worldwide",
					"description":                 "Work on distributed systems in Go",
					"url":                         "https://remotive.example/12345",
					"publication_date":            "2025-06-04T12:30:00",
				},
			},
		})
	}))
	defer srv.Close()

	p := NewRemotive(testSettings(srv.URL), true)
	jobs, err := p.Fetch(context.Background(), FetchRequest{Query: "go", Country: "DE", Page: 1})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	j := jobs[0]
	if j.SourceID != "12345" || !j.IsRemote {
		t.Errorf("job = %+v", j)
	}
	if j.Country != "DE" {
		t.Errorf("country = %s, want requested country", j.Country)
	}
	if j.PostedAt == nil {
		t.Error("publication date not parsed")
	}
}

func TestDoWithRetryRecoversFromServerError(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"results": []interface{}{}})
	}))
	defer srv.Close()

	p := NewAdzuna(testSettings(srv.URL))
	if _, err := p.Fetch(context.Background(), FetchRequest{Query: "go", Country: "US", Page: 1}); err != nil {
		t.Fatalf("fetch should succeed on retry: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestDoWithRetryExhaustsOnPermanent429(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := testSettings(srv.URL)
	s.MaxRetries = 2
	p := NewAdzuna(s)
	if _, err := p.Fetch(context.Background(), FetchRequest{Query: "go", Country: "US", Page: 1}); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestDoWithRetryDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewAdzuna(testSettings(srv.URL))
	if _, err := p.Fetch(context.Background(), FetchRequest{Query: "go", Country: "US", Page: 1}); err == nil {
		t.Fatal("expected error on 401")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retry on 4xx)", attempts)
	}
}

func TestRegistryFiltersDisabledAndNamed(t *testing.T) {
	enabled := NewAdzuna(testSettings("http://x"))
	disabled := NewJooble(config.ProviderSettings{})
	remotive := NewRemotive(testSettings("http://x"), true)

	reg := NewRegistry(enabled, disabled, remotive)

	all := reg.Enabled(nil)
	if len(all) != 2 {
		t.Fatalf("enabled = %d providers, want 2", len(all))
	}

	only := reg.Enabled([]string{"Adzuna"})
	if len(only) != 1 || only[0].Name() != "adzuna" {
		t.Fatalf("name filter failed: %+v", only)
	}

	names := reg.Names()
	if len(names) != 2 || names[0] != "adzuna" || names[1] != "remotive" {
		t.Errorf("names = %v", names)
	}
}

func TestMarketFallback(t *testing.T) {
	if m := marketFor("XX"); m.Name != "India" {
		t.Errorf("unknown country market = %s, want India fallback", m.Name)
	}
	if !SupportedCountry("gb") || SupportedCountry("XX") {
		t.Error("SupportedCountry mismatch")
	}
}
