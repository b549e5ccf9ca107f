package aggregator

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobpulse-engine/internal/normalize"
	"jobpulse-engine/pkg/models"
)

// FallbackSource tags every generated filler record so consumers can always
// tell them apart from real listings.
const FallbackSource = "fallback"

// fallbackBoard is one public job board a filler record can redirect to.
type fallbackBoard struct {
	name      string
	searchURL func(query, location string) string
}

var fallbackBoards = []fallbackBoard{
	{"LinkedIn", func(q, l string) string {
		return "https://www.linkedin.com/jobs/search/?keywords=" + url.QueryEscape(q) + "&location=" + url.QueryEscape(l)
	}},
	{"Indeed", func(q, l string) string {
		return "https://www.indeed.com/jobs?q=" + url.QueryEscape(q) + "&l=" + url.QueryEscape(l)
	}},
	{"Glassdoor", func(q, l string) string {
		return "https://www.glassdoor.com/Job/jobs.htm?sc.keyword=" + url.QueryEscape(q)
	}},
	{"Naukri", func(q, l string) string {
		return "https://www.naukri.com/" + strings.ReplaceAll(strings.ToLower(strings.TrimSpace(q)), " ", "-") + "-jobs"
	}},
	{"Monster", func(q, l string) string {
		return "https://www.monster.com/jobs/search?q=" + url.QueryEscape(q) + "&where=" + url.QueryEscape(l)
	}},
}

// GenerateFallback builds up to count redirect records for a query that
// returned too few real results. Each record points at a public board's
// search page for the same query and carries the fallback source tag.
func GenerateFallback(query, location, country string, count int) []models.CanonicalJob {
	if count <= 0 {
		return nil
	}
	if count > len(fallbackBoards) {
		count = len(fallbackBoards)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		query = "jobs"
	}

	now := time.Now()
	jobs := make([]models.CanonicalJob, 0, count)
	for _, board := range fallbackBoards[:count] {
		title := fmt.Sprintf("%s on %s", titleCase(query), board.name)
		description := fmt.Sprintf("Browse %s openings on %s. This entry links to an external search, not a specific posting.", query, board.name)

		jobs = append(jobs, models.CanonicalJob{
			Source:          FallbackSource,
			SourceID:        uuid.New().String(),
			Title:           title,
			Company:         board.name,
			Location:        location,
			Country:         strings.ToUpper(country),
			Description:     description,
			SourceURL:       board.searchURL(query, location),
			SalaryCurrency:  normalize.CurrencyForCountry(country),
			JobType:         models.JobTypeFullTime,
			ExperienceLevel: models.ExperienceMid,
			IsActive:        true,
			Sector:          normalize.Sector(query, ""),
			PostedAt:        &now,
		})
	}
	return jobs
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
