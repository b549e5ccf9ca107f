// Package normalize holds the pure text-inference helpers shared by all
// provider adapters: salary bounds, currency defaults, experience level,
// remote/hybrid/urgent flags, skill extraction and requirement excerpts.
// Every function is deterministic given identical input text.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"jobpulse-engine/pkg/models"
)

var salaryNumberRe = regexp.MustCompile(`\d{1,3}(?:[,.]\d{2,3})+|\d+(?:\.\d+)?[kK]?`)

// ParseSalary extracts numeric min/max bounds from free-form salary text
// such as "₹6,00,000 - ₹15,00,000" or "$50k-$80k". Returns nils when no
// usable numbers are present.
func ParseSalary(text string) (*float64, *float64) {
	matches := salaryNumberRe.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil, nil
	}

	values := make([]float64, 0, len(matches))
	for _, m := range matches {
		multiplier := 1.0
		if strings.HasSuffix(m, "k") || strings.HasSuffix(m, "K") {
			multiplier = 1000
			m = m[:len(m)-1]
		}
		m = strings.ReplaceAll(m, ",", "")
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		v *= multiplier
		// Ignore stray small numbers (years of experience, team sizes)
		if v < 1000 {
			continue
		}
		values = append(values, v)
	}

	switch len(values) {
	case 0:
		return nil, nil
	case 1:
		return &values[0], nil
	default:
		min, max := values[0], values[0]
		for _, v := range values[1:] {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		return &min, &max
	}
}

var countryCurrencies = map[string]string{
	"GB": "GBP",
	"US": "USD",
	"IN": "INR",
	"AE": "AED",
	"CA": "CAD",
	"AU": "AUD",
	"DE": "EUR",
	"FR": "EUR",
	"IT": "EUR",
	"ES": "EUR",
	"NL": "EUR",
	"SG": "SGD",
	"NZ": "NZD",
	"ZA": "ZAR",
	"BR": "BRL",
	"MX": "MXN",
	"PL": "PLN",
}

// CurrencyForCountry returns the default salary currency for a 2-letter
// country code, falling back to USD.
func CurrencyForCountry(country string) string {
	if currency, ok := countryCurrencies[strings.ToUpper(country)]; ok {
		return currency
	}
	return "USD"
}

// Experience infers a seniority bucket from a keyword scan over the
// combined title and description. Defaults to mid.
func Experience(title, description string) models.ExperienceLevel {
	text := strings.ToLower(title + " " + description)

	switch {
	case containsAny(text, "intern ", "internship", "trainee"):
		return models.ExperienceIntern
	case containsAny(text, "senior", "lead", "principal", "staff engineer"):
		return models.ExperienceSenior
	case containsAny(text, "junior", "entry level", "entry-level", "graduate"):
		return models.ExperienceJunior
	case containsAny(text, "director", "vp ", "vice president", "chief ", "head of"):
		return models.ExperienceExecutive
	default:
		return models.ExperienceMid
	}
}

// Flags reports the remote/hybrid/urgent booleans from a case-insensitive
// substring scan over title, description and location.
func Flags(title, description, location string) (remote, hybrid, urgent bool) {
	text := strings.ToLower(title + " " + description + " " + location)

	remote = containsAny(text, "remote", "work from home", "wfh", "telecommute")
	hybrid = containsAny(text, "hybrid", "flexible working", "part remote")
	urgent = containsAny(text, "urgent", "immediate", "asap", "start immediately")
	return remote, hybrid, urgent
}

// MapJobType maps heterogeneous provider employment-type strings onto the
// canonical enum. Unknown values default to full-time.
func MapJobType(raw string) models.JobType {
	switch strings.ToLower(strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(raw))) {
	case "part time", "parttime":
		return models.JobTypePartTime
	case "contract", "contractor", "fixed term":
		return models.JobTypeContract
	case "temporary", "temp":
		return models.JobTypeTemporary
	case "internship", "intern":
		return models.JobTypeInternship
	case "freelance":
		return models.JobTypeFreelance
	default:
		return models.JobTypeFullTime
	}
}

// RequirementsExcerpt pulls the requirement-looking lines out of a
// description, falling back to a leading excerpt when none match.
func RequirementsExcerpt(description string) string {
	var requirements []string
	for _, line := range strings.Split(description, "\n") {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "requirement") ||
			strings.Contains(lower, "qualification") ||
			strings.Contains(lower, "must have") ||
			strings.Contains(lower, "should have") {
			requirements = append(requirements, strings.TrimSpace(line))
		}
	}

	if len(requirements) > 0 {
		return strings.Join(requirements, "\n")
	}

	if len(description) > 500 {
		return description[:500]
	}
	return description
}

var sectorKeywords = []struct {
	sector   string
	keywords []string
}{
	{"Technology", []string{"software", "developer", "programmer", "engineer", "devops", "cloud", "data"}},
	{"Marketing", []string{"marketing", "advertising", "seo", "content", "brand"}},
	{"Sales", []string{"sales", "business development", "account executive"}},
	{"Finance", []string{"finance", "accounting", "banking", "audit", "investment"}},
	{"Healthcare", []string{"healthcare", "medical", "doctor", "nurse", "pharma"}},
	{"Education", []string{"education", "teacher", "professor", "training"}},
	{"Human Resources", []string{"hr ", "human resources", "recruiter", "talent acquisition"}},
	{"Design", []string{"designer", "ui/ux", "ux ", "graphic"}},
}

// Sector classifies a listing into a coarse free-form sector from keyword
// hits over title and description, defaulting to General.
func Sector(title, description string) string {
	text := strings.ToLower(title + " " + description)
	for _, entry := range sectorKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				return entry.sector
			}
		}
	}
	return "General"
}

func containsAny(text string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
