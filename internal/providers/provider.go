// Package providers contains the upstream job-board adapters. Each adapter
// speaks one vendor API and maps its payloads onto the canonical job model;
// everything above this package works with canonical jobs only.
package providers

import (
	"context"
	"sort"
	"strings"

	"jobpulse-engine/pkg/models"
)

// FetchRequest is the per-call input handed to an adapter.
type FetchRequest struct {
	Query    string
	Location string
	Country  string
	Page     int
	// DistanceKm bounds location matches where the upstream API supports
	// a radius. Zero means provider default.
	DistanceKm int
}

// Provider is one upstream job board. Fetch returns the canonical jobs for
// a single result page; adapters must never return partially-mapped
// records, a job either maps cleanly or is dropped.
type Provider interface {
	Name() string
	Enabled() bool
	Fetch(ctx context.Context, req FetchRequest) ([]models.CanonicalJob, error)
}

// market holds the per-vendor spellings of one supported country.
type market struct {
	Adzuna  string
	JSearch string
	Jooble  string
	Name    string
}

var markets = map[string]market{
	"IN": {Adzuna: "in", JSearch: "IN", Jooble: "India", Name: "India"},
	"US": {Adzuna: "us", JSearch: "US", Jooble: "United States", Name: "United States"},
	"GB": {Adzuna: "gb", JSearch: "GB", Jooble: "United Kingdom", Name: "United Kingdom"},
	"AE": {Adzuna: "ae", JSearch: "AE", Jooble: "United Arab Emirates", Name: "United Arab Emirates"},
	"CA": {Adzuna: "ca", JSearch: "CA", Jooble: "Canada", Name: "Canada"},
	"AU": {Adzuna: "au", JSearch: "AU", Jooble: "Australia", Name: "Australia"},
	"DE": {Adzuna: "de", JSearch: "DE", Jooble: "Germany", Name: "Germany"},
	"FR": {Adzuna: "fr", JSearch: "FR", Jooble: "France", Name: "France"},
	"IT": {Adzuna: "it", JSearch: "IT", Jooble: "Italy", Name: "Italy"},
	"ES": {Adzuna: "es", JSearch: "ES", Jooble: "Spain", Name: "Spain"},
	"NL": {Adzuna: "nl", JSearch: "NL", Jooble: "Netherlands", Name: "Netherlands"},
	"PL": {Adzuna: "pl", JSearch: "PL", Jooble: "Poland", Name: "Poland"},
	"SG": {Adzuna: "sg", JSearch: "SG", Jooble: "Singapore", Name: "Singapore"},
	"MX": {Adzuna: "mx", JSearch: "MX", Jooble: "Mexico", Name: "Mexico"},
	"NZ": {Adzuna: "nz", JSearch: "NZ", Jooble: "New Zealand", Name: "New Zealand"},
	"ZA": {Adzuna: "za", JSearch: "ZA", Jooble: "South Africa", Name: "South Africa"},
	"BR": {Adzuna: "br", JSearch: "BR", Jooble: "Brazil", Name: "Brazil"},
}

// marketFor resolves a 2-letter country code, falling back to India the
// way the upstream configuration treats it as the primary market.
func marketFor(country string) market {
	if m, ok := markets[strings.ToUpper(country)]; ok {
		return m
	}
	return markets["IN"]
}

// SupportedCountry reports whether a country code has a market mapping.
func SupportedCountry(country string) bool {
	_, ok := markets[strings.ToUpper(country)]
	return ok
}

// Registry holds the configured providers in registration order.
type Registry struct {
	providers []Provider
}

func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

// Enabled returns the providers that have credentials configured,
// optionally filtered to an explicit name list.
func (r *Registry) Enabled(only []string) []Provider {
	filter := make(map[string]bool, len(only))
	for _, name := range only {
		filter[strings.ToLower(name)] = true
	}

	var out []Provider
	for _, p := range r.providers {
		if !p.Enabled() {
			continue
		}
		if len(filter) > 0 && !filter[p.Name()] {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Names returns the enabled provider names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		if p.Enabled() {
			names = append(names, p.Name())
		}
	}
	sort.Strings(names)
	return names
}
