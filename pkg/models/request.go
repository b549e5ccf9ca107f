package models

// SearchOptions provides additional configuration for search requests.
type SearchOptions struct {
	DistanceKm      int      `json:"distance_km,omitempty" query:"distance_km"`
	IncludeExternal *bool    `json:"include_external,omitempty" query:"include_external"`
	IncludeCache    *bool    `json:"include_cache,omitempty" query:"include_cache"`
	Providers       []string `json:"providers,omitempty" query:"providers"`
}

// SearchRequest represents an aggregation request for a single query.
type SearchRequest struct {
	Query    string         `json:"query" query:"query" validate:"required"`
	Location string         `json:"location,omitempty" query:"location"`
	Country  string         `json:"country" query:"country" validate:"required,len=2"`
	Page     int            `json:"page,omitempty" query:"page" validate:"omitempty,min=1"`
	Options  *SearchOptions `json:"options,omitempty"`
}

// SyncRequest represents a manually triggered sync run. Empty fields fall
// back to the configured defaults.
type SyncRequest struct {
	Queries         []string `json:"queries,omitempty"`
	Countries       []string `json:"countries,omitempty" validate:"omitempty,dive,len=2"`
	MaxJobsPerQuery int      `json:"max_jobs_per_query,omitempty" validate:"omitempty,min=1"`
	Providers       []string `json:"providers,omitempty"`
}
