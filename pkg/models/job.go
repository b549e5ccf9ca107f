package models

import (
	"encoding/json"
	"time"
)

// JobType enumerates the employment types a listing can carry.
type JobType string

const (
	JobTypeFullTime   JobType = "full-time"
	JobTypePartTime   JobType = "part-time"
	JobTypeContract   JobType = "contract"
	JobTypeTemporary  JobType = "temporary"
	JobTypeInternship JobType = "internship"
	JobTypeFreelance  JobType = "freelance"
)

// ExperienceLevel enumerates seniority buckets inferred from listing text.
type ExperienceLevel string

const (
	ExperienceIntern    ExperienceLevel = "intern"
	ExperienceJunior    ExperienceLevel = "junior"
	ExperienceMid       ExperienceLevel = "mid"
	ExperienceSenior    ExperienceLevel = "senior"
	ExperienceExecutive ExperienceLevel = "executive"
)

// CanonicalJob is the normalized listing shape every provider adapter maps
// into. The (Source, SourceID) pair is the identity key for persistence;
// provider-native IDs are never reused as storage identifiers.
type CanonicalJob struct {
	Source          string          `json:"source" validate:"required"`
	SourceID        string          `json:"source_id" validate:"required"`
	Title           string          `json:"title"`
	Company         string          `json:"company"`
	Location        string          `json:"location"`
	Country         string          `json:"country"` // ISO 3166-1 alpha-2
	Description     string          `json:"description"`
	Requirements    string          `json:"requirements,omitempty"`
	ApplyURL        string          `json:"apply_url,omitempty"`
	SourceURL       string          `json:"source_url"`
	PostedAt        *time.Time      `json:"posted_at,omitempty"`
	SalaryMin       *float64        `json:"salary_min,omitempty"`
	SalaryMax       *float64        `json:"salary_max,omitempty"`
	SalaryCurrency  string          `json:"salary_currency,omitempty"`
	JobType         JobType         `json:"job_type,omitempty"`
	ExperienceLevel ExperienceLevel `json:"experience_level,omitempty"`
	Skills          []string        `json:"skills,omitempty"`
	IsRemote        bool            `json:"is_remote"`
	IsHybrid        bool            `json:"is_hybrid"`
	IsUrgent        bool            `json:"is_urgent"`
	IsFeatured      bool            `json:"is_featured"`
	IsActive        bool            `json:"is_active"`
	Sector          string          `json:"sector,omitempty"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	RawPayload      json.RawMessage `json:"raw_payload,omitempty"`
}

// IdentityKey returns the globally unique persistence key for the record.
func (j *CanonicalJob) IdentityKey() string {
	return j.Source + "/" + j.SourceID
}

// UpsertOutcome describes what the store did with a single record.
type UpsertOutcome string

const (
	UpsertCreated UpsertOutcome = "created"
	UpsertUpdated UpsertOutcome = "updated"
	UpsertSkipped UpsertOutcome = "skipped"
)

// UpsertStats aggregates the outcomes of a bulk upsert. Errors holds one
// entry per failed record, keyed by identity in the message text; a single
// record's failure never aborts the remaining records.
type UpsertStats struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// SyncRun is the statistics object produced by one full scheduled
// aggregation+upsert+expiry cycle. It is emitted even when individual
// provider or country combinations fail.
type SyncRun struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Fetched   int           `json:"fetched"`
	Created   int           `json:"created"`
	Updated   int           `json:"updated"`
	Skipped   int           `json:"skipped"`
	Expired   int           `json:"expired"`
	Errors    []string      `json:"errors,omitempty"`
	Success   bool          `json:"success"`
}
