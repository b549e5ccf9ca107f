package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobpulse-engine/internal/config"
	"jobpulse-engine/internal/logging"
	"jobpulse-engine/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id               BIGSERIAL PRIMARY KEY,
	source           TEXT NOT NULL,
	source_id        TEXT NOT NULL,
	title            TEXT NOT NULL,
	company          TEXT NOT NULL,
	location         TEXT NOT NULL DEFAULT '',
	country          TEXT NOT NULL DEFAULT '',
	description      TEXT NOT NULL DEFAULT '',
	requirements     TEXT NOT NULL DEFAULT '',
	apply_url        TEXT NOT NULL DEFAULT '',
	source_url       TEXT NOT NULL DEFAULT '',
	posted_at        TIMESTAMPTZ,
	salary_min       DOUBLE PRECISION,
	salary_max       DOUBLE PRECISION,
	salary_currency  TEXT NOT NULL DEFAULT '',
	job_type         TEXT NOT NULL DEFAULT '',
	experience_level TEXT NOT NULL DEFAULT '',
	skills           TEXT[] NOT NULL DEFAULT '{}',
	is_remote        BOOLEAN NOT NULL DEFAULT FALSE,
	is_hybrid        BOOLEAN NOT NULL DEFAULT FALSE,
	is_urgent        BOOLEAN NOT NULL DEFAULT FALSE,
	is_featured      BOOLEAN NOT NULL DEFAULT FALSE,
	is_active        BOOLEAN NOT NULL DEFAULT TRUE,
	sector           TEXT NOT NULL DEFAULT '',
	expiry_date      TIMESTAMPTZ,
	raw_payload      JSONB,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	last_seen_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT jobs_identity UNIQUE (source, source_id)
);
CREATE INDEX IF NOT EXISTS jobs_active_idx ON jobs (is_active, last_seen_at);
CREATE INDEX IF NOT EXISTS jobs_country_idx ON jobs (country);
`

const jobColumns = `id, source, source_id, title, company, location, country, description,
	requirements, apply_url, source_url, posted_at, salary_min, salary_max, salary_currency,
	job_type, experience_level, skills, is_remote, is_hybrid, is_urgent, is_featured,
	is_active, sector, expiry_date, raw_payload, created_at, updated_at, last_seen_at`

// PostgresStore is the pgxpool-backed Store.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewPostgresStore connects to the configured database and ensures the
// schema exists.
func NewPostgresStore(ctx context.Context, cfg *config.Config) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}
	if cfg.Database.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.Database.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	s := &PostgresStore{pool: pool, logger: logging.GetGlobalLogger()}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByIdentity(ctx context.Context, source, sourceID string) (*StoredJob, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE source = $1 AND source_id = $2`,
		source, sourceID)

	stored, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job %s/%s: %w", source, sourceID, err)
	}
	return stored, nil
}

func (s *PostgresStore) Insert(ctx context.Context, job *models.CanonicalJob) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO jobs (
			source, source_id, title, company, location, country, description,
			requirements, apply_url, source_url, posted_at, salary_min, salary_max,
			salary_currency, job_type, experience_level, skills, is_remote, is_hybrid,
			is_urgent, is_featured, is_active, sector, expiry_date, raw_payload
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25
		) RETURNING id`,
		job.Source, job.SourceID, job.Title, job.Company, job.Location, job.Country,
		job.Description, job.Requirements, job.ApplyURL, job.SourceURL, job.PostedAt,
		job.SalaryMin, job.SalaryMax, job.SalaryCurrency, string(job.JobType),
		string(job.ExperienceLevel), job.Skills, job.IsRemote, job.IsHybrid,
		job.IsUrgent, job.IsFeatured, job.IsActive, job.Sector, job.ExpiryDate,
		job.RawPayload,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert job %s: %w", job.IdentityKey(), err)
	}
	return id, nil
}

func (s *PostgresStore) Update(ctx context.Context, id int64, job *models.CanonicalJob) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE jobs SET
			title = $2, company = $3, location = $4, country = $5, description = $6,
			requirements = $7, apply_url = $8, source_url = $9, posted_at = $10,
			salary_min = $11, salary_max = $12, salary_currency = $13, job_type = $14,
			experience_level = $15, skills = $16, is_remote = $17, is_hybrid = $18,
			is_urgent = $19, is_featured = $20, is_active = $21, sector = $22,
			expiry_date = $23, raw_payload = $24, updated_at = NOW(), last_seen_at = NOW()
		WHERE id = $1`,
		id, job.Title, job.Company, job.Location, job.Country, job.Description,
		job.Requirements, job.ApplyURL, job.SourceURL, job.PostedAt, job.SalaryMin,
		job.SalaryMax, job.SalaryCurrency, string(job.JobType), string(job.ExperienceLevel),
		job.Skills, job.IsRemote, job.IsHybrid, job.IsUrgent, job.IsFeatured,
		job.IsActive, job.Sector, job.ExpiryDate, job.RawPayload,
	)
	if err != nil {
		return fmt.Errorf("failed to update job %s: %w", job.IdentityKey(), err)
	}
	return nil
}

func (s *PostgresStore) Touch(ctx context.Context, id int64, seenAt time.Time) error {
	_, err := s.pool.Exec(ctx, `UPDATE jobs SET last_seen_at = $2 WHERE id = $1`, id, seenAt)
	if err != nil {
		return fmt.Errorf("failed to touch job %d: %w", id, err)
	}
	return nil
}

func (s *PostgresStore) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET is_active = FALSE, updated_at = NOW()
		 WHERE is_active = TRUE AND expiry_date IS NOT NULL AND expiry_date < $1`,
		now)
	if err != nil {
		return 0, fmt.Errorf("failed to mark expired jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) MarkStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET is_active = FALSE, updated_at = NOW()
		 WHERE is_active = TRUE AND last_seen_at < $1`,
		cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to mark stale jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) CountActive(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs WHERE is_active = TRUE`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count active jobs: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*StoredJob, error) {
	var st StoredJob
	var jobType, expLevel string
	err := row.Scan(
		&st.ID, &st.Job.Source, &st.Job.SourceID, &st.Job.Title, &st.Job.Company,
		&st.Job.Location, &st.Job.Country, &st.Job.Description, &st.Job.Requirements,
		&st.Job.ApplyURL, &st.Job.SourceURL, &st.Job.PostedAt, &st.Job.SalaryMin,
		&st.Job.SalaryMax, &st.Job.SalaryCurrency, &jobType, &expLevel, &st.Job.Skills,
		&st.Job.IsRemote, &st.Job.IsHybrid, &st.Job.IsUrgent, &st.Job.IsFeatured,
		&st.Job.IsActive, &st.Job.Sector, &st.Job.ExpiryDate, &st.Job.RawPayload,
		&st.CreatedAt, &st.UpdatedAt, &st.LastSeenAt,
	)
	if err != nil {
		return nil, err
	}
	st.Job.JobType = models.JobType(jobType)
	st.Job.ExperienceLevel = models.ExperienceLevel(expLevel)
	return &st, nil
}
