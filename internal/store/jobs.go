package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/amishk599/jobhunter/internal/model"
)

const jobColumns = `id, external_id, source, title, company, location, description, requirements,
	salary_range, url, posted_text, posted_at, created_at`

// SaveJobs upserts jobs in one transaction and returns them with ID and
// CreatedAt set. A job matches an existing row by (source, external id) when
// it has one, otherwise by URL. Jobs with neither are always inserted.
func (s *SQLStore) SaveJobs(ctx context.Context, jobs []model.Job) ([]model.Job, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	saved := make([]model.Job, 0, len(jobs))
	for _, job := range jobs {
		if job.Source == "" {
			job.Source = model.SourceLinkedIn
		}
		id, createdAt, err := findJob(ctx, tx, job)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			job.CreatedAt = s.now().UTC()
			if job.ID, err = insertJob(ctx, tx, job); err != nil {
				return nil, fmt.Errorf("inserting job %q: %w", job.Title, err)
			}
		case err == nil:
			job.ID, job.CreatedAt = id, createdAt
			if err := updateJob(ctx, tx, job); err != nil {
				return nil, fmt.Errorf("updating job %d: %w", job.ID, err)
			}
		default:
			return nil, fmt.Errorf("looking up job %q: %w", job.Title, err)
		}
		saved = append(saved, job)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing jobs: %w", err)
	}
	committed = true
	return saved, nil
}

func findJob(ctx context.Context, tx *sql.Tx, job model.Job) (int64, time.Time, error) {
	var row *sql.Row
	switch {
	case job.ExternalID != "":
		row = tx.QueryRowContext(ctx,
			`SELECT id, created_at FROM jobs WHERE source = ? AND external_id = ?`,
			job.Source, job.ExternalID)
	case job.URL != "":
		row = tx.QueryRowContext(ctx,
			`SELECT id, created_at FROM jobs WHERE url = ? ORDER BY id LIMIT 1`, job.URL)
	default:
		return 0, time.Time{}, sql.ErrNoRows
	}
	var (
		id        int64
		createdAt time.Time
	)
	err := row.Scan(&id, &createdAt)
	return id, createdAt, err
}

func insertJob(ctx context.Context, tx *sql.Tx, job model.Job) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO jobs (external_id, source, title, company, location, description, requirements,
			salary_range, url, posted_text, posted_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullString(job.ExternalID),
		job.Source,
		job.Title,
		job.Company,
		job.Location,
		job.Description,
		job.Requirements,
		job.SalaryRange,
		job.URL,
		job.PostedText,
		nullTime(job.PostedAt),
		job.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// updateJob refreshes listing fields. Description and requirements are only
// overwritten by non-empty values so a bare card does not erase details.
func updateJob(ctx context.Context, tx *sql.Tx, job model.Job) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE jobs
		SET title = ?, company = ?, location = ?,
			description = COALESCE(NULLIF(?, ''), description),
			requirements = COALESCE(NULLIF(?, ''), requirements),
			salary_range = ?, url = ?, posted_text = ?, posted_at = ?
		WHERE id = ?`,
		job.Title,
		job.Company,
		job.Location,
		job.Description,
		job.Requirements,
		job.SalaryRange,
		job.URL,
		job.PostedText,
		nullTime(job.PostedAt),
		job.ID,
	)
	return err
}

// ListJobs returns saved jobs, newest first. A limit of zero or less returns
// all of them.
func (s *SQLStore) ListJobs(ctx context.Context, limit int) ([]model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		var (
			j          model.Job
			externalID sql.NullString
			postedAt   sql.NullTime
		)
		if err := rows.Scan(&j.ID, &externalID, &j.Source, &j.Title, &j.Company, &j.Location,
			&j.Description, &j.Requirements, &j.SalaryRange, &j.URL, &j.PostedText, &postedAt, &j.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		j.ExternalID = externalID.String
		if postedAt.Valid {
			t := postedAt.Time
			j.PostedAt = &t
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// SaveResume records a tailored resume for a saved job.
func (s *SQLStore) SaveResume(ctx context.Context, r model.OptimizedResume) (model.OptimizedResume, error) {
	r.CreatedAt = s.now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO optimized_resumes (job_id, original_path, optimized_path, notes, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		r.JobID, r.OriginalPath, r.OptimizedPath, r.Notes, r.CreatedAt)
	if err != nil {
		return r, fmt.Errorf("saving resume for job %d: %w", r.JobID, err)
	}
	if r.ID, err = res.LastInsertId(); err != nil {
		return r, fmt.Errorf("reading resume id: %w", err)
	}
	return r, nil
}

// ListResumes returns the resumes tailored for jobID, oldest first.
func (s *SQLStore) ListResumes(ctx context.Context, jobID int64) ([]model.OptimizedResume, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job_id, original_path, optimized_path, notes, created_at
		FROM optimized_resumes WHERE job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("listing resumes: %w", err)
	}
	defer rows.Close()

	var out []model.OptimizedResume
	for rows.Next() {
		var r model.OptimizedResume
		if err := rows.Scan(&r.ID, &r.JobID, &r.OriginalPath, &r.OptimizedPath, &r.Notes, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning resume: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveReferrals records contacts in one transaction and returns them with
// ID set.
func (s *SQLStore) SaveReferrals(ctx context.Context, refs []model.Referral) ([]model.Referral, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	now := s.now().UTC()
	saved := make([]model.Referral, 0, len(refs))
	for _, r := range refs {
		r.CreatedAt = now
		res, err := tx.ExecContext(ctx, `
			INSERT INTO referrals (job_id, name, title, company, connection_level, profile_url,
				introduction_needed, notes, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.JobID, r.Name, r.Title, r.Company, r.ConnectionLevel, r.ProfileURL,
			r.IntroductionNeeded, r.Notes, r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("saving referral %q: %w", r.Name, err)
		}
		if r.ID, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("reading referral id: %w", err)
		}
		saved = append(saved, r)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing referrals: %w", err)
	}
	committed = true
	return saved, nil
}

// ListReferrals returns the contacts found for jobID, closest connections
// first.
func (s *SQLStore) ListReferrals(ctx context.Context, jobID int64) ([]model.Referral, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job_id, name, title, company, connection_level, profile_url,
			introduction_needed, notes, created_at
		FROM referrals WHERE job_id = ?
		ORDER BY CASE WHEN connection_level = 0 THEN 99 ELSE connection_level END, id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("listing referrals: %w", err)
	}
	defer rows.Close()

	var out []model.Referral
	for rows.Next() {
		var r model.Referral
		if err := rows.Scan(&r.ID, &r.JobID, &r.Name, &r.Title, &r.Company, &r.ConnectionLevel,
			&r.ProfileURL, &r.IntroductionNeeded, &r.Notes, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning referral: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
