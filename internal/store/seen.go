package store

import (
	"database/sql"
	"fmt"
	"time"
)

// HasSeen returns true if the given job key has already been recorded.
func (s *SQLStore) HasSeen(key string) (bool, error) {
	var exists int
	err := s.db.QueryRow("SELECT 1 FROM seen_jobs WHERE job_key = ?", key).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking seen status for %s: %w", key, err)
	}
	return true, nil
}

// MarkSeen records a job key as seen. Marking a known key is a no-op.
func (s *SQLStore) MarkSeen(key string) error {
	_, err := s.db.Exec(s.dialect.insertIgnore+" INTO seen_jobs (job_key, first_seen) VALUES (?, ?)", key, s.now().UTC())
	if err != nil {
		return fmt.Errorf("marking job %s as seen: %w", key, err)
	}
	return nil
}

// Cleanup deletes seen-job entries older than the given duration.
func (s *SQLStore) Cleanup(olderThan time.Duration) error {
	cutoff := s.now().UTC().Add(-olderThan)
	_, err := s.db.Exec("DELETE FROM seen_jobs WHERE first_seen < ?", cutoff)
	if err != nil {
		return fmt.Errorf("cleaning up seen jobs older than %v: %w", olderThan, err)
	}
	return nil
}

// IsEmpty returns true if no job has been marked seen yet.
func (s *SQLStore) IsEmpty() (bool, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM seen_jobs").Scan(&count); err != nil {
		return false, fmt.Errorf("checking if store is empty: %w", err)
	}
	return count == 0, nil
}
