package store

import (
	"context"
	"time"

	"github.com/amishk599/jobhunter/internal/model"
)

// NopStore is used in dry-run mode and when persistence is unavailable. It
// never marks jobs as seen, so every job appears new on each poll, and it
// hands saved records back with zero IDs.
type NopStore struct{}

// NewNopStore returns a NopStore.
func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) HasSeen(key string) (bool, error)      { return false, nil }
func (s *NopStore) MarkSeen(key string) error             { return nil }
func (s *NopStore) Cleanup(olderThan time.Duration) error { return nil }
func (s *NopStore) IsEmpty() (bool, error)                { return false, nil }

func (s *NopStore) SaveJobs(ctx context.Context, jobs []model.Job) ([]model.Job, error) {
	return jobs, nil
}

func (s *NopStore) ListJobs(ctx context.Context, limit int) ([]model.Job, error) {
	return nil, nil
}

func (s *NopStore) SaveResume(ctx context.Context, r model.OptimizedResume) (model.OptimizedResume, error) {
	return r, nil
}

func (s *NopStore) ListResumes(ctx context.Context, jobID int64) ([]model.OptimizedResume, error) {
	return nil, nil
}

func (s *NopStore) SaveReferrals(ctx context.Context, refs []model.Referral) ([]model.Referral, error) {
	return refs, nil
}

func (s *NopStore) ListReferrals(ctx context.Context, jobID int64) ([]model.Referral, error) {
	return nil, nil
}
