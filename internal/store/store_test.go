package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/jobhunter/internal/model"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), "sqlite", dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open(context.Background(), "postgres", "x"); err == nil {
		t.Fatal("expected error for unsupported driver, got nil")
	}
}

func TestOpen_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), "sqlite", dbPath)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if err := s.MarkSeen("linkedin:1"); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}
	s.Close()

	s, err = Open(context.Background(), "sqlite", dbPath)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer s.Close()
	seen, err := s.HasSeen("linkedin:1")
	if err != nil || !seen {
		t.Fatalf("expected key to survive reopen, got seen=%v err=%v", seen, err)
	}
}

func TestMySQLDSN_ForcesParseTime(t *testing.T) {
	got, err := mysqlDSN("user:pass@tcp(localhost:3306)/jobhunter")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "parseTime=true") {
		t.Errorf("expected parseTime=true in %q", got)
	}

	if _, err := mysqlDSN("not a dsn"); err == nil {
		t.Error("expected error for malformed dsn, got nil")
	}
}

func TestSaveJobs_InsertsAndAssignsIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	posted := time.Date(2026, 10, 13, 0, 0, 0, 0, time.UTC)

	saved, err := s.SaveJobs(ctx, []model.Job{
		{ExternalID: "100", Title: "Software Engineer", Company: "Acme", Location: "Remote", URL: "https://www.linkedin.com/jobs/view/100", PostedText: "2 days ago", PostedAt: &posted, Source: model.SourceLinkedIn},
		{Title: "Backend Engineer", Company: "Globex", Location: "NYC", URL: "https://www.linkedin.com/jobs/view/200"},
	})
	if err != nil {
		t.Fatalf("SaveJobs: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("expected 2 saved jobs, got %d", len(saved))
	}
	if saved[0].ID == 0 || saved[1].ID == 0 || saved[0].ID == saved[1].ID {
		t.Errorf("expected distinct non-zero IDs, got %d and %d", saved[0].ID, saved[1].ID)
	}
	if saved[1].Source != model.SourceLinkedIn {
		t.Errorf("expected default source, got %q", saved[1].Source)
	}

	jobs, err := s.ListJobs(ctx, 0)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	var acme model.Job
	for _, j := range jobs {
		if j.ExternalID == "100" {
			acme = j
		}
	}
	if acme.PostedAt == nil || !acme.PostedAt.Equal(posted) {
		t.Errorf("expected PostedAt %v, got %v", posted, acme.PostedAt)
	}
	if acme.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestSaveJobs_UpsertsByExternalIDAndURL(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.SaveJobs(ctx, []model.Job{
		{ExternalID: "100", Title: "Engineer", Company: "Acme", Location: "Remote", Description: "Build things", Source: model.SourceLinkedIn},
		{Title: "Designer", Company: "Globex", Location: "NYC", URL: "https://example.com/jobs/7", Source: model.SourceLinkedIn},
	})
	if err != nil {
		t.Fatalf("first SaveJobs: %v", err)
	}

	second, err := s.SaveJobs(ctx, []model.Job{
		{ExternalID: "100", Title: "Senior Engineer", Company: "Acme", Location: "Remote", Source: model.SourceLinkedIn},
		{Title: "Lead Designer", Company: "Globex", Location: "NYC", URL: "https://example.com/jobs/7", Source: model.SourceLinkedIn},
	})
	if err != nil {
		t.Fatalf("second SaveJobs: %v", err)
	}
	if second[0].ID != first[0].ID || second[1].ID != first[1].ID {
		t.Errorf("expected upsert to keep IDs, got %d/%d then %d/%d", first[0].ID, first[1].ID, second[0].ID, second[1].ID)
	}

	jobs, err := s.ListJobs(ctx, 0)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 rows after upsert, got %d", len(jobs))
	}
	for _, j := range jobs {
		if j.ExternalID == "100" {
			if j.Title != "Senior Engineer" {
				t.Errorf("expected title updated, got %q", j.Title)
			}
			if j.Description != "Build things" {
				t.Errorf("expected empty description to keep existing, got %q", j.Description)
			}
		}
	}
}

func TestSaveJobs_WithoutKeyAlwaysInserts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	bare := model.Job{Title: model.UnknownTitle, Company: "Initech", Location: model.UnknownLocation}

	if _, err := s.SaveJobs(ctx, []model.Job{bare, bare}); err != nil {
		t.Fatalf("SaveJobs: %v", err)
	}
	jobs, err := s.ListJobs(ctx, 0)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(jobs))
	}
}

func TestListJobs_Limit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i, id := range []string{"1", "2", "3"} {
		s.now = func() time.Time { return time.Date(2026, 10, 1+i, 0, 0, 0, 0, time.UTC) }
		if _, err := s.SaveJobs(ctx, []model.Job{{ExternalID: id, Title: "Job " + id, Company: "C", Location: "L"}}); err != nil {
			t.Fatalf("SaveJobs: %v", err)
		}
	}

	jobs, err := s.ListJobs(ctx, 2)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].ExternalID != "3" || jobs[1].ExternalID != "2" {
		t.Errorf("expected newest first, got %s, %s", jobs[0].ExternalID, jobs[1].ExternalID)
	}
}

func TestResumesAndReferrals(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, err := s.SaveJobs(ctx, []model.Job{{ExternalID: "100", Title: "Engineer", Company: "Acme", Location: "Remote"}})
	if err != nil {
		t.Fatalf("SaveJobs: %v", err)
	}
	jobID := saved[0].ID

	r, err := s.SaveResume(ctx, model.OptimizedResume{JobID: jobID, OriginalPath: "resume.md", OptimizedPath: "resumes/x.md"})
	if err != nil {
		t.Fatalf("SaveResume: %v", err)
	}
	if r.ID == 0 {
		t.Error("expected resume ID to be set")
	}

	refs, err := s.SaveReferrals(ctx, []model.Referral{
		{JobID: jobID, Name: "John Roe", Company: "Acme", ConnectionLevel: 2, IntroductionNeeded: true},
		{JobID: jobID, Name: "Unknown Degree", Company: "Acme"},
		{JobID: jobID, Name: "Jane Doe", Company: "Acme", ConnectionLevel: 1},
	})
	if err != nil {
		t.Fatalf("SaveReferrals: %v", err)
	}
	if len(refs) != 3 || refs[0].ID == 0 {
		t.Fatalf("unexpected saved referrals: %+v", refs)
	}

	resumes, err := s.ListResumes(ctx, jobID)
	if err != nil {
		t.Fatalf("ListResumes: %v", err)
	}
	if len(resumes) != 1 || resumes[0].OptimizedPath != "resumes/x.md" {
		t.Errorf("unexpected resumes: %+v", resumes)
	}

	listed, err := s.ListReferrals(ctx, jobID)
	if err != nil {
		t.Fatalf("ListReferrals: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 referrals, got %d", len(listed))
	}
	if listed[0].Name != "Jane Doe" || listed[1].Name != "John Roe" || listed[2].Name != "Unknown Degree" {
		t.Errorf("expected closest connections first, got %s, %s, %s", listed[0].Name, listed[1].Name, listed[2].Name)
	}
	if !listed[1].IntroductionNeeded {
		t.Error("expected IntroductionNeeded to round trip")
	}
}

func TestSaveResume_UnknownJobViolatesForeignKey(t *testing.T) {
	s := newTestStore(t)
	_, err := s.SaveResume(context.Background(), model.OptimizedResume{JobID: 999, OriginalPath: "a", OptimizedPath: "b"})
	if err == nil {
		t.Fatal("expected foreign key error, got nil")
	}
}

func TestDeleteJobCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, err := s.SaveJobs(ctx, []model.Job{{ExternalID: "1", Title: "T", Company: "C", Location: "L"}})
	if err != nil {
		t.Fatalf("SaveJobs: %v", err)
	}
	if _, err := s.SaveReferrals(ctx, []model.Referral{{JobID: saved[0].ID, Name: "A"}}); err != nil {
		t.Fatalf("SaveReferrals: %v", err)
	}
	if _, err := s.db.Exec("DELETE FROM jobs WHERE id = ?", saved[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	refs, err := s.ListReferrals(ctx, saved[0].ID)
	if err != nil {
		t.Fatalf("ListReferrals: %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("expected referrals deleted with job, got %d", len(refs))
	}
}
