package store

import (
	"testing"
	"time"
)

func TestMarkSeenThenHasSeen(t *testing.T) {
	s := newTestStore(t)

	if err := s.MarkSeen("linkedin:123"); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}

	seen, err := s.HasSeen("linkedin:123")
	if err != nil {
		t.Fatalf("HasSeen: %v", err)
	}
	if !seen {
		t.Error("expected HasSeen to return true after MarkSeen")
	}
}

func TestHasSeenUnknownReturnsFalse(t *testing.T) {
	s := newTestStore(t)

	seen, err := s.HasSeen("does-not-exist")
	if err != nil {
		t.Fatalf("HasSeen: %v", err)
	}
	if seen {
		t.Error("expected HasSeen to return false for unknown key")
	}
}

func TestMarkSeenIdempotent(t *testing.T) {
	s := newTestStore(t)

	if err := s.MarkSeen("linkedin:456"); err != nil {
		t.Fatalf("first MarkSeen: %v", err)
	}
	if err := s.MarkSeen("linkedin:456"); err != nil {
		t.Fatalf("second MarkSeen (duplicate): %v", err)
	}
}

func TestIsEmpty(t *testing.T) {
	s := newTestStore(t)

	empty, err := s.IsEmpty()
	if err != nil || !empty {
		t.Fatalf("expected new store to be empty, got %v (err %v)", empty, err)
	}
	if err := s.MarkSeen("k"); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}
	empty, err = s.IsEmpty()
	if err != nil || empty {
		t.Fatalf("expected store not empty, got %v (err %v)", empty, err)
	}
}

func TestCleanupRemovesOldKeepsFresh(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return now.Add(-48 * time.Hour) }
	if err := s.MarkSeen("old-job"); err != nil {
		t.Fatalf("MarkSeen old: %v", err)
	}
	s.now = func() time.Time { return now }
	if err := s.MarkSeen("fresh-job"); err != nil {
		t.Fatalf("MarkSeen fresh: %v", err)
	}

	if err := s.Cleanup(24 * time.Hour); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	seen, err := s.HasSeen("old-job")
	if err != nil {
		t.Fatalf("HasSeen old: %v", err)
	}
	if seen {
		t.Error("expected old job to be cleaned up")
	}

	seen, err = s.HasSeen("fresh-job")
	if err != nil {
		t.Fatalf("HasSeen fresh: %v", err)
	}
	if !seen {
		t.Error("expected fresh job to survive cleanup")
	}
}
