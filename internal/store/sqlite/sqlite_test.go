package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/securecomm-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewWithSetup(":memory:", Migrate)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndListSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.UnixMilli(1700000000000)

	seed := []store.RoomSession{
		{RoomID: "ALPHA", OpenedAt: base, ClosedAt: base.Add(time.Minute), PeakParticipants: 2, MessageCount: 5},
		{RoomID: "BETA", OpenedAt: base, ClosedAt: base.Add(3 * time.Minute), PeakParticipants: 4, MessageCount: 11},
		{RoomID: "ALPHA", OpenedAt: base.Add(time.Hour), ClosedAt: base.Add(2 * time.Hour), PeakParticipants: 1, MessageCount: 1},
	}
	for i := range seed {
		if err := s.RecordSession(ctx, &seed[i]); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		if seed[i].ID == 0 {
			t.Fatalf("record %d: id not set", i)
		}
	}

	tests := []struct {
		name     string
		limit    int
		expected []string
	}{
		{name: "all", limit: 10, expected: []string{"ALPHA", "BETA", "ALPHA"}},
		{name: "limited", limit: 2, expected: []string{"ALPHA", "BETA"}},
		{name: "default limit", limit: 0, expected: []string{"ALPHA", "BETA", "ALPHA"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions, err := s.RecentSessions(ctx, tt.limit)
			if err != nil {
				t.Fatalf("RecentSessions failed: %v", err)
			}
			if len(sessions) != len(tt.expected) {
				t.Fatalf("expected %d sessions, got %d", len(tt.expected), len(sessions))
			}
			for i, session := range sessions {
				if session.RoomID != tt.expected[i] {
					t.Errorf("expected %s at index %d, got %s", tt.expected[i], i, session.RoomID)
				}
			}
		})
	}

	latest, _ := s.RecentSessions(ctx, 1)
	if latest[0].Duration() != time.Hour || latest[0].MessageCount != 1 {
		t.Fatalf("unexpected latest session: %+v", latest[0])
	}

	totals, err := s.Totals(ctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals != (store.Totals{Sessions: 3, Messages: 17, PeakParticipants: 4}) {
		t.Fatalf("unexpected totals: %+v", totals)
	}
}

func TestTotalsOnEmptyJournal(t *testing.T) {
	s := newTestStore(t)

	totals, err := s.Totals(context.Background())
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals != (store.Totals{}) {
		t.Fatalf("expected zero totals, got %+v", totals)
	}
}

func TestNewCreatesFileJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	s, err := New(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := s.RecordSession(context.Background(), &store.RoomSession{RoomID: "R", OpenedAt: time.Now(), ClosedAt: time.Now()}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopening applies the schema again without error and keeps the data.
	s, err = New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	totals, _ := s.Totals(context.Background())
	if totals.Sessions != 1 {
		t.Fatalf("expected 1 session after reopen, got %d", totals.Sessions)
	}
}
