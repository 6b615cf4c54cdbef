package store

import (
	"context"
	"time"
)

// RoomSession is one room's lifetime, from first join to last leave. It never
// holds message content or participant names.
type RoomSession struct {
	ID               int64
	RoomID           string
	OpenedAt         time.Time
	ClosedAt         time.Time
	PeakParticipants int
	MessageCount     int
}

// Duration returns how long the room was alive.
func (s RoomSession) Duration() time.Duration {
	return s.ClosedAt.Sub(s.OpenedAt)
}

// Totals aggregates every recorded session.
type Totals struct {
	Sessions         int64
	Messages         int64
	PeakParticipants int
}

// JournalWriter persists finished room sessions.
type JournalWriter interface {
	RecordSession(ctx context.Context, session *RoomSession) error
}

// JournalReader queries recorded sessions.
type JournalReader interface {
	// RecentSessions returns up to limit sessions, most recently closed first.
	RecentSessions(ctx context.Context, limit int) ([]RoomSession, error)
	// Totals returns aggregates over all sessions.
	Totals(ctx context.Context) (Totals, error)
}

// Journal combines all journal operations.
type Journal interface {
	JournalWriter
	JournalReader
	Close() error
}
