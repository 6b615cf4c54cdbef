package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vovakirdan/securecomm-server/internal/store"
)

// Schema creates the journal tables. It is safe to apply repeatedly.
const Schema = `
CREATE TABLE IF NOT EXISTS room_sessions (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id           TEXT    NOT NULL,
	opened_at         INTEGER NOT NULL,
	closed_at         INTEGER NOT NULL,
	peak_participants INTEGER NOT NULL DEFAULT 0,
	message_count     INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_room_sessions_closed ON room_sessions(closed_at DESC);
`

// SQLiteStore implements store.Journal for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (creating if needed) the journal at dbPath and applies the schema.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, Migrate)
}

// Migrate applies Schema.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply schema without migrations.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also keeps :memory: databases alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordSession inserts a finished room session and sets its ID.
func (s *SQLiteStore) RecordSession(ctx context.Context, session *store.RoomSession) error {
	query := `
		INSERT INTO room_sessions (room_id, opened_at, closed_at, peak_participants, message_count)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		session.RoomID,
		session.OpenedAt.UnixMilli(),
		session.ClosedAt.UnixMilli(),
		session.PeakParticipants,
		session.MessageCount,
	)
	if err != nil {
		return fmt.Errorf("insert room session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	session.ID = id
	return nil
}

// RecentSessions returns up to limit sessions, most recently closed first.
func (s *SQLiteStore) RecentSessions(ctx context.Context, limit int) ([]store.RoomSession, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, room_id, opened_at, closed_at, peak_participants, message_count
		FROM room_sessions
		ORDER BY closed_at DESC, id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query room sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]store.RoomSession, 0, limit)
	for rows.Next() {
		var (
			session          store.RoomSession
			openedAt, closed int64
		)
		if err := rows.Scan(
			&session.ID,
			&session.RoomID,
			&openedAt,
			&closed,
			&session.PeakParticipants,
			&session.MessageCount,
		); err != nil {
			return nil, fmt.Errorf("scan room session: %w", err)
		}
		session.OpenedAt = time.UnixMilli(openedAt)
		session.ClosedAt = time.UnixMilli(closed)
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate room sessions: %w", err)
	}

	return sessions, nil
}

// Totals returns aggregates over all recorded sessions.
func (s *SQLiteStore) Totals(ctx context.Context) (store.Totals, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(message_count), 0), COALESCE(MAX(peak_participants), 0)
		FROM room_sessions
	`
	var totals store.Totals
	if err := s.db.QueryRowContext(ctx, query).Scan(&totals.Sessions, &totals.Messages, &totals.PeakParticipants); err != nil {
		return store.Totals{}, fmt.Errorf("query totals: %w", err)
	}
	return totals, nil
}

// Ensure SQLiteStore implements store.Journal
var _ store.Journal = (*SQLiteStore)(nil)
