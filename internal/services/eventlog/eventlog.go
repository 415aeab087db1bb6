package eventlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"cornerwatch-go/internal/models"
)

// DefaultLimit is the page size when the caller does not ask for one
const DefaultLimit = 50

// Log keeps the most recent motion events in SQLite
type Log struct {
	db      *sql.DB
	max     int
	writeMu sync.Mutex
}

// Open opens (or creates) the event database and runs migrations.
// max caps the number of retained events, oldest dropped first.
func Open(path string, max int) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create event log directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}

	// Enable WAL mode for concurrent readers while the loop appends
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	l := &Log{db: db, max: max}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Log) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS motion_events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			timestamp DATETIME NOT NULL,
			pixels_changed INTEGER NOT NULL,
			threshold INTEGER NOT NULL,
			mode TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_motion_events_time ON motion_events(timestamp DESC)`,
	}

	for _, m := range migrations {
		if _, err := l.db.Exec(m); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

// Close closes the database
func (l *Log) Close() error {
	return l.db.Close()
}

// Append stores an event, assigning an id when missing, and trims the log to its cap
func (l *Log) Append(ev models.MotionEvent) (models.MotionEvent, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	tx, err := l.db.Begin()
	if err != nil {
		return ev, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO motion_events (id, timestamp, pixels_changed, threshold, mode)
		VALUES (?, ?, ?, ?, ?)`,
		ev.ID, ev.Timestamp.UTC(), ev.PixelsChanged, ev.Threshold, ev.Mode)
	if err != nil {
		return ev, fmt.Errorf("failed to save motion event: %w", err)
	}

	if l.max > 0 {
		_, err = tx.Exec(`DELETE FROM motion_events WHERE seq <= (
			SELECT seq FROM motion_events ORDER BY seq DESC LIMIT 1 OFFSET ?)`, l.max)
		if err != nil {
			return ev, fmt.Errorf("failed to trim motion events: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return ev, fmt.Errorf("failed to commit motion event: %w", err)
	}
	return ev, nil
}

// Recent returns up to limit events, newest first. limit <= 0 means DefaultLimit.
func (l *Log) Recent(limit int) ([]models.MotionEvent, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := l.db.Query(`SELECT id, timestamp, pixels_changed, threshold, mode
		FROM motion_events ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list motion events: %w", err)
	}
	defer rows.Close()

	events := make([]models.MotionEvent, 0, limit)
	for rows.Next() {
		var ev models.MotionEvent
		if err := rows.Scan(&ev.ID, &ev.Timestamp, &ev.PixelsChanged, &ev.Threshold, &ev.Mode); err != nil {
			return nil, fmt.Errorf("failed to scan motion event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Count returns the number of retained events
func (l *Log) Count() (int, error) {
	var n int
	if err := l.db.QueryRow("SELECT COUNT(*) FROM motion_events").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count motion events: %w", err)
	}
	return n, nil
}
