package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/ncms/internal/foundation/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens or creates the ledger at dbPath.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, errors.EventStoreError("could not create ledger directory").
				WithCause(err).
				WithContext("path", dbPath).
				Build()
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.EventStoreError("could not open event store database").
			WithCause(err).
			WithContext("path", dbPath).
			Build()
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, errors.EventStoreError("failed to initialize event store schema").
			WithCause(err).
			WithContext("path", dbPath).
			Build()
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		payload BLOB NOT NULL,
		metadata TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_run_id ON events(run_id);
	CREATE INDEX IF NOT EXISTS idx_timestamp ON events(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds a new event to the store.
func (s *SQLiteStore) Append(ctx context.Context, runID, eventType string, payload []byte, metadata map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var metadataJSON []byte
	if metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(metadata)
		if err != nil {
			return errors.EventStoreError("failed to marshal event metadata").WithCause(err).Build()
		}
	}
	if payload == nil {
		payload = []byte("{}")
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (run_id, event_type, timestamp, payload, metadata) VALUES (?, ?, ?, ?, ?)",
		runID, eventType, time.Now().UnixMilli(), payload, metadataJSON,
	)
	if err != nil {
		return errors.EventStoreError("failed to append event to store").
			WithCause(err).
			WithContext("run_id", runID).
			WithContext("event_type", eventType).
			Build()
	}
	return nil
}

// GetByRunID retrieves all events for a specific run.
func (s *SQLiteStore) GetByRunID(ctx context.Context, runID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, run_id, event_type, timestamp, payload, metadata FROM events WHERE run_id = ? ORDER BY id",
		runID,
	)
	if err != nil {
		return nil, errors.EventStoreError("failed to query events from store").WithCause(err).Build()
	}
	defer rows.Close()

	return s.scanEvents(rows)
}

// GetRange retrieves events within a time range, bounds inclusive.
func (s *SQLiteStore) GetRange(ctx context.Context, start, end time.Time) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, run_id, event_type, timestamp, payload, metadata FROM events WHERE timestamp >= ? AND timestamp <= ? ORDER BY id",
		start.UnixMilli(), end.UnixMilli(),
	)
	if err != nil {
		return nil, errors.EventStoreError("failed to query events from store").WithCause(err).Build()
	}
	defer rows.Close()

	return s.scanEvents(rows)
}

func (s *SQLiteStore) scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var e BaseEvent
		var ts int64
		var metadataJSON []byte

		if err := rows.Scan(&e.EventID, &e.EventRunID, &e.EventType, &ts, &e.EventPayload, &metadataJSON); err != nil {
			return nil, errors.EventStoreError("failed to scan event rows").WithCause(err).Build()
		}
		e.EventTimestamp = time.UnixMilli(ts)

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &e.EventMetadata); err != nil {
				return nil, errors.EventStoreError("failed to unmarshal event metadata").WithCause(err).Build()
			}
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.EventStoreError("failed to iterate event rows").WithCause(err).Build()
	}
	return events, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
