// Package store persists projection records. The sqlite-backed store
// implements the engine's persisted mode: replacing a scenario's record set
// is a single transaction, so a re-run is idempotent and a failed run never
// leaves a partial set behind.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Oliver16/fincast/internal/domain"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists projection records in a sqlite database.
type SQLiteStore struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (or creates) the database at path and ensures the schema.
// Use ":memory:" for an ephemeral database.
func Open(path string, log zerolog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", path, err)
	}
	s := &SQLiteStore{db: db, log: log.With().Str("component", "store").Logger()}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS projection_records (
			scenario_id TEXT NOT NULL,
			month_index INTEGER NOT NULL,
			record_date TEXT NOT NULL,
			payload TEXT NOT NULL,
			PRIMARY KEY (scenario_id, month_index)
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// ReplaceRecords discards all prior records for the scenario and writes the
// new set as one transaction.
func (s *SQLiteStore) ReplaceRecords(scenarioID string, records []domain.ProjectionRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM projection_records WHERE scenario_id = ?`, scenarioID); err != nil {
		return fmt.Errorf("delete prior records: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO projection_records (scenario_id, month_index, record_date, payload)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record %d: %w", rec.MonthIndex, err)
		}
		if _, err := stmt.Exec(scenarioID, rec.MonthIndex, rec.Date.Format(time.RFC3339), string(payload)); err != nil {
			return fmt.Errorf("insert record %d: %w", rec.MonthIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit records: %w", err)
	}
	s.log.Debug().Str("scenario", scenarioID).Int("records", len(records)).Msg("replaced projection records")
	return nil
}

// Records returns the stored record set for a scenario, ordered by month.
func (s *SQLiteStore) Records(scenarioID string) ([]domain.ProjectionRecord, error) {
	rows, err := s.db.Query(`
		SELECT payload FROM projection_records
		WHERE scenario_id = ?
		ORDER BY month_index
	`, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []domain.ProjectionRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		var rec domain.ProjectionRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// MemoryStore keeps record sets in memory. It backs exploratory what-if
// runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]domain.ProjectionRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]domain.ProjectionRecord)}
}

// ReplaceRecords swaps the scenario's record set.
func (m *MemoryStore) ReplaceRecords(scenarioID string, records []domain.ProjectionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[scenarioID] = append([]domain.ProjectionRecord(nil), records...)
	return nil
}

// Records returns the scenario's stored record set.
func (m *MemoryStore) Records(scenarioID string) ([]domain.ProjectionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.ProjectionRecord(nil), m.records[scenarioID]...), nil
}
