package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        session_id TEXT NOT NULL,
        symptoms TEXT NOT NULL,
        disease TEXT NOT NULL,
        probability REAL NOT NULL,
        created_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
    `

// SQLiteStore keeps prediction history in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path required")
	}
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		if !strings.Contains(dsn, "?") {
			dsn += "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
		}
	}

	database, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// single writer; also keeps ":memory:" on one connection
	database.SetMaxOpenConns(1)

	if _, err := database.Exec(sqliteSchema); err != nil {
		database.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: database}, nil
}

func (s *SQLiteStore) SavePrediction(ctx context.Context, record Record) error {
	symptoms, err := json.Marshal(nonNil(record.Symptoms))
	if err != nil {
		return err
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO predictions (session_id, symptoms, disease, probability, created_at)
        VALUES (?, ?, ?, ?, ?)`,
		record.SessionID, string(symptoms), record.Disease, record.Probability, record.CreatedAt.UTC())
	return err
}

func (s *SQLiteStore) RecentPredictions(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, session_id, symptoms, disease, probability, created_at
        FROM predictions
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var r Record
		var symptoms string
		if err := rows.Scan(&r.ID, &r.SessionID, &symptoms, &r.Disease, &r.Probability, &r.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(symptoms), &r.Symptoms); err != nil {
			return nil, fmt.Errorf("record %d: %w", r.ID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
