// Package db stores the history of served predictions.
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownDriver = errors.New("unknown history driver")

// Record is one served prediction.
type Record struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"session_id"`
	Symptoms    []string  `json:"symptoms"`
	Disease     string    `json:"disease"`
	Probability float64   `json:"probability"`
	CreatedAt   time.Time `json:"created_at"`
}

// HistoryStore persists prediction records.
type HistoryStore interface {
	SavePrediction(ctx context.Context, record Record) error
	// RecentPredictions returns up to limit records, newest first.
	RecentPredictions(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// Open connects the store selected by driver. "none" and "" return a nil
// store and no error.
func Open(ctx context.Context, driver, dsn string) (HistoryStore, error) {
	switch strings.ToLower(driver) {
	case "", "none":
		return nil, nil
	case "sqlite":
		store, err := OpenSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "postgres":
		store, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
