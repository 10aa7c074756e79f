// Package triplog keeps an append-only audit trail of completed trips.
// The log is write-mostly; nothing is read back at start-up.
package triplog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kilianp07/liftbank/core/metrics"
)

// Query filters trip records. Zero values match everything.
type Query struct {
	Start time.Time
	End   time.Time
	CarID int
	Floor int
}

func (q Query) match(r metrics.TripRecord) bool {
	if !q.Start.IsZero() && r.Completed.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Completed.After(q.End) {
		return false
	}
	if q.CarID != 0 && r.CarID != q.CarID {
		return false
	}
	if q.Floor != 0 && r.Call.Floor != q.Floor {
		return false
	}
	return true
}

// Store persists trip records and supports querying.
type Store interface {
	Append(ctx context.Context, rec metrics.TripRecord) error
	Query(ctx context.Context, q Query) ([]metrics.TripRecord, error)
	Close() error
}

// Options configures Open.
type Options struct {
	// Backend is "jsonl" or "sqlite". Empty picks by file extension.
	Backend    string `json:"backend"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// DefaultOptions returns the rotation settings used when none are given.
func DefaultOptions() Options {
	return Options{MaxSizeMB: 10, MaxBackups: 5, MaxAgeDays: 30}
}

// Open returns the store for path using the configured backend.
func Open(path string, opts Options) (Store, error) {
	backend := strings.ToLower(opts.Backend)
	if backend == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".db", ".sqlite", ".sqlite3":
			backend = "sqlite"
		default:
			backend = "jsonl"
		}
	}
	var (
		store Store
		err   error
	)
	switch backend {
	case "jsonl":
		store, err = NewRotatingJSONLStore(path, opts.MaxSizeMB, opts.MaxBackups, opts.MaxAgeDays)
	case "sqlite":
		store, err = NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown trip log backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
