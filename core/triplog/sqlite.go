package triplog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/liftbank/core/metrics"
)

// SQLiteStore persists trips to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS trips (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        completed INTEGER,
        car_id INTEGER,
        floor INTEGER,
        record TEXT
    );
    CREATE INDEX IF NOT EXISTS trips_completed ON trips (completed);`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Append writes the record to the database.
func (s *SQLiteStore) Append(ctx context.Context, rec metrics.TripRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO trips (completed, car_id, floor, record) VALUES (?, ?, ?, ?)`,
		rec.Completed.UnixNano(), rec.CarID, rec.Call.Floor, string(b))
	return err
}

// Query returns records matching q, oldest first.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]metrics.TripRecord, error) {
	var args []any
	query := `SELECT record FROM trips WHERE 1=1`
	if !q.Start.IsZero() {
		query += ` AND completed >= ?`
		args = append(args, q.Start.UnixNano())
	}
	if !q.End.IsZero() {
		query += ` AND completed <= ?`
		args = append(args, q.End.UnixNano())
	}
	if q.CarID != 0 {
		query += ` AND car_id = ?`
		args = append(args, q.CarID)
	}
	if q.Floor != 0 {
		query += ` AND floor = ?`
		args = append(args, q.Floor)
	}
	query += ` ORDER BY completed, id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []metrics.TripRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r metrics.TripRecord
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
