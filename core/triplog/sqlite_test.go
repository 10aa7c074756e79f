package triplog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_AppendQuery(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "trips.db"))
	require.NoError(t, err)
	defer func() { assert.NoError(t, store.Close()) }()

	ctx := context.Background()
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(ctx, trip("b", 2, 4, base.Add(time.Minute))))
	require.NoError(t, store.Append(ctx, trip("a", 1, 3, base)))
	require.NoError(t, store.Append(ctx, trip("c", 1, 4, base.Add(2*time.Minute))))

	all, err := store.Query(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].TripID)
	assert.True(t, all[0].Completed.Equal(base))

	byCar, err := store.Query(ctx, Query{CarID: 1})
	require.NoError(t, err)
	assert.Len(t, byCar, 2)

	window, err := store.Query(ctx, Query{Start: base.Add(30 * time.Second), End: base.Add(90 * time.Second)})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, "b", window[0].TripID)

	byFloor, err := store.Query(ctx, Query{Floor: 4, CarID: 1})
	require.NoError(t, err)
	require.Len(t, byFloor, 1)
	assert.Equal(t, "c", byFloor[0].TripID)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trips.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(context.Background(), trip("x", 1, 2, time.Now())))
	require.NoError(t, store.Close())

	store, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	recs, err := store.Query(context.Background(), Query{})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestOpenBackend(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		path    string
		backend string
		want    any
		wantErr bool
	}{
		{name: "jsonl by extension", path: "a.jsonl", want: &RotatingJSONLStore{}},
		{name: "sqlite by extension", path: "a.db", want: &SQLiteStore{}},
		{name: "explicit sqlite", path: "b.log", backend: "sqlite", want: &SQLiteStore{}},
		{name: "explicit jsonl", path: "c.db", backend: "JSONL", want: &RotatingJSONLStore{}},
		{name: "unknown", path: "d.log", backend: "parquet", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Backend = tt.backend
			store, err := Open(filepath.Join(dir, tt.path), opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer func() { _ = store.Close() }()
			assert.IsType(t, tt.want, store)
		})
	}
}
