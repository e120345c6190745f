package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenDir(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "home", FileName)
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, path, store.Path())
	assert.FileExists(t, path)
}

func TestStore_RecordAssignsIDAndTimestamp(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	e := &Entry{Name: "get-user", Method: "GET", URL: "http://localhost/users/1", StatusCode: 200, Duration: 12 * time.Millisecond, Bytes: 42}
	require.NoError(t, store.Record(ctx, e))
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.CreatedAt.IsZero())

	entries, err := store.List(ctx, 10, "")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, "get-user", got.Name)
	assert.Equal(t, "GET", got.Method)
	assert.Equal(t, 200, got.StatusCode)
	assert.Equal(t, 12*time.Millisecond, got.Duration)
	assert.Equal(t, int64(42), got.Bytes)
	assert.True(t, e.CreatedAt.Equal(got.CreatedAt))
}

func TestStore_ListNewestFirstWithFilterAndLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"a", "b", "a", "a"} {
		require.NoError(t, store.Record(ctx, &Entry{
			Name:      name,
			Method:    "GET",
			URL:       "http://localhost/" + name,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := store.List(ctx, 0, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, base.Add(3*time.Minute).UnixNano(), all[0].CreatedAt.UnixNano())

	onlyA, err := store.List(ctx, 2, "a")
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	for _, e := range onlyA {
		assert.Equal(t, "a", e.Name)
	}
	assert.True(t, onlyA[0].CreatedAt.After(onlyA[1].CreatedAt))

	none, err := store.List(ctx, 5, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_Clear(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, &Entry{Name: "a", Method: "GET", URL: "u"}))
	require.NoError(t, store.Record(ctx, &Entry{Name: "b", Method: "GET", URL: "u"}))

	n, err := store.Clear(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.Clear(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	entries, err := store.List(ctx, 0, "")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_Stats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		require.NoError(t, store.Record(ctx, &Entry{
			Name:       "list",
			Method:     "GET",
			URL:        "http://localhost/items",
			StatusCode: 200,
			Duration:   time.Duration(i*10) * time.Millisecond,
		}))
	}
	require.NoError(t, store.Record(ctx, &Entry{Name: "list", Method: "GET", URL: "http://localhost/items", StatusCode: 500, Duration: 5 * time.Millisecond}))
	require.NoError(t, store.Record(ctx, &Entry{Name: "list", Method: "GET", URL: "http://localhost/items", Error: "connection refused"}))
	require.NoError(t, store.Record(ctx, &Entry{Name: "other", Method: "GET", URL: "http://localhost/", StatusCode: 200, Duration: time.Second}))

	st, err := store.Stats(ctx, "list")
	require.NoError(t, err)

	assert.Equal(t, int64(12), st.Count)
	assert.Equal(t, int64(2), st.Errors)
	assert.InDelta(t, float64(5*time.Millisecond), float64(st.Min), float64(100*time.Microsecond))
	assert.InDelta(t, float64(100*time.Millisecond), float64(st.Max), float64(time.Millisecond))
	assert.InDelta(t, float64(50*time.Millisecond), float64(st.P50), float64(time.Millisecond))
	assert.InDelta(t, float64(100*time.Millisecond), float64(st.P99), float64(time.Millisecond))
	assert.InDelta(t, float64(50455*time.Microsecond), float64(st.Mean), float64(time.Millisecond))
	assert.InDelta(t, 2.0/12.0, st.ErrorRate(), 0.0001)
}

func TestCompute_Empty(t *testing.T) {
	st := Compute(nil)
	assert.Equal(t, int64(0), st.Count)
	assert.Zero(t, st.P50)
	assert.Zero(t, st.ErrorRate())
}

func TestCompute_OnlyErrors(t *testing.T) {
	st := Compute([]Entry{{Error: "timeout"}, {Error: "refused"}})
	assert.Equal(t, int64(2), st.Count)
	assert.Equal(t, int64(2), st.Errors)
	assert.Zero(t, st.Max)
}

func TestEntry_Failed(t *testing.T) {
	assert.False(t, (&Entry{StatusCode: 204}).Failed())
	assert.False(t, (&Entry{StatusCode: 302}).Failed())
	assert.True(t, (&Entry{StatusCode: 404}).Failed())
	assert.True(t, (&Entry{Error: "boom"}).Failed())
}
