package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/flatq/internal/flat"
)

func newTestWatcher(t *testing.T) (*Watcher, chan Update) {
	t.Helper()
	codec, err := flat.New(flat.DefaultOptions())
	require.NoError(t, err)

	w, err := New(codec, 50*time.Millisecond)
	require.NoError(t, err)

	updates := make(chan Update, 16)
	w.OnUpdate(func(up Update) { updates <- up })
	return w, updates
}

func next(t *testing.T, updates <-chan Update) Update {
	t.Helper()
	select {
	case up := <-updates:
		return up
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for update")
		return Update{}
	}
}

func TestWatcherFollowsDocument(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": {"b": 1}, "c": true}`), 0o644))

	w, updates := newTestWatcher(t)
	require.NoError(t, w.Add(path))
	w.Start()

	up := next(t, updates)
	require.NoError(t, up.Err)
	assert.Equal(t, EventCreate, up.Event)
	assert.Equal(t, []string{"a.b", "c"}, up.Flat.Keys())
	assert.Equal(t, []string{"a.b", "c"}, up.Changes.Added)

	require.NoError(t, os.WriteFile(path, []byte(`{"a": {"b": 2}, "d": null}`), 0o644))
	up = next(t, updates)
	require.NoError(t, up.Err)
	assert.Equal(t, `{"a.b":2,"d":null}`, up.Flat.Tree().Text())
	assert.Equal(t, Changes{Added: []string{"d"}, Removed: []string{"c"}, Modified: []string{"a.b"}}, up.Changes)

	require.NoError(t, os.Remove(path))
	up = next(t, updates)
	assert.Equal(t, EventRemove, up.Event)
	assert.Nil(t, up.Flat)
	assert.Equal(t, []string{"a.b", "d"}, up.Changes.Removed)

	require.NoError(t, w.Stop())
	stats := w.Stats()
	assert.False(t, stats.IsActive)
	assert.GreaterOrEqual(t, stats.EventsProcessed, int64(3))
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o644))

	w, updates := newTestWatcher(t)
	require.NoError(t, w.Add(path))
	w.Start()
	next(t, updates)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o644))
	select {
	case up := <-updates:
		t.Fatalf("unexpected update for %s", up.Path)
	case <-time.After(150 * time.Millisecond):
	}

	require.NoError(t, w.Stop())
}

func TestWatcherReportsDecodeErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":`), 0o644))

	w, updates := newTestWatcher(t)
	require.NoError(t, w.Add(path))
	w.Start()

	up := next(t, updates)
	assert.Error(t, up.Err)
	assert.Nil(t, up.Flat)

	require.NoError(t, w.Stop())
	assert.Equal(t, int64(1), w.Stats().ErrorCount)
}

func TestDebouncerCoalescesEvents(t *testing.T) {
	defer goleak.VerifyNone(t)

	batches := make(chan map[string]EventType, 4)
	d := newEventDebouncer(30*time.Millisecond, func(ev map[string]EventType) { batches <- ev })

	d.addEvent("a", EventCreate)
	d.addEvent("a", EventWrite)
	d.addEvent("b", EventRemove)

	select {
	case batch := <-batches:
		assert.Equal(t, map[string]EventType{"a": EventWrite, "b": EventRemove}, batch)
	case <-time.After(5 * time.Second):
		t.Fatal("no flush")
	}

	d.addEvent("c", EventWrite)
	d.stop()
	d.addEvent("d", EventWrite)
	select {
	case batch := <-batches:
		t.Fatalf("flush after stop: %v", batch)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDiff(t *testing.T) {
	old := flat.FlatMapOf("a", 1, "b", 2, "c", 3)
	cur := flat.FlatMapOf("b", 2, "c", 4, "d", 5)

	assert.Equal(t, Changes{Added: []string{"d"}, Removed: []string{"a"}, Modified: []string{"c"}}, Diff(old, cur))
	assert.True(t, Diff(cur, cur).IsEmpty())
	assert.Equal(t, []string{"b", "c", "d"}, Diff(nil, cur).Added)
	assert.Equal(t, EventRename.String(), "rename")
}
