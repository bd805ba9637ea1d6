// Package watch re-flattens documents when they change on disk.
package watch

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/flatq/internal/debug"
	"github.com/standardbeagle/flatq/internal/docio"
	"github.com/standardbeagle/flatq/internal/flat"
)

// DefaultDebounce is used when New gets a non-positive debounce.
const DefaultDebounce = 100 * time.Millisecond

// EventType represents the type of file system event
type EventType int

const (
	EventCreate EventType = iota
	EventWrite
	EventRemove
	EventRename
)

func (t EventType) String() string {
	switch t {
	case EventCreate:
		return "create"
	case EventWrite:
		return "write"
	case EventRemove:
		return "remove"
	case EventRename:
		return "rename"
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// Update is delivered once per changed document after the debounce window.
// Flat is nil when the document was removed or failed to load.
type Update struct {
	Path     string
	Event    EventType
	Document *docio.Document
	Flat     *flat.FlatMap
	Changes  Changes
	Err      error
}

// Watcher monitors document files and re-flattens them when they change.
// Parent directories are watched so editors that save by rename are seen.
type Watcher struct {
	watcher   *fsnotify.Watcher
	codec     *flat.Codec
	debouncer *eventDebouncer
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	mu       sync.Mutex
	files    map[string]bool
	dirs     map[string]bool
	last     map[string]*flat.FlatMap
	onUpdate func(Update)

	eventsProcessed int64
	errorCount      int64
	lastEventTime   time.Time
	statsMu         sync.RWMutex
}

// New creates a watcher that flattens with codec.
func New(codec *flat.Codec, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		watcher: fsw,
		codec:   codec,
		ctx:     ctx,
		cancel:  cancel,
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
		last:    make(map[string]*flat.FlatMap),
	}
	w.debouncer = newEventDebouncer(debounce, w.flush)
	return w, nil
}

// OnUpdate sets the callback for document updates. Call before Start.
func (w *Watcher) OnUpdate(fn func(Update)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onUpdate = fn
}

// Add registers a document file.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.dirs[dir] {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	w.files[abs] = true
	debug.LogWatch("watching %s\n", abs)
	return nil
}

// Files returns the registered documents in sorted order.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Start delivers an initial update for every registered document and then
// follows changes until Stop.
func (w *Watcher) Start() {
	for _, f := range w.Files() {
		w.debouncer.addEvent(f, EventCreate)
	}

	w.wg.Add(1)
	go w.processEvents()
}

// Stop stops the watcher. Pending debounced events are discarded and a
// flush already in progress is waited for.
func (w *Watcher) Stop() error {
	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()
	w.debouncer.stop()
	debug.LogWatch("watcher stopped\n")
	return err
}

// processEvents processes file system events from fsnotify
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
			w.incrementStats(0, 1)
		}
	}
}

// handleEvent maps an fsnotify event on a registered document onto the debouncer
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	w.mu.Lock()
	watched := w.files[path]
	w.mu.Unlock()
	if !watched {
		return
	}
	debug.LogWatch("received %v for %s\n", event.Op, path)

	var eventType EventType
	switch {
	case event.Has(fsnotify.Create):
		eventType = EventCreate
	case event.Has(fsnotify.Write):
		eventType = EventWrite
	case event.Has(fsnotify.Remove):
		eventType = EventRemove
	case event.Has(fsnotify.Rename):
		eventType = EventRename
	default:
		return
	}
	w.debouncer.addEvent(path, eventType)
}

// flush processes a debounced batch: removals first, then reloads.
func (w *Watcher) flush(events map[string]EventType) {
	paths := make([]string, 0, len(events))
	for p := range events {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	var removes, loads []string
	for _, p := range paths {
		switch events[p] {
		case EventRemove, EventRename:
			removes = append(removes, p)
		default:
			loads = append(loads, p)
		}
	}

	for _, p := range removes {
		w.emit(w.removed(p, events[p]))
	}
	for _, p := range loads {
		w.emit(w.reload(p, events[p]))
	}
}

func (w *Watcher) removed(path string, ev EventType) Update {
	w.mu.Lock()
	prev := w.last[path]
	delete(w.last, path)
	w.mu.Unlock()
	return Update{Path: path, Event: ev, Changes: Diff(prev, nil)}
}

// reload loads and flattens path, diffing against the last good flat map.
func (w *Watcher) reload(path string, ev EventType) Update {
	up := Update{Path: path, Event: ev}
	doc, err := docio.Load(path)
	if err != nil {
		up.Err = err
		return up
	}
	fm, err := w.codec.Flatten(doc.Root)
	if err != nil {
		up.Err = fmt.Errorf("flatten %s: %w", path, err)
		return up
	}
	up.Document, up.Flat = doc, fm

	w.mu.Lock()
	up.Changes = Diff(w.last[path], fm)
	w.last[path] = fm
	w.mu.Unlock()
	return up
}

func (w *Watcher) emit(up Update) {
	if up.Err != nil {
		debug.LogWatch("update %s failed: %v\n", up.Path, up.Err)
		w.incrementStats(1, 1)
	} else {
		w.incrementStats(1, 0)
	}

	w.mu.Lock()
	fn := w.onUpdate
	w.mu.Unlock()
	if fn != nil && w.ctx.Err() == nil {
		fn(up)
	}
}

// incrementStats updates watch mode statistics
func (w *Watcher) incrementStats(events, errors int64) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()

	w.eventsProcessed += events
	w.errorCount += errors
	w.lastEventTime = time.Now()
}

// Stats returns current watch statistics
func (w *Watcher) Stats() Stats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()

	return Stats{
		EventsProcessed: w.eventsProcessed,
		ErrorCount:      w.errorCount,
		LastEventTime:   w.lastEventTime,
		IsActive:        w.ctx.Err() == nil,
	}
}

// Stats contains statistics about watch operations
type Stats struct {
	EventsProcessed int64
	ErrorCount      int64
	LastEventTime   time.Time
	IsActive        bool
}
