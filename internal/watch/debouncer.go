package watch

import (
	"sync"
	"time"
)

// eventDebouncer batches file events; the latest event per path wins.
type eventDebouncer struct {
	events   map[string]EventType
	mutex    sync.Mutex
	debounce time.Duration
	timer    *time.Timer
	stopped  bool
	inflight sync.WaitGroup
	onFlush  func(map[string]EventType)
}

func newEventDebouncer(debounce time.Duration, onFlush func(map[string]EventType)) *eventDebouncer {
	return &eventDebouncer{
		events:   make(map[string]EventType),
		debounce: debounce,
		onFlush:  onFlush,
	}
}

// addEvent adds a file event to be debounced
func (d *eventDebouncer) addEvent(path string, eventType EventType) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.stopped {
		return
	}

	d.events[path] = eventType

	// Reset the timer. The waitgroup counts armed timers so stop can wait
	// for one that already fired.
	if d.timer != nil && d.timer.Stop() {
		d.inflight.Done()
	}
	d.inflight.Add(1)
	d.timer = time.AfterFunc(d.debounce, d.flush)
}

// flush processes all accumulated events
func (d *eventDebouncer) flush() {
	defer d.inflight.Done()

	d.mutex.Lock()
	events := d.events
	d.events = make(map[string]EventType)
	stopped := d.stopped
	d.mutex.Unlock()

	if stopped || len(events) == 0 {
		return
	}
	d.onFlush(events)
}

// stop discards pending events and waits for a running flush.
func (d *eventDebouncer) stop() {
	d.mutex.Lock()
	d.stopped = true
	if d.timer != nil && d.timer.Stop() {
		d.inflight.Done()
	}
	d.timer = nil
	d.events = make(map[string]EventType)
	d.mutex.Unlock()

	d.inflight.Wait()
}
