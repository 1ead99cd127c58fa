package eventlog

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/foodchain/game/engine"
)

// DefaultCapacity is how many events a Recorder keeps when none is given
const DefaultCapacity = 10000

// FileLog appends one line per event to a text file
type FileLog struct {
	mu     sync.Mutex
	logger *log.Logger
	closer io.Closer
}

// OpenFile opens (or creates) path for appending, creating parent directories
func OpenFile(path string) (*FileLog, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	l := NewWriterLog(f)
	l.closer = f
	return l, nil
}

// NewWriterLog logs events to w
func NewWriterLog(w io.Writer) *FileLog {
	return &FileLog{logger: log.New(w, "", 0)}
}

// Record writes "<RFC3339 timestamp> <event line>"
func (l *FileLog) Record(ev engine.Event) {
	ts := ev.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Printf("%s %s", ts.Format(time.RFC3339), ev)
}

// Close closes the underlying file, if any
func (l *FileLog) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Recorder keeps the most recent events in memory
type Recorder struct {
	mu       sync.RWMutex
	events   []engine.Event
	capacity int
	dropped  int
}

// NewRecorder creates a recorder holding at most capacity events
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{capacity: capacity}
}

// Record appends ev, discarding the oldest event when full
func (r *Recorder) Record(ev engine.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == r.capacity {
		copy(r.events, r.events[1:])
		r.events = r.events[:len(r.events)-1]
		r.dropped++
	}
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events, oldest first
func (r *Recorder) Events() []engine.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]engine.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Len returns the number of events currently held
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}

// Dropped returns how many events were discarded for capacity
func (r *Recorder) Dropped() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dropped
}

// Reset forgets every recorded event
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	r.dropped = 0
}

// Restore replaces the recorded events with a copy of events, e.g. to undo a
// Reset. Events beyond capacity are dropped oldest first.
func (r *Recorder) Restore(events []engine.Event, dropped int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if extra := len(events) - r.capacity; extra > 0 {
		events = events[extra:]
		dropped += extra
	}
	r.events = append([]engine.Event(nil), events...)
	r.dropped = dropped
}

// Multi fans each event out to several sinks in order
type Multi []engine.EventSink

// Record forwards ev to every non-nil sink
func (m Multi) Record(ev engine.Event) {
	for _, s := range m {
		if s != nil {
			s.Record(ev)
		}
	}
}
