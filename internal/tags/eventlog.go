package tags

import (
	"sync"
	"time"
)

// Entry is one operator-visible log line.
type Entry struct {
	ID     int64     `json:"id"`
	Time   time.Time `json:"ts"`
	Target string    `json:"target"`
	Text   string    `json:"text"`
	Color  string    `json:"color,omitempty"`
}

// EventLog keeps the most recent entries in a bounded buffer.
type EventLog struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
	nextID   int64
	now      func() time.Time
}

// NewEventLog creates a log keeping at most capacity entries.
func NewEventLog(capacity int) *EventLog {
	if capacity <= 0 {
		capacity = 1
	}
	return &EventLog{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
		nextID:   1,
		now:      time.Now,
	}
}

// Add appends an entry, assigning its ID and time.
func (l *EventLog) Add(target, text, color string) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := Entry{ID: l.nextID, Time: l.now(), Target: target, Text: text, Color: color}
	l.nextID++

	l.entries = append(l.entries, e)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[1:]
	}
	return e
}

// After returns the entries with ID greater than lastID.
func (l *EventLog) After(lastID int64) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Entry
	for _, e := range l.entries {
		if e.ID > lastID {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of retained entries.
func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Handler returns a binding handler that logs every update under the
// binding's LogTarget, coloured by LogColor.
func (l *EventLog) Handler() Handler {
	return func(u Update) {
		l.Add(u.Binding.LogTarget, u.Text(), u.Binding.Color(u))
	}
}
