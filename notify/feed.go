package notify

import (
	"sync"
	"time"
)

const defaultFeedCapacity = 100

// Feed keeps the most recent notifications in memory so that a polling UI
// can render them as toasts. Sequence numbers start at 1 and never repeat.
type Feed struct {
	mu       sync.Mutex
	capacity int
	items    []Notification
	nextSeq  uint64
	now      func() time.Time
}

// NewFeed creates a feed retaining at most capacity notifications.
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = defaultFeedCapacity
	}
	return &Feed{
		capacity: capacity,
		items:    make([]Notification, 0, capacity),
		nextSeq:  1,
		now:      time.Now,
	}
}

// Notify implements Sink.
func (f *Feed) Notify(level Level, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := Notification{Seq: f.nextSeq, Level: level, Message: message, Time: f.now()}
	f.nextSeq++

	if len(f.items) == f.capacity {
		copy(f.items, f.items[1:])
		f.items = f.items[:len(f.items)-1]
	}
	f.items = append(f.items, n)
}

// Since returns retained notifications with a sequence number greater than seq, oldest first.
func (f *Feed) Since(seq uint64) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Notification, 0, len(f.items))
	for _, n := range f.items {
		if n.Seq > seq {
			out = append(out, n)
		}
	}
	return out
}
