// internal/logsink/sink.go
package logsink

import "sync"

// Sink is an unbounded FIFO of log entries.
//
// Any number of goroutines may push; one consumer drains.
// Entries pushed by one goroutine keep their order. Entries from
// different goroutines interleave in lock acquisition order, which is
// best-effort push time.
type Sink struct {
	mu      sync.Mutex
	entries []Entry
	notify  chan struct{}
}

func New() *Sink {
	return &Sink{notify: make(chan struct{}, 1)}
}

// Push appends one entry.
func (s *Sink) Push(e Entry) {
	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
	s.signal()
}

// Append copies a sequence of entries wholesale, keeping their order.
func (s *Sink) Append(entries ...Entry) {
	if len(entries) == 0 {
		return
	}
	s.mu.Lock()
	s.entries = append(s.entries, entries...)
	s.mu.Unlock()
	s.signal()
}

// Pop removes and returns the oldest entry.
// ok is false when the sink is empty.
func (s *Sink) Pop() (e Entry, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return Entry{}, false
	}
	e = s.entries[0]
	s.entries[0] = Entry{}
	s.entries = s.entries[1:]
	return e, true
}

// Drain removes and returns every entry, leaving the sink empty.
func (s *Sink) Drain() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.entries
	s.entries = nil
	return out
}

// Len reports the number of queued entries.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Notify returns a channel that receives a value after entries were added.
// Signals coalesce: one receive may cover many pushes.
func (s *Sink) Notify() <-chan struct{} {
	return s.notify
}

func (s *Sink) signal() {
	if s.notify == nil {
		return
	}
	select {
	case s.notify <- struct{}{}:
	default:
	}
}
