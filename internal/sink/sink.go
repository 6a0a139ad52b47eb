// Package sink implements the Event Sink: a leveled, thread-safe,
// non-blocking event stream with a runtime-settable level filter. A
// subscriber whose buffer is full loses the event whatever its level; there
// is no separate drop-threshold level.
package sink

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Level is the severity of an emitted Event, lowest to highest.
type Level int

const (
	Info Level = iota
	Warn
	Error
	Critical
)

func (l Level) String() string {
	switch l {
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// maxComponentLen bounds the component tag to 16 bytes; longer tags are
// truncated rather than rejected.
const maxComponentLen = 16

// Event is a single leveled, component-tagged line. Ownership of Message is
// borrowed from the caller only for the duration of the Emit call; the sink
// copies what it needs to retain.
type Event struct {
	ID        string
	Level     Level
	Component string
	Message   string
	Seq       uint64
}

// Sink is a thread-safe, non-blocking-preferred event stream. Publishers
// never block; a subscriber with a full buffer silently drops any event,
// whatever its level, and the drop is counted.
type Sink struct {
	subs       atomic.Pointer[[]*subscription]
	dropped    atomic.Uint64
	seq        atomic.Uint64
	mu         sync.Mutex
	closed     bool
	bufferSize int

	filter atomic.Int32 // runtime-settable minimum Level to emit at all
}

type subscription struct {
	id     string
	level  Level
	ch     chan Event
	closed atomic.Bool
}

// New returns a Sink whose subscribers each get a bufferSize-deep channel.
// A non-positive bufferSize falls back to a sensible default.
func New(bufferSize int) *Sink {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	s := &Sink{bufferSize: bufferSize}
	empty := make([]*subscription, 0)
	s.subs.Store(&empty)
	s.filter.Store(int32(Info))
	return s
}

// SetLevel changes the minimum level that will be emitted at all, effective
// immediately for subsequent Emit calls.
func (s *Sink) SetLevel(l Level) {
	s.filter.Store(int32(l))
}

// Emit publishes one event line. It never blocks: if a subscriber's buffer
// is full, the event is dropped for that subscriber and the drop counter is
// incremented. Events below the runtime filter level are discarded before
// any subscriber is considered.
func (s *Sink) Emit(level Level, component, message string) {
	if level < Level(s.filter.Load()) {
		return
	}
	if len(component) > maxComponentLen {
		component = component[:maxComponentLen]
	}

	evt := Event{
		ID:        uuid.New().String(),
		Level:     level,
		Component: component,
		Message:   message,
		Seq:       s.seq.Add(1),
	}

	subs := s.subs.Load()
	if subs == nil {
		return
	}
	for _, sub := range *subs {
		if sub.closed.Load() || level < sub.level {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			s.dropped.Add(1)
		}
	}
}

// Subscription is a read handle into the sink's stream.
type Subscription struct {
	s   *Sink
	sub *subscription
}

// Subscribe registers a new reader that only receives events at or above
// minLevel.
func (s *Sink) Subscribe(minLevel Level) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &subscription{
		id:    uuid.New().String(),
		level: minLevel,
		ch:    make(chan Event, s.bufferSize),
	}

	old := s.subs.Load()
	next := make([]*subscription, len(*old)+1)
	copy(next, *old)
	next[len(*old)] = sub
	s.subs.Store(&next)

	return &Subscription{s: s, sub: sub}
}

// Events returns the channel of delivered events.
func (sub *Subscription) Events() <-chan Event {
	return sub.sub.ch
}

// Close unregisters the subscription.
func (sub *Subscription) Close() {
	s := sub.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if !sub.sub.closed.CompareAndSwap(false, true) {
		return
	}
	close(sub.sub.ch)

	old := s.subs.Load()
	next := make([]*subscription, 0, len(*old))
	for _, other := range *old {
		if other != sub.sub {
			next = append(next, other)
		}
	}
	s.subs.Store(&next)
}

// DroppedCount returns the total number of events dropped across all
// subscribers due to full buffers.
func (s *Sink) DroppedCount() uint64 {
	return s.dropped.Load()
}

// SubscriberCount returns the number of active subscriptions.
func (s *Sink) SubscriberCount() int {
	subs := s.subs.Load()
	if subs == nil {
		return 0
	}
	return len(*subs)
}

// Close shuts down the sink and all subscriptions.
func (s *Sink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	subs := s.subs.Load()
	for _, sub := range *subs {
		if sub.closed.CompareAndSwap(false, true) {
			close(sub.ch)
		}
	}
	empty := make([]*subscription, 0)
	s.subs.Store(&empty)
}
