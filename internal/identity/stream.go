package identity

import (
	"log/slog"
	"sync"
	"time"
)

// State is an authentication state.
type State int

const (
	Loading State = iota
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// Event is one transition for a user.
type Event struct {
	State  State
	UserID string
	At     time.Time
}

// Stream fans authentication events out to subscribers. Slow subscribers lose events
// rather than block the publisher.
type Stream struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	next   int
	closed bool
	logger *slog.Logger
}

// NewStream creates a Stream; a nil logger means slog.Default().
func NewStream(logger *slog.Logger) *Stream {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stream{subs: make(map[int]chan Event), logger: logger}
}

// Subscribe registers a subscriber with the given buffer size. The returned cancel
// function unregisters it and closes the channel.
func (s *Stream) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.next
	s.next++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Publish delivers e to every subscriber.
func (s *Stream) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- e:
		default:
			s.logger.Warn("auth event dropped", "subscriber", id, "state", e.State.String(), "user", e.UserID)
		}
	}
}

// Close closes every subscriber channel. Publishing after Close is a no-op.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.closed = true
}
