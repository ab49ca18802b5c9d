package events

import (
	"log/slog"
	"sync"
)

// Bus is a callback registry. Handlers run synchronously on the emitting
// goroutine, in subscription order.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]func(Event)
	order    []int
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[int]func(Event))}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[id] = fn
	b.order = append(b.order, id)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		delete(b.handlers, id)

		for i, v := range b.order {
			if v == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

// Emit delivers e to every subscriber.
func (b *Bus) Emit(e Event) {
	b.mu.RLock()
	fns := make([]func(Event), 0, len(b.order))

	for _, id := range b.order {
		fns = append(fns, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
}

// Chan delivers events on a buffered channel. When the buffer is full
// the event is dropped rather than blocking the engine.
type Chan struct {
	C       chan Event
	mu      sync.Mutex
	dropped int
}

// NewChan returns a Chan with the given buffer size.
func NewChan(size int) *Chan {
	return &Chan{C: make(chan Event, size)}
}

// Emit sends e without blocking.
func (c *Chan) Emit(e Event) {
	select {
	case c.C <- e:
	default:
		c.mu.Lock()
		c.dropped++
		c.mu.Unlock()
	}
}

// Dropped reports how many events were discarded because the buffer
// was full.
func (c *Chan) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.dropped
}

// LogSink writes every event to a logger.
type LogSink struct {
	Logger *slog.Logger
}

// Emit logs e at info level, or warn for failures.
func (s LogSink) Emit(e Event) {
	name := slog.String("event", Name(e))

	switch ev := e.(type) {
	case SyncFailed:
		msg := "<nil>"
		if ev.Err != nil {
			msg = ev.Err.Error()
		}

		s.Logger.Warn("sync event", name, slog.String("error", msg))
	case SyncProgress:
		s.Logger.Debug("sync event", name, slog.Int("done", ev.Done), slog.Int("total", ev.Total))
	case SyncStarted:
		s.Logger.Info("sync event", name, slog.String("run_id", ev.RunID), slog.String("kind", ev.Kind))
	case SyncCompleted:
		s.Logger.Info("sync event", name,
			slog.Int("pushed", ev.Pushed),
			slog.Int("pulled", ev.Pulled),
			slog.Int("trashed", ev.Trashed),
		)
	case AccountAvailabilityChanged:
		s.Logger.Info("sync event", name, slog.Bool("available", ev.Available))
	default:
		s.Logger.Info("sync event", name)
	}
}

// Discard drops every event.
type Discard struct{}

// Emit does nothing.
func (Discard) Emit(Event) {}
