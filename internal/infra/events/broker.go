package events

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"stay-ledger/internal/domain/event"
)

// Broker fans committed events out to subscribers. Publish never blocks: a
// subscriber whose buffer is full misses the event and must catch up through
// the event log.
type Broker struct {
	mu      sync.RWMutex
	subs    map[uint64]chan event.Event
	nextID  uint64
	buffer  int
	closed  bool
	logger  *slog.Logger
	dropped atomic.Uint64
}

func NewBroker(buffer int, logger *slog.Logger) *Broker {
	if buffer <= 0 {
		buffer = 64
	}
	return &Broker{
		subs:   make(map[uint64]chan event.Event),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe returns a channel receiving events published from now on, and a
// cancel func that closes it. Cancel is safe to call more than once.
func (b *Broker) Subscribe() (<-chan event.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan event.Event, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() { b.unsubscribe(id) })
	}
}

func (b *Broker) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

func (b *Broker) Publish(evs []event.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ev := range evs {
		for id, ch := range b.subs {
			select {
			case ch <- ev:
			default:
				b.dropped.Add(1)
				b.logger.Warn("Subscriber buffer full, event dropped",
					slog.Uint64("subscriber", id),
					slog.Int64("seq", ev.Seq),
					slog.String("kind", string(ev.Kind)))
			}
		}
	}
}

// Close ends every subscription.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped counts deliveries skipped because a subscriber was full.
func (b *Broker) Dropped() uint64 {
	return b.dropped.Load()
}
