// Package fanout hands bridge snapshots to consumers running on their own
// goroutines.
//
// Bridge callbacks run inside Update on the caller's goroutine, so a slow
// consumer stalls the whole engine cycle. A Bus decouples the two: Publish
// never blocks, and each subscriber picks how it loses data when it cannot
// keep up.
//
//   - DropNew: values go to a caller-owned buffered channel; when the channel
//     is full the new value is dropped.
//   - DropOld: the subscriber keeps only the latest value; an unread value is
//     overwritten by the next Publish.
//
// Snapshots are immutable owned values, so publishing the same value to
// several subscribers needs no copying.
package fanout

import (
	"errors"
	"sync"
	"sync/atomic"
)

var (
	ErrBusClosed          = errors.New("fanout: bus is closed")
	ErrSubscriberExists   = errors.New("fanout: subscriber already exists")
	ErrSubscriberNotFound = errors.New("fanout: subscriber not found")
	ErrNilChannel         = errors.New("fanout: nil channel provided")
)

// DropPolicy defines how the bus handles values a subscriber cannot take.
type DropPolicy int

const (
	DropNew DropPolicy = iota
	DropOld
)

func (p DropPolicy) String() string {
	if p == DropOld {
		return "drop_old"
	}
	return "drop_new"
}

// SubscriberStats tracks delivery to one subscriber.
type SubscriberStats struct {
	Sent    uint64
	Dropped uint64
}

// DropRate returns Dropped / (Sent + Dropped), or 0 when nothing was
// published.
func (s SubscriberStats) DropRate() float64 {
	total := s.Sent + s.Dropped
	if total == 0 {
		return 0
	}
	return float64(s.Dropped) / float64(total)
}

type subscriber[T any] struct {
	policy  DropPolicy
	sent    atomic.Uint64
	dropped atomic.Uint64

	ch     chan<- T    // DropNew
	latest *Latest[T] // DropOld
}

// Bus distributes values of type T to named subscribers. It is safe for
// concurrent use.
type Bus[T any] struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber[T]
	published   atomic.Uint64
	closed      bool
}

// New returns an empty bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{subscribers: make(map[string]*subscriber[T])}
}

// Subscribe registers ch with the DropNew policy. The bus never closes ch.
func (b *Bus[T]) Subscribe(id string, ch chan<- T) error {
	if ch == nil {
		return ErrNilChannel
	}
	return b.add(id, &subscriber[T]{policy: DropNew, ch: ch})
}

// SubscribeLatest registers a DropOld subscriber and returns its receiver.
func (b *Bus[T]) SubscribeLatest(id string) (*Latest[T], error) {
	latest := newLatest[T]()
	if err := b.add(id, &subscriber[T]{policy: DropOld, latest: latest}); err != nil {
		return nil, err
	}
	return latest, nil
}

func (b *Bus[T]) add(id string, sub *subscriber[T]) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}
	if _, exists := b.subscribers[id]; exists {
		return ErrSubscriberExists
	}
	b.subscribers[id] = sub
	return nil
}

// Publish hands v to every subscriber without blocking.
func (b *Bus[T]) Publish(v T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	b.published.Add(1)

	for _, sub := range b.subscribers {
		switch sub.policy {
		case DropNew:
			select {
			case sub.ch <- v:
				sub.sent.Add(1)
			default:
				sub.dropped.Add(1)
			}
		case DropOld:
			if sub.latest.set(v) {
				sub.dropped.Add(1)
			}
			sub.sent.Add(1)
		}
	}
}

// Unsubscribe removes a subscriber. A DropOld receiver is closed.
func (b *Bus[T]) Unsubscribe(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, exists := b.subscribers[id]
	if !exists {
		return ErrSubscriberNotFound
	}
	if sub.latest != nil {
		sub.latest.Close()
	}
	delete(b.subscribers, id)
	return nil
}

// Stats returns the counters of one subscriber.
func (b *Bus[T]) Stats(id string) (SubscriberStats, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	sub, exists := b.subscribers[id]
	if !exists {
		return SubscriberStats{}, ErrSubscriberNotFound
	}
	return SubscriberStats{Sent: sub.sent.Load(), Dropped: sub.dropped.Load()}, nil
}

// Published returns the number of Publish calls accepted by the bus.
func (b *Bus[T]) Published() uint64 { return b.published.Load() }

// Close stops delivery and closes every DropOld receiver. Calling Close
// twice is a no-op.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subscribers {
		if sub.latest != nil {
			sub.latest.Close()
		}
	}
	b.subscribers = nil
}

// Latest holds the most recent value published to a DropOld subscriber.
type Latest[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	value  T
	seq    uint64
	read   uint64
	closed bool
}

func newLatest[T any]() *Latest[T] {
	l := &Latest[T]{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// set stores v and reports whether an unread value was overwritten.
func (l *Latest[T]) set(v T) (overwrote bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return false
	}
	overwrote = l.seq > l.read
	l.value = v
	l.seq++
	l.cond.Broadcast()
	return overwrote
}

// Receive blocks until a value newer than the last one received is
// available. ok is false once the receiver is closed.
func (l *Latest[T]) Receive() (v T, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for l.seq == l.read && !l.closed {
		l.cond.Wait()
	}
	if l.closed {
		return v, false
	}
	l.read = l.seq
	return l.value, true
}

// TryReceive returns an unread value without blocking.
func (l *Latest[T]) TryReceive() (v T, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || l.seq == l.read {
		return v, false
	}
	l.read = l.seq
	return l.value, true
}

// Close wakes blocked receivers.
func (l *Latest[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	l.cond.Broadcast()
}
