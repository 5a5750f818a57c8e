// Package events implements the client's fire-and-forget event bus: named
// events (chat, player_move, disconnect, ...) dispatched to subscriber
// callbacks concurrently, plus one-shot predicate waiters used by request/
// response operations (join_lobby, find_games) to block until a matching
// inbound frame arrives.
package events

import (
	"sync"

	"github.com/google/uuid"
)

// Event is one named occurrence raised by the session, carrying an
// event-specific payload.
type Event struct {
	Name string
	Data interface{}
}

// Handler receives events a subscriber registered for.
type Handler func(ev Event)

type subscription struct {
	id      uuid.UUID
	name    string
	handler Handler
}

// Bus dispatches named events to subscribers and predicate waiters. All
// dispatch is fire-and-forget: each handler and matching waiter runs in its
// own goroutine so a slow subscriber never blocks the session's packet loop.
type Bus struct {
	mu      sync.Mutex
	subs    []subscription
	waiters []waiter
}

type waiter struct {
	id        uuid.UUID
	predicate func(Event) bool
	result    chan Event
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers handler for every event named name ("*" matches all
// events) and returns a token usable with Unsubscribe.
func (b *Bus) Subscribe(name string, handler Handler) uuid.UUID {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := uuid.New()
	b.subs = append(b.subs, subscription{id: id, name: name, handler: handler})
	return id
}

// Unsubscribe removes a subscription previously returned by Subscribe.
func (b *Bus) Unsubscribe(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Emit fires ev to every subscriber of ev.Name (and any "*" subscriber), and
// resolves the first outstanding waiter whose predicate matches, concurrently
// and without blocking the caller.
func (b *Bus) Emit(ev Event) {
	b.mu.Lock()
	matched := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if s.name == ev.Name || s.name == "*" {
			matched = append(matched, s.handler)
		}
	}

	var matchedWaiter *waiter
	for i, w := range b.waiters {
		if w.predicate(ev) {
			hit := w
			matchedWaiter = &hit
			b.waiters = append(b.waiters[:i], b.waiters[i+1:]...)
			break
		}
	}
	b.mu.Unlock()

	for _, h := range matched {
		go h(ev)
	}
	if matchedWaiter != nil {
		go func(w waiter) {
			w.result <- ev
			close(w.result)
		}(*matchedWaiter)
	}
}

// Waiter is a registered one-shot predicate match, split from WaitFor so a
// caller can register before sending the request that triggers the
// response, then block afterwards without a register/send race.
type Waiter struct {
	bus    *Bus
	id     uuid.UUID
	result chan Event
}

// Register records predicate as a pending waiter and returns immediately;
// the matching event (if any) is buffered until Wait is called.
func (b *Bus) Register(predicate func(Event) bool) *Waiter {
	b.mu.Lock()
	w := waiter{id: uuid.New(), predicate: predicate, result: make(chan Event, 1)}
	b.waiters = append(b.waiters, w)
	b.mu.Unlock()
	return &Waiter{bus: b, id: w.id, result: w.result}
}

// Wait blocks until the registered predicate matches or stop is closed.
func (w *Waiter) Wait(stop <-chan struct{}) (Event, bool) {
	select {
	case ev, ok := <-w.result:
		return ev, ok
	case <-stop:
		w.bus.cancelWaiter(w.id)
		return Event{}, false
	}
}

// WaitFor registers predicate and blocks until it matches or stop is
// closed. Mirrors connection.py's `queue.wait_for(predicate)` used by
// join_game/find_games to correlate a request with its eventual response
// frame. Callers that must send a request after registering but before
// blocking should use Register/Wait directly instead.
func (b *Bus) WaitFor(predicate func(Event) bool, stop <-chan struct{}) (Event, bool) {
	return b.Register(predicate).Wait(stop)
}

func (b *Bus) cancelWaiter(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, w := range b.waiters {
		if w.id == id {
			b.waiters = append(b.waiters[:i], b.waiters[i+1:]...)
			return
		}
	}
}
