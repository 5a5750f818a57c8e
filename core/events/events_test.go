package events

import (
	"testing"
	"time"
)

func TestSubscribeEmitDeliversEvent(t *testing.T) {
	b := New()
	got := make(chan Event, 1)
	b.Subscribe("chat", func(ev Event) { got <- ev })

	b.Emit(Event{Name: "chat", Data: "hello"})

	select {
	case ev := <-got:
		if ev.Data != "hello" {
			t.Errorf("Data = %v, want hello", ev.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("handler never invoked")
	}
}

func TestSubscribeWildcardReceivesAllNames(t *testing.T) {
	b := New()
	got := make(chan Event, 4)
	b.Subscribe("*", func(ev Event) { got <- ev })

	b.Emit(Event{Name: "chat"})
	b.Emit(Event{Name: "spawn"})

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case ev := <-got:
			seen[ev.Name] = true
		case <-time.After(time.Second):
			t.Fatal("wildcard subscriber missed an event")
		}
	}
	if !seen["chat"] || !seen["spawn"] {
		t.Errorf("seen = %v, want both chat and spawn", seen)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	got := make(chan Event, 1)
	id := b.Subscribe("chat", func(ev Event) { got <- ev })
	b.Unsubscribe(id)

	b.Emit(Event{Name: "chat"})

	select {
	case <-got:
		t.Fatal("handler invoked after unsubscribe")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWaitForMatchesPredicate(t *testing.T) {
	b := New()
	stop := make(chan struct{})

	done := make(chan Event, 1)
	go func() {
		ev, ok := b.WaitFor(func(ev Event) bool {
			return ev.Name == "join_game_response"
		}, stop)
		if ok {
			done <- ev
		}
	}()

	time.Sleep(20 * time.Millisecond) // let WaitFor register
	b.Emit(Event{Name: "chat"})       // should not resolve the waiter
	b.Emit(Event{Name: "join_game_response", Data: 42})

	select {
	case ev := <-done:
		if ev.Data != 42 {
			t.Errorf("Data = %v, want 42", ev.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitFor never resolved")
	}
}

func TestWaitForCancelledByStop(t *testing.T) {
	b := New()
	stop := make(chan struct{})

	done := make(chan bool, 1)
	go func() {
		_, ok := b.WaitFor(func(Event) bool { return false }, stop)
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	close(stop)

	select {
	case ok := <-done:
		if ok {
			t.Error("WaitFor reported success after stop was closed")
		}
	case <-time.After(time.Second):
		t.Fatal("WaitFor never returned after stop")
	}
}
