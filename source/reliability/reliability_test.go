package reliability

import (
	"sync"
	"testing"
	"time"
)

func TestIDGeneratorMonotonic(t *testing.T) {
	g := NewIDGenerator()
	for want := uint16(1); want < 10; want++ {
		got, err := g.Next()
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		if got != want {
			t.Errorf("Next() = %d, want %d", got, want)
		}
	}
}

func TestInFlightAckInvokesCallbackOnce(t *testing.T) {
	table := NewInFlightTable()
	var calls int
	var mu sync.Mutex
	table.Insert(7, func(latencyMs int) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if latencyMs < 1 {
			t.Errorf("latency = %d, want >= 1", latencyMs)
		}
	})
	if table.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", table.Len())
	}

	table.Ack(7)
	table.Ack(7) // duplicate ack must be silently ignored

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("callback invoked %d times, want 1", calls)
	}
	if table.Len() != 0 {
		t.Errorf("Len() after ack = %d, want 0", table.Len())
	}
}

func TestInFlightAckUnknownIDIsIgnored(t *testing.T) {
	table := NewInFlightTable()
	table.Ack(999) // must not panic
}

func TestPingerFiresAfterIntervalAndRestartDefers(t *testing.T) {
	fired := make(chan struct{}, 4)
	p := NewPinger(30*time.Millisecond, func() { fired <- struct{}{} })
	p.Start()
	defer p.Stop()

	select {
	case <-fired:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("pinger never fired")
	}

	// Restart should push the next fire out further than an immediate one.
	p.Restart()
	start := time.Now()
	select {
	case <-fired:
		if time.Since(start) < 20*time.Millisecond {
			t.Errorf("pinger fired too soon after Restart: %v", time.Since(start))
		}
	case <-time.After(300 * time.Millisecond):
		t.Fatal("pinger never fired after restart")
	}
}
