package reliability

import (
	"sync"
	"time"
)

// Pinger runs a keep-alive loop that sends a Ping every keepAliveTimeout
// while the session is ready. Sending any other reliable frame restarts the
// timer (spec.md §4.4 "Sending any reliable frame OTHER THAN Ping/Ack
// restarts the pinger"), matching connection.py's `_start_pinging`/
// `_pinger` and the teacher's ticker-driven `updateLoop`.
type Pinger struct {
	interval time.Duration
	send     func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewPinger constructs a Pinger. send is called from the pinger's own
// goroutine each time the interval elapses without a restart.
func NewPinger(interval time.Duration, send func()) *Pinger {
	return &Pinger{interval: interval, send: send}
}

// Start arms the timer. Safe to call once; Restart re-arms it.
func (p *Pinger) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.timer = time.AfterFunc(p.interval, p.fire)
}

func (p *Pinger) fire() {
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if stopped {
		return
	}
	p.send()
	p.mu.Lock()
	if !p.stopped {
		p.timer = time.AfterFunc(p.interval, p.fire)
	}
	p.mu.Unlock()
}

// Restart defers the next scheduled ping by interval, relative to now, as
// required whenever a non-Ping/Ack reliable frame is sent.
func (p *Pinger) Restart() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped || p.timer == nil {
		return
	}
	p.timer.Reset(p.interval)
}

// Stop cancels the pinger permanently.
func (p *Pinger) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	if p.timer != nil {
		p.timer.Stop()
	}
}
