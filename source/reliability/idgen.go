// Package reliability implements the application-level reliable channel on
// top of UDP: monotonic outgoing ids, an in-flight ack table with
// per-packet callbacks, a keep-alive pinger, and a receive-timeout reader.
package reliability

import (
	"sync"

	"samp-server-go/source/apperr"
)

// IDGenerator hands out strictly monotonically increasing reliable ids
// starting at 1, matching the session-local `_id` counter of the original
// connection (spec.md §4.4 "ID allocation"). 16-bit wraparound is not
// required within a session, but is treated as an internal assertion
// failure rather than silently wrapping, since a session living that long
// has outlived the protocol's assumptions.
type IDGenerator struct {
	mu   sync.Mutex
	next uint32
}

// NewIDGenerator returns a generator whose first Next() call yields 1.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{next: 1}
}

// Next returns the next reliable id and advances the counter.
func (g *IDGenerator) Next() (uint16, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.next > 0xFFFF {
		return 0, apperr.NewInternalAssertion("reliable id counter overflowed 16 bits")
	}
	id := uint16(g.next)
	g.next++
	return id, nil
}
