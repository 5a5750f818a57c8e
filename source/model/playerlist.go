package model

// PlayerList is the lobby roster, keyed by player-id, with an auxiliary
// net-id index (spec.md §4.7).
type PlayerList struct {
	byID    map[byte]*Player
	byNetID map[uint32]*Player
	order   []byte

	expectedCount int
	countKnown    bool
}

// NewPlayerList returns an empty roster.
func NewPlayerList() *PlayerList {
	return &PlayerList{
		byID:    make(map[byte]*Player),
		byNetID: make(map[uint32]*Player),
	}
}

// SetExpectedCount records the num_players announced by the GameData spawn,
// used by Complete() (spec.md §3).
func (l *PlayerList) SetExpectedCount(n int) {
	l.expectedCount = n
	l.countKnown = true
}

// Add inserts or overwrites a player by id. If the existing record has
// net-ids and the incoming one doesn't carry all three, the existing
// net-ids are preserved (spec.md §4.7 "Overwrite semantics").
func (l *PlayerList) Add(p *Player) {
	existing, had := l.byID[p.ID]
	if had && !p.NetIDs.Complete() {
		p.NetIDs = existing.NetIDs
	}
	if !had {
		l.order = append(l.order, p.ID)
	} else {
		l.unindexNetIDs(existing)
	}
	l.byID[p.ID] = p
	l.indexNetIDs(p)
}

func (l *PlayerList) indexNetIDs(p *Player) {
	if p.NetIDs.controlSet {
		l.byNetID[p.NetIDs.Control] = p
	}
	if p.NetIDs.physicsSet {
		l.byNetID[p.NetIDs.Physics] = p
	}
	if p.NetIDs.networkSet {
		l.byNetID[p.NetIDs.Network] = p
	}
}

func (l *PlayerList) unindexNetIDs(p *Player) {
	if p.NetIDs.controlSet {
		delete(l.byNetID, p.NetIDs.Control)
	}
	if p.NetIDs.physicsSet {
		delete(l.byNetID, p.NetIDs.Physics)
	}
	if p.NetIDs.networkSet {
		delete(l.byNetID, p.NetIDs.Network)
	}
}

// Remove deletes a player by id.
func (l *PlayerList) Remove(id byte) {
	p, ok := l.byID[id]
	if !ok {
		return
	}
	l.unindexNetIDs(p)
	delete(l.byID, id)
	for i, existingID := range l.order {
		if existingID == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// ByID looks up a player by player-id.
func (l *PlayerList) ByID(id byte) (*Player, bool) {
	p, ok := l.byID[id]
	return p, ok
}

// ByNetID looks up a player by any of its three net-ids.
func (l *PlayerList) ByNetID(netID uint32) (*Player, bool) {
	p, ok := l.byNetID[netID]
	return p, ok
}

// All returns players in insertion order.
func (l *PlayerList) All() []*Player {
	out := make([]*Player, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.byID[id])
	}
	return out
}

// Len returns the number of known players.
func (l *PlayerList) Len() int {
	return len(l.byID)
}

// Complete reports whether every known player is complete AND the count
// matches the announced num_players (spec.md §3).
func (l *PlayerList) Complete() bool {
	if !l.countKnown || len(l.byID) != l.expectedCount {
		return false
	}
	for _, p := range l.byID {
		if !p.NetIDs.Complete() {
			return false
		}
	}
	return true
}
