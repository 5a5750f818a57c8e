package model

import "samp-server-go/pkg/wire"

// NetIDs names the three component net-ids a local avatar's PlayerControl
// spawn declares (spec.md §3 "net_ids.control/physics/network together
// uniquely identify the local avatar's components").
type NetIDs struct {
	Control uint32
	Physics uint32
	Network uint32

	controlSet bool
	physicsSet bool
	networkSet bool
}

// SetControl / SetPhysics / SetNetwork record a net-id and mark it present.
func (n *NetIDs) SetControl(id uint32) { n.Control = id; n.controlSet = true }
func (n *NetIDs) SetPhysics(id uint32) { n.Physics = id; n.physicsSet = true }
func (n *NetIDs) SetNetwork(id uint32) { n.Network = id; n.networkSet = true }

// Complete reports whether all three net-ids are known (spec.md §3 "A
// player is considered complete when all three net-ids are known").
func (n NetIDs) Complete() bool {
	return n.controlSet && n.physicsSet && n.networkSet
}

// Position is a 2D point, used for both position and velocity.
type Position struct {
	X, Y float32
}

// Player is one lobby member's full known state.
type Player struct {
	ID     byte
	Name   string
	Color  byte
	Hat    byte
	Pet    byte
	Skin   byte
	Status byte
	Tasks  []byte

	NetIDs NetIDs

	ClientID uint32
	Host     bool
	Impostor bool

	Position      Position
	Velocity      Position
	DeathPosition Position
}

// IsDead reports the dead-status bit (bit 2, mask 0x04) set by
// MurderPlayer handling (spec.md §4.6 "mark victim dead (status |= 4)").
func (p *Player) IsDead() bool {
	return p.Status&0x04 != 0
}

// MarkDead sets the dead-status bit and records the death position.
func (p *Player) MarkDead(at Position) {
	p.Status |= 0x04
	p.DeathPosition = at
}

// TaskState is one task-id/completion pair as carried in a GameData spawn
// roster block, mirroring original_source/amongus/task.py's Task (id,
// complete). Ongoing completion tracking lives in core/tasks.Board; this is
// only the initial snapshot a roster block carries.
type TaskState struct {
	ID       byte
	Complete bool
}

// DeserializePlayer decodes one roster block from a GameData spawn, per
// original_source/amongus/player.py's Player.deserialize: id | string name |
// color | hatId(VarInt7) | petId(VarInt7) | skinId(VarInt7) | status |
// taskCount | taskCount * (taskId(VarInt7) | completeByte). Returns the
// player, its initial task states, and the number of bytes consumed.
func DeserializePlayer(data []byte) (*Player, []TaskState, int, error) {
	if len(data) < 1 {
		return nil, nil, 0, wire.ErrShortBuffer
	}
	p := &Player{ID: data[0]}
	offset := 1

	name, n, err := wire.ReadString(data[offset:])
	if err != nil {
		return nil, nil, 0, err
	}
	p.Name = name
	offset += n

	if offset >= len(data) {
		return nil, nil, 0, wire.ErrShortBuffer
	}
	p.Color = data[offset]
	offset++

	hat, n, err := wire.ReadVarInt7(data[offset:])
	if err != nil {
		return nil, nil, 0, err
	}
	p.Hat = byte(hat)
	offset += n

	pet, n, err := wire.ReadVarInt7(data[offset:])
	if err != nil {
		return nil, nil, 0, err
	}
	p.Pet = byte(pet)
	offset += n

	skin, n, err := wire.ReadVarInt7(data[offset:])
	if err != nil {
		return nil, nil, 0, err
	}
	p.Skin = byte(skin)
	offset += n

	if offset+2 > len(data) {
		return nil, nil, 0, wire.ErrShortBuffer
	}
	p.Status = data[offset]
	offset++
	taskCount := int(data[offset])
	offset++

	states := make([]TaskState, 0, taskCount)
	ids := make([]byte, 0, taskCount)
	for i := 0; i < taskCount; i++ {
		id, n, err := wire.ReadVarInt7(data[offset:])
		if err != nil {
			return nil, nil, 0, err
		}
		offset += n
		if offset >= len(data) {
			return nil, nil, 0, wire.ErrShortBuffer
		}
		complete := data[offset] != 0
		offset++
		states = append(states, TaskState{ID: byte(id), Complete: complete})
		ids = append(ids, byte(id))
	}
	p.Tasks = ids

	return p, states, offset, nil
}
