package protocol

import (
	"samp-server-go/pkg/wire"

	"github.com/pkg/errors"
)

// PlayerControlComponents names the three net-ids a PlayerControl spawn
// declares, in wire order, plus the player-id carried in the control
// component's own data.
type PlayerControlComponents struct {
	PlayerID uint32
	Control  uint32
	Physics  uint32
	Network  uint32
}

// ErrUnexpectedComponentCount signals a PlayerControl spawn that didn't
// carry exactly three components.
var ErrUnexpectedComponentCount = errors.New("protocol: PlayerControl spawn did not carry exactly 3 components")

// ParsePlayerControlSpawn extracts the control/physics/network net-ids from
// a PlayerControl SpawnFlag, per spec.md §4.4 "data-flag resolution": "When
// a PlayerControl spawn is processed, record each of its three net-ids
// against the role label {control, physics, network}". The player-id is
// the first byte of the control component's data.
func ParsePlayerControlSpawn(p SpawnFlagPayload) (PlayerControlComponents, error) {
	if len(p.Blocks) != 3 {
		return PlayerControlComponents{}, ErrUnexpectedComponentCount
	}
	if len(p.Blocks[0].Data) < 1 {
		return PlayerControlComponents{}, wire.ErrShortBuffer
	}
	return PlayerControlComponents{
		PlayerID: uint32(p.Blocks[0].Data[0]),
		Control:  p.Blocks[0].NetID,
		Physics:  p.Blocks[1].NetID,
		Network:  p.Blocks[2].NetID,
	}, nil
}

// GameDataSpawnRoster is the raw roster carried by the GameData spawn type:
// its single component holds a player count followed by that many
// model.Player-shaped blocks (parsed by source/model to avoid this package
// depending on the lobby model).
type GameDataSpawnRoster struct {
	NetID      uint32
	PlayerData []byte
}

// ParseGameDataSpawn extracts the roster component from a GameData
// SpawnFlag. The component's data begins with a VarInt7 player count.
func ParseGameDataSpawn(p SpawnFlagPayload) (GameDataSpawnRoster, error) {
	if len(p.Blocks) < 1 {
		return GameDataSpawnRoster{}, wire.ErrShortBuffer
	}
	return GameDataSpawnRoster{NetID: p.Blocks[0].NetID, PlayerData: p.Blocks[0].Data}, nil
}
