package session

import (
	"samp-server-go/pkg/wire"
	"samp-server-go/source/model"
)

// parseRoster decodes a GameData spawn's player-data block: a VarInt7 player
// count followed by that many model.Player-shaped blocks (spec.md §4.4,
// original_source/amongus/packets/spawn/gamedata.py).
func parseRoster(data []byte) (int, []*model.Player, map[byte][]model.TaskState, error) {
	count, n, err := wire.ReadVarInt7(data)
	if err != nil {
		return 0, nil, nil, err
	}
	offset := n

	players := make([]*model.Player, 0, count)
	taskStates := make(map[byte][]model.TaskState, count)
	for i := uint32(0); i < count; i++ {
		p, states, consumed, err := model.DeserializePlayer(data[offset:])
		if err != nil {
			return 0, nil, nil, err
		}
		players = append(players, p)
		taskStates[p.ID] = states
		offset += consumed
	}
	return int(count), players, taskStates, nil
}
