// Package model implements the in-memory lobby state: the Game settings
// record, the Player roster and its net-id index, and the GameList result
// of a find_games query.
package model

import (
	"samp-server-go/pkg/wire"

	"github.com/pkg/errors"
)

// Game holds the lobby-wide settings. EmergencyMeetings sits between
// ShortTasks and Impostors on the wire for every version (original_source/
// amongus/game.py, data[26:30]) — unlike the version-gated fields below it:
// v>=2 adds EmergencyCooldown; v>=3 adds ConfirmImpostor and VisualTasks;
// v>=4 adds AnonymousVotes and TaskBarUpdates (spec.md §3/§4.7).
type Game struct {
	Version uint8

	MaxPlayers   byte
	Keywords     uint32
	MapID        byte
	PlayerSpeed  float32
	CrewLight    float32
	ImpostorLight float32
	KillCooldown float32
	CommonTasks  byte
	LongTasks    byte
	ShortTasks   byte

	EmergencyMeetings uint32

	Impostors    byte
	KillDistance byte
	DiscussionTime int32
	VotingTime     int32
	DefaultFlag    bool

	EmergencyCooldown byte // v>=2

	ConfirmImpostor bool // v>=3
	VisualTasks     bool // v>=3

	AnonymousVotes  bool // v>=4
	TaskBarUpdates  byte // v>=4

	Public       bool
	Code         uint32
	Host         uint32
	Port         uint16
	PlayerCount  byte
}

// ReadableCode returns the six-letter lobby code for Code.
func (g *Game) ReadableCode() string {
	return wire.IntToGameName(g.Code)
}

// WithDefaultSettings returns a Game pre-filled with the skeld-map defaults
// used as a template for outbound GetGameListV2 requests (spec.md §4.7
// "used when building GetGameListV2 requests from a default template").
func WithDefaultSettings() *Game {
	return &Game{
		Version:        4,
		MaxPlayers:     10,
		MapID:          0,
		PlayerSpeed:    1.0,
		CrewLight:      1.0,
		ImpostorLight:  1.5,
		KillCooldown:   45.0,
		CommonTasks:    1,
		LongTasks:      1,
		ShortTasks:     2,
		Impostors:      2,
		KillDistance:   1,
		DiscussionTime: 15,
		VotingTime:     120,
		DefaultFlag:    true,
		EmergencyMeetings: 1,
		EmergencyCooldown: 15,
		ConfirmImpostor:   true,
		VisualTasks:       true,
		AnonymousVotes:    false,
		TaskBarUpdates:    0,
	}
}

var errShortGameData = errors.New("model: game settings blob too short")

// DeserializeGame decodes a version-gated Game settings blob, returning the
// game and the number of bytes consumed.
func DeserializeGame(data []byte) (*Game, int, error) {
	if len(data) < 1 {
		return nil, 0, errShortGameData
	}
	g := &Game{Version: data[0]}
	offset := 1

	need := func(n int) error {
		if offset+n > len(data) {
			return errShortGameData
		}
		return nil
	}

	if err := need(1); err != nil {
		return nil, 0, err
	}
	g.MaxPlayers = data[offset]
	offset++

	if err := need(4); err != nil {
		return nil, 0, err
	}
	v, err := wire.Uint32LE(data[offset : offset+4])
	if err != nil {
		return nil, 0, err
	}
	g.Keywords = v
	offset += 4

	if err := need(1); err != nil {
		return nil, 0, err
	}
	g.MapID = data[offset]
	offset++

	for _, dst := range []*float32{&g.PlayerSpeed, &g.CrewLight, &g.ImpostorLight, &g.KillCooldown} {
		if err := need(4); err != nil {
			return nil, 0, err
		}
		f, err := wire.Float32LE(data[offset : offset+4])
		if err != nil {
			return nil, 0, err
		}
		*dst = f
		offset += 4
	}

	if err := need(3); err != nil {
		return nil, 0, err
	}
	g.CommonTasks, g.LongTasks, g.ShortTasks = data[offset], data[offset+1], data[offset+2]
	offset += 3

	if err := need(4); err != nil {
		return nil, 0, err
	}
	em, err := wire.Uint32LE(data[offset : offset+4])
	if err != nil {
		return nil, 0, err
	}
	g.EmergencyMeetings = em
	offset += 4

	if err := need(2); err != nil {
		return nil, 0, err
	}
	g.Impostors, g.KillDistance = data[offset], data[offset+1]
	offset += 2

	if err := need(8); err != nil {
		return nil, 0, err
	}
	dt, _ := wire.Uint32LE(data[offset : offset+4])
	vt, _ := wire.Uint32LE(data[offset+4 : offset+8])
	g.DiscussionTime = int32(dt)
	g.VotingTime = int32(vt)
	offset += 8

	if err := need(1); err != nil {
		return nil, 0, err
	}
	g.DefaultFlag = data[offset] != 0
	offset++

	if g.Version >= 2 {
		if err := need(1); err != nil {
			return nil, 0, err
		}
		g.EmergencyCooldown = data[offset]
		offset++
	}

	if g.Version >= 3 {
		if err := need(2); err != nil {
			return nil, 0, err
		}
		g.ConfirmImpostor = data[offset] != 0
		g.VisualTasks = data[offset+1] != 0
		offset += 2
	}

	if g.Version >= 4 {
		if err := need(2); err != nil {
			return nil, 0, err
		}
		g.AnonymousVotes = data[offset] != 0
		g.TaskBarUpdates = data[offset+1]
		offset += 2
	}

	return g, offset, nil
}

// Serialize is the symmetric inverse of DeserializeGame, preserving the
// exact field order/widths so that DeserializeGame(Serialize(g)) == g.
func (g *Game) Serialize() []byte {
	buf := make([]byte, 0, 44)
	buf = append(buf, g.Version, g.MaxPlayers)
	var u32 [4]byte
	wire.PutUint32LE(u32[:], g.Keywords)
	buf = append(buf, u32[:]...)
	buf = append(buf, g.MapID)

	var f32 [4]byte
	for _, v := range []float32{g.PlayerSpeed, g.CrewLight, g.ImpostorLight, g.KillCooldown} {
		wire.PutFloat32LE(f32[:], v)
		buf = append(buf, f32[:]...)
	}

	buf = append(buf, g.CommonTasks, g.LongTasks, g.ShortTasks)

	wire.PutUint32LE(u32[:], g.EmergencyMeetings)
	buf = append(buf, u32[:]...)

	buf = append(buf, g.Impostors, g.KillDistance)

	wire.PutUint32LE(u32[:], uint32(g.DiscussionTime))
	buf = append(buf, u32[:]...)
	wire.PutUint32LE(u32[:], uint32(g.VotingTime))
	buf = append(buf, u32[:]...)

	buf = append(buf, boolByte(g.DefaultFlag))

	if g.Version >= 2 {
		buf = append(buf, g.EmergencyCooldown)
	}
	if g.Version >= 3 {
		buf = append(buf, boolByte(g.ConfirmImpostor), boolByte(g.VisualTasks))
	}
	if g.Version >= 4 {
		buf = append(buf, boolByte(g.AnonymousVotes), g.TaskBarUpdates)
	}
	return buf
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
