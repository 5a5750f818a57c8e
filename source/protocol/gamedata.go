package protocol

import (
	"samp-server-go/pkg/logger"
	"samp-server-go/pkg/wire"
)

// DataFlagPayload carries a net-id whose role (and therefore sub-payload
// shape) is resolved lazily by the dispatcher from a prior PlayerControl
// spawn (spec.md §4.2 "data-flag resolution"). SubPayload is left as raw
// bytes here; ResolveDataFlag below parses it once the caller supplies the
// role.
type DataFlagPayload struct {
	NetID      uint32
	SubPayload []byte
}

func decodeDataFlag(_ byte, payload []byte) (*Frame, error) {
	netID, n, err := wire.ReadVarInt7(payload)
	if err != nil {
		return nil, err
	}
	return &Frame{
		Tag:     byte(GameDataFlag),
		Payload: DataFlagPayload{NetID: netID, SubPayload: payload[n:]},
		Raw:     payload,
	}, nil
}

// MovementPayload is the only currently-meaningful DataFlag sub-payload
// (role Network): sequence_id(u16 LE) | position(Vec2) | velocity(Vec2).
type MovementPayload struct {
	SequenceID uint16
	PosX, PosY float32
	VelX, VelY float32
}

// ResolveDataFlag parses a DataFlag's sub-payload now that the dispatcher
// has looked up the net-id's role. Today only Network maps to a known
// payload (Movement); other roles are returned unparsed.
func ResolveDataFlag(role DataFlagRole, sub []byte) (any, error) {
	switch role {
	case RoleNetwork:
		if len(sub) < 6 {
			return nil, wire.ErrShortBuffer
		}
		seq, err := wire.Uint16LE(sub[0:2])
		if err != nil {
			return nil, err
		}
		x, y, err := wire.DecodeVector2(sub[2:6])
		if err != nil {
			return nil, err
		}
		var vx, vy float32
		if len(sub) >= 10 {
			vx, vy, _ = wire.DecodeVector2(sub[6:10])
		}
		return MovementPayload{SequenceID: seq, PosX: x, PosY: y, VelX: vx, VelY: vy}, nil
	default:
		return sub, nil
	}
}

// EncodeDataFlag wraps an already-encoded sub-payload (e.g. EncodeMovement's
// result) with its owning net-id, producing a DataFlag game-data child.
func EncodeDataFlag(netID uint32, sub []byte) []byte {
	buf := wire.PutVarInt7(nil, netID)
	buf = append(buf, sub...)
	return encodeChild(nil, byte(GameDataFlag), buf)
}

// EncodeMovement builds a Network DataFlag sub-payload.
func EncodeMovement(seq uint16, x, y, vx, vy float32) []byte {
	buf := make([]byte, 2, 10)
	wire.PutUint16LE(buf, seq)
	buf = wire.EncodeVector2(buf, x, y)
	buf = wire.EncodeVector2(buf, vx, vy)
	return buf
}

// RpcFlagPayload carries the RPC's owning net-id; the nested RPC leaf is
// decoded into Frame.Children[0].
type RpcFlagPayload struct {
	NetID uint32
}

func decodeRpcFlag(_ byte, payload []byte) (*Frame, error) {
	netID, n, err := wire.ReadVarInt7(payload)
	if err != nil {
		return nil, err
	}
	rest := payload[n:]
	if len(rest) < 1 {
		return nil, wire.ErrShortBuffer
	}
	rpcTag := rest[0]
	decode, ok := rpcTable[rpcTag]
	if !ok {
		logger.Warn("protocol: unhandled rpc tag %d", rpcTag)
		return &Frame{Tag: byte(GameDataRpcFlag), Payload: RpcFlagPayload{NetID: netID}}, nil
	}
	child, err := decode(rest[0], rest[1:])
	if err != nil {
		return nil, err
	}
	return &Frame{Tag: byte(GameDataRpcFlag), Payload: RpcFlagPayload{NetID: netID}, Children: []*Frame{child}}, nil
}

// EncodeRpc wraps an already-encoded RPC leaf with its owning net-id and
// returns a complete size-prefixed, tagged RpcFlag game-data child, ready to
// be placed inside a GameData/GameDataTo.
func EncodeRpc(netID uint32, rpcTag RPCTag, leafPayload []byte) []byte {
	buf := wire.PutVarInt7(nil, netID)
	buf = append(buf, byte(rpcTag))
	buf = append(buf, leafPayload...)
	return encodeChild(nil, byte(GameDataRpcFlag), buf)
}

// ComponentBlock is one networked-object component within a Spawn: its
// server-assigned net-id plus its raw, not-yet-interpreted data.
type ComponentBlock struct {
	NetID uint32
	Data  []byte
}

// SpawnFlagPayload: spawn_type, owner client id, flags, and per-component
// blocks (interpreted per spawn type in spawn.go).
type SpawnFlagPayload struct {
	SpawnType SpawnType
	Owner     uint32
	Flags     byte
	Blocks    []ComponentBlock
}

func decodeSpawnFlag(_ byte, payload []byte) (*Frame, error) {
	spawnType, n1, err := wire.ReadVarInt7(payload)
	if err != nil {
		return nil, err
	}
	offset := n1
	owner, n2, err := wire.ReadVarInt7(payload[offset:])
	if err != nil {
		return nil, err
	}
	offset += n2
	if offset >= len(payload) {
		return nil, wire.ErrShortBuffer
	}
	flags := payload[offset]
	offset++
	count, n3, err := wire.ReadVarInt7(payload[offset:])
	if err != nil {
		return nil, err
	}
	offset += n3
	blocks, err := readComponentBlocks(payload[offset:], int(count))
	if err != nil {
		return nil, err
	}
	return &Frame{Tag: byte(GameDataSpawnFlag), Payload: SpawnFlagPayload{
		SpawnType: SpawnType(spawnType), Owner: owner, Flags: flags, Blocks: blocks,
	}}, nil
}

// readComponentBlocks reads n consecutive component blocks, each framed as
// net_id(VarInt7) | u16 LE size | size bytes of data.
func readComponentBlocks(data []byte, n int) ([]ComponentBlock, error) {
	blocks := make([]ComponentBlock, 0, n)
	offset := 0
	for i := 0; i < n; i++ {
		netID, consumed, err := wire.ReadVarInt7(data[offset:])
		if err != nil {
			return nil, err
		}
		offset += consumed
		if offset+2 > len(data) {
			return nil, wire.ErrShortBuffer
		}
		size, err := wire.Uint16LE(data[offset : offset+2])
		if err != nil {
			return nil, err
		}
		offset += 2
		end := offset + int(size)
		if end > len(data) {
			return nil, wire.ErrShortBuffer
		}
		blocks = append(blocks, ComponentBlock{NetID: netID, Data: data[offset:end]})
		offset = end
	}
	return blocks, nil
}

// DespawnFlagPayload: net_id(VarInt7).
type DespawnFlagPayload struct {
	NetID uint32
}

func decodeDespawnFlag(_ byte, payload []byte) (*Frame, error) {
	netID, _, err := wire.ReadVarInt7(payload)
	if err != nil {
		return nil, err
	}
	return &Frame{Tag: byte(GameDataDespawnFlag), Payload: DespawnFlagPayload{NetID: netID}}, nil
}

// SceneChangePayload: client_id(VarInt7) | length-prefixed string.
type SceneChangePayload struct {
	ClientID uint32
	Scene    string
}

func decodeSceneChange(_ byte, payload []byte) (*Frame, error) {
	clientID, n, err := wire.ReadVarInt7(payload)
	if err != nil {
		return nil, err
	}
	scene, _, err := wire.ReadString(payload[n:])
	if err != nil {
		return nil, err
	}
	return &Frame{Tag: byte(GameDataSceneChange), Payload: SceneChangePayload{ClientID: clientID, Scene: scene}}, nil
}

// EncodeSceneChange builds a SceneChange gamedata child.
func EncodeSceneChange(clientID uint32) []byte {
	buf := wire.PutVarInt7(nil, clientID)
	buf = wire.PutString(buf, "OnlineGame")
	return encodeChild(nil, byte(GameDataSceneChange), buf)
}

// ReadyFlagPayload: client_id(VarInt7).
type ReadyFlagPayload struct {
	ClientID uint32
}

func decodeReadyFlag(_ byte, payload []byte) (*Frame, error) {
	clientID, _, err := wire.ReadVarInt7(payload)
	if err != nil {
		return nil, err
	}
	return &Frame{Tag: byte(GameDataReadyFlag), Payload: ReadyFlagPayload{ClientID: clientID}}, nil
}

// EncodeReady builds a Ready gamedata child, sent by the client in reply to
// StartGame.
func EncodeReady(clientID uint32) []byte {
	buf := wire.PutVarInt7(nil, clientID)
	return encodeChild(nil, byte(GameDataReadyFlag), buf)
}

func decodeChangeSettings(_ byte, payload []byte) (*Frame, error) {
	return &Frame{Tag: byte(GameDataChangeSettings), Raw: payload}, nil
}

// gameDataTable is the tag-indexed decode table for frames nested inside a
// GameData/GameDataTo message.
var gameDataTable = map[byte]childDecodeFn{
	byte(GameDataFlag):           decodeDataFlag,
	byte(GameDataRpcFlag):        decodeRpcFlag,
	byte(GameDataSpawnFlag):      decodeSpawnFlag,
	byte(GameDataDespawnFlag):    decodeDespawnFlag,
	byte(GameDataSceneChange):    decodeSceneChange,
	byte(GameDataReadyFlag):      decodeReadyFlag,
	byte(GameDataChangeSettings): decodeChangeSettings,
}
