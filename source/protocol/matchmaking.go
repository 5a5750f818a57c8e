package protocol

import (
	"samp-server-go/pkg/logger"
	"samp-server-go/pkg/wire"
)

// JoinGameRequest is the client->server body of a JoinGame frame: a lobby
// code and a fixed map-id byte.
type JoinGameRequest struct {
	LobbyCode uint32
	MapID     byte
}

// EncodeJoinGameRequest builds the JoinGame request payload (game code u32
// plus the fixed 0x07 map-id byte the client always sends).
func EncodeJoinGameRequest(code string) ([]byte, error) {
	v, err := wire.GameNameToInt(code)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 4, 5)
	wire.PutUint32LE(buf, v)
	return append(buf, 0x07), nil
}

// EncodeJoinGameChild wraps a JoinGame request as a sized, tagged
// matchmaking-layer child ready to embed in a Reliable frame.
func EncodeJoinGameChild(code string) ([]byte, error) {
	payload, err := EncodeJoinGameRequest(code)
	if err != nil {
		return nil, err
	}
	return encodeChild(nil, byte(TagJoinGame), payload), nil
}

// EncodeGetGameListV2Child wraps a GetGameListV2 request as a sized, tagged
// matchmaking-layer child.
func EncodeGetGameListV2Child(req GetGameListV2Request) []byte {
	return encodeChild(nil, byte(TagGetGameListV2), EncodeGetGameListV2Request(req))
}

// JoinGameSuccess is the server->client success body of a JoinGame response.
type JoinGameSuccess struct {
	GameID   uint32
	PlayerID uint32
	HostID   uint32
}

// ParseJoinGameResponse interprets a JoinGame response's raw bytes. The wire
// format does not mark success or failure, so this function tells them apart
// by the known disconnect reasons: if the first four bytes decode as a known
// disconnect reason, this is a failure; otherwise it's the {game_id,
// player_id, host_id} success triple.
func ParseJoinGameResponse(raw []byte) (*JoinGameSuccess, *DisconnectReason, string, error) {
	if len(raw) < 4 {
		return nil, nil, "", wire.ErrShortBuffer
	}
	first, err := wire.Uint32LE(raw[0:4])
	if err != nil {
		return nil, nil, "", err
	}
	if reason := DisconnectReason(first); isKnownDisconnectReason(reason) {
		custom := ""
		if reason == ReasonCustom && len(raw) > 4 {
			custom, _, _ = wire.ReadString(raw[4:])
		}
		return nil, &reason, custom, nil
	}
	if len(raw) < 12 {
		return nil, nil, "", wire.ErrShortBuffer
	}
	gameID, _ := wire.Uint32LE(raw[0:4])
	playerID, _ := wire.Uint32LE(raw[4:8])
	hostID, _ := wire.Uint32LE(raw[8:12])
	return &JoinGameSuccess{GameID: gameID, PlayerID: playerID, HostID: hostID}, nil, "", nil
}

func isKnownDisconnectReason(r DisconnectReason) bool {
	_, ok := disconnectReasonNames[r]
	return ok && r < 1000
}

// JoinedGamePayload: game_id, client_id, host_id, player_amount (VarInt7),
// player_ids[player_amount] (VarInt7 each).
type JoinedGamePayload struct {
	GameID     uint32
	ClientID   uint32
	HostID     uint32
	PlayerIDs  []uint32
}

func decodeJoinedGame(_ byte, payload []byte) (*Frame, error) {
	if len(payload) < 12 {
		return nil, wire.ErrShortBuffer
	}
	gameID, _ := wire.Uint32LE(payload[0:4])
	clientID, _ := wire.Uint32LE(payload[4:8])
	hostID, _ := wire.Uint32LE(payload[8:12])
	count, n, err := wire.ReadVarInt7(payload[12:])
	if err != nil {
		return nil, err
	}
	offset := 12 + n
	ids := make([]uint32, 0, count)
	for i := uint32(0); i < count; i++ {
		id, consumed, err := wire.ReadVarInt7(payload[offset:])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
		offset += consumed
	}
	return &Frame{Tag: byte(TagJoinedGame), Payload: JoinedGamePayload{
		GameID: gameID, ClientID: clientID, HostID: hostID, PlayerIDs: ids,
	}}, nil
}

// StartGamePayload / EndGamePayload carry just the game id.
type StartGamePayload struct{ GameID uint32 }
type EndGamePayload struct {
	GameID uint32
	Reason byte
}

func decodeStartGame(_ byte, payload []byte) (*Frame, error) {
	id, err := wire.Uint32LE(payload)
	if err != nil {
		return nil, err
	}
	return &Frame{Tag: byte(TagStartGame), Payload: StartGamePayload{GameID: id}}, nil
}

func decodeEndGame(_ byte, payload []byte) (*Frame, error) {
	if len(payload) < 5 {
		return nil, wire.ErrShortBuffer
	}
	id, _ := wire.Uint32LE(payload[0:4])
	return &Frame{Tag: byte(TagEndGame), Payload: EndGamePayload{GameID: id, Reason: payload[4]}}, nil
}

// AlterGamePayload: game_code u32 + public bool.
type AlterGamePayload struct {
	GameCode uint32
	Public   bool
}

func decodeAlterGame(_ byte, payload []byte) (*Frame, error) {
	if len(payload) < 5 {
		return nil, wire.ErrShortBuffer
	}
	code, _ := wire.Uint32LE(payload[0:4])
	return &Frame{Tag: byte(TagAlterGame), Payload: AlterGamePayload{GameCode: code, Public: payload[4] != 0}}, nil
}

// RemovePlayerPayload: game_id, player_id, new_host_id (u32 each) + reason.
type RemovePlayerPayload struct {
	GameID     uint32
	PlayerID   uint32
	NewHostID  uint32
	Reason     byte
}

func decodeRemovePlayer(_ byte, payload []byte) (*Frame, error) {
	if len(payload) < 13 {
		return nil, wire.ErrShortBuffer
	}
	gameID, _ := wire.Uint32LE(payload[0:4])
	playerID, _ := wire.Uint32LE(payload[4:8])
	newHost, _ := wire.Uint32LE(payload[8:12])
	return &Frame{Tag: byte(TagRemovePlayer), Payload: RemovePlayerPayload{
		GameID: gameID, PlayerID: playerID, NewHostID: newHost, Reason: payload[12],
	}}, nil
}

// RedirectPayload: host (u32, reversed-octet little-endian) + port (u16 LE).
type RedirectPayload struct {
	Host uint32
	Port uint16
}

func decodeRedirect(_ byte, payload []byte) (*Frame, error) {
	if len(payload) < 6 {
		return nil, wire.ErrShortBuffer
	}
	host, _ := wire.Uint32LE(payload[0:4])
	port, _ := wire.Uint16LE(payload[4:6])
	return &Frame{Tag: byte(TagRedirect), Payload: RedirectPayload{Host: host, Port: port}}, nil
}

func decodeReselectServer(_ byte, payload []byte) (*Frame, error) {
	return &Frame{Tag: byte(TagReselectServer), Payload: nil}, nil
}

// GameDataPayload / GameDataToPayload wrap nested GameData-tag frames.
type GameDataPayload struct {
	GameID uint32
}

type GameDataToPayload struct {
	GameID uint32
	Target uint32
}

func decodeGameData(_ byte, payload []byte) (*Frame, error) {
	if len(payload) < 4 {
		return nil, wire.ErrShortBuffer
	}
	gameID, _ := wire.Uint32LE(payload[0:4])
	children, err := decodeChildren(payload[4:], gameDataTable, logUnknownGameData)
	if err != nil {
		return nil, err
	}
	return &Frame{Tag: byte(TagGameData), Payload: GameDataPayload{GameID: gameID}, Children: children}, nil
}

func decodeGameDataTo(_ byte, payload []byte) (*Frame, error) {
	if len(payload) < 4 {
		return nil, wire.ErrShortBuffer
	}
	gameID, _ := wire.Uint32LE(payload[0:4])
	target, n, err := wire.ReadVarInt7(payload[4:])
	if err != nil {
		return nil, err
	}
	children, err := decodeChildren(payload[4+n:], gameDataTable, logUnknownGameData)
	if err != nil {
		return nil, err
	}
	return &Frame{Tag: byte(TagGameDataTo), Payload: GameDataToPayload{GameID: gameID, Target: target}, Children: children}, nil
}

// EncodeGameData builds a GameData child (tag TagGameData) wrapping already
// encoded game-data-layer children.
func EncodeGameData(gameID uint32, children []byte) []byte {
	buf := make([]byte, 4, 4+len(children))
	wire.PutUint32LE(buf, gameID)
	buf = append(buf, children...)
	return encodeChild(nil, byte(TagGameData), buf)
}

// EncodeGameDataTo builds a GameDataTo child targeting a specific client id.
func EncodeGameDataTo(gameID, target uint32, children []byte) []byte {
	buf := make([]byte, 4, 9+len(children))
	wire.PutUint32LE(buf, gameID)
	buf = wire.PutVarInt7(buf, target)
	buf = append(buf, children...)
	return encodeChild(nil, byte(TagGameDataTo), buf)
}

// GetGameListV2Request holds the search parameters for a find_games call.
// mapMask uses the MapMask* bitmask constants (spec.md Design Notes iii).
type GetGameListV2Request struct {
	MapMask   byte
	Impostors byte
	Language  uint32
}

// EncodeGetGameListV2Request builds the GetGameListV2 request payload.
func EncodeGetGameListV2Request(req GetGameListV2Request) []byte {
	buf := make([]byte, 0, 8)
	var langBuf [4]byte
	wire.PutUint32LE(langBuf[:], req.Language)
	buf = append(buf, langBuf[:]...)
	buf = append(buf, req.MapMask, req.Impostors)
	return buf
}

// GameListing is one entry of a GetGameListV2 response.
type GameListing struct {
	Host        uint32
	Port        uint16
	Code        uint32
	Name        string
	PlayerCount byte
	Age         uint32
	MapID       byte
	Impostors   byte
	MaxPlayers  byte
}

// GetGameListV2Response is the full decoded response: the per-map counts
// block followed by the listing of individual games.
type GetGameListV2Response struct {
	SkeldCount  uint32
	MiraHQCount uint32
	PolusCount  uint32
	Games       []GameListing
}

// DecodeGetGameListV2Response parses a GetGameListV2 response body. The
// response is carried as two nested, size-prefixed messages: a fixed counts
// block and a games list, walked by hand here rather than through the generic
// children walker or GameData's tag table.
func DecodeGetGameListV2Response(payload []byte) (*GetGameListV2Response, error) {
	offset := 0
	resp := &GetGameListV2Response{}

	if len(payload) < 3 {
		return nil, wire.ErrShortBuffer
	}
	countsSize, err := wire.Uint16LE(payload[offset : offset+2])
	if err != nil {
		return nil, err
	}
	offset += 2 + 1 // size + tag byte, tag is unused for this fixed pair of blocks
	if offset+int(countsSize) > len(payload) {
		return nil, wire.ErrShortBuffer
	}
	countsBody := payload[offset : offset+int(countsSize)]
	offset += int(countsSize)
	if len(countsBody) < 12 {
		return nil, wire.ErrShortBuffer
	}
	resp.SkeldCount, _ = wire.Uint32LE(countsBody[0:4])
	resp.MiraHQCount, _ = wire.Uint32LE(countsBody[4:8])
	resp.PolusCount, _ = wire.Uint32LE(countsBody[8:12])

	if offset+3 > len(payload) {
		return resp, nil
	}
	gamesSize, err := wire.Uint16LE(payload[offset : offset+2])
	if err != nil {
		return nil, err
	}
	offset += 3
	if offset+int(gamesSize) > len(payload) {
		return nil, wire.ErrShortBuffer
	}
	gamesBody := payload[offset : offset+int(gamesSize)]

	pos := 0
	for pos < len(gamesBody) {
		g, consumed, err := decodeGameListing(gamesBody[pos:])
		if err != nil {
			return nil, err
		}
		resp.Games = append(resp.Games, g)
		pos += consumed
	}
	return resp, nil
}

func decodeGameListing(data []byte) (GameListing, int, error) {
	if len(data) < 11 {
		return GameListing{}, 0, wire.ErrShortBuffer
	}
	host, _ := wire.Uint32LE(data[0:4])
	port, _ := wire.Uint16LE(data[4:6])
	code, _ := wire.Uint32LE(data[6:10])
	name, n, err := wire.ReadString(data[10:])
	if err != nil {
		return GameListing{}, 0, err
	}
	offset := 10 + n
	if offset+3 > len(data) {
		return GameListing{}, 0, wire.ErrShortBuffer
	}
	playerCount := data[offset]
	age, ageLen, err := wire.ReadVarInt7(data[offset+1:])
	if err != nil {
		return GameListing{}, 0, err
	}
	offset = offset + 1 + ageLen
	if offset+3 > len(data) {
		return GameListing{}, 0, wire.ErrShortBuffer
	}
	mapID, impostors, maxPlayers := data[offset], data[offset+1], data[offset+2]
	offset += 3
	return GameListing{
		Host: host, Port: port, Code: code, Name: name,
		PlayerCount: playerCount, Age: age,
		MapID: mapID, Impostors: impostors, MaxPlayers: maxPlayers,
	}, offset, nil
}

func logUnknownMatchmaking(tag byte) {
	logger.Warn("protocol: unhandled matchmaking tag %d", tag)
}

func logUnknownGameData(tag byte) {
	logger.Warn("protocol: unhandled game-data tag %d", tag)
}

// matchmakingTable is the tag-indexed decode table for frames nested
// directly inside a Reliable/Unreliable outer frame (spec.md Design Notes
// "tag-indexed match per layer").
var matchmakingTable = map[byte]childDecodeFn{
	byte(TagJoinedGame): decodeJoinedGame,
	byte(TagStartGame):  decodeStartGame,
	byte(TagEndGame):    decodeEndGame,
	byte(TagAlterGame):  decodeAlterGame,
	byte(TagRemovePlayer): decodeRemovePlayer,
	byte(TagRedirect):    decodeRedirect,
	byte(TagReselectServer): decodeReselectServer,
	byte(TagGameData):    decodeGameData,
	byte(TagGameDataTo):  decodeGameDataTo,
	byte(TagJoinGame): func(tag byte, payload []byte) (*Frame, error) {
		// Response path only; success/failure is disambiguated by the
		// dispatcher (see ParseJoinGameResponse).
		return &Frame{Tag: tag, Raw: payload}, nil
	},
	byte(TagGetGameListV2): func(tag byte, payload []byte) (*Frame, error) {
		return &Frame{Tag: tag, Raw: payload}, nil
	},
}
