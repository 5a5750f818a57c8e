package protocol

import (
	"samp-server-go/pkg/wire"
)

// rpcDecodeFn decodes an RPC leaf's payload (everything after the rpc tag
// byte) into a Frame.
type rpcDecodeFn func(tag byte, payload []byte) (*Frame, error)

// SyncSettingsPayload carries the raw serialized Game settings; decoding
// into a concrete Game is done by source/model (DeserializeGame) to avoid
// this package depending on the lobby model.
type SyncSettingsPayload struct {
	GameData []byte
}

func decodeSyncSettings(_ byte, payload []byte) (*Frame, error) {
	size, n, err := wire.ReadVarInt7(payload)
	if err != nil {
		return nil, err
	}
	end := n + int(size)
	if end > len(payload) {
		return nil, wire.ErrShortBuffer
	}
	return &Frame{Tag: byte(RPCSyncSettings), Payload: SyncSettingsPayload{GameData: payload[n:end]}}, nil
}

// EncodeSyncSettings wraps a serialized Game blob as a SyncSettings RPC
// leaf payload.
func EncodeSyncSettings(gameData []byte) []byte {
	buf := wire.PutVarInt7(nil, uint32(len(gameData)))
	return append(buf, gameData...)
}

// SetInfectedPayload: the host's player-id followed by the impostors'
// player-ids.
type SetInfectedPayload struct {
	Host        byte
	ImpostorIDs []byte
}

func decodeSetInfected(_ byte, payload []byte) (*Frame, error) {
	if len(payload) < 1 {
		return nil, wire.ErrShortBuffer
	}
	return &Frame{Tag: byte(RPCSetInfected), Payload: SetInfectedPayload{
		Host: payload[0], ImpostorIDs: append([]byte(nil), payload[1:]...),
	}}, nil
}

// CheckNamePayload / SetNamePayload carry a player display name.
type CheckNamePayload struct{ Name string }
type SetNamePayload struct{ Name string }

func decodeSetName(_ byte, payload []byte) (*Frame, error) {
	name, _, err := wire.ReadString(payload)
	if err != nil {
		return nil, err
	}
	return &Frame{Tag: byte(RPCSetName), Payload: SetNamePayload{Name: name}}, nil
}

// EncodeCheckName builds a client->host CheckName RPC leaf payload.
func EncodeCheckName(name string) []byte {
	return wire.PutString(nil, name)
}

// EncodeCheckColor builds a client->host CheckColor RPC leaf payload.
func EncodeCheckColor(color byte) []byte {
	return []byte{color}
}

// SetColorPayload / SetHatPayload / SetSkinPayload / SetPetPayload carry a
// single cosmetic byte.
type SetColorPayload struct{ Color byte }
type SetHatPayload struct{ Hat byte }
type SetSkinPayload struct{ Skin byte }
type SetPetPayload struct{ Pet byte }

func decodeSetColor(_ byte, payload []byte) (*Frame, error) {
	if len(payload) < 1 {
		return nil, wire.ErrShortBuffer
	}
	return &Frame{Tag: byte(RPCSetColor), Payload: SetColorPayload{Color: payload[0]}}, nil
}

func decodeSetHat(_ byte, payload []byte) (*Frame, error) {
	if len(payload) < 1 {
		return nil, wire.ErrShortBuffer
	}
	return &Frame{Tag: byte(RPCSetHat), Payload: SetHatPayload{Hat: payload[0]}}, nil
}

func decodeSetSkin(_ byte, payload []byte) (*Frame, error) {
	if len(payload) < 1 {
		return nil, wire.ErrShortBuffer
	}
	return &Frame{Tag: byte(RPCSetSkin), Payload: SetSkinPayload{Skin: payload[0]}}, nil
}

// EncodeSetPet builds a client-outbound SetPet RPC leaf payload.
func EncodeSetPet(pet byte) []byte { return []byte{pet} }

// EncodeSetColor / EncodeSetHat / EncodeSetSkin build outbound cosmetic RPC
// leaf payloads. The session sends SetHat and SetSkin (with SetPet) after its
// own PlayerControl spawn; colour is requested through CheckColor, so nothing
// in the session calls EncodeSetColor.
func EncodeSetColor(color byte) []byte { return []byte{color} }
func EncodeSetHat(hat byte) []byte     { return []byte{hat} }
func EncodeSetSkin(skin byte) []byte   { return []byte{skin} }

// ReportDeadBodyPayload: the reported player-id, or 0xFF meaning the
// emergency button was pressed rather than a body reported.
type ReportDeadBodyPayload struct {
	PlayerID        byte
	IsEmergencyButton bool
}

func decodeReportDeadBody(_ byte, payload []byte) (*Frame, error) {
	if len(payload) < 1 {
		return nil, wire.ErrShortBuffer
	}
	return &Frame{Tag: byte(RPCReportDeadBody), Payload: ReportDeadBodyPayload{
		PlayerID: payload[0], IsEmergencyButton: payload[0] == 0xFF,
	}}, nil
}

// MurderPlayerPayload: the victim's net-id.
type MurderPlayerPayload struct {
	TargetNetID uint32
}

func decodeMurderPlayer(_ byte, payload []byte) (*Frame, error) {
	target, _, err := wire.ReadVarInt7(payload)
	if err != nil {
		return nil, err
	}
	return &Frame{Tag: byte(RPCMurderPlayer), Payload: MurderPlayerPayload{TargetNetID: target}}, nil
}

// SendChatPayload: a chat message body.
type SendChatPayload struct {
	Message string
}

func decodeSendChat(_ byte, payload []byte) (*Frame, error) {
	msg, _, err := wire.ReadString(payload)
	if err != nil {
		return nil, err
	}
	return &Frame{Tag: byte(RPCSendChat), Payload: SendChatPayload{Message: msg}}, nil
}

// EncodeSendChat builds an outbound SendChat RPC leaf payload.
func EncodeSendChat(message string) []byte {
	return wire.PutString(nil, message)
}

// StartMeetingPayload: the player-id who called the meeting.
type StartMeetingPayload struct {
	PlayerID uint32
}

func decodeStartMeeting(_ byte, payload []byte) (*Frame, error) {
	id, _, err := wire.ReadVarInt7(payload)
	if err != nil {
		return nil, err
	}
	return &Frame{Tag: byte(RPCStartMeeting), Payload: StartMeetingPayload{PlayerID: id}}, nil
}

// SetScannerPayload: whether the scanner is on, plus a frame count.
type SetScannerPayload struct {
	On    bool
	Count byte
}

func decodeSetScanner(_ byte, payload []byte) (*Frame, error) {
	if len(payload) < 2 {
		return nil, wire.ErrShortBuffer
	}
	return &Frame{Tag: byte(RPCSetScanner), Payload: SetScannerPayload{On: payload[0] != 0, Count: payload[1]}}, nil
}

// ChatNoteType enumerates the SendChatNote sub-kind.
type ChatNoteType byte

const ChatNoteDidVote ChatNoteType = 1

// SendChatNotePayload: the player-id and note kind.
type SendChatNotePayload struct {
	PlayerID byte
	NoteType ChatNoteType
}

func decodeSendChatNote(_ byte, payload []byte) (*Frame, error) {
	if len(payload) < 2 {
		return nil, wire.ErrShortBuffer
	}
	return &Frame{Tag: byte(RPCSendChatNote), Payload: SendChatNotePayload{
		PlayerID: payload[0], NoteType: ChatNoteType(payload[1]),
	}}, nil
}

// SetStartCounterPayload: the sequence counter and seconds remaining. A
// secondsLeft of 0xFF means "no countdown shown" (spec.md §4.6).
type SetStartCounterPayload struct {
	Counter     uint32
	SecondsLeft byte
}

func decodeSetStartCounter(_ byte, payload []byte) (*Frame, error) {
	counter, n, err := wire.ReadVarInt7(payload)
	if err != nil {
		return nil, err
	}
	if n >= len(payload) {
		return nil, wire.ErrShortBuffer
	}
	return &Frame{Tag: byte(RPCSetStartCounter), Payload: SetStartCounterPayload{
		Counter: counter, SecondsLeft: payload[n],
	}}, nil
}

// EnterVentPayload / ExitVentPayload: the player-id using the vent.
type EnterVentPayload struct{ PlayerID uint32 }
type ExitVentPayload struct{ PlayerID uint32 }

func decodeEnterVent(_ byte, payload []byte) (*Frame, error) {
	id, _, err := wire.ReadVarInt7(payload)
	if err != nil {
		return nil, err
	}
	return &Frame{Tag: byte(RPCEnterVent), Payload: EnterVentPayload{PlayerID: id}}, nil
}

func decodeExitVent(_ byte, payload []byte) (*Frame, error) {
	id, _, err := wire.ReadVarInt7(payload)
	if err != nil {
		return nil, err
	}
	return &Frame{Tag: byte(RPCExitVent), Payload: ExitVentPayload{PlayerID: id}}, nil
}

// SnapToPayload: a teleport position plus a one-byte sequence id (distinct
// from Movement's two-byte sequence id).
type SnapToPayload struct {
	X, Y       float32
	SequenceID byte
}

func decodeSnapTo(_ byte, payload []byte) (*Frame, error) {
	if len(payload) < 5 {
		return nil, wire.ErrShortBuffer
	}
	x, y, err := wire.DecodeVector2(payload[0:4])
	if err != nil {
		return nil, err
	}
	return &Frame{Tag: byte(RPCSnapTo), Payload: SnapToPayload{X: x, Y: y, SequenceID: payload[4]}}, nil
}

// EncodeSnapTo builds an outbound SnapTo RPC leaf payload.
func EncodeSnapTo(x, y float32, seq byte) []byte {
	buf := wire.EncodeVector2(nil, x, y)
	return append(buf, seq)
}

func decodeClose(_ byte, _ []byte) (*Frame, error) {
	return &Frame{Tag: byte(RPCClose)}, nil
}

// VotingCompletePayload: opaque per-player vote state blob, the calling
// player-id, and whether the vote tied (player_id 0xFF means a tie with no
// single ejectee).
type VotingCompletePayload struct {
	States   []byte
	PlayerID byte
	Tie      bool
}

func decodeVotingComplete(_ byte, payload []byte) (*Frame, error) {
	size, n, err := wire.ReadVarInt7(payload)
	if err != nil {
		return nil, err
	}
	end := n + int(size)
	if end+2 > len(payload) {
		return nil, wire.ErrShortBuffer
	}
	return &Frame{Tag: byte(RPCVotingComplete), Payload: VotingCompletePayload{
		States:   payload[n:end],
		PlayerID: payload[end],
		Tie:      payload[end] == 0xFF,
	}}, nil
}

// SetTasksPayload: the player-id and its assigned task ids.
type SetTasksPayload struct {
	PlayerID byte
	TaskIDs  []byte
}

func decodeSetTasks(_ byte, payload []byte) (*Frame, error) {
	if len(payload) < 1 {
		return nil, wire.ErrShortBuffer
	}
	playerID := payload[0]
	size, n, err := wire.ReadVarInt7(payload[1:])
	if err != nil {
		return nil, err
	}
	start := 1 + n
	end := start + int(size)
	if end > len(payload) {
		return nil, wire.ErrShortBuffer
	}
	return &Frame{Tag: byte(RPCSetTasks), Payload: SetTasksPayload{
		PlayerID: playerID, TaskIDs: append([]byte(nil), payload[start:end]...),
	}}, nil
}

// UpdateGameDataPayload carries the raw sequence of length-prefixed Player
// blocks; only meaningful per spec.md Design Notes (ii) after a spectator
// reconnect. Decoding into model.Player is done by source/session.
type UpdateGameDataPayload struct {
	PlayersData []byte
}

func decodeUpdateGameData(_ byte, payload []byte) (*Frame, error) {
	return &Frame{Tag: byte(RPCUpdateGameData), Payload: UpdateGameDataPayload{PlayersData: payload}}, nil
}

// rawRPCLeaf is used for RPC tags the spec doesn't give a detailed schema
// for; the bytes are preserved unparsed rather than dropped.
func rawRPCLeaf(tag byte, payload []byte) (*Frame, error) {
	return &Frame{Tag: tag, Raw: payload}, nil
}

var rpcTable = map[byte]rpcDecodeFn{
	byte(RPCPlayAnimation):    rawRPCLeaf,
	byte(RPCCompleteTask):     rawRPCLeaf,
	byte(RPCSyncSettings):     decodeSyncSettings,
	byte(RPCSetInfected):      decodeSetInfected,
	byte(RPCExiled):           rawRPCLeaf,
	byte(RPCSetName):          decodeSetName,
	byte(RPCSetColor):         decodeSetColor,
	byte(RPCSetHat):           decodeSetHat,
	byte(RPCSetSkin):          decodeSetSkin,
	byte(RPCReportDeadBody):   decodeReportDeadBody,
	byte(RPCMurderPlayer):     decodeMurderPlayer,
	byte(RPCSendChat):         decodeSendChat,
	byte(RPCStartMeeting):     decodeStartMeeting,
	byte(RPCSetScanner):       decodeSetScanner,
	byte(RPCSendChatNote):     decodeSendChatNote,
	byte(RPCSetStartCounter):  decodeSetStartCounter,
	byte(RPCEnterVent):        decodeEnterVent,
	byte(RPCExitVent):         decodeExitVent,
	byte(RPCSnapTo):           decodeSnapTo,
	byte(RPCClose):            decodeClose,
	byte(RPCVotingComplete):   decodeVotingComplete,
	byte(RPCCastVote):         rawRPCLeaf,
	byte(RPCClearVote):        rawRPCLeaf,
	byte(RPCAddVote):          rawRPCLeaf,
	byte(RPCCloseDoorsOfType): rawRPCLeaf,
	byte(RPCRepairSystem):     rawRPCLeaf,
	byte(RPCSetTasks):         decodeSetTasks,
	byte(RPCUpdateGameData):   decodeUpdateGameData,
}
