// Package protocol implements the hierarchical, tag-dispatched, length-
// prefixed frame codec and the closed message taxonomy of the Hazel-style
// Among Us protocol: outer packet kinds, matchmaking tags, game-data tags,
// RPC tags, spawn types and data-flag roles.
package protocol

// OuterKind is the first byte of every UDP datagram. It is never length
// prefixed.
type OuterKind byte

const (
	KindUnreliable OuterKind = 0
	KindReliable   OuterKind = 1
	KindHello      OuterKind = 8
	KindDisconnect OuterKind = 9
	KindAck        OuterKind = 10
	KindFragment   OuterKind = 11
	KindPing       OuterKind = 12
)

// Reliable reports whether an outer kind carries a reliable id and
// participates in ack tracking. Ack is itself never re-acked; Ping is acked
// but never restarts the keep-alive timer.
func (k OuterKind) Reliable() bool {
	switch k {
	case KindReliable, KindHello, KindAck, KindPing:
		return true
	default:
		return false
	}
}

// MatchmakingTag is the tag byte of messages nested directly inside a
// Reliable or Unreliable outer frame.
type MatchmakingTag byte

const (
	TagHostGame       MatchmakingTag = 0
	TagJoinGame       MatchmakingTag = 1
	TagStartGame      MatchmakingTag = 2
	TagRemoveGame     MatchmakingTag = 3
	TagRemovePlayer   MatchmakingTag = 4
	TagGameData       MatchmakingTag = 5
	TagGameDataTo     MatchmakingTag = 6
	TagJoinedGame     MatchmakingTag = 7
	TagEndGame        MatchmakingTag = 8
	TagGetGameList    MatchmakingTag = 9
	TagAlterGame      MatchmakingTag = 10
	TagKickPlayer     MatchmakingTag = 11
	TagWaitForHost    MatchmakingTag = 12
	TagRedirect       MatchmakingTag = 13
	TagReselectServer MatchmakingTag = 14
	TagGetGameListV2  MatchmakingTag = 16
)

// GameDataTag is the tag byte of messages nested inside GameData /
// GameDataTo.
type GameDataTag byte

const (
	GameDataFlag           GameDataTag = 1
	GameDataRpcFlag        GameDataTag = 2
	GameDataSpawnFlag      GameDataTag = 4
	GameDataDespawnFlag    GameDataTag = 5
	GameDataSceneChange    GameDataTag = 6
	GameDataReadyFlag      GameDataTag = 7
	GameDataChangeSettings GameDataTag = 8
)

// RPCTag is the tag byte carried after an RPC flag's net-id.
type RPCTag byte

const (
	RPCPlayAnimation         RPCTag = 0
	RPCCompleteTask          RPCTag = 1
	RPCSyncSettings          RPCTag = 2
	RPCSetInfected           RPCTag = 3
	RPCExiled                RPCTag = 4
	RPCCheckName             RPCTag = 5
	RPCSetName               RPCTag = 6
	RPCCheckColor            RPCTag = 7
	RPCSetColor              RPCTag = 8
	RPCSetHat                RPCTag = 9
	RPCSetSkin               RPCTag = 10
	RPCReportDeadBody        RPCTag = 11
	RPCMurderPlayer          RPCTag = 12
	RPCSendChat              RPCTag = 13
	RPCStartMeeting          RPCTag = 14
	RPCSetScanner            RPCTag = 15
	RPCSendChatNote          RPCTag = 16
	RPCSetStartCounter       RPCTag = 17
	RPCEnterVent             RPCTag = 18
	RPCExitVent              RPCTag = 19
	RPCSnapTo                RPCTag = 20
	RPCClose                 RPCTag = 21
	RPCVotingComplete        RPCTag = 22
	RPCCastVote              RPCTag = 23
	RPCClearVote             RPCTag = 24
	RPCAddVote               RPCTag = 25
	RPCCloseDoorsOfType      RPCTag = 26
	RPCRepairSystem          RPCTag = 27
	RPCSetTasks              RPCTag = 28
	RPCUpdateGameData        RPCTag = 29
	RPCSetPet                RPCTag = 30
)

// SpawnType is the tag byte of a SpawnFlag's spawn_type field.
type SpawnType byte

const (
	SpawnShipStatus0  SpawnType = 0
	SpawnMeetingHud   SpawnType = 1
	SpawnLobbyBehav   SpawnType = 2
	SpawnGameData     SpawnType = 3
	SpawnPlayerCtrl   SpawnType = 4
	SpawnShipStatus1  SpawnType = 5
	SpawnShipStatus2  SpawnType = 6
	SpawnShipStatus3  SpawnType = 7
)

// DataFlagRole identifies the component role of the net-id carried by a
// DataFlag frame, resolved by the dispatcher from a prior PlayerControl
// spawn. It is not a wire value: nothing encodes it directly.
type DataFlagRole int

const (
	RoleControl DataFlagRole = iota
	RolePhysics
	RoleNetwork
)

// DisconnectReason enumerates server-given reasons for ending a session, plus
// two internal sentinels (Timeout, UnansweredPings) never seen on the wire.
type DisconnectReason uint32

const (
	ReasonExitGame            DisconnectReason = 0
	ReasonGameFull            DisconnectReason = 1
	ReasonGameStarted         DisconnectReason = 2
	ReasonGameNotFound        DisconnectReason = 3
	ReasonIncorrectVersion    DisconnectReason = 5
	ReasonBanned              DisconnectReason = 6
	ReasonKicked              DisconnectReason = 7
	ReasonCustom              DisconnectReason = 8
	ReasonInvalidName         DisconnectReason = 9
	ReasonHacking             DisconnectReason = 10
	ReasonDestroy             DisconnectReason = 16
	ReasonError               DisconnectReason = 17
	ReasonIncorrectGame       DisconnectReason = 18
	ReasonServerRequest       DisconnectReason = 19
	ReasonServerFull          DisconnectReason = 20
	ReasonFocusLostBackground DisconnectReason = 207
	ReasonIntentionalLeaving  DisconnectReason = 208
	ReasonFocusLost           DisconnectReason = 209
	ReasonNewConnection       DisconnectReason = 210

	ReasonTimeout         DisconnectReason = 1000
	ReasonUnansweredPings DisconnectReason = 1001
)

var disconnectReasonNames = map[DisconnectReason]string{
	ReasonExitGame:            "ExitGame",
	ReasonGameFull:            "GameFull",
	ReasonGameStarted:         "GameStarted",
	ReasonGameNotFound:        "GameNotFound",
	ReasonIncorrectVersion:    "IncorrectVersion",
	ReasonBanned:              "Banned",
	ReasonKicked:              "Kicked",
	ReasonCustom:              "Custom",
	ReasonInvalidName:         "InvalidName",
	ReasonHacking:             "Hacking",
	ReasonDestroy:             "Destroy",
	ReasonError:               "Error",
	ReasonIncorrectGame:       "IncorrectGame",
	ReasonServerRequest:       "ServerRequest",
	ReasonServerFull:          "ServerFull",
	ReasonFocusLostBackground: "FocusLostBackground",
	ReasonIntentionalLeaving:  "IntentionalLeaving",
	ReasonFocusLost:           "FocusLost",
	ReasonNewConnection:       "NewConnection",
	ReasonTimeout:             "Timeout",
	ReasonUnansweredPings:     "UnansweredPings",
}

// String returns the symbolic name of a disconnect reason, or "Unknown" for
// an unrecognized value.
func (r DisconnectReason) String() string {
	if name, ok := disconnectReasonNames[r]; ok {
		return name
	}
	return "Unknown"
}

// Map-id constants. The protocol overloads "map id" with two conventions:
// a bitmask used by find_games search requests (so multiple maps can be
// requested at once) and a plain ordinal used inside Game records. Both are
// kept, named distinctly, per spec.md Design Notes (iii).
const (
	MapMaskSkeld  byte = 1 << 0
	MapMaskMiraHQ byte = 1 << 1
	MapMaskPolus  byte = 1 << 2

	MapOrdinalSkeld  byte = 0
	MapOrdinalMiraHQ byte = 1
	MapOrdinalPolus  byte = 2
)

// DefaultPort is the default UDP port of the matchmaking/game server.
const DefaultPort = 22023
