package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"samp-server-go/core/events"
	"samp-server-go/source/apperr"
	"samp-server-go/source/model"
	"samp-server-go/source/protocol"
)

// Subscribe registers handler for every occurrence of the named event ("*"
// for all events).
func (c *Client) Subscribe(name string, handler events.Handler) uuid.UUID {
	return c.Bus.Subscribe(name, handler)
}

// LatencyMs reports the round-trip latency of the most recently acked
// keep-alive Ping, or 0 before the first one completes.
func (c *Client) LatencyMs() int {
	var ms int
	c.withActor(func() { ms = c.latencyMs })
	return ms
}

// withActor runs fn on the owner goroutine and blocks the caller until it
// completes, for facade methods that need a consistent read of actor-owned
// state (players, net-ids, game/host ids) before doing their own I/O.
func (c *Client) withActor(fn func()) {
	done := make(chan struct{})
	c.enqueue(func() {
		fn()
		close(done)
	})
	<-done
}

// JoinLobby sends a JoinGame request and blocks until the server replies
// with either JoinedGame (success, handled by the dispatcher which updates
// game/host/client ids and transitions to StateInGame) or a JoinGame
// failure echo carrying a disconnect reason.
func (c *Client) JoinLobby(code string) error {
	if c.isClosed() {
		return apperr.NewConnectionError("join_lobby", fmt.Errorf("session is closed"))
	}
	child, err := protocol.EncodeJoinGameChild(code)
	if err != nil {
		return apperr.NewValidationError("code", err.Error())
	}

	waiter := c.Bus.Register(func(e events.Event) bool {
		if e.Name != "raw_matchmaking_frame" {
			return false
		}
		f, ok := e.Data.(*protocol.Frame)
		return ok && (f.Tag == byte(protocol.TagJoinedGame) || f.Tag == byte(protocol.TagJoinGame))
	})

	c.enqueue(func() { c.lobbyCode = code })
	if err := c.sendReliable(child); err != nil {
		return apperr.NewConnectionError("join_lobby", err)
	}

	stop := make(chan struct{})
	timer := time.AfterFunc(c.cfg.RecvTimeout, func() { close(stop) })
	defer timer.Stop()

	ev, ok := waiter.Wait(stop)
	if !ok {
		return apperr.NewConnectionError("join_lobby", fmt.Errorf("timed out waiting for a response"))
	}
	f := ev.Data.(*protocol.Frame)
	if f.Tag == byte(protocol.TagJoinedGame) {
		return nil
	}

	_, reason, custom, err := protocol.ParseJoinGameResponse(f.Raw)
	if err != nil {
		return apperr.NewProtocolError("join_game", err)
	}
	if reason == nil {
		return apperr.NewInternalAssertion("join_game response carried neither a success triple nor a disconnect reason")
	}
	return apperr.NewServerDisconnect(uint32(*reason), reason.String(), custom)
}

// FindGames queries the matchmaking server's game list and returns the
// decoded listing, one Game per advertised lobby plus the per-map counts.
func (c *Client) FindGames(mapMask, impostors byte, language uint32) (*model.GameList, error) {
	if c.isClosed() {
		return nil, apperr.NewConnectionError("find_games", fmt.Errorf("session is closed"))
	}
	child := protocol.EncodeGetGameListV2Child(protocol.GetGameListV2Request{
		MapMask: mapMask, Impostors: impostors, Language: language,
	})

	waiter := c.Bus.Register(func(e events.Event) bool {
		if e.Name != "raw_matchmaking_frame" {
			return false
		}
		f, ok := e.Data.(*protocol.Frame)
		return ok && f.Tag == byte(protocol.TagGetGameListV2)
	})

	if err := c.sendReliable(child); err != nil {
		return nil, apperr.NewConnectionError("find_games", err)
	}

	stop := make(chan struct{})
	timer := time.AfterFunc(c.cfg.RecvTimeout, func() { close(stop) })
	defer timer.Stop()

	ev, ok := waiter.Wait(stop)
	if !ok {
		return nil, apperr.NewConnectionError("find_games", fmt.Errorf("timed out waiting for a response"))
	}
	f := ev.Data.(*protocol.Frame)
	resp, err := protocol.DecodeGetGameListV2Response(f.Raw)
	if err != nil {
		return nil, apperr.NewProtocolError("get_game_list_v2", err)
	}

	games := make([]*model.Game, 0, len(resp.Games))
	for _, listing := range resp.Games {
		games = append(games, &model.Game{
			Host: listing.Host, Port: listing.Port, Code: listing.Code,
			MapID: listing.MapID, Impostors: listing.Impostors,
			MaxPlayers: listing.MaxPlayers, PlayerCount: listing.PlayerCount,
			Public: true,
		})
	}
	return model.NewGameList(games, int(resp.SkeldCount), int(resp.MiraHQCount), int(resp.PolusCount)), nil
}

// SendChat broadcasts a chat message. Spectators never speak in-lobby
// (connection.py raises SpectatorException from `send_chat`).
func (c *Client) SendChat(message string) error {
	if c.cfg.Spectator {
		return apperr.NewSpectatorMisuse("send_chat")
	}
	var gameID, netID uint32
	var ok bool
	c.withActor(func() {
		gameID = c.gameID
		if !c.hasSelfID {
			return
		}
		if player, found := c.players.ByID(c.selfPlayerID); found {
			netID, ok = player.NetIDs.Control, true
		}
	})
	if !ok {
		return apperr.NewInternalAssertion("local player net-id not yet known")
	}
	children := protocol.EncodeRpc(netID, protocol.RPCSendChat, protocol.EncodeSendChat(message))
	if err := c.sendReliable(protocol.EncodeGameData(gameID, children)); err != nil {
		return apperr.NewConnectionError("send_chat", err)
	}
	return nil
}

// Move sends the local avatar's position and velocity. Spectators never
// move (connection.py raises SpectatorException from `move`).
func (c *Client) Move(pos, vel model.Position) error {
	if c.cfg.Spectator {
		return apperr.NewSpectatorMisuse("move")
	}
	var gameID, netID uint32
	var seq uint16
	var ok bool
	c.withActor(func() {
		gameID = c.gameID
		if !c.hasSelfID {
			return
		}
		if player, found := c.players.ByID(c.selfPlayerID); found {
			netID, ok = player.NetIDs.Network, true
			c.sequenceIDs[c.selfPlayerID]++
			seq = c.sequenceIDs[c.selfPlayerID]
		}
	})
	if !ok {
		return apperr.NewInternalAssertion("local player net-id not yet known")
	}
	sub := protocol.EncodeMovement(seq, pos.X, pos.Y, vel.X, vel.Y)
	dataFlag := protocol.EncodeDataFlag(netID, sub)
	if err := c.sendUnreliable(protocol.EncodeGameData(gameID, dataFlag)); err != nil {
		return apperr.NewConnectionError("move", err)
	}
	return nil
}
