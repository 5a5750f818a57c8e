package session

import (
	"fmt"

	"samp-server-go/core/events"
	"samp-server-go/pkg/logger"
	"samp-server-go/pkg/wire"
	"samp-server-go/source/apperr"
	"samp-server-go/source/model"
	"samp-server-go/source/protocol"
)

// ChatMessage is the "chat" event payload: the resolved sender (nil if the
// net-id isn't known yet) and the message body.
type ChatMessage struct {
	Sender  *model.Player
	Message string
}

// PlayerUpdate is the "player_update" event payload for a cosmetic or name
// change, distinguishing whether it describes the local player.
type PlayerUpdate struct {
	Player *model.Player
	Field  string
	Self   bool
}

// Kill is the "player_kill" event payload: the impostor who owned the
// MurderPlayer RPC and the victim it targeted (spec.md §4.6). The "death"
// event fires with just the impostor, since the victim is always the local
// player in that case.
type Kill struct {
	Impostor *model.Player
	Victim   *model.Player
}

// onDatagram is the Reader's OnData callback: it runs on the reader
// goroutine, so it only decodes and enqueues — all further handling runs on
// the actor.
func (c *Client) onDatagram(raw []byte) {
	frame, err := protocol.Decode(raw)
	if err != nil {
		logger.Warn("session: failed to decode datagram: %v", err)
		return
	}
	c.enqueue(func() { c.dispatchOuter(frame) })
}

func (c *Client) onReadTimeout() {
	c.enqueue(func() {
		if c.isClosed() {
			return
		}
		logger.Warn("session: read timed out, reconnecting")
		host, port := c.host, c.port
		go func() { _ = c.Reconnect(host, port) }()
	})
}

func (c *Client) onReadError(err error) {
	logger.Error("session: read error: %v", err)
}

// markReady fires exactly once, on the first inbound datagram: it flips the
// state machine out of Connecting, starts the keep-alive pinger and unblocks
// Connect (connection.py's `_ready` asyncio.Event plus the "ready" dispatch
// in `_on_data`).
func (c *Client) markReady() {
	c.readyOnce.Do(func() {
		c.setState(StateReady)
		if c.pinger != nil {
			c.pinger.Start()
		}
		close(c.readyCh)
		c.Bus.Emit(events.Event{Name: "ready"})
	})
}

// dispatchOuter acks inbound Reliable and Ping frames before dispatching
// them; an inbound Hello is logged and ignored without an ack.
func (c *Client) dispatchOuter(f *protocol.Frame) {
	c.markReady()

	switch p := f.Payload.(type) {
	case protocol.DisconnectPayload:
		c.handleDisconnect(p)
	case protocol.AckPayload:
		c.inFlight.Ack(p.ReliableID)
	case protocol.PingPayload:
		_ = c.sendAck(p.ReliableID)
	case protocol.HelloPayload:
		logger.Debug("session: unexpected inbound Hello, ignoring")
	case protocol.ReliablePayload:
		_ = c.sendAck(p.ReliableID)
		c.dispatchMatchmakingChildren(f.Children)
	case protocol.UnreliablePayload:
		c.dispatchMatchmakingChildren(f.Children)
	default:
		logger.Debug("session: unhandled outer payload %T", f.Payload)
	}
}

func (c *Client) handleDisconnect(p protocol.DisconnectPayload) {
	if p.HasBody {
		logger.Info("session: server disconnected (%s)", p.Reason.String())
		c.disconnectErr = apperr.NewServerDisconnect(uint32(p.Reason), p.Reason.String(), p.Custom)
	} else {
		logger.Info("session: server disconnected with no reason given")
		c.disconnectErr = apperr.NewConnectionError("disconnect", fmt.Errorf("no reason given"))
	}
	c.Bus.Emit(events.Event{Name: "disconnect", Data: p})
	go c.teardown(true)
}

// dispatchMatchmakingChildren walks the matchmaking-tagged frames nested
// directly under a Reliable/Unreliable outer frame. Every leaf is also
// published as a raw event so JoinLobby/FindGames can correlate a response
// via an events.Bus waiter without a separate return-value channel, mirroring
// connection.py's unconditional `queue.put(packet)`.
func (c *Client) dispatchMatchmakingChildren(children []*protocol.Frame) {
	for _, child := range children {
		c.Bus.Emit(events.Event{Name: "raw_matchmaking_frame", Data: child})
		c.dispatchMatchmaking(child)
	}
}

func (c *Client) dispatchMatchmaking(f *protocol.Frame) {
	switch p := f.Payload.(type) {
	case protocol.JoinedGamePayload:
		c.handleJoinedGame(p)
	case protocol.StartGamePayload:
		c.handleStartGame(p)
	case protocol.EndGamePayload:
		c.handleEndGame(p)
	case protocol.AlterGamePayload:
		c.game.Public = p.Public
		c.Bus.Emit(events.Event{Name: "game_settings_alter", Data: p})
	case protocol.RemovePlayerPayload:
		c.handleRemovePlayer(p)
	case protocol.RedirectPayload:
		c.handleRedirect(p)
	case protocol.GameDataPayload:
		c.dispatchGameData(f.Children)
	case protocol.GameDataToPayload:
		if p.Target == c.clientID {
			c.dispatchGameData(f.Children)
		}
	default:
		if protocol.MatchmakingTag(f.Tag) == protocol.TagReselectServer {
			logger.Debug("session: reselect_server received, ignoring")
		}
		// TagJoinGame / TagGetGameListV2 response leaves carry no concrete
		// payload type (see matchmakingTable in source/protocol); their
		// callers correlate via the raw_matchmaking_frame event above.
	}
}

func (c *Client) handleJoinedGame(p protocol.JoinedGamePayload) {
	c.gameID = p.GameID
	c.clientID = p.ClientID
	c.hostID = p.HostID
	c.game.Host = p.HostID
	c.setState(StateInGame)
	c.Bus.Emit(events.Event{Name: "game_join", Data: p})

	if !c.cfg.Spectator {
		_ = c.sendGameData(protocol.EncodeSceneChange(c.clientID))
	}
}

func (c *Client) handleStartGame(p protocol.StartGamePayload) {
	_ = c.sendGameData(protocol.EncodeReady(c.clientID))
	c.Bus.Emit(events.Event{Name: "game_start", Data: p})
}

func (c *Client) handleEndGame(p protocol.EndGamePayload) {
	for _, player := range c.players.All() {
		c.Tasks.Clear(player.ID)
	}
	c.Bus.Emit(events.Event{Name: "game_end", Data: p})
}

func (c *Client) handleRemovePlayer(p protocol.RemovePlayerPayload) {
	c.players.Remove(byte(p.PlayerID))
	c.Tasks.Clear(byte(p.PlayerID))
	c.hostID = p.NewHostID
	c.game.Host = p.NewHostID
	c.Bus.Emit(events.Event{Name: "player_remove", Data: p})
}

func (c *Client) handleRedirect(p protocol.RedirectPayload) {
	host := formatIPv4(p.Host)
	logger.Info("session: redirected to %s:%d", host, p.Port)
	go func() { _ = c.Reconnect(host, int(p.Port)) }()
}

func (c *Client) dispatchGameData(children []*protocol.Frame) {
	for _, f := range children {
		switch p := f.Payload.(type) {
		case protocol.DataFlagPayload:
			c.handleDataFlag(p)
		case protocol.RpcFlagPayload:
			if len(f.Children) > 0 {
				c.handleRpc(p.NetID, f.Children[0])
			}
		case protocol.SpawnFlagPayload:
			c.handleSpawn(p)
		case protocol.DespawnFlagPayload:
			c.handleDespawn(p)
		case protocol.SceneChangePayload, protocol.ReadyFlagPayload:
			// no-op, matching connection.py's on_gamedata_packet.
		default:
			// ChangeSettings carries no concrete payload type; ignored.
		}
	}
}

func (c *Client) handleDataFlag(p protocol.DataFlagPayload) {
	role, ok := c.netIDs[p.NetID]
	if !ok {
		return
	}
	parsed, err := protocol.ResolveDataFlag(role, p.SubPayload)
	if err != nil {
		logger.Warn("session: failed to resolve data flag for net-id %d: %v", p.NetID, err)
		return
	}
	if role != protocol.RoleNetwork {
		return
	}
	mv := parsed.(protocol.MovementPayload)
	player, ok := c.players.ByNetID(p.NetID)
	if !ok {
		return
	}
	last := c.sequenceIDs[player.ID]
	if !sequenceIsNewer(mv.SequenceID, last) {
		logger.Debug("session: stale movement packet for player %d (seq %d <= %d)", player.ID, mv.SequenceID, last)
		return
	}
	c.sequenceIDs[player.ID] = mv.SequenceID
	player.Position = model.Position{X: mv.PosX, Y: mv.PosY}
	player.Velocity = model.Position{X: mv.VelX, Y: mv.VelY}
	c.Bus.Emit(events.Event{Name: "player_move", Data: player})
}

// sequenceIsNewer compares two uint16 sequence ids with wraparound, the
// same half-range comparison Hazel's reliability layer uses for reliable
// ids (spec.md §4.4 "discard stale/duplicate movement packets").
func sequenceIsNewer(next, last uint16) bool {
	return uint16(next-last) != 0 && uint16(next-last) < 0x8000
}

func (c *Client) handleSpawn(p protocol.SpawnFlagPayload) {
	switch p.SpawnType {
	case protocol.SpawnGameData:
		c.handleGameDataSpawn(p)
	case protocol.SpawnPlayerCtrl:
		c.handlePlayerControlSpawn(p)
	}
}

func (c *Client) handleGameDataSpawn(p protocol.SpawnFlagPayload) {
	roster, err := protocol.ParseGameDataSpawn(p)
	if err != nil {
		logger.Warn("session: failed to parse GameData spawn: %v", err)
		return
	}
	count, players, taskStates, err := parseRoster(roster.PlayerData)
	if err != nil {
		logger.Warn("session: failed to parse player roster: %v", err)
		return
	}
	c.players.SetExpectedCount(count)
	for _, player := range players {
		c.players.Add(player)
		c.Tasks.Assign(player.ID, player.Tasks)
		for _, state := range taskStates[player.ID] {
			if state.Complete {
				c.Tasks.Complete(player.ID, state.ID)
			}
		}
	}
}

func (c *Client) handlePlayerControlSpawn(p protocol.SpawnFlagPayload) {
	comps, err := protocol.ParsePlayerControlSpawn(p)
	if err != nil {
		logger.Warn("session: failed to parse PlayerControl spawn: %v", err)
		return
	}
	c.netIDs[comps.Control] = protocol.RoleControl
	c.netIDs[comps.Physics] = protocol.RolePhysics
	c.netIDs[comps.Network] = protocol.RoleNetwork

	playerID := byte(comps.PlayerID)
	player, ok := c.players.ByID(playerID)
	if !ok {
		player = &model.Player{ID: playerID}
	}
	player.NetIDs.SetControl(comps.Control)
	player.NetIDs.SetPhysics(comps.Physics)
	player.NetIDs.SetNetwork(comps.Network)
	player.ClientID = p.Owner
	player.Host = p.Owner == c.hostID
	c.players.Add(player)

	if p.Owner == c.clientID {
		c.selfPlayerID = playerID
		c.hasSelfID = true
		c.hasPlayerData = true
		_ = c.sendGameDataTo(c.hostID, protocol.EncodeRpc(comps.Control, protocol.RPCCheckName, protocol.EncodeCheckName(c.cfg.Name)))
		c.updatePlayerAttributes(comps.Control)
	}

	if c.players.Complete() {
		c.Bus.Emit(events.Event{Name: "players_update", Data: c.players})
		c.maybeSpectatorReconnect()
	}
}

func (c *Client) updatePlayerAttributes(controlNetID uint32) {
	_ = c.sendGameDataTo(c.hostID, protocol.EncodeRpc(controlNetID, protocol.RPCCheckColor, protocol.EncodeCheckColor(c.cfg.Color)))

	var children []byte
	children = append(children, protocol.EncodeRpc(controlNetID, protocol.RPCSetPet, protocol.EncodeSetPet(c.cfg.Pet))...)
	children = append(children, protocol.EncodeRpc(controlNetID, protocol.RPCSetHat, protocol.EncodeSetHat(c.cfg.Hat))...)
	children = append(children, protocol.EncodeRpc(controlNetID, protocol.RPCSetSkin, protocol.EncodeSetSkin(c.cfg.Skin))...)
	_ = c.sendGameData(children)
}

// maybeSpectatorReconnect implements spec.md Design Notes (ii): a spectator
// reconnects exactly once, after its own PlayerControl spawn has arrived and
// the roster is complete, so that the following UpdateGameData RPC (which
// only a full reconnect triggers the host to send) can be applied.
func (c *Client) maybeSpectatorReconnect() {
	if !c.cfg.Spectator || !c.hasPlayerData || c.spectatorReconnected {
		return
	}
	c.spectatorReconnected = true
	host, port := c.host, c.port
	go func() { _ = c.Reconnect(host, port) }()
}

func (c *Client) handleDespawn(p protocol.DespawnFlagPayload) {
	player, ok := c.players.ByNetID(p.NetID)
	if !ok {
		return
	}
	c.players.Remove(player.ID)
	c.Tasks.Clear(player.ID)
	c.Bus.Emit(events.Event{Name: "player_leave", Data: player})
}

func (c *Client) handleRpc(netID uint32, leaf *protocol.Frame) {
	switch p := leaf.Payload.(type) {
	case protocol.SetStartCounterPayload:
		if p.SecondsLeft != 0xFF {
			c.Bus.Emit(events.Event{Name: "start_counter", Data: p})
		}
	case protocol.SendChatPayload:
		sender, _ := c.players.ByNetID(netID)
		c.Bus.Emit(events.Event{Name: "chat", Data: ChatMessage{Sender: sender, Message: p.Message}})
	case protocol.SyncSettingsPayload:
		c.handleSyncSettings(p)
	case protocol.UpdateGameDataPayload:
		if c.spectatorReconnected {
			c.applyUpdateGameData(p.PlayersData)
		}
	case protocol.SetNamePayload:
		c.handleCosmeticUpdate(netID, "name", func(player *model.Player) { player.Name = p.Name })
	case protocol.SetColorPayload:
		c.handleCosmeticUpdate(netID, "color", func(player *model.Player) { player.Color = p.Color })
	case protocol.SetHatPayload:
		c.handleCosmeticUpdate(netID, "hat", func(player *model.Player) { player.Hat = p.Hat })
	case protocol.SetSkinPayload:
		c.handleCosmeticUpdate(netID, "skin", func(player *model.Player) { player.Skin = p.Skin })
	case protocol.SetInfectedPayload:
		for _, id := range p.ImpostorIDs {
			if player, ok := c.players.ByID(id); ok {
				player.Impostor = true
			}
		}
		c.Bus.Emit(events.Event{Name: "infected", Data: p})
	case protocol.MurderPlayerPayload:
		c.handleMurderPlayer(netID, p)
	case protocol.ReportDeadBodyPayload:
		if p.IsEmergencyButton {
			c.Bus.Emit(events.Event{Name: "button_press"})
		} else {
			c.Bus.Emit(events.Event{Name: "body_report", Data: p.PlayerID})
		}
	case protocol.StartMeetingPayload:
		c.Bus.Emit(events.Event{Name: "meeting_start", Data: p})
	case protocol.VotingCompletePayload:
		c.Bus.Emit(events.Event{Name: "voting_end", Data: p})
	case protocol.EnterVentPayload:
		c.Bus.Emit(events.Event{Name: "vent_enter", Data: p})
	case protocol.ExitVentPayload:
		c.Bus.Emit(events.Event{Name: "vent_exit", Data: p})
	case protocol.SnapToPayload:
		if player, ok := c.players.ByNetID(netID); ok {
			player.Position = model.Position{X: p.X, Y: p.Y}
		}
	case protocol.SendChatNotePayload:
		if p.NoteType == protocol.ChatNoteDidVote {
			c.Bus.Emit(events.Event{Name: "player_vote", Data: p.PlayerID})
		}
	case protocol.SetTasksPayload:
		c.Tasks.Assign(p.PlayerID, p.TaskIDs)
		c.Bus.Emit(events.Event{Name: "player_tasks_update", Data: p})
	default:
		if leaf.Tag == byte(protocol.RPCClose) {
			c.Bus.Emit(events.Event{Name: "meeting_stop"})
		}
	}
}

func (c *Client) handleSyncSettings(p protocol.SyncSettingsPayload) {
	g, _, err := model.DeserializeGame(p.GameData)
	if err != nil {
		logger.Warn("session: failed to deserialize SyncSettings: %v", err)
		return
	}
	g.Public = c.game.Public
	g.Code = c.game.Code
	g.Host = c.game.Host
	g.Port = c.game.Port
	c.game = g
	c.Bus.Emit(events.Event{Name: "game_settings", Data: g})
}

func (c *Client) handleCosmeticUpdate(netID uint32, field string, apply func(*model.Player)) {
	player, ok := c.players.ByNetID(netID)
	if !ok {
		return
	}
	apply(player)
	self := c.hasSelfID && player.ID == c.selfPlayerID
	c.Bus.Emit(events.Event{Name: "player_update", Data: PlayerUpdate{Player: player, Field: field, Self: self}})
}

func (c *Client) handleMurderPlayer(impostorNetID uint32, p protocol.MurderPlayerPayload) {
	victim, ok := c.players.ByNetID(p.TargetNetID)
	if !ok {
		return
	}
	impostor, _ := c.players.ByNetID(impostorNetID)
	victim.MarkDead(victim.Position)
	if c.hasSelfID && victim.ID == c.selfPlayerID {
		c.Bus.Emit(events.Event{Name: "death", Data: impostor})
	} else {
		c.Bus.Emit(events.Event{Name: "player_kill", Data: Kill{Impostor: impostor, Victim: victim}})
	}
}

// applyUpdateGameData adds or overwrites roster players from a post-reconnect
// UpdateGameData RPC, keeping players it does not mention: a sequence of `u16 LE size | size bytes` player blocks
// with no leading count, unlike a GameData spawn's roster (spec.md Design
// Notes (ii), original_source/amongus/packets/rpc/updategamedata.py).
func (c *Client) applyUpdateGameData(data []byte) {
	offset := 0
	for offset+2 <= len(data) {
		size, err := wire.Uint16LE(data[offset : offset+2])
		if err != nil {
			break
		}
		start := offset + 2
		end := start + int(size)
		if end > len(data) {
			break
		}
		player, taskStates, _, err := model.DeserializePlayer(data[start:end])
		if err != nil {
			logger.Warn("session: failed to apply UpdateGameData block: %v", err)
			break
		}
		c.players.Add(player)
		c.Tasks.Assign(player.ID, player.Tasks)
		for _, state := range taskStates {
			if state.Complete {
				c.Tasks.Complete(player.ID, state.ID)
			}
		}
		offset = end
	}
	c.Bus.Emit(events.Event{Name: "players_update", Data: c.players})
}

// formatIPv4 renders a Redirect payload's little-endian-packed host field
// (spec.md Design Notes (iii)) as a dotted-quad string.
func formatIPv4(host uint32) string {
	return fmt.Sprintf("%d.%d.%d.%d", byte(host), byte(host>>8), byte(host>>16), byte(host>>24))
}
