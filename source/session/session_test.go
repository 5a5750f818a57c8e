package session

import (
	"sync"
	"testing"
	"time"

	"samp-server-go/core/events"
	"samp-server-go/pkg/wire"
	"samp-server-go/source/model"
	"samp-server-go/source/protocol"
)

func newTestClient() *Client {
	return New(DefaultConfig("tester"), events.New())
}

func TestStateStringCoversAllValues(t *testing.T) {
	cases := map[State]string{
		StateDisconnected: "disconnected",
		StateConnecting:   "connecting",
		StateReady:        "ready",
		StateInGame:       "in_game",
		StateClosed:       "closed",
		State(99):         "unknown",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}

func TestSequenceIsNewerWraparound(t *testing.T) {
	cases := []struct {
		next, last uint16
		want       bool
	}{
		{5, 4, true},
		{4, 5, false},
		{4, 4, false},
		{1, 0xFFFF, true},  // wrapped around, still newer
		{0xFFFF, 1, false}, // far behind, treated as stale
	}
	for _, c := range cases {
		if got := sequenceIsNewer(c.next, c.last); got != c.want {
			t.Errorf("sequenceIsNewer(%d, %d) = %v, want %v", c.next, c.last, got, c.want)
		}
	}
}

func TestFormatIPv4(t *testing.T) {
	// 192.168.1.10 packed little-endian.
	host := uint32(192) | uint32(168)<<8 | uint32(1)<<16 | uint32(10)<<24
	if got, want := formatIPv4(host), "192.168.1.10"; got != want {
		t.Errorf("formatIPv4() = %q, want %q", got, want)
	}
}

func encodeRosterPlayer(id byte, name string, color, hat, pet, skin, status byte, taskIDs []byte) []byte {
	buf := []byte{id}
	buf = wire.PutString(buf, name)
	buf = append(buf, color)
	buf = wire.PutVarInt7(buf, uint32(hat))
	buf = wire.PutVarInt7(buf, uint32(pet))
	buf = wire.PutVarInt7(buf, uint32(skin))
	buf = append(buf, status, byte(len(taskIDs)))
	for _, id := range taskIDs {
		buf = wire.PutVarInt7(buf, uint32(id))
		buf = append(buf, 0) // incomplete
	}
	return buf
}

func TestParseRosterDecodesPlayersAndTasks(t *testing.T) {
	block := encodeRosterPlayer(3, "astro", 1, 0, 0, 0, 0, []byte{2, 5})
	roster := wire.PutVarInt7(nil, 1)
	roster = append(roster, block...)

	count, players, taskStates, err := parseRoster(roster)
	if err != nil {
		t.Fatalf("parseRoster() error: %v", err)
	}
	if count != 1 || len(players) != 1 {
		t.Fatalf("count = %d, len(players) = %d, want 1/1", count, len(players))
	}
	p := players[0]
	if p.ID != 3 || p.Name != "astro" {
		t.Errorf("player = %+v, want id=3 name=astro", p)
	}
	states := taskStates[3]
	if len(states) != 2 || states[0].ID != 2 || states[1].ID != 5 {
		t.Errorf("taskStates[3] = %+v, want [{2 false} {5 false}]", states)
	}
}

func TestHandleJoinedGameTransitionsToInGame(t *testing.T) {
	c := newTestClient()
	c.handleJoinedGame(protocol.JoinedGamePayload{GameID: 1, ClientID: 7, HostID: 7})
	if got := c.State(); got != StateInGame {
		t.Errorf("State() = %v, want %v", got, StateInGame)
	}
	if c.gameID != 1 || c.clientID != 7 || c.hostID != 7 {
		t.Errorf("ids not recorded: gameID=%d clientID=%d hostID=%d", c.gameID, c.clientID, c.hostID)
	}
}

func TestHandlePlayerControlSpawnMarksHostAndSelf(t *testing.T) {
	c := newTestClient()
	c.clientID = 42
	c.hostID = 42

	spawn := protocol.SpawnFlagPayload{
		SpawnType: protocol.SpawnPlayerCtrl,
		Owner:     42,
		Blocks: []protocol.ComponentBlock{
			{NetID: 100, Data: []byte{9}}, // player id 9 from control component
			{NetID: 101},
			{NetID: 102},
		},
	}
	c.handlePlayerControlSpawn(spawn)

	player, ok := c.players.ByID(9)
	if !ok {
		t.Fatalf("player 9 not added")
	}
	if !player.Host {
		t.Error("player.Host = false, want true (owner == hostID)")
	}
	if !c.hasSelfID || c.selfPlayerID != 9 {
		t.Errorf("self id = %d (known=%v), want 9 (known=true)", c.selfPlayerID, c.hasSelfID)
	}
	if !player.NetIDs.Complete() {
		t.Error("player net-ids not complete after spawn")
	}
	if c.netIDs[100] != protocol.RoleControl || c.netIDs[101] != protocol.RolePhysics || c.netIDs[102] != protocol.RoleNetwork {
		t.Errorf("netIDs roles not recorded: %+v", c.netIDs)
	}
}

func TestHandleDataFlagRejectsStaleMovement(t *testing.T) {
	c := newTestClient()
	player := &model.Player{ID: 5}
	player.NetIDs.SetNetwork(200)
	c.players.Add(player)
	c.netIDs[200] = protocol.RoleNetwork
	c.sequenceIDs[5] = 10

	var mu sync.Mutex
	var moves int
	c.Bus.Subscribe("player_move", func(events.Event) {
		mu.Lock()
		moves++
		mu.Unlock()
	})

	c.handleDataFlag(protocol.DataFlagPayload{NetID: 200, SubPayload: rawMovement(3, 1, 2, 0, 0)})
	c.handleDataFlag(protocol.DataFlagPayload{NetID: 200, SubPayload: rawMovement(11, 3, 4, 0, 0)})

	time.Sleep(20 * time.Millisecond) // handlers run in their own goroutine
	mu.Lock()
	if moves != 1 {
		t.Errorf("player_move fired %d times, want 1 (stale packet must be dropped)", moves)
	}
	mu.Unlock()
	if diff := player.Position.X - 3; diff > 0.01 || diff < -0.01 {
		t.Errorf("Position.X = %v, want ~3 (quantized round-trip)", player.Position.X)
	}
	if diff := player.Position.Y - 4; diff > 0.01 || diff < -0.01 {
		t.Errorf("Position.Y = %v, want ~4 (quantized round-trip)", player.Position.Y)
	}
	if c.sequenceIDs[5] != 11 {
		t.Errorf("sequenceIDs[5] = %d, want 11", c.sequenceIDs[5])
	}
}

// rawMovement builds a bare Network DataFlag sub-payload (no child framing),
// matching what decodeDataFlag hands ResolveDataFlag.
func rawMovement(seq uint16, x, y, vx, vy float32) []byte {
	return protocol.EncodeMovement(seq, x, y, vx, vy)
}

func TestHandleRpcSendChatEmitsChatEvent(t *testing.T) {
	c := newTestClient()
	player := &model.Player{ID: 1, Name: "astro"}
	player.NetIDs.SetNetwork(300)
	c.players.Add(player)

	got := make(chan ChatMessage, 1)
	c.Bus.Subscribe("chat", func(ev events.Event) {
		got <- ev.Data.(ChatMessage)
	})

	leaf := &protocol.Frame{Tag: byte(protocol.RPCSendChat), Payload: protocol.SendChatPayload{Message: "gg"}}
	c.handleRpc(300, leaf)

	select {
	case msg := <-got:
		if msg.Message != "gg" || msg.Sender != player {
			t.Errorf("ChatMessage = %+v, want {gg, %p}", msg, player)
		}
	case <-time.After(time.Second):
		t.Fatal("chat event never fired")
	}
}

func TestHandleMurderPlayerEmitsDeathForSelf(t *testing.T) {
	c := newTestClient()
	c.hasSelfID = true
	c.selfPlayerID = 9
	victim := &model.Player{ID: 9}
	victim.NetIDs.SetControl(400)
	c.players.Add(victim)
	impostor := &model.Player{ID: 3}
	impostor.NetIDs.SetControl(500)
	c.players.Add(impostor)

	got := make(chan events.Event, 1)
	c.Bus.Subscribe("death", func(ev events.Event) { got <- ev })
	c.Bus.Subscribe("player_kill", func(ev events.Event) { got <- ev })

	c.handleMurderPlayer(500, protocol.MurderPlayerPayload{TargetNetID: 400})

	select {
	case ev := <-got:
		if ev.Name != "death" {
			t.Errorf("event = %q, want death", ev.Name)
		}
		if ev.Data != impostor {
			t.Errorf("death payload = %+v, want impostor %+v", ev.Data, impostor)
		}
	case <-time.After(time.Second):
		t.Fatal("no death/player_kill event fired")
	}
	if !victim.IsDead() {
		t.Error("victim not marked dead")
	}
}

func TestHandleMurderPlayerEmitsPlayerKillForOthers(t *testing.T) {
	c := newTestClient()
	c.hasSelfID = true
	c.selfPlayerID = 1
	victim := &model.Player{ID: 9}
	victim.NetIDs.SetControl(400)
	c.players.Add(victim)
	impostor := &model.Player{ID: 3}
	impostor.NetIDs.SetControl(500)
	c.players.Add(impostor)

	got := make(chan events.Event, 1)
	c.Bus.Subscribe("player_kill", func(ev events.Event) { got <- ev })

	c.handleMurderPlayer(500, protocol.MurderPlayerPayload{TargetNetID: 400})

	select {
	case ev := <-got:
		kill, ok := ev.Data.(Kill)
		if !ok {
			t.Fatalf("player_kill payload = %T, want Kill", ev.Data)
		}
		if kill.Impostor != impostor || kill.Victim != victim {
			t.Errorf("Kill = %+v, want {%p, %p}", kill, impostor, victim)
		}
	case <-time.After(time.Second):
		t.Fatal("no player_kill event fired")
	}
	if !victim.IsDead() {
		t.Error("victim not marked dead")
	}
}

func TestApplyUpdateGameDataAddsPlayers(t *testing.T) {
	c := newTestClient()
	block := encodeRosterPlayer(2, "polus", 0, 0, 0, 0, 0, []byte{1})
	data := make([]byte, 2)
	wire.PutUint16LE(data, uint16(len(block)))
	data = append(data, block...)

	c.applyUpdateGameData(data)

	player, ok := c.players.ByID(2)
	if !ok || player.Name != "polus" {
		t.Fatalf("player not applied: %+v (ok=%v)", player, ok)
	}
}
