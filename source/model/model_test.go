package model

import (
	"testing"

	"github.com/go-test/deep"
)

func TestGameSerializeRoundTripV1(t *testing.T) {
	g := &Game{
		Version:        1,
		MaxPlayers:     10,
		Keywords:       1,
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
	}
	raw := g.Serialize()
	got, n, err := DeserializeGame(raw)
	if err != nil {
		t.Fatalf("DeserializeGame: %v", err)
	}
	if n != len(raw) {
		t.Errorf("consumed %d bytes, want %d", n, len(raw))
	}
	if diff := deep.Equal(got, g); diff != nil {
		t.Errorf("round trip mismatch: %v", diff)
	}
}

func TestGameSerializeRoundTripV4(t *testing.T) {
	g := WithDefaultSettings()
	g.AnonymousVotes = true
	g.TaskBarUpdates = 2
	raw := g.Serialize()
	got, n, err := DeserializeGame(raw)
	if err != nil {
		t.Fatalf("DeserializeGame: %v", err)
	}
	if n != len(raw) {
		t.Errorf("consumed %d bytes, want %d", n, len(raw))
	}
	if diff := deep.Equal(got, g); diff != nil {
		t.Errorf("round trip mismatch: %v", diff)
	}
}

func TestGameDeserializeShortBuffer(t *testing.T) {
	if _, _, err := DeserializeGame(nil); err == nil {
		t.Error("expected error on empty buffer")
	}
	if _, _, err := DeserializeGame([]byte{4, 10}); err == nil {
		t.Error("expected error on truncated v4 buffer")
	}
}

func TestReadableCode(t *testing.T) {
	g := &Game{Code: 0}
	code := g.ReadableCode()
	if len(code) == 0 {
		t.Error("ReadableCode returned empty string")
	}
}

func TestPlayerListAddOverwritePreservesNetIDs(t *testing.T) {
	l := NewPlayerList()

	complete := &Player{ID: 3, Name: "Red"}
	complete.NetIDs.SetControl(10)
	complete.NetIDs.SetPhysics(11)
	complete.NetIDs.SetNetwork(12)
	l.Add(complete)

	update := &Player{ID: 3, Name: "Red Renamed"}
	l.Add(update)

	got, ok := l.ByID(3)
	if !ok {
		t.Fatal("player 3 missing after overwrite")
	}
	if got.Name != "Red Renamed" {
		t.Errorf("Name = %q, want %q", got.Name, "Red Renamed")
	}
	if !got.NetIDs.Complete() {
		t.Error("net-ids lost on overwrite despite incoming record lacking them")
	}
	if got.NetIDs.Control != 10 || got.NetIDs.Physics != 11 || got.NetIDs.Network != 12 {
		t.Errorf("net-ids = %+v, want preserved {10 11 12}", got.NetIDs)
	}
}

func TestPlayerListAddOverwriteWithFullNetIDsReplaces(t *testing.T) {
	l := NewPlayerList()

	first := &Player{ID: 5}
	first.NetIDs.SetControl(1)
	first.NetIDs.SetPhysics(2)
	first.NetIDs.SetNetwork(3)
	l.Add(first)

	second := &Player{ID: 5}
	second.NetIDs.SetControl(100)
	second.NetIDs.SetPhysics(101)
	second.NetIDs.SetNetwork(102)
	l.Add(second)

	got, _ := l.ByID(5)
	if got.NetIDs.Control != 100 {
		t.Errorf("Control = %d, want 100", got.NetIDs.Control)
	}

	if _, ok := l.ByNetID(1); ok {
		t.Error("stale net-id 1 still indexed after full replace")
	}
	if p, ok := l.ByNetID(100); !ok || p.ID != 5 {
		t.Error("new net-id 100 not indexed after replace")
	}
}

func TestPlayerListByNetIDAndRemove(t *testing.T) {
	l := NewPlayerList()
	p := &Player{ID: 1}
	p.NetIDs.SetControl(42)
	p.NetIDs.SetPhysics(43)
	p.NetIDs.SetNetwork(44)
	l.Add(p)

	if got, ok := l.ByNetID(43); !ok || got.ID != 1 {
		t.Error("ByNetID(43) did not find player 1")
	}

	l.Remove(1)
	if _, ok := l.ByID(1); ok {
		t.Error("player 1 still present after Remove")
	}
	if _, ok := l.ByNetID(43); ok {
		t.Error("net-id 43 still indexed after Remove")
	}
	if l.Len() != 0 {
		t.Errorf("Len() = %d, want 0", l.Len())
	}
}

func TestPlayerListComplete(t *testing.T) {
	l := NewPlayerList()
	l.SetExpectedCount(2)

	p1 := &Player{ID: 1}
	p1.NetIDs.SetControl(1)
	p1.NetIDs.SetPhysics(2)
	p1.NetIDs.SetNetwork(3)
	l.Add(p1)

	if l.Complete() {
		t.Error("Complete() true with only one of two players known")
	}

	p2 := &Player{ID: 2}
	p2.NetIDs.SetControl(4)
	p2.NetIDs.SetPhysics(5)
	p2.NetIDs.SetNetwork(6)
	l.Add(p2)

	if !l.Complete() {
		t.Error("Complete() false once all expected players have full net-ids")
	}
}

func TestPlayerIsDeadAndMarkDead(t *testing.T) {
	p := &Player{ID: 1}
	if p.IsDead() {
		t.Error("new player reported dead")
	}
	p.MarkDead(Position{X: 1, Y: 2})
	if !p.IsDead() {
		t.Error("player not marked dead after MarkDead")
	}
	if p.DeathPosition.X != 1 || p.DeathPosition.Y != 2 {
		t.Errorf("DeathPosition = %+v, want {1 2}", p.DeathPosition)
	}
}

func TestGameListByCode(t *testing.T) {
	gl := NewGameList([]*Game{{Code: 7}, {Code: 9}}, 1, 0, 1)
	if g, ok := gl.ByCode(9); !ok || g.Code != 9 {
		t.Error("ByCode(9) did not find the game")
	}
	if _, ok := gl.ByCode(123); ok {
		t.Error("ByCode(123) unexpectedly found a game")
	}
	if gl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", gl.Len())
	}
}
