package protocol

import (
	"testing"

	"github.com/go-test/deep"
)

func TestDecodeHelloHandshake(t *testing.T) {
	// spec.md §8 scenario 1: 08 00 00 01 8A AF 03 00 04 42 6F 6F 74
	datagram := []byte{0x08, 0x00, 0x00, 0x01, 0x8A, 0xAF, 0x03, 0x00, 0x04, 0x42, 0x6F, 0x6F, 0x74}
	frame, err := Decode(datagram)
	if err != nil {
		t.Fatalf("Decode(hello) error: %v", err)
	}
	if frame.Tag != byte(KindHello) {
		t.Fatalf("expected Hello kind, got %d", frame.Tag)
	}
	hello, ok := frame.Payload.(HelloPayload)
	if !ok {
		t.Fatalf("expected HelloPayload, got %T", frame.Payload)
	}
	if hello.ReliableID != 1 {
		t.Errorf("reliable id = %d, want 1", hello.ReliableID)
	}
	if hello.Name != "Boot" {
		t.Errorf("name = %q, want Boot", hello.Name)
	}
}

func TestHelloRoundTrip(t *testing.T) {
	encoded := EncodeHello(42, 50523850, "Player1")
	frame, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	want := HelloPayload{ReliableID: 42, GameVersion: 50523850, Name: "Player1"}
	if diff := deep.Equal(frame.Payload, want); diff != nil {
		t.Errorf("hello round trip mismatch: %v", diff)
	}
}

func TestAckRoundTrip(t *testing.T) {
	// spec.md §8 scenario 2: bytes 0A 00 07 must echo reliable id 7.
	datagram := []byte{0x0A, 0x00, 0x07}
	frame, err := Decode(datagram)
	if err != nil {
		t.Fatalf("Decode(ack) error: %v", err)
	}
	ack, ok := frame.Payload.(AckPayload)
	if !ok || ack.ReliableID != 7 {
		t.Fatalf("decoded ack = %+v, want ReliableID=7", frame.Payload)
	}

	encoded := EncodeAck(7)
	if encoded[0] != byte(KindAck) || encoded[len(encoded)-1] != 0xFF {
		t.Errorf("EncodeAck(7) = % X, want trailing 0xFF sentinel", encoded)
	}
}

func TestPingRoundTrip(t *testing.T) {
	encoded := EncodePing(99)
	frame, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode(ping) error: %v", err)
	}
	if p, ok := frame.Payload.(PingPayload); !ok || p.ReliableID != 99 {
		t.Fatalf("decoded ping = %+v, want ReliableID=99", frame.Payload)
	}
}

func TestReliableWithJoinedGameChild(t *testing.T) {
	joinedGame := make([]byte, 0, 16)
	joinedGame = append(joinedGame, u32le(100)...)
	joinedGame = append(joinedGame, u32le(42)...)
	joinedGame = append(joinedGame, u32le(42)...)
	joinedGame = append(joinedGame, 0x00) // player_amount = 0

	child := encodeChild(nil, byte(TagJoinedGame), joinedGame)
	datagram := EncodeReliable(func() uint16 { return 5 }, child)

	frame, err := Decode(datagram)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	rp, ok := frame.Payload.(ReliablePayload)
	if !ok || rp.ReliableID != 5 {
		t.Fatalf("decoded reliable = %+v, want ReliableID=5", frame.Payload)
	}
	if len(frame.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(frame.Children))
	}
	jg, ok := frame.Children[0].Payload.(JoinedGamePayload)
	if !ok {
		t.Fatalf("expected JoinedGamePayload, got %T", frame.Children[0].Payload)
	}
	want := JoinedGamePayload{GameID: 100, ClientID: 42, HostID: 42, PlayerIDs: []uint32{}}
	if diff := deep.Equal(jg, want); diff != nil {
		t.Errorf("joined game mismatch: %v", diff)
	}
}

func TestSendChatRoundTripThroughGameDataAndRpc(t *testing.T) {
	rpcLeaf := EncodeSendChat("hello world")
	rpcFlag := EncodeRpc(12, RPCSendChat, rpcLeaf)
	gameData := EncodeGameData(7, rpcFlag)
	datagram := EncodeReliable(func() uint16 { return 1 }, gameData)

	frame, err := Decode(datagram)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	gd := frame.Children[0]
	gdPayload, ok := gd.Payload.(GameDataPayload)
	if !ok || gdPayload.GameID != 7 {
		t.Fatalf("decoded game data = %+v", gd.Payload)
	}
	rpcFlagFrame := gd.Children[0]
	flagPayload, ok := rpcFlagFrame.Payload.(RpcFlagPayload)
	if !ok || flagPayload.NetID != 12 {
		t.Fatalf("decoded rpc flag = %+v", rpcFlagFrame.Payload)
	}
	chat, ok := rpcFlagFrame.Children[0].Payload.(SendChatPayload)
	if !ok || chat.Message != "hello world" {
		t.Fatalf("decoded chat = %+v", rpcFlagFrame.Children[0].Payload)
	}
}

func TestMovementResolvesOnlyWithNetworkRole(t *testing.T) {
	sub := EncodeMovement(5, 10, 20, 1, 2)
	resolved, err := ResolveDataFlag(RoleNetwork, sub)
	if err != nil {
		t.Fatalf("ResolveDataFlag error: %v", err)
	}
	mv, ok := resolved.(MovementPayload)
	if !ok {
		t.Fatalf("expected MovementPayload, got %T", resolved)
	}
	if mv.SequenceID != 5 {
		t.Errorf("sequence id = %d, want 5", mv.SequenceID)
	}

	other, err := ResolveDataFlag(RoleControl, sub)
	if err != nil {
		t.Fatalf("ResolveDataFlag(RoleControl) error: %v", err)
	}
	if _, isMovement := other.(MovementPayload); isMovement {
		t.Errorf("RoleControl resolved to MovementPayload, want raw bytes")
	}
}

func TestDecoderNeverOverreadsNestedMessage(t *testing.T) {
	// A child announcing size 4 but only 2 bytes actually present.
	data := []byte{0x04, 0x00, byte(TagJoinedGame), 0x01, 0x02}
	_, err := decodeChildren(data, matchmakingTable, func(byte) {})
	if err == nil {
		t.Fatal("expected short-buffer error when size exceeds available bytes")
	}
}

func TestRedirectDecode(t *testing.T) {
	// spec.md §8 scenario 6: host 01 02 03 04 LE, port 0x5997 -> 4.3.2.1:22935.
	payload := append(append([]byte{}, 0x01, 0x02, 0x03, 0x04), u16le(0x5997)...)
	frame, err := decodeRedirect(byte(TagRedirect), payload)
	if err != nil {
		t.Fatalf("decodeRedirect error: %v", err)
	}
	rp := frame.Payload.(RedirectPayload)
	if rp.Port != 0x5997 {
		t.Errorf("port = %#x, want 0x5997", rp.Port)
	}
}

func u32le(v uint32) []byte {
	b := make([]byte, 4)
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	return b
}

func u16le(v uint16) []byte {
	return []byte{byte(v), byte(v >> 8)}
}
