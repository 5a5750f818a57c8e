package protocol

import (
	"samp-server-go/pkg/wire"

	"github.com/pkg/errors"
)

// HelloPayload is the body of an outer Hello frame:
// 0x00 | reliableId(BE u16) | gameVersion(LE u32) | u8 nameLen | UTF-8 name.
type HelloPayload struct {
	ReliableID  uint16
	GameVersion uint32
	Name        string
}

// DisconnectPayload is the body of an outer Disconnect frame. The first four
// bytes preceding the reason byte are of unclear purpose in the original
// source ("no idea what the first thing is") and are kept opaque rather than
// interpreted, per spec.md Design Notes (i).
type DisconnectPayload struct {
	HasBody bool
	Prefix  [4]byte
	Reason  DisconnectReason
	Custom  string
}

// AckPayload is the body of an outer Ack frame: the echoed reliable id
// followed by a trailing 0xFF sentinel byte.
type AckPayload struct {
	ReliableID uint16
}

// PingPayload is the body of an outer Ping frame: just the reliable id.
type PingPayload struct {
	ReliableID uint16
}

// ReliablePayload / UnreliablePayload mark a container frame whose children
// are matchmaking-tagged messages.
type ReliablePayload struct {
	ReliableID uint16
}

type UnreliablePayload struct{}

// Decode parses one UDP datagram into its top-level Frame. The first byte
// is the outer kind and is never length prefixed.
func Decode(datagram []byte) (*Frame, error) {
	if len(datagram) < 1 {
		return nil, errors.New("protocol: empty datagram")
	}
	kind := OuterKind(datagram[0])
	rest := datagram[1:]

	switch kind {
	case KindHello:
		return decodeHello(rest)
	case KindDisconnect:
		return decodeDisconnect(rest)
	case KindAck:
		return decodeAck(rest)
	case KindPing:
		return decodePing(rest)
	case KindReliable:
		return decodeReliable(rest)
	case KindUnreliable:
		return decodeUnreliable(rest)
	case KindFragment:
		return nil, errors.New("protocol: Fragment kind is reserved and never emitted")
	default:
		return nil, errors.Errorf("protocol: unknown outer kind %d", kind)
	}
}

func decodeHello(rest []byte) (*Frame, error) {
	if len(rest) < 8 {
		return nil, wire.ErrShortBuffer
	}
	// rest[0] is the constant 0x00 marker byte.
	reliableID, err := wire.Uint16BE(rest[1:3])
	if err != nil {
		return nil, err
	}
	version, err := wire.Uint32LE(rest[3:7])
	if err != nil {
		return nil, err
	}
	nameLen := int(rest[7])
	if len(rest) < 8+nameLen {
		return nil, wire.ErrShortBuffer
	}
	name := string(rest[8 : 8+nameLen])
	return &Frame{
		Tag: byte(KindHello),
		Payload: HelloPayload{
			ReliableID:  reliableID,
			GameVersion: version,
			Name:        name,
		},
	}, nil
}

// EncodeHello builds a complete outer Hello datagram.
func EncodeHello(reliableID uint16, gameVersion uint32, name string) []byte {
	buf := make([]byte, 0, 9+len(name))
	buf = append(buf, byte(KindHello), 0x00)
	var idBuf [2]byte
	wire.PutUint16BE(idBuf[:], reliableID)
	buf = append(buf, idBuf[:]...)
	var verBuf [4]byte
	wire.PutUint32LE(verBuf[:], gameVersion)
	buf = append(buf, verBuf[:]...)
	buf = append(buf, byte(len(name)))
	buf = append(buf, name...)
	return buf
}

func decodeDisconnect(rest []byte) (*Frame, error) {
	if len(rest) == 0 {
		return &Frame{Tag: byte(KindDisconnect), Payload: DisconnectPayload{HasBody: false}}, nil
	}
	if len(rest) < 5 {
		return nil, wire.ErrShortBuffer
	}
	var payload DisconnectPayload
	payload.HasBody = true
	copy(payload.Prefix[:], rest[0:4])
	payload.Reason = DisconnectReason(rest[4])
	if payload.Reason == ReasonCustom && len(rest) > 5 {
		custom, _, err := wire.ReadString(rest[5:])
		if err != nil {
			return nil, err
		}
		payload.Custom = custom
	}
	return &Frame{Tag: byte(KindDisconnect), Payload: payload}, nil
}

// EncodeDisconnect builds a complete outer Disconnect datagram. When reason
// is nil the datagram carries no body.
func EncodeDisconnect(reason *DisconnectReason, custom string) []byte {
	buf := []byte{byte(KindDisconnect)}
	if reason == nil {
		return buf
	}
	buf = append(buf, 0, 0, 0, 0) // opaque prefix, zeroed on send
	buf = append(buf, byte(*reason))
	if *reason == ReasonCustom {
		buf = wire.PutString(buf, custom)
	}
	return buf
}

func decodeAck(rest []byte) (*Frame, error) {
	id, err := wire.Uint16BE(rest)
	if err != nil {
		return nil, err
	}
	return &Frame{Tag: byte(KindAck), Payload: AckPayload{ReliableID: id}}, nil
}

// EncodeAck builds a complete outer Ack datagram for the given reliable id.
func EncodeAck(reliableID uint16) []byte {
	buf := make([]byte, 0, 4)
	buf = append(buf, byte(KindAck))
	var idBuf [2]byte
	wire.PutUint16BE(idBuf[:], reliableID)
	buf = append(buf, idBuf[:]...)
	buf = append(buf, 0xFF)
	return buf
}

func decodePing(rest []byte) (*Frame, error) {
	id, err := wire.Uint16BE(rest)
	if err != nil {
		return nil, err
	}
	return &Frame{Tag: byte(KindPing), Payload: PingPayload{ReliableID: id}}, nil
}

// EncodePing builds a complete outer Ping datagram for the given reliable id.
func EncodePing(reliableID uint16) []byte {
	buf := make([]byte, 0, 3)
	buf = append(buf, byte(KindPing))
	var idBuf [2]byte
	wire.PutUint16BE(idBuf[:], reliableID)
	return append(buf, idBuf[:]...)
}

func decodeReliable(rest []byte) (*Frame, error) {
	if len(rest) < 2 {
		return nil, wire.ErrShortBuffer
	}
	id, err := wire.Uint16BE(rest[0:2])
	if err != nil {
		return nil, err
	}
	children, err := decodeChildren(rest[2:], matchmakingTable, logUnknownMatchmaking)
	if err != nil {
		return nil, err
	}
	return &Frame{Tag: byte(KindReliable), Payload: ReliablePayload{ReliableID: id}, Children: children}, nil
}

func decodeUnreliable(rest []byte) (*Frame, error) {
	children, err := decodeChildren(rest, matchmakingTable, logUnknownMatchmaking)
	if err != nil {
		return nil, err
	}
	return &Frame{Tag: byte(KindUnreliable), Payload: UnreliablePayload{}, Children: children}, nil
}

// EncodeReliable wraps children in an outer Reliable frame, allocating a
// reliable id via genID.
func EncodeReliable(genID func() uint16, children []byte) []byte {
	id := genID()
	buf := make([]byte, 0, 3+len(children))
	buf = append(buf, byte(KindReliable))
	var idBuf [2]byte
	wire.PutUint16BE(idBuf[:], id)
	buf = append(buf, idBuf[:]...)
	return append(buf, children...)
}

// EncodeUnreliable wraps children in an outer Unreliable frame.
func EncodeUnreliable(children []byte) []byte {
	buf := make([]byte, 0, 1+len(children))
	buf = append(buf, byte(KindUnreliable))
	return append(buf, children...)
}
