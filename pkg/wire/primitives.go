// Package wire implements the byte-level primitives of the Hazel-style
// protocol: little-endian fixed-width integers, the big-endian reliable-id
// encoding, VarInt7 packed integers, length-prefixed strings, Vector2
// quantization, the lobby-code bijection and the hello game-version scalar.
package wire

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// ErrVarIntTooLong is returned when a packed integer runs past five bytes or
// its fifth byte carries bits beyond the 32-bit range.
var ErrVarIntTooLong = errors.New("wire: varint7 sequence too long")

// ErrShortBuffer is returned whenever a Read* helper runs out of bytes.
var ErrShortBuffer = errors.New("wire: buffer too short")

// --- fixed-width little-endian helpers -------------------------------------------------

func PutUint16LE(b []byte, v uint16) {
	binary.LittleEndian.PutUint16(b, v)
}

func Uint16LE(b []byte) (uint16, error) {
	if len(b) < 2 {
		return 0, ErrShortBuffer
	}
	return binary.LittleEndian.Uint16(b), nil
}

func PutUint32LE(b []byte, v uint32) {
	binary.LittleEndian.PutUint32(b, v)
}

func Uint32LE(b []byte) (uint32, error) {
	if len(b) < 4 {
		return 0, ErrShortBuffer
	}
	return binary.LittleEndian.Uint32(b), nil
}

func PutFloat32LE(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}

func Float32LE(b []byte) (float32, error) {
	if len(b) < 4 {
		return 0, ErrShortBuffer
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

// --- big-endian helpers, used only for the reliable id and ack payload -----------------

func PutUint16BE(b []byte, v uint16) {
	binary.BigEndian.PutUint16(b, v)
}

func Uint16BE(b []byte) (uint16, error) {
	if len(b) < 2 {
		return 0, ErrShortBuffer
	}
	return binary.BigEndian.Uint16(b), nil
}

// --- VarInt7 ("packed") ------------------------------------------------------------------

// PutVarInt7 appends the VarInt7 encoding of v to dst and returns the result.
// Encoding emits 7 bits per byte, low-to-high, setting the continuation bit
// 0x80 on every byte but the last.
func PutVarInt7(dst []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v > 0 {
			b |= 0x80
		}
		dst = append(dst, b)
		if v == 0 {
			break
		}
	}
	return dst
}

// ReadVarInt7 decodes a VarInt7 value from the front of b, returning the
// value and the number of bytes consumed. It rejects sequences that would
// overflow 32 bits.
func ReadVarInt7(b []byte) (value uint32, n int, err error) {
	var shift uint
	for {
		if n >= len(b) {
			return 0, 0, ErrShortBuffer
		}
		if shift >= 35 {
			return 0, 0, ErrVarIntTooLong
		}
		cur := b[n]
		n++
		if shift == 28 && cur&0x70 != 0 {
			return 0, 0, ErrVarIntTooLong
		}
		value |= uint32(cur&0x7F) << shift
		if cur&0x80 == 0 {
			return value, n, nil
		}
		shift += 7
	}
}

// --- length-prefixed strings -------------------------------------------------------------

// PutString appends a VarInt7 byte-length followed by the UTF-8 bytes of s.
func PutString(dst []byte, s string) []byte {
	dst = PutVarInt7(dst, uint32(len(s)))
	return append(dst, s...)
}

// ReadString reads a VarInt7-length-prefixed UTF-8 string, returning the
// string and the number of bytes consumed.
func ReadString(b []byte) (string, int, error) {
	length, n, err := ReadVarInt7(b)
	if err != nil {
		return "", 0, err
	}
	end := n + int(length)
	if end > len(b) {
		return "", 0, ErrShortBuffer
	}
	return string(b[n:end]), end, nil
}

// --- Vector2 quantization ------------------------------------------------------------------

const (
	vecMin   = -40.0
	vecMax   = 40.0
	vecRange = vecMax - vecMin
	vecScale = 0xFFFF
)

// EncodeVector2 clamps x,y to [-40, 40] and maps them linearly onto
// [0, 0xFFFF], writing two little-endian u16s.
func EncodeVector2(dst []byte, x, y float32) []byte {
	var buf [4]byte
	PutUint16LE(buf[0:2], quantize(x))
	PutUint16LE(buf[2:4], quantize(y))
	return append(dst, buf[:]...)
}

func quantize(v float32) uint16 {
	if v < vecMin {
		v = vecMin
	} else if v > vecMax {
		v = vecMax
	}
	frac := (v - vecMin) / vecRange
	return uint16(math.Round(float64(frac) * vecScale))
}

// DecodeVector2 is the inverse of EncodeVector2.
func DecodeVector2(b []byte) (x, y float32, err error) {
	if len(b) < 4 {
		return 0, 0, ErrShortBuffer
	}
	rawX, _ := Uint16LE(b[0:2])
	rawY, _ := Uint16LE(b[2:4])
	return dequantize(rawX), dequantize(rawY), nil
}

func dequantize(v uint16) float32 {
	frac := float64(v) / vecScale
	return float32(vecMin + frac*vecRange)
}

// --- lobby code <-> u32 bijection -----------------------------------------------------------

// lobbyAlphabet is the non-standard 26-letter ordering the protocol uses to
// encode lobby codes.
const lobbyAlphabet = "QWXRTYLPESDFGHUJKZOCVBINMA"

var lobbyIndex = func() map[byte]uint32 {
	m := make(map[byte]uint32, 26)
	for i := 0; i < len(lobbyAlphabet); i++ {
		m[lobbyAlphabet[i]] = uint32(i)
	}
	return m
}()

// ErrInvalidLobbyCode is returned when a lobby code string is not exactly
// six letters from the protocol's alphabet.
var ErrInvalidLobbyCode = errors.New("wire: invalid lobby code")

// GameNameToInt converts a six-letter lobby code to its bijective u32
// encoding.
func GameNameToInt(code string) (uint32, error) {
	if len(code) != 6 {
		return 0, ErrInvalidLobbyCode
	}
	idx := make([]uint32, 6)
	for i := 0; i < 6; i++ {
		v, ok := lobbyIndex[code[i]]
		if !ok {
			return 0, ErrInvalidLobbyCode
		}
		idx[i] = v
	}
	a, b, c, d, e, f := idx[0], idx[1], idx[2], idx[3], idx[4], idx[5]
	low := (a + 26*b) & 0x3FF
	high := (c + 26*(d+26*(e+26*f))) << 10 & 0x3FFFFC00
	return low | high | 0x80000000, nil
}

// IntToGameName is the inverse of GameNameToInt.
func IntToGameName(v uint32) string {
	a := v & 0x3FF
	b := (v >> 10) & 0xFFFFF
	letters := [6]byte{
		lobbyAlphabet[a%26],
		lobbyAlphabet[a/26],
		lobbyAlphabet[b%26],
		lobbyAlphabet[(b/26)%26],
		lobbyAlphabet[(b/676)%26],
		lobbyAlphabet[(b/17576)%26],
	}
	return string(letters[:])
}

// --- hello game-version scalar ----------------------------------------------------------

// EncodeGameVersion packs a (year, month, day, revision) tuple into the u32
// scalar carried in the Hello payload.
func EncodeGameVersion(year, month, day, revision int) uint32 {
	return uint32(year*25000 + month*1800 + day*50 + revision)
}
