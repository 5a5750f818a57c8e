package protocol

import (
	"samp-server-go/pkg/wire"
)

// Frame is a node in the parsed packet tree. It carries the layered tag of
// the node, the concrete decoded payload (one Go type per leaf kind, per
// spec.md Design Notes "replace bag-of-fields with a sum type"), any child
// frames, and the raw undecoded bytes for nodes whose true shape depends on
// context the decoder doesn't have yet (DataFlag).
//
// Frames intentionally carry no parent pointer: the only use the original
// source has for one is recovering the enclosing RPC/DataFlag's owning
// net-id, which here is threaded explicitly through decode and dispatch
// function arguments instead (spec.md Design Notes "Cyclic parent
// references").
type Frame struct {
	Tag      byte
	Payload  any
	Children []*Frame
	Raw      []byte
}

// childDecodeFn decodes one sized, tagged child's payload bytes into a
// Frame. tag is supplied separately since most leaf decoders don't need it.
type childDecodeFn func(tag byte, payload []byte) (*Frame, error)

// decodeChildren walks a sequence of `u16 LE size | u8 tag | size bytes
// payload` messages, as specified for every nesting layer >= 1. Unknown
// tags are skipped (not fatal): the size field makes that safe.
func decodeChildren(data []byte, table map[byte]childDecodeFn, onUnknown func(tag byte)) ([]*Frame, error) {
	var children []*Frame
	offset := 0
	for offset < len(data) {
		if offset+3 > len(data) {
			return nil, wire.ErrShortBuffer
		}
		size, err := wire.Uint16LE(data[offset : offset+2])
		if err != nil {
			return nil, err
		}
		tag := data[offset+2]
		start := offset + 3
		end := start + int(size)
		if end > len(data) {
			return nil, wire.ErrShortBuffer
		}
		payload := data[start:end]

		decode, ok := table[tag]
		if !ok {
			if onUnknown != nil {
				onUnknown(tag)
			}
			offset = end
			continue
		}
		frame, err := decode(tag, payload)
		if err != nil {
			return nil, err
		}
		if frame != nil {
			children = append(children, frame)
		}
		offset = end
	}
	return children, nil
}

// encodeChild wraps a tag and its already-encoded payload with the
// `size | tag` prefix used at every nesting layer.
func encodeChild(dst []byte, tag byte, payload []byte) []byte {
	var sizeBuf [2]byte
	wire.PutUint16LE(sizeBuf[:], uint16(len(payload)))
	dst = append(dst, sizeBuf[:]...)
	dst = append(dst, tag)
	dst = append(dst, payload...)
	return dst
}
