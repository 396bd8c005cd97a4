package packet

import (
	"bytes"
	"fmt"
)

// FixedHeader is the first 2-5 bytes of every MQTT control packet (OASIS
// MQTT v5.0 §2.1, §2.2):
//
//	bit      7 6 5 4 | 3 2 1 0
//	byte 1   packet type     | flags specific to the packet type
//	byte 2.. remaining length, a variable byte integer
type FixedHeader struct {
	// Version is the negotiated protocol version (VERSION310/311/500).
	// It is not part of the wire format; Decode stamps it onto every
	// packet it produces so each type's Pack/Unpack can branch on it
	// without threading an extra parameter through every call.
	Version byte

	// Kind is the control packet type, bits 7-4 of byte 1.
	Kind byte

	// Dup, QoS and Retain are the flag bits, byte 1 bits 3-0. Only
	// PUBLISH uses all three meaningfully; PUBREL/SUBSCRIBE/UNSUBSCRIBE
	// require exactly Dup=0,QoS=1,Retain=0 (the reserved pattern); every
	// other type requires all three zero.
	Dup    uint8
	QoS    uint8
	Retain uint8

	// RemainingLength is the decoded byte count of the variable header
	// plus payload that follows the fixed header.
	RemainingLength uint32
}

func (h *FixedHeader) String() string {
	return fmt.Sprintf("%s: len=%d", Kind[h.Kind], h.RemainingLength)
}

// Pack writes the encoded fixed header to buf.
func (h *FixedHeader) Pack(buf *bytes.Buffer) error {
	enc, err := encodeLength(h.RemainingLength)
	if err != nil {
		return err
	}
	var b byte
	b |= h.Kind << 4
	b |= h.Dup << 3
	b |= h.QoS << 1
	b |= h.Retain
	buf.WriteByte(b)
	buf.Write(enc)
	return nil
}

// Unpack reads a fixed header from buf. It returns ErrShortBuffer if buf
// does not yet hold a complete fixed header (first byte plus the full
// variable-byte-integer remaining-length field); the Reader (root
// package) retries once more bytes have arrived, per spec §4.1's decoder
// contract.
func (h *FixedHeader) Unpack(buf *bytes.Buffer) error {
	b, err := buf.ReadByte()
	if err != nil {
		return ErrShortBuffer
	}

	h.Kind = b >> 4
	h.Dup = b & 0b00001000 >> 3
	h.QoS = b & 0b00000110 >> 1
	h.Retain = b & 0b00000001

	// Table 2-2 reserved flag bits must match exactly or the receiver
	// must treat the packet as malformed [MQTT-2.2.2-1], [MQTT-2.2.2-2].
	switch h.Kind {
	case 0x3: // PUBLISH
		if h.QoS > 2 {
			return ErrProtocolViolationQoSOutOfRange
		}
	case 0x6, 0x8, 0xA: // PUBREL, SUBSCRIBE, UNSUBSCRIBE
		if h.Dup != 0 || h.QoS != 1 || h.Retain != 0 {
			return ErrMalformedFlags
		}
	default:
		if h.Dup != 0 || h.QoS != 0 || h.Retain != 0 {
			return ErrMalformedFlags
		}
	}

	length, err := decodeLength(buf)
	if err != nil {
		return err
	}
	h.RemainingLength = length
	return nil
}
