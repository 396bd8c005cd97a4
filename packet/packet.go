package packet

import "bytes"

// Packet is the common interface every MQTT 5 control packet implements
// (OASIS MQTT v5.0 §2.1): a fixed header, an optional variable header and
// properties, and an optional payload.
type Packet interface {
	// Kind returns the control packet type, 0x1 (CONNECT) through 0xF
	// (AUTH); see Table 2-1.
	Kind() byte

	// Unpack decodes the variable header, properties and payload from
	// buf. buf holds exactly RemainingLength bytes: the fixed header has
	// already been consumed by Decode.
	Unpack(buf *bytes.Buffer) error

	// Pack encodes the variable header, properties, payload and a
	// leading fixed header to buf.
	Pack(buf *bytes.Buffer) error
}

// Decode reads one complete control packet from buf. buf is the
// connection's accumulation buffer (see the root package's Reader): bytes
// already received but not yet framed into a packet.
//
// Decode never blocks and never consumes bytes it cannot fully frame: if
// buf holds fewer bytes than the fixed header plus its declared
// RemainingLength, it returns ErrShortBuffer and leaves buf untouched, so
// the caller can append more bytes from the network and retry. This is
// the streaming decode contract spec §4.1 requires for use over a
// byte-stream transport (TCP, WebSocket, TLS), as opposed to a Read per
// field.
func Decode(version byte, buf *bytes.Buffer) (Packet, error) {
	probe := bytes.NewBuffer(buf.Bytes())
	fixed := &FixedHeader{Version: version}
	if err := fixed.Unpack(probe); err != nil {
		return nil, err
	}
	if probe.Len() < int(fixed.RemainingLength) {
		return nil, ErrShortBuffer
	}

	headerLen := buf.Len() - probe.Len()
	total := headerLen + int(fixed.RemainingLength)
	raw := buf.Next(total)
	body := bytes.NewBuffer(raw[headerLen:])

	pkt := newPacket(fixed)
	if pkt == nil {
		return nil, ErrMalformedPacket
	}
	return pkt, pkt.Unpack(body)
}

// newPacket allocates the zero-value packet struct for fixed.Kind, or nil
// if the type is unrecognized or reserved.
func newPacket(fixed *FixedHeader) Packet {
	switch fixed.Kind {
	case 0x1:
		return &CONNECT{FixedHeader: fixed}
	case 0x2:
		return &CONNACK{FixedHeader: fixed}
	case 0x3:
		return &PUBLISH{FixedHeader: fixed}
	case 0x4:
		return &PUBACK{FixedHeader: fixed}
	case 0x5:
		return &PUBREC{FixedHeader: fixed}
	case 0x6:
		return &PUBREL{FixedHeader: fixed}
	case 0x7:
		return &PUBCOMP{FixedHeader: fixed}
	case 0x8:
		return &SUBSCRIBE{FixedHeader: fixed}
	case 0x9:
		return &SUBACK{FixedHeader: fixed}
	case 0xA:
		return &UNSUBSCRIBE{FixedHeader: fixed}
	case 0xB:
		return &UNSUBACK{FixedHeader: fixed}
	case 0xC:
		return &PINGREQ{FixedHeader: fixed}
	case 0xD:
		return &PINGRESP{FixedHeader: fixed}
	case 0xE:
		return &DISCONNECT{FixedHeader: fixed}
	case 0xF:
		return &AUTH{FixedHeader: fixed}
	default:
		return nil
	}
}

// Encode serializes pkt, fixed header included, into a freshly pooled
// buffer and returns its bytes. Callers that write straight to a
// connection should instead pool their own buffer via GetBuffer/PutBuffer
// and call pkt.Pack directly; Encode exists for tests and one-off use.
func Encode(pkt Packet) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)
	if err := pkt.Pack(buf); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}
