package packet

import "bytes"

// PUBCOMP is the final step of the QoS 2 exchange, sent in answer to
// PUBREL (OASIS MQTT v5.0 §3.7).
type PUBCOMP struct {
	*FixedHeader

	PacketID   uint16
	ReasonCode ReasonCode
	Props      *Properties
}

func (pkt *PUBCOMP) Kind() byte { return 0x7 }

func (pkt *PUBCOMP) Pack(w *bytes.Buffer) error {
	return packAck(pkt.FixedHeader, pkt.PacketID, pkt.ReasonCode, pkt.Props, w)
}

func (pkt *PUBCOMP) Unpack(buf *bytes.Buffer) error {
	id, rc, props, err := unpackAck(pkt.FixedHeader, buf)
	if err != nil {
		return err
	}
	pkt.PacketID, pkt.ReasonCode, pkt.Props = id, rc, props
	return nil
}
