package packet

import "bytes"

// PUBACK acknowledges a QoS 1 PUBLISH (OASIS MQTT v5.0 §3.4).
type PUBACK struct {
	*FixedHeader

	PacketID   uint16
	ReasonCode ReasonCode
	Props      *Properties
}

func (pkt *PUBACK) Kind() byte { return 0x4 }

func (pkt *PUBACK) Pack(w *bytes.Buffer) error {
	return packAck(pkt.FixedHeader, pkt.PacketID, pkt.ReasonCode, pkt.Props, w)
}

func (pkt *PUBACK) Unpack(buf *bytes.Buffer) error {
	id, rc, props, err := unpackAck(pkt.FixedHeader, buf)
	if err != nil {
		return err
	}
	pkt.PacketID, pkt.ReasonCode, pkt.Props = id, rc, props
	return nil
}
