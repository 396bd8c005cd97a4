package packet

import "bytes"

// PUBREC is step one of the QoS 2 exchange: the receiver confirms it has
// stored the PUBLISH and will not deliver it again (OASIS MQTT v5.0
// §3.5). The sender answers with PUBREL and keeps the packet identifier
// allocated until the matching PUBCOMP arrives.
type PUBREC struct {
	*FixedHeader

	PacketID   uint16
	ReasonCode ReasonCode
	Props      *Properties
}

func (pkt *PUBREC) Kind() byte { return 0x5 }

func (pkt *PUBREC) Pack(w *bytes.Buffer) error {
	return packAck(pkt.FixedHeader, pkt.PacketID, pkt.ReasonCode, pkt.Props, w)
}

func (pkt *PUBREC) Unpack(buf *bytes.Buffer) error {
	id, rc, props, err := unpackAck(pkt.FixedHeader, buf)
	if err != nil {
		return err
	}
	pkt.PacketID, pkt.ReasonCode, pkt.Props = id, rc, props
	return nil
}
