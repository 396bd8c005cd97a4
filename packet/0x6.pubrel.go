package packet

import "bytes"

// PUBREL is step two of the QoS 2 exchange: the original sender tells
// the receiver it can discard its QoS 2 state and deliver the message
// (OASIS MQTT v5.0 §3.6). Its fixed header flags are fixed at
// Dup=0,QoS=1,Retain=0, enforced by FixedHeader.Unpack.
type PUBREL struct {
	*FixedHeader

	PacketID   uint16
	ReasonCode ReasonCode
	Props      *Properties
}

func (pkt *PUBREL) Kind() byte { return 0x6 }

func (pkt *PUBREL) Pack(w *bytes.Buffer) error {
	pkt.FixedHeader.Dup, pkt.FixedHeader.QoS, pkt.FixedHeader.Retain = 0, 1, 0
	return packAck(pkt.FixedHeader, pkt.PacketID, pkt.ReasonCode, pkt.Props, w)
}

func (pkt *PUBREL) Unpack(buf *bytes.Buffer) error {
	id, rc, props, err := unpackAck(pkt.FixedHeader, buf)
	if err != nil {
		return err
	}
	pkt.PacketID, pkt.ReasonCode, pkt.Props = id, rc, props
	return nil
}
