package packet

import "bytes"

// PINGREQ carries no variable header or payload (OASIS MQTT v5.0 §3.12).
// A client sends it to tell the server it is alive between application
// messages, per the Keep Alive interval negotiated in CONNECT.
type PINGREQ struct {
	*FixedHeader
}

func (pkt *PINGREQ) Kind() byte { return 0xC }
func (pkt *PINGREQ) Pack(w *bytes.Buffer) error {
	pkt.FixedHeader.Kind = pkt.Kind()
	pkt.FixedHeader.RemainingLength = 0
	return pkt.FixedHeader.Pack(w)
}
func (pkt *PINGREQ) Unpack(*bytes.Buffer) error { return nil }
