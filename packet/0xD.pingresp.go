package packet

import "bytes"

// PINGRESP is the server's reply to PINGREQ (OASIS MQTT v5.0 §3.13). No
// variable header, no payload.
type PINGRESP struct {
	*FixedHeader
}

func (pkt *PINGRESP) Kind() byte { return 0xD }
func (pkt *PINGRESP) Pack(w *bytes.Buffer) error {
	pkt.FixedHeader.Kind = pkt.Kind()
	pkt.FixedHeader.RemainingLength = 0
	return pkt.FixedHeader.Pack(w)
}
func (pkt *PINGRESP) Unpack(*bytes.Buffer) error { return nil }
