package packet

import (
	"bytes"
	"fmt"
)

// CONNACK is the server's reply to CONNECT (OASIS MQTT v5.0 §3.2). Any
// ReasonCode above 0x00 means the server must close the network
// connection right after sending it [MQTT-3.2.2-5].
type CONNACK struct {
	*FixedHeader

	SessionPresent    uint8
	ConnectReturnCode ReasonCode
	Props             *Properties
}

func (pkt *CONNACK) Kind() byte { return 0x2 }
func (pkt *CONNACK) String() string {
	return fmt.Sprintf("CONNACK reason=0x%02X", pkt.ConnectReturnCode.Code)
}

func (pkt *CONNACK) Pack(w *bytes.Buffer) error {
	pkt.FixedHeader.Kind = pkt.Kind()
	buf := GetBuffer()
	defer PutBuffer(buf)

	buf.WriteByte(pkt.SessionPresent & 0x01)
	buf.WriteByte(pkt.ConnectReturnCode.Code)

	if pkt.Version == VERSION500 {
		if pkt.Props == nil {
			pkt.Props = &Properties{}
		}
		if err := pkt.Props.Pack(buf); err != nil {
			return err
		}
	}

	pkt.FixedHeader.RemainingLength = uint32(buf.Len())
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (pkt *CONNACK) Unpack(buf *bytes.Buffer) error {
	if buf.Len() < 2 {
		return ErrShortBuffer
	}
	pkt.SessionPresent = buf.Next(1)[0] & 0x01
	pkt.ConnectReturnCode = ReasonCode{Code: buf.Next(1)[0]}

	if pkt.Version == VERSION500 {
		pkt.Props = &Properties{}
		if err := pkt.Props.Unpack(buf); err != nil {
			return err
		}
	}
	return nil
}
