package packet

import (
	"bytes"
	"fmt"
)

// AUTH carries an extended authentication exchange, introduced in
// MQTT 5.0 and unsupported on earlier versions (OASIS MQTT v5.0 §3.15).
// A missing reason code means Success (0x00) [MQTT-3.15.2.1]; sending it
// at all without a prior AuthenticationMethod on CONNECT is a protocol
// error.
type AUTH struct {
	*FixedHeader

	ReasonCode ReasonCode
	Props      *Properties
}

func (pkt *AUTH) Kind() byte { return 0xF }
func (pkt *AUTH) String() string {
	return fmt.Sprintf("AUTH reason=0x%02X", pkt.ReasonCode.Code)
}

func (pkt *AUTH) Pack(w *bytes.Buffer) error {
	if pkt.Version != VERSION500 {
		return ErrUnsupportedProtocolVersion
	}
	pkt.FixedHeader.Kind = pkt.Kind()
	buf := GetBuffer()
	defer PutBuffer(buf)

	if pkt.ReasonCode.Code != CodeSuccess.Code || pkt.Props != nil {
		buf.WriteByte(pkt.ReasonCode.Code)
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

func (pkt *AUTH) Unpack(buf *bytes.Buffer) error {
	if pkt.Version != VERSION500 {
		return ErrUnsupportedProtocolVersion
	}
	pkt.ReasonCode = CodeSuccess
	if buf.Len() == 0 {
		return nil
	}

	code, err := buf.ReadByte()
	if err != nil {
		return ErrShortBuffer
	}
	pkt.ReasonCode = ReasonCode{Code: code}

	if buf.Len() > 0 {
		pkt.Props = &Properties{}
		if err := pkt.Props.Unpack(buf); err != nil {
			return err
		}
	}
	return nil
}
