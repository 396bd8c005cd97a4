package packet

import (
	"bytes"
	"fmt"
)

// DISCONNECT is a clean or abnormal termination notice, sendable by
// either side (OASIS MQTT v5.0 §3.14). A missing reason code means
// Normal disconnection (0x00) [MQTT-3.14.2.1]; the server must never
// include a Session Expiry Interval property here [MQTT-3.14.2-2].
type DISCONNECT struct {
	*FixedHeader

	ReasonCode ReasonCode
	Props      *Properties
}

func (pkt *DISCONNECT) Kind() byte { return 0xE }
func (pkt *DISCONNECT) String() string {
	return fmt.Sprintf("DISCONNECT reason=0x%02X", pkt.ReasonCode.Code)
}

func (pkt *DISCONNECT) Pack(w *bytes.Buffer) error {
	pkt.FixedHeader.Kind = pkt.Kind()
	buf := GetBuffer()
	defer PutBuffer(buf)

	if pkt.Version == VERSION500 && (pkt.ReasonCode.Code != CodeSuccess.Code || pkt.Props != nil) {
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

func (pkt *DISCONNECT) Unpack(buf *bytes.Buffer) error {
	pkt.ReasonCode = CodeSuccess
	if pkt.Version != VERSION500 || buf.Len() == 0 {
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
