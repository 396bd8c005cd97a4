package packet

import "bytes"

// UNSUBACK acknowledges an UNSUBSCRIBE, one reason code per topic filter
// in the same order (OASIS MQTT v5.0 §3.11). v3.1.1 has no payload at
// all; v5.0 always carries one reason code per filter, even on success.
type UNSUBACK struct {
	*FixedHeader

	PacketID   uint16
	Props      *Properties
	ReasonCode []ReasonCode
}

func (pkt *UNSUBACK) Kind() byte { return 0xB }

func (pkt *UNSUBACK) Pack(w *bytes.Buffer) error {
	pkt.FixedHeader.Kind = pkt.Kind()
	buf := GetBuffer()
	defer PutBuffer(buf)

	buf.Write(i2b(pkt.PacketID))
	if pkt.Version == VERSION500 {
		if pkt.Props == nil {
			pkt.Props = &Properties{}
		}
		if err := pkt.Props.Pack(buf); err != nil {
			return err
		}
		for _, rc := range pkt.ReasonCode {
			buf.WriteByte(rc.Code)
		}
	}

	pkt.FixedHeader.RemainingLength = uint32(buf.Len())
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (pkt *UNSUBACK) Unpack(buf *bytes.Buffer) error {
	id, err := readU16(buf)
	if err != nil {
		return err
	}
	pkt.PacketID = id

	switch pkt.Version {
	case VERSION500:
		pkt.Props = &Properties{}
		if err := pkt.Props.Unpack(buf); err != nil {
			return err
		}
		for buf.Len() > 0 {
			code, err := buf.ReadByte()
			if err != nil {
				return ErrShortBuffer
			}
			pkt.ReasonCode = append(pkt.ReasonCode, ReasonCode{Code: code})
		}
	case VERSION311:
	case VERSION310:
		return ErrUnsupportedProtocolVersion
	default:
		return ErrMalformedProtocolVersion
	}
	return nil
}
