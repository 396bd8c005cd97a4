package packet

import "bytes"

// SUBACK acknowledges a SUBSCRIBE, one reason code per requested filter
// in the same order (OASIS MQTT v5.0 §3.9). Reason codes span the full
// 0x00-0xA2 range (granted QoS or any of the failure codes in Table
// 3-8); unlike PUBACK-family acks there is no implicit-success shorthand.
type SUBACK struct {
	*FixedHeader

	PacketID   uint16
	Props      *Properties
	ReasonCode []ReasonCode
}

func (pkt *SUBACK) Kind() byte { return 0x9 }

func (pkt *SUBACK) Pack(w *bytes.Buffer) error {
	pkt.FixedHeader.Kind = pkt.Kind()
	if len(pkt.ReasonCode) == 0 {
		return ErrProtocolViolationNoFilters
	}
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
	}
	for _, rc := range pkt.ReasonCode {
		buf.WriteByte(rc.Code)
	}

	pkt.FixedHeader.RemainingLength = uint32(buf.Len())
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (pkt *SUBACK) Unpack(buf *bytes.Buffer) error {
	id, err := readU16(buf)
	if err != nil {
		return err
	}
	pkt.PacketID = id

	if pkt.Version == VERSION500 {
		pkt.Props = &Properties{}
		if err := pkt.Props.Unpack(buf); err != nil {
			return err
		}
	}

	for buf.Len() > 0 {
		code, err := buf.ReadByte()
		if err != nil {
			return ErrShortBuffer
		}
		pkt.ReasonCode = append(pkt.ReasonCode, ReasonCode{Code: code})
	}
	if len(pkt.ReasonCode) == 0 {
		return ErrProtocolViolationNoFilters
	}
	return nil
}
