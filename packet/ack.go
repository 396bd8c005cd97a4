package packet

import "bytes"

// packAck and unpackAck implement the shared variable-header shape of
// PUBACK, PUBREC, PUBREL and PUBCOMP (OASIS MQTT v5.0 §3.4-§3.7): a
// packet identifier, then — only if the reason code is not Success or
// properties are present — a single reason code byte and a property
// section. When the whole packet is exactly 2 bytes, the reason code is
// implicitly Success with no properties [MQTT-3.4.2-1] (and the
// equivalent clauses for PUBREC, PUBREL, PUBCOMP).
func packAck(fixed *FixedHeader, id uint16, reasonCode ReasonCode, props *Properties, w *bytes.Buffer) error {
	buf := GetBuffer()
	defer PutBuffer(buf)

	buf.Write(i2b(id))
	if fixed.Version == VERSION500 && (reasonCode.Code != CodeSuccess.Code || props != nil) {
		buf.WriteByte(reasonCode.Code)
		if props == nil {
			props = &Properties{}
		}
		if err := props.Pack(buf); err != nil {
			return err
		}
	}
	fixed.RemainingLength = uint32(buf.Len())
	if err := fixed.Pack(w); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func unpackAck(fixed *FixedHeader, buf *bytes.Buffer) (id uint16, reasonCode ReasonCode, props *Properties, err error) {
	id, err = readU16(buf)
	if err != nil {
		return 0, ReasonCode{}, nil, err
	}
	reasonCode = CodeSuccess

	if fixed.Version != VERSION500 || fixed.RemainingLength == 2 {
		return id, reasonCode, nil, nil
	}
	code, err := buf.ReadByte()
	if err != nil {
		return 0, ReasonCode{}, nil, ErrShortBuffer
	}
	reasonCode.Code = code

	if fixed.RemainingLength > 3 {
		props = &Properties{}
		if err := props.Unpack(buf); err != nil {
			return 0, ReasonCode{}, nil, err
		}
	}
	return id, reasonCode, props, nil
}
