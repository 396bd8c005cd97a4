package packet

import (
	"bytes"
	"fmt"
)

// Subscription is one entry of a SUBSCRIBE payload: a topic filter and
// its subscription options (OASIS MQTT v5.0 §3.8.3).
type Subscription struct {
	TopicFilter string

	MaximumQoS        uint8 // bits 1-0
	NoLocal           uint8 // bit 2, v5.0 only
	RetainAsPublished uint8 // bit 3, v5.0 only
	RetainHandling    uint8 // bits 5-4, v5.0 only
}

func (s *Subscription) String() string { return fmt.Sprintf("%s@%d", s.TopicFilter, s.MaximumQoS) }

func (s *Subscription) packOptions() byte {
	return s.MaximumQoS&0x03 | s.NoLocal<<2&0x04 | s.RetainAsPublished<<3&0x08 | s.RetainHandling<<4&0x30
}

// SUBSCRIBE requests one or more topic filter subscriptions (OASIS MQTT
// v5.0 §3.8). Its fixed header flags are fixed at Dup=0,QoS=1,Retain=0.
type SUBSCRIBE struct {
	*FixedHeader

	PacketID      uint16
	Props         *Properties
	Subscriptions []Subscription
}

func (pkt *SUBSCRIBE) Kind() byte { return 0x8 }

func (pkt *SUBSCRIBE) Pack(w *bytes.Buffer) error {
	pkt.FixedHeader.Kind = pkt.Kind()
	if len(pkt.Subscriptions) == 0 {
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
	for _, s := range pkt.Subscriptions {
		if s.TopicFilter == "" {
			return ErrProtocolViolationEmptyTopic
		}
		buf.Write(encodeUTF8(s.TopicFilter))
		buf.WriteByte(s.packOptions())
	}

	pkt.FixedHeader.Dup, pkt.FixedHeader.QoS, pkt.FixedHeader.Retain = 0, 1, 0
	pkt.FixedHeader.RemainingLength = uint32(buf.Len())
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (pkt *SUBSCRIBE) Unpack(buf *bytes.Buffer) error {
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
		topic, _, err := decodeUTF8[string](buf)
		if err != nil {
			return err
		}
		options, err := buf.ReadByte()
		if err != nil {
			return ErrShortBuffer
		}
		s := Subscription{
			TopicFilter:       topic,
			MaximumQoS:        options & 0b00000011,
			NoLocal:           options & 0b00000100 >> 2,
			RetainAsPublished: options & 0b00001000 >> 3,
			RetainHandling:    options & 0b00110000 >> 4,
		}
		if s.MaximumQoS > 0x02 {
			return ErrProtocolViolationQoSOutOfRange
		}
		if options&0b11000000 != 0 {
			return ErrMalformedFlags
		}
		pkt.Subscriptions = append(pkt.Subscriptions, s)
	}
	if len(pkt.Subscriptions) == 0 {
		return ErrProtocolViolationNoFilters
	}
	return nil
}
