package packet

import "bytes"

// UNSUBSCRIBE removes one or more existing subscriptions (OASIS MQTT
// v5.0 §3.10). Its fixed header flags are fixed at Dup=0,QoS=1,Retain=0.
type UNSUBSCRIBE struct {
	*FixedHeader

	PacketID      uint16
	Props         *Properties
	Subscriptions []Subscription
}

func (pkt *UNSUBSCRIBE) Kind() byte { return 0xA }

func (pkt *UNSUBSCRIBE) Pack(w *bytes.Buffer) error {
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
	}

	pkt.FixedHeader.Dup, pkt.FixedHeader.QoS, pkt.FixedHeader.Retain = 0, 1, 0
	pkt.FixedHeader.RemainingLength = uint32(buf.Len())
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (pkt *UNSUBSCRIBE) Unpack(buf *bytes.Buffer) error {
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
		pkt.Subscriptions = append(pkt.Subscriptions, Subscription{TopicFilter: topic})
	}
	if len(pkt.Subscriptions) == 0 {
		return ErrProtocolViolationNoFilters
	}
	return nil
}
