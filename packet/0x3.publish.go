package packet

import (
	"fmt"
	"strings"

	"bytes"
)

// Message is the application-level payload carried by a PUBLISH packet:
// a topic name and content, independent of the wire encoding (OASIS MQTT
// v5.0 §3.3.3). The root package's public API exchanges Messages rather
// than raw PUBLISH packets.
type Message struct {
	TopicName string
	Content   []byte
}

func (m *Message) String() string { return fmt.Sprintf("%s # %s", m.TopicName, m.Content) }

// PUBLISH transports an application message between client and server
// (OASIS MQTT v5.0 §3.3). The fixed header's Dup, QoS and Retain bits are
// the only place those semantics live; QoS 0 PUBLISH never carries a
// packet identifier [MQTT-2.3.1-5].
type PUBLISH struct {
	*FixedHeader

	PacketID uint16
	Message  *Message
	Props    *Properties
}

func (pkt *PUBLISH) Kind() byte { return 0x3 }

func (pkt *PUBLISH) Pack(w *bytes.Buffer) error {
	pkt.FixedHeader.Kind = pkt.Kind()
	buf := GetBuffer()
	defer PutBuffer(buf)

	if pkt.FixedHeader.QoS == 3 {
		return ErrProtocolViolationQoSOutOfRange
	}
	if pkt.Message.TopicName == "" {
		return ErrProtocolViolationEmptyTopic
	}
	if strings.ContainsAny(pkt.Message.TopicName, "+#") {
		return ErrProtocolViolationWildcardInTopic
	}

	buf.Write(encodeUTF8(pkt.Message.TopicName))
	if pkt.FixedHeader.QoS > 0 {
		if pkt.PacketID == 0 {
			return ErrProtocolViolationNoPacketID
		}
		buf.Write(i2b(pkt.PacketID))
	} else if pkt.FixedHeader.Dup != 0 {
		// DUP must be 0 for all QoS 0 messages [MQTT-3.3.1-2].
		return ErrProtocolViolationDupOnQoS0
	}

	if pkt.Version == VERSION500 {
		if pkt.Props == nil {
			pkt.Props = &Properties{}
		}
		if err := pkt.Props.Pack(buf); err != nil {
			return err
		}
	}

	buf.Write(pkt.Message.Content)

	pkt.FixedHeader.RemainingLength = uint32(buf.Len())
	if err := pkt.FixedHeader.Pack(w); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (pkt *PUBLISH) Unpack(buf *bytes.Buffer) error {
	topic, _, err := decodeUTF8[string](buf)
	if err != nil {
		return err
	}
	// A topic name in a PUBLISH must not contain wildcard characters
	// [MQTT-3.3.2-2].
	if strings.ContainsAny(topic, "+#") {
		return ErrProtocolViolationWildcardInTopic
	}
	pkt.Message = &Message{TopicName: topic}

	if pkt.FixedHeader.QoS > 0 {
		id, err := readU16(buf)
		if err != nil {
			return err
		}
		if id == 0 {
			return ErrProtocolViolationNoPacketID
		}
		pkt.PacketID = id
	}

	if pkt.Version == VERSION500 {
		pkt.Props = &Properties{}
		if err := pkt.Props.Unpack(buf); err != nil {
			return err
		}
	}

	// An empty topic name is only legal alongside a Topic Alias
	// [MQTT-3.3.2-1]/[MQTT-3.3.2-19]; without one, it's malformed.
	if topic == "" && (pkt.Props == nil || pkt.Props.TopicAlias == nil) {
		return ErrProtocolViolationEmptyTopic
	}

	pkt.Message.Content = append([]byte(nil), buf.Bytes()...)
	return nil
}
