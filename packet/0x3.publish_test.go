package packet

import (
	"bytes"
	"testing"
)

func TestPUBLISHRoundtripQoS0(t *testing.T) {
	pkt := &PUBLISH{
		FixedHeader: &FixedHeader{Version: VERSION500},
		Message:     &Message{TopicName: "sensors/temp", Content: []byte("21.5")},
		Props:       &Properties{ContentType: "text/plain"},
	}

	var buf bytes.Buffer
	if err := pkt.Pack(&buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	decoded, err := Decode(VERSION500, &buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got, ok := decoded.(*PUBLISH)
	if !ok {
		t.Fatalf("Decode returned %T, want *PUBLISH", decoded)
	}
	if got.Message.TopicName != "sensors/temp" || string(got.Message.Content) != "21.5" {
		t.Errorf("got %+v", got.Message)
	}
}

func TestPUBLISHRoundtripQoS1WithPacketID(t *testing.T) {
	pkt := &PUBLISH{
		FixedHeader: &FixedHeader{Version: VERSION311, QoS: 1},
		PacketID:    55,
		Message:     &Message{TopicName: "a/b", Content: []byte("x")},
	}

	var buf bytes.Buffer
	if err := pkt.Pack(&buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	decoded, err := Decode(VERSION311, &buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := decoded.(*PUBLISH)
	if got.PacketID != 55 {
		t.Errorf("PacketID = %d, want 55", got.PacketID)
	}
}

func TestPUBLISHQoS1WithZeroPacketIDRejected(t *testing.T) {
	pkt := &PUBLISH{
		FixedHeader: &FixedHeader{Version: VERSION311, QoS: 1},
		Message:     &Message{TopicName: "a/b", Content: []byte("x")},
	}
	var buf bytes.Buffer
	if err := pkt.Pack(&buf); err != ErrProtocolViolationNoPacketID {
		t.Errorf("Pack() = %v, want ErrProtocolViolationNoPacketID", err)
	}
}

func TestPUBLISHDupOnQoS0Rejected(t *testing.T) {
	pkt := &PUBLISH{
		FixedHeader: &FixedHeader{Version: VERSION311, Dup: 1},
		Message:     &Message{TopicName: "a/b", Content: []byte("x")},
	}
	if err := pkt.Pack(&bytes.Buffer{}); err != ErrProtocolViolationDupOnQoS0 {
		t.Errorf("Pack() = %v, want ErrProtocolViolationDupOnQoS0", err)
	}
}

func TestPUBLISHWildcardTopicRejected(t *testing.T) {
	for _, topic := range []string{"a/+/b", "a/#"} {
		pkt := &PUBLISH{
			FixedHeader: &FixedHeader{Version: VERSION311},
			Message:     &Message{TopicName: topic, Content: []byte("x")},
		}
		if err := pkt.Pack(&bytes.Buffer{}); err != ErrProtocolViolationWildcardInTopic {
			t.Errorf("Pack(%q) = %v, want ErrProtocolViolationWildcardInTopic", topic, err)
		}
	}
}

func TestPUBLISHEmptyTopicRejected(t *testing.T) {
	pkt := &PUBLISH{
		FixedHeader: &FixedHeader{Version: VERSION311},
		Message:     &Message{TopicName: "", Content: []byte("x")},
	}
	if err := pkt.Pack(&bytes.Buffer{}); err != ErrProtocolViolationEmptyTopic {
		t.Errorf("Pack() = %v, want ErrProtocolViolationEmptyTopic", err)
	}
}

func TestPUBLISHUnpackEmptyTopicRejectedWithoutAlias(t *testing.T) {
	var body bytes.Buffer
	body.Write(encodeUTF8(""))
	body.Write(mustEncodeLength(0)) // empty properties section
	pkt := &PUBLISH{FixedHeader: &FixedHeader{Version: VERSION500}}
	if err := pkt.Unpack(&body); err != ErrProtocolViolationEmptyTopic {
		t.Errorf("Unpack() = %v, want ErrProtocolViolationEmptyTopic", err)
	}
}

func TestPUBLISHUnpackEmptyTopicAllowedWithAlias(t *testing.T) {
	alias := uint16(7)
	props := &Properties{TopicAlias: &alias}
	var propBuf bytes.Buffer
	if err := props.Pack(&propBuf); err != nil {
		t.Fatalf("Properties.Pack: %v", err)
	}

	var body bytes.Buffer
	body.Write(encodeUTF8(""))
	body.Write(propBuf.Bytes())
	body.WriteString("payload")

	pkt := &PUBLISH{FixedHeader: &FixedHeader{Version: VERSION500}}
	if err := pkt.Unpack(&body); err != nil {
		t.Fatalf("Unpack() = %v, want nil", err)
	}
	if pkt.Props == nil || pkt.Props.TopicAlias == nil || *pkt.Props.TopicAlias != alias {
		t.Errorf("TopicAlias = %+v, want %d", pkt.Props, alias)
	}
	if string(pkt.Message.Content) != "payload" {
		t.Errorf("Content = %q, want payload", pkt.Message.Content)
	}
}
