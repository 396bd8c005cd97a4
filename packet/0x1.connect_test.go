package packet

import (
	"bytes"
	"testing"
)

func TestCONNECTRoundtripV500(t *testing.T) {
	pkt := &CONNECT{
		FixedHeader: &FixedHeader{Version: VERSION500},
		ClientID:    "client-1",
		KeepAlive:   60,
		Username:    "alice",
		Password:    "secret",
		Props:       &Properties{SessionExpiryInterval: u32p(3600)},
	}
	pkt.ConnectFlags = 0x02 // CleanStart

	var buf bytes.Buffer
	if err := pkt.Pack(&buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	decoded, err := Decode(VERSION500, &buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got, ok := decoded.(*CONNECT)
	if !ok {
		t.Fatalf("Decode returned %T, want *CONNECT", decoded)
	}
	if got.ClientID != pkt.ClientID || got.KeepAlive != pkt.KeepAlive {
		t.Errorf("got ClientID=%q KeepAlive=%d", got.ClientID, got.KeepAlive)
	}
	if got.Username != "alice" || got.Password != "secret" {
		t.Errorf("got Username=%q Password=%q", got.Username, got.Password)
	}
	if !got.ConnectFlags.CleanStart() {
		t.Error("CleanStart should be set")
	}
	if got.Props == nil || got.Props.SessionExpiryInterval == nil || *got.Props.SessionExpiryInterval != 3600 {
		t.Errorf("Props = %+v", got.Props)
	}
}

func TestCONNECTWithWill(t *testing.T) {
	pkt := &CONNECT{
		FixedHeader: &FixedHeader{Version: VERSION500},
		ClientID:    "client-2",
		WillTopic:   "last/will",
		WillPayload: []byte("goodbye"),
		WillProps:   &Properties{WillDelayInterval: u32p(30)},
	}
	pkt.ConnectFlags = 0x0C | 0x04 // WillFlag + QoS1

	var buf bytes.Buffer
	if err := pkt.Pack(&buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	decoded, err := Decode(VERSION500, &buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := decoded.(*CONNECT)
	if got.WillTopic != "last/will" || string(got.WillPayload) != "goodbye" {
		t.Errorf("got WillTopic=%q WillPayload=%q", got.WillTopic, got.WillPayload)
	}
}

func TestCONNECTEmptyClientIDIsAutoAssigned(t *testing.T) {
	pkt := &CONNECT{FixedHeader: &FixedHeader{Version: VERSION311}}

	var buf bytes.Buffer
	if err := pkt.Pack(&buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	decoded, err := Decode(VERSION311, &buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := decoded.(*CONNECT)
	if got.ClientID == "" {
		t.Error("empty ClientID should be auto-assigned on Unpack")
	}
}

func TestCONNECTBadProtocolName(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0x00, 0x04, 'M', 'Q', 'X', 'X', VERSION500, 0x00, 0x00, 0x00, 0x00})
	pkt := &CONNECT{FixedHeader: &FixedHeader{Version: VERSION500}}
	if err := pkt.Unpack(buf); err == nil {
		t.Error("Unpack() with bad protocol name should fail")
	}
}

func TestCONNECTReservedFlagBitRejected(t *testing.T) {
	buf := bytes.NewBuffer(append(append([]byte{}, NAME...), VERSION500, 0x01, 0x00, 0x3C, 0x00, 0x00, 0x00, 0x00))
	pkt := &CONNECT{FixedHeader: &FixedHeader{Version: VERSION500}}
	if err := pkt.Unpack(buf); err != ErrMalformedConnectFlagsReserved {
		t.Errorf("Unpack() = %v, want ErrMalformedConnectFlagsReserved", err)
	}
}
