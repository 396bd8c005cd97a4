package packet

import (
	"bytes"
	"testing"
)

func TestUNSUBACKRoundtripV500(t *testing.T) {
	// Unlike v3.1.1, a v5.0 UNSUBACK always carries one reason code per
	// filter, even when every one of them succeeded.
	pkt := &UNSUBACK{
		FixedHeader: &FixedHeader{Version: VERSION500},
		PacketID:    8,
		ReasonCode:  []ReasonCode{CodeSuccess, CodeNoSubscriptionExisted},
	}

	var buf bytes.Buffer
	if err := pkt.Pack(&buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	decoded, err := Decode(VERSION500, &buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := decoded.(*UNSUBACK)
	if got.PacketID != 8 || len(got.ReasonCode) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got.ReasonCode[1].Code != CodeNoSubscriptionExisted.Code {
		t.Errorf("ReasonCode[1] = 0x%02X, want 0x%02X", got.ReasonCode[1].Code, CodeNoSubscriptionExisted.Code)
	}
}

func TestUNSUBACKRoundtripV311HasNoPayload(t *testing.T) {
	pkt := &UNSUBACK{FixedHeader: &FixedHeader{Version: VERSION311}, PacketID: 9}

	var buf bytes.Buffer
	if err := pkt.Pack(&buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if buf.Len() != 4 { // fixed header (2) + packet ID (2), no payload
		t.Errorf("v3.1.1 UNSUBACK length = %d, want 4", buf.Len())
	}
	decoded, err := Decode(VERSION311, &buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.(*UNSUBACK).PacketID != 9 {
		t.Errorf("PacketID mismatch")
	}
}
