package packet

import (
	"bytes"
	"testing"
)

func TestDISCONNECTImplicitNormal(t *testing.T) {
	pkt := &DISCONNECT{FixedHeader: &FixedHeader{Version: VERSION500}, ReasonCode: CodeSuccess}

	var buf bytes.Buffer
	if err := pkt.Pack(&buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if buf.Len() != 2 { // fixed header only, no variable header at all
		t.Errorf("len = %d, want 2 (implicit Normal disconnection)", buf.Len())
	}

	decoded, err := Decode(VERSION500, &buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := decoded.(*DISCONNECT)
	if got.ReasonCode.Code != CodeSuccess.Code {
		t.Errorf("ReasonCode = 0x%02X, want 0x00", got.ReasonCode.Code)
	}
}

func TestDISCONNECTWithReasonAndProperties(t *testing.T) {
	pkt := &DISCONNECT{
		FixedHeader: &FixedHeader{Version: VERSION500},
		ReasonCode:  ErrServerMoved,
		Props:       &Properties{ServerReference: "broker2.example.com"},
	}

	var buf bytes.Buffer
	if err := pkt.Pack(&buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	decoded, err := Decode(VERSION500, &buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := decoded.(*DISCONNECT)
	if got.ReasonCode.Code != ErrServerMoved.Code {
		t.Errorf("ReasonCode = 0x%02X, want 0x%02X", got.ReasonCode.Code, ErrServerMoved.Code)
	}
	if got.Props == nil || got.Props.ServerReference != "broker2.example.com" {
		t.Errorf("Props = %+v", got.Props)
	}
}
