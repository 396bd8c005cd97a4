package packet

import (
	"bytes"
	"testing"
)

func TestAUTHRoundtrip(t *testing.T) {
	pkt := &AUTH{
		FixedHeader: &FixedHeader{Version: VERSION500},
		ReasonCode:  CodeContinueAuthenticate,
		Props: &Properties{
			AuthenticationMethod: "SCRAM-SHA-1",
			AuthenticationData:   []byte{0x01, 0x02},
		},
	}

	var buf bytes.Buffer
	if err := pkt.Pack(&buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	decoded, err := Decode(VERSION500, &buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := decoded.(*AUTH)
	if got.ReasonCode.Code != CodeContinueAuthenticate.Code {
		t.Errorf("ReasonCode = 0x%02X, want 0x%02X", got.ReasonCode.Code, CodeContinueAuthenticate.Code)
	}
	if got.Props == nil || got.Props.AuthenticationMethod != "SCRAM-SHA-1" {
		t.Errorf("Props = %+v", got.Props)
	}
}

func TestAUTHRejectedOnV311(t *testing.T) {
	pkt := &AUTH{FixedHeader: &FixedHeader{Version: VERSION311}}
	if err := pkt.Pack(&bytes.Buffer{}); err != ErrUnsupportedProtocolVersion {
		t.Errorf("Pack() = %v, want ErrUnsupportedProtocolVersion", err)
	}
}
