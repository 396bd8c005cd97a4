package packet

import (
	"bytes"
	"testing"
)

func TestPUBACKRoundtrip(t *testing.T) {
	pkt := &PUBACK{FixedHeader: &FixedHeader{Kind: 0x4, Version: VERSION500}}
	pkt.PacketID = 100
	pkt.ReasonCode = CodeSuccess

	var buf bytes.Buffer
	if err := pkt.Pack(&buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	decoded, err := Decode(VERSION500, &buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got, ok := decoded.(*PUBACK)
	if !ok {
		t.Fatalf("Decode returned %T, want *PUBACK", decoded)
	}
	if got.Kind() != 0x4 || got.PacketID != 100 {
		t.Errorf("got %+v", got)
	}
}
