package packet

import (
	"bytes"
	"testing"
)

func TestAckImplicitSuccessShorthand(t *testing.T) {
	fixed := &FixedHeader{Kind: 0x4, Version: VERSION500}

	var buf bytes.Buffer
	if err := packAck(fixed, 42, CodeSuccess, nil, &buf); err != nil {
		t.Fatalf("pack: %v", err)
	}
	if fixed.RemainingLength != 2 {
		t.Errorf("RemainingLength = %d, want 2 (implicit success shorthand)", fixed.RemainingLength)
	}

	body := buf.Bytes()[2:] // skip fixed header
	id, rc, _, err := unpackAck(fixed, bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if id != 42 || rc.Code != CodeSuccess.Code {
		t.Errorf("got id=%d reasonCode=0x%02X", id, rc.Code)
	}
}

func TestAckExplicitReasonCodeAndProperties(t *testing.T) {
	fixed := &FixedHeader{Kind: 0x4, Version: VERSION500}
	props := &Properties{ReasonString: "denied"}

	var buf bytes.Buffer
	if err := packAck(fixed, 7, ErrNotAuthorized, props, &buf); err != nil {
		t.Fatalf("pack: %v", err)
	}

	body := buf.Bytes()[2:]
	_, rc, gotProps, err := unpackAck(fixed, bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if rc.Code != ErrNotAuthorized.Code {
		t.Errorf("ReasonCode = 0x%02X, want 0x%02X", rc.Code, ErrNotAuthorized.Code)
	}
	if gotProps == nil || gotProps.ReasonString != "denied" {
		t.Errorf("Props = %+v, want ReasonString=denied", gotProps)
	}
}

func TestAckV311NeverCarriesReasonCode(t *testing.T) {
	fixed := &FixedHeader{Kind: 0x4, Version: VERSION311}

	var buf bytes.Buffer
	if err := packAck(fixed, 1, ErrNotAuthorized, nil, &buf); err != nil {
		t.Fatalf("pack: %v", err)
	}
	if fixed.RemainingLength != 2 {
		t.Errorf("v3.1.1 RemainingLength = %d, want 2 (no reason code ever)", fixed.RemainingLength)
	}
}
