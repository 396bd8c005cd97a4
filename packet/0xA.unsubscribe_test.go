package packet

import (
	"bytes"
	"testing"
)

func TestUNSUBSCRIBERoundtrip(t *testing.T) {
	pkt := &UNSUBSCRIBE{
		FixedHeader:   &FixedHeader{Version: VERSION500},
		PacketID:      33,
		Subscriptions: []Subscription{{TopicFilter: "a/b"}, {TopicFilter: "c/d"}},
	}

	var buf bytes.Buffer
	if err := pkt.Pack(&buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	decoded, err := Decode(VERSION500, &buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := decoded.(*UNSUBSCRIBE)
	if got.PacketID != 33 || len(got.Subscriptions) != 2 || got.Subscriptions[1].TopicFilter != "c/d" {
		t.Errorf("got %+v", got)
	}
}

func TestUNSUBSCRIBEPropertiesComeBeforePayload(t *testing.T) {
	// §3.10.3: PacketID, then Properties, then the topic filter payload.
	// A decoder that assumed the old (wrong) field order would misparse
	// the first topic filter as part of the property section.
	pkt := &UNSUBSCRIBE{
		FixedHeader:   &FixedHeader{Version: VERSION500},
		PacketID:      1,
		Props:         &Properties{UserProperties: []UserProperty{{Name: "k", Value: "v"}}},
		Subscriptions: []Subscription{{TopicFilter: "x/y"}},
	}
	var buf bytes.Buffer
	if err := pkt.Pack(&buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	decoded, err := Decode(VERSION500, &buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := decoded.(*UNSUBSCRIBE)
	if len(got.Subscriptions) != 1 || got.Subscriptions[0].TopicFilter != "x/y" {
		t.Errorf("got Subscriptions = %+v", got.Subscriptions)
	}
}

func TestUNSUBSCRIBENoFiltersRejected(t *testing.T) {
	pkt := &UNSUBSCRIBE{FixedHeader: &FixedHeader{Version: VERSION500}, PacketID: 1}
	if err := pkt.Pack(&bytes.Buffer{}); err != ErrProtocolViolationNoFilters {
		t.Errorf("Pack() = %v, want ErrProtocolViolationNoFilters", err)
	}
}
