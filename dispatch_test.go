package mqtt5

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/golang-io/mqtt5/inflight"
	"github.com/golang-io/mqtt5/packet"
	"github.com/golang-io/mqtt5/topic"
)

func newTestDispatcher(t *testing.T) (*dispatcher, *writer, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() { client.Close(); server.Close() })

	w := newWriter(client, NewStats("dispatch-test"), 4)
	stop := make(chan struct{})
	t.Cleanup(func() { close(stop) })
	go func() { _ = w.run(stop) }()

	go func() {
		buf := make([]byte, 256)
		for {
			if _, err := server.Read(buf); err != nil {
				return
			}
		}
	}()

	out := inflight.NewOutbound(10)
	in := inflight.NewInbound()
	subs := topic.NewRegistry()
	pending := newPendingRequests()
	ka := newKeepAlive(0, w)
	return newDispatcher("test-client", out, in, subs, pending, w, ka, nil), w, server
}

func TestDispatcherDeliversQoS0Publish(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	var got string
	d.subs.Add("a/b", 0, func(topicName string, payload []byte, qos uint8) { got = topicName })

	err := d.handle(&packet.PUBLISH{
		FixedHeader: &packet.FixedHeader{Version: packet.VERSION500, Kind: PUBLISH, QoS: 0},
		Message:     &packet.Message{TopicName: "a/b", Content: []byte("x")},
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got != "a/b" {
		t.Errorf("handler not invoked, got %q", got)
	}
}

func TestDispatcherQoS2SuppressesDuplicateDelivery(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	count := 0
	d.subs.Add("a/b", 2, func(topicName string, payload []byte, qos uint8) { count++ })

	pub := &packet.PUBLISH{
		FixedHeader: &packet.FixedHeader{Version: packet.VERSION500, Kind: PUBLISH, QoS: 2},
		PacketID:    5,
		Message:     &packet.Message{TopicName: "a/b", Content: []byte("x")},
	}
	if err := d.handle(pub); err != nil {
		t.Fatalf("handle #1: %v", err)
	}
	if err := d.handle(pub); err != nil {
		t.Fatalf("handle #2 (duplicate): %v", err)
	}
	if count != 1 {
		t.Errorf("handler invoked %d times, want 1", count)
	}
}

func TestDispatcherCompletesOutboundOnPubAck(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	rec := &inflight.Record{ID: 9, Phase: inflight.AwaitingPubAck, Done: make(chan inflight.Result, 1)}
	if err := d.out.Insert(context.Background(), rec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := d.handle(&packet.PUBACK{
		FixedHeader: &packet.FixedHeader{Version: packet.VERSION500, Kind: PUBACK},
		PacketID:    9,
		ReasonCode:  packet.CodeSuccess,
	}); err != nil {
		t.Fatalf("handle: %v", err)
	}

	select {
	case res := <-rec.Done:
		if res.Err != nil {
			t.Errorf("unexpected error: %v", res.Err)
		}
	case <-time.After(time.Second):
		t.Fatal("PUBACK did not complete the outbound record")
	}
}

func TestDispatcherAdvancesQoS2SenderOnPubRec(t *testing.T) {
	d, w, server := newTestDispatcher(t)
	_ = w
	rec := &inflight.Record{ID: 3, Phase: inflight.AwaitingPubRec, Done: make(chan inflight.Result, 1)}
	if err := d.out.Insert(context.Background(), rec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := d.handle(&packet.PUBREC{
		FixedHeader: &packet.FixedHeader{Version: packet.VERSION500, Kind: PUBREC},
		PacketID:    3,
	}); err != nil {
		t.Fatalf("handle: %v", err)
	}

	got, ok := d.out.Get(3)
	if !ok || got.Phase != inflight.AwaitingPubComp {
		t.Errorf("expected record phase AwaitingPubComp, got %+v ok=%v", got, ok)
	}
	_ = server
}
