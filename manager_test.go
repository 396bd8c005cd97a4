package mqtt5

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/golang-io/mqtt5/inflight"
	"github.com/golang-io/mqtt5/packet"
)

func TestResendOutstandingRetransmitsByPhase(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	w := newWriter(client, NewStats("resend-test"), 8)
	stop := make(chan struct{})
	go func() { _ = w.run(stop) }()
	defer close(stop)

	out := inflight.NewOutbound(10)
	m := &manager{out: out, w: w}

	pub := &packet.PUBLISH{
		FixedHeader: &packet.FixedHeader{Version: packet.VERSION500, Kind: PUBLISH, QoS: 1},
		PacketID:    7,
		Message:     &packet.Message{TopicName: "a/b", Content: []byte("x")},
	}
	recPub := &inflight.Record{ID: 7, Publish: pub, Phase: inflight.AwaitingPubAck, Done: make(chan inflight.Result, 1)}
	recComp := &inflight.Record{ID: 8, Phase: inflight.AwaitingPubComp, Done: make(chan inflight.Result, 1)}

	ctx := context.Background()
	if err := out.Insert(ctx, recPub); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := out.Insert(ctx, recComp); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	m.resendOutstanding()

	if recPub.Retries != 1 {
		t.Errorf("AwaitingPubAck record Retries = %d, want 1", recPub.Retries)
	}
	if recComp.Retries != 1 {
		t.Errorf("AwaitingPubComp record Retries = %d, want 1", recComp.Retries)
	}
	// the original PUBLISH must still carry Dup=0; resendOutstanding must
	// not mutate the stored record in place, only the copy it sends.
	if pub.FixedHeader.Dup != 0 {
		t.Errorf("stored PUBLISH Dup = %d, want 0 (unmutated)", pub.FixedHeader.Dup)
	}

	server.SetReadDeadline(time.Now().Add(2 * time.Second))
	var buf bytes.Buffer
	chunk := make([]byte, 128)
	var decoded []packet.Packet
	for len(decoded) < 2 {
		n, rerr := server.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		for {
			d, derr := packet.Decode(packet.VERSION500, &buf)
			if derr != nil {
				if !errors.Is(derr, packet.ErrShortBuffer) {
					t.Fatalf("decode: %v", derr)
				}
				break
			}
			decoded = append(decoded, d)
		}
		if rerr != nil && len(decoded) < 2 {
			t.Fatalf("read: %v", rerr)
		}
	}

	var sawPubrel, sawDupPublish bool
	for _, d := range decoded {
		switch p := d.(type) {
		case *packet.PUBREL:
			if p.PacketID == 8 {
				sawPubrel = true
			}
		case *packet.PUBLISH:
			if p.PacketID == 7 && p.FixedHeader.Dup == 1 {
				sawDupPublish = true
			}
		}
	}
	if !sawPubrel {
		t.Error("expected a retransmitted PUBREL for the AwaitingPubComp record")
	}
	if !sawDupPublish {
		t.Error("expected a dup PUBLISH retransmission for the AwaitingPubAck record")
	}
}

func TestKeepAliveAdoptsServerKeepAlive(t *testing.T) {
	client, _ := net.Pipe()
	defer client.Close()
	w := newWriter(client, NewStats("ka-adopt"), 1)
	ka := newKeepAlive(60, w)
	if d := time.Duration(ka.interval.Load()); d != 60*time.Second {
		t.Fatalf("interval = %s, want 60s", d)
	}
	ka.SetInterval(15)
	if d := time.Duration(ka.interval.Load()); d != 15*time.Second {
		t.Fatalf("interval after SetInterval = %s, want 15s", d)
	}
}
