package mqtt5

import (
	"sync/atomic"
	"time"

	"github.com/golang-io/mqtt5/packet"
)

// writer owns the transport's write half exclusively and drains a single
// bounded, FIFO outbound queue, grounded on the teacher's direct
// req.Pack(c.conn.rwc) calls scattered across Connect/Subscribe/
// SubmitMessage/Disconnect, now funneled through one queue so the Facade,
// Keep-Alive, and Dispatcher never write the socket directly.
type writer struct {
	stream       ClientStream
	stats        *Stats
	queue        chan packet.Packet
	lastActivity atomic.Int64 // unix nanos
}

func newWriter(stream ClientStream, stats *Stats, queueSize int) *writer {
	if queueSize <= 0 {
		queueSize = 256
	}
	w := &writer{stream: stream, stats: stats, queue: make(chan packet.Packet, queueSize)}
	w.lastActivity.Store(time.Now().UnixNano())
	return w
}

// enqueue adds pkt to the outbound queue in FIFO order, blocking if the
// queue is full (the Facade's backpressure point per spec.md §5).
func (w *writer) enqueue(pkt packet.Packet) {
	w.queue <- pkt
}

// run drains the queue until stop is closed or a write fails.
func (w *writer) run(stop <-chan struct{}) error {
	for {
		select {
		case <-stop:
			return nil
		case pkt := <-w.queue:
			encoded, err := packet.Encode(pkt)
			if err != nil {
				return err
			}
			if _, err := w.stream.Write(encoded); err != nil {
				return err
			}
			w.lastActivity.Store(time.Now().UnixNano())
			if w.stats != nil {
				w.stats.PacketsSent.Inc()
				w.stats.BytesSent.Add(float64(len(encoded)))
			}
		}
	}
}

// idleSince reports how long it has been since the last successful
// write, for the Keep-Alive timer.
func (w *writer) idleSince() time.Duration {
	last := w.lastActivity.Load()
	return time.Since(time.Unix(0, last))
}
