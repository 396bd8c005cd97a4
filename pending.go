package mqtt5

import (
	"sync"

	"github.com/golang-io/mqtt5/packet"
)

// pendingRequests correlates SUBACK/UNSUBACK (and the single in-flight
// CONNACK) with the Facade call awaiting them, replacing the teacher's
// recv [0xF+1]chan packet.Packet channel array — which can only say "the
// next SUBACK belongs to whoever's listening" — with per-packet-ID
// correlation, required once more than one SUBSCRIBE/UNSUBSCRIBE can be
// outstanding at a time.
type pendingRequests struct {
	mu      sync.Mutex
	byID    map[uint16]chan packet.Packet
	connack chan packet.Packet
}

func newPendingRequests() *pendingRequests {
	return &pendingRequests{byID: make(map[uint16]chan packet.Packet)}
}

// await registers id and returns a channel that receives the matching
// SUBACK/UNSUBACK exactly once.
func (p *pendingRequests) await(id uint16) chan packet.Packet {
	ch := make(chan packet.Packet, 1)
	p.mu.Lock()
	p.byID[id] = ch
	p.mu.Unlock()
	return ch
}

// complete delivers pkt to the waiter registered for id, if any.
func (p *pendingRequests) complete(id uint16, pkt packet.Packet) {
	p.mu.Lock()
	ch, ok := p.byID[id]
	if ok {
		delete(p.byID, id)
	}
	p.mu.Unlock()
	if ok {
		ch <- pkt
	}
}

// cancel forgets id without delivering anything (used when a caller's
// context is cancelled before the ack arrives).
func (p *pendingRequests) cancel(id uint16) {
	p.mu.Lock()
	delete(p.byID, id)
	p.mu.Unlock()
}

func (p *pendingRequests) awaitConnack() chan packet.Packet {
	ch := make(chan packet.Packet, 1)
	p.mu.Lock()
	p.connack = ch
	p.mu.Unlock()
	return ch
}

func (p *pendingRequests) completeConnack(pkt packet.Packet) {
	p.mu.Lock()
	ch := p.connack
	p.connack = nil
	p.mu.Unlock()
	if ch != nil {
		ch <- pkt
	}
}
