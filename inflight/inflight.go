// Package inflight tracks outbound QoS 1/2 publishes awaiting
// acknowledgement and inbound QoS 2 publishes awaiting PUBREL, the way
// the teacher's InFight map did for a single direction.
//
// Outbound is capacity-gated on a capacity fixed at construction: Insert
// blocks until a slot is free or the context is cancelled. Inbound has
// no capacity limit; it's bounded only by how many QoS 2 PUBLISHes the
// broker chooses to have outstanding.
package inflight

import (
	"context"
	"errors"
	"sync"

	"github.com/golang-io/mqtt5/packet"
)

// ErrNotFound is returned by Remove when no record is held for id.
var ErrNotFound = errors.New("inflight: packet identifier not found")

// Phase tracks where an outbound QoS 1/2 publish sits in its handshake.
type Phase int

const (
	AwaitingPubAck Phase = iota
	AwaitingPubRec
	AwaitingPubComp
)

// Record is an outbound in-flight publish awaiting its terminal ack.
type Record struct {
	ID      uint16
	Publish *packet.PUBLISH // the original PUBLISH, retained for dup retransmission
	Phase   Phase
	Retries int
	Done    chan Result // sent once and closed, on terminal ack or session loss
}

// Result is delivered to Record.Done when an outbound publish settles.
type Result struct {
	ReasonCode   uint8
	ReasonString string
	Err          error // set (KindSessionLost) when the broker reports no session
}

// Outbound is the capacity-gated registry for outbound QoS 1/2 publishes.
type Outbound struct {
	mu       sync.Mutex
	records  map[uint16]*Record
	capacity int
	sem      chan struct{}
}

// NewOutbound creates an Outbound registry honoring the given capacity;
// a capacity of 0 or less means 65535, the MQTT 5 Receive Maximum
// default.
func NewOutbound(capacity int) *Outbound {
	if capacity <= 0 {
		capacity = 65535
	}
	return &Outbound{
		records:  make(map[uint16]*Record),
		capacity: capacity,
		sem:      make(chan struct{}, capacity),
	}
}

// Insert blocks until a capacity slot is available, then registers rec
// under rec.ID. Returns ctx.Err() if ctx is cancelled first.
func (o *Outbound) Insert(ctx context.Context, rec *Record) error {
	select {
	case o.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	o.mu.Lock()
	o.records[rec.ID] = rec
	o.mu.Unlock()
	return nil
}

// Remove releases the slot held by id and returns its record.
func (o *Outbound) Remove(id uint16) (*Record, error) {
	o.mu.Lock()
	rec, ok := o.records[id]
	if ok {
		delete(o.records, id)
	}
	o.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	<-o.sem
	return rec, nil
}

// Get returns the record for id without removing it, for Dispatcher
// phase transitions (e.g. PUBREC moving a record to AwaitingPubComp).
func (o *Outbound) Get(id uint16) (*Record, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	rec, ok := o.records[id]
	return rec, ok
}

// All returns every currently-held record without removing it, for a
// reconnect that found the session present and must retransmit in place.
func (o *Outbound) All() []*Record {
	o.mu.Lock()
	defer o.mu.Unlock()
	recs := make([]*Record, 0, len(o.records))
	for _, rec := range o.records {
		recs = append(recs, rec)
	}
	return recs
}

// Drain removes and returns every currently-held record, used when a
// CONNACK reports no session so that every record can be failed.
func (o *Outbound) Drain() []*Record {
	o.mu.Lock()
	defer o.mu.Unlock()
	recs := make([]*Record, 0, len(o.records))
	for id, rec := range o.records {
		recs = append(recs, rec)
		delete(o.records, id)
		<-o.sem
	}
	return recs
}

// Len reports the number of outstanding outbound records.
func (o *Outbound) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.records)
}

// Inbound tracks QoS 2 packet identifiers delivered to the application
// and awaiting PUBREL, so a duplicate PUBLISH with dup=true is not
// redelivered. No capacity limit: bounded only by broker behavior.
type Inbound struct {
	mu   sync.Mutex
	seen map[uint16]bool
}

// NewInbound creates an empty Inbound registry.
func NewInbound() *Inbound {
	return &Inbound{seen: make(map[uint16]bool)}
}

// MarkDelivered records that id's PUBLISH was delivered to the
// application; it reports whether id was new (false means this is a
// duplicate the application has already seen).
func (in *Inbound) MarkDelivered(id uint16) (isNew bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.seen[id] {
		return false
	}
	in.seen[id] = true
	return true
}

// Clear forgets id once PUBREL has been received and PUBCOMP sent.
func (in *Inbound) Clear(id uint16) {
	in.mu.Lock()
	delete(in.seen, id)
	in.mu.Unlock()
}
