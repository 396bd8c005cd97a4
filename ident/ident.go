// Package ident allocates and frees the 16-bit packet identifiers MQTT
// uses to correlate QoS 1/2 PUBLISH, SUBSCRIBE, and UNSUBSCRIBE requests
// with their acknowledgements. Identifiers live in the range 1-65535;
// zero is never issued (the wire format reserves it).
package ident

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrExhausted is returned by Allocate when all 65,535 identifiers are
// currently in use.
var ErrExhausted = errors.New("ident: no free packet identifier available")

const maxID = 65535

// Allocator hands out packet identifiers. The zero value is not usable;
// construct one with New. Safe for concurrent use.
//
// Recently freed identifiers are served first out of a small reuse queue,
// which is the common case under steady-state load (ack arrives, id is
// released, next publish reuses it immediately). On a queue miss, a
// circular scan of a bitmap finds the next free slot starting just past
// the last allocation, so a long-running client doesn't keep re-scanning
// from 1 every time.
type Allocator struct {
	mu     sync.Mutex
	inUse  []uint64 // bitmap, bit i-1 set means identifier i is allocated
	cursor uint32   // next bitmap position to probe
	count  atomic.Int64

	freed chan uint16 // lock-free-ish reuse queue
}

// New returns an Allocator ready to allocate identifiers in 1-65535.
func New() *Allocator {
	return &Allocator{
		inUse: make([]uint64, (maxID+63)/64),
		freed: make(chan uint16, maxID),
	}
}

// Allocate reserves and returns an unused packet identifier.
func (a *Allocator) Allocate() (uint16, error) {
	select {
	case id := <-a.freed:
		a.mu.Lock()
		pos := uint32(id - 1)
		word, bit := pos/64, pos%64
		if a.inUse[word]&(1<<bit) == 0 {
			a.inUse[word] |= 1 << bit
			a.mu.Unlock()
			a.count.Add(1)
			return id, nil
		}
		// already handed out again by the bitmap scan; fall back to it
		a.mu.Unlock()
	default:
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if int(a.count.Load()) >= maxID {
		return 0, ErrExhausted
	}

	start := a.cursor
	for i := uint32(0); i < maxID; i++ {
		pos := (start + i) % maxID
		word, bit := pos/64, pos%64
		if a.inUse[word]&(1<<bit) == 0 {
			a.inUse[word] |= 1 << bit
			a.cursor = pos + 1
			a.count.Add(1)
			return uint16(pos + 1), nil
		}
	}
	return 0, ErrExhausted
}

// Release marks id free and makes it immediately available for reuse.
// Releasing an id that was not allocated is a no-op other than the reuse
// queue entry, which Allocate will simply hand out again; callers are
// expected to release each id at most once.
func (a *Allocator) Release(id uint16) {
	if id == 0 {
		return
	}
	a.mu.Lock()
	pos := uint32(id - 1)
	word, bit := pos/64, pos%64
	wasSet := a.inUse[word]&(1<<bit) != 0
	a.inUse[word] &^= 1 << bit
	a.mu.Unlock()

	if wasSet {
		a.count.Add(-1)
	}
	select {
	case a.freed <- id:
	default:
		// reuse queue full (shouldn't happen at <=65535 outstanding); the
		// bitmap scan will still find it on the next miss.
	}
}

// Count reports the number of identifiers currently allocated.
func (a *Allocator) Count() int {
	return int(a.count.Load())
}
