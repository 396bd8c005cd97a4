package mqtt5

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/golang-io/mqtt5/packet"
)

// keepAlive sends PINGREQ when the writer has been idle for the
// negotiated interval and treats a missing PINGRESP within 1.5x that
// interval as connection loss, per spec.md §4.8. A zero interval
// disables the mechanism entirely, matching the teacher's choice to
// simply never arm a ping timer for such clients. interval is stored as
// nanoseconds in an atomic.Int64 since SetInterval is called from
// handshake() concurrently with run()'s own reads.
type keepAlive struct {
	interval atomic.Int64
	w        *writer
	pong     chan struct{} // signaled by the Dispatcher on PINGRESP
}

func newKeepAlive(seconds uint16, w *writer) *keepAlive {
	k := &keepAlive{w: w, pong: make(chan struct{}, 1)}
	k.interval.Store(int64(time.Duration(seconds) * time.Second))
	return k
}

// SetInterval adopts the broker's negotiated Server Keep Alive (OASIS
// MQTT v5.0 §3.2.2.3.14), which overrides the client's requested value
// whenever the broker sends one.
func (k *keepAlive) SetInterval(seconds uint16) {
	k.interval.Store(int64(time.Duration(seconds) * time.Second))
}

// onPingResp is called by the Dispatcher when a PINGRESP arrives.
func (k *keepAlive) onPingResp() {
	select {
	case k.pong <- struct{}{}:
	default:
	}
}

// run blocks until ctx is cancelled or the grace window elapses without
// a PINGRESP, in which case it returns an error so the Connection
// Manager treats the connection as lost.
func (k *keepAlive) run(ctx context.Context) error {
	if k.interval.Load() <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	for {
		interval := time.Duration(k.interval.Load())
		if interval <= 0 {
			<-ctx.Done()
			return ctx.Err()
		}
		idle := k.w.idleSince()
		wait := interval - idle
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if k.w.idleSince() < interval {
			continue // some other traffic reset the idle clock, recheck
		}

		k.w.enqueue(&packet.PINGREQ{FixedHeader: &packet.FixedHeader{Version: packet.VERSION500, Kind: PINGREQ}})

		grace := time.Duration(float64(interval) * 1.5)
		graceTimer := time.NewTimer(grace)
		select {
		case <-ctx.Done():
			graceTimer.Stop()
			return ctx.Err()
		case <-k.pong:
			graceTimer.Stop()
		case <-graceTimer.C:
			return &Error{Kind: KindTimeout, Err: errPingRespTimeout}
		}
	}
}

var errPingRespTimeout = pingTimeoutError{}

type pingTimeoutError struct{}

func (pingTimeoutError) Error() string { return "mqtt5: no PINGRESP within grace window" }
