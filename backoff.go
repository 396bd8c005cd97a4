package mqtt5

import (
	"math/rand"
	"time"
)

// Backoff computes reconnect delays: exponential growth from Base up to
// Ceiling, with up to JitterFraction of full jitter subtracted, replacing
// the teacher's fixed 3-second retry timer in connectAndSubscribe.
type Backoff struct {
	Base          time.Duration
	Ceiling       time.Duration
	JitterFraction float64
}

// DefaultBackoff is 5s doubling to a 60s ceiling with full jitter, the
// values spec.md §4.10 suggests.
func DefaultBackoff() Backoff {
	return Backoff{Base: 5 * time.Second, Ceiling: 60 * time.Second, JitterFraction: 1.0}
}

// Delay returns the delay to wait before reconnect attempt number attempt
// (0-based: attempt==0 is the first retry after an initial failure).
func (b Backoff) Delay(attempt int) time.Duration {
	if b.Base <= 0 {
		b.Base = 5 * time.Second
	}
	if b.Ceiling <= 0 {
		b.Ceiling = 60 * time.Second
	}
	d := b.Base
	for i := 0; i < attempt && d < b.Ceiling; i++ {
		d *= 2
		if d > b.Ceiling {
			d = b.Ceiling
		}
	}
	if b.JitterFraction <= 0 {
		return d
	}
	jitter := time.Duration(float64(d) * b.JitterFraction * rand.Float64())
	return d - jitter
}
