package mqtt5

import (
	"bytes"
	"errors"
	"io"

	"github.com/golang-io/mqtt5/packet"
)

// reader continuously reads from a ClientStream, accumulates bytes into
// buf, and decodes one packet per call to next, returning it to the caller.
// Grounded on the teacher's Client.unpack loop, generalized from a
// single packet.Unpack(io.Reader) call per iteration into the streaming
// accumulate-then-probe contract packet.Decode implements.
type reader struct {
	stream ClientStream
	stats  *Stats
	buf    bytes.Buffer
	chunk  [4096]byte
}

func newReader(stream ClientStream, stats *Stats) *reader {
	return &reader{stream: stream, stats: stats}
}

// next returns the next decoded packet, reading from the transport as
// needed. A malformed packet surfaces as (nil, err) with err wrapping
// the packet.ReasonCode the caller must DISCONNECT with.
func (r *reader) next() (packet.Packet, error) {
	for {
		pkt, err := packet.Decode(packet.VERSION500, &r.buf)
		switch {
		case err == nil:
			if r.stats != nil {
				r.stats.PacketsReceived.Inc()
			}
			return pkt, nil
		case errors.Is(err, packet.ErrShortBuffer):
			// fall through to read more
		default:
			return nil, err
		}

		n, rerr := r.stream.Read(r.chunk[:])
		if n > 0 {
			r.buf.Write(r.chunk[:n])
			if r.stats != nil {
				r.stats.BytesReceived.Add(float64(n))
			}
		}
		if rerr != nil {
			if n > 0 && errors.Is(rerr, io.EOF) {
				// let the next loop iteration drain what was just read
				continue
			}
			return nil, rerr
		}
	}
}
