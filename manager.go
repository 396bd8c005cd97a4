package mqtt5

import (
	"context"
	"crypto/tls"
	"errors"
	"log"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/golang-io/mqtt5/inflight"
	"github.com/golang-io/mqtt5/packet"
	"golang.org/x/sync/errgroup"
)

// A ConnState represents the lifecycle state of a Client's connection to
// the broker, adapted from the teacher's server-side ConnState enum
// (server.go) to the client-side Disconnected/Connecting/Connected/
// Disconnecting state machine spec.md §4.10 requires.
type ConnState int32

const (
	// StateDisconnected is the initial state, and the state after a
	// user-initiated disconnect or an unrecoverable connect failure with
	// auto-reconnect disabled.
	StateDisconnected ConnState = iota

	// StateConnecting covers dial, optional TLS handshake, and the
	// CONNECT/CONNACK exchange.
	StateConnecting

	// StateConnected means Reader, Writer, and Keep-Alive are running
	// and the Facade may submit requests.
	StateConnected

	// StateDisconnecting covers the teardown initiated by DISCONNECT
	// (received or sent) prior to the transport actually closing.
	StateDisconnecting
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateDisconnecting:
		return "Disconnecting"
	default:
		return "Unknown"
	}
}

// ConnectResult is returned by a successful Client.Connect, per spec.md
// §4.11.
type ConnectResult struct {
	ReasonCode          packet.ReasonCode
	SessionPresent      bool
	AssignedClientID    string
	ServerKeepAlive     uint16
	ReceiveMaximum      uint16
	TopicAliasMaximum   uint16
	RetainAvailable     bool
	WildcardAvailable   bool
	SharedSubAvailable  bool
	SubIDsAvailable     bool
	ReasonString        string
}

// manager owns the connection lifecycle state machine: dial, handshake,
// reconnect scheduling, and session reconciliation, grounded on the
// teacher's connectAndSubscribe/Client.dial pair. Unlike the teacher's
// version, which retries the whole errgroup on any error with a fixed
// 3-second timer, this keeps the errgroup-supervision shape but drives
// retries off a Backoff policy and distinguishes session-present from
// session-lost on every successful reconnect.
type manager struct {
	opts     Options
	url      *url.URL
	dialer   Dialer
	stats    *Stats
	sink     EventSink

	state   atomic.Int32
	capabilities atomic.Pointer[ConnectResult]

	out     *inflight.Outbound
	in      *inflight.Inbound
	pending *pendingRequests

	w  *writer
	ka *keepAlive
	d  *dispatcher

	stream ClientStream
}

func newManager(opts Options, u *url.URL, out *inflight.Outbound, in *inflight.Inbound, pending *pendingRequests, stats *Stats) *manager {
	return &manager{
		opts: opts, url: u, dialer: DefaultDialer, stats: stats, sink: opts.EventSink,
		out: out, in: in, pending: pending,
	}
}

func (m *manager) connState() ConnState { return ConnState(m.state.Load()) }

func (m *manager) setState(s ConnState) {
	m.state.Store(int32(s))
	if m.stats != nil {
		m.stats.ConnectionState.Set(float64(s))
	}
}

// run drives the reconnect loop until ctx is cancelled, replacing the
// teacher's ConnectAndSubscribe fixed-3s-timer loop. onConnected builds a
// fresh dispatcher bound to the new transport on every (re)connect
// attempt.
func (m *manager) run(ctx context.Context, onConnected func(*manager) *dispatcher) error {
	attempt := 0
	for {
		select {
		case <-ctx.Done():
			m.setState(StateDisconnected)
			return ctx.Err()
		default:
		}

		err := m.connectOnce(ctx, onConnected)
		if err == nil {
			attempt = 0
			continue
		}
		if errors.Is(err, context.Canceled) {
			m.setState(StateDisconnected)
			return err
		}

		var mqErr *Error
		if errors.As(err, &mqErr) && mqErr.Kind == KindDisconnectedByUser {
			m.setState(StateDisconnected)
			return err
		}
		if errors.As(err, &mqErr) && mqErr.Kind == KindConnectRejected && isPermanentConnectReject(mqErr.Reason) {
			m.setState(StateDisconnected)
			return err
		}

		if !m.opts.AutomaticReconnect {
			m.setState(StateDisconnected)
			return err
		}

		delay := m.opts.Backoff.Delay(attempt)
		attempt++
		if m.stats != nil {
			m.stats.ReconnectAttempts.Inc()
		}
		log.Printf("mqtt5: connect attempt failed, retrying in %s: client_id=%s, error=%v", delay, m.opts.ClientID, err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			m.setState(StateDisconnected)
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// connectOnce performs a single dial+handshake+serve cycle, blocking
// until the connection is lost or ctx is cancelled.
func (m *manager) connectOnce(ctx context.Context, onConnected func(*manager) *dispatcher) error {
	m.setState(StateConnecting)

	var tlsConfig *tls.Config
	if m.opts.TLSConfig != nil {
		tlsConfig = m.opts.TLSConfig
	} else if m.opts.SkipVerify {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	dialCtx, cancel := context.WithTimeout(ctx, m.opts.ConnectTimeout)
	stream, err := m.dialer(dialCtx, m.url, tlsConfig)
	cancel()
	if err != nil {
		return newError(KindTransportError, err)
	}
	m.stream = stream

	m.w = newWriter(stream, m.stats, 256)
	m.ka = newKeepAlive(m.opts.KeepAlive, m.w)
	m.d = onConnected(m)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error { return m.w.run(gctx.Done()) })
	group.Go(func() error { return m.ka.run(gctx) })
	group.Go(func() error { return m.readLoop(gctx) })
	group.Go(func() error { return m.handshake(gctx) })

	err = group.Wait()
	_ = stream.Close()
	m.setState(StateDisconnecting)

	// Session reconciliation (retransmit on a present session, fail fast
	// on a lost one) happens exclusively in handshake() once the next
	// CONNACK's SessionPresent bit is known; a disconnect mid-session
	// doesn't by itself tell us which it'll be.
	m.setState(StateDisconnected)
	return err
}

func (m *manager) readLoop(ctx context.Context) error {
	r := newReader(m.stream, m.stats)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		pkt, err := r.next()
		if err != nil {
			return newError(KindTransportError, err)
		}
		if discErr := m.d.handle(pkt); discErr != nil {
			return newError(KindMalformedPacket, discErr)
		}
		select {
		case d := <-m.d.disconnect:
			return &Error{Kind: KindProtocolError, Reason: d.ReasonCode}
		default:
		}
	}
}

func (m *manager) handshake(ctx context.Context) error {
	connectPkt := m.buildConnect()
	ackCh := m.pending.awaitConnack()
	m.w.enqueue(connectPkt)

	connectCtx, cancel := context.WithTimeout(ctx, m.opts.ConnectTimeout)
	defer cancel()

	select {
	case <-connectCtx.Done():
		return newError(KindTimeout, connectCtx.Err())
	case pkt := <-ackCh:
		connack, ok := pkt.(*packet.CONNACK)
		if !ok {
			return newError(KindProtocolError, errors.New("expected CONNACK"))
		}
		if !connack.ConnectReturnCode.IsSuccess() {
			return rejectedError(KindConnectRejected, connack.ConnectReturnCode)
		}
		result := connackResult(connack)
		m.capabilities.Store(result)
		if result.ServerKeepAlive != 0 {
			m.ka.SetInterval(result.ServerKeepAlive)
		}
		if result.SessionPresent {
			m.resendOutstanding()
		} else {
			for _, rec := range m.out.Drain() {
				rec.Done <- inflight.Result{Err: newError(KindSessionLost, nil)}
				close(rec.Done)
			}
		}
		m.setState(StateConnected)
	}

	<-ctx.Done()
	return ctx.Err()
}

// resendOutstanding retransmits every outbound record still held across a
// reconnect whose CONNACK reported SessionPresent, per spec.md §4.10: a
// record already past PUBREC (AwaitingPubComp) gets a fresh PUBREL, since
// the broker owns the PacketID and has already seen the PUBLISH;
// everything else gets its original PUBLISH resent with DUP set.
func (m *manager) resendOutstanding() {
	for _, rec := range m.out.All() {
		rec.Retries++
		switch rec.Phase {
		case inflight.AwaitingPubComp:
			m.w.enqueue(&packet.PUBREL{
				FixedHeader: &packet.FixedHeader{Version: packet.VERSION500, Kind: PUBREL, QoS: 1},
				PacketID:    rec.ID,
			})
		default:
			if rec.Publish == nil {
				continue
			}
			dup := *rec.Publish
			header := *rec.Publish.FixedHeader
			header.Dup = 1
			dup.FixedHeader = &header
			m.w.enqueue(&dup)
		}
	}
}

func (m *manager) buildConnect() *packet.CONNECT {
	var flags packet.ConnectFlags
	o := m.opts
	c := &packet.CONNECT{
		FixedHeader: &packet.FixedHeader{Version: packet.VERSION500, Kind: CONNECT},
		ClientID:    o.ClientID,
		KeepAlive:   o.KeepAlive,
		Username:    o.Username,
		Password:    o.Password,
		Props: &packet.Properties{
			SessionExpiryInterval: &o.SessionExpiryInterval,
			ReceiveMaximum:        &o.ReceiveMaximum,
			MaximumPacketSize:     optionalU32(o.MaximumPacketSize),
			TopicAliasMaximum:     optionalU16(o.TopicAliasMaximum),
			RequestResponseInfo:   optionalBoolU8(o.RequestResponseInfo),
			RequestProblemInfo:    optionalBoolU8(o.RequestProblemInfo),
			AuthenticationMethod:  o.AuthenticationMethod,
			AuthenticationData:    o.AuthenticationData,
			UserProperties:        o.UserProperties,
		},
	}
	if o.CleanStart {
		flags |= 0x02
	}
	if o.Username != "" {
		flags |= 0x80
	}
	if o.Password != "" {
		flags |= 0x40
	}
	if o.Will != nil {
		flags |= 0x04
		flags |= packet.ConnectFlags(o.Will.QoS&0x03) << 3
		if o.Will.Retain {
			flags |= 0x20
		}
		c.WillTopic = o.Will.Topic
		c.WillPayload = o.Will.Payload
		c.WillProps = &packet.Properties{
			WillDelayInterval:      &o.Will.DelayInterval,
			ContentType:            o.Will.ContentType,
			MessageExpiryInterval:  optionalU32(o.Will.ExpiryInterval),
			ResponseTopic:          o.Will.ResponseTopic,
			CorrelationData:        o.Will.CorrelationData,
			PayloadFormatIndicator: optionalU8(o.Will.PayloadFormat),
			UserProperties:         o.Will.UserProperties,
		}
	}
	c.ConnectFlags = flags
	return c
}

func optionalU32(v uint32) *uint32 {
	if v == 0 {
		return nil
	}
	return &v
}

func optionalU16(v uint16) *uint16 {
	if v == 0 {
		return nil
	}
	return &v
}

func optionalU8(v uint8) *uint8 {
	if v == 0 {
		return nil
	}
	return &v
}

func optionalBoolU8(b bool) *uint8 {
	if !b {
		return nil
	}
	v := uint8(1)
	return &v
}

func connackResult(c *packet.CONNACK) *ConnectResult {
	r := &ConnectResult{
		ReasonCode:     c.ConnectReturnCode,
		SessionPresent: c.SessionPresent != 0,
		ReceiveMaximum: 65535,
	}
	if c.Props == nil {
		return r
	}
	if c.Props.AssignedClientIdentifier != "" {
		r.AssignedClientID = c.Props.AssignedClientIdentifier
	}
	if c.Props.ServerKeepAlive != nil {
		r.ServerKeepAlive = *c.Props.ServerKeepAlive
	}
	if c.Props.ReceiveMaximum != nil {
		r.ReceiveMaximum = *c.Props.ReceiveMaximum
	}
	if c.Props.TopicAliasMaximum != nil {
		r.TopicAliasMaximum = *c.Props.TopicAliasMaximum
	}
	if c.Props.RetainAvailable != nil {
		r.RetainAvailable = *c.Props.RetainAvailable != 0
	}
	if c.Props.WildcardSubAvailable != nil {
		r.WildcardAvailable = *c.Props.WildcardSubAvailable != 0
	}
	if c.Props.SharedSubAvailable != nil {
		r.SharedSubAvailable = *c.Props.SharedSubAvailable != 0
	}
	if c.Props.SubIdentifiersAvailable != nil {
		r.SubIDsAvailable = *c.Props.SubIdentifiersAvailable != 0
	}
	r.ReasonString = c.Props.ReasonString
	return r
}
