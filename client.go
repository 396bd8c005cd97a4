package mqtt5

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/golang-io/mqtt5/ident"
	"github.com/golang-io/mqtt5/inflight"
	"github.com/golang-io/mqtt5/packet"
	"github.com/golang-io/mqtt5/topic"
)

// SubscribeResult is returned by SubscribeAsync, per spec.md §4.11.
type SubscribeResult struct {
	ReasonCodes []packet.ReasonCode
}

// UnsubscribeResult is returned by UnsubscribeAsync.
type UnsubscribeResult struct {
	ReasonCodes []packet.ReasonCode
}

// PublishResult is returned by PublishAsync once the call resolves: for
// QoS 0 that's as soon as the packet is enqueued; for QoS 1/2, once the
// terminal acknowledgement arrives.
type PublishResult struct {
	ReasonCode   packet.ReasonCode
	ReasonString string
}

// Client is the public request API coordinating the Codec, Inflight
// Registry, Subscription Registry, Transport, and Connection Manager,
// grounded on the teacher's Client struct and its New/Connect/Subscribe/
// SubmitMessage/Disconnect methods. Where the teacher made single
// blocking calls over a fixed `recv [0xF+1]chan packet.Packet` array,
// this type subordinates every request to the Dispatcher and Inflight
// Registry so more than one QoS 1/2 publish or SUBSCRIBE can be
// outstanding concurrently, each correlated by its own packet
// identifier.
type Client struct {
	opts Options
	url  *url.URL

	ids     *ident.Allocator
	out     *inflight.Outbound
	in      *inflight.Inbound
	subs    *topic.Registry
	pending *pendingRequests
	stats   *Stats
	sink    EventSink

	mgr *manager
}

// New constructs a Client from the given options, applying the same
// kind of defaults the teacher's newOptions did (auto-generated client
// ID via requests.GenId(), MQTT 5 implied, 60s keep-alive).
func New(opts ...Option) *Client {
	o := newOptions(opts...)
	u, err := url.Parse(o.URL)
	if err != nil {
		panic(fmt.Errorf("mqtt5: invalid URL %q: %w", o.URL, err))
	}

	sink := o.EventSink
	stats := NewStats(o.ClientID)
	if sink == nil {
		sink = NewDefaultEventSink(stats)
		o.EventSink = sink
	}

	// The outbound window is sized once, from this client's own
	// ReceiveMaximum option; the Receive Maximum a broker reports in
	// CONNACK does not resize it.
	c := &Client{
		opts:    o,
		url:     u,
		ids:     ident.New(),
		out:     inflight.NewOutbound(int(o.ReceiveMaximum)),
		in:      inflight.NewInbound(),
		subs:    topic.NewRegistry(),
		pending: newPendingRequests(),
		stats:   stats,
		sink:    sink,
	}
	for _, s := range o.Subscriptions {
		c.subs.Add(s.Filter, s.QoS, s.Handler)
	}
	c.mgr = newManager(o, u, c.out, c.in, c.pending, stats)
	return c
}

// ID returns the client identifier currently configured (the
// user-supplied one, or the broker-assigned one after a handshake that
// reported AssignedClientID).
func (c *Client) ID() string {
	if r := c.mgr.capabilities.Load(); r != nil && r.AssignedClientID != "" {
		return r.AssignedClientID
	}
	return c.opts.ClientID
}

// Stats exposes the Prometheus collectors backing this client so
// callers can register them with their own registry.
func (c *Client) Stats() *Stats { return c.stats }

// Run drives the Connection Manager's dial/handshake/reconnect loop
// until ctx is cancelled or a non-retryable failure occurs (e.g. a
// permanent CONNACK rejection, or auto-reconnect disabled). This
// replaces the teacher's ConnectAndSubscribe: callers typically run it
// in its own goroutine and use Connect/Subscribe/Publish/Unsubscribe to
// drive requests while it's active.
func (c *Client) Run(ctx context.Context) error {
	return c.mgr.run(ctx, func(m *manager) *dispatcher {
		d := newDispatcher(c.opts.ClientID, c.out, c.in, c.subs, c.pending, m.w, m.ka, c.sink)
		return d
	})
}

// Connect blocks until the current connection attempt's CONNACK has been
// received (or ctx expires / the manager gives up), returning the
// negotiated ConnectResult. Call this after starting Run in its own
// goroutine.
func (c *Client) Connect(ctx context.Context) (*ConnectResult, error) {
	for {
		switch c.mgr.connState() {
		case StateConnected:
			return c.mgr.capabilities.Load(), nil
		case StateDisconnected:
			return nil, newError(KindTransportError, fmt.Errorf("mqtt5: connection manager stopped"))
		}
		select {
		case <-ctx.Done():
			return nil, newError(KindTimeout, ctx.Err())
		default:
		}
	}
}

// SubscribeAsync requests one or more topic filter subscriptions,
// pre-validating against the broker's negotiated capabilities the way
// spec.md §4.11 requires, then blocks until SUBACK arrives or ctx is
// cancelled.
func (c *Client) SubscribeAsync(ctx context.Context, subs ...Subscription) (*SubscribeResult, error) {
	if c.mgr.connState() != StateConnected {
		return nil, newError(KindTransportError, fmt.Errorf("mqtt5: not connected"))
	}
	caps := c.mgr.capabilities.Load()
	filters := make([]string, 0, len(subs))
	var subIDs []uint32
	for _, s := range subs {
		filters = append(filters, s.Filter)
		if caps != nil && !caps.WildcardAvailable && hasWildcard(s.Filter) {
			return nil, rejectedError(KindCapabilityViolation, packet.ErrWildcardSubscriptionsNotSupported)
		}
		if caps != nil && !caps.SharedSubAvailable && isSharedFilter(s.Filter) {
			return nil, rejectedError(KindCapabilityViolation, packet.ErrSharedSubscriptionsNotSupported)
		}
		if s.SubscriptionID != 0 {
			if caps != nil && !caps.SubIDsAvailable {
				return nil, rejectedError(KindCapabilityViolation, packet.ErrSubscriptionIdentifiersNotSupported)
			}
			subIDs = append(subIDs, s.SubscriptionID)
		}
	}
	if c.sink != nil {
		c.sink.BeforeSubscribe(c.opts.ClientID, filters)
	}

	id, err := c.ids.Allocate()
	if err != nil {
		return nil, rejectedError(KindIdentifierExhausted, packet.ErrPacketIdentifierInUse)
	}
	defer c.ids.Release(id)

	pktSubs := make([]packet.Subscription, 0, len(subs))
	for _, s := range subs {
		pktSubs = append(pktSubs, packet.Subscription{
			TopicFilter: s.Filter, MaximumQoS: s.QoS, NoLocal: boolToU8(s.NoLocal),
			RetainAsPublished: boolToU8(s.RetainAsPublished), RetainHandling: s.RetainHandling,
		})
	}

	var props *packet.Properties
	if len(subIDs) > 0 {
		props = &packet.Properties{SubscriptionIdentifier: subIDs}
	}

	ackCh := c.pending.await(id)
	c.mgr.w.enqueue(&packet.SUBSCRIBE{
		FixedHeader:   &packet.FixedHeader{Version: packet.VERSION500, Kind: SUBSCRIBE, QoS: 1},
		PacketID:      id,
		Props:         props,
		Subscriptions: pktSubs,
	})

	select {
	case <-ctx.Done():
		c.pending.cancel(id)
		return nil, newError(KindCancelled, ctx.Err())
	case pkt := <-ackCh:
		suback := pkt.(*packet.SUBACK)
		result := &SubscribeResult{ReasonCodes: suback.ReasonCode}
		for i, s := range subs {
			if i < len(suback.ReasonCode) && suback.ReasonCode[i].IsSuccess() {
				c.subs.Add(s.Filter, s.QoS, s.Handler)
			}
		}
		if c.sink != nil {
			c.sink.AfterSubscribe(c.opts.ClientID, result, nil)
		}
		return result, nil
	}
}

// UnsubscribeAsync removes each filter, blocking until UNSUBACK arrives.
func (c *Client) UnsubscribeAsync(ctx context.Context, filters ...string) (*UnsubscribeResult, error) {
	if c.mgr.connState() != StateConnected {
		return nil, newError(KindTransportError, fmt.Errorf("mqtt5: not connected"))
	}
	if c.sink != nil {
		c.sink.BeforeUnsubscribe(c.opts.ClientID, filters)
	}

	id, err := c.ids.Allocate()
	if err != nil {
		return nil, rejectedError(KindIdentifierExhausted, packet.ErrPacketIdentifierInUse)
	}
	defer c.ids.Release(id)

	subs := make([]packet.Subscription, 0, len(filters))
	for _, f := range filters {
		subs = append(subs, packet.Subscription{TopicFilter: f})
	}

	ackCh := c.pending.await(id)
	c.mgr.w.enqueue(&packet.UNSUBSCRIBE{
		FixedHeader:   &packet.FixedHeader{Version: packet.VERSION500, Kind: UNSUBSCRIBE, QoS: 1},
		PacketID:      id,
		Subscriptions: subs,
	})

	select {
	case <-ctx.Done():
		c.pending.cancel(id)
		return nil, newError(KindCancelled, ctx.Err())
	case pkt := <-ackCh:
		unsuback := pkt.(*packet.UNSUBACK)
		for _, f := range filters {
			c.subs.Remove(f)
		}
		result := &UnsubscribeResult{ReasonCodes: unsuback.ReasonCode}
		if c.sink != nil {
			c.sink.AfterUnsubscribe(c.opts.ClientID, result, nil)
		}
		return result, nil
	}
}

// PublishAsync sends an application message. For QoS 0 it returns as
// soon as the packet is handed to the Writer (no packet identifier is
// consumed); for QoS 1 it awaits PUBACK; for QoS 2 it awaits PUBCOMP.
// topicAlias is 0 when none is requested; a non-zero value is validated
// against the broker's negotiated TopicAliasMaximum (OASIS MQTT v5.0
// §3.3.2.3.4) before it's attached to the outgoing PUBLISH.
func (c *Client) PublishAsync(ctx context.Context, msg *packet.Message, qos uint8, retain bool, topicAlias uint16) (*PublishResult, error) {
	if c.mgr.connState() != StateConnected {
		return nil, newError(KindTransportError, fmt.Errorf("mqtt5: not connected"))
	}
	caps := c.mgr.capabilities.Load()
	if caps != nil && retain && !caps.RetainAvailable {
		return nil, rejectedError(KindCapabilityViolation, packet.ErrRetainNotSupported)
	}
	if topicAlias != 0 && caps != nil && topicAlias > caps.TopicAliasMaximum {
		return nil, rejectedError(KindCapabilityViolation, packet.ErrTopicAliasInvalid)
	}

	pub := &packet.PUBLISH{
		FixedHeader: &packet.FixedHeader{Version: packet.VERSION500, Kind: PUBLISH, QoS: qos, Retain: boolToU8(retain)},
		Message:     msg,
	}
	if topicAlias != 0 {
		pub.Props = &packet.Properties{TopicAlias: &topicAlias}
	}

	if qos == 0 {
		c.mgr.w.enqueue(pub)
		return &PublishResult{ReasonCode: packet.CodeSuccess}, nil
	}

	id, err := c.ids.Allocate()
	if err != nil {
		return nil, rejectedError(KindIdentifierExhausted, packet.ErrPacketIdentifierInUse)
	}
	pub.PacketID = id

	rec := &inflight.Record{ID: id, Publish: pub, Phase: inflight.AwaitingPubAck, Done: make(chan inflight.Result, 1)}
	if qos == 2 {
		rec.Phase = inflight.AwaitingPubRec
	}
	if err := c.out.Insert(ctx, rec); err != nil {
		c.ids.Release(id)
		return nil, newError(KindCancelled, err)
	}

	c.mgr.w.enqueue(pub)

	select {
	case <-ctx.Done():
		return nil, newError(KindCancelled, ctx.Err())
	case res := <-rec.Done:
		c.ids.Release(id)
		if res.Err != nil {
			return nil, res.Err
		}
		return &PublishResult{ReasonCode: packet.ReasonCode{Code: res.ReasonCode}, ReasonString: res.ReasonString}, nil
	}
}

// DisconnectAsync sends DISCONNECT and disables auto-reconnect for this
// instance. It does not close the transport itself: the connection ends
// when the broker closes it after the DISCONNECT, and Run then returns
// instead of reconnecting.
func (c *Client) DisconnectAsync(ctx context.Context, reason packet.ReasonCode) error {
	c.opts.AutomaticReconnect = false
	c.mgr.opts.AutomaticReconnect = false
	if c.mgr.connState() == StateConnected {
		c.mgr.w.enqueue(&packet.DISCONNECT{
			FixedHeader: &packet.FixedHeader{Version: packet.VERSION500, Kind: DISCONNECT},
			ReasonCode:  reason,
		})
	}
	if c.sink != nil {
		c.sink.AfterDisconnect(c.opts.ClientID, nil)
	}
	return nil
}

// isSharedFilter reports whether filter names a shared subscription
// group, OASIS MQTT v5.0 §4.8.2: "$share/<ShareName>/<filter>".
func isSharedFilter(filter string) bool {
	return strings.HasPrefix(filter, "$share/")
}

func hasWildcard(filter string) bool {
	for i := 0; i < len(filter); i++ {
		if filter[i] == '+' || filter[i] == '#' {
			return true
		}
	}
	return false
}

func boolToU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
