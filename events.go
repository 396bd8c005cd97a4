package mqtt5

import (
	"log"

	"github.com/golang-io/mqtt5/packet"
)

// Direction distinguishes inbound from outbound packets for OnPacket.
type Direction int

const (
	Inbound Direction = iota
	Outbound
)

func (d Direction) String() string {
	if d == Inbound {
		return "in"
	}
	return "out"
}

// EventSink receives lifecycle and wire-level notifications from a
// Client. Implementations must not block; the Client invokes sink
// methods synchronously from its internal goroutines.
type EventSink interface {
	BeforeConnect(clientID string)
	AfterConnect(clientID string, result *ConnectResult, err error)
	BeforeSubscribe(clientID string, filters []string)
	AfterSubscribe(clientID string, result *SubscribeResult, err error)
	BeforeUnsubscribe(clientID string, filters []string)
	AfterUnsubscribe(clientID string, result *UnsubscribeResult, err error)
	OnMessageReceived(clientID string, msg *packet.Message, qos uint8)
	AfterDisconnect(clientID string, err error)
	OnPacket(clientID string, dir Direction, pkt packet.Packet)
}

// DefaultEventSink logs through the standard logger in the teacher's
// message style and feeds the Prometheus counters in Stats. The zero
// value is ready to use.
type DefaultEventSink struct {
	Stats *Stats
}

func NewDefaultEventSink(stats *Stats) *DefaultEventSink {
	return &DefaultEventSink{Stats: stats}
}

func (s *DefaultEventSink) BeforeConnect(clientID string) {
	log.Printf("client attempting to connect: client_id=%s", clientID)
}

func (s *DefaultEventSink) AfterConnect(clientID string, result *ConnectResult, err error) {
	if err != nil {
		log.Printf("client connect failed: client_id=%s, error=%v", clientID, err)
		return
	}
	log.Printf("client connected successfully: client_id=%s, session_present=%v", clientID, result.SessionPresent)
}

func (s *DefaultEventSink) BeforeSubscribe(clientID string, filters []string) {
	log.Printf("client attempting to subscribe: client_id=%s, topics=%v", clientID, filters)
}

func (s *DefaultEventSink) AfterSubscribe(clientID string, result *SubscribeResult, err error) {
	if err != nil {
		log.Printf("client subscribe failed: client_id=%s, error=%v", clientID, err)
		return
	}
	log.Printf("client subscribed successfully: client_id=%s, reason_codes=%v", clientID, result.ReasonCodes)
}

func (s *DefaultEventSink) BeforeUnsubscribe(clientID string, filters []string) {
	log.Printf("client attempting to unsubscribe: client_id=%s, topics=%v", clientID, filters)
}

func (s *DefaultEventSink) AfterUnsubscribe(clientID string, result *UnsubscribeResult, err error) {
	if err != nil {
		log.Printf("client unsubscribe failed: client_id=%s, error=%v", clientID, err)
		return
	}
	log.Printf("client unsubscribed successfully: client_id=%s, reason_codes=%v", clientID, result.ReasonCodes)
}

func (s *DefaultEventSink) OnMessageReceived(clientID string, msg *packet.Message, qos uint8) {
	log.Printf("client received: client_id=%s, topic=%s, qos=%d, size=%d", clientID, msg.TopicName, qos, len(msg.Content))
	if s.Stats != nil {
		s.Stats.MessagesReceived.Inc()
	}
}

func (s *DefaultEventSink) AfterDisconnect(clientID string, err error) {
	if err != nil {
		log.Printf("client disconnected: client_id=%s, error=%v", clientID, err)
		return
	}
	log.Printf("client disconnected successfully: client_id=%s", clientID)
}

func (s *DefaultEventSink) OnPacket(clientID string, dir Direction, pkt packet.Packet) {
	if s.Stats == nil {
		return
	}
	if dir == Inbound {
		s.Stats.PacketsReceived.Inc()
	} else {
		s.Stats.PacketsSent.Inc()
	}
}
