package mqtt5

import "github.com/prometheus/client_golang/prometheus"

// Stats are the client-side Prometheus collectors updated by the
// Reader, Writer, and Connection Manager, generalizing the teacher's
// server-side Stat struct to the client facade named in SPEC_FULL.md §3.
type Stats struct {
	PacketsReceived    prometheus.Counter
	BytesReceived      prometheus.Counter
	PacketsSent        prometheus.Counter
	BytesSent          prometheus.Counter
	MessagesReceived   prometheus.Counter
	ReconnectAttempts  prometheus.Counter
	InflightOutbound   prometheus.Gauge
	ConnectionState    prometheus.Gauge
}

// NewStats builds a Stats with a fresh, unregistered set of collectors
// named "mqtt5_client_*" and carrying a constant client_id label (so
// multiple Clients in one process don't collide on registration).
func NewStats(clientID string) *Stats {
	labels := prometheus.Labels{"client_id": clientID}
	return &Stats{
		PacketsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mqtt5_client_packets_received_total", Help: "Total MQTT packets received.", ConstLabels: labels,
		}),
		BytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mqtt5_client_bytes_received_total", Help: "Total bytes received from the broker.", ConstLabels: labels,
		}),
		PacketsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mqtt5_client_packets_sent_total", Help: "Total MQTT packets sent.", ConstLabels: labels,
		}),
		BytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mqtt5_client_bytes_sent_total", Help: "Total bytes sent to the broker.", ConstLabels: labels,
		}),
		MessagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mqtt5_client_messages_received_total", Help: "Total application messages delivered to handlers.", ConstLabels: labels,
		}),
		ReconnectAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mqtt5_client_reconnect_attempts_total", Help: "Total reconnect attempts.", ConstLabels: labels,
		}),
		InflightOutbound: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mqtt5_client_inflight_outbound", Help: "Current outbound QoS 1/2 publishes awaiting ack.", ConstLabels: labels,
		}),
		ConnectionState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mqtt5_client_connection_state", Help: "Current Connection Manager state (see mqtt5.ConnState).", ConstLabels: labels,
		}),
	}
}

// Register registers every collector with reg.
func (s *Stats) Register(reg *prometheus.Registry) {
	reg.MustRegister(s.PacketsReceived, s.BytesReceived, s.PacketsSent, s.BytesSent,
		s.MessagesReceived, s.ReconnectAttempts, s.InflightOutbound, s.ConnectionState)
}
