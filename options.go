package mqtt5

import (
	"crypto/tls"
	"time"

	"github.com/golang-io/mqtt5/packet"
	"github.com/golang-io/requests"
)

// Will describes the broker-published message sent on the client's
// behalf after an ungraceful disconnect (OASIS MQTT v5.0 §3.1.3.2).
type Will struct {
	Topic           string
	Payload         []byte
	QoS             uint8
	Retain          bool
	DelayInterval   uint32
	ExpiryInterval  uint32
	ContentType     string
	ResponseTopic   string
	CorrelationData []byte
	PayloadFormat   uint8
	UserProperties  []packet.UserProperty
}

// Options holds every field the Client Facade accepts from outside, per
// SPEC_FULL.md §6's client configuration table. The zero value is
// invalid; build one with New(opts...), which applies sane defaults the
// way the teacher's newOptions did.
type Options struct {
	URL      string
	ClientID string

	TLSConfig  *tls.Config
	SkipVerify bool

	CleanStart             bool
	SessionExpiryInterval  uint32
	KeepAlive              uint16
	Username               string
	Password               string
	ReceiveMaximum         uint16
	MaximumPacketSize      uint32
	TopicAliasMaximum      uint16
	RequestResponseInfo    bool
	RequestProblemInfo     bool
	Will                   *Will
	UserProperties         []packet.UserProperty
	AuthenticationMethod   string
	AuthenticationData     []byte

	ConnectTimeout  time.Duration
	ResponseTimeout time.Duration

	AutomaticReconnect bool
	Backoff            Backoff

	Subscriptions []Subscription
	EventSink     EventSink
}

// Subscription is the option-builder's request shape for SubscribeAsync
// and the initial subscribe list, independent of packet.Subscription's
// wire-options layout.
type Subscription struct {
	Filter            string
	QoS               uint8
	NoLocal           bool
	RetainAsPublished bool
	RetainHandling    uint8
	SubscriptionID    uint32 // 0 means none requested
	Handler           func(topicName string, payload []byte, qos uint8)
}

// Option configures a Client at construction.
type Option func(*Options)

func newOptions(opts ...Option) Options {
	o := Options{
		URL:                   "mqtt://127.0.0.1:1883",
		ClientID:              "mqtt5-" + requests.GenId(),
		CleanStart:            true,
		KeepAlive:             60,
		ReceiveMaximum:        65535,
		ConnectTimeout:        10 * time.Second,
		ResponseTimeout:       10 * time.Second,
		AutomaticReconnect:    true,
		Backoff:               DefaultBackoff(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func URL(url string) Option { return func(o *Options) { o.URL = url } }

func ClientID(id string) Option { return func(o *Options) { o.ClientID = id } }

func CleanStart(clean bool) Option { return func(o *Options) { o.CleanStart = clean } }

func KeepAlive(seconds uint16) Option { return func(o *Options) { o.KeepAlive = seconds } }

func Credentials(username, password string) Option {
	return func(o *Options) { o.Username, o.Password = username, password }
}

func ReceiveMaximum(max uint16) Option { return func(o *Options) { o.ReceiveMaximum = max } }

func TLS(cfg *tls.Config) Option { return func(o *Options) { o.TLSConfig = cfg } }

func SkipVerify() Option { return func(o *Options) { o.SkipVerify = true } }

func LastWill(w Will) Option { return func(o *Options) { o.Will = &w } }

func UserProperty(name, value string) Option {
	return func(o *Options) { o.UserProperties = append(o.UserProperties, packet.UserProperty{Name: name, Value: value}) }
}

func AuthMethod(method string, data []byte) Option {
	return func(o *Options) { o.AuthenticationMethod, o.AuthenticationData = method, data }
}

func Timeouts(connect, response time.Duration) Option {
	return func(o *Options) { o.ConnectTimeout, o.ResponseTimeout = connect, response }
}

func AutoReconnect(enabled bool) Option { return func(o *Options) { o.AutomaticReconnect = enabled } }

func WithBackoff(b Backoff) Option { return func(o *Options) { o.Backoff = b } }

func Subscribe(subs ...Subscription) Option {
	return func(o *Options) { o.Subscriptions = append(o.Subscriptions, subs...) }
}

func Sink(sink EventSink) Option { return func(o *Options) { o.EventSink = sink } }
