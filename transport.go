package mqtt5

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/url"

	"golang.org/x/net/websocket"
)

// ClientStream is the duplex byte-stream abstraction the Connection
// Manager owns and the Reader/Writer borrow read/write halves of,
// generalizing the teacher's raw net.Conn returned by Client.dial so TCP,
// TLS, and WebSocket transports are interchangeable.
type ClientStream interface {
	net.Conn
}

// Dialer opens a ClientStream to addr for the given URL scheme. The
// default dialer is the teacher's dial method, lightly generalized: it
// switches on scheme exactly the way Client.dial did (tcp/mqtt, tls/mqtts,
// ws/wss) and additionally threads a context through the tcp and tls
// branches; the ws/wss branch dials without it.
type Dialer func(ctx context.Context, u *url.URL, tlsConfig *tls.Config) (ClientStream, error)

// DefaultDialer reproduces the teacher's scheme switch in Client.dial.
func DefaultDialer(ctx context.Context, u *url.URL, tlsConfig *tls.Config) (ClientStream, error) {
	addr := u.Host
	switch u.Scheme {
	case "mqtt", "tcp", "":
		return (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	case "mqtts", "tls":
		d := tls.Dialer{Config: tlsConfig}
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, err
		}
		return conn.(ClientStream), nil
	case "ws", "wss":
		path := u.Path
		if path == "" {
			path = "/mqtt"
		}
		loc := &url.URL{Scheme: u.Scheme, Host: addr, Path: path}
		originScheme := "http"
		if u.Scheme == "wss" {
			originScheme = "https"
		}
		origin := &url.URL{Scheme: originScheme, Host: addr}

		cfg, err := websocket.NewConfig(loc.String(), origin.String())
		if err != nil {
			return nil, err
		}
		cfg.Protocol = []string{"mqtt"}
		if u.Scheme == "wss" {
			cfg.TlsConfig = tlsConfig
		}
		ws, err := websocket.DialConfig(cfg)
		if err != nil {
			return nil, err
		}
		ws.PayloadType = websocket.BinaryFrame
		return ws, nil
	default:
		return nil, errors.New("mqtt5: unsupported URL scheme: " + u.Scheme)
	}
}
