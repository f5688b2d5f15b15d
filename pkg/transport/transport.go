package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"time"

	"golang.org/x/net/websocket"

	"github.com/robotalks/degu.go/pkg/transport/mqtt"
)

// Conn is a datagram connection.
type Conn interface {
	io.ReadWriteCloser
	SetReadDeadline(time.Time) error
}

// Dial connects to a peer identified by URL:
//
//	udp://host:port
//	tcp://host:port
//	serial:///dev/ttyACM0?baud=115200
//	ws://host/path, wss://host/path
//	mqtt://broker:1883/prefix/?sub=TOPIC&pub=TOPIC
func Dial(ctx context.Context, rawURL string) (Conn, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	var conn Conn
	switch u.Scheme {
	case "udp", "udp4", "udp6":
		conn, err = dialNet(ctx, u.Scheme, u.Host)
	case "tcp", "tcp4", "tcp6":
		var c net.Conn
		if c, err = dialNet(ctx, u.Scheme, u.Host); err == nil {
			conn = Datagrams(NewStream(c), c)
		}
	case "serial":
		conn, err = dialSerial(u)
	case "ws", "wss":
		conn, err = dialWebsocket(u)
	case "mqtt", "mqtts":
		conn, err = dialMQTT(ctx, u)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func dialNet(ctx context.Context, network, addr string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, network, addr)
}

func dialWebsocket(u *url.URL) (Conn, error) {
	origin := u.Query().Get("origin")
	if origin == "" {
		origin = "http://" + u.Host + "/"
	}
	ws, err := websocket.Dial(u.String(), "", origin)
	if err != nil {
		return nil, err
	}
	ws.PayloadType = websocket.BinaryFrame
	rw := NewWebsocket(ws)
	return Datagrams(rw, rw), nil
}

type closers []io.Closer

func (c closers) Close() error {
	var first error
	for _, closer := range c {
		if err := closer.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func dialMQTT(ctx context.Context, u *url.URL) (Conn, error) {
	query := u.Query()
	sub, pub := query.Get("sub"), query.Get("pub")
	if sub == "" || pub == "" {
		return nil, fmt.Errorf("mqtt transport requires sub and pub topics")
	}
	query.Del("sub")
	query.Del("pub")
	brokerURL := *u
	brokerURL.RawQuery = query.Encode()
	q, err := mqtt.NewQueueFromURL(brokerURL.String())
	if err != nil {
		return nil, err
	}
	if err = q.ConnectWait(ctx); err != nil {
		return nil, fmt.Errorf("connect %s: %w", u.Host, err)
	}
	rw := mqtt.NewPacketReadWriter(q).WithTopics(sub, pub)
	rw.QoS = 1
	if err = rw.Open(ctx); err != nil {
		q.Close()
		return nil, err
	}
	return Datagrams(rw, closers{rw, q}), nil
}
