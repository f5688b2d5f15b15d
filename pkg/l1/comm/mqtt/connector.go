package mqtt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/degu.go/pkg/l1"
	"github.com/robotalks/degu.go/pkg/l1/comm"
	"github.com/robotalks/degu.go/pkg/transport/mqtt"
)

// Connector implements l1.Connector using MQTT.
type Connector struct {
	DiscoverTimeout time.Duration

	brokerURL string
}

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// NewConnector creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	if _, _, err := mqtt.ClientOptionsFromURL(brokerURL); err != nil {
		return nil, err
	}
	return &Connector{
		DiscoverTimeout: DefaultDiscoverTimeout,
		brokerURL:       brokerURL,
	}, nil
}

// Each Queue installs its handlers into its own ClientOptions.
func (c *Connector) newQueue() *mqtt.Queue {
	q, _ := mqtt.NewQueueFromURL(c.brokerURL)
	return q
}

// Discover implements Connector. Devices are collected from retained meta
// messages until DiscoverTimeout.
func (c *Connector) Discover(ctx context.Context) ([]l1.ControllerInfo, error) {
	q := c.newQueue()
	if err := q.ConnectWait(ctx); err != nil {
		return nil, err
	}
	defer q.Close()

	infoCh := make(chan l1.ControllerInfo, 16)
	sub := q.Sub(DiscoverTopic, func(topic string, payload []byte) {
		// Empty payload is a cleared registration.
		if len(payload) == 0 {
			return
		}
		if info, ok := ParseMeta(topic, payload); ok {
			select {
			case infoCh <- info:
			case <-time.After(time.Second):
			}
		}
	})
	defer sub.Close()
	if err := mqtt.Wait(ctx, sub.Token); err != nil {
		return nil, err
	}

	dur := c.DiscoverTimeout
	if dur == 0 {
		dur = DefaultDiscoverTimeout
	}
	timeout := time.After(dur)
	seen := make(map[string]bool)
	var res []l1.ControllerInfo
	for {
		select {
		case info := <-infoCh:
			if name := info.Ref.Name(); !seen[name] {
				seen[name] = true
				res = append(res, info)
			}
		case <-timeout:
			return res, nil
		case <-ctx.Done():
			return res, ctx.Err()
		}
	}
}

// Connect implements Connector.
func (c *Connector) Connect(ctx context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	conn := &ControllerConn{Queue: c.newQueue()}
	conn.rw = ForConnector(conn.Queue, ref)
	conn.rw.QoS = 1
	conn.Init(conn.rw)
	if err := conn.Queue.ConnectWait(ctx); err != nil {
		return nil, err
	}
	if err := conn.rw.Open(ctx); err != nil {
		conn.Queue.Close()
		return nil, err
	}
	return conn, nil
}

// ControllerConn implements l1.ControllerConn using MQTT.
type ControllerConn struct {
	comm.ControllerConn
	Queue *mqtt.Queue

	rw *mqtt.ReadWriter
}

// Run implements Runnable. The broker connection is closed on exit.
func (c *ControllerConn) Run(ctx context.Context) error {
	defer c.Queue.Close()
	return c.ControllerConn.Run(ctx)
}

// ParseMeta decodes a device registration from its meta topic and payload.
func ParseMeta(topic string, payload []byte) (l1.ControllerInfo, bool) {
	var info l1.ControllerInfo
	ref, ok := RefFromMetaTopic(topic)
	if !ok {
		return info, false
	}
	info.Ref = ref
	if err := json.Unmarshal(payload, &info.Meta); err != nil {
		glog.Warningf("%s: invalid meta: %v", topic, err)
	}
	return info, true
}
