package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	fx "github.com/robotalks/degu.go/pkg/framework"
	"github.com/robotalks/degu.go/pkg/l1"
	"github.com/robotalks/degu.go/pkg/l1/comm"
	"github.com/robotalks/degu.go/pkg/transport/mqtt"
)

// Registrar implements l1.Registrar using MQTT.
type Registrar struct {
	Queue *mqtt.Queue
	Info  l1.ControllerInfo

	meta      []byte
	rw        *mqtt.ReadWriter
	registrar comm.Registrar
}

// NewRegistrar creates a Registrar serving commands with handler.
func NewRegistrar(brokerURL string, info l1.ControllerInfo, handler l1.CommandHandler) (*Registrar, error) {
	if !info.Ref.IsValid() {
		return nil, fmt.Errorf("invalid device ref %q", info.Ref.Name())
	}
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := mqtt.ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+TopicOf(info.Ref, MetaTopic), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID(l1.DeviceType + ":" + info.Ref.ID)
	}
	r := &Registrar{
		Queue: mqtt.NewQueue(opts, topicPrefix),
		Info:  info,
		meta:  meta,
	}
	r.Queue.OnConnect = func(*mqtt.Queue) { r.publishMeta(r.meta) }
	r.rw = ForController(r.Queue, info.Ref)
	r.rw.QoS = 1
	r.registrar.Init(r.rw, handler)
	return r, nil
}

// SendEvent implements l1.Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	return r.registrar.SendEvent(ctx, msg)
}

// Name implements fx.Named.
func (r *Registrar) Name() string {
	return "mqtt-registrar"
}

// Run implements Runnable. The retained meta is cleared on exit.
func (r *Registrar) Run(ctx context.Context) error {
	if err := r.Queue.ConnectWait(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if err := r.rw.Open(ctx); err != nil {
		r.Queue.Close()
		return fmt.Errorf("subscribe: %w", err)
	}
	glog.Infof("registered %s", r.Info.Ref.Name())
	err := r.registrar.Run(ctx)
	r.publishMeta(nil).Wait()
	r.Queue.Close()
	return err
}

func (r *Registrar) publishMeta(meta []byte) paho.Token {
	return r.Queue.PubWith(TopicOf(r.Info.Ref, MetaTopic), meta, 1, true)
}
