// Package device exposes the operations of a degu sensor: shadow
// synchronization over CoAP, update checks and power sequencing.
package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/degu.go/pkg/coap"
	"github.com/robotalks/degu.go/pkg/power"
)

// DefaultShadowPath is the resource of the device shadow.
const DefaultShadowPath = "thing"

// ErrNoShadow indicates the shadow can't be fetched.
var ErrNoShadow = errors.New("no shadow")

// UpdateChecker looks for pending firmware updates.
type UpdateChecker interface {
	CheckUpdate(ctx context.Context) (int, error)
}

// UpdateCheckerFunc is the func form of UpdateChecker.
type UpdateCheckerFunc func(ctx context.Context) (int, error)

// CheckUpdate implements UpdateChecker.
func (f UpdateCheckerFunc) CheckUpdate(ctx context.Context) (int, error) {
	return f(ctx)
}

// NopUpdateChecker never finds an update.
type NopUpdateChecker struct{}

// CheckUpdate implements UpdateChecker.
func (NopUpdateChecker) CheckUpdate(context.Context) (int, error) { return 0, nil }

// Device is a degu sensor.
type Device struct {
	Engine    *coap.Engine
	Conn      io.ReadWriter
	Sequencer *power.Sequencer
	Updater   UpdateChecker

	// ShadowPath is the URI path of the shadow, DefaultShadowPath if empty.
	ShadowPath string
	// Timeout bounds each CoAP transaction, 0 for no bound.
	Timeout time.Duration

	// one transaction at a time over Conn.
	xferLock sync.Mutex
	radio    power.Radio
}

// New creates a Device talking CoAP over conn and sequencing power on platform.
func New(conn io.ReadWriter, platform power.Platform) *Device {
	return &Device{
		Engine:     coap.NewEngine(),
		Conn:       conn,
		Sequencer:  power.NewSequencer(platform),
		Updater:    NopUpdateChecker{},
		ShadowPath: DefaultShadowPath,
		radio:      platform.Radio,
	}
}

func (d *Device) shadowPath() string {
	if d.ShadowPath != "" {
		return d.ShadowPath
	}
	return DefaultShadowPath
}

func (d *Device) exchange(ctx context.Context, req *coap.Request, out []byte) (coap.Reply, error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}
	d.xferLock.Lock()
	defer d.xferLock.Unlock()
	return d.Engine.Exchange(ctx, d.Conn, req, out)
}

// CheckUpdate returns the status reported by the UpdateChecker.
func (d *Device) CheckUpdate(ctx context.Context) (int, error) {
	if d.Updater == nil {
		return 0, nil
	}
	return d.Updater.CheckUpdate(ctx)
}

// UpdateShadow posts doc to the shadow and returns the response code.
func (d *Device) UpdateShadow(ctx context.Context, doc []byte) (coap.Code, error) {
	reply, err := d.exchange(ctx, &coap.Request{
		Method:  coap.POST,
		Path:    d.shadowPath(),
		Payload: doc,
	}, nil)
	if err != nil {
		return coap.Empty, err
	}
	glog.V(1).Infof("shadow updated: %s", reply.Code)
	return reply.Code, nil
}

// GetShadow fetches the shadow document. A response which isn't a success
// fails with ErrNoShadow.
func (d *Device) GetShadow(ctx context.Context) ([]byte, error) {
	_, doc, err := d.getShadow(ctx)
	return doc, err
}

func (d *Device) getShadow(ctx context.Context) (coap.Code, []byte, error) {
	size := d.Engine.MaxMessageLen
	if size <= 0 {
		size = coap.MaxMessageLen
	}
	reply, err := d.exchange(ctx, &coap.Request{Method: coap.GET, Path: d.shadowPath()}, make([]byte, size))
	if err != nil {
		return coap.Empty, nil, err
	}
	if !reply.Code.IsSuccess() {
		return reply.Code, nil, fmt.Errorf("%w: %s", ErrNoShadow, reply.Code)
	}
	return reply.Code, reply.Payload, nil
}

// Suspend sleeps for seconds with the radio suspended.
func (d *Device) Suspend(seconds int, externalAwake bool) error {
	return d.Sequencer.SleepCycle(seconds, externalAwake)
}

// PowerDown enters the deepest sleep, woken up by sources.
func (d *Device) PowerDown(externalAwake bool, sources []power.WakeSource) error {
	return d.Sequencer.PowerDown(externalAwake, sources)
}

// Radio reports the current radio configuration.
func (d *Device) Radio() (power.RadioSnapshot, error) {
	if d.radio == nil {
		return power.RadioSnapshot{}, power.ErrNoRadio
	}
	return power.Capture(d.radio)
}
