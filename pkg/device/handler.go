package device

import (
	"context"

	"github.com/golang/glog"

	fx "github.com/robotalks/degu.go/pkg/framework"
	"github.com/robotalks/degu.go/pkg/l1"
	"github.com/robotalks/degu.go/pkg/l1/msgs"
	"github.com/robotalks/degu.go/pkg/power"
	pb "github.com/robotalks/degu.go/pkg/proto/degu/v1"
)

// Handler serves remote commands with a Device.
type Handler struct {
	Device *Device
	// Events receives power events, optional.
	Events l1.Registrar
}

// NewHandler creates a Handler.
func NewHandler(dev *Device) *Handler {
	return &Handler{Device: dev}
}

// HandleCommand implements l1.CommandHandler.
func (h *Handler) HandleCommand(ctx context.Context, msg fx.Message) (fx.Message, error) {
	switch m := msg.(type) {
	case *msgs.CheckUpdate:
		status, err := h.Device.CheckUpdate(ctx)
		if err != nil {
			return nil, err
		}
		reply := &msgs.UpdateStatus{}
		reply.Status = int32(status)
		return reply, nil
	case *msgs.ShadowGet:
		code, doc, err := h.Device.getShadow(ctx)
		if err != nil {
			return nil, err
		}
		reply := &msgs.Shadow{}
		reply.Code, reply.Document = uint32(code), doc
		return reply, nil
	case *msgs.ShadowUpdate:
		code, err := h.Device.UpdateShadow(ctx, m.Document)
		if err != nil {
			return nil, err
		}
		reply := &msgs.ShadowUpdated{}
		reply.Code = uint32(code)
		return reply, nil
	case *msgs.Suspend:
		return nil, h.suspend(ctx, m)
	case *msgs.PowerDown:
		return nil, h.powerDown(ctx, m)
	}
	return nil, msgs.ErrUnsupportedCommand
}

func (h *Handler) suspend(ctx context.Context, m *msgs.Suspend) error {
	if m.Seconds > power.MaxSleepSeconds {
		return power.ErrInvalidDuration
	}
	h.sendEvent(ctx, pb.PowerEvent_SUSPENDING, m.Seconds)
	if err := h.Device.Suspend(int(m.Seconds), m.ExternalAwake); err != nil {
		return err
	}
	h.sendEvent(ctx, pb.PowerEvent_RESUMED, m.Seconds)
	return nil
}

func (h *Handler) powerDown(ctx context.Context, m *msgs.PowerDown) error {
	if !m.ExternalAwake && len(m.WakeSources) > 0 {
		return power.ErrExternalPowerRequired
	}
	sources := make([]power.WakeSource, 0, len(m.WakeSources))
	for i, src := range m.WakeSources {
		if src == nil || src.Pin > 255 {
			return &power.ShapeError{Index: i}
		}
		sources = append(sources, power.WakeSource{Controller: src.Controller, Pin: uint8(src.Pin)})
	}
	if err := h.Device.Sequencer.ValidateWakeSources(m.ExternalAwake, sources); err != nil {
		return err
	}
	h.sendEvent(ctx, pb.PowerEvent_POWERING_DOWN, 0)
	return h.Device.PowerDown(m.ExternalAwake, sources)
}

func (h *Handler) sendEvent(ctx context.Context, phase pb.PowerEvent_Phase, seconds uint32) {
	if h.Events == nil {
		return
	}
	event := &msgs.PowerEvent{}
	event.Phase, event.Seconds = phase, seconds
	if snap, err := h.Device.Radio(); err == nil {
		event.Channel = uint32(snap.Channel)
	}
	if err := h.Events.SendEvent(ctx, event); err != nil {
		glog.Warningf("send %s event failed: %v", phase, err)
	}
}
