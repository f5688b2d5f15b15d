// Package l1 defines the remote command surface between devices and the
// controllers driving them.
package l1

import (
	"context"

	fx "github.com/robotalks/degu.go/pkg/framework"
)

// DeviceType is the registry type of degu devices.
const DeviceType = "degu"

// Registrar registers a device to a registry and forwards its events.
type Registrar interface {
	// SendEvent publishes an event to connected controllers.
	SendEvent(context.Context, fx.Message) error
}

// CommandHandler executes commands received by a device. Commands are
// handled one at a time in arrival order.
type CommandHandler interface {
	HandleCommand(context.Context, fx.Message) (fx.Message, error)
}

// HandleCommandFunc is the func form of CommandHandler.
type HandleCommandFunc func(context.Context, fx.Message) (fx.Message, error)

// HandleCommand implements CommandHandler.
func (f HandleCommandFunc) HandleCommand(ctx context.Context, msg fx.Message) (fx.Message, error) {
	return f(ctx, msg)
}

// ControllerRef is a reference to a registered device.
type ControllerRef struct {
	// Type is the device type.
	Type string
	// ID is unique ID of the device.
	ID string
}

// Name retrieves the name from ref.
func (r ControllerRef) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates ControllerRef is valid.
func (r ControllerRef) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// ControllerMeta provides metadata of a device.
type ControllerMeta struct {
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// ControllerInfo provides information of a device.
type ControllerInfo struct {
	Ref  ControllerRef
	Meta ControllerMeta
}

// Connector is used by controllers to find and connect to devices.
type Connector interface {
	// Discover enumerates registered devices.
	Discover(context.Context) ([]ControllerInfo, error)
	// Connect connects to the specified device.
	Connect(context.Context, ControllerRef) (ControllerConn, error)
}

// ControllerConn is the connection to a device.
type ControllerConn interface {
	fx.Runnable
	// DoCommand sends a command, the result arrives on the future.
	DoCommand(fx.Message) CommandFuture
	// Events delivers events from the device, nil if not supported.
	Events() <-chan fx.Message
}

// Result represents result of a command.
type Result struct {
	Msg fx.Message
	Err error
}

// CommandFuture is the future of sent command.
type CommandFuture interface {
	ResultChan() <-chan Result
}
