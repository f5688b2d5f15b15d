package device

import (
	"context"
	"fmt"
	"io"
	"log"

	fx "github.com/robotalks/degu.go/pkg/framework"
	"github.com/robotalks/degu.go/pkg/l1/env/controller"
	"github.com/robotalks/degu.go/pkg/transport"
)

// Env is the runtime of a device.
type Env struct {
	Config   *Config
	Conn     transport.Conn
	Device   *Device
	Handler  *Handler
	Registry *controller.Env
}

// NewEnv dials the shadow transport and registers the device.
func (c *Config) NewEnv(ctx context.Context) (*Env, error) {
	conn, err := transport.Dial(ctx, c.ShadowURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.ShadowURL, err)
	}
	env, err := c.NewEnvWith(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	env.Conn = conn
	return env, nil
}

// NewEnvWith creates Env over an established transport.
func (c *Config) NewEnvWith(conn io.ReadWriter) (*Env, error) {
	dev := New(conn, c.platform())
	dev.ShadowPath = c.ShadowPath
	dev.Timeout = c.Timeout
	handler := NewHandler(dev)
	reg, err := c.Registry.NewEnv(handler)
	if err != nil {
		return nil, err
	}
	handler.Events = reg.Registrar
	return &Env{
		Config:   c,
		Device:   dev,
		Handler:  handler,
		Registry: reg,
	}, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv(ctx context.Context) *Env {
	env, err := c.NewEnv(ctx)
	if err != nil {
		log.Fatalln(err)
	}
	return env
}

// Runnables returns what keeps the device online.
func (e *Env) Runnables() []fx.Runnable {
	return e.Registry.Runnables()
}

// Close implements io.Closer.
func (e *Env) Close() error {
	if e.Conn != nil {
		return e.Conn.Close()
	}
	return nil
}
