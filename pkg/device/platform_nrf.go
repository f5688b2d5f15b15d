//go:build tinygo || baremetal

package device

import (
	"github.com/robotalks/degu.go/pkg/power"
	"github.com/robotalks/degu.go/pkg/power/nrf"
)

// Radio is the mesh radio, set by the firmware before creating the Env.
var Radio power.Radio

func (c *Config) platform() power.Platform {
	return nrf.New().Platform(Radio)
}
