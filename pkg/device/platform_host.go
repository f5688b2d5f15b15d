//go:build !tinygo && !baremetal

package device

import (
	"github.com/robotalks/degu.go/pkg/power"
	"github.com/robotalks/degu.go/pkg/power/stub"
)

// Host builds run on a simulated board which really sleeps.
func (c *Config) platform() power.Platform {
	board := stub.New()
	board.RealSleep = true
	for name, pins := range c.Controllers {
		board.AddController(name, pins)
	}
	return board.Platform()
}
