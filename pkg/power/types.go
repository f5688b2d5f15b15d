// Package power suspends the mesh radio around low-power sleeps and
// hibernates the device with optional GPIO wake sources.
package power

import (
	"fmt"
	"time"
)

// State is a low-power state of the platform power subsystem.
type State int

// Low-power states, from shallow to deep.
const (
	// StateSleep1 keeps the external power rail energized.
	StateSleep1 State = iota + 1
	// StateSleep3 is entered when the external rail may go down.
	StateSleep3
	// StateDeepSleep1 is the deepest state, the device may reset on wake.
	StateDeepSleep1
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateSleep1:
		return "SLEEP_1"
	case StateSleep3:
		return "SLEEP_3"
	case StateDeepSleep1:
		return "DEEP_SLEEP_1"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// SleepState selects the state entered by a sleep cycle.
func SleepState(externalAwake bool) State {
	if externalAwake {
		return StateSleep1
	}
	return StateSleep3
}

// LinkMode is the link mode configuration of the mesh radio.
type LinkMode struct {
	RxOnWhenIdle       bool
	SecureDataRequests bool
	FullThreadDevice   bool
	FullNetworkData    bool
}

// RadioSnapshot is the radio state captured before suspending, handed back
// unmodified on resume.
type RadioSnapshot struct {
	Channel  uint8
	LinkMode LinkMode
}

// Radio is the mesh radio subsystem.
type Radio interface {
	Channel() (uint8, error)
	LinkMode() (LinkMode, error)
	// Suspend stops all scheduled radio activity.
	Suspend() error
	// Resume restarts radio activity with the given parameters instead
	// of re-negotiating them.
	Resume(channel uint8, mode LinkMode) error
}

// PowerManager controls platform low-power states.
// Arm allows the state, Enter requests it for the next idle period and
// Disarm forbids it again.
type PowerManager interface {
	Arm(State) error
	Enter(State) error
	Disarm(State) error
}

// DevicePower suspends and resumes all device drivers.
type DevicePower interface {
	SuspendDevices() error
	ResumeDevices() error
}

// Trigger selects the pin condition that wakes the device.
type Trigger int

// Wake triggers.
const (
	TriggerLevelLow Trigger = iota
	TriggerLevelHigh
	TriggerFallingEdge
	TriggerRisingEdge
)

// WakeConfig is the input configuration of a wake pin.
type WakeConfig struct {
	PullUp  bool
	Trigger Trigger
}

// DefaultWakeConfig pulls the pin up and wakes when it is driven low.
var DefaultWakeConfig = WakeConfig{PullUp: true, Trigger: TriggerLevelLow}

// Port is a GPIO controller.
type Port interface {
	// ConfigureWake configures the pin as an interrupt driven input.
	ConfigureWake(pin uint8, cfg WakeConfig) error
	// EnableCallback enables the interrupt callback of the pin.
	EnableCallback(pin uint8) error
}

// PortResolver resolves GPIO controllers by name, e.g. "GPIO_0".
type PortResolver interface {
	Port(name string) (Port, bool)
}

// PowerGate switches the external device power rail.
type PowerGate interface {
	SetExternalPower(on bool) error
}

// Sleeper blocks the caller.
type Sleeper interface {
	Sleep(time.Duration)
}

// SleeperFunc is the func form of Sleeper.
type SleeperFunc func(time.Duration)

// Sleep implements Sleeper.
func (f SleeperFunc) Sleep(d time.Duration) {
	f(d)
}

// WakeSource is a GPIO pin waking the device from power down.
type WakeSource struct {
	Controller string
	Pin        uint8
}

// String implements fmt.Stringer.
func (w WakeSource) String() string {
	return fmt.Sprintf("%s:%d", w.Controller, w.Pin)
}
