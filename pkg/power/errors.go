package power

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy indicates another sleep cycle or power down is in flight.
	ErrBusy = errors.New("power sequence in progress")
	// ErrExternalPowerRequired indicates wake sources are requested while
	// external power is going down.
	ErrExternalPowerRequired = errors.New("unable to listen to external gpio when external device power is down")
	// ErrInvalidDuration indicates the sleep duration is out of range.
	ErrInvalidDuration = fmt.Errorf("sleep duration must be within [0, %d] seconds", MaxSleepSeconds)
	// ErrNoRadio indicates the platform has no radio to suspend.
	ErrNoRadio = errors.New("no radio")
)

// ShapeError indicates the wake source request is malformed.
type ShapeError struct {
	// Index is the offending element of a list, -1 if the request itself.
	Index int
}

// Error implements error.
func (e *ShapeError) Error() string {
	if e.Index < 0 {
		return `the listener must be a pair ("GPIO_x", pin), or their list`
	}
	return fmt.Sprintf("one or more of the listeners are not pairs (element %d)", e.Index)
}

// PortError indicates the controller of a wake source can't be resolved,
// or the pin doesn't exist on it.
type PortError struct {
	Source     WakeSource
	InvalidPin bool
}

// Error implements error.
func (e *PortError) Error() string {
	if e.InvalidPin {
		return fmt.Sprintf("the specified pin is invalid: %s", e.Source)
	}
	return fmt.Sprintf("the specified port is invalid: %q", e.Source.Controller)
}
