//go:build tinygo || baremetal

// Package nrf binds the power sequencer to nRF52 hardware.
package nrf

import (
	"device/nrf"
	"machine"

	"github.com/robotalks/degu.go/pkg/power"
)

// Board is the power platform of an nRF52 board.
type Board struct {
	// ExternalRail switches the external device power, NoPin if absent.
	ExternalRail machine.Pin
	// OnWake is invoked from the pin interrupt of a wake source.
	OnWake func(power.WakeSource)
}

// New creates the board without external rail.
func New() *Board {
	return &Board{ExternalRail: machine.NoPin}
}

// Platform returns the collaborators for power.NewSequencer. The mesh
// stack binding supplies the radio.
func (b *Board) Platform(radio power.Radio) power.Platform {
	p := power.Platform{
		Radio: radio,
		Power: systemPower{},
		Ports: b,
	}
	if b.ExternalRail != machine.NoPin {
		b.ExternalRail.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.Gate = b
	}
	return p
}

// Port implements power.PortResolver.
func (b *Board) Port(name string) (power.Port, bool) {
	if name != "GPIO_0" {
		return nil, false
	}
	return &port{board: b, name: name}, true
}

// SetExternalPower implements power.PowerGate.
func (b *Board) SetExternalPower(on bool) error {
	b.ExternalRail.Set(on)
	return nil
}

type port struct {
	board *Board
	name  string
}

func (p *port) NumPins() int {
	return len(nrf.P0.PIN_CNF)
}

func (p *port) ConfigureWake(pin uint8, cfg power.WakeConfig) error {
	mode := machine.PinInput
	if cfg.PullUp {
		mode = machine.PinInputPullup
	}
	machine.Pin(pin).Configure(machine.PinConfig{Mode: mode})
	sense := uint32(nrf.GPIO_PIN_CNF_SENSE_Low)
	if cfg.Trigger == power.TriggerLevelHigh || cfg.Trigger == power.TriggerRisingEdge {
		sense = nrf.GPIO_PIN_CNF_SENSE_High
	}
	reg := &nrf.P0.PIN_CNF[pin]
	reg.Set(reg.Get()&^nrf.GPIO_PIN_CNF_SENSE_Msk | sense<<nrf.GPIO_PIN_CNF_SENSE_Pos)
	return nil
}

func (p *port) EnableCallback(pin uint8) error {
	src := power.WakeSource{Controller: p.name, Pin: pin}
	return machine.Pin(pin).SetInterrupt(machine.PinFalling, func(machine.Pin) {
		if p.board.OnWake != nil {
			p.board.OnWake(src)
		}
	})
}

// systemPower maps sleep states to the idle scheduler and deep sleep to
// System OFF, which wakes through a reset.
type systemPower struct{}

func (systemPower) Arm(power.State) error    { return nil }
func (systemPower) Disarm(power.State) error { return nil }

func (systemPower) Enter(s power.State) error {
	if s == power.StateDeepSleep1 {
		nrf.POWER.SYSTEMOFF.Set(nrf.POWER_SYSTEMOFF_SYSTEMOFF_Enter)
	}
	return nil
}
