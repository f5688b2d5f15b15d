package power

import "time"

// Caps describes the low-power features available on the platform.
type Caps struct {
	SystemPower bool
	DevicePower bool
	WakeSources bool
	PowerGate   bool
}

// Platform bundles the hardware collaborators of the sequencer. It is
// selected once at startup; features the platform lacks are left nil and
// replaced by no-ops, so sequencing never branches on build features.
type Platform struct {
	Radio   Radio
	Power   PowerManager
	Devices DevicePower
	Ports   PortResolver
	Gate    PowerGate
	Clock   Sleeper
}

// Caps reports the features provided by the platform.
func (p Platform) Caps() Caps {
	return Caps{
		SystemPower: p.Power != nil && p.Power != PowerManager(NopPower{}),
		DevicePower: p.Devices != nil && p.Devices != DevicePower(NopDevices{}),
		WakeSources: p.Ports != nil && p.Ports != PortResolver(NoPorts{}),
		PowerGate:   p.Gate != nil && p.Gate != PowerGate(NopGate{}),
	}
}

func (p Platform) withDefaults() Platform {
	if p.Power == nil {
		p.Power = NopPower{}
	}
	if p.Devices == nil {
		p.Devices = NopDevices{}
	}
	if p.Ports == nil {
		p.Ports = NoPorts{}
	}
	if p.Gate == nil {
		p.Gate = NopGate{}
	}
	if p.Clock == nil {
		p.Clock = SleeperFunc(time.Sleep)
	}
	return p
}

// NopPower is the PowerManager of platforms without system power management.
type NopPower struct{}

// Arm implements PowerManager.
func (NopPower) Arm(State) error { return nil }

// Enter implements PowerManager.
func (NopPower) Enter(State) error { return nil }

// Disarm implements PowerManager.
func (NopPower) Disarm(State) error { return nil }

// NopDevices is the DevicePower of platforms without device power management.
type NopDevices struct{}

// SuspendDevices implements DevicePower.
func (NopDevices) SuspendDevices() error { return nil }

// ResumeDevices implements DevicePower.
func (NopDevices) ResumeDevices() error { return nil }

// NoPorts resolves no GPIO controller.
type NoPorts struct{}

// Port implements PortResolver.
func (NoPorts) Port(string) (Port, bool) { return nil, false }

// NopGate is the PowerGate of boards without a switchable external rail.
type NopGate struct{}

// SetExternalPower implements PowerGate.
func (NopGate) SetExternalPower(bool) error { return nil }
