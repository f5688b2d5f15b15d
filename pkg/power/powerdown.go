package power

import (
	"fmt"

	"github.com/golang/glog"
)

type pinCounter interface {
	NumPins() int
}

type wakePort struct {
	src  WakeSource
	port Port
}

// ValidateWakeSources checks the request without touching any hardware:
// wake sources require external power, and every controller must resolve.
func ValidateWakeSources(ports PortResolver, externalAwake bool, sources []WakeSource) error {
	_, err := resolveWakeSources(ports, externalAwake, sources)
	return err
}

func resolveWakeSources(ports PortResolver, externalAwake bool, sources []WakeSource) ([]wakePort, error) {
	if len(sources) == 0 {
		return nil, nil
	}
	if !externalAwake {
		return nil, ErrExternalPowerRequired
	}
	if ports == nil {
		ports = NoPorts{}
	}
	resolved := make([]wakePort, 0, len(sources))
	for _, src := range sources {
		port, ok := ports.Port(src.Controller)
		if !ok || port == nil {
			return nil, &PortError{Source: src}
		}
		if pc, ok := port.(pinCounter); ok && int(src.Pin) >= pc.NumPins() {
			return nil, &PortError{Source: src, InvalidPin: true}
		}
		resolved = append(resolved, wakePort{src: src, port: port})
	}
	return resolved, nil
}

// ValidateWakeSources checks sources against the ports of the platform.
func (s *Sequencer) ValidateWakeSources(externalAwake bool, sources []WakeSource) error {
	return ValidateWakeSources(s.platform.Ports, externalAwake, sources)
}

// PowerDown hibernates the device in the deepest low-power state.
//
// Wake sources are validated as a whole before any pin is configured: a
// request with any invalid source configures nothing. externalAwake keeps
// the external power rail up, which is required to listen to wake sources.
func (s *Sequencer) PowerDown(externalAwake bool, sources []WakeSource) (err error) {
	p := s.platform
	wakePorts, err := resolveWakeSources(p.Ports, externalAwake, sources)
	if err != nil {
		return err
	}
	if err = s.acquire(); err != nil {
		return err
	}
	defer s.release()

	for _, wp := range wakePorts {
		if err = wp.port.ConfigureWake(wp.src.Pin, DefaultWakeConfig); err != nil {
			return fmt.Errorf("configure wake source %s: %w", wp.src, err)
		}
		if err = wp.port.EnableCallback(wp.src.Pin); err != nil {
			return fmt.Errorf("enable wake callback %s: %w", wp.src, err)
		}
		glog.V(1).Infof("wake source %s armed", wp.src)
	}

	if err = p.Gate.SetExternalPower(externalAwake); err != nil {
		return fmt.Errorf("external power: %w", err)
	}

	if err = p.Devices.SuspendDevices(); err != nil {
		return fmt.Errorf("suspend devices: %w", err)
	}
	defer func() {
		if rerr := p.Devices.ResumeDevices(); rerr != nil {
			glog.Errorf("resume devices failed: %v", rerr)
			if err == nil {
				err = fmt.Errorf("resume devices: %w", rerr)
			}
		}
	}()

	if err = p.Power.Arm(StateDeepSleep1); err != nil {
		return fmt.Errorf("arm %s: %w", StateDeepSleep1, err)
	}
	glog.V(1).Infof("entering %s", StateDeepSleep1)
	err = p.Power.Enter(StateDeepSleep1)
	if derr := p.Power.Disarm(StateDeepSleep1); derr != nil && err == nil {
		err = derr
	}
	if err != nil {
		return fmt.Errorf("%s: %w", StateDeepSleep1, err)
	}
	return nil
}
