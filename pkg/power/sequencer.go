package power

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
)

// MaxSleepSeconds bounds the duration of one sleep cycle.
const MaxSleepSeconds = 7 * 24 * 3600

// Sequencer sequences sleep cycles and power downs. At most one sequence
// runs at a time, overlapping calls fail with ErrBusy rather than
// interleaving radio suspend and resume.
type Sequencer struct {
	platform Platform
	caps     Caps
	busy     int32
}

// NewSequencer creates a Sequencer on the platform.
func NewSequencer(p Platform) *Sequencer {
	return &Sequencer{platform: p.withDefaults(), caps: p.Caps()}
}

// Caps reports the features of the platform.
func (s *Sequencer) Caps() Caps {
	return s.caps
}

func (s *Sequencer) acquire() error {
	if !atomic.CompareAndSwapInt32(&s.busy, 0, 1) {
		return ErrBusy
	}
	return nil
}

func (s *Sequencer) release() {
	atomic.StoreInt32(&s.busy, 0)
}

// Capture reads the current radio parameters.
func Capture(r Radio) (snap RadioSnapshot, err error) {
	if snap.Channel, err = r.Channel(); err != nil {
		return
	}
	snap.LinkMode, err = r.LinkMode()
	return
}

// SleepCycle suspends the radio and sleeps for the given seconds in a
// low-power state selected by externalAwake, then resumes the radio with
// exactly the parameters it had before. The sleep is not cancelable.
func (s *Sequencer) SleepCycle(seconds int, externalAwake bool) (err error) {
	if seconds < 0 || seconds > MaxSleepSeconds {
		return ErrInvalidDuration
	}
	p := s.platform
	if p.Radio == nil {
		return ErrNoRadio
	}
	if err = s.acquire(); err != nil {
		return err
	}
	defer s.release()

	snap, err := Capture(p.Radio)
	if err != nil {
		return fmt.Errorf("capture radio state: %w", err)
	}

	state := SleepState(externalAwake)
	if err = p.Power.Arm(state); err != nil {
		return fmt.Errorf("arm %s: %w", state, err)
	}
	defer func() {
		if derr := p.Power.Disarm(state); derr != nil {
			glog.Warningf("disarm %s failed: %v", state, derr)
			if err == nil {
				err = fmt.Errorf("disarm %s: %w", state, derr)
			}
		}
	}()
	if err = p.Power.Enter(state); err != nil {
		return fmt.Errorf("enter %s: %w", state, err)
	}

	if err = p.Radio.Suspend(); err != nil {
		return fmt.Errorf("suspend radio: %w", err)
	}
	glog.V(1).Infof("radio suspended (channel %d), sleeping %ds in %s", snap.Channel, seconds, state)
	p.Clock.Sleep(time.Duration(seconds) * time.Second)
	if err = p.Radio.Resume(snap.Channel, snap.LinkMode); err != nil {
		glog.Errorf("resume radio failed: %v", err)
		return fmt.Errorf("resume radio: %w", err)
	}
	glog.V(1).Infof("radio resumed (channel %d)", snap.Channel)
	return nil
}
