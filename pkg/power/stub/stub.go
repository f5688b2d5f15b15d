//go:build !tinygo && !baremetal

// Package stub provides a host-side power platform which records every
// hardware operation into a journal, for tests and simulation.
package stub

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/degu.go/pkg/power"
)

// Default controllers and their pin counts.
var DefaultControllers = map[string]int{
	"GPIO_0": 32,
	"GPIO_1": 16,
}

// Platform is a simulated board.
type Platform struct {
	// OnSleep is invoked while sleeping, with the lock released.
	OnSleep func(time.Duration)
	// RealSleep makes the clock actually block.
	RealSleep bool

	mu          sync.Mutex
	journal     []string
	fail        map[string]error
	channel     uint8
	mode        power.LinkMode
	suspended   bool
	external    bool
	controllers map[string]int
	wake        map[power.WakeSource]power.WakeConfig
	armed       map[power.State]bool
}

// New creates a simulated board with radio on channel 11, attached as a
// sleepy child.
func New() *Platform {
	p := &Platform{
		fail:        make(map[string]error),
		channel:     11,
		mode:        power.LinkMode{SecureDataRequests: true},
		external:    true,
		controllers: make(map[string]int),
		wake:        make(map[power.WakeSource]power.WakeConfig),
		armed:       make(map[power.State]bool),
	}
	for name, pins := range DefaultControllers {
		p.controllers[name] = pins
	}
	return p
}

// Platform returns the collaborators for power.NewSequencer.
func (p *Platform) Platform() power.Platform {
	return power.Platform{
		Radio:   (*radio)(p),
		Power:   (*manager)(p),
		Devices: (*devices)(p),
		Ports:   (*ports)(p),
		Gate:    (*gate)(p),
		Clock:   (*clock)(p),
	}
}

// FailOn makes the named step fail with err, e.g. "radio.resume".
func (p *Platform) FailOn(step string, err error) {
	p.mu.Lock()
	p.fail[step] = err
	p.mu.Unlock()
}

// AddController attaches a GPIO controller.
func (p *Platform) AddController(name string, pins int) {
	p.mu.Lock()
	p.controllers[name] = pins
	p.mu.Unlock()
}

// Journal returns the recorded operations in order.
func (p *Platform) Journal() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.journal...)
}

// ResetJournal clears the journal.
func (p *Platform) ResetJournal() {
	p.mu.Lock()
	p.journal = nil
	p.mu.Unlock()
}

// SetRadio overrides the current radio parameters.
func (p *Platform) SetRadio(channel uint8, mode power.LinkMode) {
	p.mu.Lock()
	p.channel, p.mode = channel, mode
	p.mu.Unlock()
}

// Radio returns the current radio parameters.
func (p *Platform) Radio() power.RadioSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return power.RadioSnapshot{Channel: p.channel, LinkMode: p.mode}
}

// Suspended reports whether the radio is suspended.
func (p *Platform) Suspended() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.suspended
}

// ExternalPower reports the state of the external rail.
func (p *Platform) ExternalPower() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.external
}

// Armed reports whether the state is armed.
func (p *Platform) Armed(s power.State) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.armed[s]
}

// WakeSources returns the configured wake pins, sorted.
func (p *Platform) WakeSources() []power.WakeSource {
	p.mu.Lock()
	defer p.mu.Unlock()
	sources := make([]power.WakeSource, 0, len(p.wake))
	for src := range p.wake {
		sources = append(sources, src)
	}
	sort.Slice(sources, func(i, j int) bool {
		if sources[i].Controller != sources[j].Controller {
			return sources[i].Controller < sources[j].Controller
		}
		return sources[i].Pin < sources[j].Pin
	})
	return sources
}

// record must be called with p.mu held.
func (p *Platform) record(step string, args ...interface{}) error {
	entry := step
	if len(args) > 0 {
		entry += " " + fmt.Sprint(args...)
	}
	p.journal = append(p.journal, entry)
	glog.V(3).Infof("stub: %s", entry)
	return p.fail[step]
}

type radio Platform

func (r *radio) Channel() (uint8, error) {
	p := (*Platform)(r)
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel, p.record("radio.channel")
}

func (r *radio) LinkMode() (power.LinkMode, error) {
	p := (*Platform)(r)
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode, p.record("radio.linkmode")
}

func (r *radio) Suspend() error {
	p := (*Platform)(r)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("radio.suspend"); err != nil {
		return err
	}
	p.suspended = true
	return nil
}

func (r *radio) Resume(channel uint8, mode power.LinkMode) error {
	p := (*Platform)(r)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("radio.resume", channel); err != nil {
		return err
	}
	p.channel, p.mode, p.suspended = channel, mode, false
	return nil
}

type manager Platform

func (m *manager) Arm(s power.State) error {
	p := (*Platform)(m)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("power.arm", s); err != nil {
		return err
	}
	p.armed[s] = true
	return nil
}

func (m *manager) Enter(s power.State) error {
	p := (*Platform)(m)
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.record("power.enter", s)
}

func (m *manager) Disarm(s power.State) error {
	p := (*Platform)(m)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("power.disarm", s); err != nil {
		return err
	}
	delete(p.armed, s)
	return nil
}

type devices Platform

func (d *devices) SuspendDevices() error {
	p := (*Platform)(d)
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.record("devices.suspend")
}

func (d *devices) ResumeDevices() error {
	p := (*Platform)(d)
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.record("devices.resume")
}

type gate Platform

func (g *gate) SetExternalPower(on bool) error {
	p := (*Platform)(g)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("gate.external", on); err != nil {
		return err
	}
	p.external = on
	return nil
}

type clock Platform

func (c *clock) Sleep(d time.Duration) {
	p := (*Platform)(c)
	p.mu.Lock()
	p.record("clock.sleep", d)
	onSleep, block := p.OnSleep, p.RealSleep
	p.mu.Unlock()
	if onSleep != nil {
		onSleep(d)
	}
	if block {
		time.Sleep(d)
	}
}

type ports Platform

func (r *ports) Port(name string) (power.Port, bool) {
	p := (*Platform)(r)
	p.mu.Lock()
	defer p.mu.Unlock()
	pins, ok := p.controllers[name]
	if !ok {
		return nil, false
	}
	return &port{p: p, name: name, pins: pins}, true
}

type port struct {
	p    *Platform
	name string
	pins int
}

// NumPins is checked before any pin is configured.
func (g *port) NumPins() int {
	return g.pins
}

func (g *port) ConfigureWake(pin uint8, cfg power.WakeConfig) error {
	src := power.WakeSource{Controller: g.name, Pin: pin}
	g.p.mu.Lock()
	defer g.p.mu.Unlock()
	if err := g.p.record("gpio.configure", src); err != nil {
		return err
	}
	g.p.wake[src] = cfg
	return nil
}

func (g *port) EnableCallback(pin uint8) error {
	g.p.mu.Lock()
	defer g.p.mu.Unlock()
	return g.p.record("gpio.callback", power.WakeSource{Controller: g.name, Pin: pin})
}
