package stimulus

import (
	"github.com/sarchlab/parkgate/sim"
)

// Builder constructs a Driver.
type Builder struct {
	engine   sim.Engine
	freq     sim.Freq
	script   *Script
	pins     Pins
	target   Target
	progress ProgressReporter
}

// MakeBuilder returns a Builder with a 100 kHz clock.
func MakeBuilder() Builder {
	return Builder{freq: 100 * sim.KHz}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the clock. It must match the clock of the target.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithScript sets the script to run.
func (b Builder) WithScript(script *Script) Builder {
	b.script = script
	return b
}

// WithPins sets the pins to drive.
func (b Builder) WithPins(pins Pins) Builder {
	b.pins = pins
	return b
}

// WithTarget sets the gate to check.
func (b Builder) WithTarget(target Target) Builder {
	b.target = target
	return b
}

// WithProgress sets where finished steps are reported.
func (b Builder) WithProgress(progress ProgressReporter) Builder {
	b.progress = progress
	return b
}

// Build creates the driver.
func (b Builder) Build(name string) *Driver {
	if b.engine == nil || b.script == nil || b.pins == nil || b.target == nil {
		panic("stimulus: engine, script, pins and target are required")
	}

	d := &Driver{
		script:   b.script,
		pins:     b.pins,
		target:   b.target,
		progress: b.progress,
		current:  -1,
	}
	d.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, d)

	return d
}
