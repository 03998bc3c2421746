package gate

import (
	"github.com/sarchlab/parkgate/sim"
)

// Builder constructs a Comp either from a Spec or per-field setters.
type Builder struct {
	spec    Spec
	engine  sim.Engine
	inputs  InputSource
	outputs OutputSink
}

// MakeBuilder returns a new Builder with default Spec.
func MakeBuilder() Builder {
	return Builder{spec: Defaults()}
}

// WithEngine sets the engine that drives the gate clock.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithSpec replaces the whole Spec.
func (b Builder) WithSpec(spec Spec) Builder {
	b.spec = spec
	return b
}

// WithFreq sets the clock frequency.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.spec.Freq = freq
	return b
}

// WithThreshold sets the dwell threshold in ticks.
func (b Builder) WithThreshold(ticks uint32) Builder {
	b.spec.Threshold = ticks
	return b
}

// WithSecret sets the credential pair that opens the gate.
func (b Builder) WithSecret(a, c uint8) Builder {
	b.spec.Secret = Code{A: a, B: c}
	return b
}

// WithCodeWidth sets the bit width of each credential digit.
func (b Builder) WithCodeWidth(bits uint8) Builder {
	b.spec.CodeWidth = bits
	return b
}

// WithEchoCode makes the displays show the entered digits while waiting for
// a code.
func (b Builder) WithEchoCode(echo bool) Builder {
	b.spec.EchoCode = echo
	return b
}

// WithInputSource sets where the gate samples its inputs.
func (b Builder) WithInputSource(src InputSource) Builder {
	b.inputs = src
	return b
}

// WithOutputSink sets where the gate publishes its outputs.
func (b Builder) WithOutputSink(sink OutputSink) Builder {
	b.outputs = sink
	return b
}

// Build creates the gate component. It panics if the Spec is invalid or a
// required collaborator is missing.
func (b Builder) Build(name string) *Comp {
	if b.engine == nil {
		panic("gate: engine is required")
	}

	if b.inputs == nil {
		panic("gate: input source is required")
	}

	ctrl, err := NewController(b.spec)
	if err != nil {
		panic(err)
	}

	c := &Comp{
		Spec:    b.spec,
		ctrl:    ctrl,
		inputs:  b.inputs,
		outputs: b.outputs,
	}
	c.TickingComponent = sim.NewSecondaryTickingComponent(
		name, b.engine, b.spec.Freq, c)

	c.AddMiddleware(&sampleMiddleware{Comp: c})
	c.AddMiddleware(&fsmMiddleware{Comp: c})

	return c
}
