package gate

import (
	"github.com/sarchlab/parkgate/sim"
	"github.com/sarchlab/parkgate/tracing"
)

// Hook positions of the gate component.
var (
	// HookPosTick is invoked after every tick with a TickRecord.
	HookPosTick = &sim.HookPos{Name: "GateTick"}

	// HookPosTransition is invoked with a TickRecord when the phase changes.
	HookPosTransition = &sim.HookPos{Name: "GateTransition"}
)

// Session trace vocabulary.
const (
	SessionKind = "session"
	SessionWhat = "vehicle"

	StepRejected = "rejected"
	StepAccepted = "accepted"
	StepReset    = "reset"
)

// TickRecord describes one clock edge of the gate.
type TickRecord struct {
	Cycle   uint64
	Time    sim.VTimeInSec
	Prev    Registers
	Next    Registers
	Inputs  Inputs
	Outputs Outputs
}

// Comp is a gate controller that ticks on a simulation engine. Its ticks are
// secondary events, so the inputs written by primary events of the same cycle
// are visible when it samples.
type Comp struct {
	*sim.TickingComponent
	sim.MiddlewareHolder

	Spec Spec

	ctrl    *Controller
	inputs  InputSource
	outputs OutputSink

	cycle   uint64
	sampled Inputs
	last    Outputs
	halted  bool
	session string
}

// Tick delegates to the middleware pipeline until the gate is halted.
func (c *Comp) Tick() bool {
	if c.Halted() {
		return false
	}

	return c.MiddlewareHolder.Tick()
}

// Halt stops the clock of the gate after the current tick.
func (c *Comp) Halt() {
	c.Lock()
	c.halted = true
	c.Unlock()
}

// Halted tells if the clock of the gate is stopped.
func (c *Comp) Halted() bool {
	c.Lock()
	defer c.Unlock()

	return c.halted
}

// Registers returns the committed registers.
func (c *Comp) Registers() Registers {
	return c.ctrl.Registers()
}

// Outputs returns the outputs of the last tick.
func (c *Comp) Outputs() Outputs {
	c.Lock()
	defer c.Unlock()

	return c.last
}

// Cycle returns the number of ticks performed.
func (c *Comp) Cycle() uint64 {
	c.Lock()
	defer c.Unlock()

	return c.cycle
}

// SnapshotState returns a serializable snapshot of the component.
func (c *Comp) SnapshotState() any {
	regs := c.ctrl.Registers()

	c.Lock()
	defer c.Unlock()

	return Snapshot{
		Phase:     regs.Phase.String(),
		Counter:   regs.Counter,
		Cycle:     c.cycle,
		Inputs:    c.sampled,
		Outputs:   c.last,
		Display:   c.last.DisplayText(),
		Halted:    c.halted,
		Threshold: c.Spec.Threshold,
	}
}

func (c *Comp) record(rec TickRecord) {
	ctx := sim.HookCtx{
		Domain: c,
		Pos:    HookPosTick,
		Item:   rec,
	}
	c.InvokeHook(ctx)

	if rec.Prev.Phase != rec.Next.Phase {
		ctx.Pos = HookPosTransition
		c.InvokeHook(ctx)
	}
}

func (c *Comp) traceSession(rec TickRecord) {
	prev, next := rec.Prev, rec.Next

	if prev.Phase == Idle && next.Phase == WaitCode {
		c.session = sim.GetIDGenerator().Generate()
		tracing.StartTask(c.session, c, SessionKind, SessionWhat)

		return
	}

	if c.session == "" {
		return
	}

	switch {
	case rec.Inputs.Reset:
		tracing.AddTaskStep(c.session, c, StepReset)
		c.endSession()
	case prev.Phase == Accepted && next.Phase == Idle:
		c.endSession()
	case Evaluated(prev, next, rec.Inputs) && next.Phase == Accepted:
		tracing.AddTaskStep(c.session, c, StepAccepted)
	case Evaluated(prev, next, rec.Inputs):
		tracing.AddTaskStep(c.session, c, StepRejected)
	}
}

func (c *Comp) endSession() {
	tracing.EndTask(c.session, c)
	c.session = ""
}
