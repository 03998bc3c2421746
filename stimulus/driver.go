package stimulus

import (
	"fmt"

	"github.com/sarchlab/parkgate/gate"
	"github.com/sarchlab/parkgate/sim"
)

// HookPosStepDone is invoked with a StepResult after every step is checked.
var HookPosStepDone = &sim.HookPos{Name: "StimulusStepDone"}

// Pins are the input pins a Driver writes.
type Pins interface {
	SetEntrance(present bool)
	SetExit(present bool)
	SetReset(asserted bool)
	SetResetLine(level bool)
	SetCode(a, b uint8) error
}

// Target is the gate a Driver checks.
type Target interface {
	Registers() gate.Registers
	Outputs() gate.Outputs
	Halt()
}

// ProgressReporter follows steps as they start and finish.
type ProgressReporter interface {
	IncrementInProgress(amount uint64)
	MoveInProgressToFinished(amount uint64)
}

// Failure is an expectation that did not hold.
type Failure struct {
	Step  int
	Name  string
	Time  sim.VTimeInSec
	Field string
	Want  string
	Got   string
}

func (f Failure) Error() string {
	return fmt.Sprintf("step %d (%s) @ %.10f: %s: want %s, got %s",
		f.Step, f.Name, f.Time, f.Field, f.Want, f.Got)
}

// StepResult describes a finished step.
type StepResult struct {
	Index     int
	Step      Step
	Registers gate.Registers
	Outputs   gate.Outputs
	Failures  []Failure
}

// Driver applies a script to a gate. It ticks as a primary component, so the
// pins it sets in a cycle are sampled by the gate in the same cycle.
type Driver struct {
	*sim.TickingComponent

	script   *Script
	pins     Pins
	target   Target
	progress ProgressReporter

	next      int
	current   int
	remaining int
	failures  []Failure
	done      bool
}

// Tick checks the finished step, applies the next one, and halts the target
// after the last step.
func (d *Driver) Tick() bool {
	if d.done {
		return false
	}

	if d.remaining == 0 {
		if d.current >= 0 {
			d.finishStep()
		}

		if d.next >= len(d.script.Steps) {
			d.done = true
			d.target.Halt()

			return false
		}

		d.startStep()
	}

	d.remaining--

	return true
}

// Done tells if every step has been applied and checked.
func (d *Driver) Done() bool {
	return d.done
}

// Failures returns the expectations that did not hold.
func (d *Driver) Failures() []Failure {
	return d.failures
}

// Script returns the script being driven.
func (d *Driver) Script() *Script {
	return d.script
}

func (d *Driver) startStep() {
	step := d.script.Steps[d.next]
	d.current = d.next
	d.next++
	d.remaining = step.Ticks

	if d.progress != nil {
		d.progress.IncrementInProgress(1)
	}

	d.apply(step.Set)
}

func (d *Driver) apply(set Set) {
	if set.Reset != nil {
		d.pins.SetReset(*set.Reset)
	}

	if set.ResetLine != nil {
		d.pins.SetResetLine(*set.ResetLine)
	}

	if set.Entrance != nil {
		d.pins.SetEntrance(*set.Entrance)
	}

	if set.Exit != nil {
		d.pins.SetExit(*set.Exit)
	}

	if set.Code != nil {
		err := d.pins.SetCode(uint8(set.Code[0]), uint8(set.Code[1]))
		if err != nil {
			d.fail("code", fmt.Sprint(set.Code), err.Error())
		}
	}
}

func (d *Driver) finishStep() {
	before := len(d.failures)

	result := StepResult{
		Index:     d.current,
		Step:      d.script.Steps[d.current],
		Registers: d.target.Registers(),
		Outputs:   d.target.Outputs(),
	}

	if result.Step.Expect != nil {
		d.check(*result.Step.Expect, result.Registers, result.Outputs)
	}

	result.Failures = d.failures[before:]

	d.InvokeHook(sim.HookCtx{
		Domain: d,
		Pos:    HookPosStepDone,
		Item:   result,
	})

	if d.progress != nil {
		d.progress.MoveInProgressToFinished(1)
	}
}

func (d *Driver) check(e Expect, regs gate.Registers, out gate.Outputs) {
	if e.State != "" {
		want, _ := gate.ParsePhase(e.State)
		if regs.Phase != want {
			d.fail("state", want.String(), regs.Phase.String())
		}
	}

	if e.Counter != nil && regs.Counter != *e.Counter {
		d.fail("counter", fmt.Sprint(*e.Counter), fmt.Sprint(regs.Counter))
	}

	if e.GateOpen != nil && out.GateOpen != *e.GateOpen {
		d.fail("gate_open", fmt.Sprint(*e.GateOpen), fmt.Sprint(out.GateOpen))
	}

	if e.DenyLight != nil && out.DenyLight != *e.DenyLight {
		d.fail("deny_light", fmt.Sprint(*e.DenyLight), fmt.Sprint(out.DenyLight))
	}

	if e.Display != nil {
		want, _ := displayPatterns(*e.Display)
		if want[0] != out.Display1 || want[1] != out.Display2 {
			d.fail("display", fmt.Sprintf("%q", *e.Display),
				fmt.Sprintf("%q", out.DisplayText()))
		}
	}
}

func (d *Driver) fail(field, want, got string) {
	step := d.script.Steps[d.current]

	d.failures = append(d.failures, Failure{
		Step:  d.current + 1,
		Name:  step.Name,
		Time:  d.CurrentTime(),
		Field: field,
		Want:  want,
		Got:   got,
	})
}
