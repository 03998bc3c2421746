package gate

import (
	"log"

	"github.com/sarchlab/parkgate/sim/state"
)

const registersKey = "registers"

// Controller owns the registers of the gate and advances them one clock edge
// at a time.
type Controller struct {
	spec Spec
	regs *state.Manager
}

// NewController creates a controller in IDLE with a zero counter.
func NewController(spec Spec) (*Controller, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	regs := state.NewManager()
	if err := regs.Register(registersKey, &Registers{Phase: Idle}); err != nil {
		return nil, err
	}

	return &Controller{spec: spec, regs: regs}, nil
}

// Spec returns the configuration of the controller.
func (c *Controller) Spec() Spec {
	return c.spec
}

// Registers returns the committed registers.
func (c *Controller) Registers() Registers {
	v, err := c.regs.Load(registersKey)
	if err != nil {
		log.Panic(err)
	}

	return *v.(*Registers)
}

// Step performs one clock edge. It computes the next registers from the
// committed ones, commits them, and returns them with the decoded outputs.
func (c *Controller) Step(in Inputs) (Registers, Outputs) {
	current := c.Registers()

	next := c.stage()
	*next = Next(c.spec, current, in)
	c.regs.CommitAll()

	return *next, Decode(c.spec, *next, in)
}

// Reset returns the registers to their power-on value. Anything staged but
// not committed is dropped first.
func (c *Controller) Reset() {
	c.regs.DiscardAll()

	next := c.stage()
	*next = Registers{Phase: Idle}
	c.regs.CommitAll()
}

func (c *Controller) stage() *Registers {
	v, err := c.regs.Stage(registersKey)
	if err != nil {
		log.Panic(err)
	}

	return v.(*Registers)
}
