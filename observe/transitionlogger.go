package observe

import (
	"log"

	"github.com/sarchlab/parkgate/gate"
	"github.com/sarchlab/parkgate/sim"
)

// TransitionLogger prints a line every time a gate changes phase.
type TransitionLogger struct {
	sim.LogHookBase
}

// NewTransitionLogger returns a TransitionLogger writing to logger.
func NewTransitionLogger(logger *log.Logger) *TransitionLogger {
	h := new(TransitionLogger)
	h.Logger = logger

	return h
}

// Func writes the transition.
func (h *TransitionLogger) Func(ctx sim.HookCtx) {
	if ctx.Pos != gate.HookPosTransition {
		return
	}

	rec, ok := ctx.Item.(gate.TickRecord)
	if !ok {
		return
	}

	name := "gate"
	if named, ok := ctx.Domain.(sim.Named); ok {
		name = named.Name()
	}

	h.Logger.Printf("%.10f, %s, cycle %d: %s -> %s, code %s, display %q",
		rec.Time, name, rec.Cycle,
		rec.Prev.Phase, rec.Next.Phase,
		rec.Inputs.Code, rec.Outputs.DisplayText())
}
