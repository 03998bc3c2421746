package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/parkgate/sim"
)

// CollectTrace attaches the tracer to a component. Attaching the same tracer
// twice panics, since every task would be reported twice.
func CollectTrace(domain NamedHookable, tracer Tracer) {
	for _, hook := range domain.Hooks() {
		if th, ok := hook.(*traceHook); ok && th.t == tracer {
			panic(fmt.Sprintf("%s already traced by %s",
				domain.Name(), reflect.TypeOf(tracer)))
		}
	}

	domain.AcceptHook(&traceHook{t: tracer})
}

type traceHook struct {
	t Tracer
}

// Func forwards task hooks to the tracer and ignores every other position,
// such as the gate's per-tick hooks.
func (h *traceHook) Func(ctx sim.HookCtx) {
	task, ok := ctx.Item.(Task)
	if !ok {
		return
	}

	switch ctx.Pos {
	case HookPosTaskStart:
		h.t.StartTask(task)
	case HookPosTaskStep:
		h.t.StepTask(task)
	case HookPosTaskEnd:
		h.t.EndTask(task)
	}
}
