package tracing

import (
	"fmt"

	"github.com/sarchlab/parkgate/sim"
)

// NamedHookable is a component that can raise tasks.
type NamedHookable interface {
	sim.Named
	sim.Hookable
	NumHooks() int
	Hooks() []sim.Hook
	InvokeHook(sim.HookCtx)
}

// Hook positions of the task lifecycle.
var (
	HookPosTaskStart = &sim.HookPos{Name: "TaskStart"}
	HookPosTaskStep  = &sim.HookPos{Name: "TaskStep"}
	HookPosTaskEnd   = &sim.HookPos{Name: "TaskEnd"}
)

// StartTask tells the tracers of domain that a task began. All arguments are
// required; a missing one panics even when nobody traces the domain.
func StartTask(id string, domain NamedHookable, kind, what string) {
	switch {
	case id == "":
		panic("tracing: task id must not be empty")
	case domain == nil:
		panic("tracing: domain must not be nil")
	case domain.Name() == "":
		panic("tracing: domain must have a name")
	case kind == "" || what == "":
		panic(fmt.Sprintf("tracing: task %s needs a kind and a what", id))
	}

	raise(domain, HookPosTaskStart, Task{
		ID:       id,
		Kind:     kind,
		What:     what,
		Location: domain.Name(),
	})
}

// AddTaskStep tells the tracers that a task reached a milestone.
func AddTaskStep(id string, domain NamedHookable, what string) {
	raise(domain, HookPosTaskStep, Task{
		ID:    id,
		Steps: []TaskStep{{What: what}},
	})
}

// EndTask tells the tracers that a task finished.
func EndTask(id string, domain NamedHookable) {
	raise(domain, HookPosTaskEnd, Task{ID: id})
}

func raise(domain NamedHookable, pos *sim.HookPos, task Task) {
	if domain.NumHooks() == 0 {
		return
	}

	domain.InvokeHook(sim.HookCtx{Domain: domain, Pos: pos, Item: task})
}
