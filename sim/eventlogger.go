package sim

import (
	"log"
	"reflect"
)

// A LogHook is a hook that writes what it observes to a logger.
type LogHook interface {
	Hook
}

// LogHookBase holds the logger shared by the log hooks.
type LogHookBase struct {
	*log.Logger
}

// EventLogger prints one line for every event the engine is about to run.
// Secondary events are marked so that the order of the stimulus driver and
// the sampled component within one cycle is visible.
type EventLogger struct {
	LogHookBase
}

// NewEventLogger creates an EventLogger that writes to logger.
func NewEventLogger(logger *log.Logger) *EventLogger {
	h := new(EventLogger)
	h.Logger = logger

	return h
}

// Func logs the event before it is handled.
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	order := "primary"
	if evt.IsSecondary() {
		order = "secondary"
	}

	if comp, ok := evt.Handler().(Named); ok {
		h.Printf("%.10f, %s, %s -> %s",
			evt.Time(), order, reflect.TypeOf(evt), comp.Name())
		return
	}

	h.Printf("%.10f, %s, %s", evt.Time(), order, reflect.TypeOf(evt))
}
