package tracing

// A Tracer receives the lifecycle of every session-like task raised by the
// components it is attached to through CollectTrace.
type Tracer interface {
	StartTask(task Task)
	StepTask(task Task)
	EndTask(task Task)
}
