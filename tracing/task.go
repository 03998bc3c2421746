package tracing

import "github.com/sarchlab/parkgate/sim"

// A TaskStep represents a milestone in the processing of task
type TaskStep struct {
	Time sim.VTimeInSec `json:"time"`
	What string         `json:"what"`
}

// A Task is a piece of work a component performs over a span of time, such as
// one vehicle passing through the gate.
type Task struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	What      string         `json:"what"`
	Location  string         `json:"location"`
	StartTime sim.VTimeInSec `json:"start_time"`
	EndTime   sim.VTimeInSec `json:"end_time"`
	Steps     []TaskStep     `json:"steps"`
}

// TaskFilter is a function that can filter interesting tasks. If this function
// returns true, the task is considered useful.
type TaskFilter func(t Task) bool

// KindFilter accepts tasks of the given kind.
func KindFilter(kind string) TaskFilter {
	return func(t Task) bool {
		return t.Kind == kind
	}
}
