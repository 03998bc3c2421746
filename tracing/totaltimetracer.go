package tracing

import (
	"sync"

	"github.com/sarchlab/parkgate/sim"
)

// TotalTimeTracer adds up how long the matching tasks have been running, such
// as how long the gate has been busy with vehicles. Overlapping tasks are
// counted once each.
type TotalTimeTracer struct {
	lock       sync.Mutex
	timeTeller sim.TimeTeller
	filter     TaskFilter

	started map[string]sim.VTimeInSec
	done    sim.VTimeInSec
}

// NewTotalTimeTracer creates a TotalTimeTracer.
func NewTotalTimeTracer(
	timeTeller sim.TimeTeller,
	filter TaskFilter,
) *TotalTimeTracer {
	return &TotalTimeTracer{
		timeTeller: timeTeller,
		filter:     filter,
		started:    make(map[string]sim.VTimeInSec),
	}
}

// TotalTime returns the time spent on completed tasks.
func (t *TotalTimeTracer) TotalTime() sim.VTimeInSec {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.done
}

// InflightTime returns the time spent so far on tasks that have not ended.
func (t *TotalTimeTracer) InflightTime() sim.VTimeInSec {
	t.lock.Lock()
	defer t.lock.Unlock()

	if len(t.started) == 0 {
		return 0
	}

	now := t.timeTeller.CurrentTime()

	var total sim.VTimeInSec
	for _, start := range t.started {
		total += now - start
	}

	return total
}

// StartTask remembers when a matching task started.
func (t *TotalTimeTracer) StartTask(task Task) {
	if !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.started[task.ID] = t.timeTeller.CurrentTime()
	t.lock.Unlock()
}

// StepTask is ignored.
func (t *TotalTimeTracer) StepTask(Task) {}

// EndTask adds the task's duration to the total.
func (t *TotalTimeTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	start, ok := t.started[task.ID]
	if !ok {
		return
	}

	delete(t.started, task.ID)
	t.done += t.timeTeller.CurrentTime() - start
}
