package tracing

import (
	"sync"

	"github.com/sarchlab/parkgate/sim"
)

// AverageTimeTracer keeps the running mean duration of the completed tasks
// that pass its filter, such as the mean time a vehicle spends at the gate.
type AverageTimeTracer struct {
	lock       sync.Mutex
	timeTeller sim.TimeTeller
	filter     TaskFilter

	started map[string]sim.VTimeInSec
	mean    sim.VTimeInSec
	count   uint64
}

// NewAverageTimeTracer creates an AverageTimeTracer.
func NewAverageTimeTracer(
	timeTeller sim.TimeTeller,
	filter TaskFilter,
) *AverageTimeTracer {
	return &AverageTimeTracer{
		timeTeller: timeTeller,
		filter:     filter,
		started:    make(map[string]sim.VTimeInSec),
	}
}

// AverageTime returns the mean duration of the completed tasks.
func (t *AverageTimeTracer) AverageTime() sim.VTimeInSec {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.mean
}

// TotalCount returns the number of completed tasks.
func (t *AverageTimeTracer) TotalCount() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.count
}

// StartTask remembers when a matching task started.
func (t *AverageTimeTracer) StartTask(task Task) {
	if !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.started[task.ID] = t.timeTeller.CurrentTime()
	t.lock.Unlock()
}

// StepTask is ignored.
func (t *AverageTimeTracer) StepTask(Task) {}

// EndTask folds the task's duration into the mean.
func (t *AverageTimeTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	start, ok := t.started[task.ID]
	if !ok {
		return
	}

	delete(t.started, task.ID)

	t.count++
	d := t.timeTeller.CurrentTime() - start
	t.mean += (d - t.mean) / sim.VTimeInSec(t.count)
}
