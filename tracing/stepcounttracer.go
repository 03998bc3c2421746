package tracing

import (
	"sync"
)

type stepTally struct {
	steps uint64
	tasks uint64
}

// StepCountTracer counts how often each step is reached over the matching
// tasks. A rejected code followed by an accepted one counts one of each.
type StepCountTracer struct {
	lock   sync.Mutex
	filter TaskFilter

	// seen holds, for each running task, the steps it has reached.
	seen    map[string]map[string]bool
	order   []string
	tallies map[string]*stepTally
	started uint64
}

// NewStepCountTracer creates a StepCountTracer.
func NewStepCountTracer(filter TaskFilter) *StepCountTracer {
	return &StepCountTracer{
		filter:  filter,
		seen:    make(map[string]map[string]bool),
		tallies: make(map[string]*stepTally),
	}
}

// GetStepNames returns the step names in the order they were first reached.
func (t *StepCountTracer) GetStepNames() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	return append([]string(nil), t.order...)
}

// GetStepCount returns how many times the step was reached.
func (t *StepCountTracer) GetStepCount(stepName string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	if tally, ok := t.tallies[stepName]; ok {
		return tally.steps
	}

	return 0
}

// GetTaskCount returns how many tasks reached the step at least once.
func (t *StepCountTracer) GetTaskCount(stepName string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	if tally, ok := t.tallies[stepName]; ok {
		return tally.tasks
	}

	return 0
}

// TotalCount returns the number of matching tasks started.
func (t *StepCountTracer) TotalCount() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.started
}

// StartTask begins following a matching task.
func (t *StepCountTracer) StartTask(task Task) {
	if !t.filter(task) {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	t.seen[task.ID] = make(map[string]bool)
	t.started++
}

// StepTask counts the step of a followed task.
func (t *StepCountTracer) StepTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	reached, ok := t.seen[task.ID]
	if !ok {
		return
	}

	what := task.Steps[0].What

	tally, ok := t.tallies[what]
	if !ok {
		tally = &stepTally{}
		t.tallies[what] = tally
		t.order = append(t.order, what)
	}

	tally.steps++

	if !reached[what] {
		reached[what] = true
		tally.tasks++
	}
}

// EndTask stops following the task.
func (t *StepCountTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	delete(t.seen, task.ID)
}
