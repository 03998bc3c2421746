package tracing

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/sarchlab/parkgate/sim"
)

// JSONTracer writes every completed task as one JSON object per line.
type JSONTracer struct {
	timeTeller    sim.TimeTeller
	filter        TaskFilter
	lock          sync.Mutex
	enc           *json.Encoder
	inflightTasks map[string]Task
	err           error
}

// NewJSONTracer creates a JSONTracer writing to w. A nil filter accepts every
// task.
func NewJSONTracer(
	timeTeller sim.TimeTeller,
	w io.Writer,
	filter TaskFilter,
) *JSONTracer {
	return &JSONTracer{
		timeTeller:    timeTeller,
		filter:        filter,
		enc:           json.NewEncoder(w),
		inflightTasks: make(map[string]Task),
	}
}

// StartTask records the start of a task
func (t *JSONTracer) StartTask(task Task) {
	if t.filter != nil && !t.filter(task) {
		return
	}

	task.StartTime = t.timeTeller.CurrentTime()

	t.lock.Lock()
	t.inflightTasks[task.ID] = task
	t.lock.Unlock()
}

// StepTask records the moment that a task reaches a milestone
func (t *JSONTracer) StepTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	originalTask, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}

	step := task.Steps[0]
	step.Time = t.timeTeller.CurrentTime()
	originalTask.Steps = append(originalTask.Steps, step)
	t.inflightTasks[task.ID] = originalTask
}

// EndTask writes the task.
func (t *JSONTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	originalTask, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}

	originalTask.EndTime = t.timeTeller.CurrentTime()
	delete(t.inflightTasks, task.ID)

	if t.err != nil {
		return
	}

	t.err = t.enc.Encode(originalTask)
}

// Err returns the first write error.
func (t *JSONTracer) Err() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.err
}
