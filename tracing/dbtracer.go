package tracing

import (
	"strings"
	"sync"

	"github.com/sarchlab/parkgate/datarecording"
	"github.com/sarchlab/parkgate/sim"
	"github.com/tebeka/atexit"
)

// Table names used by DBTracer.
const (
	TaskTableName = "trace"
	StepTableName = "trace_steps"
)

// TaskEntry is a row of the task table.
type TaskEntry struct {
	ID        string
	Kind      string
	What      string
	Location  string
	StartTime float64
	EndTime   float64
	Steps     string
	Completed bool
}

// StepEntry is a row of the step table.
type StepEntry struct {
	TaskID string
	Time   float64
	What   string
}

// DBTracer is a tracer that stores tasks into a data recorder. A task is
// written when it ends. Tasks still running when the tracer terminates are
// written with Completed set to false.
type DBTracer struct {
	mu         sync.Mutex
	timeTeller sim.TimeTeller
	backend    datarecording.DataRecorder

	startTime, endTime sim.VTimeInSec

	tracingTasks map[string]Task
	terminated   bool
}

// NewDBTracer creates a new DBTracer.
func NewDBTracer(
	timeTeller sim.TimeTeller,
	dataRecorder datarecording.DataRecorder,
) *DBTracer {
	dataRecorder.CreateTable(TaskTableName, TaskEntry{})
	dataRecorder.CreateTable(StepTableName, StepEntry{})

	t := &DBTracer{
		timeTeller:   timeTeller,
		backend:      dataRecorder,
		tracingTasks: make(map[string]Task),
	}

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// SetTimeRange limits the tracer to tasks that overlap the given window. A
// zero bound means unbounded.
func (t *DBTracer) SetTimeRange(startTime, endTime sim.VTimeInSec) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startTime = startTime
	t.endTime = endTime
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	startingTaskMustBeValid(task)

	task.StartTime = t.timeTeller.CurrentTime()
	if t.endTime > 0 && task.StartTime > t.endTime {
		return
	}

	t.tracingTasks[task.ID] = task
}

func startingTaskMustBeValid(task Task) {
	if task.ID == "" {
		panic("task ID must be set")
	}

	if task.Kind == "" {
		panic("task kind must be set")
	}

	if task.What == "" {
		panic("task what must be set")
	}

	if task.Location == "" {
		panic("task location must be set")
	}
}

// StepTask marks a step of a task.
func (t *DBTracer) StepTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	originalTask, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	step := task.Steps[0]
	step.Time = t.timeTeller.CurrentTime()
	originalTask.Steps = append(originalTask.Steps, step)
	t.tracingTasks[task.ID] = originalTask

	t.backend.InsertData(StepTableName, StepEntry{
		TaskID: task.ID,
		Time:   float64(step.Time),
		What:   step.What,
	})
}

// EndTask marks the end of a task.
func (t *DBTracer) EndTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	originalTask, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	delete(t.tracingTasks, task.ID)

	originalTask.EndTime = t.timeTeller.CurrentTime()
	if t.startTime > 0 && originalTask.EndTime < t.startTime {
		return
	}

	t.writeTask(originalTask, true)
}

// Terminate writes the unfinished tasks and flushes the recorder. It is safe to
// call more than once.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminated {
		return
	}

	now := t.timeTeller.CurrentTime()
	for _, task := range t.tracingTasks {
		task.EndTime = now
		t.writeTask(task, false)
	}

	t.tracingTasks = make(map[string]Task)
	t.terminated = true
	t.backend.Flush()
}

func (t *DBTracer) writeTask(task Task, completed bool) {
	steps := make([]string, 0, len(task.Steps))
	for _, s := range task.Steps {
		steps = append(steps, s.What)
	}

	t.backend.InsertData(TaskTableName, TaskEntry{
		ID:        task.ID,
		Kind:      task.Kind,
		What:      task.What,
		Location:  task.Location,
		StartTime: float64(task.StartTime),
		EndTime:   float64(task.EndTime),
		Steps:     strings.Join(steps, ","),
		Completed: completed,
	})
}
