package sim

import (
	"fmt"
	"log"
	"reflect"
	"sync"
)

// A SerialEngine runs events one at a time in time order. Of the events due
// at the same time, primary ones run before secondary ones.
type SerialEngine struct {
	HookableBase

	timeLock sync.RWMutex
	now      VTimeInSec

	primary   eventQueue
	secondary eventQueue

	// runLock is held while an event runs and for as long as the engine is
	// paused, so a paused engine blocks between two events.
	runLock     sync.Mutex
	pausedLock  sync.Mutex
	paused      bool
	singleRun   sync.Mutex
	endHandlers []SimulationEndHandler
}

// NewSerialEngine creates an engine at time 0 with no events.
func NewSerialEngine() *SerialEngine {
	return &SerialEngine{}
}

// Schedule queues an event. Scheduling into the past panics.
func (e *SerialEngine) Schedule(evt Event) {
	if evt.Time() < e.CurrentTime() {
		log.Panicf("cannot schedule %s @ %.10f before now (%.10f)",
			reflect.TypeOf(evt), evt.Time(), e.CurrentTime())
	}

	if evt.IsSecondary() {
		e.secondary.push(evt)
		return
	}

	e.primary.push(evt)
}

// CurrentTime returns the time of the event being run, or of the last one.
func (e *SerialEngine) CurrentTime() VTimeInSec {
	e.timeLock.RLock()
	defer e.timeLock.RUnlock()

	return e.now
}

func (e *SerialEngine) setTime(t VTimeInSec) {
	e.timeLock.Lock()
	e.now = t
	e.timeLock.Unlock()
}

// Run processes events until none is left. It returns the first handler
// error, wrapped with the event that caused it.
func (e *SerialEngine) Run() error {
	e.singleRun.Lock()
	defer e.singleRun.Unlock()

	for e.primary.len() > 0 || e.secondary.len() > 0 {
		if err := e.step(); err != nil {
			return err
		}
	}

	return nil
}

func (e *SerialEngine) step() error {
	e.runLock.Lock()
	defer e.runLock.Unlock()

	evt := e.pop()
	e.setTime(evt.Time())

	ctx := HookCtx{Domain: e, Pos: HookPosBeforeEvent, Item: evt}
	e.InvokeHook(ctx)

	if err := evt.Handler().Handle(evt); err != nil {
		return fmt.Errorf("handling %s @ %.10f: %w",
			reflect.TypeOf(evt), evt.Time(), err)
	}

	ctx.Pos = HookPosAfterEvent
	e.InvokeHook(ctx)

	return nil
}

// pop takes the earliest event. A secondary event only goes first when it
// is strictly earlier than every primary one.
func (e *SerialEngine) pop() Event {
	p, s := e.primary.peek(), e.secondary.peek()

	if p == nil || (s != nil && s.Time() < p.Time()) {
		return e.secondary.pop()
	}

	return e.primary.pop()
}

// Pause holds the engine before its next event. It is safe to call from
// another goroutine, such as the monitor's.
func (e *SerialEngine) Pause() {
	e.pausedLock.Lock()
	defer e.pausedLock.Unlock()

	if e.paused {
		return
	}

	e.runLock.Lock()
	e.paused = true
}

// Continue releases a paused engine.
func (e *SerialEngine) Continue() {
	e.pausedLock.Lock()
	defer e.pausedLock.Unlock()

	if !e.paused {
		return
	}

	e.paused = false
	e.runLock.Unlock()
}

// IsPaused tells if the engine is currently held by Pause.
func (e *SerialEngine) IsPaused() bool {
	e.pausedLock.Lock()
	defer e.pausedLock.Unlock()

	return e.paused
}

// RegisterSimulationEndHandler adds a handler that Finished calls.
func (e *SerialEngine) RegisterSimulationEndHandler(h SimulationEndHandler) {
	e.endHandlers = append(e.endHandlers, h)
}

// Finished tells every end handler that the run is over.
func (e *SerialEngine) Finished() {
	now := e.CurrentTime()
	for _, h := range e.endHandlers {
		h.Handle(now)
	}
}
