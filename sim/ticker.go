package sim

import "sync"

// TickEvent is the clock edge of a ticking component.
type TickEvent struct {
	EventBase
}

// MakeTickEvent creates a primary tick for handler at time.
func MakeTickEvent(handler Handler, time VTimeInSec) TickEvent {
	return TickEvent{EventBase: makeEventBase(time, handler, false)}
}

// A Ticker updates its state once per clock edge. It returns false when it
// has nothing left to do, which stops the clock until the next TickLater.
type Ticker interface {
	Tick() bool
}

// TickScheduler schedules at most one pending tick for its handler.
type TickScheduler struct {
	Freq Freq

	lock      sync.Mutex
	handler   Handler
	engine    Engine
	secondary bool
	next      VTimeInSec
}

func newTickScheduler(
	handler Handler,
	engine Engine,
	freq Freq,
	secondary bool,
) *TickScheduler {
	return &TickScheduler{
		Freq:      freq,
		handler:   handler,
		engine:    engine,
		secondary: secondary,
		next:      -1,
	}
}

// TickLater schedules a tick on the next clock edge, unless one is already
// pending.
func (t *TickScheduler) TickLater() {
	t.lock.Lock()
	defer t.lock.Unlock()

	time := t.Freq.NextTick(t.CurrentTime())
	if t.next >= time {
		return
	}

	t.next = time
	t.engine.Schedule(TickEvent{
		EventBase: makeEventBase(time, t.handler, t.secondary),
	})
}

// CurrentTime returns the time of the engine that runs the ticks.
func (t *TickScheduler) CurrentTime() VTimeInSec {
	return t.engine.CurrentTime()
}

// TickingComponent is a named component driven by a clock. Each tick calls
// the Ticker and keeps the clock running while the Ticker makes progress.
type TickingComponent struct {
	*ComponentBase
	*TickScheduler

	ticker Ticker
}

// Handle runs one tick.
func (c *TickingComponent) Handle(_ Event) error {
	if c.ticker.Tick() {
		c.TickLater()
	}

	return nil
}

// NewTickingComponent creates a component that ticks with primary events.
func NewTickingComponent(
	name string,
	engine Engine,
	freq Freq,
	ticker Ticker,
) *TickingComponent {
	return newTickingComponent(name, engine, freq, ticker, false)
}

// NewSecondaryTickingComponent creates a component whose ticks run after all
// the primary events of the same cycle, so it sees what they wrote.
func NewSecondaryTickingComponent(
	name string,
	engine Engine,
	freq Freq,
	ticker Ticker,
) *TickingComponent {
	return newTickingComponent(name, engine, freq, ticker, true)
}

func newTickingComponent(
	name string,
	engine Engine,
	freq Freq,
	ticker Ticker,
	secondary bool,
) *TickingComponent {
	tc := &TickingComponent{
		ComponentBase: NewComponentBase(name),
		ticker:        ticker,
	}
	tc.TickScheduler = newTickScheduler(tc, engine, freq, secondary)

	return tc
}
