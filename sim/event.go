package sim

// VTimeInSec is a point in simulated time, in seconds.
type VTimeInSec float64

// An Event is a piece of work the engine runs at a given time.
type Event interface {
	Time() VTimeInSec
	Handler() Handler

	// IsSecondary tells whether the event waits for every primary event of
	// the same time to run first.
	IsSecondary() bool
}

// A Handler runs the events scheduled for it. An error stops the engine.
type Handler interface {
	Handle(e Event) error
}

// Engine hook positions around every event.
var (
	HookPosBeforeEvent = &HookPos{Name: "BeforeEvent"}
	HookPosAfterEvent  = &HookPos{Name: "AfterEvent"}
)

// EventBase implements Event for embedding.
type EventBase struct {
	ID        string
	time      VTimeInSec
	handler   Handler
	secondary bool
}

func makeEventBase(t VTimeInSec, h Handler, secondary bool) EventBase {
	return EventBase{
		ID:        GetIDGenerator().Generate(),
		time:      t,
		handler:   h,
		secondary: secondary,
	}
}

// Time returns when the event runs.
func (e EventBase) Time() VTimeInSec {
	return e.time
}

// Handler returns the handler that runs the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// IsSecondary reports whether the event is secondary.
func (e EventBase) IsSecondary() bool {
	return e.secondary
}
