package sim

// Middleware is one stage of a component's tick. A component that embeds a
// MiddlewareHolder runs its stages in a fixed order on every tick, so an
// earlier stage can prepare what a later stage consumes.
type Middleware interface {
	// Tick runs the stage once and reports whether it changed anything.
	Tick() bool
}

// MiddlewareHolder keeps the ordered stages of a component.
type MiddlewareHolder struct {
	middlewares []Middleware
}

// AddMiddleware appends a stage. Stages run in the order they were added.
func (holder *MiddlewareHolder) AddMiddleware(middleware Middleware) {
	holder.middlewares = append(holder.middlewares, middleware)
}

// Tick runs every stage, even after one reports no change. It returns true if
// any stage did.
func (holder *MiddlewareHolder) Tick() (progress bool) {
	for _, middleware := range holder.middlewares {
		progress = middleware.Tick() || progress
	}

	return progress
}
