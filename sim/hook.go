package sim

// HookPos names a point where a Hookable invokes its hooks.
type HookPos struct {
	Name string
}

// HookCtx describes one hook invocation. Item carries the value the position
// is about, such as the event run by the engine or the gate's tick record.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   any
	Detail any
}

// Hookable accepts hooks.
type Hookable interface {
	AcceptHook(hook Hook)
}

// Hook observes a Hookable.
type Hook interface {
	Func(ctx HookCtx)
}

// HookableBase stores hooks and invokes them in registration order.
type HookableBase struct {
	hooks []Hook
}

// AcceptHook registers a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.hooks = append(h.hooks, hook)
}

// Hooks returns the registered hooks.
func (h *HookableBase) Hooks() []Hook {
	return h.hooks
}

// NumHooks returns the number of registered hooks.
func (h *HookableBase) NumHooks() int {
	return len(h.hooks)
}

// InvokeHook calls every hook with ctx.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}
