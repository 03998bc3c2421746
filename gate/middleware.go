package gate

// sampleMiddleware latches the input pins at the clock edge.
type sampleMiddleware struct {
	*Comp
}

func (m *sampleMiddleware) Tick() bool {
	in := m.inputs.Sample()

	m.Lock()
	m.sampled = in
	m.Unlock()

	return true
}

// fsmMiddleware advances the controller and publishes its outputs.
type fsmMiddleware struct {
	*Comp
}

func (m *fsmMiddleware) Tick() bool {
	m.Lock()
	in := m.sampled
	m.Unlock()

	prev := m.ctrl.Registers()
	next, out := m.ctrl.Step(in)

	m.Lock()
	m.cycle++
	m.last = out
	cycle := m.cycle
	m.Unlock()

	if m.outputs != nil {
		m.outputs.Publish(out)
	}

	rec := TickRecord{
		Cycle:   cycle,
		Time:    m.CurrentTime(),
		Prev:    prev,
		Next:    next,
		Inputs:  in,
		Outputs: out,
	}

	m.record(rec)
	m.traceSession(rec)

	return true
}
