// Package panel is the pin latch between the outside world and the gate
// controller. Writers set the input pins at any time; the controller samples
// them once per tick and publishes its outputs back.
package panel

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sarchlab/parkgate/gate"
)

// ErrCodeOutOfRange is returned when a credential digit does not fit the
// configured code width.
var ErrCodeOutOfRange = errors.New("panel: code out of range")

// Panel latches the gate inputs and the last published outputs. It is safe
// for concurrent use.
type Panel struct {
	mu sync.Mutex

	maxDigit       uint8
	resetActiveLow bool
	resetLine      bool

	in        gate.Inputs
	out       gate.Outputs
	published uint64
}

// New creates a panel for codes of the given bit width. If resetActiveLow is
// set, a low reset line asserts reset, as on the reference board. The reset
// line starts deasserted.
func New(codeWidth uint8, resetActiveLow bool) (*Panel, error) {
	spec := gate.Spec{CodeWidth: codeWidth}
	if codeWidth == 0 || codeWidth > 8 {
		return nil, fmt.Errorf("%w, got %d", gate.ErrInvalidCodeWidth, codeWidth)
	}

	p := &Panel{
		maxDigit:       spec.MaxDigit(),
		resetActiveLow: resetActiveLow,
		resetLine:      resetActiveLow,
	}

	return p, nil
}

// SetEntrance sets the entrance sensor.
func (p *Panel) SetEntrance(present bool) {
	p.mu.Lock()
	p.in.EntranceSensor = present
	p.mu.Unlock()
}

// SetExit sets the exit sensor.
func (p *Panel) SetExit(present bool) {
	p.mu.Lock()
	p.in.ExitSensor = present
	p.mu.Unlock()
}

// SetReset asserts or releases reset regardless of the line polarity.
func (p *Panel) SetReset(asserted bool) {
	p.mu.Lock()
	p.in.Reset = asserted
	p.resetLine = asserted != p.resetActiveLow
	p.mu.Unlock()
}

// SetResetLine drives the raw reset line. The level is translated through the
// configured polarity.
func (p *Panel) SetResetLine(level bool) {
	p.mu.Lock()
	p.resetLine = level
	p.in.Reset = level != p.resetActiveLow
	p.mu.Unlock()
}

// ResetLine returns the raw level of the reset line.
func (p *Panel) ResetLine() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.resetLine
}

// SetCode enters a credential pair. Digits wider than the code width are
// rejected and leave the previous code in place.
func (p *Panel) SetCode(a, b uint8) error {
	if a > p.maxDigit || b > p.maxDigit {
		return fmt.Errorf("%w: (%d,%d) exceeds %d",
			ErrCodeOutOfRange, a, b, p.maxDigit)
	}

	p.mu.Lock()
	p.in.Code = gate.Code{A: a, B: b}
	p.mu.Unlock()

	return nil
}

// Sample returns the current input pins.
func (p *Panel) Sample() gate.Inputs {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.in
}

// Publish latches the outputs of a tick.
func (p *Panel) Publish(out gate.Outputs) {
	p.mu.Lock()
	p.out = out
	p.published++
	p.mu.Unlock()
}

// Outputs returns the last published outputs.
func (p *Panel) Outputs() gate.Outputs {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.out
}

// Published returns how many times outputs were published.
func (p *Panel) Published() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.published
}
