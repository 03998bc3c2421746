package gate

import (
	"errors"
	"fmt"

	"github.com/sarchlab/parkgate/sim"
)

// Configuration errors reported by Spec.Validate.
var (
	ErrInvalidThreshold = errors.New("gate: threshold must be at least 1")
	ErrInvalidCodeWidth = errors.New("gate: code width must be in 1..8")
	ErrSecretOutOfRange = errors.New("gate: secret does not fit the code width")
	ErrInvalidFreq      = errors.New("gate: frequency must be positive and finite")
)

// Code is a pair of credential digits entered on the keypad.
type Code struct {
	A uint8
	B uint8
}

func (c Code) String() string {
	return fmt.Sprintf("(%d,%d)", c.A, c.B)
}

// Spec holds immutable configuration values for the controller.
type Spec struct {
	// Threshold is the number of ticks spent in a timed phase before the
	// entered code is evaluated.
	Threshold uint32

	// Secret is the credential pair that opens the gate.
	Secret Code

	// CodeWidth is the bit width of each credential digit.
	CodeWidth uint8

	Freq sim.Freq

	// EchoCode shows the entered digits instead of "En" while waiting for a
	// code.
	EchoCode bool
}

// Defaults returns the Spec of the reference deployment.
func Defaults() Spec {
	return Spec{
		Threshold: 4,
		Secret:    Code{A: 1, B: 3},
		CodeWidth: 2,
		Freq:      100 * sim.KHz,
	}
}

// Validate checks that the Spec describes a controller that can be built.
func (s Spec) Validate() error {
	if s.Threshold == 0 {
		return ErrInvalidThreshold
	}

	if s.CodeWidth == 0 || s.CodeWidth > 8 {
		return fmt.Errorf("%w, got %d", ErrInvalidCodeWidth, s.CodeWidth)
	}

	if !s.CodeFits(s.Secret) {
		return fmt.Errorf("%w: secret %s, width %d",
			ErrSecretOutOfRange, s.Secret, s.CodeWidth)
	}

	if !s.Freq.Valid() {
		return fmt.Errorf("%w, got %v Hz", ErrInvalidFreq, float64(s.Freq))
	}

	return nil
}

// MaxDigit is the largest digit value representable in CodeWidth bits.
func (s Spec) MaxDigit() uint8 {
	return uint8(uint16(1)<<s.CodeWidth - 1)
}

// CodeFits tells if both digits of the code are representable in CodeWidth
// bits.
func (s Spec) CodeFits(c Code) bool {
	return c.A <= s.MaxDigit() && c.B <= s.MaxDigit()
}
