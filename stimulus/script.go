// Package stimulus drives a gate with scripted inputs and checks the gate's
// responses, the way a testbench drives a device under test.
//
// A script is a YAML document listing steps. Each step changes some input
// pins, lets the gate tick a number of times, and optionally states what the
// gate must show afterwards.
package stimulus

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/parkgate/gate"
	"github.com/sarchlab/parkgate/segment"
)

// ErrInvalidScript is returned for scripts that cannot be run.
var ErrInvalidScript = errors.New("stimulus: invalid script")

// Script is an ordered list of steps.
type Script struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	Gate        GateOverride `yaml:"gate,omitempty"`
	Steps       []Step       `yaml:"steps"`
}

// GateOverride lists gate settings a script depends on.
type GateOverride struct {
	Threshold *uint32 `yaml:"threshold,omitempty"`
	Secret    []int   `yaml:"secret,omitempty"`
	CodeWidth *uint8  `yaml:"code_width,omitempty"`
	EchoCode  *bool   `yaml:"echo_code,omitempty"`

	// ResetActiveLow pins the polarity that reset_line levels are written
	// in.
	ResetActiveLow *bool `yaml:"reset_active_low,omitempty"`
}

// Step changes the inputs and lets the gate tick.
type Step struct {
	Name   string  `yaml:"name,omitempty"`
	Set    Set     `yaml:"set,omitempty"`
	Ticks  int     `yaml:"ticks"`
	Expect *Expect `yaml:"expect,omitempty"`
}

// Set holds the pins a step changes. Nil fields keep their value.
type Set struct {
	Reset     *bool `yaml:"reset,omitempty"`
	ResetLine *bool `yaml:"reset_line,omitempty"`
	Entrance  *bool `yaml:"entrance,omitempty"`
	Exit      *bool `yaml:"exit,omitempty"`
	Code      []int `yaml:"code,omitempty"`
}

// Expect holds what the gate must show at the end of a step. Nil fields are
// not checked.
type Expect struct {
	State     string  `yaml:"state,omitempty"`
	Counter   *uint32 `yaml:"counter,omitempty"`
	GateOpen  *bool   `yaml:"gate_open,omitempty"`
	DenyLight *bool   `yaml:"deny_light,omitempty"`
	Display   *string `yaml:"display,omitempty"`
}

// Parse decodes a script. Unknown keys are errors.
func Parse(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	s := &Script{}
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}

	return s, nil
}

// Load reads and decodes a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if s.Name == "" {
		s.Name = path
	}

	return s, nil
}

// Apply returns spec with the script's overrides applied.
func (o GateOverride) Apply(spec gate.Spec) gate.Spec {
	if o.Threshold != nil {
		spec.Threshold = *o.Threshold
	}

	if len(o.Secret) == 2 {
		spec.Secret = gate.Code{A: uint8(o.Secret[0]), B: uint8(o.Secret[1])}
	}

	if o.CodeWidth != nil {
		spec.CodeWidth = *o.CodeWidth
	}

	if o.EchoCode != nil {
		spec.EchoCode = *o.EchoCode
	}

	return spec
}

// ResetPolarity returns whether the reset line is active low, falling back to
// activeLow when the script does not pin it.
func (o GateOverride) ResetPolarity(activeLow bool) bool {
	if o.ResetActiveLow != nil {
		return *o.ResetActiveLow
	}

	return activeLow
}

// TotalTicks returns the number of gate ticks the script runs.
func (s *Script) TotalTicks() int {
	n := 0
	for _, step := range s.Steps {
		n += step.Ticks
	}

	return n
}

// Validate checks the script against the gate it will drive.
func (s *Script) Validate(spec gate.Spec) error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidScript)
	}

	if s.Gate.Secret != nil {
		if err := validateCode(s.Gate.Secret, 0xFF); err != nil {
			return fmt.Errorf("%w: gate secret: %v", ErrInvalidScript, err)
		}
	}

	for i, step := range s.Steps {
		if err := step.validate(spec); err != nil {
			return fmt.Errorf("%w: step %d (%s): %v",
				ErrInvalidScript, i+1, step.Name, err)
		}
	}

	return nil
}

func (step Step) validate(spec gate.Spec) error {
	if step.Ticks < 1 {
		return fmt.Errorf("ticks must be at least 1, got %d", step.Ticks)
	}

	if step.Set.Reset != nil && step.Set.ResetLine != nil {
		return errors.New("reset and reset_line are exclusive")
	}

	if step.Set.Code != nil {
		if err := validateCode(step.Set.Code, int(spec.MaxDigit())); err != nil {
			return err
		}
	}

	if step.Expect == nil {
		return nil
	}

	if step.Expect.State != "" {
		if _, err := gate.ParsePhase(step.Expect.State); err != nil {
			return err
		}
	}

	if step.Expect.Display != nil {
		if _, err := displayPatterns(*step.Expect.Display); err != nil {
			return err
		}
	}

	return nil
}

func validateCode(code []int, max int) error {
	if len(code) != 2 {
		return fmt.Errorf("code must have two digits, got %d", len(code))
	}

	for _, d := range code {
		if d < 0 || d > max {
			return fmt.Errorf("code digit %d out of range 0..%d", d, max)
		}
	}

	return nil
}

func displayPatterns(text string) ([2]segment.Pattern, error) {
	var patterns [2]segment.Pattern

	runes := []rune(text)
	if len(runes) != 2 {
		return patterns, fmt.Errorf("display %q must have two characters", text)
	}

	for i, r := range runes {
		p, err := segment.Encode(r)
		if err != nil {
			return patterns, err
		}

		patterns[i] = p
	}

	return patterns, nil
}
