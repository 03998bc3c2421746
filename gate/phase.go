package gate

import (
	"fmt"
	"strings"
)

// Phase is the state of the gate controller. The numeric values follow the
// register encoding of the reference board.
type Phase uint8

// All the phases of the gate.
const (
	Idle Phase = iota
	WaitCode
	Rejected
	Accepted
)

var phaseNames = [...]string{
	Idle:     "IDLE",
	WaitCode: "WAIT_CODE",
	Rejected: "REJECTED",
	Accepted: "ACCEPTED",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}

	return fmt.Sprintf("Phase(%d)", uint8(p))
}

// Timed tells if the phase is governed by the dwell counter.
func (p Phase) Timed() bool {
	return p == WaitCode || p == Rejected
}

// ParsePhase converts a phase name into a Phase. Names are case insensitive
// and "WAIT" is accepted for WAIT_CODE.
func ParsePhase(s string) (Phase, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "WAIT" {
		return WaitCode, nil
	}

	for i, n := range phaseNames {
		if n == name {
			return Phase(i), nil
		}
	}

	return Idle, fmt.Errorf("gate: unknown phase %q", s)
}
