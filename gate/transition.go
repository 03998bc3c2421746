package gate

import "log"

// Next computes the registers for the following tick. Reset is checked before
// the transition table and overrides every other input.
func Next(spec Spec, regs Registers, in Inputs) Registers {
	if in.Reset {
		return Registers{Phase: Idle}
	}

	switch regs.Phase {
	case Idle:
		if in.EntranceSensor {
			return Registers{Phase: WaitCode}
		}

		return Registers{Phase: Idle}
	case WaitCode, Rejected:
		if regs.Counter+1 < spec.Threshold {
			return Registers{Phase: regs.Phase, Counter: regs.Counter + 1}
		}

		if in.Code == spec.Secret {
			return Registers{Phase: Accepted}
		}

		return Registers{Phase: Rejected}
	case Accepted:
		if in.ExitSensor {
			return Registers{Phase: Idle}
		}

		return Registers{Phase: Accepted}
	default:
		log.Panicf("gate: unknown phase %d", regs.Phase)
	}

	return regs
}

// Evaluated tells if the code was compared with the secret when the
// registers moved from prev to next under in.
func Evaluated(prev, next Registers, in Inputs) bool {
	return !in.Reset && prev.Phase.Timed() && next.Counter == 0
}
