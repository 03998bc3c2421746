package gate

import "github.com/sarchlab/parkgate/segment"

var (
	glyphE     = segment.MustEncode('E')
	glyphN     = segment.MustEncode('n')
	glyphG     = segment.MustEncode('G')
	glyphO     = segment.MustEncode('O')
	glyphDash  = segment.MustEncode('-')
	glyphBlank = segment.Blank
)

// Decode derives the outputs from the registers. The sampled inputs are only
// used to echo the entered code when Spec.EchoCode is set.
func Decode(spec Spec, regs Registers, in Inputs) Outputs {
	out := Outputs{
		GateOpen:  regs.Phase == Accepted,
		DenyLight: regs.Phase.Timed(),
	}

	switch regs.Phase {
	case WaitCode:
		if spec.EchoCode {
			out.Display1 = echoDigit(in.Code.A)
			out.Display2 = echoDigit(in.Code.B)
		} else {
			out.Display1, out.Display2 = glyphE, glyphN
		}
	case Rejected:
		out.Display1, out.Display2 = glyphE, glyphE
	case Accepted:
		out.Display1, out.Display2 = glyphG, glyphO
	default:
		out.Display1, out.Display2 = glyphBlank, glyphBlank
	}

	return out
}

// echoDigit shows a code digit while waiting. E is shown as a dash like the
// digits that have no glyph, so that an echoed code never reads as "EE".
func echoDigit(d uint8) segment.Pattern {
	if d > 0xF || d == 0xE {
		return glyphDash
	}

	return segment.Digit(d)
}

// DisplayText reads the two displays back as characters.
func (o Outputs) DisplayText() string {
	return string([]rune{o.Display1.Glyph(), o.Display2.Glyph()})
}
