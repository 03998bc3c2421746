// Package segment encodes characters for the two seven-segment displays on
// the gate panel.
//
// Patterns are stored the way the board drives them: seven bits, segment g in
// bit 6 down to segment a in bit 0, active low (a cleared bit lights the
// segment).
package segment

import (
	"fmt"
	"strings"
)

// Pattern is an active-low seven-segment pattern in gfedcba order.
type Pattern uint8

const mask = 0x7F

// Blank is the pattern with every segment dark.
const Blank Pattern = mask

var lit = map[rune]uint8{
	'0': 0x3F,
	'1': 0x06,
	'2': 0x5B,
	'3': 0x4F,
	'4': 0x66,
	'5': 0x6D,
	'6': 0x7D,
	'7': 0x07,
	'8': 0x7F,
	'9': 0x6F,
	'A': 0x77,
	'b': 0x7C,
	'C': 0x39,
	'd': 0x5E,
	'E': 0x79,
	'F': 0x71,
	'G': 0x3D,
	'n': 0x54,
	'O': 0x3F,
	'-': 0x40,
	' ': 0x00,
}

var aliases = map[rune]rune{
	'a': 'A',
	'B': 'b',
	'c': 'C',
	'D': 'd',
	'e': 'E',
	'f': 'F',
	'g': 'G',
	'N': 'n',
	'o': 'O',
}

// Encode returns the pattern that shows r. Letters that only exist in one
// case on a seven-segment display are accepted in either case.
func Encode(r rune) (Pattern, error) {
	if alias, ok := aliases[r]; ok {
		r = alias
	}

	segs, ok := lit[r]
	if !ok {
		return Blank, fmt.Errorf("segment: no glyph for %q", r)
	}

	return fromLit(segs), nil
}

// MustEncode is Encode for glyphs known to exist. It panics otherwise.
func MustEncode(r rune) Pattern {
	p, err := Encode(r)
	if err != nil {
		panic(err)
	}

	return p
}

// Digit returns the pattern of a hexadecimal digit.
func Digit(d uint8) Pattern {
	if d > 0xF {
		panic(fmt.Sprintf("segment: %d is not a hex digit", d))
	}

	return MustEncode(rune("0123456789AbCdEF"[d]))
}

func fromLit(segs uint8) Pattern {
	return Pattern(^segs & mask)
}

// Lit returns the segments that are lit, as active-high bits.
func (p Pattern) Lit() uint8 {
	return ^uint8(p) & mask
}

// Segments lists the letters of the lit segments, from a to g.
func (p Pattern) Segments() string {
	var sb strings.Builder

	segs := p.Lit()
	for i := 0; i < 7; i++ {
		if segs&(1<<i) != 0 {
			sb.WriteByte(byte('a' + i))
		}
	}

	return sb.String()
}

// Glyph returns the character the pattern shows, or '?' if it is not one of
// the known glyphs. Patterns shared by two glyphs (0 and O) read as the
// digit.
func (p Pattern) Glyph() rune {
	for _, r := range "0123456789AbCdEFGn- " {
		if fromLit(lit[r]) == p {
			return r
		}
	}

	return '?'
}

// String formats the raw pattern as the board sees it.
func (p Pattern) String() string {
	return fmt.Sprintf("0b%07b", uint8(p)&mask)
}
