package sim

import (
	"log"
	"math"
)

// Freq is a clock frequency in Hz.
type Freq float64

// Frequency units.
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// Valid reports whether f can drive a clock: positive and finite.
func (f Freq) Valid() bool {
	v := float64(f)
	return v > 0 && !math.IsInf(v, 0)
}

// NextTick returns the first clock edge strictly after now. A time within a
// tenth of a cycle of an edge counts as that edge, which absorbs the rounding
// error of times accumulated in floating point.
//
//	               now
//	               [          )
//	    |----------|----------|----------|----->
//	                          |
//	                          result
func (f Freq) NextTick(now VTimeInSec) VTimeInSec {
	if !f.Valid() {
		log.Panicf("cannot tick at %v Hz", float64(f))
	}

	if math.IsNaN(float64(now)) {
		log.Panic("invalid time")
	}

	tenths := math.Round(float64(now) * float64(f) * 10)
	cycle := math.Floor(tenths/10) + 1

	return VTimeInSec(cycle / float64(f))
}
