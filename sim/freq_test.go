package sim

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Freq", func() {
	DescribeTable("validity",
		func(f Freq, valid bool) {
			Expect(f.Valid()).To(Equal(valid))
		},
		Entry("100 kHz", 100*KHz, true),
		Entry("zero", Freq(0), false),
		Entry("negative", -1*Hz, false),
		Entry("NaN", Freq(math.NaN()), false),
		Entry("infinite", Freq(math.Inf(1)), false),
	)

	It("should get the next tick from an edge", func() {
		f := 100 * KHz
		Expect(f.NextTick(0)).To(BeNumerically("~", 0.00001, 1e-15))
		Expect(f.NextTick(0.00003)).To(BeNumerically("~", 0.00004, 1e-15))
	})

	It("should get the next tick between edges", func() {
		f := 1 * GHz
		Expect(f.NextTick(102.0000000011)).
			To(BeNumerically("~", 102.000000002, 1e-12))
	})

	It("should treat drifted times as the edge", func() {
		f := 100 * KHz
		drifted := VTimeInSec(0.00001 * 3)
		Expect(f.NextTick(drifted)).To(BeNumerically("~", 0.00004, 1e-15))
	})

	It("should panic when the clock cannot tick", func() {
		Expect(func() { Freq(0).NextTick(0) }).To(Panic())
		Expect(func() { Freq(math.NaN()).NextTick(0) }).To(Panic())
		Expect(func() { (1 * Hz).NextTick(VTimeInSec(math.NaN())) }).To(Panic())
	})
})
