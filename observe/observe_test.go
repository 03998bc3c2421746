package observe_test

import (
	"bytes"
	"context"
	"log"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/parkgate/datarecording"
	"github.com/sarchlab/parkgate/gate"
	"github.com/sarchlab/parkgate/observe"
	"github.com/sarchlab/parkgate/panel"
	"github.com/sarchlab/parkgate/sim"
)

type scriptedInputs struct {
	queue []gate.Inputs
}

func (s *scriptedInputs) Sample() gate.Inputs {
	if len(s.queue) == 0 {
		return gate.Inputs{}
	}

	in := s.queue[0]
	s.queue = s.queue[1:]

	return in
}

var _ = Describe("Gate hooks", func() {
	var (
		engine *sim.SerialEngine
		inputs *scriptedInputs
		comp   *gate.Comp
	)

	run := func() {
		comp.TickLater()
		Expect(engine.Run()).To(Succeed())
	}

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		inputs = &scriptedInputs{}
		p, err := panel.New(2, true)
		Expect(err).NotTo(HaveOccurred())

		comp = gate.MakeBuilder().
			WithEngine(engine).
			WithInputSource(inputs).
			WithOutputSink(p).
			WithThreshold(1).
			Build("Gate")
	})

	haltAfter := func(n uint64) {
		comp.AcceptHook(haltHook{comp: comp, after: n})
	}

	It("should record one waveform row per tick", func() {
		path := filepath.Join(GinkgoT().TempDir(), "wave")
		recorder := datarecording.New(path)
		DeferCleanup(recorder.Close)

		comp.AcceptHook(observe.NewWaveformRecorder(recorder))
		inputs.queue = []gate.Inputs{
			{EntranceSensor: true},
			{Code: gate.Code{A: 1, B: 3}},
			{ExitSensor: true},
		}
		haltAfter(3)

		run()
		recorder.Flush()

		reader, err := datarecording.NewReader(path + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(reader.Close)

		reader.MapTable(observe.WaveformTableName, observe.WaveformEntry{})
		rows, err := reader.ReadTable(context.Background(),
			observe.WaveformTableName)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(3))

		first := rows[0].(*observe.WaveformEntry)
		Expect(first.Gate).To(Equal("Gate"))
		Expect(first.Cycle).To(Equal(uint64(1)))
		Expect(first.Entrance).To(BeTrue())
		Expect(first.PrevPhase).To(Equal("IDLE"))
		Expect(first.Phase).To(Equal("WAIT_CODE"))
		Expect(first.Display).To(Equal("En"))

		second := rows[1].(*observe.WaveformEntry)
		Expect(second.Phase).To(Equal("ACCEPTED"))
		Expect(second.GateOpen).To(BeTrue())
		Expect(second.CodeA).To(Equal(uint8(1)))
		Expect(second.CodeB).To(Equal(uint8(3)))

		third := rows[2].(*observe.WaveformEntry)
		Expect(third.Phase).To(Equal("IDLE"))
		Expect(third.Time).To(BeNumerically(">", second.Time))
	})

	It("should log phase changes only", func() {
		buf := new(bytes.Buffer)
		comp.AcceptHook(observe.NewTransitionLogger(log.New(buf, "", 0)))
		inputs.queue = []gate.Inputs{
			{EntranceSensor: true},
			{EntranceSensor: true, Code: gate.Code{A: 2, B: 2}},
			{Code: gate.Code{A: 2, B: 2}},
		}
		haltAfter(3)

		run()

		lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
		Expect(lines).To(HaveLen(2))
		Expect(string(lines[0])).To(ContainSubstring("Gate, cycle 1: IDLE -> WAIT_CODE"))
		Expect(string(lines[1])).To(ContainSubstring("WAIT_CODE -> REJECTED, code (2,2)"))
		Expect(string(lines[1])).To(ContainSubstring(`display "EE"`))
	})
})

type haltHook struct {
	comp  *gate.Comp
	after uint64
}

func (h haltHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != gate.HookPosTick {
		return
	}

	if ctx.Item.(gate.TickRecord).Cycle >= h.after {
		h.comp.Halt()
	}
}
