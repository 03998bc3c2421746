// Package observe provides hooks that observe a gate while it runs.
package observe

import (
	"github.com/sarchlab/parkgate/datarecording"
	"github.com/sarchlab/parkgate/gate"
	"github.com/sarchlab/parkgate/sim"
)

// WaveformTableName is the table WaveformRecorder writes to.
const WaveformTableName = "waveform"

// WaveformEntry is one clock edge of a gate.
type WaveformEntry struct {
	Gate      string
	Cycle     uint64
	Time      float64
	Reset     bool
	Entrance  bool
	Exit      bool
	CodeA     uint8
	CodeB     uint8
	PrevPhase string
	Phase     string
	Counter   uint32
	GateOpen  bool
	DenyLight bool
	Display1  uint8
	Display2  uint8
	Display   string
}

// WaveformRecorder writes a row for every gate tick.
type WaveformRecorder struct {
	recorder datarecording.DataRecorder
}

// NewWaveformRecorder creates the waveform table and returns the hook.
func NewWaveformRecorder(
	recorder datarecording.DataRecorder,
) *WaveformRecorder {
	recorder.CreateTable(WaveformTableName, WaveformEntry{})

	return &WaveformRecorder{recorder: recorder}
}

// Func records the tick.
func (r *WaveformRecorder) Func(ctx sim.HookCtx) {
	if ctx.Pos != gate.HookPosTick {
		return
	}

	rec, ok := ctx.Item.(gate.TickRecord)
	if !ok {
		return
	}

	entry := WaveformEntry{
		Cycle:     rec.Cycle,
		Time:      float64(rec.Time),
		Reset:     rec.Inputs.Reset,
		Entrance:  rec.Inputs.EntranceSensor,
		Exit:      rec.Inputs.ExitSensor,
		CodeA:     rec.Inputs.Code.A,
		CodeB:     rec.Inputs.Code.B,
		PrevPhase: rec.Prev.Phase.String(),
		Phase:     rec.Next.Phase.String(),
		Counter:   rec.Next.Counter,
		GateOpen:  rec.Outputs.GateOpen,
		DenyLight: rec.Outputs.DenyLight,
		Display1:  uint8(rec.Outputs.Display1),
		Display2:  uint8(rec.Outputs.Display2),
		Display:   rec.Outputs.DisplayText(),
	}

	if named, ok := ctx.Domain.(sim.Named); ok {
		entry.Gate = named.Name()
	}

	r.recorder.InsertData(WaveformTableName, entry)
}
