package gate

import (
	"github.com/sarchlab/parkgate/segment"
)

// Registers are the clocked state of the controller.
type Registers struct {
	Phase   Phase
	Counter uint32
}

// Inputs are the signals sampled at a clock edge.
type Inputs struct {
	// Reset forces the controller to IDLE while asserted.
	Reset          bool
	EntranceSensor bool
	ExitSensor     bool
	Code           Code
}

// Outputs are the signals driven by the controller.
type Outputs struct {
	GateOpen  bool
	DenyLight bool
	Display1  segment.Pattern
	Display2  segment.Pattern
}

// Snapshot is a serializable view of a gate component.
type Snapshot struct {
	Phase     string  `json:"phase"`
	Counter   uint32  `json:"counter"`
	Cycle     uint64  `json:"cycle"`
	Inputs    Inputs  `json:"inputs"`
	Outputs   Outputs `json:"outputs"`
	Display   string  `json:"display"`
	Halted    bool    `json:"halted"`
	Threshold uint32  `json:"threshold"`
}
