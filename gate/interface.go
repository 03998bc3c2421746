package gate

// Abstractions of the panel the controller is wired to. Tests mock these
// interfaces.
//
//go:generate mockgen -destination "mock_gate_test.go" -package $GOPACKAGE -write_package_comment=false -source interface.go

// InputSource provides the input pins of the gate. It is sampled once per
// tick.
type InputSource interface {
	Sample() Inputs
}

// OutputSink receives the outputs after every tick.
type OutputSink interface {
	Publish(out Outputs)
}
