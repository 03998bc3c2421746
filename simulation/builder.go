package simulation

import (
	"github.com/rs/xid"

	"github.com/sarchlab/parkgate/datarecording"
	"github.com/sarchlab/parkgate/monitoring"
	"github.com/sarchlab/parkgate/sim"
	"github.com/sarchlab/parkgate/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	monitorOn      bool
	monitorPort    int
	openBrowser    bool
	recordOn       bool
	outputFileName string
}

// MakeBuilder creates a new builder with monitoring and recording on.
func MakeBuilder() Builder {
	return Builder{
		monitorOn: true,
		recordOn:  true,
	}
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithOpenBrowser opens the monitor page once the server is up.
func (b Builder) WithOpenBrowser() Builder {
	b.openBrowser = true
	return b
}

// WithoutRecording sets the simulation to not write a database.
func (b Builder) WithoutRecording() Builder {
	b.recordOn = false
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
// The ".sqlite3" suffix is added by the recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.monitorOn && b.openBrowser {
		panic("browser cannot be opened when monitoring is disabled")
	}

	if !b.recordOn && b.outputFileName != "" {
		panic("output file cannot be set when recording is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:         xid.New().String(),
		engine:     sim.NewSerialEngine(),
		registered: make(map[string]bool),
	}

	if b.recordOn {
		s.outputPath = b.outputFileName
		if s.outputPath == "" {
			s.outputPath = "parkgate_sim_" + s.id
		}

		s.dataRecorder = datarecording.New(s.outputPath)
		s.sessionTracer = tracing.NewDBTracer(s.engine, s.dataRecorder)
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor().
			WithPortNumber(b.monitorPort).
			WithOpenBrowser(b.openBrowser)
		s.monitor.RegisterEngine(s.engine)
		s.monitorURL = s.monitor.StartServer()
	}

	return s
}
