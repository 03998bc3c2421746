// Package simulation bundles the engine, the recorder and the monitor that a
// gate run needs.
package simulation

import (
	"fmt"
	"os"

	"github.com/sarchlab/parkgate/datarecording"
	"github.com/sarchlab/parkgate/monitoring"
	"github.com/sarchlab/parkgate/sim"
	"github.com/sarchlab/parkgate/tracing"
)

// A Simulation provides the service requires to define a simulation.
type Simulation struct {
	id     string
	engine *sim.SerialEngine

	outputPath    string
	dataRecorder  datarecording.DataRecorder
	sessionTracer *tracing.DBTracer

	monitor    *monitoring.Monitor
	monitorURL string

	registered map[string]bool
	terminated bool
}

// ID returns the ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() *sim.SerialEngine {
	return s.engine
}

// GetDataRecorder returns the data recorder, or nil when recording is off.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// OutputPath returns the database file name without the ".sqlite3" suffix.
func (s *Simulation) OutputPath() string {
	return s.outputPath
}

// GetMonitor returns the monitor, or nil when monitoring is off.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// MonitorURL returns the address of the monitor server.
func (s *Simulation) MonitorURL() string {
	return s.monitorURL
}

// GetSessionTracer returns the tracer that stores tasks into the recorder.
func (s *Simulation) GetSessionTracer() *tracing.DBTracer {
	return s.sessionTracer
}

// RegisterComponent registers a component with the simulation and the
// monitor.
func (s *Simulation) RegisterComponent(c sim.Component) {
	compName := c.Name()
	if s.registered[compName] {
		panic("component " + compName + " already registered")
	}

	s.registered[compName] = true

	if s.monitor != nil {
		s.monitor.RegisterComponent(c)
	}
}

// TraceTasks stores the tasks of the domain in the recorder, if there is one.
func (s *Simulation) TraceTasks(domain tracing.NamedHookable) {
	if s.sessionTracer == nil {
		return
	}

	tracing.CollectTrace(domain, s.sessionTracer)
}

// Terminate writes the unfinished tasks, closes the database and stops the
// monitor. It returns the error of closing the database, which is also
// reported on stderr. Later calls do nothing.
func (s *Simulation) Terminate() error {
	if s.terminated {
		return nil
	}

	s.terminated = true
	s.engine.Finished()

	if s.sessionTracer != nil {
		s.sessionTracer.Terminate()
	}

	var err error
	if s.dataRecorder != nil {
		if err = s.dataRecorder.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to close %s.sqlite3: %v\n",
				s.outputPath, err)
		}
	}

	if s.monitor != nil {
		s.monitor.StopServer()
	}

	return err
}
