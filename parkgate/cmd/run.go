package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/parkgate/config"
	"github.com/sarchlab/parkgate/gate"
	"github.com/sarchlab/parkgate/observe"
	"github.com/sarchlab/parkgate/panel"
	"github.com/sarchlab/parkgate/sim"
	"github.com/sarchlab/parkgate/simulation"
	"github.com/sarchlab/parkgate/stimulus"
	"github.com/sarchlab/parkgate/tracing"
)

type runOptions struct {
	logTransitions bool
	logEvents      bool
	traceJSON      io.Writer

	// traceWindow limits the recorded sessions to those overlapping the
	// cycles [from, to]. Zero bounds are open.
	traceWindow [2]uint64
}

type stepCount struct {
	Name  string
	Count uint64
}

type runReport struct {
	Script      string
	Steps       int
	Cycles      uint64
	Sessions    uint64
	Completed   uint64
	Accepted    uint64
	Rejections  uint64
	MeanSession sim.VTimeInSec
	Occupied    sim.VTimeInSec
	StepCounts  []stepCount
	Failures    []stimulus.Failure
	Output      string
	Monitor     string
}

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [script.yaml]",
		Short: "Run a stimulus script against the gate.",
		Long: "Run a stimulus script against the gate. Use --scenario to run " +
			"one of the bundled scripts instead of a file.",
		Args: cobra.MaximumNArgs(1),
		RunE: runRun,
	}

	f := runCmd.Flags()
	f.String("scenario", "", "bundled scenario to run")
	f.Uint32("threshold", 0, "ticks before the entered code is evaluated")
	f.String("secret", "", "secret code as \"a,b\"")
	f.Uint8("code-width", 0, "bit width of each code digit")
	f.Bool("echo-code", false, "show the entered digits while waiting")
	f.Bool("reset-active-low", true, "treat a low reset line as asserted")
	f.Bool("monitor", false, "serve the monitoring page during the run")
	f.Int("monitor-port", 0, "port of the monitoring server")
	f.Bool("open-browser", false, "open the monitoring page in a browser")
	f.Bool("record", false, "record the waveform and sessions into SQLite")
	f.String("output", "", "recording file name, without .sqlite3")
	f.Bool("log-transitions", false, "print every phase change")
	f.Bool("log-events", false, "print every simulation event to stderr")
	f.String("trace-json", "", "write every finished session as a JSON line")
	f.String("trace-window", "",
		"record only sessions overlapping cycles FROM:TO (either may be empty)")
	f.Bool("parallel-ids", false,
		"use globally unique session IDs instead of sequential ones")

	return runCmd
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := applyRunFlags(cmd, &cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	script, err := pickScript(cmd, args)
	if err != nil {
		return err
	}

	opts := runOptions{}
	opts.logTransitions, _ = cmd.Flags().GetBool("log-transitions")
	opts.logEvents, _ = cmd.Flags().GetBool("log-events")

	if w, _ := cmd.Flags().GetString("trace-window"); w != "" {
		if !cfg.Simulation.Record {
			return errors.New("--trace-window needs --record or --output")
		}

		if opts.traceWindow, err = parseWindow(w); err != nil {
			return err
		}
	}

	if parallel, _ := cmd.Flags().GetBool("parallel-ids"); parallel {
		sim.UseParallelIDGenerator()
	}

	if path, _ := cmd.Flags().GetString("trace-json"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()

		opts.traceJSON = f
	}

	out := cmd.OutOrStdout()

	report, err := runScenario(cfg, script, opts, out)
	if err != nil {
		return err
	}

	printReport(out, report)

	if len(report.Failures) > 0 {
		return fmt.Errorf("%s: %w (%d)",
			report.Script, ErrExpectationsFailed, len(report.Failures))
	}

	return nil
}

func pickScript(cmd *cobra.Command, args []string) (*stimulus.Script, error) {
	name, _ := cmd.Flags().GetString("scenario")

	switch {
	case name != "" && len(args) > 0:
		return nil, fmt.Errorf("give either a script file or --scenario")
	case name != "":
		return stimulus.Builtin(name)
	case len(args) > 0:
		return stimulus.Load(args[0])
	default:
		return nil, fmt.Errorf("no script: give a file or --scenario, "+
			"see \"parkgate scenarios\"")
	}
}

// parseWindow parses "FROM:TO" cycle bounds.
func parseWindow(s string) ([2]uint64, error) {
	var w [2]uint64

	from, to, ok := strings.Cut(s, ":")
	if !ok {
		return w, fmt.Errorf("trace window %q must be FROM:TO", s)
	}

	for i, part := range []string{from, to} {
		if part == "" {
			continue
		}

		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return w, fmt.Errorf("trace window %q: %w", s, err)
		}

		w[i] = n
	}

	if w[1] != 0 && w[1] < w[0] {
		return w, fmt.Errorf("trace window %q ends before it starts", s)
	}

	return w, nil
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()

	if f.Changed("threshold") {
		cfg.Gate.Threshold, _ = f.GetUint32("threshold")
	}

	if f.Changed("secret") {
		s, _ := f.GetString("secret")

		code, err := config.ParseCode(s)
		if err != nil {
			return err
		}

		cfg.Gate.Secret = []int{int(code.A), int(code.B)}
	}

	if f.Changed("code-width") {
		cfg.Gate.CodeWidth, _ = f.GetUint8("code-width")
	}

	if f.Changed("echo-code") {
		cfg.Gate.EchoCode, _ = f.GetBool("echo-code")
	}

	if f.Changed("reset-active-low") {
		cfg.Gate.ResetActiveLow, _ = f.GetBool("reset-active-low")
	}

	if f.Changed("monitor") {
		cfg.Simulation.Monitor, _ = f.GetBool("monitor")
	}

	if f.Changed("monitor-port") {
		cfg.Simulation.MonitorPort, _ = f.GetInt("monitor-port")
	}

	if f.Changed("open-browser") {
		cfg.Simulation.OpenBrowser, _ = f.GetBool("open-browser")
	}

	if f.Changed("record") {
		cfg.Simulation.Record, _ = f.GetBool("record")
	}

	if f.Changed("output") {
		cfg.Simulation.Output, _ = f.GetString("output")
		cfg.Simulation.Record = true
	}

	return nil
}

func buildSimulation(cfg config.Config) *simulation.Simulation {
	b := simulation.MakeBuilder()

	if cfg.Simulation.Monitor {
		b = b.WithMonitorPort(cfg.Simulation.MonitorPort)
		if cfg.Simulation.OpenBrowser {
			b = b.WithOpenBrowser()
		}
	} else {
		b = b.WithoutMonitoring()
	}

	if cfg.Simulation.Record {
		b = b.WithOutputFileName(cfg.Simulation.Output)
	} else {
		b = b.WithoutRecording()
	}

	return b.Build()
}

// runScenario drives a fresh gate with the script and summarizes the run.
func runScenario(
	cfg config.Config,
	script *stimulus.Script,
	opts runOptions,
	out io.Writer,
) (*runReport, error) {
	spec := script.Gate.Apply(cfg.GateSpec())
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	if err := script.Validate(spec); err != nil {
		return nil, err
	}

	pins, err := panel.New(spec.CodeWidth,
		script.Gate.ResetPolarity(cfg.Gate.ResetActiveLow))
	if err != nil {
		return nil, err
	}

	s := buildSimulation(cfg)
	defer s.Terminate()

	engine := s.GetEngine()

	g := gate.MakeBuilder().
		WithEngine(engine).
		WithSpec(spec).
		WithInputSource(pins).
		WithOutputSink(pins).
		Build("Gate")

	driverBuilder := stimulus.MakeBuilder().
		WithEngine(engine).
		WithFreq(spec.Freq).
		WithScript(script).
		WithPins(pins).
		WithTarget(g)

	if m := s.GetMonitor(); m != nil {
		bar := m.CreateProgressBar(script.Name, uint64(len(script.Steps)))
		defer m.CompleteProgressBar(bar)

		driverBuilder = driverBuilder.WithProgress(bar)
	}

	d := driverBuilder.Build("Driver")

	s.RegisterComponent(g)
	s.RegisterComponent(d)
	s.TraceTasks(g)

	if t := s.GetSessionTracer(); t != nil && opts.traceWindow != [2]uint64{} {
		period := 1 / float64(spec.Freq)
		t.SetTimeRange(
			sim.VTimeInSec(float64(opts.traceWindow[0])*period),
			sim.VTimeInSec(float64(opts.traceWindow[1])*period))
	}

	sessions := tracing.KindFilter(gate.SessionKind)
	steps := tracing.NewStepCountTracer(sessions)
	durations := tracing.NewAverageTimeTracer(engine, sessions)
	occupancy := tracing.NewTotalTimeTracer(engine, sessions)
	tracing.CollectTrace(g, steps)
	tracing.CollectTrace(g, durations)
	tracing.CollectTrace(g, occupancy)

	var jsonTracer *tracing.JSONTracer
	if opts.traceJSON != nil {
		jsonTracer = tracing.NewJSONTracer(engine, opts.traceJSON, sessions)
		tracing.CollectTrace(g, jsonTracer)
	}

	if opts.logTransitions {
		g.AcceptHook(observe.NewTransitionLogger(log.New(out, "", 0)))
	}

	if opts.logEvents {
		engine.AcceptHook(sim.NewEventLogger(log.New(os.Stderr, "", 0)))
	}

	if r := s.GetDataRecorder(); r != nil {
		g.AcceptHook(observe.NewWaveformRecorder(r))
	}

	g.TickLater()
	d.TickLater()

	if err := engine.Run(); err != nil {
		return nil, err
	}

	if jsonTracer != nil && jsonTracer.Err() != nil {
		return nil, jsonTracer.Err()
	}

	report := &runReport{
		Script:      script.Name,
		Steps:       len(script.Steps),
		Cycles:      g.Cycle(),
		Sessions:    steps.TotalCount(),
		Completed:   durations.TotalCount(),
		Accepted:    steps.GetTaskCount(gate.StepAccepted),
		Rejections:  steps.GetStepCount(gate.StepRejected),
		MeanSession: durations.AverageTime(),
		Occupied:    occupancy.TotalTime() + occupancy.InflightTime(),
		Failures:    d.Failures(),
	}

	for _, name := range steps.GetStepNames() {
		report.StepCounts = append(report.StepCounts,
			stepCount{Name: name, Count: steps.GetStepCount(name)})
	}

	if s.GetDataRecorder() != nil {
		report.Output = s.OutputPath() + ".sqlite3"
	}

	report.Monitor = s.MonitorURL()

	if err := s.Terminate(); err != nil {
		return nil, err
	}

	return report, nil
}

func printReport(w io.Writer, r *runReport) {
	fmt.Fprintf(w, "Script %s: %d steps, %d cycles\n", r.Script, r.Steps, r.Cycles)
	fmt.Fprintf(w, "Sessions: %d started, %d completed, %d accepted, "+
		"%d rejections\n", r.Sessions, r.Completed, r.Accepted, r.Rejections)

	if r.Completed > 0 {
		fmt.Fprintf(w, "Mean session time: %.9f s\n", r.MeanSession)
	}

	if r.Sessions > 0 {
		fmt.Fprintf(w, "Gate occupied: %.9f s\n", r.Occupied)
	}

	if len(r.StepCounts) > 0 {
		parts := make([]string, 0, len(r.StepCounts))
		for _, c := range r.StepCounts {
			parts = append(parts, fmt.Sprintf("%s %d", c.Name, c.Count))
		}

		fmt.Fprintf(w, "Steps: %s\n", strings.Join(parts, ", "))
	}

	if r.Monitor != "" {
		fmt.Fprintf(w, "Monitored at %s\n", r.Monitor)
	}

	if r.Output != "" {
		fmt.Fprintf(w, "Recorded to %s\n", r.Output)
	}

	for _, f := range r.Failures {
		fmt.Fprintf(w, "FAIL %s\n", f.Error())
	}

	if len(r.Failures) == 0 {
		fmt.Fprintln(w, "PASS")
	}
}
