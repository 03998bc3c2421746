package cmd

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/parkgate/config"
	"github.com/sarchlab/parkgate/gate"
	"github.com/sarchlab/parkgate/stimulus"
	"github.com/sarchlab/parkgate/tracing"
)

func execute(args ...string) (string, error) {
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append(args, "--env-file", "testdata-none.env"))

	err := root.Execute()

	return buf.String(), err
}

var _ = Describe("parkgate", func() {
	It("should pass a bundled scenario", func() {
		out, err := execute("run", "--scenario", "entry-exit")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Script entry-exit: 6 steps, 11 cycles"))
		Expect(out).To(ContainSubstring("1 started, 1 completed, 1 accepted"))
		Expect(out).To(ContainSubstring("PASS"))
	})

	It("should fail when the gate does not behave as scripted", func() {
		out, err := execute("run", "--scenario", "entry-exit", "--secret", "2,2")

		Expect(err).To(MatchError(ErrExpectationsFailed))
		Expect(out).To(ContainSubstring("FAIL step 4 (enter code)"))
		Expect(out).NotTo(ContainSubstring("PASS"))
	})

	It("should reject an invalid configuration", func() {
		_, err := execute("run", "--scenario", "entry-exit", "--threshold", "0")

		Expect(err).To(MatchError(gate.ErrInvalidThreshold))
	})

	It("should require exactly one script source", func() {
		_, err := execute("run")
		Expect(err).To(HaveOccurred())

		_, err = execute("run", "a.yaml", "--scenario", "livelock")
		Expect(err).To(HaveOccurred())

		_, err = execute("run", "--scenario", "nope")
		Expect(err).To(MatchError(ContainSubstring("unknown scenario")))
	})

	It("should run a script file and log transitions", func() {
		path := filepath.Join(GinkgoT().TempDir(), "short.yaml")
		Expect(os.WriteFile(path, []byte(`
name: short
steps:
  - set: {entrance: true, code: [1, 3]}
    ticks: 5
    expect: {state: ACCEPTED}
`), 0o644)).To(Succeed())

		out, err := execute("run", path, "--log-transitions")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("IDLE -> WAIT_CODE"))
		Expect(out).To(ContainSubstring("WAIT_CODE -> ACCEPTED"))
		Expect(out).To(ContainSubstring("PASS"))
	})

	It("should record a run and report on it", func() {
		output := filepath.Join(GinkgoT().TempDir(), "run")

		out, err := execute("run", "--scenario", "entry-exit",
			"--output", output)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Recorded to " + output + ".sqlite3"))

		out, err = execute("report", output+".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Waveform: 11 cycles, gate opened 1 times"))
		Expect(out).To(ContainSubstring("Sessions: 1"))
		Expect(out).To(ContainSubstring("done"))
		Expect(out).To(ContainSubstring("[accepted]"))
	})

	It("should record only the sessions inside the trace window", func() {
		output := filepath.Join(GinkgoT().TempDir(), "late")

		_, err := execute("run", "--scenario", "entry-exit",
			"--output", output, "--trace-window", "20:")
		Expect(err).NotTo(HaveOccurred())

		out, err := execute("report", output+".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Waveform: 11 cycles"))
		Expect(out).To(ContainSubstring("Sessions: 0"))
	})

	It("should refuse a malformed trace window", func() {
		output := filepath.Join(GinkgoT().TempDir(), "bad")

		_, err := execute("run", "--scenario", "entry-exit",
			"--output", output, "--trace-window", "9:3")
		Expect(err).To(MatchError(ContainSubstring("ends before it starts")))

		_, err = execute("run", "--scenario", "entry-exit",
			"--output", output, "--trace-window", "9")
		Expect(err).To(MatchError(ContainSubstring("must be FROM:TO")))

		_, err = execute("run", "--scenario", "entry-exit",
			"--trace-window", "0:9")
		Expect(err).To(MatchError(ContainSubstring("needs --record")))
	})

	It("should count the session steps by name", func() {
		out, err := execute("run", "--scenario", "wrong-then-right")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Steps: rejected 1, accepted 1"))
		Expect(out).NotTo(ContainSubstring("Monitored at"))
	})

	It("should list the scenarios", func() {
		out, err := execute("scenarios")

		Expect(err).NotTo(HaveOccurred())
		for _, name := range stimulus.BuiltinNames() {
			Expect(out).To(ContainSubstring(name))
		}
	})

	It("should print the effective configuration", func() {
		GinkgoT().Setenv(config.EnvThreshold, "7")

		out, err := execute("config")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("threshold = 7"))
		Expect(out).To(ContainSubstring("[simulation]"))
	})

	It("should read a config file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "parkgate.toml")
		Expect(os.WriteFile(path, []byte("[gate]\nsecret = [2, 2]\n"), 0o644)).
			To(Succeed())

		_, err := execute("run", "--scenario", "wrong-then-right",
			"--config", path)

		Expect(err).To(MatchError(ErrExpectationsFailed))
	})
})

var _ = Describe("runScenario", func() {
	It("should count rejections of a livelocked session", func() {
		script, err := stimulus.Builtin("livelock")
		Expect(err).NotTo(HaveOccurred())

		report, err := runScenario(config.Default(), script, runOptions{},
			new(bytes.Buffer))

		Expect(err).NotTo(HaveOccurred())
		Expect(report.Failures).To(BeEmpty())
		Expect(report.Sessions).To(Equal(uint64(1)))
		Expect(report.Completed).To(BeZero())
		Expect(report.Accepted).To(BeZero())
		Expect(report.Rejections).To(Equal(uint64(11)))
		Expect(report.Cycles).To(Equal(uint64(script.TotalTicks())))
		Expect(report.Occupied).To(BeNumerically(">", 0))
	})

	It("should parse trace windows with open bounds", func() {
		Expect(parseWindow("3:8")).To(Equal([2]uint64{3, 8}))
		Expect(parseWindow(":8")).To(Equal([2]uint64{0, 8}))
		Expect(parseWindow("3:")).To(Equal([2]uint64{3, 0}))

		_, err := parseWindow("a:8")
		Expect(err).To(HaveOccurred())
	})

	It("should keep sessions that overlap the trace window", func() {
		script, err := stimulus.Builtin("entry-exit")
		Expect(err).NotTo(HaveOccurred())

		cfg := config.Default()
		cfg.Simulation.Record = true
		cfg.Simulation.Output = filepath.Join(GinkgoT().TempDir(), "early")

		report, err := runScenario(cfg, script,
			runOptions{traceWindow: [2]uint64{0, 5}}, new(bytes.Buffer))
		Expect(err).NotTo(HaveOccurred())
		Expect(report.StepCounts).To(Equal([]stepCount{
			{Name: gate.StepAccepted, Count: 1},
		}))

		out, err := execute("report", report.Output)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Sessions: 1"))
	})

	It("should write finished sessions as JSON lines", func() {
		script, err := stimulus.Builtin("wrong-then-right")
		Expect(err).NotTo(HaveOccurred())

		trace := new(bytes.Buffer)
		report, err := runScenario(config.Default(), script,
			runOptions{traceJSON: trace}, new(bytes.Buffer))

		Expect(err).NotTo(HaveOccurred())
		Expect(report.Failures).To(BeEmpty())
		Expect(report.Completed).To(Equal(uint64(1)))
		Expect(report.Rejections).To(Equal(uint64(1)))
		Expect(report.Accepted).To(Equal(uint64(1)))

		task := tracing.Task{}
		Expect(json.Unmarshal(trace.Bytes(), &task)).To(Succeed())
		Expect(task.Kind).To(Equal(gate.SessionKind))
		Expect(task.Location).To(Equal("Gate"))
		Expect(task.Steps).To(HaveLen(2))
		Expect(task.Steps[0].What).To(Equal(gate.StepRejected))
		Expect(task.Steps[1].What).To(Equal(gate.StepAccepted))
		Expect(float64(report.Occupied)).
			To(BeNumerically("~", float64(task.EndTime-task.StartTime), 1e-12))
	})

	It("should keep the reset polarity a script pins", func() {
		script, err := stimulus.Builtin("reset-held")
		Expect(err).NotTo(HaveOccurred())

		cfg := config.Default()
		cfg.Gate.ResetActiveLow = false

		report, err := runScenario(cfg, script, runOptions{}, new(bytes.Buffer))

		Expect(err).NotTo(HaveOccurred())
		Expect(report.Failures).To(BeEmpty())
	})

	It("should honour an active-high reset line", func() {
		script, err := stimulus.Builtin("reset-held")
		Expect(err).NotTo(HaveOccurred())
		script.Gate.ResetActiveLow = nil

		cfg := config.Default()
		cfg.Gate.ResetActiveLow = false

		report, err := runScenario(cfg, script, runOptions{}, new(bytes.Buffer))

		Expect(err).NotTo(HaveOccurred())
		Expect(report.Failures).NotTo(BeEmpty())
	})

	It("should refuse a frequency that is not a number", func() {
		script, err := stimulus.Builtin("entry-exit")
		Expect(err).NotTo(HaveOccurred())

		cfg := config.Default()
		cfg.Gate.FreqHz = math.NaN()

		_, err = runScenario(cfg, script, runOptions{}, new(bytes.Buffer))

		Expect(err).To(MatchError(gate.ErrInvalidFreq))
	})
})
