// Package config loads the settings of a gate run from a TOML file, an
// optional .env file and PARKGATE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/sarchlab/parkgate/gate"
	"github.com/sarchlab/parkgate/sim"
)

// ErrInvalidEnv is returned when an environment override cannot be parsed.
var ErrInvalidEnv = errors.New("config: invalid environment variable")

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Environment variables read by ApplyEnv.
const (
	EnvThreshold   = "PARKGATE_THRESHOLD"
	EnvSecret      = "PARKGATE_SECRET"
	EnvCodeWidth   = "PARKGATE_CODE_WIDTH"
	EnvFreqHz      = "PARKGATE_FREQ_HZ"
	EnvMonitorPort = "PARKGATE_MONITOR_PORT"
)

// Config holds every setting of a run.
type Config struct {
	Gate       Gate       `toml:"gate"`
	Simulation Simulation `toml:"simulation"`
}

// Gate holds the controller parameters.
type Gate struct {
	Threshold      uint32  `toml:"threshold"`
	Secret         []int   `toml:"secret"`
	CodeWidth      uint8   `toml:"code_width"`
	FreqHz         float64 `toml:"freq_hz"`
	EchoCode       bool    `toml:"echo_code"`
	ResetActiveLow bool    `toml:"reset_active_low"`
}

// Simulation holds the run environment settings.
type Simulation struct {
	Monitor     bool   `toml:"monitor"`
	MonitorPort int    `toml:"monitor_port"`
	OpenBrowser bool   `toml:"open_browser"`
	Record      bool   `toml:"record"`
	Output      string `toml:"output"`
}

// Default returns the configuration of the reference board.
func Default() Config {
	spec := gate.Defaults()

	return Config{
		Gate: Gate{
			Threshold:      spec.Threshold,
			Secret:         []int{int(spec.Secret.A), int(spec.Secret.B)},
			CodeWidth:      spec.CodeWidth,
			FreqHz:         float64(spec.Freq),
			EchoCode:       spec.EchoCode,
			ResetActiveLow: true,
		},
	}
}

// Load reads a TOML file over the defaults. Keys the file sets replace the
// defaults; unknown keys are errors.
func Load(path string) (Config, error) {
	cfg := Default()

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("loading %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}

		return Config{}, fmt.Errorf("%w: %s: unknown keys %s",
			ErrInvalidConfig, path, strings.Join(keys, ", "))
	}

	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from the files into the process
// environment. Missing files are skipped. Variables already set win.
func LoadEnvFile(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}

		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}

	return nil
}

// ApplyEnv overrides the configuration with PARKGATE_* variables.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvThreshold); ok {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return envError(EnvThreshold, v, err)
		}

		c.Gate.Threshold = uint32(n)
	}

	if v, ok := os.LookupEnv(EnvSecret); ok {
		secret, err := ParseCode(v)
		if err != nil {
			return envError(EnvSecret, v, err)
		}

		c.Gate.Secret = []int{int(secret.A), int(secret.B)}
	}

	if v, ok := os.LookupEnv(EnvCodeWidth); ok {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return envError(EnvCodeWidth, v, err)
		}

		c.Gate.CodeWidth = uint8(n)
	}

	if v, ok := os.LookupEnv(EnvFreqHz); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return envError(EnvFreqHz, v, err)
		}

		c.Gate.FreqHz = f
	}

	if v, ok := os.LookupEnv(EnvMonitorPort); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError(EnvMonitorPort, v, err)
		}

		c.Simulation.MonitorPort = n
	}

	return nil
}

func envError(name, value string, err error) error {
	return fmt.Errorf("%w: %s=%q: %v", ErrInvalidEnv, name, value, err)
}

// ParseCode parses a code written as "a,b".
func ParseCode(s string) (gate.Code, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return gate.Code{}, fmt.Errorf("code %q must be two digits \"a,b\"", s)
	}

	var digits [2]uint8
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 0, 8)
		if err != nil {
			return gate.Code{}, fmt.Errorf("code %q: %w", s, err)
		}

		digits[i] = uint8(n)
	}

	return gate.Code{A: digits[0], B: digits[1]}, nil
}

// GateSpec converts the gate settings into a controller spec.
func (c Config) GateSpec() gate.Spec {
	spec := gate.Spec{
		Threshold: c.Gate.Threshold,
		CodeWidth: c.Gate.CodeWidth,
		Freq:      sim.Freq(c.Gate.FreqHz),
		EchoCode:  c.Gate.EchoCode,
	}

	if len(c.Gate.Secret) == 2 {
		spec.Secret = gate.Code{
			A: uint8(c.Gate.Secret[0]),
			B: uint8(c.Gate.Secret[1]),
		}
	}

	return spec
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if len(c.Gate.Secret) != 2 {
		return fmt.Errorf("%w: secret must have two digits, got %d",
			ErrInvalidConfig, len(c.Gate.Secret))
	}

	for _, d := range c.Gate.Secret {
		if d < 0 || d > 0xFF {
			return fmt.Errorf("%w: secret digit %d", ErrInvalidConfig, d)
		}
	}

	if err := c.GateSpec().Validate(); err != nil {
		return err
	}

	port := c.Simulation.MonitorPort
	if port < 0 || port > 65535 {
		return fmt.Errorf("%w: monitor port %d", ErrInvalidConfig, port)
	}

	return nil
}

// Encode writes the configuration as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
