// Package config loads rvcomply's settings.
//
// Settings come from, highest precedence first: RVCOMPLY_* environment
// variables, the config file, and Default(). The merged result is checked
// against an embedded CUE schema before use.
//
//	simulator: work/verilator/frv_core/verilated-frv_core
//	waves_dir: work/riscv-compliance
//	timeout: 5000
//	supervise: 0s
//	expected_fails: [I-MISALIGN_JMP-01, I-MISALIGN_LDST-01]
//	classes:
//	  - {name: rv32i, images: work/riscv-compliance/rv32i, listings: external/riscv-compliance/work/rv32i}
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/roach88/rvcomply/internal/classify"
	"github.com/roach88/rvcomply/internal/discovery"
	"github.com/roach88/rvcomply/internal/simulator"
)

const (
	// FileName is the config file looked for in the working directory.
	FileName = "rvcomply.yaml"

	// HomeFileName is the config file looked for in $HOME.
	HomeFileName = ".rvcomply.yaml"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "RVCOMPLY"
)

// Config keys.
const (
	KeySimulator         = "simulator"
	KeyWavesDir          = "waves_dir"
	KeyTimeout           = "timeout"
	KeySupervise         = "supervise"
	KeyDatabase          = "database"
	KeyExpectedFails     = "expected_fails"
	KeyExpectedFailsFile = "expected_fails_file"
	KeyClasses           = "classes"
)

// Class locates one test class.
type Class struct {
	Name     string `mapstructure:"name" yaml:"name" json:"name"`
	Images   string `mapstructure:"images" yaml:"images" json:"images"`
	Listings string `mapstructure:"listings" yaml:"listings" json:"listings"`
}

// Config is the harness configuration.
type Config struct {
	Simulator         string        `mapstructure:"simulator" yaml:"simulator" json:"simulator"`
	WavesDir          string        `mapstructure:"waves_dir" yaml:"waves_dir" json:"waves_dir"`
	Timeout           int           `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	Supervise         time.Duration `mapstructure:"supervise" yaml:"supervise" json:"supervise"`
	Database          string        `mapstructure:"database" yaml:"database" json:"database"`
	ExpectedFails     []string      `mapstructure:"expected_fails" yaml:"expected_fails" json:"expected_fails"`
	ExpectedFailsFile string        `mapstructure:"expected_fails_file" yaml:"expected_fails_file" json:"expected_fails_file"`
	Classes           []Class       `mapstructure:"classes" yaml:"classes" json:"classes"`
}

// Default returns the layout of a standard core checkout: the verilated
// build under work/ and the riscv-compliance suite under external/.
func Default() *Config {
	classes := []Class{}
	for _, name := range []string{"rv32i", "rv32im", "rv32imc"} {
		classes = append(classes, Class{
			Name:     name,
			Images:   filepath.Join("work", "riscv-compliance", name),
			Listings: filepath.Join("external", "riscv-compliance", "work", name),
		})
	}
	return &Config{
		Simulator:     simulator.DefaultPath,
		WavesDir:      filepath.Join("work", "riscv-compliance"),
		Timeout:       simulator.DefaultTimeout,
		ExpectedFails: classify.DefaultExpectedFailures().Names(),
		Classes:       classes,
	}
}

// Locate returns the config file to read: explicit if set, else
// ./rvcomply.yaml, else $HOME/.rvcomply.yaml. Empty means none was found.
func Locate(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, HomeFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// NewViper returns a viper instance with defaults and environment
// overrides registered, reading path if it is non-empty.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path == "" {
		return v, nil
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return v, nil
}

// SetDefaults registers Default() on v. Every key needs a default for
// AutomaticEnv to reach it during Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeySimulator, d.Simulator)
	v.SetDefault(KeyWavesDir, d.WavesDir)
	v.SetDefault(KeyTimeout, d.Timeout)
	v.SetDefault(KeySupervise, d.Supervise)
	v.SetDefault(KeyDatabase, d.Database)
	v.SetDefault(KeyExpectedFails, d.ExpectedFails)
	v.SetDefault(KeyExpectedFailsFile, d.ExpectedFailsFile)
	v.SetDefault(KeyClasses, d.Classes)
}

// Load decodes v, merges the expected-fails file and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.ExpectedFailsFile != "" {
		names, err := ReadExpectedFails(cfg.ExpectedFailsFile)
		if err != nil {
			return nil, err
		}
		cfg.ExpectedFails = append(cfg.ExpectedFails, names...)
	}
	cfg.ExpectedFails = classify.NewExpectedFailures(cfg.ExpectedFails...).Names()

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadExpectedFails reads a YAML list of test names.
func ReadExpectedFails(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read expected fails: %w", err)
	}
	var names []string
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("failed to parse expected fails %s: %w", path, err)
	}
	return names, nil
}

// Write renders cfg as YAML.
func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

// ErrUnknownClass is returned by SelectClasses for a name not in the config.
var ErrUnknownClass = errors.New("unknown test class")

// SelectClasses returns the discovery roots for the named classes, in
// config order. No names selects every class.
func (c *Config) SelectClasses(names []string) ([]discovery.Class, error) {
	for _, name := range names {
		if !slices.ContainsFunc(c.Classes, func(cl Class) bool { return cl.Name == name }) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownClass, name)
		}
	}

	var out []discovery.Class
	for _, cl := range c.Classes {
		if len(names) > 0 && !slices.Contains(names, cl.Name) {
			continue
		}
		out = append(out, discovery.Class{Name: cl.Name, ImageRoot: cl.Images, ListingRoot: cl.Listings})
	}
	return out, nil
}

// SimulatorConfig returns the settings for simulator.Discover.
func (c *Config) SimulatorConfig() simulator.Config {
	return simulator.Config{Path: c.Simulator, Timeout: c.Timeout, Supervise: c.Supervise}
}

// Expected returns the expected-failure set.
func (c *Config) Expected() classify.ExpectedFailures {
	return classify.NewExpectedFailures(c.ExpectedFails...)
}
