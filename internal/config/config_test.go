package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rvcomply/internal/discovery"
	"github.com/roach88/rvcomply/internal/simulator"
	"github.com/roach88/rvcomply/internal/testutil"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	assert.Equal(t, simulator.DefaultPath, cfg.Simulator)
	assert.Equal(t, 5000, cfg.Timeout)
	assert.Zero(t, cfg.Supervise)
	assert.Equal(t, []string{"I-MISALIGN_JMP-01", "I-MISALIGN_LDST-01"}, cfg.ExpectedFails)
	require.Len(t, cfg.Classes, 3)
	assert.Equal(t, Class{
		Name:     "rv32imc",
		Images:   "work/riscv-compliance/rv32imc",
		Listings: "external/riscv-compliance/work/rv32imc",
	}, cfg.Classes[2])
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	v, err := NewViper("")
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, `
-- rvcomply.yaml --
simulator: /opt/frv/verilated-frv_core
waves_dir: out/waves
timeout: 20000
supervise: 30s
database: out/history.db
expected_fails: [I-MISALIGN_JMP-01]
classes:
  - name: rv32i
    images: build/rv32i
    listings: suite/rv32i
`)

	v, err := NewViper(filepath.Join(dir, "rvcomply.yaml"))
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, &Config{
		Simulator:     "/opt/frv/verilated-frv_core",
		WavesDir:      "out/waves",
		Timeout:       20000,
		Supervise:     30 * time.Second,
		Database:      "out/history.db",
		ExpectedFails: []string{"I-MISALIGN_JMP-01"},
		Classes:       []Class{{Name: "rv32i", Images: "build/rv32i", Listings: "suite/rv32i"}},
	}, cfg)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RVCOMPLY_TIMEOUT", "123")
	t.Setenv("RVCOMPLY_SIMULATOR", "/env/sim")
	t.Setenv("RVCOMPLY_SUPERVISE", "2m")

	v, err := NewViper("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 123, cfg.Timeout)
	assert.Equal(t, "/env/sim", cfg.Simulator)
	assert.Equal(t, 2*time.Minute, cfg.Supervise)
}

func TestLoadMergesExpectedFailsFile(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, `
-- expected.yaml --
- I-EBREAK-01
- I-MISALIGN_JMP-01
`)
	t.Setenv("RVCOMPLY_EXPECTED_FAILS_FILE", filepath.Join(dir, "expected.yaml"))

	v, err := NewViper("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, []string{"I-EBREAK-01", "I-MISALIGN_JMP-01", "I-MISALIGN_LDST-01"}, cfg.ExpectedFails)
	assert.True(t, cfg.Expected().Contains("I-EBREAK-01"))
}

func TestLoadMissingExpectedFailsFile(t *testing.T) {
	t.Setenv("RVCOMPLY_EXPECTED_FAILS_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	v, err := NewViper("")
	require.NoError(t, err)
	_, err = Load(v)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewViperMissingFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, `
-- rvcomply.yaml --
timeout: 0
`)

	v, err := NewViper(filepath.Join(dir, "rvcomply.yaml"))
	require.NoError(t, err)
	_, err = Load(v)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, err.Error(), "timeout")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty simulator", func(c *Config) { c.Simulator = "" }, "simulator"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "timeout"},
		{"negative supervise", func(c *Config) { c.Supervise = -time.Second }, "supervise"},
		{"no classes", func(c *Config) { c.Classes = nil }, "classes"},
		{"bad class name", func(c *Config) { c.Classes[0].Name = "rv 32i" }, "name"},
		{"empty images", func(c *Config) { c.Classes[1].Images = "" }, "images"},
		{"blank expected fail", func(c *Config) { c.ExpectedFails = []string{""} }, "expected_fails"},
		{"duplicate class", func(c *Config) { c.Classes[1].Name = c.Classes[0].Name }, "duplicate class"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.NotEmpty(t, verr.Problems)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Supervise = 45 * time.Second

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, cfg))
	assert.Contains(t, buf.String(), "supervise: 45s")
	assert.Contains(t, buf.String(), "waves_dir: work/riscv-compliance")

	path := filepath.Join(t.TempDir(), "rvcomply.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	v, err := NewViper(path)
	require.NoError(t, err)
	loaded, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	home := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", home)

	assert.Equal(t, "explicit.yaml", Locate("explicit.yaml"))
	assert.Empty(t, Locate(""))

	require.NoError(t, os.WriteFile(filepath.Join(home, HomeFileName), nil, 0644))
	assert.Equal(t, filepath.Join(home, HomeFileName), Locate(""))

	require.NoError(t, os.WriteFile(FileName, nil, 0644))
	assert.Equal(t, FileName, Locate(""))
}

func TestSelectClasses(t *testing.T) {
	cfg := Default()

	all, err := cfg.SelectClasses(nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	some, err := cfg.SelectClasses([]string{"rv32imc", "rv32i"})
	require.NoError(t, err)
	assert.Equal(t, []discovery.Class{
		{Name: "rv32i", ImageRoot: "work/riscv-compliance/rv32i", ListingRoot: "external/riscv-compliance/work/rv32i"},
		{Name: "rv32imc", ImageRoot: "work/riscv-compliance/rv32imc", ListingRoot: "external/riscv-compliance/work/rv32imc"},
	}, some)

	_, err = cfg.SelectClasses([]string{"rv64gc"})
	assert.ErrorIs(t, err, ErrUnknownClass)
}

func TestSimulatorConfig(t *testing.T) {
	cfg := Default()
	cfg.Supervise = time.Minute

	assert.Equal(t, simulator.Config{
		Path:      simulator.DefaultPath,
		Timeout:   5000,
		Supervise: time.Minute,
	}, cfg.SimulatorConfig())
}
