package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonnenauha/obj-decimate/decimate"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	require.Equal(t, "absolute", cfg.Simplify.Method)
	require.Equal(t, 1000, cfg.Simplify.TargetFaces)
	require.Equal(t, 0.75, cfg.Simplify.PercentageReduction)
	require.True(t, cfg.Simplify.PreClean)
	require.Equal(t, 1024, cfg.Texture.Width)
	require.Equal(t, ".decimated", cfg.Output.Suffix)
	require.Equal(t, "info", cfg.Logging.Level)

	require.Equal(t, decimate.DefaultConfig(), cfg.Simplify.Decimate())
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), FileName)
	yamlContent := `
simplify:
  simplify_method: percentage
  percentage_reduction: 0.9
  texture_weight: 2.5
  preserve_normal: false

texture:
  width: 2048
  probe: false

output:
  gzip: 6

jobs:
  workers: 3

logging:
  level: "debug"
  log_file: "decimate.log"
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	cfg := Default()
	require.NoError(t, loadFromFile(cfg, configPath))

	require.Equal(t, "percentage", cfg.Simplify.Method)
	require.Equal(t, 0.9, cfg.Simplify.PercentageReduction)
	require.Equal(t, 2.5, cfg.Simplify.TextureWeight)
	require.False(t, cfg.Simplify.PreserveNormal)
	// untouched keys keep their defaults
	require.True(t, cfg.Simplify.PreserveBoundary)
	require.Equal(t, 1000, cfg.Simplify.TargetFaces)
	require.Equal(t, 2048, cfg.Texture.Width)
	require.Equal(t, 1024, cfg.Texture.Height)
	require.False(t, cfg.Texture.Probe)
	require.Equal(t, 6, cfg.Output.Gzip)
	require.Equal(t, 3, cfg.Jobs.Workers)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "decimate.log", cfg.Logging.LogFile)
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")
	invalidYAML := `
simplify:
  target_faces: not a number
  invalid syntax here
`
	require.NoError(t, os.WriteFile(configPath, []byte(invalidYAML), 0644))
	require.Error(t, loadFromFile(Default(), configPath))

	_, err := Load(configPath, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), configPath)
}

func TestLoadFromFileMissing(t *testing.T) {
	require.Error(t, loadFromFile(Default(), "/nonexistent/path/config.yaml"))
}

func TestLoadRejectsOutOfRange(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(configPath, []byte("simplify:\n  target_faces: 0\n"), 0644))

	_, err := Load(configPath, nil)
	var cfgErr *decimate.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	require.Equal(t, "target_faces", cfgErr.Option)
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		option string
		mutate func(c *Config)
	}{
		{"simplify_method", func(c *Config) { c.Simplify.Method = "half" }},
		{"texture", func(c *Config) { c.Texture.Height = -1 }},
		{"gzip", func(c *Config) { c.Output.Gzip = 10 }},
		{"workers", func(c *Config) { c.Jobs.Workers = -2 }},
		{"level", func(c *Config) { c.Logging.Level = "verbose" }},
	} {
		t.Run(tc.option, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			var cfgErr *decimate.ConfigError
			require.True(t, errors.As(cfg.Validate(), &cfgErr))
			require.Equal(t, tc.option, cfgErr.Option)
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	require.NotEmpty(t, dir)
	require.True(t, filepath.IsAbs(dir), dir)
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	require.NoError(t, os.Chdir(tmpDir))

	require.Empty(t, findConfigFile())

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, FileName), []byte("jobs:\n  workers: 2\n"), 0644))
	require.NotEmpty(t, findConfigFile())
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(t *testing.T, cfg *Config)
	}{
		{
			name: "nothing given keeps defaults",
			verify: func(t *testing.T, cfg *Config) {
				require.Equal(t, Default(), cfg)
			},
		},
		{
			name: "percentage implies method",
			args: []string{"-percentage", "0.5"},
			verify: func(t *testing.T, cfg *Config) {
				require.Equal(t, "percentage", cfg.Simplify.Method)
				require.Equal(t, 0.5, cfg.Simplify.PercentageReduction)
			},
		},
		{
			name: "explicit method wins",
			args: []string{"-percentage", "0.5", "-method", "absolute", "-target-faces", "12"},
			verify: func(t *testing.T, cfg *Config) {
				require.Equal(t, "absolute", cfg.Simplify.Method)
				require.Equal(t, 12, cfg.Simplify.TargetFaces)
			},
		},
		{
			name: "pre-clean off",
			args: []string{"-pre-clean=false"},
			verify: func(t *testing.T, cfg *Config) {
				require.False(t, cfg.Simplify.PreClean)
			},
		},
		{
			name: "output jobs and logging",
			args: []string{"-gzip", "9", "-workers", "4", "-log-level", "warn", "-log-file", "x.log"},
			verify: func(t *testing.T, cfg *Config) {
				require.Equal(t, 9, cfg.Output.Gzip)
				require.Equal(t, 4, cfg.Jobs.Workers)
				require.Equal(t, "warn", cfg.Logging.Level)
				require.Equal(t, "x.log", cfg.Logging.LogFile)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			flags := RegisterFlags(fs)
			require.NoError(t, fs.Parse(tt.args))

			cfg := Default()
			flags.apply(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), FileName)
	yamlContent := `
simplify:
  target_faces: 600
texture:
  width: 512
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-config", configPath, "-target-faces", "300"}))

	cfg, err := Load(flags.Config, flags)
	require.NoError(t, err)
	// flag over file
	require.Equal(t, 300, cfg.Simplify.TargetFaces)
	// file over default
	require.Equal(t, 512, cfg.Texture.Width)
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	cfg := Default()
	cfg.Simplify.BoundaryWeight = 3
	cfg.Jobs.Workers = 5
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := Load(path, nil)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}
