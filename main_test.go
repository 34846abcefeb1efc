package main

import (
	"errors"
	"flag"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonnenauha/obj-decimate/decimate"
)

func resetProcessors(t *testing.T) {
	t.Cleanup(func() {
		for _, p := range Processors {
			p.Disabled = false
		}
	})
}

func TestParseStartParams(t *testing.T) {
	resetProcessors(t)
	dir := filepath.ToSlash(t.TempDir())
	cfgPath := filepath.Join(dir, "obj-decimate.yaml")
	writeFile(t, cfgPath, "simplify:\n  target_faces: 500\noutput:\n  suffix: .low\n")
	a, b := filepath.Join(dir, "a.obj"), filepath.Join(dir, "b.obj")
	writeFile(t, a, "")
	writeFile(t, b, "")

	sp, version, err := parseStartParams([]string{
		"-config", cfgPath, "-in", a, "-percentage", "0.5", "-workers", "3", "-no-merge", "-quiet", b,
	})
	require.NoError(t, err)
	require.False(t, version)
	require.Equal(t, []string{cleanPath(a), cleanPath(b)}, sp.Inputs)
	require.True(t, sp.Quiet)
	require.True(t, Processors[0].Disabled)
	require.False(t, Processors[1].Disabled)

	cfg := sp.Config
	require.Equal(t, string(decimate.Percentage), cfg.Simplify.Method)
	require.Equal(t, 0.5, cfg.Simplify.PercentageReduction)
	require.Equal(t, 500, cfg.Simplify.TargetFaces)
	require.Equal(t, ".low", cfg.Output.Suffix)
	require.Equal(t, 3, cfg.Jobs.Workers)
}

func TestParseStartParamsDefaults(t *testing.T) {
	resetProcessors(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "empty.yaml")
	writeFile(t, cfgPath, "")
	in := filepath.Join(dir, "a.obj")
	writeFile(t, in, "")

	sp, _, err := parseStartParams([]string{"-config", cfgPath, in})
	require.NoError(t, err)
	require.Equal(t, runtime.NumCPU(), sp.Config.Jobs.Workers)
	require.Equal(t, string(decimate.Absolute), sp.Config.Simplify.Method)
	require.Empty(t, sp.Output)
}

func TestParseStartParamsErrors(t *testing.T) {
	resetProcessors(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "empty.yaml")
	writeFile(t, cfgPath, "")
	a, b := filepath.Join(dir, "a.obj"), filepath.Join(dir, "b.obj")
	writeFile(t, a, "")
	writeFile(t, b, "")

	_, version, err := parseStartParams([]string{"-version"})
	require.NoError(t, err)
	require.True(t, version)

	_, _, err = parseStartParams([]string{"-help"})
	require.True(t, errors.Is(err, flag.ErrHelp))

	for _, tc := range []struct {
		name string
		args []string
	}{
		{"no input", []string{"-config", cfgPath}},
		{"missing input", []string{"-config", cfgPath, filepath.Join(dir, "missing.obj")}},
		{"stdout with many", []string{"-config", cfgPath, "-stdout", a, b}},
		{"gzip", []string{"-config", cfgPath, "-gzip", "12", a}},
		{"percentage", []string{"-config", cfgPath, "-percentage", "1.5", a}},
		{"config file", []string{"-config", filepath.Join(dir, "missing.yaml"), a}},
		{"unknown flag", []string{"-epsilon", "1", a}},
	} {
		_, _, err := parseStartParams(tc.args)
		require.Error(t, err, tc.name)
	}

	_, _, err = parseStartParams([]string{"-config", cfgPath, "-gzip", "12", a})
	var cfgErr *decimate.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "gzip", cfgErr.Option)
}

func TestOutputPath(t *testing.T) {
	dir := filepath.ToSlash(t.TempDir())

	for _, tc := range []struct {
		input, out string
		multiple   bool
		want       string
	}{
		{"/data/model.obj", "", false, "/data/model.decimated.obj"},
		{"/data/model.obj.gz", "", false, "/data/model.obj.decimated.gz"},
		{"/data.v2/model", "", false, "/data.v2/model.decimated"},
		{"/data/model.obj", "/other/low.obj", false, "/other/low.obj"},
		{"/data/model.obj", dir, false, dir + "/model.obj"},
		{"/data/a.obj", dir, true, dir + "/a.obj"},
	} {
		got, err := outputPath(tc.input, tc.out, ".decimated", tc.multiple)
		require.NoError(t, err, tc.input)
		require.Equal(t, tc.want, got)
	}

	_, err := outputPath("/data/a.obj", "/data/a.obj", ".decimated", false)
	require.Error(t, err)
	_, err = outputPath("/data/a.obj", "/data/out.obj", ".decimated", true)
	require.Error(t, err)
	_, err = outputPath(dir+"/a.obj", dir, ".decimated", false)
	require.Error(t, err)
}

func TestRun(t *testing.T) {
	resetProcessors(t)
	prev := StartParams
	t.Cleanup(func() { StartParams = prev })

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "empty.yaml")
	writeFile(t, cfgPath, "")
	in := filepath.Join(dir, "grid.obj")
	writeFile(t, in, gridOBJ(10, 10, "", false))

	require.Equal(t, 0, run([]string{"-version"}))
	require.Equal(t, 2, run([]string{"-config", cfgPath}))

	require.Equal(t, 0, run([]string{"-config", cfgPath, "-quiet", "-no-progress", "-percentage", "0.5", in}))
	require.FileExists(t, filepath.Join(dir, "grid.decimated.obj"))

	writeFile(t, in, "v 0 0 0\nf 1 2 3\n")
	require.Equal(t, 1, run([]string{"-config", cfgPath, "-quiet", "-no-progress", "-out", filepath.Join(dir, "broken.obj"), in}))
}
