// Package config handles loading the obj-decimate configuration.
package config

import (
	"fmt"

	"github.com/jonnenauha/obj-decimate/decimate"
	"github.com/jonnenauha/obj-decimate/internal/logger"
)

// Config holds all settings.
type Config struct {
	Simplify SimplifyConfig `yaml:"simplify"`
	Texture  TextureConfig  `yaml:"texture"`
	Output   OutputConfig   `yaml:"output"`
	Jobs     JobsConfig     `yaml:"jobs"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SimplifyConfig holds the decimation options.
type SimplifyConfig struct {
	Method               string  `yaml:"simplify_method"`
	TargetFaces          int     `yaml:"target_faces"`
	PercentageReduction  float64 `yaml:"percentage_reduction"`
	QualityThreshold     float64 `yaml:"quality_threshold"`
	TextureWeight        float64 `yaml:"texture_weight"`
	BoundaryWeight       float64 `yaml:"boundary_weight"`
	PreserveBoundary     bool    `yaml:"preserve_boundary"`
	OptimalPosition      bool    `yaml:"optimal_position"`
	PreserveNormal       bool    `yaml:"preserve_normal"`
	PlanarSimplification bool    `yaml:"planar_simplification"`
	PreClean             bool    `yaml:"pre_clean"`
	MergeDistanceRatio   float64 `yaml:"merge_distance_ratio"`
}

// TextureConfig holds the texture size used to measure UV stretch in pixels
// when the image referenced by the material cannot be read.
type TextureConfig struct {
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	Probe  bool `yaml:"probe"` // read the image header for its size
}

// OutputConfig holds output file settings.
type OutputConfig struct {
	Gzip   int    `yaml:"gzip"`   // 0 disables, 1-9 compression level
	Suffix string `yaml:"suffix"` // appended to the input name when no output is given
}

// JobsConfig holds batch settings.
type JobsConfig struct {
	Workers int `yaml:"workers"` // 0 uses one worker per CPU
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	d := decimate.DefaultConfig()
	return &Config{
		Simplify: SimplifyConfig{
			Method:               string(d.Method),
			TargetFaces:          d.TargetFaces,
			PercentageReduction:  d.PercentageReduction,
			QualityThreshold:     d.QualityThreshold,
			TextureWeight:        d.TextureWeight,
			BoundaryWeight:       d.BoundaryWeight,
			PreserveBoundary:     d.PreserveBoundary,
			OptimalPosition:      d.OptimalPosition,
			PreserveNormal:       d.PreserveNormal,
			PlanarSimplification: d.PlanarSimplification,
			PreClean:             d.PreClean,
			MergeDistanceRatio:   d.MergeDistanceRatio,
		},
		Texture: TextureConfig{
			Width:  1024,
			Height: 1024,
			Probe:  true,
		},
		Output: OutputConfig{
			Gzip:   0,
			Suffix: ".decimated",
		},
		Jobs: JobsConfig{
			Workers: 0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Decimate returns the simplify section as decimate options.
func (c *SimplifyConfig) Decimate() decimate.Config {
	return decimate.Config{
		Method:               decimate.Method(c.Method),
		TargetFaces:          c.TargetFaces,
		PercentageReduction:  c.PercentageReduction,
		QualityThreshold:     c.QualityThreshold,
		TextureWeight:        c.TextureWeight,
		BoundaryWeight:       c.BoundaryWeight,
		PreserveBoundary:     c.PreserveBoundary,
		OptimalPosition:      c.OptimalPosition,
		PreserveNormal:       c.PreserveNormal,
		PlanarSimplification: c.PlanarSimplification,
		PreClean:             c.PreClean,
		MergeDistanceRatio:   c.MergeDistanceRatio,
	}
}

// Validate checks every section. Out of range values are reported as
// *decimate.ConfigError.
func (c *Config) Validate() error {
	if err := c.Simplify.Decimate().Validate(); err != nil {
		return err
	}
	if c.Texture.Width < 0 || c.Texture.Height < 0 {
		return &decimate.ConfigError{Option: "texture", Reason: fmt.Sprintf("size must not be negative, given %dx%d", c.Texture.Width, c.Texture.Height)}
	}
	if c.Output.Gzip < 0 || c.Output.Gzip > 9 {
		return &decimate.ConfigError{Option: "gzip", Reason: fmt.Sprintf("must be in [0, 9], given %d", c.Output.Gzip)}
	}
	if c.Jobs.Workers < 0 {
		return &decimate.ConfigError{Option: "workers", Reason: fmt.Sprintf("must not be negative, given %d", c.Jobs.Workers)}
	}
	if !logger.ValidLevel(c.Logging.Level) {
		return &decimate.ConfigError{Option: "level", Reason: fmt.Sprintf("must be debug, info, warn or error, given %q", c.Logging.Level)}
	}
	return nil
}
