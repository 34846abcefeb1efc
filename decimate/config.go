package decimate

import (
	"fmt"
	"math"
)

// Method selects how the target face count is expressed.
type Method string

const (
	Absolute   Method = "absolute"
	Percentage Method = "percentage"
)

// MinTargetFaces is the smallest face count percentage mode resolves to,
// the face count of the smallest closed mesh.
const MinTargetFaces = 4

// Config carries the options recognized by Simplify.
type Config struct {
	Method              Method
	TargetFaces         int
	PercentageReduction float64

	QualityThreshold float64
	TextureWeight    float64
	BoundaryWeight   float64

	PreserveBoundary     bool
	OptimalPosition      bool
	PreserveNormal       bool
	PlanarSimplification bool

	PreClean bool
	// merge distance of the pre-clean as a fraction of the bounding box diagonal
	MergeDistanceRatio float64
}

// DefaultConfig returns the recommended defaults.
func DefaultConfig() Config {
	return Config{
		Method:               Absolute,
		TargetFaces:          1000,
		PercentageReduction:  0.75,
		QualityThreshold:     0.5,
		TextureWeight:        1.0,
		BoundaryWeight:       1.0,
		PreserveBoundary:     true,
		OptimalPosition:      true,
		PreserveNormal:       true,
		PlanarSimplification: true,
		PreClean:             true,
		MergeDistanceRatio:   1e-5,
	}
}

// ConfigError reports an out of range option.
type ConfigError struct {
	Option string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid option %s: %s", e.Option, e.Reason)
}

// Validate checks every option for the selected method.
func (c Config) Validate() error {
	switch c.Method {
	case Absolute:
		if c.TargetFaces < 1 {
			return &ConfigError{Option: "target_faces", Reason: fmt.Sprintf("must be positive, given %d", c.TargetFaces)}
		}
	case Percentage:
		if !(c.PercentageReduction > 0 && c.PercentageReduction < 1) {
			return &ConfigError{Option: "percentage_reduction", Reason: fmt.Sprintf("must be in (0, 1), given %g", c.PercentageReduction)}
		}
	default:
		return &ConfigError{Option: "simplify_method", Reason: fmt.Sprintf("must be %q or %q, given %q", Absolute, Percentage, c.Method)}
	}
	for _, w := range []struct {
		name  string
		value float64
	}{
		{"quality_threshold", c.QualityThreshold},
		{"texture_weight", c.TextureWeight},
		{"boundary_weight", c.BoundaryWeight},
		{"merge_distance_ratio", c.MergeDistanceRatio},
	} {
		if !(w.value >= 0) || math.IsInf(w.value, 0) {
			return &ConfigError{Option: w.name, Reason: fmt.Sprintf("must be a finite value >= 0, given %g", w.value)}
		}
	}
	return nil
}

// ResolveTarget converts the configured target into an absolute face count
// for a mesh currently holding faces faces. Percentage mode rounds and never
// goes below MinTargetFaces.
func ResolveTarget(c Config, faces int) int {
	if c.Method == Percentage {
		target := int(math.Round(float64(faces) * (1 - c.PercentageReduction)))
		if target < MinTargetFaces {
			target = MinTargetFaces
		}
		return target
	}
	return c.TargetFaces
}

// Options returns the decimator options for an absolute target.
func (c Config) Options(target int) Options {
	return Options{
		TargetFaces:          target,
		QualityThreshold:     c.QualityThreshold,
		TextureWeight:        c.TextureWeight,
		BoundaryWeight:       c.BoundaryWeight,
		PreserveBoundary:     c.PreserveBoundary,
		OptimalPosition:      c.OptimalPosition,
		PreserveNormal:       c.PreserveNormal,
		PlanarSimplification: c.PlanarSimplification,
	}
}
