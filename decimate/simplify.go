package decimate

import (
	"context"

	"github.com/jonnenauha/obj-decimate/mesh"
)

// Output is the result of one Simplify job.
type Output struct {
	Mesh   mesh.Descriptor
	Result Result
	// Clean is zero when the pre-clean was disabled.
	Clean   mesh.CleanReport
	Cleaned bool
	Target  int
}

// Simplify loads d, optionally pre-cleans it, decimates it to the configured
// target and reattaches the texture of d. progress may be nil.
//
// The returned error is a *mesh.MalformedMeshError, a *ConfigError, a
// *mesh.MissingTextureCoordinatesError or a wrapped context error. An
// unreachable target is reported in Output.Result.Status.
func Simplify(ctx context.Context, d mesh.Descriptor, cfg Config, progress func(Progress)) (*Output, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m, err := mesh.Load(d)
	if err != nil {
		return nil, err
	}

	out := &Output{}
	if cfg.PreClean {
		out.Clean = mesh.Clean(m, mesh.MergeDistance(m, cfg.MergeDistanceRatio))
		out.Cleaned = true
	}

	// percentage mode resolves against the cleaned face count
	out.Target = ResolveTarget(cfg, m.FaceCount())
	opts := cfg.Options(out.Target)
	opts.Progress = progress

	dec, err := New(m, opts)
	if err != nil {
		return nil, err
	}
	if out.Result, err = dec.Run(ctx); err != nil {
		return nil, err
	}

	if err := mesh.ReattachTexture(m, d.Texture); err != nil {
		return nil, err
	}
	out.Mesh = m.Export()
	return out, nil
}
