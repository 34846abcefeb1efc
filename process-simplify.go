package main

import (
	"github.com/jonnenauha/obj-decimate/decimate"
	"github.com/jonnenauha/obj-decimate/objectfile"
)

type Simplify struct{}

func (processor Simplify) Name() string {
	return "Simplify"
}

func (processor Simplify) Desc() string {
	return "Reduces the face count with texture preserving quadric edge collapse. Faces are triangulated."
}

func (processor Simplify) Execute(j *job) error {
	texture := j.resolveTexture(j.cfg.Texture)

	d, layout := objectfile.ToDescriptor(j.obj)
	d.Texture = texture
	if d.UVs == nil {
		j.logf("  - No texture coordinates, simplifying geometry only")
	}

	out, err := decimate.Simplify(j.ctx, d, j.cfg.Simplify.Decimate(), j.progress)
	if err != nil {
		return err
	}
	j.simplified = out

	if out.Cleaned {
		c := out.Clean
		j.logf("  - Pre-clean merged %d vertices, removed %d duplicate and %d degenerate faces, %d unreferenced vertices",
			c.VerticesMerged, c.DuplicateFaces, c.DegenerateFaces, c.UnreferencedVertices)
	}
	res := out.Result
	j.logf("  - %s %s -> %s faces, target %s, %s collapses", res.Status,
		formatInt(res.InitialFaces), formatInt(res.Faces), formatInt(out.Target), formatInt(res.Collapses))
	if res.Status == decimate.TargetUnreachable {
		j.logf("  - [WARN] no valid collapse left above the target of %s faces", formatInt(out.Target))
	}

	j.obj = objectfile.FromDescriptor(out.Mesh, layout)
	return nil
}
