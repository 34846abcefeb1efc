package objectfile

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/jonnenauha/obj-decimate/mesh"
)

// Layout remembers which object every descriptor face came from, so a
// decimated descriptor can be written back with the same objects, names and
// materials. Descriptor.Materials holds the object index.
type Layout struct {
	src       *OBJ
	smoothing []string // of the first face of every object
}

// ToDescriptor triangulates the faces of obj into a mesh descriptor. Vertex
// ids are the OBJ vertex indexes minus one. A triangle keeps its UVs only if
// all three corners declare one. Per vertex normals are taken from the first
// corner referencing each vertex, and kept only if every corner declares one.
// Indexes of obj must be resolved and in range, as the parser leaves them.
func ToDescriptor(obj *OBJ) (mesh.Descriptor, *Layout) {
	d := mesh.Descriptor{
		Positions: append([]mgl64.Vec3(nil), obj.Geometry.Vertices...),
	}
	layout := &Layout{src: obj, smoothing: make([]string, len(obj.Objects))}

	var (
		anyUV      = false
		allNormals = true
		normals    = make([]mgl64.Vec3, len(d.Positions))
		seen       = make([]bool, len(d.Positions))
	)
	for oi, child := range obj.Objects {
		for fi, f := range child.Faces {
			if fi == 0 {
				layout.smoothing[oi] = f.Smoothing
			}
			for _, tri := range f.Triangles() {
				face := make([]int, 3)
				var uvs []mgl64.Vec2
				hasUV := true
				for i, c := range tri {
					face[i] = c.Vertex - 1
					if c.UV == 0 {
						hasUV = false
					}
					if c.Normal == 0 {
						allNormals = false
					} else if v := c.Vertex - 1; v >= 0 && v < len(seen) && !seen[v] {
						seen[v] = true
						normals[v] = obj.Geometry.Normals[c.Normal-1]
					}
				}
				if hasUV {
					anyUV = true
					uvs = make([]mgl64.Vec2, 3)
					for i, c := range tri {
						uvs[i] = obj.Geometry.UVs[c.UV-1]
					}
				}
				d.Faces = append(d.Faces, face)
				d.UVs = append(d.UVs, uvs)
				d.Materials = append(d.Materials, oi)
			}
		}
	}
	if !anyUV {
		d.UVs = nil
	}
	if allNormals && len(d.Faces) > 0 {
		d.Normals = normals
	}
	return d, layout
}

// FromDescriptor builds an OBJ from d using the objects, comments and
// material libraries recorded in layout. UV values shared by several corners
// are written once. Objects left without faces are dropped.
func FromDescriptor(d mesh.Descriptor, layout *Layout) *OBJ {
	src := layout.src
	obj := NewOBJ()
	obj.Comments = append(obj.Comments, src.Comments...)
	obj.MaterialLibraries = append(obj.MaterialLibraries, src.MaterialLibraries...)

	obj.Geometry.Vertices = append(obj.Geometry.Vertices, d.Positions...)
	hasNormals := len(d.Normals) > 0
	if hasNormals {
		obj.Geometry.Normals = append(obj.Geometry.Normals, d.Normals...)
	}

	uvIndex := make(map[mgl64.Vec2]int)
	uv := func(v mgl64.Vec2) int {
		if i, ok := uvIndex[v]; ok {
			return i
		}
		obj.Geometry.UVs = append(obj.Geometry.UVs, v)
		uvIndex[v] = len(obj.Geometry.UVs)
		return uvIndex[v]
	}

	children := make([]*Object, len(src.Objects))
	for fi, face := range d.Faces {
		oi := 0
		if fi < len(d.Materials) {
			oi = d.Materials[fi]
		}
		if children[oi] == nil {
			t := src.Objects[oi]
			children[oi] = &Object{
				Type:     t.Type,
				Name:     t.Name,
				Material: t.Material,
				Comments: t.Comments,
				parent:   obj,
			}
		}
		f := &FaceData{Corners: make([]Corner, len(face))}
		for i, v := range face {
			c := Corner{Vertex: v + 1}
			if hasNormals {
				c.Normal = v + 1
			}
			if fi < len(d.UVs) && len(d.UVs[fi]) == len(face) {
				c.UV = uv(d.UVs[fi][i])
			}
			f.Corners[i] = c
		}
		child := children[oi]
		if len(child.Faces) == 0 {
			f.Smoothing = layout.smoothing[oi]
		}
		child.Faces = append(child.Faces, f)
	}
	for _, child := range children {
		if child != nil {
			obj.Objects = append(obj.Objects, child)
		}
	}
	return obj
}
