package mesh

// ReattachTexture associates m with the texture of the original mesh and
// checks that every live face still has three finite UV corners.
//
// A mesh without any UV data and without a texture is left untouched, there
// is no texture correspondence to preserve.
func ReattachTexture(m *Mesh, original *Texture) error {
	m.Texture = original
	if original == nil && !m.HasUV() {
		return nil
	}
	var missing []int
	for fi := range m.Faces {
		f := &m.Faces[fi]
		if f.Dead {
			continue
		}
		if !f.HasUV || !finite2(f.UV[0]) || !finite2(f.UV[1]) || !finite2(f.UV[2]) {
			missing = append(missing, fi)
		}
	}
	if len(missing) > 0 {
		return &MissingTextureCoordinatesError{Faces: missing}
	}
	return nil
}
