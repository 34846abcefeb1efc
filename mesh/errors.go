package mesh

import (
	"fmt"
	"strconv"
	"strings"
)

// MalformedMeshError is returned by Load when the descriptor cannot be turned
// into a mesh. Face or Vertex is -1 when the problem is not tied to one.
type MalformedMeshError struct {
	Face   int
	Vertex int
	Reason string
}

func (e *MalformedMeshError) Error() string {
	switch {
	case e.Face >= 0 && e.Vertex >= 0:
		return fmt.Sprintf("malformed mesh: face %d vertex %d: %s", e.Face, e.Vertex, e.Reason)
	case e.Face >= 0:
		return fmt.Sprintf("malformed mesh: face %d: %s", e.Face, e.Reason)
	case e.Vertex >= 0:
		return fmt.Sprintf("malformed mesh: vertex %d: %s", e.Vertex, e.Reason)
	}
	return "malformed mesh: " + e.Reason
}

func malformed(face, vertex int, format string, args ...interface{}) *MalformedMeshError {
	return &MalformedMeshError{Face: face, Vertex: vertex, Reason: fmt.Sprintf(format, args...)}
}

// MissingTextureCoordinatesError lists the faces left without well formed UV
// corners after simplification. Ids are the input face indexes.
type MissingTextureCoordinatesError struct {
	Faces []int
}

const maxListedFaces = 16

func (e *MissingTextureCoordinatesError) Error() string {
	ids := make([]string, 0, maxListedFaces)
	for i, f := range e.Faces {
		if i == maxListedFaces {
			ids = append(ids, fmt.Sprintf("... %d more", len(e.Faces)-maxListedFaces))
			break
		}
		ids = append(ids, strconv.Itoa(f))
	}
	return fmt.Sprintf("missing texture coordinates on %d faces: %s", len(e.Faces), strings.Join(ids, " "))
}
