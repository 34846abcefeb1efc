package objectfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// http://www.martinreddy.net/gfx/3d/OBJ.spec

// Type is the keyword that starts an OBJ line.
type Type int

const (
	Unknown Type = iota

	Comment        // #
	MtlLib         // mtllib
	MtlUse         // usemtl
	ChildGroup     // g
	ChildObject    // o
	SmoothingGroup // s
	Vertex         // v
	Normal         // vn
	UV             // vt
	Param          // vp
	Face           // f
	Line           // l
	Point          // p
	Curve          // curv
	Curve2         // curv2
	Surface        // surf
)

var keywords = [...]string{
	Comment:        "#",
	MtlLib:         "mtllib",
	MtlUse:         "usemtl",
	ChildGroup:     "g",
	ChildObject:    "o",
	SmoothingGroup: "s",
	Vertex:         "v",
	Normal:         "vn",
	UV:             "vt",
	Param:          "vp",
	Face:           "f",
	Line:           "l",
	Point:          "p",
	Curve:          "curv",
	Curve2:         "curv2",
	Surface:        "surf",
}

func (t Type) String() string {
	if t > Unknown && int(t) < len(keywords) {
		return keywords[t]
	}
	return ""
}

// Name is the plural used in comments and stats.
func (t Type) Name() string {
	switch t {
	case Vertex:
		return "vertices"
	case Normal:
		return "normals"
	case UV:
		return "uvs"
	case Param:
		return "params"
	case ChildGroup:
		return "group"
	case ChildObject:
		return "object"
	}
	return ""
}

// Geometry reports whether t declares a geometry value.
func (t Type) Geometry() bool {
	return t == Vertex || t == Normal || t == UV || t == Param
}

func TypeFromString(str string) Type {
	for t, kw := range keywords {
		if kw != "" && kw == str {
			return Type(t)
		}
	}
	return Unknown
}

// ObjStats

type ObjStats struct {
	Objects   int
	Groups    int
	Faces     int
	Triangles int // faces after fan triangulation
	Geometry  GeometryStats
}

// OBJ

type OBJ struct {
	Geometry          *Geometry
	MaterialLibraries []string

	Objects  []*Object
	Comments []string

	// lines, points and free-form elements skipped while parsing
	Skipped int
}

func NewOBJ() *OBJ {
	return &OBJ{
		Geometry: &Geometry{},
	}
}

func (o *OBJ) ObjectWithType(t Type) (objects []*Object) {
	for _, child := range o.Objects {
		if child.Type == t {
			objects = append(objects, child)
		}
	}
	return objects
}

// CreateObject appends a new o or g child. An empty name is generated from
// the type and the child count.
func (o *OBJ) CreateObject(t Type, name, material string) (*Object, error) {
	if t != ChildObject && t != ChildGroup {
		return nil, fmt.Errorf("invalid object type %s", t)
	}
	child := &Object{
		Type:     t,
		Name:     name,
		Material: material,
		parent:   o,
	}
	if child.Name == "" {
		child.Name = fmt.Sprintf("%s_%d", t.Name(), len(o.ObjectWithType(t))+1)
	}
	o.Objects = append(o.Objects, child)
	return child, nil
}

func (o *OBJ) Stats() ObjStats {
	stats := ObjStats{
		Objects: len(o.ObjectWithType(ChildObject)),
		Groups:  len(o.ObjectWithType(ChildGroup)),
	}
	for _, child := range o.Objects {
		stats.Faces += len(child.Faces)
		for _, f := range child.Faces {
			stats.Triangles += len(f.Corners) - 2
		}
	}
	if o.Geometry != nil {
		stats.Geometry = o.Geometry.Stats()
	}
	return stats
}

// Object

type Object struct {
	Type     Type
	Name     string
	Material string
	Faces    []*FaceData
	Comments []string

	parent *OBJ
}

// ReadFace parses the value of an f line into this object.
//
// If the parent OBJ is non nil, negative index references are converted
// into absolute indexes and checked against the geometry declared so far.
func (o *Object) ReadFace(value string, strict bool) (*FaceData, error) {
	f, err := ParseFace(value, strict)
	if err != nil {
		return nil, err
	}
	if o.parent != nil {
		if err := o.parent.Geometry.resolve(f); err != nil {
			return nil, err
		}
	}
	o.Faces = append(o.Faces, f)
	return f, nil
}

// Corner is one v/vt/vn reference of a face. OBJ indexes start from 1, zero
// means the reference was not declared.
type Corner struct {
	Vertex int
	UV     int
	Normal int
}

func (c Corner) String(hasUV, hasNormal bool) string {
	out := strconv.Itoa(c.Vertex)
	if hasUV || hasNormal {
		out += "/"
		if c.UV != 0 {
			out += strconv.Itoa(c.UV)
		}
	}
	if hasNormal {
		out += "/"
		if c.Normal != 0 {
			out += strconv.Itoa(c.Normal)
		}
	}
	return out
}

// FaceData is one polygon.
type FaceData struct {
	Corners []Corner
	// smoothing group declared right before this face, empty if none
	Smoothing string
}

// ParseFace parses "v/vt/vn ..." corner lists. Faces need at least three
// corners.
func ParseFace(str string, strict bool) (*FaceData, error) {
	f := &FaceData{}
	for ci, part := range strings.Fields(str) {
		var c Corner
		for pi, datapart := range strings.Split(part, "/") {
			// can be empty eg. "f 1//1 2//2 3//3"
			if len(datapart) == 0 {
				continue
			}
			value, err := strconv.Atoi(datapart)
			if err != nil {
				return nil, fmt.Errorf("invalid face index %q in %q: %w", datapart, str, err)
			}
			switch pi {
			case 0:
				c.Vertex = value
			case 1:
				c.UV = value
			case 2:
				c.Normal = value
			default:
				if strict {
					return nil, fmt.Errorf("invalid face corner data %d.%d in %q", ci, pi, str)
				}
			}
		}
		if c.Vertex == 0 {
			return nil, fmt.Errorf("face corner %d without vertex in %q", ci, str)
		}
		f.Corners = append(f.Corners, c)
	}
	if len(f.Corners) < 3 {
		return nil, fmt.Errorf("face needs at least 3 corners, found %d in %q", len(f.Corners), str)
	}
	return f, nil
}

func (f *FaceData) String() string {
	hasUV, hasNormal := false, false
	for _, c := range f.Corners {
		hasUV = hasUV || c.UV != 0
		hasNormal = hasNormal || c.Normal != 0
	}
	parts := make([]string, len(f.Corners))
	for i, c := range f.Corners {
		parts[i] = c.String(hasUV, hasNormal)
	}
	return strings.Join(parts, " ")
}

// Triangles fans the polygon around its first corner.
func (f *FaceData) Triangles() [][3]Corner {
	out := make([][3]Corner, 0, len(f.Corners)-2)
	for i := 1; i+1 < len(f.Corners); i++ {
		out = append(out, [3]Corner{f.Corners[0], f.Corners[i], f.Corners[i+1]})
	}
	return out
}

// Geometry

type Geometry struct {
	Vertices []mgl64.Vec3 // v    x y z [w]
	Normals  []mgl64.Vec3 // vn   i j k
	UVs      []mgl64.Vec2 // vt   u [v [w]]
	Params   int          // vp values are counted, not kept
}

// ReadValue parses the value of a v, vn, vt or vp line. A vertex w component
// other than 1 is divided out.
func (g *Geometry) ReadValue(t Type, value string, strict bool) error {
	var (
		nums  [4]float64
		count int
	)
	nums[3] = 1
	for _, part := range strings.Fields(value) {
		if count == 4 {
			if strict {
				return fmt.Errorf("found invalid fifth component: %s %s", t, value)
			}
			break
		}
		num, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return fmt.Errorf("found invalid number from %q: %w", value, err)
		}
		// "-0" and "-0.000" are written back as 0
		if num == 0 {
			num = 0
		}
		nums[count] = num
		count++
	}
	if strict && count == 4 && t != Vertex {
		return fmt.Errorf("found invalid fourth component: %s %s", t, value)
	}

	switch t {
	case Vertex:
		if count < 3 {
			return fmt.Errorf("vertex needs 3 components, found %d in %q", count, value)
		}
		v := mgl64.Vec3{nums[0], nums[1], nums[2]}
		if w := nums[3]; w != 1 && w != 0 {
			v = v.Mul(1 / w)
		}
		g.Vertices = append(g.Vertices, v)
	case Normal:
		if count < 3 {
			return fmt.Errorf("normal needs 3 components, found %d in %q", count, value)
		}
		g.Normals = append(g.Normals, mgl64.Vec3{nums[0], nums[1], nums[2]})
	case UV:
		if count < 1 {
			return fmt.Errorf("uv needs at least 1 component in %q", value)
		}
		g.UVs = append(g.UVs, mgl64.Vec2{nums[0], nums[1]})
	case Param:
		g.Params++
	default:
		return fmt.Errorf("unknown geometry value type %d %s", t, t)
	}
	return nil
}

// resolve converts relative indexes of f to absolute ones and checks bounds.
func (g *Geometry) resolve(f *FaceData) error {
	stats := g.Stats()
	fix := func(index *int, declared int, t Type) error {
		if *index == 0 {
			return nil
		}
		// negative values are relative from the end of declared geometry
		if *index < 0 {
			*index += declared + 1
		}
		if *index <= 0 || *index > declared {
			return fmt.Errorf("%s index %d out of bounds, %d declared so far", t.Name(), *index, declared)
		}
		return nil
	}
	for i := range f.Corners {
		c := &f.Corners[i]
		if err := fix(&c.Vertex, stats.Vertices, Vertex); err != nil {
			return err
		}
		if err := fix(&c.UV, stats.UVs, UV); err != nil {
			return err
		}
		if err := fix(&c.Normal, stats.Normals, Normal); err != nil {
			return err
		}
	}
	return nil
}

func (g *Geometry) Stats() GeometryStats {
	return GeometryStats{
		Vertices: len(g.Vertices),
		Normals:  len(g.Normals),
		UVs:      len(g.UVs),
		Params:   g.Params,
	}
}

// GeometryStats

type GeometryStats struct {
	Vertices, Normals, UVs, Params int
}

func (gs GeometryStats) IsEmpty() bool {
	return gs.Vertices == 0 && gs.UVs == 0 && gs.Normals == 0 && gs.Params == 0
}

func (gs GeometryStats) Num(t Type) int {
	switch t {
	case Vertex:
		return gs.Vertices
	case UV:
		return gs.UVs
	case Normal:
		return gs.Normals
	case Param:
		return gs.Params
	default:
		return 0
	}
}

// FormatFloat writes the shortest representation that round trips.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// FormatVec3 formats a v or vn value.
func FormatVec3(v mgl64.Vec3) string {
	return FormatFloat(v[0]) + " " + FormatFloat(v[1]) + " " + FormatFloat(v[2])
}

// FormatVec2 formats a vt value.
func FormatVec2(v mgl64.Vec2) string {
	return FormatFloat(v[0]) + " " + FormatFloat(v[1])
}
