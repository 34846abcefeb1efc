package main

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonnenauha/obj-decimate/objectfile"
)

// Parser reads OBJ documents.
type Parser struct {
	// Name is given to the default object of files declaring faces before
	// any o or g.
	Name   string
	Strict bool

	ObjectsParsed int
	GroupsParsed  int
}

// ParseFile parses path, gunzipping it when it ends in .gz.
func (p *Parser) ParseFile(path string) (*objectfile.OBJ, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	var r io.Reader = f
	if fileExtension(path) == ".gz" {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, 0, err
		}
		defer gz.Close()
		r = gz
	}
	return p.Parse(r)
}

// Parse returns the document and the number of lines read.
func (p *Parser) Parse(r io.Reader) (*objectfile.OBJ, int, error) {
	dest := objectfile.NewOBJ()
	geom := dest.Geometry

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	linenum := 0

	var (
		currentObject           *objectfile.Object
		currentObjectName       string
		currentObjectChildIndex int
		currentMaterial         string
		currentSmoothGroup      string
	)

	createObject := func(t objectfile.Type, name, material string) (*objectfile.Object, error) {
		child, err := dest.CreateObject(t, name, material)
		if err != nil {
			return nil, wrapErrorLine(err, linenum)
		}
		return child, nil
	}
	fakeObject := func(material string) (*objectfile.Object, error) {
		ot := objectfile.ChildObject
		if currentObject != nil {
			ot = currentObject.Type
		}
		currentObjectChildIndex++
		name := fmt.Sprintf("%s_%d", currentObjectName, currentObjectChildIndex)
		return createObject(ot, name, material)
	}

	for scanner.Scan() {
		linenum++

		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}
		t, value := parseLineType(line)

		switch t {

		case objectfile.Comment:
			if currentObject == nil && len(dest.MaterialLibraries) == 0 {
				dest.Comments = append(dest.Comments, value)
			} else if currentObject != nil {
				// element count comments are wrong once decimated
				if len(value) > 0 && !strContainsAny(value, []string{"vertices", "normals", "uvs", "texture coords", "polygons", "triangles", "faces"}, caseInsensitive) {
					currentObject.Comments = append(currentObject.Comments, value)
				}
			}

		case objectfile.MtlLib:
			dest.MaterialLibraries = append(dest.MaterialLibraries, value)

		case objectfile.Vertex, objectfile.Normal, objectfile.UV, objectfile.Param:
			if err := geom.ReadValue(t, value, p.Strict); err != nil {
				return nil, linenum, wrapErrorLine(err, linenum)
			}

		case objectfile.ChildObject, objectfile.ChildGroup:
			currentObjectName = value
			currentObjectChildIndex = 0
			// inherit currently declared material
			var err error
			if currentObject, err = createObject(t, currentObjectName, currentMaterial); err != nil {
				return nil, linenum, err
			}
			if t == objectfile.ChildObject {
				p.ObjectsParsed++
			} else {
				p.GroupsParsed++
			}

		case objectfile.MtlUse:
			// A material switch inside an object starts a new object, so every
			// object carries a single material. Merge joins them back by material.
			if currentObject != nil && len(currentObject.Faces) > 0 && currentObject.Material != value {
				var err error
				if currentObject, err = fakeObject(value); err != nil {
					return nil, linenum, err
				}
			}
			currentMaterial = value
			if currentObject != nil {
				currentObject.Material = currentMaterial
			}

		case objectfile.Face:
			// faces before any o/g go to an object named after the input
			if currentObject == nil {
				var err error
				if currentObject, err = createObject(objectfile.ChildObject, p.Name, currentMaterial); err != nil {
					return nil, linenum, err
				}
			}
			f, err := currentObject.ReadFace(value, p.Strict)
			if err != nil {
				return nil, linenum, wrapErrorLine(err, linenum)
			}
			// smoothing groups apply from the next face on
			if len(currentSmoothGroup) > 0 {
				f.Smoothing = currentSmoothGroup
				currentSmoothGroup = ""
			}

		case objectfile.SmoothingGroup:
			currentSmoothGroup = value

		case objectfile.Line, objectfile.Point, objectfile.Curve, objectfile.Curve2, objectfile.Surface:
			// only faces are decimated, other elements would reference
			// renumbered vertices
			if p.Strict {
				return nil, linenum, wrapErrorLine(fmt.Errorf("unsupported element %q", t), linenum)
			}
			dest.Skipped++

		default:
			if p.Strict {
				return nil, linenum, wrapErrorLine(fmt.Errorf("unsupported line %q", line), linenum)
			}
			dest.Skipped++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, linenum, err
	}
	return dest, linenum, nil
}

func wrapErrorLine(err error, linenum int) error {
	return fmt.Errorf("line:%d %w", linenum, err)
}

func parseLineType(str string) (objectfile.Type, string) {
	value := ""
	if i := strings.IndexAny(str, " \t"); i != -1 {
		value = strings.TrimSpace(str[i+1:])
		str = str[0:i]
	}
	// "#comment" without a space
	if len(str) > 1 && str[0] == '#' {
		return objectfile.Comment, strings.TrimSpace(str[1:] + " " + value)
	}
	return objectfile.TypeFromString(str), value
}
