package main

import (
	"strings"

	"github.com/jonnenauha/obj-decimate/objectfile"
)

type Merge struct{}

type merger struct {
	Material string
	Objects  []*objectfile.Object
}

func (processor Merge) Name() string {
	return "Merge"
}

func (processor Merge) Desc() string {
	return "Merges objects and groups with the same material into a single mesh."
}

func (processor Merge) Execute(j *job) error {
	obj := j.obj

	// a slice keeps the first seen order, same input gives the same output
	materials := make([]*merger, 0)

	for _, child := range obj.Objects {
		if len(child.Faces) == 0 {
			continue
		}
		found := false
		for _, m := range materials {
			if m.Material == child.Material {
				m.Objects = append(m.Objects, child)
				found = true
				break
			}
		}
		if !found {
			materials = append(materials, &merger{
				Material: child.Material,
				Objects:  []*objectfile.Object{child},
			})
		}
	}
	j.logf("  - Found %d unique materials", len(materials))

	mergeName := func(objects []*objectfile.Object) string {
		parts := []string{}
		for _, child := range objects {
			if len(child.Name) > 0 {
				parts = append(parts, child.Name)
			}
		}
		if len(parts) == 0 {
			parts = append(parts, "Unnamed")
		}
		return strings.Join(parts, " ")
	}

	obj.Objects = nil
	for _, merger := range materials {
		src := merger.Objects[0]
		child, err := obj.CreateObject(src.Type, mergeName(merger.Objects), merger.Material)
		if err != nil {
			return err
		}
		for _, original := range merger.Objects {
			child.Faces = append(child.Faces, original.Faces...)
			child.Comments = append(child.Comments, original.Comments...)
		}
	}
	return nil
}
