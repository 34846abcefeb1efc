package objectfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Material is the part of a newmtl block the decimator cares about.
type Material struct {
	Name string
	// DiffuseMap is the map_Kd texture path as written in the library.
	DiffuseMap string
}

// ParseMaterialLibrary reads the materials of an mtl file.
func ParseMaterialLibrary(r io.Reader) (map[string]*Material, error) {
	var (
		materials = make(map[string]*Material)
		current   *Material
		linenum   = 0
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		linenum++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "newmtl":
			if len(fields) < 2 {
				return nil, fmt.Errorf("line:%d newmtl without a name", linenum)
			}
			current = &Material{Name: strings.Join(fields[1:], " ")}
			materials[current.Name] = current
		case "map_Kd":
			if current == nil {
				return nil, fmt.Errorf("line:%d map_Kd before newmtl", linenum)
			}
			// options like -s 1 1 1 come first, the path is last
			if len(fields) > 1 {
				current.DiffuseMap = fields[len(fields)-1]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return materials, nil
}

// DiffuseTexture returns the path of the first diffuse texture used by a face
// carrying object of obj, resolved against dir, the directory of the OBJ
// file. It returns "" when no material library declares one.
func DiffuseTexture(obj *OBJ, dir string) (string, error) {
	materials := make(map[string]*Material)
	for _, lib := range obj.MaterialLibraries {
		f, err := os.Open(filepath.Join(dir, lib))
		if err != nil {
			return "", err
		}
		parsed, err := ParseMaterialLibrary(f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("%s: %w", lib, err)
		}
		for name, m := range parsed {
			if _, ok := materials[name]; !ok {
				materials[name] = m
			}
		}
	}
	for _, child := range obj.Objects {
		if len(child.Faces) == 0 {
			continue
		}
		if m, ok := materials[child.Material]; ok && m.DiffuseMap != "" {
			return filepath.Join(dir, filepath.FromSlash(m.DiffuseMap)), nil
		}
	}
	return "", nil
}
