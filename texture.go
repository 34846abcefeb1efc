package main

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/jonnenauha/obj-decimate/internal/config"
	"github.com/jonnenauha/obj-decimate/mesh"
	"github.com/jonnenauha/obj-decimate/objectfile"
)

// probeTexture reads the pixel size from the image header.
func probeTexture(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// resolveTexture returns the texture handle carried through decimation, nil
// for documents without texture coordinates. The diffuse map of the first
// used material is the reference. Its size comes from the image when it can
// be read, the configured size otherwise.
func (j *job) resolveTexture(cfg config.TextureConfig) *mesh.Texture {
	if j.obj.Geometry.Stats().UVs == 0 {
		return nil
	}
	tex := &mesh.Texture{Ref: fileBasename(j.Input), Width: cfg.Width, Height: cfg.Height}

	path, err := objectfile.DiffuseTexture(j.obj, filepath.Dir(j.Input))
	if err != nil {
		j.logf("  - [WARN] reading material library: %s", err)
		return tex
	}
	if path == "" {
		return tex
	}
	tex.Ref = path
	if !cfg.Probe {
		return tex
	}
	w, h, err := probeTexture(path)
	if err != nil {
		j.logf("  - [WARN] texture %s: %s, using %dx%d", filepath.Base(path), err, cfg.Width, cfg.Height)
		return tex
	}
	tex.Width, tex.Height = w, h
	j.logf("  - Texture %s %dx%d", filepath.Base(path), w, h)
	return tex
}
