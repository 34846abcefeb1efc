package decimate_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/jonnenauha/obj-decimate/decimate"
	"github.com/jonnenauha/obj-decimate/internal/meshtest"
	"github.com/jonnenauha/obj-decimate/mesh"
)

func absolute(target int) decimate.Config {
	c := decimate.DefaultConfig()
	c.TargetFaces = target
	return c
}

func togglesOff(c decimate.Config) decimate.Config {
	c.PreserveBoundary = false
	c.OptimalPosition = false
	c.PreserveNormal = false
	c.PlanarSimplification = false
	c.PreClean = false
	return c
}

// requireValid checks the exported mesh references only existing vertices,
// has no repeated corner and carries three finite UVs per face when textured.
func requireValid(t *testing.T, d mesh.Descriptor) {
	t.Helper()
	for fi, f := range d.Faces {
		require.Len(t, f, 3)
		for _, v := range f {
			require.GreaterOrEqual(t, v, 0)
			require.Less(t, v, len(d.Positions))
		}
		require.True(t, f[0] != f[1] && f[1] != f[2] && f[0] != f[2], "face %d %v", fi, f)
		if d.UVs != nil {
			require.Len(t, d.UVs[fi], 3, "face %d", fi)
			for _, uv := range d.UVs[fi] {
				require.False(t, math.IsNaN(uv[0]) || math.IsInf(uv[0], 0) || math.IsNaN(uv[1]) || math.IsInf(uv[1], 0))
			}
		}
	}
}

func TestSimplifyCubeToTarget(t *testing.T) {
	d := meshtest.Cube(6, 3)
	require.Len(t, d.Positions, 218)

	out, err := decimate.Simplify(context.Background(), d, togglesOff(absolute(50)), nil)
	require.NoError(t, err)
	require.Equal(t, decimate.Completed, out.Result.Status)
	require.Equal(t, 50, out.Result.Faces)
	require.Len(t, out.Mesh.Faces, 50)
	require.Equal(t, len(d.Faces), out.Result.InitialFaces)
	require.False(t, out.Cleaned)
	require.Same(t, d.Texture, out.Mesh.Texture)
	require.Len(t, out.Mesh.UVs, 50)
	requireValid(t, out.Mesh)
}

func TestSimplifyPercentage(t *testing.T) {
	d := meshtest.Grid(25, 20)
	require.Len(t, d.Faces, 1000)

	cfg := decimate.DefaultConfig()
	cfg.Method = decimate.Percentage
	cfg.PercentageReduction = 0.9
	out, err := decimate.Simplify(context.Background(), d, cfg, nil)
	require.NoError(t, err)
	require.True(t, out.Cleaned)
	require.True(t, out.Clean.Empty())
	require.Equal(t, 100, out.Target)
	require.Equal(t, decimate.Completed, out.Result.Status)
	require.Len(t, out.Mesh.Faces, 100)
	requireValid(t, out.Mesh)
}

func TestSimplifyPreCleanRemovesDefects(t *testing.T) {
	d := meshtest.Cube(4, 3)
	faces := len(d.Faces)
	corner := d.Positions[0]
	for i := 0; i < 3; i++ {
		dup := len(d.Positions)
		d.Positions = append(d.Positions, corner)
		// redirect the next face still using vertex 0
	next:
		for _, f := range d.Faces {
			for c := range f {
				if f[c] == 0 {
					f[c] = dup
					break next
				}
			}
		}
	}
	d.Faces = append(d.Faces, []int{1, 2, 2})
	d.UVs = append(d.UVs, []mgl64.Vec2{{0, 0}, {1, 0}, {1, 0}})

	out, err := decimate.Simplify(context.Background(), d, absolute(10000), nil)
	require.NoError(t, err)
	require.True(t, out.Cleaned)
	require.Equal(t, 3, out.Clean.VerticesMerged)
	require.Equal(t, 1, out.Clean.DegenerateFaces)
	require.Greater(t, out.Clean.FacesRemoved(), 0)
	require.Equal(t, faces, out.Clean.FacesAfter)
	require.Equal(t, decimate.Completed, out.Result.Status)
	require.Zero(t, out.Result.Collapses)
	require.Len(t, out.Mesh.Positions, len(d.Positions)-3)
	requireValid(t, out.Mesh)
}

func TestSimplifyTetrahedronIsUnreachable(t *testing.T) {
	d := meshtest.Tetrahedron()
	out, err := decimate.Simplify(context.Background(), d, togglesOff(absolute(2)), nil)
	require.NoError(t, err)
	require.Equal(t, decimate.TargetUnreachable, out.Result.Status)
	require.Equal(t, 4, out.Result.Faces)
	require.Zero(t, out.Result.Collapses)
	require.Equal(t, d, out.Mesh)
}

func TestSimplifyTargetAboveFaceCount(t *testing.T) {
	d := meshtest.WithNormals(meshtest.Cube(3, 3))
	cfg := absolute(len(d.Faces))
	cfg.PreClean = false
	out, err := decimate.Simplify(context.Background(), d, cfg, nil)
	require.NoError(t, err)
	require.Equal(t, decimate.Completed, out.Result.Status)
	require.Zero(t, out.Result.Collapses)
	require.Equal(t, d, out.Mesh)
}

func TestSimplifyIsDeterministic(t *testing.T) {
	d := meshtest.Perturb(meshtest.Cube(6, 3), 0.01, 5)
	first, err := decimate.Simplify(context.Background(), d, absolute(100), nil)
	require.NoError(t, err)
	second, err := decimate.Simplify(context.Background(), d, absolute(100), nil)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestSimplifyRandomMeshes(t *testing.T) {
	for seed := int64(1); seed <= 4; seed++ {
		for _, target := range []int{30, 80, 150} {
			d := meshtest.Perturb(meshtest.Cube(5, 3), 0.015, seed)
			out, err := decimate.Simplify(context.Background(), d, absolute(target), nil)
			require.NoError(t, err)
			require.LessOrEqual(t, out.Result.Faces, len(d.Faces))
			if out.Result.Status == decimate.Completed {
				require.Equal(t, target, out.Result.Faces, "seed %d target %d", seed, target)
			} else {
				require.Equal(t, decimate.TargetUnreachable, out.Result.Status)
			}
			requireValid(t, out.Mesh)
		}
	}
}

func TestSimplifyUntexturedMesh(t *testing.T) {
	d := meshtest.Cube(4, 3)
	d.UVs = nil
	d.Texture = nil
	out, err := decimate.Simplify(context.Background(), d, absolute(40), nil)
	require.NoError(t, err)
	require.Equal(t, decimate.Completed, out.Result.Status)
	require.Nil(t, out.Mesh.UVs)
	require.Nil(t, out.Mesh.Texture)
	requireValid(t, out.Mesh)
}

func TestSimplifyErrors(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		cfg := decimate.DefaultConfig()
		cfg.Method = decimate.Percentage
		cfg.PercentageReduction = 1.5
		_, err := decimate.Simplify(context.Background(), meshtest.Tetrahedron(), cfg, nil)
		var cfgErr *decimate.ConfigError
		require.True(t, errors.As(err, &cfgErr))
		require.Equal(t, "percentage_reduction", cfgErr.Option)
	})
	t.Run("malformed", func(t *testing.T) {
		d := meshtest.Tetrahedron()
		d.Faces = [][]int{{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 99}}
		_, err := decimate.Simplify(context.Background(), d, absolute(2), nil)
		var malformed *mesh.MalformedMeshError
		require.True(t, errors.As(err, &malformed))
		require.Equal(t, 3, malformed.Face)
	})
	t.Run("missing uvs", func(t *testing.T) {
		d := meshtest.Cube(3, 3)
		d.UVs[5] = nil
		_, err := decimate.Simplify(context.Background(), d, absolute(10000), nil)
		var missing *mesh.MissingTextureCoordinatesError
		require.True(t, errors.As(err, &missing))
		require.Equal(t, []int{5}, missing.Faces)
	})
	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := decimate.Simplify(ctx, meshtest.Cube(6, 3), absolute(50), nil)
		require.True(t, errors.Is(err, context.Canceled))
	})
}

func TestSimplifyReportsProgress(t *testing.T) {
	var calls []decimate.Progress
	out, err := decimate.Simplify(context.Background(), meshtest.Cube(12, 3), absolute(200), func(p decimate.Progress) {
		calls = append(calls, p)
	})
	require.NoError(t, err)
	require.NotEmpty(t, calls)
	last := calls[len(calls)-1]
	require.Equal(t, out.Result.Faces, last.Faces)
	require.Equal(t, out.Result.Collapses, last.Collapses)
	require.Equal(t, 200, last.Target)
	for i := 1; i < len(calls); i++ {
		require.GreaterOrEqual(t, calls[i].Collapses, calls[i-1].Collapses)
	}
}

func TestDecimatorStatus(t *testing.T) {
	m, err := mesh.Load(meshtest.Cube(3, 3))
	require.NoError(t, err)
	_, err = decimate.New(m, decimate.Options{TargetFaces: -1})
	var cfgErr *decimate.ConfigError
	require.True(t, errors.As(err, &cfgErr))

	d, err := decimate.New(m, decimate.Options{TargetFaces: 30})
	require.NoError(t, err)
	require.Equal(t, decimate.Ready, d.Status())
	res, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, decimate.Completed, d.Status())
	require.True(t, d.Status().Terminal())

	// terminal runs return the same result without touching the mesh
	again, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, res, again)
	require.Equal(t, "TargetUnreachable", decimate.TargetUnreachable.String())
}
