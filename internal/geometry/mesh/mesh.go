package mesh

import (
	"errors"
	"fmt"
	"math"

	"Taper/internal/geometry"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultResolution is the number of angular samples per ring.
const DefaultResolution = 50

var ErrResolution = errors.New("angular resolution must be at least 3")

// Mesh is the side wall of a frustum sampled as two rings. Rings[0] lies at z = 0
// with the large radius and Rings[1] at z = Height with the small one. The first and
// last point of each ring coincide, so the wall closes.
type Mesh struct {
	BottomRadius float64     `json:"bottom_radius_mm"`
	TopRadius    float64     `json:"top_radius_mm"`
	Height       float64     `json:"height_mm"`
	Resolution   int         `json:"resolution"`
	Rings        [2][]r3.Vec `json:"rings"`
}

// Grid is the meshgrid form of a Mesh: row i holds ring i.
type Grid struct {
	X [][]float64 `json:"x"`
	Y [][]float64 `json:"y"`
	Z [][]float64 `json:"z"`
}

type Triangle [3]r3.Vec

// Normal returns the unit normal given by the right hand rule.
func (t Triangle) Normal() r3.Vec {
	n := r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
	if l := r3.Norm(n); l > 0 {
		return r3.Scale(1/l, n)
	}
	return n
}

// Build samples the frustum with large diameter D at z = 0 and small diameter d at z = L.
// A zero resolution selects DefaultResolution.
func Build(D, d, L float64, resolution int) (Mesh, error) {
	if resolution == 0 {
		resolution = DefaultResolution
	}
	if resolution < 3 {
		return Mesh{}, fmt.Errorf("%w: got %d", ErrResolution, resolution)
	}
	if L == 0 {
		return Mesh{}, fmt.Errorf("%w: height is zero", geometry.ErrDivisionByZero)
	}
	for _, v := range [...]float64{D, d, L} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return Mesh{}, fmt.Errorf("%w: size %v", geometry.ErrNonPhysical, v)
		}
	}

	m := Mesh{
		BottomRadius: D / 2,
		TopRadius:    d / 2,
		Height:       L,
		Resolution:   resolution,
	}
	for ring, z := range [2]float64{0, L} {
		r := m.radiusAt(z)
		pts := make([]r3.Vec, resolution)
		for i := range pts {
			theta := 2 * math.Pi * float64(i) / float64(resolution-1)
			pts[i] = r3.Vec{X: r * math.Cos(theta), Y: r * math.Sin(theta), Z: z}
		}
		m.Rings[ring] = pts
	}
	return m, nil
}

// FromSolution builds the mesh of a solved cone.
func FromSolution(s geometry.Solution, resolution int) (Mesh, error) {
	return Build(s.LargeDiameter, s.SmallDiameter, s.Length, resolution)
}

func (m Mesh) radiusAt(z float64) float64 {
	return m.BottomRadius + (m.TopRadius-m.BottomRadius)*(z/m.Height)
}

func (m Mesh) Grid() Grid {
	var g Grid
	for _, ring := range m.Rings {
		x := make([]float64, len(ring))
		y := make([]float64, len(ring))
		z := make([]float64, len(ring))
		for i, p := range ring {
			x[i], y[i], z[i] = p.X, p.Y, p.Z
		}
		g.X = append(g.X, x)
		g.Y = append(g.Y, y)
		g.Z = append(g.Z, z)
	}
	return g
}

// Triangles splits the ruled surface between the rings into 2(n-1) triangles with
// normals pointing away from the axis, or n-1 when the top ring collapses onto the
// apex. No end caps are produced.
func (m Mesh) Triangles() []Triangle {
	bottom, top := m.Rings[0], m.Rings[1]
	if len(bottom) < 2 || len(bottom) != len(top) {
		return nil
	}
	tris := make([]Triangle, 0, 2*(len(bottom)-1))
	for i := 0; i < len(bottom)-1; i++ {
		b0, b1 := bottom[i], bottom[i+1]
		t0, t1 := top[i], top[i+1]
		tris = append(tris, Triangle{b0, b1, t1})
		if m.TopRadius != 0 {
			tris = append(tris, Triangle{b0, t1, t0})
		}
	}
	return tris
}
