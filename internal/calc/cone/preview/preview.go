// Package preview rasterizes a frustum mesh into a shaded PNG thumbnail.
package preview

import (
	"errors"
	"image"
	"image/png"
	"io"

	"Taper/internal/geometry/mesh"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
)

const (
	DefaultWidth  = 640
	DefaultHeight = 480
	// MaxSize bounds each side of the output image.
	MaxSize = 1024

	scale = 2  // supersampling
	fovy  = 30 // vertical field of view in degrees
	near  = 1
	far   = 10
)

var ErrSize = errors.New("preview size out of range")

// Render draws the side wall of m with a phong shader and returns a width x height image.
func Render(m mesh.Mesh, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 || width > MaxSize || height > MaxSize {
		return nil, ErrSize
	}
	tris := m.Triangles()
	if len(tris) == 0 {
		return nil, errors.New("empty mesh")
	}
	ftris := make([]*fauxgl.Triangle, 0, len(tris))
	for _, t := range tris {
		ftris = append(ftris, fauxgl.NewTriangleForPoints(
			fauxgl.V(t[0].X, t[0].Y, t[0].Z),
			fauxgl.V(t[1].X, t[1].Y, t[1].Z),
			fauxgl.V(t[2].X, t[2].Y, t[2].Z),
		))
	}
	fm := fauxgl.NewTriangleMesh(ftris)

	var (
		eye    = fauxgl.V(2.5, -3, 2)                  // camera position
		center = fauxgl.V(0, 0, 0)                     // view center position
		up     = fauxgl.V(0, 0, 1)                     // lathe axis points up
		light  = fauxgl.V(-0.75, -1, 0.25).Normalize() // light direction
		color  = fauxgl.HexColor("#468966")            // object color
	)
	// fit mesh in a bi-unit cube centered at the origin
	fm.BiUnitCube()
	ctx := fauxgl.NewContext(width*scale, height*scale)
	ctx.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(width) / float64(height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, near, far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	ctx.Shader = shader
	ctx.DrawMesh(fm)
	// downsample image for antialiasing
	return resize.Resize(uint(width), uint(height), ctx.Image(), resize.Bilinear), nil
}

// WritePNG renders m and encodes the result as PNG.
func WritePNG(w io.Writer, m mesh.Mesh, width, height int) error {
	img, err := Render(m, width, height)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
