package mesh

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

const stlTriangleSize = 50

// stlHeader defines the STL file header.
type stlHeader struct {
	_     [80]uint8 // Header
	Count uint32    // Number of triangles
}

type stlTriangle struct {
	Normal, Vertex1, Vertex2, Vertex3 [3]float32
	_                                 uint16 // Attribute byte count
}

func (t *stlTriangle) put(b []byte) {
	_ = b[stlTriangleSize-1]
	for i, v := range [...][3]float32{t.Normal, t.Vertex1, t.Vertex2, t.Vertex3} {
		for j, f := range v {
			binary.LittleEndian.PutUint32(b[(i*3+j)*4:], math.Float32bits(f))
		}
	}
	b[48], b[49] = 0, 0
}

// WriteSTL writes the side wall of m to w in binary STL format.
func WriteSTL(w io.Writer, m Mesh) error {
	model := m.Triangles()
	if len(model) == 0 {
		return errors.New("empty triangle slice")
	}
	header := stlHeader{Count: uint32(len(model))}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}
	var (
		d stlTriangle
		b [stlTriangleSize]byte
	)
	for _, t := range model {
		n := t.Normal()
		d.Normal = [3]float32{float32(n.X), float32(n.Y), float32(n.Z)}
		d.Vertex1 = [3]float32{float32(t[0].X), float32(t[0].Y), float32(t[0].Z)}
		d.Vertex2 = [3]float32{float32(t[1].X), float32(t[1].Y), float32(t[1].Z)}
		d.Vertex3 = [3]float32{float32(t[2].X), float32(t[2].Y), float32(t[2].Z)}
		d.put(b[:])
		if _, err := w.Write(b[:]); err != nil {
			return err
		}
	}
	return nil
}
