// Package render turns gouge bodies, strips and profiles into triangle
// meshes, STL files and images.
package render

import (
	"io"

	"github.com/soypat/gouge/surface"
)

// Renderer streams triangles. ReadTriangles returns io.EOF once every
// triangle has been read.
type Renderer interface {
	ReadTriangles(t []surface.Triangle) (int, error)
}

// RenderAll reads the full contents of a Renderer and returns the slice read.
// It does not return error on io.EOF, like the io.ReadAll implementation.
func RenderAll(r Renderer) ([]surface.Triangle, error) {
	var err error
	var nt int
	result := make([]surface.Triangle, 0, 1<<12)
	buf := make([]surface.Triangle, 1024)
	for {
		nt, err = r.ReadTriangles(buf)
		result = append(result, buf[:nt]...)
		if err != nil {
			break
		}
	}
	if err == io.EOF {
		return result, nil
	}
	return result, err
}

// triangleBuffer is a Renderer over an in-memory triangle slice.
type triangleBuffer struct {
	buf []surface.Triangle
}

// NewSliceRenderer returns a Renderer that reads out model.
func NewSliceRenderer(model []surface.Triangle) Renderer {
	return &triangleBuffer{buf: model}
}

func (b *triangleBuffer) ReadTriangles(t []surface.Triangle) (int, error) {
	if len(b.buf) == 0 {
		return 0, io.EOF
	}
	n := copy(t, b.buf)
	b.buf = b.buf[n:]
	return n, nil
}

func (b *triangleBuffer) Len() int { return len(b.buf) }
