package enhance

import "github.com/pkg/errors"

// Planes holds the three channels of a buffer as separate planes, each
// Width*Height bytes in row-major order.
type Planes struct {
	Width  int
	Height int
	R      []uint8
	G      []uint8
	B      []uint8
}

// Split separates b into its R, G and B planes.
func Split(b *Buffer) Planes {
	n := b.Width * b.Height
	p := Planes{
		Width:  b.Width,
		Height: b.Height,
		R:      make([]uint8, n),
		G:      make([]uint8, n),
		B:      make([]uint8, n),
	}
	for i := 0; i < n; i++ {
		p.R[i] = b.Pix[i*3]
		p.G[i] = b.Pix[i*3+1]
		p.B[i] = b.Pix[i*3+2]
	}
	return p
}

// Merge interleaves the planes back into a new buffer. Planes of the wrong
// length fail with ErrPipelineInvariant.
func Merge(p Planes) (*Buffer, error) {
	n := p.Width * p.Height
	if len(p.R) != n || len(p.G) != n || len(p.B) != n {
		return nil, errors.Wrapf(ErrPipelineInvariant,
			"plane sizes r=%d g=%d b=%d, want %d", len(p.R), len(p.G), len(p.B), n)
	}
	b := NewBuffer(p.Width, p.Height)
	for i := 0; i < n; i++ {
		b.Pix[i*3] = p.R[i]
		b.Pix[i*3+1] = p.G[i]
		b.Pix[i*3+2] = p.B[i]
	}
	return b, nil
}
