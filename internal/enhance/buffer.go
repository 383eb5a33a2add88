package enhance

import (
	"bytes"
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// Buffer is a decoded RGB image with 8 bits per channel.
//
// Pixels are stored row-major and interleaved: the pixel at (x, y) starts at
// Pix[(y*Width+x)*3] and holds R, G, B in that order. Buffer implements
// image.Image as a fully opaque image, so it can be passed to encoders and
// resamplers without conversion.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewBuffer allocates a black buffer of the given size.
func NewBuffer(width, height int) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
}

// FromImage copies img into a new Buffer.
//
// Color channels are taken non-premultiplied and alpha is dropped. The
// image's origin is moved to (0, 0). FromImage fails with ErrInvalidImage if
// img is nil or has an empty bounds rectangle.
func FromImage(img image.Image) (*Buffer, error) {
	if img == nil {
		return nil, errors.Wrap(ErrInvalidImage, "nil image")
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, errors.Wrapf(ErrInvalidImage, "empty bounds %v", bounds)
	}

	b := NewBuffer(bounds.Dx(), bounds.Dy())

	switch src := img.(type) {
	case *Buffer:
		copy(b.Pix, src.Pix)
	case *image.NRGBA:
		for y := 0; y < b.Height; y++ {
			row := src.Pix[src.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			dst := b.Pix[y*b.Width*3:]
			for x := 0; x < b.Width; x++ {
				dst[x*3] = row[x*4]
				dst[x*3+1] = row[x*4+1]
				dst[x*3+2] = row[x*4+2]
			}
		}
	default:
		i := 0
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				b.Pix[i] = c.R
				b.Pix[i+1] = c.G
				b.Pix[i+2] = c.B
				i += 3
			}
		}
	}

	return b, nil
}

// Validate reports whether b is a usable pipeline input.
func (b *Buffer) Validate() error {
	if b == nil {
		return errors.Wrap(ErrInvalidImage, "nil buffer")
	}
	if b.Width <= 0 || b.Height <= 0 {
		return errors.Wrapf(ErrInvalidImage, "dimensions %dx%d", b.Width, b.Height)
	}
	if len(b.Pix) != b.Width*b.Height*3 {
		return errors.Wrapf(ErrInvalidImage, "pixel data has %d bytes, want %d", len(b.Pix), b.Width*b.Height*3)
	}
	return nil
}

// ColorModel implements image.Image.
func (b *Buffer) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// At implements image.Image. Points outside the buffer are transparent black.
func (b *Buffer) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return color.RGBA{}
	}
	i := b.offset(x, y)
	return color.RGBA{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: 0xff}
}

// RGB returns the channels of the pixel at (x, y). The caller must keep the
// point inside the buffer.
func (b *Buffer) RGB(x, y int) (r, g, bl uint8) {
	i := b.offset(x, y)
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2]
}

// SetRGB sets the pixel at (x, y).
func (b *Buffer) SetRGB(x, y int, r, g, bl uint8) {
	i := b.offset(x, y)
	b.Pix[i] = r
	b.Pix[i+1] = g
	b.Pix[i+2] = bl
}

// NRGBA returns an opaque *image.NRGBA copy of b.
func (b *Buffer) NRGBA() *image.NRGBA {
	dst := image.NewNRGBA(b.Bounds())
	n := b.Width * b.Height
	for i := 0; i < n; i++ {
		dst.Pix[i*4] = b.Pix[i*3]
		dst.Pix[i*4+1] = b.Pix[i*3+1]
		dst.Pix[i*4+2] = b.Pix[i*3+2]
		dst.Pix[i*4+3] = 0xff
	}
	return dst
}

// Clone returns a deep copy of b.
func (b *Buffer) Clone() *Buffer {
	c := &Buffer{Width: b.Width, Height: b.Height, Pix: make([]uint8, len(b.Pix))}
	copy(c.Pix, b.Pix)
	return c
}

// Equal reports whether b and o have the same size and pixels.
func (b *Buffer) Equal(o *Buffer) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.Width == o.Width && b.Height == o.Height && bytes.Equal(b.Pix, o.Pix)
}

func (b *Buffer) offset(x, y int) int {
	return (y*b.Width + x) * 3
}

// sameShape returns a new zeroed buffer with b's dimensions.
func (b *Buffer) sameShape() *Buffer {
	return NewBuffer(b.Width, b.Height)
}

// checkSize reports a mismatch between b and the expected dimensions.
func (b *Buffer) checkSize(width, height int) error {
	if b == nil {
		return errors.New("stage returned nil buffer")
	}
	if b.Width != width || b.Height != height {
		return errors.Errorf("got %dx%d, want %dx%d", b.Width, b.Height, width, height)
	}
	if len(b.Pix) != width*height*3 {
		return errors.Errorf("pixel data has %d bytes, want %d", len(b.Pix), width*height*3)
	}
	return nil
}
