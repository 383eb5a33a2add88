package imaging

import (
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/photo-enhancer/internal/enhance"
)

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// Summary describes an image for the result page.
type Summary struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// MeanHex is the average color as "#rrggbb".
	MeanHex string `json:"mean_hex"`

	// MeanHSL is the average color in HSL.
	MeanHSL HSLColor `json:"mean_hsl"`

	// MeanLuma is the average BT.601 luma (0-255).
	MeanLuma int `json:"mean_luma"`
}

// Summarize computes the average color and luma of a buffer.
//
// An empty buffer yields a zero Summary with MeanHex "#000000".
func Summarize(buf *enhance.Buffer) Summary {
	s := Summary{Width: buf.Width, Height: buf.Height, MeanHex: "#000000"}
	n := buf.Width * buf.Height
	if n == 0 || len(buf.Pix) < n*3 {
		return s
	}

	var r, g, b uint64
	for i := 0; i < n; i++ {
		r += uint64(buf.Pix[i*3])
		g += uint64(buf.Pix[i*3+1])
		b += uint64(buf.Pix[i*3+2])
	}
	total := float64(n) * 255
	mean := colorful.Color{
		R: float64(r) / total,
		G: float64(g) / total,
		B: float64(b) / total,
	}

	h, sat, l := mean.Hsl()
	s.MeanHex = mean.Hex()
	s.MeanHSL = HSLColor{
		H: int(math.Round(h)) % 360,
		S: int(math.Round(sat * 100)),
		L: int(math.Round(l * 100)),
	}
	s.MeanLuma = int(enhance.MeanLuma(buf))
	return s
}

// SummarizeImage converts img and summarizes it. Images that cannot be
// converted yield a zero Summary.
func SummarizeImage(img image.Image) Summary {
	buf, err := enhance.FromImage(img)
	if err != nil {
		return Summary{MeanHex: "#000000"}
	}
	return Summarize(buf)
}
