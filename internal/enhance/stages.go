package enhance

import (
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// Sharpen blends src with an unsharp-masked copy of itself.
//
// The sharpened reference is 2*src - smooth(src). The output is
// src + (f-1)*(sharpened - src), so f=1 returns src, f=2 returns the
// sharpened reference and larger factors extrapolate past it.
func Sharpen(src *Buffer, p Params) (*Buffer, error) {
	f := p.Sharpness
	dst := src.sameShape()
	eachRow(src, func(y int) {
		for x := 0; x < src.Width; x++ {
			i := src.offset(x, y)
			for c := 0; c < 3; c++ {
				v := float64(src.Pix[i+c])
				smooth := float64(smoothAt(src, x, y, c)) / smoothKernelSum
				dst.Pix[i+c] = clampRound(v + (f-1)*(v-smooth))
			}
		}
	})
	return dst, nil
}

// Brighten scales every channel by the brightness factor, moving values
// toward black for factors below 1.
func Brighten(src *Buffer, p Params) (*Buffer, error) {
	f := p.Brightness
	return mapChannels(src, func(v float64) float64 {
		return v * f
	}), nil
}

// Contrast scales every channel around the mean luminance of src.
func Contrast(src *Buffer, p Params) (*Buffer, error) {
	f := p.Contrast
	mean := float64(MeanLuma(src))
	return mapChannels(src, func(v float64) float64 {
		return mean + f*(v-mean)
	}), nil
}

// Saturate moves every pixel toward (f<1) or away from (f>1) its own luma.
func Saturate(src *Buffer, p Params) (*Buffer, error) {
	f := p.Saturation
	dst := src.sameShape()
	eachRow(src, func(y int) {
		for x := 0; x < src.Width; x++ {
			i := src.offset(x, y)
			gray := float64(luma(src.Pix[i], src.Pix[i+1], src.Pix[i+2]))
			for c := 0; c < 3; c++ {
				v := float64(src.Pix[i+c])
				dst.Pix[i+c] = clampRound(gray + f*(v-gray))
			}
		}
	})
	return dst, nil
}

// Remerge splits src into channel planes and merges them back unchanged.
func Remerge(src *Buffer, _ Params) (*Buffer, error) {
	return Merge(Split(src))
}

// Denoise applies the 3x3 smoothing kernel with replicated edges.
func Denoise(src *Buffer, _ Params) (*Buffer, error) {
	dst := src.sameShape()
	eachRow(src, func(y int) {
		for x := 0; x < src.Width; x++ {
			i := src.offset(x, y)
			for c := 0; c < 3; c++ {
				sum := smoothAt(src, x, y, c)
				dst.Pix[i+c] = uint8((sum + smoothKernelSum/2) / smoothKernelSum)
			}
		}
	})
	return dst, nil
}

// Upscale resamples src to UpscaleMultiplier times its size with a Lanczos
// filter.
func Upscale(src *Buffer, p Params) (*Buffer, error) {
	w, h := upscaledSize(src.Width, src.Height, p)
	if w == src.Width && h == src.Height {
		return src.Clone(), nil
	}
	resized := imaging.Resize(src.NRGBA(), w, h, imaging.Lanczos)
	out, err := FromImage(resized)
	if err != nil {
		return nil, errors.Wrapf(ErrPipelineInvariant, "resample to %dx%d: %v", w, h, err)
	}
	return out, nil
}

// MeanLuma returns the mean BT.601 luma of b rounded to the nearest integer.
func MeanLuma(b *Buffer) uint8 {
	n := b.Width * b.Height
	if n == 0 {
		return 0
	}
	var sum uint64
	for i := 0; i < n; i++ {
		sum += uint64(luma(b.Pix[i*3], b.Pix[i*3+1], b.Pix[i*3+2]))
	}
	return uint8((sum + uint64(n)/2) / uint64(n))
}

func upscaledSize(width, height int, p Params) (int, int) {
	return width * p.UpscaleMultiplier, height * p.UpscaleMultiplier
}
