package enhance

import (
	"github.com/anthonynsimon/bild/parallel"
)

// smoothKernel is the 3x3 smoothing kernel used by both sharpen (as the
// blurred reference) and denoise:
//
//	1 1 1
//	1 5 1
//	1 1 1
//
// The weights sum to smoothKernelSum.
var smoothKernel = [3][3]int{
	{1, 1, 1},
	{1, 5, 1},
	{1, 1, 1},
}

const smoothKernelSum = 13

// smoothAt returns the unnormalized kernel sum for channel c of the pixel at
// (x, y). Border pixels use clamped (replicated) edge values.
func smoothAt(b *Buffer, x, y, c int) int {
	sum := 0
	for ky := -1; ky <= 1; ky++ {
		py := clamp(y+ky, 0, b.Height-1)
		for kx := -1; kx <= 1; kx++ {
			px := clamp(x+kx, 0, b.Width-1)
			sum += int(b.Pix[b.offset(px, py)+c]) * smoothKernel[ky+1][kx+1]
		}
	}
	return sum
}

// eachRow runs fn for every row of b, splitting the rows across goroutines.
// fn must only write to its own row of the output.
func eachRow(b *Buffer, fn func(y int)) {
	parallel.Line(b.Height, func(start, end int) {
		for y := start; y < end; y++ {
			fn(y)
		}
	})
}

// mapChannels builds a new buffer by applying fn to every channel value.
func mapChannels(src *Buffer, fn func(v float64) float64) *Buffer {
	dst := src.sameShape()
	eachRow(src, func(y int) {
		start := y * src.Width * 3
		end := start + src.Width*3
		for i := start; i < end; i++ {
			dst.Pix[i] = clampRound(fn(float64(src.Pix[i])))
		}
	})
	return dst
}

// luma returns the BT.601 luma of an RGB triple using 16-bit fixed point
// weights with rounding.
func luma(r, g, b uint8) uint8 {
	return uint8((uint32(r)*19595 + uint32(g)*38470 + uint32(b)*7471 + 0x8000) >> 16)
}

// clampRound rounds v to the nearest integer and clamps it to [0, 255].
func clampRound(v float64) uint8 {
	if v <= 0 || v != v {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
