package enhance

import (
	"math"

	"github.com/pkg/errors"
)

// Params holds the enhancement factors for one pipeline run.
//
// Factors are multipliers relative to 1.0 (unchanged). UpscaleMultiplier is
// the integer scale applied to both output dimensions.
type Params struct {
	Sharpness         float64 `json:"sharpness_factor"`
	Brightness        float64 `json:"brightness_factor"`
	Contrast          float64 `json:"contrast_factor"`
	Saturation        float64 `json:"saturation_factor"`
	UpscaleMultiplier int     `json:"upscale_multiplier"`
}

// DefaultParams is the fixed configuration used for uploaded photos.
var DefaultParams = Params{
	Sharpness:         1.5,
	Brightness:        1.2,
	Contrast:          1.2,
	Saturation:        1.2,
	UpscaleMultiplier: 2,
}

// NeutralParams leaves every stage except denoise unchanged and keeps the
// original size.
var NeutralParams = Params{
	Sharpness:         1,
	Brightness:        1,
	Contrast:          1,
	Saturation:        1,
	UpscaleMultiplier: 1,
}

// Validate checks that p can drive a pipeline run. Any finite factor is
// accepted.
func (p Params) Validate() error {
	factors := map[string]float64{
		"sharpness":  p.Sharpness,
		"brightness": p.Brightness,
		"contrast":   p.Contrast,
		"saturation": p.Saturation,
	}
	for name, f := range factors {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return errors.Wrapf(ErrInvalidParams, "%s factor %v", name, f)
		}
	}
	if p.UpscaleMultiplier < 1 {
		return errors.Wrapf(ErrInvalidParams, "upscale multiplier %d", p.UpscaleMultiplier)
	}
	return nil
}
