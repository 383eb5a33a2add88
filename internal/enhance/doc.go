// Package enhance implements the photo enhancement pipeline.
//
// The pipeline is a pure function from a decoded RGB pixel buffer and a fixed
// parameter set to a new, upscaled pixel buffer. It performs no I/O and keeps
// no state between calls, so a single Pipeline value may be shared by any
// number of goroutines.
//
// # Stages
//
// The default pipeline runs seven stages in order:
//
//  1. sharpen: blend between the original and an unsharp-masked copy
//  2. brighten: scale every channel toward or away from black
//  3. contrast: scale every channel around the mean luminance
//  4. saturate: scale every channel around the per-pixel luma
//  5. remerge: split into R, G, B planes and merge them back (identity)
//  6. denoise: 3x3 smoothing of the saturate output
//  7. upscale: Lanczos resampling by the upscale multiplier
//
// The denoise stage reads the saturate output, not the remerge output. The
// remerge result is produced and then dropped. Stages name the stage they
// read from, which keeps this visible in the stage table rather than hidden
// in the driver.
//
// # Factors
//
// Every enhancement factor is a multiplier relative to a neutral value of
// 1.0: 1.0 leaves the image unchanged, values above 1.0 amplify the effect
// and values below 1.0 attenuate it. Results are rounded to the nearest
// integer and clamped to [0, 255] after every stage.
//
// # Color Model
//
// Buffers hold 8-bit R, G, B channels with no alpha. Luma uses the ITU-R
// BT.601 weights (0.299, 0.587, 0.114) in 16-bit fixed point.
//
// # Errors
//
// Run fails with ErrInvalidImage for an empty or inconsistent input buffer
// and with ErrPipelineInvariant when a stage produces a buffer of unexpected
// size. Both are final; running the pipeline again on the same input gives
// the same outcome.
package enhance
