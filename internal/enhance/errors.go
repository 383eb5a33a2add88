package enhance

import "github.com/pkg/errors"

var (
	// ErrInvalidImage reports an empty buffer or pixel data that does not
	// match the buffer dimensions.
	ErrInvalidImage = errors.New("invalid image")

	// ErrPipelineInvariant reports a stage that broke the buffer contract.
	// It always indicates a bug.
	ErrPipelineInvariant = errors.New("pipeline invariant violated")

	// ErrInvalidParams reports parameters the pipeline cannot run with,
	// such as an upscale multiplier below 1.
	ErrInvalidParams = errors.New("invalid enhancement parameters")
)
