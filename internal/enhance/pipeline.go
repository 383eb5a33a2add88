package enhance

import (
	"time"

	"github.com/pkg/errors"
)

// Stage names of the default pipeline.
const (
	StageSharpen  = "sharpen"
	StageBrighten = "brighten"
	StageContrast = "contrast"
	StageSaturate = "saturate"
	StageRemerge  = "remerge"
	StageDenoise  = "denoise"
	StageUpscale  = "upscale"
)

// StageFunc transforms a whole buffer. It must not modify its input.
type StageFunc func(*Buffer, Params) (*Buffer, error)

// Stage is one named step of a pipeline.
type Stage struct {
	Name string

	// From names the stage whose output this stage reads. Empty means the
	// output of the stage immediately before it (or the pipeline input for
	// the first stage).
	From string

	Apply StageFunc

	// Size returns the output dimensions for the given input dimensions.
	// Nil means the stage keeps the input size.
	Size func(width, height int, p Params) (int, int)
}

// Observer is called after every stage with the time the stage took.
type Observer func(stage string, elapsed time.Duration)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithObserver registers fn to receive per-stage timings.
func WithObserver(fn Observer) Option {
	return func(pl *Pipeline) {
		pl.observe = fn
	}
}

// Pipeline runs an ordered list of stages. It is immutable after New and
// safe for concurrent use.
type Pipeline struct {
	stages  []Stage
	keep    map[string]bool
	observe Observer
}

// DefaultStages returns the enhancement stages in run order.
func DefaultStages() []Stage {
	return []Stage{
		{Name: StageSharpen, Apply: Sharpen},
		{Name: StageBrighten, Apply: Brighten},
		{Name: StageContrast, Apply: Contrast},
		{Name: StageSaturate, Apply: Saturate},
		{Name: StageRemerge, Apply: Remerge},
		// Reads the saturate output; the remerge result is dropped.
		{Name: StageDenoise, From: StageSaturate, Apply: Denoise},
		{Name: StageUpscale, Apply: Upscale, Size: upscaledSize},
	}
}

// New builds a pipeline from stages. Stage names must be unique and every
// From must name an earlier stage.
func New(stages []Stage, opts ...Option) (*Pipeline, error) {
	if len(stages) == 0 {
		return nil, errors.New("pipeline needs at least one stage")
	}

	seen := make(map[string]bool, len(stages))
	keep := make(map[string]bool)
	for i, st := range stages {
		if st.Name == "" {
			return nil, errors.Errorf("stage %d has no name", i)
		}
		if st.Apply == nil {
			return nil, errors.Errorf("stage %s has no function", st.Name)
		}
		if seen[st.Name] {
			return nil, errors.Errorf("duplicate stage %s", st.Name)
		}
		if st.From != "" {
			if !seen[st.From] {
				return nil, errors.Errorf("stage %s reads from %s, which does not run before it", st.Name, st.From)
			}
			keep[st.From] = true
		}
		seen[st.Name] = true
	}

	pl := &Pipeline{
		stages: append([]Stage(nil), stages...),
		keep:   keep,
	}
	for _, opt := range opts {
		opt(pl)
	}
	return pl, nil
}

// Stages returns the stage names in run order.
func (pl *Pipeline) Stages() []string {
	names := make([]string, len(pl.stages))
	for i, st := range pl.stages {
		names[i] = st.Name
	}
	return names
}

// Run passes src through every stage and returns the final buffer. src is
// never modified.
func (pl *Pipeline) Run(src *Buffer, p Params) (out *Buffer, err error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = errors.Wrapf(ErrPipelineInvariant, "panic: %v", r)
		}
	}()

	kept := make(map[string]*Buffer, len(pl.keep))
	prev := src
	for _, st := range pl.stages {
		in := prev
		if st.From != "" {
			in = kept[st.From]
		}

		start := time.Now()
		res, err := st.Apply(in, p)
		if pl.observe != nil {
			pl.observe(st.Name, time.Since(start))
		}
		if err != nil {
			return nil, errors.Wrapf(err, "stage %s", st.Name)
		}

		w, h := in.Width, in.Height
		if st.Size != nil {
			w, h = st.Size(w, h, p)
		}
		if err := res.checkSize(w, h); err != nil {
			return nil, errors.Wrapf(ErrPipelineInvariant, "stage %s: %v", st.Name, err)
		}

		if pl.keep[st.Name] {
			kept[st.Name] = res
		}
		prev = res
	}

	return prev, nil
}

var defaultPipeline = mustNew(DefaultStages())

func mustNew(stages []Stage) *Pipeline {
	pl, err := New(stages)
	if err != nil {
		panic(err)
	}
	return pl
}

// Default returns the shared default pipeline.
func Default() *Pipeline {
	return defaultPipeline
}

// Enhance runs the default pipeline on buf.
func Enhance(buf *Buffer, p Params) (*Buffer, error) {
	return defaultPipeline.Run(buf, p)
}
