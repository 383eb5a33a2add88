package imaging

import (
	"image/color"
	"testing"

	"github.com/ironsheep/photo-enhancer/internal/enhance"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name     string
		color    color.RGBA
		wantHex  string
		wantHue  int
		wantLuma int
	}{
		{"pure red", color.RGBA{255, 0, 0, 255}, "#ff0000", 0, 76},
		{"pure green", color.RGBA{0, 255, 0, 255}, "#00ff00", 120, 150},
		{"pure blue", color.RGBA{0, 0, 255, 255}, "#0000ff", 240, 29},
		{"white", color.RGBA{255, 255, 255, 255}, "#ffffff", 0, 255},
		{"black", color.RGBA{0, 0, 0, 255}, "#000000", 0, 0},
		{"gray", color.RGBA{128, 128, 128, 255}, "#808080", 0, 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SummarizeImage(createInMemoryImage(10, 10, tt.color))

			if s.Width != 10 || s.Height != 10 {
				t.Errorf("dimensions: got %dx%d, want 10x10", s.Width, s.Height)
			}
			if s.MeanHex != tt.wantHex {
				t.Errorf("MeanHex: got %s, want %s", s.MeanHex, tt.wantHex)
			}
			if s.MeanHSL.H != tt.wantHue {
				t.Errorf("MeanHSL.H: got %d, want %d", s.MeanHSL.H, tt.wantHue)
			}
			if s.MeanLuma != tt.wantLuma {
				t.Errorf("MeanLuma: got %d, want %d", s.MeanLuma, tt.wantLuma)
			}
		})
	}
}

func TestSummarize_Average(t *testing.T) {
	buf := enhance.NewBuffer(2, 1)
	buf.SetRGB(0, 0, 255, 0, 0)
	buf.SetRGB(1, 0, 0, 0, 255)

	s := Summarize(buf)
	// (127.5, 0, 127.5) rounds to #800080
	if s.MeanHex != "#800080" {
		t.Errorf("MeanHex: got %s, want #800080", s.MeanHex)
	}
	if s.MeanHSL.H != 300 {
		t.Errorf("MeanHSL.H: got %d, want 300", s.MeanHSL.H)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(enhance.NewBuffer(0, 0))
	if s.MeanHex != "#000000" || s.Width != 0 {
		t.Errorf("empty summary: got %+v", s)
	}
}
