package imaging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/photo-enhancer/internal/enhance"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodeBytes(t *testing.T, format string, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100})
	case "gif":
		// An explicit palette keeps the test colors exact.
		pal := image.NewPaletted(img.Bounds(), color.Palette{color.Black, color.RGBA{128, 128, 128, 255}, color.White})
		draw.Draw(pal, pal.Bounds(), img, img.Bounds().Min, draw.Src)
		err = gif.Encode(&buf, pal, nil)
	default:
		t.Fatalf("unknown format %s", format)
	}
	if err != nil {
		t.Fatalf("failed to encode %s: %v", format, err)
	}
	return buf.Bytes()
}

func TestIsAllowedExtension(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"photo.png", true},
		{"photo.jpg", true},
		{"photo.jpeg", true},
		{"photo.gif", true},
		{"PHOTO.PNG", true},
		{"archive.tar.JpEg", true},
		{"photo.bmp", false},
		{"photo.png.exe", false},
		{"png", false},
		{"photo.", false},
		{"", false},
		{".gif", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAllowedExtension(tt.name); got != tt.want {
				t.Errorf("IsAllowedExtension(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestDecode_Formats(t *testing.T) {
	// Gray survives JPEG and the GIF palette exactly enough to compare.
	src := createInMemoryImage(6, 4, color.RGBA{128, 128, 128, 255})

	for _, format := range []string{"png", "jpeg", "gif"} {
		t.Run(format, func(t *testing.T) {
			buf, got, err := Decode(bytes.NewReader(encodeBytes(t, format, src)), 0)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if got != format {
				t.Errorf("format: got %s, want %s", got, format)
			}
			if buf.Width != 6 || buf.Height != 4 {
				t.Errorf("dimensions: got %dx%d, want 6x4", buf.Width, buf.Height)
			}
			r, g, b := buf.RGB(3, 2)
			if absDiff(r, 128) > 2 || absDiff(g, 128) > 2 || absDiff(b, 128) > 2 {
				t.Errorf("pixel: got (%d,%d,%d), want ~(128,128,128)", r, g, b)
			}
		})
	}
}

func TestDecode_DropsAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 10, B: 20, A: 64})

	buf, _, err := Decode(bytes.NewReader(encodeBytes(t, "png", img)), 0)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	r, g, b := buf.RGB(0, 0)
	if r != 200 || g != 10 || b != 20 {
		t.Errorf("pixel: got (%d,%d,%d), want (200,10,20)", r, g, b)
	}
}

func TestDecode_Unsupported(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte("not an image")), 0)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error: got %v, want ErrUnsupportedFormat", err)
	}
}

func TestDecode_Truncated(t *testing.T) {
	data := encodeBytes(t, "png", createInMemoryImage(20, 20, color.White))
	_, _, err := Decode(bytes.NewReader(data[:40]), 0)
	if err == nil {
		t.Fatal("Decode should fail for truncated data")
	}
	if errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("truncated PNG reported as unsupported: %v", err)
	}
}

// withDeclaredSize rewrites the IHDR dimensions of a PNG, leaving the pixel
// data as it was.
func withDeclaredSize(data []byte, width, height uint32) []byte {
	out := append([]byte(nil), data...)
	// signature(8) length(4) "IHDR"(4) width(4) height(4) ... crc
	binary.BigEndian.PutUint32(out[16:], width)
	binary.BigEndian.PutUint32(out[20:], height)
	binary.BigEndian.PutUint32(out[29:], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestDecode_PixelLimit(t *testing.T) {
	data := encodeBytes(t, "png", createInMemoryImage(10, 10, color.White))

	tests := []struct {
		name      string
		maxPixels int64
		wantErr   bool
	}{
		{"no limit", 0, false},
		{"at limit", 100, false},
		{"over limit", 99, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, _, err := Decode(bytes.NewReader(data), tt.maxPixels)
			if tt.wantErr {
				if !errors.Is(err, ErrImageTooLarge) {
					t.Fatalf("error: got %v, want ErrImageTooLarge", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if buf.Width != 10 || buf.Height != 10 {
				t.Errorf("dimensions: got %dx%d, want 10x10", buf.Width, buf.Height)
			}
		})
	}
}

func TestDecode_PixelLimitCheckedBeforeDecoding(t *testing.T) {
	// The header claims 100000x100000 but carries the data of a 1x1 image,
	// so decoding the pixels would fail with a different error.
	data := withDeclaredSize(encodeBytes(t, "png", createInMemoryImage(1, 1, color.Black)), 100000, 100000)

	_, format, err := Decode(bytes.NewReader(data), 40000000)
	if !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("error: got %v, want ErrImageTooLarge", err)
	}
	if format != "png" {
		t.Errorf("format: got %q, want png", format)
	}
}

func TestDecodeFile_NonExistent(t *testing.T) {
	_, _, err := DecodeFile("/nonexistent/path/to/image.png", 0)
	if err == nil {
		t.Error("DecodeFile should fail for non-existent file")
	}
}

func TestEncode_KeepsFormat(t *testing.T) {
	dir := t.TempDir()
	buf := enhance.NewBuffer(8, 5)

	tests := []struct {
		file   string
		format string
	}{
		{"out.png", "png"},
		{"out.jpg", "jpeg"},
		{"out.JPEG", "jpeg"},
		{"out.gif", "gif"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := Encode(buf, path); err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			decoded, format, err := DecodeFile(path, 0)
			if err != nil {
				t.Fatalf("DecodeFile failed: %v", err)
			}
			if format != tt.format {
				t.Errorf("format: got %s, want %s", format, tt.format)
			}
			if decoded.Width != 8 || decoded.Height != 5 {
				t.Errorf("dimensions: got %dx%d, want 8x5", decoded.Width, decoded.Height)
			}
		})
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != len(tests) {
		t.Errorf("temporary files left behind: %d entries, want %d", len(entries), len(tests))
	}
}

func TestEncode_UnknownExtension(t *testing.T) {
	err := Encode(enhance.NewBuffer(1, 1), filepath.Join(t.TempDir(), "out.xyz"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error: got %v, want ErrUnsupportedFormat", err)
	}
}

func TestEncode_MissingDirectory(t *testing.T) {
	err := Encode(enhance.NewBuffer(1, 1), "/nonexistent/dir/out.png")
	if err == nil {
		t.Error("Encode should fail for a missing directory")
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
