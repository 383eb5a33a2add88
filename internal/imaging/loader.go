package imaging

import (
	"bytes"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/ironsheep/photo-enhancer/internal/enhance"
)

// ErrUnsupportedFormat is returned for content or names outside the
// accepted PNG, JPEG and GIF formats.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ErrImageTooLarge is returned when the declared image dimensions exceed the
// pixel limit given to Decode.
var ErrImageTooLarge = errors.New("image too large")

// JPEGQuality is the quality used when the result is written as JPEG.
const JPEGQuality = 95

// allowedExtensions are the upload name extensions accepted, lowercase and
// without the dot.
var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
}

// supportedFormats maps the names reported by image.DecodeConfig to the
// formats we accept.
var supportedFormats = map[string]bool{
	"png":  true,
	"jpeg": true,
	"gif":  true,
}

// IsAllowedExtension reports whether name ends in one of .png, .jpg, .jpeg
// or .gif, ignoring case. A name without a dot is never allowed.
func IsAllowedExtension(name string) bool {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return false
	}
	return allowedExtensions[strings.ToLower(name[i+1:])]
}

// Decode reads an image from r and converts it to an enhancement buffer.
//
// maxPixels caps width*height as declared in the image header, checked before
// any pixel data is decoded. Zero or less means no limit.
//
// Returns:
//   - *enhance.Buffer: the decoded RGB pixels, alpha dropped.
//   - string: the detected format ("png", "jpeg" or "gif").
//   - error: ErrUnsupportedFormat for unrecognized content,
//     ErrImageTooLarge for an image over maxPixels,
//     enhance.ErrInvalidImage for an empty image, or a wrapped read or
//     decode error.
func Decode(r io.Reader, maxPixels int64) (*enhance.Buffer, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to read image")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", ErrUnsupportedFormat
		}
		return nil, "", errors.Wrap(enhance.ErrInvalidImage, err.Error())
	}
	if !supportedFormats[format] {
		return nil, format, errors.Wrapf(ErrUnsupportedFormat, "format %s", format)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); maxPixels > 0 && pixels > maxPixels {
		return nil, format, errors.Wrapf(ErrImageTooLarge, "%dx%d exceeds %d pixels", cfg.Width, cfg.Height, maxPixels)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, format, errors.Wrap(enhance.ErrInvalidImage, err.Error())
	}

	buf, err := enhance.FromImage(img)
	if err != nil {
		return nil, format, err
	}
	return buf, format, nil
}

// DecodeFile opens path and decodes it with Decode.
func DecodeFile(path string, maxPixels int64) (*enhance.Buffer, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to open image")
	}
	defer f.Close()

	return Decode(f, maxPixels)
}

// Encode writes img to path in the format named by the path's extension.
//
// The image is first written to a temporary file in the destination
// directory and then renamed into place, so readers never see a partial
// file.
func Encode(img image.Image, path string) error {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return errors.Wrapf(ErrUnsupportedFormat, "output %s", filepath.Base(path))
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".encode-*")
	if err != nil {
		return errors.Wrap(err, "failed to create output file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := imaging.Encode(tmp, img, format, imaging.JPEGQuality(JPEGQuality)); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to encode image")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to write output file")
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return errors.Wrap(err, "failed to set output permissions")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "failed to move output into place")
	}
	return nil
}
