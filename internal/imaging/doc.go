// Package imaging decodes uploaded photos into enhancement buffers and
// encodes results back to disk.
//
// It is the codec boundary of the service: everything on one side deals in
// file bytes and container formats, everything on the other side deals in
// enhance.Buffer values.
//
// # Formats
//
// Accepted source formats are PNG, JPEG and GIF. Content is identified by
// sniffing the data, not by the file name; a file named photo.png that holds
// JPEG data decodes as JPEG. Only the first frame of an animated GIF is used.
// JPEG files are rotated according to their EXIF orientation tag.
//
// Output keeps the container of the original: the format is chosen from the
// destination file's extension.
//
// # Upload Names
//
// IsAllowedExtension is the gate applied to uploaded file names before
// anything is written to disk. It only looks at the extension.
//
// # Errors
//
//   - ErrUnsupportedFormat: content is not PNG, JPEG or GIF
//   - enhance.ErrInvalidImage: content decodes to an empty image
//   - wrapped I/O errors for reads and writes
package imaging
