// Package storage keeps uploaded originals and processed results on the local
// filesystem.
//
// Two directories are managed: one for originals keyed by their sanitized
// upload name, and one for results keyed by "processed_" plus that name.
// Files with the same name are overwritten.
package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ProcessedPrefix is prepended to an original's name to form the name of its
// processed result.
const ProcessedPrefix = "processed_"

// ErrInvalidFilename is returned for names that are empty or would escape
// the storage directories.
var ErrInvalidFilename = errors.New("invalid filename")

// Config names the storage directories.
type Config struct {
	UploadDir    string
	ProcessedDir string
}

// Store reads and writes files in the upload and processed directories.
// It is safe for concurrent use.
type Store struct {
	uploadDir    string
	processedDir string
}

// New creates the configured directories if they do not exist.
func New(cfg Config) (*Store, error) {
	if cfg.UploadDir == "" || cfg.ProcessedDir == "" {
		return nil, errors.New("storage directories must be set")
	}
	for _, dir := range []string{cfg.UploadDir, cfg.ProcessedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create %s", dir)
		}
	}
	return &Store{uploadDir: cfg.UploadDir, processedDir: cfg.ProcessedDir}, nil
}

// UploadDir returns the directory holding originals.
func (s *Store) UploadDir() string { return s.uploadDir }

// ProcessedDir returns the directory holding results.
func (s *Store) ProcessedDir() string { return s.processedDir }

// ProcessedName returns the stored name of the result for an original.
func ProcessedName(name string) string {
	return ProcessedPrefix + name
}

// OriginalPath returns the path of the original stored under name.
func (s *Store) OriginalPath(name string) (string, error) {
	return join(s.uploadDir, name)
}

// ProcessedPath returns the path of the result for the original stored
// under name.
func (s *Store) ProcessedPath(name string) (string, error) {
	return join(s.processedDir, ProcessedName(name))
}

// SaveOriginal copies r into the upload directory under name and returns the
// path written. name should already be sanitized with SecureFilename.
func (s *Store) SaveOriginal(name string, r io.Reader) (string, error) {
	path, err := s.OriginalPath(name)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "failed to create original")
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", errors.Wrap(err, "failed to write original")
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", errors.Wrap(err, "failed to write original")
	}
	return path, nil
}

// Kind selects one of the storage directories.
type Kind int

const (
	// Originals is the directory of uploaded files.
	Originals Kind = iota
	// Processed is the directory of enhanced results.
	Processed
)

func (k Kind) String() string {
	switch k {
	case Originals:
		return "originals"
	case Processed:
		return "processed"
	default:
		return "unknown"
	}
}

// Stat resolves a stored file name in the directory selected by kind. name
// is the name as stored, so processed files include ProcessedPrefix.
//
// Missing files and directories return an error matching os.ErrNotExist.
func (s *Store) Stat(kind Kind, name string) (string, os.FileInfo, error) {
	var dir string
	switch kind {
	case Originals:
		dir = s.uploadDir
	case Processed:
		dir = s.processedDir
	default:
		return "", nil, errors.Errorf("unknown storage kind %d", kind)
	}

	path, err := join(dir, name)
	if err != nil {
		return "", nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", nil, errors.Wrapf(err, "%s %s", kind, name)
	}
	if info.IsDir() {
		return "", nil, errors.Wrapf(os.ErrNotExist, "%s %s is a directory", kind, name)
	}
	return path, info, nil
}

// join places name inside dir, refusing names that are not a single path
// element.
func join(dir, name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", errors.Wrapf(ErrInvalidFilename, "%q", name)
	}
	return filepath.Join(dir, name), nil
}
