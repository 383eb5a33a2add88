package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	s, err := New(Config{
		UploadDir:    filepath.Join(root, "uploads"),
		ProcessedDir: filepath.Join(root, "processed"),
	})
	require.NoError(t, err)
	return s
}

func TestNewCreatesDirectories(t *testing.T) {
	s := newTestStore(t)

	for _, dir := range []string{s.UploadDir(), s.ProcessedDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestNewExistingDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := Config{UploadDir: root, ProcessedDir: root}

	_, err := New(cfg)
	require.NoError(t, err)
	_, err = New(cfg)
	assert.NoError(t, err)
}

func TestNewRequiresDirectories(t *testing.T) {
	_, err := New(Config{UploadDir: "uploads"})
	assert.Error(t, err)
}

func TestSaveOriginal(t *testing.T) {
	s := newTestStore(t)

	path, err := s.SaveOriginal("photo.png", strings.NewReader("first"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.UploadDir(), "photo.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	// Same name overwrites.
	_, err = s.SaveOriginal("photo.png", strings.NewReader("2nd"))
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2nd", string(data))
}

func TestSaveOriginalRejectsPaths(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"", ".", "..", "../x.png", `a\b.png`, "dir/x.png"} {
		_, err := s.SaveOriginal(name, strings.NewReader("x"))
		assert.True(t, errors.Is(err, ErrInvalidFilename), "name %q: got %v", name, err)
	}
}

func TestProcessedPath(t *testing.T) {
	s := newTestStore(t)

	path, err := s.ProcessedPath("photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.ProcessedDir(), "processed_photo.jpg"), path)
	assert.Equal(t, "processed_photo.jpg", ProcessedName("photo.jpg"))

	_, err = s.ProcessedPath("../photo.jpg")
	assert.True(t, errors.Is(err, ErrInvalidFilename))
}

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.png", "photo.png"},
		{"My cool movie.mov", "My_cool_movie.mov"},
		{"../../../etc/passwd", "etc_passwd"},
		{`C:\Users\me\pic.JPG`, "C_Users_me_pic.JPG"},
		{"i contain cool ümläuts.txt", "i_contain_cool_umlauts.txt"},
		{"  spaced   out .gif ", "spaced_out_.gif"},
		{"weird$%&chars!.jpeg", "weirdchars.jpeg"},
		{"日本.png", "png"},
		{"...", ""},
		{"", ""},
		{"con.png", "_con.png"},
		{"_hidden_.png_", "hidden_.png"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SecureFilename(tt.in))
		})
	}
}

func TestStat(t *testing.T) {
	s := newTestStore(t)

	_, err := s.SaveOriginal("a.png", strings.NewReader("data"))
	require.NoError(t, err)

	path, info, err := s.Stat(Originals, "a.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.UploadDir(), "a.png"), path)
	assert.Equal(t, int64(4), info.Size())

	_, _, err = s.Stat(Processed, "a.png")
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)

	require.NoError(t, os.Mkdir(filepath.Join(s.ProcessedDir(), "sub"), 0o755))
	_, _, err = s.Stat(Processed, "sub")
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)

	_, _, err = s.Stat(Originals, "../a.png")
	assert.True(t, errors.Is(err, ErrInvalidFilename))

	_, _, err = s.Stat(Kind(7), "a.png")
	assert.Error(t, err)
}
