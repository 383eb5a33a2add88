package server

import (
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Config is the server configuration, loaded from TOML.
type Config struct {
	Bind         string `toml:"bind"`
	LogLevel     string `toml:"log_level"`
	UploadDir    string `toml:"upload_dir"`
	ProcessedDir string `toml:"processed_dir"`

	// [limits]
	Limits Limits `toml:"limits"`
}

// Limits bounds the resources a request may use.
type Limits struct {
	MaxUploadBytes int64         `toml:"max_upload_bytes"`
	MaxPixels      int64         `toml:"max_pixels"`
	MaxEnhancers   int           `toml:"max_enhancers"`
	RequestTimeout time.Duration `toml:"-"`

	RequestTimeoutStr string `toml:"request_timeout"`
}

var ErrNoConfigFile = errors.New("configuration file not found")

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Bind:         "0.0.0.0:5000",
		LogLevel:     "info",
		UploadDir:    "uploads",
		ProcessedDir: "processed",
		Limits: Limits{
			MaxUploadBytes: 32 << 20,
			MaxPixels:      40000000,
			MaxEnhancers:   runtime.NumCPU(),
			RequestTimeout: 60 * time.Second,
		},
	}
}

// NewConfigFromFile loads path on top of the defaults. An empty path returns
// the defaults; a path that does not exist is an error.
func NewConfigFromFile(path string) (*Config, error) {
	cf := DefaultConfig()
	if path == "" {
		return cf, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.Wrap(ErrNoConfigFile, path)
	}
	if _, err := toml.DecodeFile(path, cf); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return cf, nil
}

// Apply parses the string-valued settings and checks the rest.
func (cf *Config) Apply() error {
	if cf.Bind == "" {
		return errors.New("bind address must be set")
	}
	if cf.UploadDir == "" || cf.ProcessedDir == "" {
		return errors.New("upload_dir and processed_dir must be set")
	}
	if _, err := cf.Level(); err != nil {
		return err
	}

	if cf.Limits.RequestTimeoutStr != "" {
		to, err := time.ParseDuration(cf.Limits.RequestTimeoutStr)
		if err != nil {
			return errors.Wrap(err, "invalid request_timeout")
		}
		cf.Limits.RequestTimeout = to
	}
	if cf.Limits.RequestTimeout <= 0 {
		return errors.Errorf("request_timeout must be positive, got %s", cf.Limits.RequestTimeout)
	}
	if cf.Limits.MaxEnhancers <= 0 {
		cf.Limits.MaxEnhancers = runtime.NumCPU()
	}
	if cf.Limits.MaxUploadBytes <= 0 {
		return errors.Errorf("max_upload_bytes must be positive, got %d", cf.Limits.MaxUploadBytes)
	}
	if cf.Limits.MaxPixels <= 0 {
		return errors.Errorf("max_pixels must be positive, got %d", cf.Limits.MaxPixels)
	}
	return nil
}

// Level returns the configured log level.
func (cf *Config) Level() (logrus.Level, error) {
	lvl, err := logrus.ParseLevel(strings.ToLower(cf.LogLevel))
	if err != nil {
		return logrus.InfoLevel, errors.Wrap(err, "invalid log_level")
	}
	return lvl, nil
}
