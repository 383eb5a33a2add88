package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/photo-enhancer/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var flags = flag.NewFlagSet("photo-enhancer", flag.ExitOnError)

var (
	configFile = flags.String("config", "", "path to configuration file")
	bind       = flags.String("bind", "", "listen address, overrides the config file")
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("photo-enhancer %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("photo-enhancer - web service that enhances uploaded photos")
			fmt.Println()
			fmt.Println("Usage: photo-enhancer [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  -config <file>   TOML configuration file")
			fmt.Println("  -bind <addr>     Listen address (default 0.0.0.0:5000)")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  PHOTO_ENHANCER_CONFIG=<file>     Configuration file if -config is not given")
			fmt.Println("  PHOTO_ENHANCER_LOG_LEVEL=debug   Override the configured log level")
			return
		}
	}
	flags.Parse(os.Args[1:])

	if *configFile == "" {
		*configFile = os.Getenv("PHOTO_ENHANCER_CONFIG")
	}

	conf, err := server.NewConfigFromFile(*configFile)
	missing := errors.Is(err, server.ErrNoConfigFile)
	if missing {
		conf = server.DefaultConfig()
	} else if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if lvl := os.Getenv("PHOTO_ENHANCER_LOG_LEVEL"); lvl != "" {
		conf.LogLevel = lvl
	}
	if *bind != "" {
		conf.Bind = *bind
	}

	level, err := conf.Level()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := initLogger(level)
	if missing {
		log.WithField("config", *configFile).Warn("config file not found, using defaults")
	}

	srv, err := server.New(conf, log)
	if err != nil {
		log.WithError(err).Fatal("failed to start")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(logrus.Fields{
		"version": Version,
		"commit":  GitCommit,
		"bind":    conf.Bind,
	}).Info("photo-enhancer listening")

	if err := srv.ListenAndServe(ctx); err != nil {
		log.WithError(err).Fatal("server error")
	}
}

func initLogger(level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(level)

	if level >= logrus.DebugLevel {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}
