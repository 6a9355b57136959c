package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/keesvv/lot/internal/config"
)

func getLogFilePath() (string, error) {
	dir, err := config.Scope().CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, config.AppName+".log"), nil
}

// setupLog sends logs to stderr. With LOT_DEBUG set, debug logs are also
// appended to a log file in the cache directory.
func setupLog() (func() error, error) {
	log.SetOutput(os.Stderr)
	log.SetLevel(log.InfoLevel)

	e, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}
	if !e.Debug {
		return func() error { return nil }, nil
	}

	logFile, err := getLogFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil { //nolint:gosec
		return nil, err
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) //nolint:gosec
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	log.SetLevel(log.DebugLevel)
	log.Debug("Logging to file", "path", logFile)
	return f.Close, nil
}
