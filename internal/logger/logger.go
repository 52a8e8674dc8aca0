// internal/logger/logger.go
package logger

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// sharedOutput is the destination of every logger built by NewLogger.
// Package loggers are created at init, so the target is switched in place.
var sharedOutput = &switchWriter{target: os.Stdout}

type switchWriter struct {
	mu     sync.RWMutex
	target io.Writer
}

func (s *switchWriter) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.target.Write(p)
}

// SetOutput redirects all loggers, including those already created. The
// interactive CLI sends logs to stderr so they stay out of the prompts.
func SetOutput(w io.Writer) {
	sharedOutput.mu.Lock()
	sharedOutput.target = w
	sharedOutput.mu.Unlock()
}

// NewLogger returns a logrus logger with full timestamps writing to the shared
// output, stdout unless SetOutput changed it.
// The level is taken from LOG_LEVEL (debug, info, warn, error) and defaults to info.
func NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(sharedOutput)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
}
