package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetOutputRedirectsExistingLoggers(t *testing.T) {
	t.Cleanup(func() { SetOutput(os.Stdout) })

	log := NewLogger()
	var buf bytes.Buffer
	SetOutput(&buf)

	log.Info("ledger ready")
	assert.Contains(t, buf.String(), "ledger ready")
	assert.Contains(t, buf.String(), "level=info")
}

func TestNewLoggerLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Cleanup(func() { SetOutput(os.Stdout) })

	var buf bytes.Buffer
	SetOutput(&buf)
	log := NewLogger()

	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
