package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelsFilterOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelNormal, &buf)

	log.Debug("hidden %d", 1)
	assert.Empty(t, buf.String())

	log.Info("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
	assert.Contains(t, buf.String(), "level=info")

	buf.Reset()
	log.SetLevel(LevelVerbose)
	log.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")

	buf.Reset()
	log.SetLevel(LevelOff)
	log.Error("silenced")
	assert.Empty(t, buf.String())
}

func TestWithSharesLevelAndAddsField(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelOff, &buf)
	child := log.With("component", "ear")

	child.Info("dropped")
	assert.Empty(t, buf.String())

	log.SetLevel(LevelNormal)
	child.Warn("listening")
	assert.Contains(t, buf.String(), "component=ear")
	assert.Contains(t, buf.String(), "listening")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"quiet":   LevelOff,
		"off":     LevelOff,
		"verbose": LevelVerbose,
		"DEBUG":   LevelVerbose,
		"normal":  LevelNormal,
		"":        LevelNormal,
		"bogus":   LevelNormal,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}
