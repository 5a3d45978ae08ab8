// Package speech provides speech recognition and text-to-speech for
// practice sessions.
package speech

import (
	"context"

	"github.com/hammamikhairi/vocabecho/internal/domain"
	"github.com/hammamikhairi/vocabecho/internal/logger"
)

// Compile-time interface check.
var _ domain.Speaker = (*NoOp)(nil)

// NoOp is a speaker that does nothing. Used when voice is disabled.
type NoOp struct {
	log *logger.Logger
}

// NewNoOp creates a no-op speaker.
func NewNoOp(log *logger.Logger) *NoOp {
	return &NoOp{log: log}
}

// Speak logs the request and returns nil.
func (n *NoOp) Speak(ctx context.Context, text, locale, voice string) error {
	n.log.Debug("speech no-op: would say %q (%s)", text, locale)
	return nil
}
