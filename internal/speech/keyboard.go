package speech

import (
	"context"
	"sync"

	"github.com/hammamikhairi/vocabecho/internal/domain"
	"github.com/hammamikhairi/vocabecho/internal/logger"
)

// Compile-time interface check.
var _ domain.Recognizer = (*Keyboard)(nil)

// Keyboard is a Recognizer fed by typed answers. It needs no microphone
// and is the default when no speech backend is configured.
type Keyboard struct {
	log    *logger.Logger
	mu     sync.Mutex
	token  domain.AttemptToken
	events chan domain.RecognitionEvent
}

// NewKeyboard creates a typed-answer recognizer.
func NewKeyboard(log *logger.Logger) *Keyboard {
	return &Keyboard{
		log:    log,
		events: make(chan domain.RecognitionEvent, 8),
	}
}

// StartAttempt makes token the attempt that typed answers belong to.
func (k *Keyboard) StartAttempt(ctx context.Context, token domain.AttemptToken, target, locale string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.token = token
	return nil
}

// StopAttempt forgets token. Unknown tokens are ignored.
func (k *Keyboard) StopAttempt(token domain.AttemptToken) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.token == token {
		k.token = 0
	}
}

// Events returns the channel typed answers are delivered on.
func (k *Keyboard) Events() <-chan domain.RecognitionEvent {
	return k.events
}

// Submit delivers a typed answer as a final transcript for the live
// attempt. It returns false when no attempt is live or the queue is full.
func (k *Keyboard) Submit(text string) bool {
	k.mu.Lock()
	token := k.token
	k.mu.Unlock()
	if token == 0 {
		return false
	}
	select {
	case k.events <- domain.RecognitionEvent{Token: token, Transcript: text, Final: true}:
		return true
	default:
		k.log.Warn("keyboard: dropping answer %q, queue full", text)
		return false
	}
}
